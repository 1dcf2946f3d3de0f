/*
   Copyright Mycophonic.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package sdc

import "fmt"

// Per-field coder setup. One FieldCoder is built per field per call, never
// per sample; the hot path only dispatches through it.

// Method selects the escape policy of a field.
type Method uint8

//revive:disable:exported
const (
	// MethodZero escapes outliers with the code word for zero followed by
	// the literal in MaxUsedBits bits; mapped values are pre-incremented.
	MethodZero Method = iota
	// MethodMulti escapes outliers with a code word above the spillover
	// that carries the literal width.
	MethodMulti
	// MethodStuff packs values unmapped in a fixed number of bits.
	MethodStuff
)

const (
	// MinSpill is the smallest usable spillover threshold.
	MinSpill = 2

	// MaxImaGolombPar is the largest Golomb parameter of the imagette
	// formats (hardware register width).
	MaxImaGolombPar = 64

	// MaxNonImaGolombPar is the largest Golomb parameter of the
	// non-imagette formats.
	MaxNonImaGolombPar = uint32(1) << 31

	// MaxStuffBits is the largest width of the stuff method.
	MaxStuffBits = 32

	imaMaxCwBits = 16 // hardware code words are limited to a half word
)

// MaxSpill returns the largest spillover threshold usable with the Golomb
// parameter m under the 32-bit code-word limit, or 0 for m == 0.
func MaxSpill(m uint32) uint32 {
	return maxSpill(m, MaxCodewordBits)
}

// ImaMaxSpill returns the largest spillover threshold of the imagette
// formats for m in [1,64]; entry 0 is 0. The values follow the 16-bit
// code-word length bound of the hardware compressor.
func ImaMaxSpill(m uint32) uint32 {
	if m > MaxImaGolombPar {
		return 0
	}

	return maxSpill(m, imaMaxCwBits)
}

func maxSpill(m, maxCwBits uint32) uint32 {
	if m == 0 {
		return 0
	}

	log2M := Ilog2(m)
	cutoff := uint32(2)<<log2M - m

	return (maxCwBits-1-log2M)*m + cutoff - (maxCwBits/2 - 1) - 1
}

// FieldCoder binds everything needed to code one field: the selected
// code-word pair, the escape policy, the Golomb parameter and its log2,
// the spillover threshold, the lossy parameter, and the declared width.
type FieldCoder struct {
	enc EncoderFunc
	dec DecoderFunc

	method  Method
	par     uint32
	log2Par uint32
	spill   uint32
	round   uint32
	maxBits uint32
}

// NewFieldCoder validates the per-field parameters and builds the coder.
// The data-type specific parameter caps (imagette versus non-imagette) are
// enforced by the configuration validator; this constructor enforces the
// universal bounds.
func NewFieldCoder(method Method, par, spill, round, maxBits uint32) (FieldCoder, error) {
	if maxBits == 0 || maxBits > 32 {
		return FieldCoder{}, fmt.Errorf("%w: max used bits %d", ErrParameter, maxBits)
	}

	coder := FieldCoder{
		method:  method,
		par:     par,
		round:   round,
		maxBits: maxBits,
	}

	if method == MethodStuff {
		if par > MaxStuffBits {
			return FieldCoder{}, fmt.Errorf("%w: stuff width %d", ErrParameter, par)
		}

		return coder, nil
	}

	if par == 0 || par > MaxNonImaGolombPar {
		return FieldCoder{}, fmt.Errorf("%w: golomb parameter %d", ErrParameter, par)
	}

	if spill < MinSpill || spill > MaxSpill(par) {
		return FieldCoder{}, fmt.Errorf("%w: spillover %d for golomb parameter %d", ErrParameter, spill, par)
	}

	coder.log2Par = Ilog2(par)
	coder.spill = spill
	coder.enc, coder.dec = SelectCodec(par)

	return coder, nil
}

// encodeNormal emits one in-range code word.
func (c *FieldCoder) encodeNormal(dst []byte, value, pos, maxStream uint32) (uint32, error) {
	cw, cwLen := c.enc(value, c.par, c.log2Par)
	if cwLen > MaxCodewordBits {
		return 0, fmt.Errorf("%w: value %d with golomb parameter %d", ErrCodewordTooLong, value, c.par)
	}

	return PutBits(dst, pos, cwLen, cw, maxStream)
}

// EncodeValue codes one datum against its model prediction and returns the
// new stream position. data and model carry only bits inside the declared
// width; a datum outside it fails with ErrFieldTooLarge.
func (c *FieldCoder) EncodeValue(dst []byte, pos, maxStream, data, model uint32) (uint32, error) {
	if data > widthMask(c.maxBits) {
		return 0, fmt.Errorf("%w: value %#x wider than %d bits", ErrFieldTooLarge, data, c.maxBits)
	}

	data = RoundFwd(data, c.round)

	if c.method == MethodStuff {
		return PutBits(dst, pos, c.par, data, maxStream)
	}

	model = RoundFwd(model, c.round)
	mapped := MapToPos(data-model, c.maxBits)

	if c.method == MethodZero {
		mapped++ // keep zero free as the escape symbol
		// A 32-bit field can wrap the increment itself; the wrapped zero
		// must escape or it would alias the escape symbol.
		if mapped == 0 || mapped >= c.spill {
			pos, err := c.encodeNormal(dst, 0, pos, maxStream)
			if err != nil {
				return 0, err
			}

			// The literal may wrap to zero inside the declared width;
			// the decoder reverses it with a masked decrement.
			return PutBits(dst, pos, c.maxBits, mapped, maxStream)
		}

		return c.encodeNormal(dst, mapped, pos, maxStream)
	}

	if mapped < c.spill {
		return c.encodeNormal(dst, mapped, pos, maxStream)
	}

	unencoded := mapped - c.spill

	var offset uint32
	if unencoded != 0 {
		offset = Ilog2(unencoded) >> 1 & 0xF
	}

	pos, err := c.encodeNormal(dst, c.spill+offset, pos, maxStream)
	if err != nil {
		return 0, err
	}

	return PutBits(dst, pos, (offset+1)<<1, unencoded, maxStream)
}

// decodeNormal reads one code word from the stream.
func (c *FieldCoder) decodeNormal(src []byte, pos, maxStream uint32) (value, newPos uint32, err error) {
	window, avail := peekWindow(src, pos, maxStream)
	if avail == 0 {
		return 0, 0, ErrSmallBuffer
	}

	value, cwLen := c.dec(window, c.par, c.log2Par)
	if cwLen > avail {
		return 0, 0, fmt.Errorf("%w: at bit %d", ErrCodewordTooLong, pos)
	}

	return value, pos + cwLen, nil
}

// DecodeValue is the exact inverse of EncodeValue.
func (c *FieldCoder) DecodeValue(src []byte, pos, maxStream, model uint32) (value, newPos uint32, err error) {
	if c.method == MethodStuff {
		value, pos, err = GetBits(src, pos, c.par, maxStream)
		if err != nil {
			return 0, 0, err
		}

		return RoundInv(value, c.round, c.maxBits), pos, nil
	}

	value, pos, err = c.decodeNormal(src, pos, maxStream)
	if err != nil {
		return 0, 0, err
	}

	switch c.method {
	case MethodZero:
		// The encoder codes only values in [1, spill-1] normally; anything
		// at or above the spillover takes the escape branch.
		if value >= c.spill {
			return 0, 0, fmt.Errorf("%w: code word %d at or above spillover %d", ErrEscapeLiteral, value, c.spill)
		}

		if value == 0 { // escape symbol
			value, pos, err = GetBits(src, pos, c.maxBits, maxStream)
			if err != nil {
				return 0, 0, err
			}

			// Zero is the wrapped increment of the widest mapped value;
			// anything else below the spillover cannot have escaped.
			if value != 0 && value < c.spill {
				return 0, 0, fmt.Errorf("%w: literal %d below spillover %d", ErrEscapeLiteral, value, c.spill)
			}
		}

		value = (value - 1) & widthMask(c.maxBits)

	case MethodMulti:
		if value >= c.spill { // escape symbol carries the literal width
			width := (value - c.spill + 1) << 1
			if width > 32 {
				return 0, 0, fmt.Errorf("%w: escape literal width %d", ErrEscapeLiteral, width)
			}

			value, pos, err = GetBits(src, pos, width, maxStream)
			if err != nil {
				return 0, 0, err
			}

			value += c.spill
		}

	case MethodStuff: // handled above
	}

	value = MapToNeg(value, c.maxBits)
	value = (value + RoundFwd(model, c.round)) & widthMask(c.maxBits)

	return RoundInv(value, c.round, c.maxBits), pos, nil
}
