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

import "encoding/binary"

// Bit-level access to a stream of 32-bit big-endian words.
// Bit 0 of a word is its MSB; fields are packed MSB-first.

const wordBytes = 4

// StreamCap returns the capacity of a byte buffer in whole-word bits.
func StreamCap(buf []byte) uint32 {
	return uint32(len(buf)/wordBytes) * 32 //nolint:gosec // buffer sizes are bounded by the 24-bit entity size
}

// PutBits writes the low n bits of value into dst at bit position pos and
// returns the new bit position. The stream budget is maxBits; a write past
// it fails with ErrSmallBuffer and leaves dst untouched. A nil dst performs
// the same bounds arithmetic without writing, so a pass can be run once to
// measure and once to emit. Bits outside the written field are preserved.
func PutBits(dst []byte, pos, n, value, maxBits uint32) (uint32, error) {
	if n > 32 {
		return 0, ErrBitCount
	}

	if n == 0 {
		return pos, nil
	}

	newPos := pos + n
	if newPos > maxBits {
		return 0, ErrSmallBuffer
	}

	if dst == nil {
		return newPos, nil
	}

	if n < 32 {
		value &= (1 << n) - 1
	}

	word := (pos >> 5) * wordBytes
	used := pos & 31
	avail := 32 - used

	cur := binary.BigEndian.Uint32(dst[word:])

	if n <= avail {
		shift := avail - n
		mask := (^uint32(0) >> (32 - n)) << shift
		binary.BigEndian.PutUint32(dst[word:], cur&^mask|value<<shift)

		return newPos, nil
	}

	// The field spans the word boundary.
	spill := n - avail
	mask := ^uint32(0) >> used
	binary.BigEndian.PutUint32(dst[word:], cur&^mask|value>>spill)

	next := binary.BigEndian.Uint32(dst[word+wordBytes:])
	mask = ^uint32(0) << (32 - spill)
	binary.BigEndian.PutUint32(dst[word+wordBytes:], next&^mask|value<<(32-spill))

	return newPos, nil
}

// GetBits reads n bits (1 to 32) from src at bit position pos and returns
// the value right-aligned together with the new bit position. Reads past
// maxBits fail with ErrSmallBuffer.
func GetBits(src []byte, pos, n, maxBits uint32) (value, newPos uint32, err error) {
	if n == 0 || n > 32 {
		return 0, 0, ErrBitCount
	}

	if src == nil {
		return 0, 0, ErrNilStream
	}

	newPos = pos + n
	if newPos > maxBits {
		return 0, 0, ErrSmallBuffer
	}

	word := (pos >> 5) * wordBytes
	used := pos & 31
	avail := 32 - used

	cur := binary.BigEndian.Uint32(src[word:])

	if n <= avail {
		return cur << used >> (32 - n), newPos, nil
	}

	spill := n - avail
	value = (cur & (^uint32(0) >> used)) << spill
	value |= binary.BigEndian.Uint32(src[word+wordBytes:]) >> (32 - spill)

	return value, newPos, nil
}

// PadToWord zero-fills the stream from pos up to the next 32-bit word
// boundary and returns the aligned position.
func PadToWord(dst []byte, pos, maxBits uint32) (uint32, error) {
	rem := pos & 31
	if rem == 0 {
		return pos, nil
	}

	return PutBits(dst, pos, 32-rem, 0, maxBits)
}

// peekWindow reads up to 32 bits starting at pos and returns them
// left-aligned, together with the number of readable bits. Near the stream
// end fewer than 32 bits are returned; a position at or past maxBits
// returns zero readable bits.
func peekWindow(src []byte, pos, maxBits uint32) (window, avail uint32) {
	if pos >= maxBits {
		return 0, 0
	}

	avail = maxBits - pos
	if avail > 32 {
		avail = 32
	}

	v, _, err := GetBits(src, pos, avail, maxBits)
	if err != nil {
		return 0, 0
	}

	if avail < 32 {
		v <<= 32 - avail
	}

	return v, avail
}
