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

//nolint:gosec // Header fields are range-checked before narrowing conversions.
package entity

import (
	"encoding/binary"
	"fmt"

	sdcint "github.com/mycophonic/saprobe-sdc/internal/sdc"
)

// The compression entity: a self-describing container header placed in
// front of the compressed payload. All fields are big-endian at fixed
// offsets; there is no box structure.

const (
	// GenericPrefixSize is the header part shared by both shapes.
	GenericPrefixSize = 23

	// ImagetteHeaderSize frames a flat imagette payload.
	ImagetteHeaderSize = 32

	// NonImagetteHeaderSize frames chunk and multi-entry payloads.
	NonImagetteHeaderSize = 56

	// MaxOriginalSize is the largest original data size the 24-bit header
	// field can carry.
	MaxOriginalSize = 1<<24 - 1

	// NumParSlots is the number of (parameter, spillover) pairs of the
	// non-imagette header.
	NumParSlots = 7

	// CollectionSizeFieldSize is one entry of the per-collection
	// compressed-size array in front of a non-imagette body.
	CollectionSizeFieldSize = 2
)

// Version is the 3-byte container version stamped into every header.
//
//nolint:gochecknoglobals
var Version = [3]byte{0, 1, 0}

// Timestamp is a spacecraft time: 32-bit coarse seconds and a 16-bit
// fine-time fraction.
type Timestamp struct {
	Coarse uint32
	Fine   uint16
}

// ParPair is one (Golomb parameter, spillover) slot of the non-imagette
// header. Values are kept as uint32 so the writer can refuse anything that
// does not fit the 16-bit header fields.
type ParPair struct {
	Par   uint32
	Spill uint32
}

// Header is the parsed or to-be-written container header.
type Header struct {
	Version      [3]byte
	Raw          bool
	OriginalSize uint32
	Start        Timestamp
	End          Timestamp
	DataType     sdcint.DataType
	ModelID      uint16
	ModelCounter uint8

	Mode       uint8
	ModelValue uint8
	Round      uint8

	// Imagette shape only.
	ImaPar   uint32
	ImaSpill uint32

	// Non-imagette shape only.
	CollectionCount uint16
	Pars            [NumParSlots]ParPair
}

// Size returns the header size of this entity's shape.
func (h *Header) Size() int {
	if h.DataType.IsImagette() {
		return ImagetteHeaderSize
	}

	return NonImagetteHeaderSize
}

func putTimestamp(dst []byte, ts Timestamp) {
	binary.BigEndian.PutUint32(dst, ts.Coarse)
	binary.BigEndian.PutUint16(dst[4:], ts.Fine)
}

func getTimestamp(src []byte) Timestamp {
	return Timestamp{
		Coarse: binary.BigEndian.Uint32(src),
		Fine:   binary.BigEndian.Uint16(src[4:]),
	}
}

// WriteHeader serialises h into dst and returns the header size. Values
// that do not fit their header fields are refused.
func WriteHeader(dst []byte, h *Header) (int, error) {
	size := h.Size()
	if len(dst) < size {
		return 0, ErrTooSmall
	}

	if h.OriginalSize > MaxOriginalSize {
		return 0, fmt.Errorf("%w: original size %d", ErrTooLarge, h.OriginalSize)
	}

	copy(dst[0:3], h.Version[:])

	sizeRaw := h.OriginalSize
	if h.Raw {
		sizeRaw |= 1 << 31
	}

	binary.BigEndian.PutUint32(dst[3:7], sizeRaw)
	putTimestamp(dst[7:13], h.Start)
	putTimestamp(dst[13:19], h.End)

	dataType := uint8(h.DataType)
	if h.Raw {
		dataType |= 1 << 7 // raw flag replicated next to the type tag
	}

	dst[19] = dataType
	binary.BigEndian.PutUint16(dst[20:22], h.ModelID)
	dst[22] = h.ModelCounter

	dst[23] = h.Mode
	dst[24] = h.ModelValue
	dst[25] = h.Round

	if h.DataType.IsImagette() {
		if h.ImaPar > 0xFFFF || h.ImaSpill > 0xFFFF {
			return 0, fmt.Errorf("%w: imagette parameter pair (%d, %d)", ErrHeaderField, h.ImaPar, h.ImaSpill)
		}

		binary.BigEndian.PutUint16(dst[26:28], uint16(h.ImaPar))
		binary.BigEndian.PutUint16(dst[28:30], uint16(h.ImaSpill))
		dst[30], dst[31] = 0, 0

		return size, nil
	}

	binary.BigEndian.PutUint16(dst[26:28], h.CollectionCount)

	off := 28
	for i, p := range h.Pars {
		if p.Par > 0xFFFF || p.Spill > 0xFFFF {
			return 0, fmt.Errorf("%w: parameter slot %d (%d, %d)", ErrHeaderField, i, p.Par, p.Spill)
		}

		binary.BigEndian.PutUint16(dst[off:], uint16(p.Par))
		binary.BigEndian.PutUint16(dst[off+2:], uint16(p.Spill))
		off += 4
	}

	return size, nil
}

// ParseHeader reads a container header from src. The shape is derived from
// the embedded data type.
func ParseHeader(src []byte) (*Header, error) {
	if len(src) < GenericPrefixSize+3 {
		return nil, ErrTooSmall
	}

	var h Header

	copy(h.Version[:], src[0:3])
	if h.Version != Version {
		return nil, fmt.Errorf("%w: %d.%d.%d", ErrVersion, src[0], src[1], src[2])
	}

	sizeRaw := binary.BigEndian.Uint32(src[3:7])
	h.Raw = sizeRaw>>31 != 0
	h.OriginalSize = sizeRaw & MaxOriginalSize

	h.Start = getTimestamp(src[7:13])
	h.End = getTimestamp(src[13:19])

	h.DataType = sdcint.DataType(src[19] &^ (1 << 7))
	h.ModelID = binary.BigEndian.Uint16(src[20:22])
	h.ModelCounter = src[22]

	h.Mode = src[23]
	h.ModelValue = src[24]
	h.Round = src[25]

	if len(src) < h.Size() {
		return nil, ErrTooSmall
	}

	if h.DataType.IsImagette() {
		h.ImaPar = uint32(binary.BigEndian.Uint16(src[26:28]))
		h.ImaSpill = uint32(binary.BigEndian.Uint16(src[28:30]))

		return &h, nil
	}

	h.CollectionCount = binary.BigEndian.Uint16(src[26:28])

	off := 28
	for i := range h.Pars {
		h.Pars[i].Par = uint32(binary.BigEndian.Uint16(src[off:]))
		h.Pars[i].Spill = uint32(binary.BigEndian.Uint16(src[off+2:]))
		off += 4
	}

	return &h, nil
}
