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

// DataType tags the record layout of a data buffer.
type DataType uint8

// Data-type tags. The F-CAM offset and background formats are declared but
// not yet specified and are rejected by validation.
const (
	DataTypeUnknown DataType = iota
	DataTypeImagette
	DataTypeImagetteAdaptive
	DataTypeSatImagette
	DataTypeSatImagetteAdaptive
	DataTypeOffset
	DataTypeBackground
	DataTypeSmearing
	DataTypeSFx
	DataTypeSFxEfx
	DataTypeSFxNcob
	DataTypeSFxEfxNcobEcob
	DataTypeLFx
	DataTypeLFxEfx
	DataTypeLFxNcob
	DataTypeLFxEfxNcobEcob
	DataTypeFFx
	DataTypeFFxEfx
	DataTypeFFxNcob
	DataTypeFFxEfxNcobEcob
	DataTypeFCamImagette
	DataTypeFCamImagetteAdaptive
	DataTypeFCamOffset
	DataTypeFCamBackground
	DataTypeChunk
)

// FieldKind selects the compression parameter group a field belongs to.
type FieldKind uint8

//revive:disable:exported
const (
	FieldImagette FieldKind = iota
	FieldExpFlags
	FieldFx
	FieldNcob
	FieldEfx
	FieldEcob
	FieldFxVariance
	FieldCobVariance
	FieldMean
	FieldVariance
	FieldPixelsError
)

// FieldDesc describes one field of a record: its parameter group, its wire
// width in bytes, the declared bit width, and whether lossy rounding
// applies to it. Exposure flags, means, variances, and outlier counts are
// always coded lossless.
type FieldDesc struct {
	Kind    FieldKind
	Wire    int
	MaxBits func(*MaxUsedBits) uint32
	Lossy   bool
}

//nolint:gochecknoglobals // fixed field tables, never mutated
var (
	fieldSExp  = FieldDesc{FieldExpFlags, 1, func(m *MaxUsedBits) uint32 { return m.SExpFlags }, false}
	fieldSFx   = FieldDesc{FieldFx, 4, func(m *MaxUsedBits) uint32 { return m.SFx }, true}
	fieldSEfx  = FieldDesc{FieldEfx, 4, func(m *MaxUsedBits) uint32 { return m.SEfx }, true}
	fieldSNcob = FieldDesc{FieldNcob, 4, func(m *MaxUsedBits) uint32 { return m.SNcob }, true}
	fieldSEcob = FieldDesc{FieldEcob, 4, func(m *MaxUsedBits) uint32 { return m.SEcob }, true}

	fieldFFx   = FieldDesc{FieldFx, 4, func(m *MaxUsedBits) uint32 { return m.FFx }, true}
	fieldFEfx  = FieldDesc{FieldEfx, 4, func(m *MaxUsedBits) uint32 { return m.FEfx }, true}
	fieldFNcob = FieldDesc{FieldNcob, 4, func(m *MaxUsedBits) uint32 { return m.FNcob }, true}
	fieldFEcob = FieldDesc{FieldEcob, 4, func(m *MaxUsedBits) uint32 { return m.FEcob }, true}

	fieldLExp    = FieldDesc{FieldExpFlags, 3, func(m *MaxUsedBits) uint32 { return m.LExpFlags }, false}
	fieldLFx     = FieldDesc{FieldFx, 4, func(m *MaxUsedBits) uint32 { return m.LFx }, true}
	fieldLEfx    = FieldDesc{FieldEfx, 4, func(m *MaxUsedBits) uint32 { return m.LEfx }, true}
	fieldLNcob   = FieldDesc{FieldNcob, 4, func(m *MaxUsedBits) uint32 { return m.LNcob }, true}
	fieldLEcob   = FieldDesc{FieldEcob, 4, func(m *MaxUsedBits) uint32 { return m.LEcob }, true}
	fieldLFxVar  = FieldDesc{FieldFxVariance, 4, func(m *MaxUsedBits) uint32 { return m.LFxVariance }, false}
	fieldLCobVar = FieldDesc{FieldCobVariance, 4, func(m *MaxUsedBits) uint32 { return m.LCobVariance }, false}

	fieldOffMean = FieldDesc{FieldMean, 4, func(m *MaxUsedBits) uint32 { return m.NCOffsetMean }, false}
	fieldOffVar  = FieldDesc{FieldVariance, 4, func(m *MaxUsedBits) uint32 { return m.NCOffsetVariance }, false}

	fieldBgMean = FieldDesc{FieldMean, 4, func(m *MaxUsedBits) uint32 { return m.NCBackgroundMean }, false}
	fieldBgVar  = FieldDesc{FieldVariance, 4, func(m *MaxUsedBits) uint32 { return m.NCBackgroundVariance }, false}
	fieldBgPix  = FieldDesc{FieldPixelsError, 2, func(m *MaxUsedBits) uint32 { return m.NCBackgroundPixelsError }, false}

	fieldSmMean = FieldDesc{FieldMean, 4, func(m *MaxUsedBits) uint32 { return m.SmearingMean }, false}
	fieldSmVar  = FieldDesc{FieldVariance, 2, func(m *MaxUsedBits) uint32 { return m.SmearingVariance }, false}
	fieldSmPix  = FieldDesc{FieldPixelsError, 2, func(m *MaxUsedBits) uint32 { return m.SmearingPixelsError }, false}
)

// Layout returns the ordered field list of a record of the given type, or
// nil for types without a record layout (unknown, chunk, F-CAM aux).
//
//nolint:funlen // one case per data-type variant
func Layout(t DataType) []FieldDesc {
	switch t {
	case DataTypeImagette, DataTypeImagetteAdaptive:
		return []FieldDesc{{FieldImagette, 2, func(m *MaxUsedBits) uint32 { return m.NCImagette }, true}}

	case DataTypeSatImagette, DataTypeSatImagetteAdaptive:
		return []FieldDesc{{FieldImagette, 2, func(m *MaxUsedBits) uint32 { return m.SatImagette }, true}}

	case DataTypeFCamImagette, DataTypeFCamImagetteAdaptive:
		return []FieldDesc{{FieldImagette, 2, func(m *MaxUsedBits) uint32 { return m.FCImagette }, true}}

	case DataTypeOffset:
		return []FieldDesc{fieldOffMean, fieldOffVar}

	case DataTypeBackground:
		return []FieldDesc{fieldBgMean, fieldBgVar, fieldBgPix}

	case DataTypeSmearing:
		return []FieldDesc{fieldSmMean, fieldSmVar, fieldSmPix}

	case DataTypeSFx:
		return []FieldDesc{fieldSExp, fieldSFx}

	case DataTypeSFxEfx:
		return []FieldDesc{fieldSExp, fieldSFx, fieldSEfx}

	case DataTypeSFxNcob:
		return []FieldDesc{fieldSExp, fieldSFx, fieldSNcob, fieldSNcob}

	case DataTypeSFxEfxNcobEcob:
		return []FieldDesc{fieldSExp, fieldSFx, fieldSNcob, fieldSNcob, fieldSEfx, fieldSEcob, fieldSEcob}

	case DataTypeFFx:
		return []FieldDesc{fieldFFx}

	case DataTypeFFxEfx:
		return []FieldDesc{fieldFFx, fieldFEfx}

	case DataTypeFFxNcob:
		return []FieldDesc{fieldFFx, fieldFNcob, fieldFNcob}

	case DataTypeFFxEfxNcobEcob:
		return []FieldDesc{fieldFFx, fieldFNcob, fieldFNcob, fieldFEfx, fieldFEcob, fieldFEcob}

	case DataTypeLFx:
		return []FieldDesc{fieldLExp, fieldLFx, fieldLFxVar}

	case DataTypeLFxEfx:
		return []FieldDesc{fieldLExp, fieldLFx, fieldLEfx, fieldLFxVar}

	case DataTypeLFxNcob:
		return []FieldDesc{fieldLExp, fieldLFx, fieldLNcob, fieldLNcob, fieldLFxVar, fieldLCobVar, fieldLCobVar}

	case DataTypeLFxEfxNcobEcob:
		return []FieldDesc{
			fieldLExp, fieldLFx, fieldLNcob, fieldLNcob,
			fieldLEfx, fieldLEcob, fieldLEcob,
			fieldLFxVar, fieldLCobVar, fieldLCobVar,
		}

	case DataTypeUnknown, DataTypeChunk, DataTypeFCamOffset, DataTypeFCamBackground:
		return nil

	default:
		return nil
	}
}

// RecordSize returns the wire size of one record in bytes, or 0 for types
// without a record layout.
func RecordSize(t DataType) int {
	size := 0
	for _, f := range Layout(t) {
		size += f.Wire
	}

	return size
}

// IsImagette reports whether t is one of the flat 16-bit sample formats.
func (t DataType) IsImagette() bool {
	switch t {
	case DataTypeImagette, DataTypeImagetteAdaptive,
		DataTypeSatImagette, DataTypeSatImagetteAdaptive,
		DataTypeFCamImagette, DataTypeFCamImagetteAdaptive:
		return true

	default:
		return false
	}
}

// HasCollectionHeader reports whether data buffers of this type begin with
// a 12-byte collection header that is copied verbatim around the coded
// payload.
func (t DataType) HasCollectionHeader() bool {
	return !t.IsImagette() && Layout(t) != nil
}

// getField reads the big-endian field of the given wire width from buf.
func getField(buf []byte, wire int) uint32 {
	switch wire {
	case 1:
		return uint32(buf[0])
	case 2:
		return uint32(binary.BigEndian.Uint16(buf))
	case 3:
		return uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2])
	default:
		return binary.BigEndian.Uint32(buf)
	}
}

// putField writes the big-endian field of the given wire width into buf.
func putField(buf []byte, wire int, v uint32) {
	switch wire {
	case 1:
		buf[0] = uint8(v) //nolint:gosec // value confined to declared width
	case 2:
		binary.BigEndian.PutUint16(buf, uint16(v)) //nolint:gosec // value confined to declared width
	case 3:
		buf[0] = uint8(v >> 16) //nolint:gosec // low 24 bits
		buf[1] = uint8(v >> 8)  //nolint:gosec // low 24 bits
		buf[2] = uint8(v)       //nolint:gosec // low 24 bits
	default:
		binary.BigEndian.PutUint32(buf, v)
	}
}
