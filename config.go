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

import (
	"fmt"

	sdcint "github.com/mycophonic/saprobe-sdc/internal/sdc"
)

// DataType tags the record layout of a data buffer.
type DataType = sdcint.DataType

// Data-type tags.
//
//revive:disable:exported
const (
	DataTypeUnknown              = sdcint.DataTypeUnknown
	DataTypeImagette             = sdcint.DataTypeImagette
	DataTypeImagetteAdaptive     = sdcint.DataTypeImagetteAdaptive
	DataTypeSatImagette          = sdcint.DataTypeSatImagette
	DataTypeSatImagetteAdaptive  = sdcint.DataTypeSatImagetteAdaptive
	DataTypeOffset               = sdcint.DataTypeOffset
	DataTypeBackground           = sdcint.DataTypeBackground
	DataTypeSmearing             = sdcint.DataTypeSmearing
	DataTypeSFx                  = sdcint.DataTypeSFx
	DataTypeSFxEfx               = sdcint.DataTypeSFxEfx
	DataTypeSFxNcob              = sdcint.DataTypeSFxNcob
	DataTypeSFxEfxNcobEcob       = sdcint.DataTypeSFxEfxNcobEcob
	DataTypeLFx                  = sdcint.DataTypeLFx
	DataTypeLFxEfx               = sdcint.DataTypeLFxEfx
	DataTypeLFxNcob              = sdcint.DataTypeLFxNcob
	DataTypeLFxEfxNcobEcob       = sdcint.DataTypeLFxEfxNcobEcob
	DataTypeFFx                  = sdcint.DataTypeFFx
	DataTypeFFxEfx               = sdcint.DataTypeFFxEfx
	DataTypeFFxNcob              = sdcint.DataTypeFFxNcob
	DataTypeFFxEfxNcobEcob       = sdcint.DataTypeFFxEfxNcobEcob
	DataTypeFCamImagette         = sdcint.DataTypeFCamImagette
	DataTypeFCamImagetteAdaptive = sdcint.DataTypeFCamImagetteAdaptive
	DataTypeFCamOffset           = sdcint.DataTypeFCamOffset
	DataTypeFCamBackground       = sdcint.DataTypeFCamBackground
	DataTypeChunk                = sdcint.DataTypeChunk
)

// Mode selects the prediction source and escape policy of a compression.
type Mode uint8

// Compression modes. The byte values are part of the container contract.
const (
	// ModeRaw stores the big-endian byte image without entropy coding.
	ModeRaw Mode = 0
	// ModeModelZero predicts from the model, escapes via the zero symbol.
	ModeModelZero Mode = 1
	// ModeDiffZero predicts from the previous sample, escapes via zero.
	ModeDiffZero Mode = 2
	// ModeModelMulti predicts from the model, escapes via the
	// multi-symbol mechanism.
	ModeModelMulti Mode = 3
	// ModeDiffMulti predicts from the previous sample, escapes via the
	// multi-symbol mechanism.
	ModeDiffMulti Mode = 4
	// ModeStuff packs every value unmapped in a fixed number of bits.
	ModeStuff Mode = 5
)

// IsModel reports whether the mode predicts from a caller-supplied model.
func (m Mode) IsModel() bool { return m == ModeModelZero || m == ModeModelMulti }

// IsDiff reports whether the mode predicts from the previous sample.
func (m Mode) IsDiff() bool { return m == ModeDiffZero || m == ModeDiffMulti }

func (m Mode) valid() bool { return m <= ModeStuff }

func (m Mode) method() sdcint.Method {
	switch m {
	case ModeModelZero, ModeDiffZero:
		return sdcint.MethodZero
	case ModeModelMulti, ModeDiffMulti:
		return sdcint.MethodMulti
	default:
		return sdcint.MethodStuff
	}
}

func (m Mode) prediction() sdcint.Prediction {
	switch {
	case m.IsModel():
		return sdcint.PredictModel
	case m.IsDiff():
		return sdcint.PredictDiff
	default:
		return sdcint.PredictNone
	}
}

// Endpoint distinguishes the on-board CPU from the hardware compressor.
// The hardware handles imagette formats only, with narrower parameter and
// lossy ranges.
type Endpoint uint8

//revive:disable:exported
const (
	EndpointICU Endpoint = iota
	EndpointRDCU
)

// MaxUsedBits declares the used bit width of every field.
type MaxUsedBits = sdcint.MaxUsedBits

// DefaultMaxUsedBits returns the nominal per-field bit widths.
func DefaultMaxUsedBits() *MaxUsedBits { return sdcint.DefaultMaxUsedBits() }

// MaxModelValue is the largest model weight; see Config.ModelValue.
const MaxModelValue = sdcint.MaxModelValue

// Lossy-parameter bounds per endpoint.
const (
	MaxICURound  = 3
	MaxRDCURound = 2
)

// MaxSpill returns the largest legal spillover threshold for a Golomb
// parameter of the non-imagette formats.
func MaxSpill(par uint32) uint32 { return sdcint.MaxSpill(par) }

// ImagetteMaxSpill returns the largest legal spillover threshold for a
// Golomb parameter of the imagette formats.
func ImagetteMaxSpill(par uint32) uint32 { return sdcint.ImaMaxSpill(par) }

// Config is the per-call compression contract of the buffer-oriented API.
// It is read strictly during a call and never mutated.
type Config struct {
	DataType DataType
	Mode     Mode
	Endpoint Endpoint

	// ModelValue weighs the model in the updated-model blend, 0..16.
	ModelValue uint32

	// Round is the lossy parameter: a right shift on the forward path,
	// a saturating left shift on the inverse. 0 is lossless.
	Round uint32

	// Golomb parameter and spillover threshold per field group. In stuff
	// mode the parameter is the literal bit width.
	ParImagette   uint32
	SpillImagette uint32

	// Secondary parameter pairs of the adaptive imagette formats.
	Ap1Par   uint32
	Ap1Spill uint32
	Ap2Par   uint32
	Ap2Spill uint32

	ParExpFlags   uint32
	SpillExpFlags uint32

	ParFx   uint32
	SpillFx uint32

	ParNcob   uint32
	SpillNcob uint32

	ParEfx   uint32
	SpillEfx uint32

	ParEcob   uint32
	SpillEcob uint32

	ParFxCobVariance   uint32
	SpillFxCobVariance uint32

	ParMean   uint32
	SpillMean uint32

	ParVariance   uint32
	SpillVariance uint32

	ParPixelsError   uint32
	SpillPixelsError uint32

	// Opaque identifiers copied into the container header.
	ModelID      uint16
	ModelCounter uint8

	// MaxUsedBits overrides the default width table when non-nil.
	MaxUsedBits *MaxUsedBits
}

// NewConfig returns a configuration for the given data type and mode.
// The combination is checked; parameter binding happens afterwards through
// the exported fields and is checked by Validate.
func NewConfig(t DataType, mode Mode) (*Config, error) {
	cfg := &Config{DataType: t, Mode: mode}

	if err := cfg.validateShape(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) maxUsedBits() *MaxUsedBits {
	if c.MaxUsedBits != nil {
		return c.MaxUsedBits
	}

	return sdcint.DefaultMaxUsedBits()
}

// fieldPars resolves the (parameter, spillover) pair of a field group.
func (c *Config) fieldPars(kind sdcint.FieldKind) (par, spill uint32) {
	switch kind {
	case sdcint.FieldImagette:
		return c.ParImagette, c.SpillImagette
	case sdcint.FieldExpFlags:
		return c.ParExpFlags, c.SpillExpFlags
	case sdcint.FieldFx:
		return c.ParFx, c.SpillFx
	case sdcint.FieldNcob:
		return c.ParNcob, c.SpillNcob
	case sdcint.FieldEfx:
		return c.ParEfx, c.SpillEfx
	case sdcint.FieldEcob:
		return c.ParEcob, c.SpillEcob
	case sdcint.FieldFxVariance, sdcint.FieldCobVariance:
		return c.ParFxCobVariance, c.SpillFxCobVariance
	case sdcint.FieldMean:
		return c.ParMean, c.SpillMean
	case sdcint.FieldVariance:
		return c.ParVariance, c.SpillVariance
	case sdcint.FieldPixelsError:
		return c.ParPixelsError, c.SpillPixelsError
	default:
		return 0, 0
	}
}

// buildCoders constructs the per-field coder set for a record layout. pars
// resolves the (parameter, spillover) pair of each field group.
func buildCoders(
	t DataType,
	mode Mode,
	round uint32,
	mub *MaxUsedBits,
	pars func(sdcint.FieldKind) (uint32, uint32),
) ([]sdcint.FieldCoder, error) {
	layout := sdcint.Layout(t)
	if layout == nil {
		return nil, fmt.Errorf("%w: data type %d has no record layout", ErrConfig, t)
	}

	method := mode.method()
	coders := make([]sdcint.FieldCoder, len(layout))

	for i, f := range layout {
		par, spill := pars(f.Kind)

		fieldRound := uint32(0)
		if f.Lossy {
			fieldRound = round
		}

		coder, err := sdcint.NewFieldCoder(method, par, spill, fieldRound, f.MaxBits(mub))
		if err != nil {
			return nil, fmt.Errorf("%w: field %d: %w", ErrConfig, i, err)
		}

		coders[i] = coder
	}

	return coders, nil
}
