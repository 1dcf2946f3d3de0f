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

	entint "github.com/mycophonic/saprobe-sdc/internal/entity"
	sdcint "github.com/mycophonic/saprobe-sdc/internal/sdc"
)

// Params is the parameter set of the chunk API: one Golomb parameter per
// field group across all record layouts. Spillover thresholds are derived
// as the maximum legal spill of each parameter, so the set stays small
// enough to ride inside the container header.
type Params struct {
	Mode       Mode   `toml:"mode"`
	ModelValue uint32 `toml:"model_value"`
	Round      uint32 `toml:"round"`

	NCImagette  uint32 `toml:"nc_imagette"`
	SatImagette uint32 `toml:"sat_imagette"`
	FCImagette  uint32 `toml:"fc_imagette"`

	SExpFlags uint32 `toml:"s_exp_flags"`
	SFx       uint32 `toml:"s_fx"`
	SNcob     uint32 `toml:"s_ncob"`
	SEfx      uint32 `toml:"s_efx"`
	SEcob     uint32 `toml:"s_ecob"`

	FFx   uint32 `toml:"f_fx"`
	FNcob uint32 `toml:"f_ncob"`
	FEfx  uint32 `toml:"f_efx"`
	FEcob uint32 `toml:"f_ecob"`

	LExpFlags    uint32 `toml:"l_exp_flags"`
	LFx          uint32 `toml:"l_fx"`
	LNcob        uint32 `toml:"l_ncob"`
	LEfx         uint32 `toml:"l_efx"`
	LEcob        uint32 `toml:"l_ecob"`
	LFxVariance  uint32 `toml:"l_fx_variance"`
	LCobVariance uint32 `toml:"l_cob_variance"`

	OffsetMean     uint32 `toml:"offset_mean"`
	OffsetVariance uint32 `toml:"offset_variance"`

	BackgroundMean        uint32 `toml:"background_mean"`
	BackgroundVariance    uint32 `toml:"background_variance"`
	BackgroundPixelsError uint32 `toml:"background_pixels_error"`

	SmearingMean        uint32 `toml:"smearing_mean"`
	SmearingVariance    uint32 `toml:"smearing_variance"`
	SmearingPixelsError uint32 `toml:"smearing_pixels_error"`
}

// DefaultParams returns a workable lossless parameter set for every
// supported family.
func DefaultParams() *Params {
	return &Params{
		Mode:       ModeDiffZero,
		ModelValue: 8,

		NCImagette:  4,
		SatImagette: 4,
		FCImagette:  4,

		SExpFlags: 1,
		SFx:       2,
		SNcob:     2,
		SEfx:      2,
		SEcob:     2,

		FFx:   2,
		FNcob: 2,
		FEfx:  2,
		FEcob: 2,

		LExpFlags:    1,
		LFx:          2,
		LNcob:        2,
		LEfx:         2,
		LEcob:        2,
		LFxVariance:  2,
		LCobVariance: 2,

		OffsetMean:     2,
		OffsetVariance: 2,

		BackgroundMean:        2,
		BackgroundVariance:    2,
		BackgroundPixelsError: 2,

		SmearingMean:        2,
		SmearingVariance:    2,
		SmearingPixelsError: 2,
	}
}

// parSlots lists the header parameter slots of a family in canonical
// order. Unused slots stay zero.
func (p *Params) parSlots(fam entint.Family) [entint.NumParSlots]uint32 {
	switch fam {
	case entint.FamilyImagette:
		return [entint.NumParSlots]uint32{p.NCImagette}
	case entint.FamilySatImagette:
		return [entint.NumParSlots]uint32{p.SatImagette}
	case entint.FamilyFCam:
		return [entint.NumParSlots]uint32{p.FCImagette}
	case entint.FamilyShortCadence:
		return [entint.NumParSlots]uint32{p.SExpFlags, p.SFx, p.SNcob, p.SEfx, p.SEcob}
	case entint.FamilyLongCadence:
		return [entint.NumParSlots]uint32{p.LExpFlags, p.LFx, p.LNcob, p.LEfx, p.LEcob, p.LFxVariance, p.LCobVariance}
	case entint.FamilyFastCadence:
		return [entint.NumParSlots]uint32{0, p.FFx, p.FNcob, p.FEfx, p.FEcob}
	case entint.FamilyOffsetBackground:
		return [entint.NumParSlots]uint32{
			p.OffsetMean, p.OffsetVariance,
			p.BackgroundMean, p.BackgroundVariance, p.BackgroundPixelsError,
		}
	case entint.FamilySmearing:
		return [entint.NumParSlots]uint32{p.SmearingMean, p.SmearingVariance, p.SmearingPixelsError}
	case entint.FamilyNone:
		return [entint.NumParSlots]uint32{}
	default:
		return [entint.NumParSlots]uint32{}
	}
}

// headerSlots derives the (parameter, spillover) header slots of a family.
// Entropy-coding modes get the maximum legal spillover of each parameter;
// stuff and raw carry none.
func (p *Params) headerSlots(fam entint.Family) [entint.NumParSlots]entint.ParPair {
	pars := p.parSlots(fam)
	imagette := familyIsImagette(fam)

	var slots [entint.NumParSlots]entint.ParPair

	for i, par := range pars {
		slots[i].Par = par

		if par != 0 && p.Mode != ModeStuff && p.Mode != ModeRaw {
			if imagette {
				slots[i].Spill = sdcint.ImaMaxSpill(par)
			} else {
				slots[i].Spill = sdcint.MaxSpill(par)
			}
		}
	}

	return slots
}

func familyIsImagette(fam entint.Family) bool {
	switch fam {
	case entint.FamilyImagette, entint.FamilySatImagette, entint.FamilyFCam:
		return true
	default:
		return false
	}
}

// slotIndex maps a field of a collection type onto its header slot. The
// offset/background family keeps the two layouts in disjoint slots.
func slotIndex(fam entint.Family, t DataType, kind sdcint.FieldKind) (int, error) {
	switch fam {
	case entint.FamilyImagette, entint.FamilySatImagette, entint.FamilyFCam:
		if kind == sdcint.FieldImagette {
			return 0, nil
		}

	case entint.FamilyShortCadence, entint.FamilyLongCadence, entint.FamilyFastCadence:
		switch kind {
		case sdcint.FieldExpFlags:
			return 0, nil
		case sdcint.FieldFx:
			return 1, nil
		case sdcint.FieldNcob:
			return 2, nil
		case sdcint.FieldEfx:
			return 3, nil
		case sdcint.FieldEcob:
			return 4, nil
		case sdcint.FieldFxVariance:
			return 5, nil
		case sdcint.FieldCobVariance:
			return 6, nil
		}

	case entint.FamilyOffsetBackground:
		base := 0
		if t == DataTypeBackground {
			base = 2
		}

		switch kind {
		case sdcint.FieldMean:
			return base, nil
		case sdcint.FieldVariance:
			return base + 1, nil
		case sdcint.FieldPixelsError:
			return base + 2, nil
		}

	case entint.FamilySmearing:
		switch kind {
		case sdcint.FieldMean:
			return 0, nil
		case sdcint.FieldVariance:
			return 1, nil
		case sdcint.FieldPixelsError:
			return 2, nil
		}

	case entint.FamilyNone:
	}

	return 0, fmt.Errorf("%w: field kind %d in family %d", ErrConfig, kind, fam)
}

// slotPars builds the per-field parameter lookup of a collection type from
// header slots.
func slotPars(
	fam entint.Family,
	t DataType,
	slots [entint.NumParSlots]entint.ParPair,
) func(sdcint.FieldKind) (uint32, uint32) {
	return func(kind sdcint.FieldKind) (uint32, uint32) {
		idx, err := slotIndex(fam, t, kind)
		if err != nil {
			return 0, 0
		}

		return slots[idx].Par, slots[idx].Spill
	}
}
