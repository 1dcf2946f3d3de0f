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

// MaxUsedBits declares the used bit width of every field the codec can
// encounter. The width bounds the residual domain and is the literal width
// of the zero-escape mechanism.
type MaxUsedBits struct {
	NCImagette  uint32
	SatImagette uint32
	FCImagette  uint32

	SExpFlags uint32
	SFx       uint32
	SEfx      uint32
	SNcob     uint32
	SEcob     uint32

	FFx   uint32
	FEfx  uint32
	FNcob uint32
	FEcob uint32

	LExpFlags    uint32
	LFx          uint32
	LEfx         uint32
	LNcob        uint32
	LEcob        uint32
	LFxVariance  uint32
	LCobVariance uint32

	NCOffsetMean     uint32
	NCOffsetVariance uint32

	NCBackgroundMean        uint32
	NCBackgroundVariance    uint32
	NCBackgroundPixelsError uint32

	SmearingMean        uint32
	SmearingVariance    uint32
	SmearingPixelsError uint32
}

// DefaultMaxUsedBits returns the nominal per-field bit widths of the
// instrument data formats.
func DefaultMaxUsedBits() *MaxUsedBits {
	return &MaxUsedBits{
		NCImagette:  16,
		SatImagette: 16,
		FCImagette:  16,

		SExpFlags: 2,
		SFx:       21,
		SEfx:      24,
		SNcob:     20,
		SEcob:     20,

		FFx:   21,
		FEfx:  21,
		FNcob: 20,
		FEcob: 20,

		LExpFlags:    24,
		LFx:          21,
		LEfx:         24,
		LNcob:        20,
		LEcob:        20,
		LFxVariance:  21,
		LCobVariance: 25,

		NCOffsetMean:     12,
		NCOffsetVariance: 20,

		NCBackgroundMean:        12,
		NCBackgroundVariance:    20,
		NCBackgroundPixelsError: 16,

		SmearingMean:        12,
		SmearingVariance:    16,
		SmearingPixelsError: 16,
	}
}

// Validate rejects a table with any width of zero or above 32 bits.
func (m *MaxUsedBits) Validate() error {
	fields := []struct {
		name string
		val  uint32
	}{
		{"nc_imagette", m.NCImagette},
		{"sat_imagette", m.SatImagette},
		{"fc_imagette", m.FCImagette},
		{"s_exp_flags", m.SExpFlags},
		{"s_fx", m.SFx},
		{"s_efx", m.SEfx},
		{"s_ncob", m.SNcob},
		{"s_ecob", m.SEcob},
		{"f_fx", m.FFx},
		{"f_efx", m.FEfx},
		{"f_ncob", m.FNcob},
		{"f_ecob", m.FEcob},
		{"l_exp_flags", m.LExpFlags},
		{"l_fx", m.LFx},
		{"l_efx", m.LEfx},
		{"l_ncob", m.LNcob},
		{"l_ecob", m.LEcob},
		{"l_fx_variance", m.LFxVariance},
		{"l_cob_variance", m.LCobVariance},
		{"nc_offset_mean", m.NCOffsetMean},
		{"nc_offset_variance", m.NCOffsetVariance},
		{"nc_background_mean", m.NCBackgroundMean},
		{"nc_background_variance", m.NCBackgroundVariance},
		{"nc_background_pixels_error", m.NCBackgroundPixelsError},
		{"smearing_mean", m.SmearingMean},
		{"smearing_variance", m.SmearingVariance},
		{"smearing_pixels_error", m.SmearingPixelsError},
	}

	for _, f := range fields {
		if f.val == 0 || f.val > 32 {
			return fmt.Errorf("%w: max used bits of %s is %d", ErrParameter, f.name, f.val)
		}
	}

	return nil
}
