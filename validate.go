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
	"errors"
	"fmt"

	sdcint "github.com/mycophonic/saprobe-sdc/internal/sdc"
)

// Configuration validation. No compression work starts on a rejected
// configuration.

// validateShape checks the (data type, mode, endpoint) combination alone.
func (c *Config) validateShape() error {
	if !c.Mode.valid() {
		return fmt.Errorf("%w: unknown mode %d", ErrConfig, c.Mode)
	}

	switch c.DataType {
	case DataTypeUnknown, DataTypeChunk:
		return fmt.Errorf("%w: %w: data type %d", ErrConfig, sdcint.ErrUnsupportedType, c.DataType)

	case DataTypeFCamOffset, DataTypeFCamBackground:
		// Declared but not yet specified.
		return fmt.Errorf("%w: %w: data type %d is not implemented", ErrConfig, sdcint.ErrUnsupportedType, c.DataType)
	}

	if sdcint.Layout(c.DataType) == nil {
		return fmt.Errorf("%w: %w: data type %d", ErrConfig, sdcint.ErrUnsupportedType, c.DataType)
	}

	if c.Endpoint == EndpointRDCU && !c.DataType.IsImagette() {
		return fmt.Errorf("%w: data type %d is not supported by the hardware compressor", ErrConfig, c.DataType)
	}

	return nil
}

// checkPair checks one (parameter, spillover) pair for the entropy-coding
// modes; imagette field groups carry the hardware parameter range.
func checkPair(name string, imagette bool, par, spill uint32) error {
	maxPar := sdcint.MaxNonImaGolombPar
	if imagette {
		maxPar = sdcint.MaxImaGolombPar
	}

	if par == 0 || par > maxPar {
		return fmt.Errorf("%w: %s golomb parameter %d out of [1,%d]", ErrConfig, name, par, maxPar)
	}

	maxSpill := sdcint.MaxSpill(par)
	if imagette {
		maxSpill = sdcint.ImaMaxSpill(par)
	}

	if spill < sdcint.MinSpill || spill > maxSpill {
		return fmt.Errorf("%w: %s spillover %d out of [%d,%d]", ErrConfig, name, spill, sdcint.MinSpill, maxSpill)
	}

	return nil
}

func checkStuffWidth(name string, par uint32) error {
	if par == 0 || par > sdcint.MaxStuffBits {
		return fmt.Errorf("%w: %s stuff width %d out of [1,%d]", ErrConfig, name, par, sdcint.MaxStuffBits)
	}

	return nil
}

func dataTypeIsAdaptive(t DataType) bool {
	switch t {
	case DataTypeImagetteAdaptive, DataTypeSatImagetteAdaptive, DataTypeFCamImagetteAdaptive:
		return true
	default:
		return false
	}
}

// Validate checks the whole configuration. A rejected (data type, mode,
// endpoint) combination is returned alone; once that passes, every other
// violated rule is reported, joined into one error.
//
//nolint:gocognit // one rule per line, the dense error set wants them all
func (c *Config) Validate() error {
	if err := c.validateShape(); err != nil {
		return err
	}

	var errs []error

	if c.ModelValue > MaxModelValue {
		errs = append(errs, fmt.Errorf("%w: model value %d out of [0,%d]", ErrConfig, c.ModelValue, MaxModelValue))
	}

	maxRound := uint32(MaxICURound)
	if c.Endpoint == EndpointRDCU {
		maxRound = MaxRDCURound
	}

	if c.Round > maxRound {
		errs = append(errs, fmt.Errorf("%w: lossy parameter %d out of [0,%d]", ErrConfig, c.Round, maxRound))
	}

	if err := c.maxUsedBits().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrConfig, err))
	}

	switch c.Mode {
	case ModeRaw:
		// No parameters take part.

	case ModeStuff:
		for _, g := range c.usedFieldGroups() {
			par, _ := c.fieldPars(g.kind)
			if err := checkStuffWidth(g.name, par); err != nil {
				errs = append(errs, err)
			}
		}

	case ModeModelZero, ModeDiffZero, ModeModelMulti, ModeDiffMulti:
		imagette := c.DataType.IsImagette()

		for _, g := range c.usedFieldGroups() {
			par, spill := c.fieldPars(g.kind)
			if err := checkPair(g.name, imagette, par, spill); err != nil {
				errs = append(errs, err)
			}
		}

		if dataTypeIsAdaptive(c.DataType) {
			if err := checkPair("adaptive 1", true, c.Ap1Par, c.Ap1Spill); err != nil {
				errs = append(errs, err)
			}

			if err := checkPair("adaptive 2", true, c.Ap2Par, c.Ap2Spill); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

type fieldGroup struct {
	kind sdcint.FieldKind
	name string
}

// usedFieldGroups lists the distinct parameter groups of the configured
// data type in layout order.
func (c *Config) usedFieldGroups() []fieldGroup {
	names := map[sdcint.FieldKind]string{
		sdcint.FieldImagette:    "imagette",
		sdcint.FieldExpFlags:    "exposure flags",
		sdcint.FieldFx:          "flux",
		sdcint.FieldNcob:        "center of brightness",
		sdcint.FieldEfx:         "extended flux",
		sdcint.FieldEcob:        "extended center of brightness",
		sdcint.FieldFxVariance:  "flux variance",
		sdcint.FieldCobVariance: "center-of-brightness variance",
		sdcint.FieldMean:        "mean",
		sdcint.FieldVariance:    "variance",
		sdcint.FieldPixelsError: "outlier pixels",
	}

	seen := map[sdcint.FieldKind]bool{}

	var groups []fieldGroup

	for _, f := range sdcint.Layout(c.DataType) {
		if seen[f.Kind] {
			continue
		}

		seen[f.Kind] = true
		groups = append(groups, fieldGroup{kind: f.Kind, name: names[f.Kind]})
	}

	return groups
}
