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

// Entity framing: the self-describing container header in front of a
// compressed payload. The configuration travels inside the header, so a
// decoder needs nothing but the entity (and the model, for model modes).
// The header carries no MaxUsedBits table: entities are decoded with the
// default field widths.

// Timestamp is a spacecraft time: 32-bit coarse seconds and a 16-bit
// fine-time fraction.
type Timestamp = entint.Timestamp

// MaxOriginalSize is the largest original data size an entity can record.
const MaxOriginalSize = entint.MaxOriginalSize

// wordAlign rounds a byte count up to a 32-bit boundary.
func wordAlign(n int) int {
	return (n + 3) &^ 3
}

// bitsToBytes rounds a bit count up to whole bytes.
func bitsToBytes(bits uint32) int {
	return int(bits+7) / 8
}

// setFieldPars is the write-side mirror of fieldPars.
func (c *Config) setFieldPars(kind sdcint.FieldKind, par, spill uint32) {
	switch kind {
	case sdcint.FieldImagette:
		c.ParImagette, c.SpillImagette = par, spill
	case sdcint.FieldExpFlags:
		c.ParExpFlags, c.SpillExpFlags = par, spill
	case sdcint.FieldFx:
		c.ParFx, c.SpillFx = par, spill
	case sdcint.FieldNcob:
		c.ParNcob, c.SpillNcob = par, spill
	case sdcint.FieldEfx:
		c.ParEfx, c.SpillEfx = par, spill
	case sdcint.FieldEcob:
		c.ParEcob, c.SpillEcob = par, spill
	case sdcint.FieldFxVariance, sdcint.FieldCobVariance:
		c.ParFxCobVariance, c.SpillFxCobVariance = par, spill
	case sdcint.FieldMean:
		c.ParMean, c.SpillMean = par, spill
	case sdcint.FieldVariance:
		c.ParVariance, c.SpillVariance = par, spill
	case sdcint.FieldPixelsError:
		c.ParPixelsError, c.SpillPixelsError = par, spill
	}
}

// headerFor assembles the container header of a legacy (single data type)
// entity.
func (c *Config) headerFor(originalSize int) (*entint.Header, error) {
	if originalSize > MaxOriginalSize {
		return nil, fmt.Errorf("%w: %w: %d bytes", ErrEncode, entint.ErrTooLarge, originalSize)
	}

	h := &entint.Header{
		Version:      entint.Version,
		Raw:          c.Mode == ModeRaw,
		OriginalSize: uint32(originalSize), //nolint:gosec // checked above
		DataType:     c.DataType,
		ModelID:      c.ModelID,
		ModelCounter: c.ModelCounter,
		Mode:         uint8(c.Mode),
		ModelValue:   uint8(c.ModelValue), //nolint:gosec // validated <= 16
		Round:        uint8(c.Round),      //nolint:gosec // validated <= 3
	}

	if c.DataType.IsImagette() {
		h.ImaPar = c.ParImagette
		h.ImaSpill = c.SpillImagette

		return h, nil
	}

	for i, g := range c.usedFieldGroups() {
		if i >= entint.NumParSlots {
			break
		}

		par, spill := c.fieldPars(g.kind)
		h.Pars[i] = entint.ParPair{Par: par, Spill: spill}
	}

	return h, nil
}

// configFromHeader rebuilds the decoding configuration of a legacy entity.
func configFromHeader(h *entint.Header) *Config {
	cfg := &Config{
		DataType:     h.DataType,
		Mode:         Mode(h.Mode),
		ModelValue:   uint32(h.ModelValue),
		Round:        uint32(h.Round),
		ModelID:      h.ModelID,
		ModelCounter: h.ModelCounter,
	}

	if h.DataType.IsImagette() {
		cfg.ParImagette = h.ImaPar
		cfg.SpillImagette = h.ImaSpill

		return cfg
	}

	for i, g := range cfg.usedFieldGroups() {
		if i >= entint.NumParSlots {
			break
		}

		cfg.setFieldPars(g.kind, h.Pars[i].Par, h.Pars[i].Spill)
	}

	return cfg
}

// CompressEntity compresses data and frames it with the container header.
// Returns the number of bytes written to dst. Timestamps of legacy
// entities are zero; the chunk Compressor stamps real ones.
func CompressEntity(cfg *Config, data, model, updatedModel, dst []byte) (int, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}

	h, err := cfg.headerFor(len(data))
	if err != nil {
		return 0, err
	}

	hdrSize := h.Size()
	if len(dst) < hdrSize {
		return 0, fmt.Errorf("%w: %w", ErrEncode, entint.ErrTooSmall)
	}

	bits, err := CompressData(cfg, data, model, updatedModel, dst[hdrSize:])
	if err != nil {
		return 0, err
	}

	payloadBytes := bitsToBytes(bits)
	if cfg.Mode != ModeRaw {
		payload := dst[hdrSize:]
		if _, err := sdcint.PadToWord(payload, bits, sdcint.StreamCap(payload)); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrEncode, err)
		}

		payloadBytes = wordAlign(payloadBytes)
	}

	if _, err := entint.WriteHeader(dst, h); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	return hdrSize + payloadBytes, nil
}

// DecompressEntity decodes one entity into dst and returns the original
// data size. dst must hold at least the header's original size. For model
// modes the model (and optional updated model) must match the original
// data in size and structure.
func DecompressEntity(ent, model, updatedModel, dst []byte) (int, error) {
	h, err := entint.ParseHeader(ent)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	orig := int(h.OriginalSize)
	if len(dst) < orig {
		return 0, fmt.Errorf("%w: %w: need %d bytes", ErrDecode, sdcint.ErrSmallBuffer, orig)
	}

	payload := ent[h.Size():]

	if h.Raw {
		if len(payload) < orig {
			return 0, fmt.Errorf("%w: %w: raw payload truncated", ErrDecode, sdcint.ErrSmallBuffer)
		}

		copy(dst[:orig], payload)

		return orig, nil
	}

	if h.DataType == DataTypeChunk {
		return decompressChunkEntity(h, payload, model, updatedModel, dst[:orig])
	}

	cfg := configFromHeader(h)

	if _, err := DecompressData(cfg, payload, model, dst[:orig], updatedModel); err != nil {
		return 0, err
	}

	return orig, nil
}
