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

// Payload-level compression: the entropy-coded bit stream without the
// container header. CompressEntity and Compressor frame these payloads.

// sameStart reports whether two buffers share their first element. Buffer
// contracts forbid aliasing between inputs and outputs.
func sameStart(a, b []byte) bool {
	return len(a) > 0 && len(b) > 0 && &a[0] == &b[0]
}

// checkBuffers enforces the buffer contract of a compression or
// decompression call. data is the uncompressed-side buffer the model must
// match in length.
func (c *Config) checkBuffers(data, model, updatedModel, dst []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: no input data", ErrConfig)
	}

	if c.Mode.IsModel() {
		if model == nil {
			return fmt.Errorf("%w: mode %d needs a model buffer", ErrConfig, c.Mode)
		}

		if len(model) != len(data) {
			return fmt.Errorf("%w: model length %d, data length %d", ErrConfig, len(model), len(data))
		}

		if sameStart(model, data) || sameStart(model, dst) {
			return fmt.Errorf("%w: model buffer overlaps data or destination", ErrConfig)
		}

		if updatedModel != nil {
			if len(updatedModel) != len(data) {
				return fmt.Errorf("%w: updated-model length %d, data length %d", ErrConfig, len(updatedModel), len(data))
			}

			if sameStart(updatedModel, data) || sameStart(updatedModel, dst) {
				return fmt.Errorf("%w: updated-model buffer overlaps data or destination", ErrConfig)
			}
		}
	}

	if sameStart(data, dst) {
		return fmt.Errorf("%w: data and destination buffers overlap", ErrConfig)
	}

	return nil
}

// CompressData compresses data into dst and returns the compressed length
// in bits. A nil dst measures the compressed length without writing. In
// model modes the model buffer is read and, when updatedModel is non-nil,
// the blended model is written there. Raw mode copies the big-endian image
// and requires a bound destination at least as large as the input.
func CompressData(cfg *Config, data, model, updatedModel, dst []byte) (uint32, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}

	if err := cfg.checkBuffers(data, model, updatedModel, dst); err != nil {
		return 0, err
	}

	if cfg.Mode == ModeRaw {
		if dst == nil || len(dst) < len(data) {
			return 0, fmt.Errorf("%w: %w: raw mode needs %d bytes", ErrEncode, sdcint.ErrSmallBuffer, len(data))
		}

		copy(dst, data)

		return uint32(len(data)) * 8, nil //nolint:gosec // bounded by the 24-bit entity size
	}

	coders, err := buildCoders(cfg.DataType, cfg.Mode, cfg.Round, cfg.maxUsedBits(), cfg.fieldPars)
	if err != nil {
		return 0, err
	}

	bits, err := sdcint.Encode(
		cfg.DataType, coders, cfg.Mode.prediction(), cfg.ModelValue,
		data, model, updatedModel, dst,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	debugf("compressed %d bytes of data type %d to %d bits", len(data), cfg.DataType, bits)

	return bits, nil
}

// DecompressData decodes a compressed payload into dst, whose length must
// equal the original data size; it determines the record count. Returns
// the number of stream bits consumed.
func DecompressData(cfg *Config, cmp, model, dst, updatedModel []byte) (uint32, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}

	if err := cfg.checkBuffers(dst, model, updatedModel, cmp); err != nil {
		return 0, err
	}

	if cfg.Mode == ModeRaw {
		if len(cmp) < len(dst) {
			return 0, fmt.Errorf("%w: %w: raw payload shorter than original size", ErrDecode, sdcint.ErrSmallBuffer)
		}

		copy(dst, cmp[:len(dst)])

		return uint32(len(dst)) * 8, nil //nolint:gosec // bounded by the 24-bit entity size
	}

	coders, err := buildCoders(cfg.DataType, cfg.Mode, cfg.Round, cfg.maxUsedBits(), cfg.fieldPars)
	if err != nil {
		return 0, err
	}

	bits, err := sdcint.Decode(
		cfg.DataType, coders, cfg.Mode.prediction(), cfg.ModelValue,
		cmp, model, dst, updatedModel,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return bits, nil
}
