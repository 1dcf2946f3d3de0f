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

// Decode is the exact inverse of Encode. dst must be sized to the original
// data (collection header plus a whole number of records); its length
// determines the record count. Returns the number of stream bits consumed.
//
//nolint:funlen,gocognit // single hot loop, mirrors Encode
func Decode(
	t DataType,
	coders []FieldCoder,
	pred Prediction,
	modelValue uint32,
	cmp []byte,
	model, dst, updatedModel []byte,
) (uint32, error) {
	layout := Layout(t)
	if layout == nil {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedType, t)
	}

	recSize := RecordSize(t)
	maxStream := StreamCap(cmp)

	var pos uint32

	if t.HasCollectionHeader() {
		if len(dst) < CollectionHdrSize {
			return 0, fmt.Errorf("%w: no room for collection header", ErrDataLength)
		}

		if len(cmp) < CollectionHdrSize {
			return 0, ErrSmallBuffer
		}

		copy(dst[:CollectionHdrSize], cmp[:CollectionHdrSize])

		if updatedModel != nil {
			copy(updatedModel[:CollectionHdrSize], cmp[:CollectionHdrSize])
			updatedModel = updatedModel[CollectionHdrSize:]
		}

		dst = dst[CollectionHdrSize:]
		if pred == PredictModel {
			model = model[CollectionHdrSize:]
		}

		pos = CollectionHdrSize * 8
	}

	if len(dst)%recSize != 0 {
		return 0, fmt.Errorf("%w: %d bytes, record size %d", ErrDataLength, len(dst), recSize)
	}

	var (
		prev [maxRecordFields]uint32
		err  error
	)

	for off := 0; off < len(dst); off += recSize {
		fieldOff := 0

		for j, f := range layout {
			coder := &coders[j]

			var mdl uint32

			switch pred {
			case PredictModel:
				mdl = getField(model[off+fieldOff:], f.Wire)
			case PredictDiff:
				mdl = prev[j]
			case PredictNone:
			}

			var value uint32

			value, pos, err = coder.DecodeValue(cmp, pos, maxStream, mdl)
			if err != nil {
				return 0, fmt.Errorf("record %d field %d: %w", off/recSize, j, err)
			}

			putField(dst[off+fieldOff:], f.Wire, value)

			if pred == PredictModel && updatedModel != nil {
				up := UpdateModel(value, mdl, modelValue, coder.round, coder.maxBits)
				putField(updatedModel[off+fieldOff:], f.Wire, up)
			}

			prev[j] = value
			fieldOff += f.Wire
		}
	}

	return pos, nil
}
