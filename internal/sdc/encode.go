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

// Typed per-record passes. One pass walks the input in insertion order and
// applies prediction, mapping, and coding per field through the prepared
// FieldCoder set.

// Prediction selects the model source of a pass.
type Prediction uint8

//revive:disable:exported
const (
	// PredictNone codes values without a prediction (stuff method).
	PredictNone Prediction = iota
	// PredictDiff predicts each field from the previous record's field;
	// the first record predicts from zero.
	PredictDiff
	// PredictModel predicts each field from the caller-supplied model.
	PredictModel
)

// CollectionHdrSize is the verbatim-copied header in front of every
// multi-entry record sequence.
const CollectionHdrSize = 12

// measureCap bounds the stream arithmetic when no destination is bound.
const measureCap = uint32(1) << 31

// maxRecordFields is the widest record layout.
const maxRecordFields = 10

// Encode compresses the records of src into dst and returns the compressed
// length in bits. A nil dst measures without writing. The coders slice is
// parallel to Layout(t). model is read for PredictModel; updatedModel, when
// non-nil in a model pass, receives the blended model.
//
//nolint:funlen,gocognit // single hot loop, mirrors Decode
func Encode(
	t DataType,
	coders []FieldCoder,
	pred Prediction,
	modelValue uint32,
	src, model, updatedModel, dst []byte,
) (uint32, error) {
	layout := Layout(t)
	if layout == nil {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedType, t)
	}

	recSize := RecordSize(t)

	maxStream := measureCap
	if dst != nil {
		maxStream = StreamCap(dst)
	}

	var pos uint32

	if t.HasCollectionHeader() {
		if len(src) < CollectionHdrSize {
			return 0, fmt.Errorf("%w: no room for collection header", ErrDataLength)
		}

		if dst != nil {
			if len(dst) < CollectionHdrSize {
				return 0, ErrSmallBuffer
			}

			copy(dst[:CollectionHdrSize], src[:CollectionHdrSize])
		}

		if updatedModel != nil {
			copy(updatedModel[:CollectionHdrSize], src[:CollectionHdrSize])
			updatedModel = updatedModel[CollectionHdrSize:]
		}

		src = src[CollectionHdrSize:]
		if pred == PredictModel {
			model = model[CollectionHdrSize:]
		}

		pos = CollectionHdrSize * 8
	}

	if len(src)%recSize != 0 {
		return 0, fmt.Errorf("%w: %d bytes, record size %d", ErrDataLength, len(src), recSize)
	}

	var (
		prev [maxRecordFields]uint32
		err  error
	)

	for off := 0; off < len(src); off += recSize {
		fieldOff := 0

		for j, f := range layout {
			coder := &coders[j]
			data := getField(src[off+fieldOff:], f.Wire)

			var mdl uint32

			switch pred {
			case PredictModel:
				mdl = getField(model[off+fieldOff:], f.Wire)
			case PredictDiff:
				mdl = prev[j]
			case PredictNone:
			}

			pos, err = coder.EncodeValue(dst, pos, maxStream, data, mdl)
			if err != nil {
				return 0, fmt.Errorf("record %d field %d: %w", off/recSize, j, err)
			}

			if pred == PredictModel && updatedModel != nil {
				up := UpdateModel(data, mdl, modelValue, coder.round, coder.maxBits)
				putField(updatedModel[off+fieldOff:], f.Wire, up)
			}

			prev[j] = data
			fieldOff += f.Wire
		}
	}

	return pos, nil
}
