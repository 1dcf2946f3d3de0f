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

package sdc_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdc "github.com/mycophonic/saprobe-sdc"
)

// genSmoothRecords builds records whose fields walk in small steps, the
// shape the difference and model predictors are built for.
func genSmoothRecords(t sdc.DataType, records int, seed uint32) []byte {
	specs := typeSpecs[t]
	state := seed | 1

	var (
		buf  []byte
		base [16]uint32
	)

	for n := 0; n < records; n++ {
		for j, s := range specs {
			mask := ^uint32(0) >> (32 - s.bits)
			base[j] = (base[j] + (xorshift(&state) & 7)) & mask

			field := make([]byte, s.wire)
			for b := 0; b < s.wire; b++ {
				field[s.wire-1-b] = byte(base[j] >> (8 * b))
			}

			buf = append(buf, field...)
		}
	}

	return buf
}

func TestChunk_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		types []sdc.DataType
		mode  sdc.Mode
	}{
		{"short cadence diff zero", []sdc.DataType{sdc.DataTypeSFx, sdc.DataTypeSFxEfx}, sdc.ModeDiffZero},
		{"short cadence diff multi", []sdc.DataType{sdc.DataTypeSFx, sdc.DataTypeSFxEfxNcobEcob}, sdc.ModeDiffMulti},
		{"long cadence", []sdc.DataType{sdc.DataTypeLFx, sdc.DataTypeLFxEfxNcobEcob}, sdc.ModeDiffZero},
		{"fast cadence", []sdc.DataType{sdc.DataTypeFFx, sdc.DataTypeFFxNcob}, sdc.ModeDiffZero},
		{"offset and background", []sdc.DataType{sdc.DataTypeOffset, sdc.DataTypeBackground}, sdc.ModeDiffZero},
		{"smearing", []sdc.DataType{sdc.DataTypeSmearing}, sdc.ModeDiffMulti},
		{"imagette", []sdc.DataType{sdc.DataTypeImagette, sdc.DataTypeImagette}, sdc.ModeDiffZero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunk := buildChunkWithHeaders(t, tt.types, 12, 0x5EED)

			par := *sdc.DefaultParams()
			par.Mode = tt.mode

			comp := &sdc.Compressor{Par: par, ModelID: 42, ModelCounter: 3}

			bound, err := comp.Bound(chunk)
			require.NoError(t, err)

			ent, err := comp.Compress(chunk, nil, nil, make([]byte, bound))
			require.NoError(t, err)
			assert.LessOrEqual(t, len(ent), bound, "bound must hold for legal inputs")

			decoded := make([]byte, len(chunk))

			size, err := sdc.DecompressEntity(ent, nil, nil, decoded)
			require.NoError(t, err)
			assert.Equal(t, len(chunk), size)
			assert.Equal(t, chunk, decoded)
		})
	}
}

// buildChunkWithHeaders builds a chunk whose imagette collections also get
// collection headers (inside a chunk every collection carries one).
func buildChunkWithHeaders(t *testing.T, types []sdc.DataType, records int, seed uint32) []byte {
	t.Helper()

	var chunk []byte

	for i, typ := range types {
		sub := subserviceFor(typ)
		if sub == 0 {
			sub = sdc.SubserviceImagette
		}

		data := genSmoothRecords(typ, records, seed+uint32(i)*7)
		chunk = append(chunk, collectionHdr(sub, len(data))...)
		chunk = append(chunk, data...)
	}

	return chunk
}

func TestChunk_ModelRoundTrip(t *testing.T) {
	types := []sdc.DataType{sdc.DataTypeSFx, sdc.DataTypeSFxEfx}
	chunk := buildChunkWithHeaders(t, types, 10, 0x1111)
	model := buildChunkWithHeaders(t, types, 10, 0x1113) // close to the data, as a real prior is

	par := *sdc.DefaultParams()
	par.Mode = sdc.ModeModelMulti
	par.ModelValue = 12

	comp := &sdc.Compressor{Par: par}

	bound, err := comp.Bound(chunk)
	require.NoError(t, err)

	updated := make([]byte, len(chunk))

	ent, err := comp.Compress(chunk, model, updated, make([]byte, bound))
	require.NoError(t, err)

	decoded := make([]byte, len(chunk))
	decodedUpdated := make([]byte, len(chunk))

	size, err := sdc.DecompressEntity(ent, model, decodedUpdated, decoded)
	require.NoError(t, err)
	assert.Equal(t, len(chunk), size)
	assert.Equal(t, chunk, decoded)
	assert.Equal(t, updated, decodedUpdated,
		"compressor and decompressor must derive the same updated model chunk")
}

func TestChunk_ModelStructureMismatch(t *testing.T) {
	chunk := buildChunkWithHeaders(t, []sdc.DataType{sdc.DataTypeSFx}, 4, 1)
	model := buildChunkWithHeaders(t, []sdc.DataType{sdc.DataTypeSFxEfx}, 4, 1)

	par := *sdc.DefaultParams()
	par.Mode = sdc.ModeModelZero

	comp := &sdc.Compressor{Par: par}

	_, err := comp.Compress(chunk, model, nil, make([]byte, 4096))
	assert.ErrorIs(t, err, sdc.ErrConfig)
}

func TestChunk_MixedFamiliesRejected(t *testing.T) {
	chunk := buildChunkWithHeaders(t, []sdc.DataType{sdc.DataTypeSFx, sdc.DataTypeLFx}, 4, 1)

	comp := &sdc.Compressor{Par: *sdc.DefaultParams()}

	_, err := comp.Bound(chunk)
	assert.ErrorIs(t, err, sdc.ErrChunk)

	_, err = comp.Compress(chunk, nil, nil, make([]byte, 4096))
	assert.ErrorIs(t, err, sdc.ErrChunk)
}

func TestChunk_BadCollectionLength(t *testing.T) {
	// 13 data bytes is not a multiple of the 5-byte record.
	chunk := collectionHdr(sdc.SubserviceSFx, 13)
	chunk = append(chunk, make([]byte, 13)...)

	comp := &sdc.Compressor{Par: *sdc.DefaultParams()}

	_, err := comp.Compress(chunk, nil, nil, make([]byte, 4096))
	assert.ErrorIs(t, err, sdc.ErrChunk)
}

func TestChunk_InconsistentSize(t *testing.T) {
	chunk := buildChunkWithHeaders(t, []sdc.DataType{sdc.DataTypeSFx}, 4, 1)
	chunk = append(chunk, 0xAA) // trailing byte belongs to no collection

	comp := &sdc.Compressor{Par: *sdc.DefaultParams()}

	_, err := comp.Compress(chunk, nil, nil, make([]byte, 4096))
	assert.ErrorIs(t, err, sdc.ErrChunk)
}

func TestChunk_UnsupportedSubservice(t *testing.T) {
	for _, sub := range []sdc.Subservice{sdc.SubserviceFCamOffset, 200} {
		chunk := collectionHdr(sub, 8)
		chunk = append(chunk, make([]byte, 8)...)

		comp := &sdc.Compressor{Par: *sdc.DefaultParams()}

		_, err := comp.Compress(chunk, nil, nil, make([]byte, 4096))
		assert.ErrorIs(t, err, sdc.ErrChunk, "subservice %d", sub)
	}
}

func TestChunk_TooLargeRefused(t *testing.T) {
	comp := &sdc.Compressor{Par: *sdc.DefaultParams()}

	_, err := comp.Bound(make([]byte, sdc.MaxOriginalSize+1))
	assert.ErrorIs(t, err, sdc.ErrChunk)
}

func TestChunk_Timestamps(t *testing.T) {
	chunk := buildChunkWithHeaders(t, []sdc.DataType{sdc.DataTypeSFx}, 4, 9)

	calls := 0
	comp := &sdc.Compressor{
		Par: *sdc.DefaultParams(),
		Timestamp: func() (sdc.Timestamp, error) {
			calls++

			return sdc.Timestamp{Coarse: uint32(0x1000 + calls), Fine: uint16(calls)}, nil
		},
	}

	ent, err := comp.Compress(chunk, nil, nil, make([]byte, 4096))
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "start and end stamps only")

	// Start timestamp at bytes 7..12, end at 13..18.
	assert.Equal(t, []byte{0x00, 0x00, 0x10, 0x01, 0x00, 0x01}, ent[7:13])
	assert.Equal(t, []byte{0x00, 0x00, 0x10, 0x02, 0x00, 0x02}, ent[13:19])
}

func TestChunk_TimestampError(t *testing.T) {
	chunk := buildChunkWithHeaders(t, []sdc.DataType{sdc.DataTypeSFx}, 4, 9)

	comp := &sdc.Compressor{
		Par: *sdc.DefaultParams(),
		Timestamp: func() (sdc.Timestamp, error) {
			return sdc.Timestamp{}, errors.New("clock not synchronised")
		},
	}

	_, err := comp.Compress(chunk, nil, nil, make([]byte, 4096))
	assert.ErrorIs(t, err, sdc.ErrEncode)
}

func TestChunk_StuffMode(t *testing.T) {
	chunk := buildChunkWithHeaders(t, []sdc.DataType{sdc.DataTypeSFx, sdc.DataTypeSFx}, 6, 3)

	par := *sdc.DefaultParams()
	par.Mode = sdc.ModeStuff
	par.SExpFlags = 2
	par.SFx = 21

	comp := &sdc.Compressor{Par: par}

	ent, err := comp.Compress(chunk, nil, nil, make([]byte, 4096))
	require.NoError(t, err)

	decoded := make([]byte, len(chunk))

	_, err = sdc.DecompressEntity(ent, nil, nil, decoded)
	require.NoError(t, err)
	assert.Equal(t, chunk, decoded)
}

func TestChunk_InputNotMutated(t *testing.T) {
	chunk := buildChunkWithHeaders(t, []sdc.DataType{sdc.DataTypeSFx}, 8, 5)
	chunkCopy := bytes.Clone(chunk)

	comp := &sdc.Compressor{Par: *sdc.DefaultParams()}

	_, err := comp.Compress(chunk, nil, nil, make([]byte, 4096))
	require.NoError(t, err)
	assert.Equal(t, chunkCopy, chunk)
}
