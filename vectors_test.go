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
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdc "github.com/mycophonic/saprobe-sdc"
)

// Reference bitstreams with literal expected words, pinned against the
// hardware compressor's output format.

func imagetteBytes(samples ...uint16) []byte {
	buf := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.BigEndian.PutUint16(buf[2*i:], s)
	}

	return buf
}

func words(ws ...uint32) []byte {
	buf := make([]byte, 4*len(ws))
	for i, w := range ws {
		binary.BigEndian.PutUint32(buf[4*i:], w)
	}

	return buf
}

func sFxRecord(expFlags uint8, fx uint32) []byte {
	buf := make([]byte, 5)
	buf[0] = expFlags
	binary.BigEndian.PutUint32(buf[1:], fx)

	return buf
}

func collectionHdr(sub sdc.Subservice, dataLen int) []byte {
	hdr := make([]byte, sdc.CollectionHdrSize)
	hdr[8] = uint8(sub)
	binary.BigEndian.PutUint16(hdr[10:], uint16(dataLen))

	return hdr
}

func TestVector_ImagetteDiffZero(t *testing.T) {
	cfg := &sdc.Config{
		DataType:      sdc.DataTypeImagette,
		Mode:          sdc.ModeDiffZero,
		ParImagette:   1,
		SpillImagette: 8,
	}

	data := imagetteBytes(0xFFFF, 1, 0, 42, 0x8000, 0x7FFF, 0xFFFF)
	dst := make([]byte, 12)

	bits, err := sdc.CompressData(cfg, data, nil, nil, dst)
	require.NoError(t, err)
	assert.Equal(t, uint32(66), bits)
	assert.Equal(t, words(0xDF6002AB, 0xFEB70000, 0x00000000), dst)

	decoded := make([]byte, len(data))

	consumed, err := sdc.DecompressData(cfg, dst, nil, decoded, nil)
	require.NoError(t, err)
	assert.Equal(t, bits, consumed)
	assert.Equal(t, data, decoded)
}

func TestVector_ImagetteModelMulti(t *testing.T) {
	cfg := &sdc.Config{
		DataType:      sdc.DataTypeImagette,
		Mode:          sdc.ModeModelMulti,
		ModelValue:    8,
		ParImagette:   3,
		SpillImagette: 8,
	}

	data := imagetteBytes(0x0000, 0x0001, 0x0042, 0x8000, 0x7FFF, 0xFFFF, 0xFFFF)
	model := imagetteBytes(0x0000, 0xFFFF, 0xF301, 0x8FFF, 0x0000, 0xFFFF, 0x0000)
	wantUpdated := imagetteBytes(0x0000, 0x8000, 0x79A1, 0x87FF, 0x3FFF, 0xFFFF, 0x7FFF)

	updated := make([]byte, len(data))
	dst := make([]byte, 12)

	bits, err := sdc.CompressData(cfg, data, model, updated, dst)
	require.NoError(t, err)
	assert.Equal(t, uint32(76), bits)
	assert.Equal(t, words(0x2BDB4F5E, 0xDFF5F9FF, 0xEC200000), dst)
	assert.Equal(t, wantUpdated, updated)

	decoded := make([]byte, len(data))
	decodedUpdated := make([]byte, len(data))

	_, err = sdc.DecompressData(cfg, dst, model, decoded, decodedUpdated)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
	assert.Equal(t, wantUpdated, decodedUpdated, "decoder must rebuild the encoder's updated model")
}

func TestVector_ImagetteStuff(t *testing.T) {
	cfg := &sdc.Config{
		DataType:    sdc.DataTypeImagette,
		Mode:        sdc.ModeStuff,
		ParImagette: 16,
	}

	data := imagetteBytes(0x0, 0x1, 0x23, 0x42, 0x8000, 0x7FFF, 0xFFFF)
	dst := make([]byte, 16)

	bits, err := sdc.CompressData(cfg, data, nil, nil, dst)
	require.NoError(t, err)
	assert.Equal(t, uint32(7*16), bits)
	assert.Equal(t, []byte{
		0x00, 0x00, 0x00, 0x01, 0x00, 0x23, 0x00, 0x42,
		0x80, 0x00, 0x7F, 0xFF, 0xFF, 0xFF, 0x00, 0x00,
	}, dst)

	decoded := make([]byte, len(data))

	_, err = sdc.DecompressData(cfg, dst, nil, decoded, nil)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestVector_ImagetteRawEntity(t *testing.T) {
	cfg := &sdc.Config{
		DataType: sdc.DataTypeImagette,
		Mode:     sdc.ModeRaw,
	}

	data := imagetteBytes(0x0, 0x1, 0x23, 0x42, 0x8000, 0x7FFF, 0xFFFF)
	dst := make([]byte, 64)

	n, err := sdc.CompressEntity(cfg, data, nil, nil, dst)
	require.NoError(t, err)
	assert.Equal(t, 32+14, n)

	// The original-size field carries the input byte count and the raw
	// flag; the payload is the big-endian image of the samples.
	sizeRaw := binary.BigEndian.Uint32(dst[3:7])
	assert.Equal(t, uint32(14), sizeRaw&0x00FFFFFF)
	assert.NotZero(t, sizeRaw&(1<<31))
	assert.Equal(t, data, dst[32:n])

	decoded := make([]byte, len(data))

	size, err := sdc.DecompressEntity(dst[:n], nil, nil, decoded)
	require.NoError(t, err)
	assert.Equal(t, len(data), size)
	assert.Equal(t, data, decoded)
}

func TestVector_SFxStuff(t *testing.T) {
	cfg := &sdc.Config{
		DataType:    sdc.DataTypeSFx,
		Mode:        sdc.ModeStuff,
		ParExpFlags: 2,
		ParFx:       21,
	}

	records := [][2]uint32{{0, 0x0}, {1, 0x1}, {2, 0x23}, {3, 0x42}, {0, 0x1FFFFF}}

	data := collectionHdr(sdc.SubserviceSFx, 5*5)
	for _, r := range records {
		data = append(data, sFxRecord(uint8(r[0]), r[1])...)
	}

	dst := make([]byte, 28)

	bits, err := sdc.CompressData(cfg, data, nil, nil, dst)
	require.NoError(t, err)
	assert.Equal(t, uint32(5*(2+21)+96), bits)

	// The 12-byte collection header rides in front, verbatim.
	assert.Equal(t, data[:12], dst[:12])
	assert.Equal(t, words(0x00000080, 0x00060001, 0x1E000423, 0xFFFFE000), dst[12:])

	decoded := make([]byte, len(data))

	_, err = sdc.DecompressData(cfg, dst, nil, decoded, nil)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestVector_ChunkRaw(t *testing.T) {
	chunk := collectionHdr(sdc.SubserviceSFx, 2*5)
	chunk = append(chunk, sFxRecord(1, 0x100)...)
	chunk = append(chunk, sFxRecord(2, 0x200)...)

	second := collectionHdr(sdc.SubserviceSFxEfxNcobEcob, 3*25)
	for i := 0; i < 3*25; i++ {
		second = append(second, byte(i))
	}

	chunk = append(chunk, second...)
	require.Len(t, chunk, 109)

	comp := &sdc.Compressor{Par: sdc.Params{Mode: sdc.ModeRaw}}

	bound, err := comp.Bound(chunk)
	require.NoError(t, err)

	ent, err := comp.Compress(chunk, nil, nil, make([]byte, bound))
	require.NoError(t, err)
	assert.Len(t, ent, 56+109, "entity size is the header plus the chunk")
	assert.NotZero(t, ent[3]&0x80, "raw flag set")
	assert.Equal(t, chunk, ent[56:], "body is the chunk verbatim")

	decoded := make([]byte, len(chunk))

	size, err := sdc.DecompressEntity(ent, nil, nil, decoded)
	require.NoError(t, err)
	assert.Equal(t, len(chunk), size)
	assert.Equal(t, chunk, decoded)
}
