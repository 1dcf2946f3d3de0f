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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// leftAlign turns a right-aligned code word into a decoder stream window.
func leftAlign(cw, cwLen uint32) uint32 {
	if cwLen == 0 {
		return 0
	}

	return cw << (32 - cwLen)
}

func TestRiceEncode_KnownCodewords(t *testing.T) {
	tests := []struct {
		value, m, log2M uint32
		wantCw          uint32
		wantLen         uint32
	}{
		// m=1 (k=0): pure unary.
		{0, 1, 0, 0b0, 1},
		{1, 1, 0, 0b10, 2},
		{2, 1, 0, 0b110, 3},
		{5, 1, 0, 0b111110, 6},
		// m=4 (k=2).
		{0, 4, 2, 0b000, 3},
		{3, 4, 2, 0b011, 3},
		{4, 4, 2, 0b1000, 4},
		{11, 4, 2, 0b11011, 5},
	}

	for _, tt := range tests {
		cw, cwLen := RiceEncode(tt.value, tt.m, tt.log2M)
		assert.Equal(t, tt.wantCw, cw, "value %d m %d", tt.value, tt.m)
		assert.Equal(t, tt.wantLen, cwLen, "value %d m %d", tt.value, tt.m)
	}
}

func TestGolombEncode_KnownCodewords(t *testing.T) {
	// m=3: k=1, cutoff=1.
	tests := []struct {
		value   uint32
		wantCw  uint32
		wantLen uint32
	}{
		{0, 0b00, 2},
		{1, 0b010, 3},
		{2, 0b011, 3},
		{3, 0b100, 3},
		{4, 0b1010, 4},
		{14, 0b1111011, 7},
		{15, 0b1111100, 7},
	}

	for _, tt := range tests {
		cw, cwLen := GolombEncode(tt.value, 3, 1)
		assert.Equal(t, tt.wantCw, cw, "value %d", tt.value)
		assert.Equal(t, tt.wantLen, cwLen, "value %d", tt.value)
	}
}

func TestGolomb_SelfInverse(t *testing.T) {
	ms := []uint32{1, 2, 3, 4, 5, 7, 8, 13, 16, 21, 63, 64, 100, 255, 256, 4096, 1 << 20, 1 << 30, 1 << 31}
	values := []uint32{0, 1, 2, 3, 7, 8, 42, 100, 623, 65535, 1 << 20}

	for _, m := range ms {
		enc, dec := SelectCodec(m)
		log2M := Ilog2(m)

		for _, v := range values {
			cw, cwLen := enc(v, m, log2M)
			if cwLen > MaxCodewordBits {
				continue // escape territory
			}

			got, gotLen := dec(leftAlign(cw, cwLen), m, log2M)
			require.Equal(t, v, got, "m=%d v=%d", m, v)
			require.Equal(t, cwLen, gotLen, "m=%d v=%d", m, v)
		}
	}
}

func TestGolomb_PowerOfTwoMatchesRice(t *testing.T) {
	for _, m := range []uint32{1, 2, 4, 8, 16, 64, 1024, 1 << 20} {
		log2M := Ilog2(m)

		for v := uint32(0); v < 200; v++ {
			riceCw, riceLen := RiceEncode(v, m, log2M)
			golCw, golLen := GolombEncode(v, m, log2M)

			if riceLen > MaxCodewordBits {
				assert.Greater(t, golLen, uint32(MaxCodewordBits))

				continue
			}

			require.Equal(t, riceLen, golLen, "m=%d v=%d", m, v)
			require.Equal(t, riceCw, golCw, "m=%d v=%d", m, v)
		}
	}
}

func TestRiceEncode_OverlongValueReported(t *testing.T) {
	// m=1 makes every value a unary run; values above 31 cannot fit.
	_, cwLen := RiceEncode(1000, 1, 0)
	assert.Greater(t, cwLen, uint32(MaxCodewordBits))
}

func TestSelectCodec(t *testing.T) {
	assert.True(t, IsPow2(1))
	assert.True(t, IsPow2(64))
	assert.False(t, IsPow2(3))
	assert.False(t, IsPow2(96))

	assert.Equal(t, uint32(0), Ilog2(1))
	assert.Equal(t, uint32(1), Ilog2(3))
	assert.Equal(t, uint32(5), Ilog2(63))
	assert.Equal(t, uint32(6), Ilog2(64))
	assert.Equal(t, uint32(31), Ilog2(1<<31))
}
