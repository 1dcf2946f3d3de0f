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
	"encoding/binary"
	"fmt"

	entint "github.com/mycophonic/saprobe-sdc/internal/entity"
	sdcint "github.com/mycophonic/saprobe-sdc/internal/sdc"
)

// Chunk compression: one atomic compression unit holding one or more
// collections of a single family, framed as one entity.

// CollectionHdrSize is the 12-byte header in front of every collection.
const CollectionHdrSize = entint.CollectionHdrSize

// Subservice identifies the record layout of a collection.
type Subservice = entint.Subservice

// Collection subservices.
//
//revive:disable:exported
const (
	SubserviceImagette       = entint.SubserviceImagette
	SubserviceSatImagette    = entint.SubserviceSatImagette
	SubserviceOffset         = entint.SubserviceOffset
	SubserviceBackground     = entint.SubserviceBackground
	SubserviceSmearing       = entint.SubserviceSmearing
	SubserviceSFx            = entint.SubserviceSFx
	SubserviceSFxEfx         = entint.SubserviceSFxEfx
	SubserviceSFxNcob        = entint.SubserviceSFxNcob
	SubserviceSFxEfxNcobEcob = entint.SubserviceSFxEfxNcobEcob
	SubserviceLFx            = entint.SubserviceLFx
	SubserviceLFxEfx         = entint.SubserviceLFxEfx
	SubserviceLFxNcob        = entint.SubserviceLFxNcob
	SubserviceLFxEfxNcobEcob = entint.SubserviceLFxEfxNcobEcob
	SubserviceFFx            = entint.SubserviceFFx
	SubserviceFFxEfx         = entint.SubserviceFFxEfx
	SubserviceFFxNcob        = entint.SubserviceFFxNcob
	SubserviceFFxEfxNcobEcob = entint.SubserviceFFxEfxNcobEcob
	SubserviceFCamImagette   = entint.SubserviceFCamImagette
	SubserviceFCamOffset     = entint.SubserviceFCamOffset
	SubserviceFCamBackground = entint.SubserviceFCamBackground
)

// TimestampFunc supplies the spacecraft time for the container header. It
// is called at most twice per chunk compression: once on entry and once at
// success.
type TimestampFunc func() (Timestamp, error)

// Compressor compresses chunks into entities. The zero value selects raw
// mode, which takes no parameters; the entropy-coding modes reject zero
// parameters, so start from DefaultParams for them.
// A Compressor holds no state across calls and no global state at all; the
// optional timestamp source is per instance.
type Compressor struct {
	Par          Params
	ModelID      uint16
	ModelCounter uint8

	// Timestamp is optional; without it the container timestamps are zero.
	Timestamp TimestampFunc
}

// collectionInfo is one scanned collection of a chunk.
type collectionInfo struct {
	off  int // header offset within the chunk
	hdr  entint.CollectionHdr
	typ  DataType
	size int // header plus data bytes
}

// scanChunk walks and checks the collection headers of a chunk.
func scanChunk(chunk []byte) ([]collectionInfo, entint.Family, error) {
	if len(chunk) < CollectionHdrSize {
		return nil, entint.FamilyNone, fmt.Errorf("%w: %d bytes cannot hold a collection header", ErrChunk, len(chunk))
	}

	var (
		cols []collectionInfo
		fam  = entint.FamilyNone
	)

	off := 0
	for off < len(chunk) {
		if len(chunk)-off < CollectionHdrSize {
			return nil, entint.FamilyNone, fmt.Errorf("%w: %w: trailing %d bytes", ErrChunk, entint.ErrCollectionLen, len(chunk)-off)
		}

		hdr, err := entint.ParseCollectionHdr(chunk[off:])
		if err != nil {
			return nil, entint.FamilyNone, fmt.Errorf("%w: %w", ErrChunk, err)
		}

		typ, err := hdr.Subservice.DataTypeOf()
		if err != nil {
			return nil, entint.FamilyNone, fmt.Errorf("%w: %w", ErrChunk, err)
		}

		colFam := hdr.Subservice.FamilyOf()
		if fam == entint.FamilyNone {
			fam = colFam
		} else if colFam != fam {
			return nil, entint.FamilyNone, fmt.Errorf("%w: %w", ErrChunk, entint.ErrMixedFamilies)
		}

		recSize := sdcint.RecordSize(typ)
		if int(hdr.DataLength)%recSize != 0 {
			return nil, entint.FamilyNone, fmt.Errorf("%w: %w: %d data bytes, record size %d",
				ErrChunk, sdcint.ErrDataLength, hdr.DataLength, recSize)
		}

		size := CollectionHdrSize + int(hdr.DataLength)
		if off+size > len(chunk) {
			return nil, entint.FamilyNone, fmt.Errorf("%w: %w: collection at %d runs past the chunk",
				ErrChunk, entint.ErrCollectionLen, off)
		}

		cols = append(cols, collectionInfo{off: off, hdr: hdr, typ: typ, size: size})
		off += size
	}

	return cols, fam, nil
}

// Bound returns an upper bound for the entity size of a chunk before
// compressing it: the container header, one size field, worst-case padding
// and one collection header's worth of slack per collection, and the chunk
// itself, word-aligned. Chunks that
// cannot fit the 24-bit original-size field are refused.
func (c *Compressor) Bound(chunk []byte) (int, error) {
	if len(chunk) > MaxOriginalSize {
		return 0, fmt.Errorf("%w: %w: %d bytes", ErrChunk, entint.ErrTooLarge, len(chunk))
	}

	cols, _, err := scanChunk(chunk)
	if err != nil {
		return 0, err
	}

	perCollection := CollectionHdrSize + entint.CollectionSizeFieldSize + 3

	return wordAlign(entint.NonImagetteHeaderSize + len(cols)*perCollection + len(chunk)), nil
}

// validatePar checks the chunk-level parameter set.
func (c *Compressor) validatePar() error {
	if !c.Par.Mode.valid() {
		return fmt.Errorf("%w: unknown mode %d", ErrConfig, c.Par.Mode)
	}

	if c.Par.ModelValue > MaxModelValue {
		return fmt.Errorf("%w: model value %d out of [0,%d]", ErrConfig, c.Par.ModelValue, MaxModelValue)
	}

	if c.Par.Round > MaxICURound {
		return fmt.Errorf("%w: lossy parameter %d out of [0,%d]", ErrConfig, c.Par.Round, MaxICURound)
	}

	return nil
}

// checkModelChunk verifies that a model chunk mirrors the data chunk's
// collection structure.
func checkModelChunk(model []byte, cols []collectionInfo, chunkLen int) error {
	if len(model) != chunkLen {
		return fmt.Errorf("%w: model chunk length %d, data chunk length %d", ErrConfig, len(model), chunkLen)
	}

	for _, col := range cols {
		hdr, err := entint.ParseCollectionHdr(model[col.off:])
		if err != nil {
			return fmt.Errorf("%w: %w", ErrConfig, err)
		}

		if hdr.Subservice != col.hdr.Subservice || hdr.DataLength != col.hdr.DataLength {
			return fmt.Errorf("%w: model collection at %d does not mirror the data chunk", ErrConfig, col.off)
		}
	}

	return nil
}

func (c *Compressor) stamp() (Timestamp, error) {
	if c.Timestamp == nil {
		return Timestamp{}, nil
	}

	ts, err := c.Timestamp()
	if err != nil {
		return Timestamp{}, fmt.Errorf("%w: %w: %w", ErrEncode, entint.ErrTimestamp, err)
	}

	return ts, nil
}

// Compress compresses one chunk into dst and returns the written entity.
// In model modes model must mirror the chunk; a non-nil updatedModel of
// the same length receives the blended model chunk. Use Bound to size dst.
//
//nolint:funlen,gocognit // the chunk walk is one sequential pipeline
func (c *Compressor) Compress(chunk, model, updatedModel, dst []byte) ([]byte, error) {
	if err := c.validatePar(); err != nil {
		return nil, err
	}

	if len(chunk) > MaxOriginalSize {
		return nil, fmt.Errorf("%w: %w: %d bytes", ErrChunk, entint.ErrTooLarge, len(chunk))
	}

	cols, fam, err := scanChunk(chunk)
	if err != nil {
		return nil, err
	}

	if len(cols) > 0xFFFF {
		return nil, fmt.Errorf("%w: %w: %d collections", ErrChunk, entint.ErrHeaderField, len(cols))
	}

	modelMode := c.Par.Mode.IsModel()
	if modelMode {
		if err := checkModelChunk(model, cols, len(chunk)); err != nil {
			return nil, err
		}

		if updatedModel != nil && len(updatedModel) != len(chunk) {
			return nil, fmt.Errorf("%w: updated-model length %d, chunk length %d", ErrConfig, len(updatedModel), len(chunk))
		}
	}

	start, err := c.stamp()
	if err != nil {
		return nil, err
	}

	hdr := &entint.Header{
		Version:         entint.Version,
		Raw:             c.Par.Mode == ModeRaw,
		OriginalSize:    uint32(len(chunk)), //nolint:gosec // checked against MaxOriginalSize
		Start:           start,
		DataType:        DataTypeChunk,
		ModelID:         c.ModelID,
		ModelCounter:    c.ModelCounter,
		Mode:            uint8(c.Par.Mode),
		ModelValue:      uint8(c.Par.ModelValue), //nolint:gosec // validated <= 16
		Round:           uint8(c.Par.Round),      //nolint:gosec // validated <= 3
		CollectionCount: uint16(len(cols)),       //nolint:gosec // checked above
		Pars:            c.Par.headerSlots(fam),
	}

	if c.Par.Mode == ModeRaw {
		total := entint.NonImagetteHeaderSize + len(chunk)
		if len(dst) < total {
			return nil, fmt.Errorf("%w: %w", ErrEncode, sdcint.ErrSmallBuffer)
		}

		copy(dst[entint.NonImagetteHeaderSize:], chunk)

		end, err := c.stamp()
		if err != nil {
			return nil, err
		}

		hdr.End = end

		if _, err := entint.WriteHeader(dst, hdr); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEncode, err)
		}

		return dst[:total], nil
	}

	sizesOff := entint.NonImagetteHeaderSize
	payloadOff := sizesOff + len(cols)*entint.CollectionSizeFieldSize

	if len(dst) < payloadOff {
		return nil, fmt.Errorf("%w: %w", ErrEncode, sdcint.ErrSmallBuffer)
	}

	pred := c.Par.Mode.prediction()
	mub := sdcint.DefaultMaxUsedBits()

	for i, col := range cols {
		coders, err := buildCoders(col.typ, c.Par.Mode, c.Par.Round, mub, slotPars(fam, col.typ, hdr.Pars))
		if err != nil {
			return nil, err
		}

		src := chunk[col.off : col.off+col.size]

		var modelCol, updatedCol []byte
		if modelMode {
			modelCol = model[col.off : col.off+col.size]

			if updatedModel != nil {
				updatedCol = updatedModel[col.off : col.off+col.size]
			}
		}

		// Imagette passes carry no collection header of their own, so the
		// chunk layer routes it around the coded samples; the multi-entry
		// passes copy it themselves.
		hdrAdj := 0
		if col.typ.IsImagette() {
			hdrAdj = CollectionHdrSize

			if len(dst) < payloadOff+CollectionHdrSize {
				return nil, fmt.Errorf("%w: %w", ErrEncode, sdcint.ErrSmallBuffer)
			}

			copy(dst[payloadOff:], src[:CollectionHdrSize])

			src = src[CollectionHdrSize:]
			if modelCol != nil {
				modelCol = modelCol[CollectionHdrSize:]
			}

			if updatedCol != nil {
				copy(updatedCol, chunk[col.off:col.off+CollectionHdrSize])
				updatedCol = updatedCol[CollectionHdrSize:]
			}
		}

		seg := dst[payloadOff+hdrAdj:]

		bits, err := sdcint.Encode(col.typ, coders, pred, c.Par.ModelValue,
			src, modelCol, updatedCol, seg)
		if err != nil {
			return nil, fmt.Errorf("%w: collection %d: %w", ErrEncode, i, err)
		}

		if _, err := sdcint.PadToWord(seg, bits, sdcint.StreamCap(seg)); err != nil {
			return nil, fmt.Errorf("%w: collection %d: %w", ErrEncode, i, err)
		}

		segBytes := hdrAdj + bitsToBytes(bits)
		if segBytes > 0xFFFF {
			return nil, fmt.Errorf("%w: %w: collection %d compressed to %d bytes",
				ErrEncode, entint.ErrHeaderField, i, segBytes)
		}

		binary.BigEndian.PutUint16(dst[sizesOff+i*entint.CollectionSizeFieldSize:], uint16(segBytes))
		payloadOff += wordAlign(segBytes)

		debugf("chunk collection %d: %d bytes to %d compressed bytes", i, col.size, segBytes)
	}

	end, err := c.stamp()
	if err != nil {
		return nil, err
	}

	hdr.End = end

	if _, err := entint.WriteHeader(dst, hdr); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	return dst[:payloadOff], nil
}

// decompressChunkEntity decodes the body of a chunk entity into dst.
func decompressChunkEntity(h *entint.Header, payload, model, updatedModel, dst []byte) (int, error) {
	numCols := int(h.CollectionCount)
	sizesLen := numCols * entint.CollectionSizeFieldSize

	if len(payload) < sizesLen {
		return 0, fmt.Errorf("%w: %w: size array truncated", ErrDecode, sdcint.ErrSmallBuffer)
	}

	mode := Mode(h.Mode)
	pred := mode.prediction()
	mub := sdcint.DefaultMaxUsedBits()
	modelMode := mode.IsModel()

	if modelMode && len(model) != len(dst) {
		return 0, fmt.Errorf("%w: model chunk length %d, original size %d", ErrConfig, len(model), len(dst))
	}

	if updatedModel != nil && len(updatedModel) != len(dst) {
		return 0, fmt.Errorf("%w: updated-model length %d, original size %d", ErrConfig, len(updatedModel), len(dst))
	}

	segOff := sizesLen
	dstOff := 0

	for i := 0; i < numCols; i++ {
		segBytes := int(binary.BigEndian.Uint16(payload[i*entint.CollectionSizeFieldSize:]))
		if segOff+wordAlign(segBytes) > len(payload) {
			return 0, fmt.Errorf("%w: %w: collection %d stream truncated", ErrDecode, sdcint.ErrSmallBuffer, i)
		}

		colHdr, err := entint.ParseCollectionHdr(payload[segOff:])
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrDecode, err)
		}

		typ, err := colHdr.Subservice.DataTypeOf()
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrDecode, err)
		}

		fam := colHdr.Subservice.FamilyOf()

		colLen := CollectionHdrSize + int(colHdr.DataLength)
		if dstOff+colLen > len(dst) {
			return 0, fmt.Errorf("%w: %w: decoded chunk exceeds original size", ErrDecode, entint.ErrCollectionLen)
		}

		coders, err := buildCoders(typ, mode, uint32(h.Round), mub, slotPars(fam, typ, h.Pars))
		if err != nil {
			return 0, err
		}

		seg := payload[segOff : segOff+wordAlign(segBytes)]
		dstCol := dst[dstOff : dstOff+colLen]

		var modelCol, updatedCol []byte
		if modelMode {
			modelCol = model[dstOff : dstOff+colLen]
		}

		if updatedModel != nil {
			updatedCol = updatedModel[dstOff : dstOff+colLen]
		}

		// The chunk layer routes the collection header around imagette
		// streams, mirroring the compressor.
		if typ.IsImagette() {
			copy(dstCol[:CollectionHdrSize], seg[:CollectionHdrSize])

			if updatedCol != nil {
				copy(updatedCol[:CollectionHdrSize], seg[:CollectionHdrSize])
				updatedCol = updatedCol[CollectionHdrSize:]
			}

			seg = seg[CollectionHdrSize:]
			dstCol = dstCol[CollectionHdrSize:]

			if modelCol != nil {
				modelCol = modelCol[CollectionHdrSize:]
			}
		}

		if _, err := sdcint.Decode(typ, coders, pred, uint32(h.ModelValue),
			seg, modelCol, dstCol, updatedCol); err != nil {
			return 0, fmt.Errorf("%w: collection %d: %w", ErrDecode, i, err)
		}

		segOff += wordAlign(segBytes)
		dstOff += colLen
	}

	if dstOff != len(dst) {
		return 0, fmt.Errorf("%w: %w: decoded %d of %d bytes", ErrDecode, entint.ErrCollectionLen, dstOff, len(dst))
	}

	return dstOff, nil
}
