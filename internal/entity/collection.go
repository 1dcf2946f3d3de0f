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

package entity

import (
	"encoding/binary"
	"fmt"

	sdcint "github.com/mycophonic/saprobe-sdc/internal/sdc"
)

// Collections: the typed sub-arrays a chunk is made of. Every collection
// starts with a 12-byte header that rides through compression verbatim.

// CollectionHdrSize is the wire size of a collection header.
const CollectionHdrSize = 12

// Subservice identifies the record layout of a collection.
type Subservice uint8

//revive:disable:exported
const (
	SubserviceImagette       Subservice = 1
	SubserviceSatImagette    Subservice = 2
	SubserviceOffset         Subservice = 3
	SubserviceBackground     Subservice = 4
	SubserviceSmearing       Subservice = 5
	SubserviceSFx            Subservice = 6
	SubserviceSFxEfx         Subservice = 7
	SubserviceSFxNcob        Subservice = 8
	SubserviceSFxEfxNcobEcob Subservice = 9
	SubserviceLFx            Subservice = 10
	SubserviceLFxEfx         Subservice = 11
	SubserviceLFxNcob        Subservice = 12
	SubserviceLFxEfxNcobEcob Subservice = 13
	SubserviceFFx            Subservice = 14
	SubserviceFFxEfx         Subservice = 15
	SubserviceFFxNcob        Subservice = 16
	SubserviceFFxEfxNcobEcob Subservice = 17
	SubserviceFCamImagette   Subservice = 18
	SubserviceFCamOffset     Subservice = 19
	SubserviceFCamBackground Subservice = 20
)

// Family groups the subservices that may share one chunk.
type Family uint8

//revive:disable:exported
const (
	FamilyNone Family = iota
	FamilyImagette
	FamilySatImagette
	FamilyShortCadence
	FamilyLongCadence
	FamilyFastCadence
	FamilyFCam
	FamilyOffsetBackground
	FamilySmearing
)

// CollectionHdr is the parsed 12-byte header.
type CollectionHdr struct {
	Timestamp       Timestamp
	ConfigurationID uint16
	Subservice      Subservice
	Sequence        uint8
	DataLength      uint16 // record bytes following the header
}

// DataTypeOf maps a subservice to its record layout tag.
func (s Subservice) DataTypeOf() (sdcint.DataType, error) {
	switch s {
	case SubserviceImagette:
		return sdcint.DataTypeImagette, nil
	case SubserviceSatImagette:
		return sdcint.DataTypeSatImagette, nil
	case SubserviceOffset:
		return sdcint.DataTypeOffset, nil
	case SubserviceBackground:
		return sdcint.DataTypeBackground, nil
	case SubserviceSmearing:
		return sdcint.DataTypeSmearing, nil
	case SubserviceSFx:
		return sdcint.DataTypeSFx, nil
	case SubserviceSFxEfx:
		return sdcint.DataTypeSFxEfx, nil
	case SubserviceSFxNcob:
		return sdcint.DataTypeSFxNcob, nil
	case SubserviceSFxEfxNcobEcob:
		return sdcint.DataTypeSFxEfxNcobEcob, nil
	case SubserviceLFx:
		return sdcint.DataTypeLFx, nil
	case SubserviceLFxEfx:
		return sdcint.DataTypeLFxEfx, nil
	case SubserviceLFxNcob:
		return sdcint.DataTypeLFxNcob, nil
	case SubserviceLFxEfxNcobEcob:
		return sdcint.DataTypeLFxEfxNcobEcob, nil
	case SubserviceFFx:
		return sdcint.DataTypeFFx, nil
	case SubserviceFFxEfx:
		return sdcint.DataTypeFFxEfx, nil
	case SubserviceFFxNcob:
		return sdcint.DataTypeFFxNcob, nil
	case SubserviceFFxEfxNcobEcob:
		return sdcint.DataTypeFFxEfxNcobEcob, nil
	case SubserviceFCamImagette:
		return sdcint.DataTypeFCamImagette, nil
	case SubserviceFCamOffset, SubserviceFCamBackground:
		// Declared but not yet specified.
		return sdcint.DataTypeUnknown, fmt.Errorf("%w: %d", ErrSubservice, s)
	default:
		return sdcint.DataTypeUnknown, fmt.Errorf("%w: %d", ErrSubservice, s)
	}
}

// FamilyOf maps a subservice to its chunk family.
func (s Subservice) FamilyOf() Family {
	switch s {
	case SubserviceImagette:
		return FamilyImagette
	case SubserviceSatImagette:
		return FamilySatImagette
	case SubserviceSFx, SubserviceSFxEfx, SubserviceSFxNcob, SubserviceSFxEfxNcobEcob:
		return FamilyShortCadence
	case SubserviceLFx, SubserviceLFxEfx, SubserviceLFxNcob, SubserviceLFxEfxNcobEcob:
		return FamilyLongCadence
	case SubserviceFFx, SubserviceFFxEfx, SubserviceFFxNcob, SubserviceFFxEfxNcobEcob:
		return FamilyFastCadence
	case SubserviceFCamImagette, SubserviceFCamOffset, SubserviceFCamBackground:
		return FamilyFCam
	case SubserviceOffset, SubserviceBackground:
		return FamilyOffsetBackground
	case SubserviceSmearing:
		return FamilySmearing
	default:
		return FamilyNone
	}
}

// SubserviceOf is the inverse of DataTypeOf for the supported layouts.
func SubserviceOf(t sdcint.DataType) (Subservice, error) {
	switch t {
	case sdcint.DataTypeImagette, sdcint.DataTypeImagetteAdaptive:
		return SubserviceImagette, nil
	case sdcint.DataTypeSatImagette, sdcint.DataTypeSatImagetteAdaptive:
		return SubserviceSatImagette, nil
	case sdcint.DataTypeOffset:
		return SubserviceOffset, nil
	case sdcint.DataTypeBackground:
		return SubserviceBackground, nil
	case sdcint.DataTypeSmearing:
		return SubserviceSmearing, nil
	case sdcint.DataTypeSFx:
		return SubserviceSFx, nil
	case sdcint.DataTypeSFxEfx:
		return SubserviceSFxEfx, nil
	case sdcint.DataTypeSFxNcob:
		return SubserviceSFxNcob, nil
	case sdcint.DataTypeSFxEfxNcobEcob:
		return SubserviceSFxEfxNcobEcob, nil
	case sdcint.DataTypeLFx:
		return SubserviceLFx, nil
	case sdcint.DataTypeLFxEfx:
		return SubserviceLFxEfx, nil
	case sdcint.DataTypeLFxNcob:
		return SubserviceLFxNcob, nil
	case sdcint.DataTypeLFxEfxNcobEcob:
		return SubserviceLFxEfxNcobEcob, nil
	case sdcint.DataTypeFFx:
		return SubserviceFFx, nil
	case sdcint.DataTypeFFxEfx:
		return SubserviceFFxEfx, nil
	case sdcint.DataTypeFFxNcob:
		return SubserviceFFxNcob, nil
	case sdcint.DataTypeFFxEfxNcobEcob:
		return SubserviceFFxEfxNcobEcob, nil
	case sdcint.DataTypeFCamImagette, sdcint.DataTypeFCamImagetteAdaptive:
		return SubserviceFCamImagette, nil
	default:
		return 0, fmt.Errorf("%w: data type %d", ErrSubservice, t)
	}
}

// ParseCollectionHdr reads one collection header.
func ParseCollectionHdr(src []byte) (CollectionHdr, error) {
	if len(src) < CollectionHdrSize {
		return CollectionHdr{}, ErrTooSmall
	}

	return CollectionHdr{
		Timestamp:       getTimestamp(src[0:6]),
		ConfigurationID: binary.BigEndian.Uint16(src[6:8]),
		Subservice:      Subservice(src[8]),
		Sequence:        src[9],
		DataLength:      binary.BigEndian.Uint16(src[10:12]),
	}, nil
}

// WriteCollectionHdr serialises one collection header.
func WriteCollectionHdr(dst []byte, hdr *CollectionHdr) error {
	if len(dst) < CollectionHdrSize {
		return ErrTooSmall
	}

	putTimestamp(dst[0:6], hdr.Timestamp)
	binary.BigEndian.PutUint16(dst[6:8], hdr.ConfigurationID)
	dst[8] = uint8(hdr.Subservice)
	dst[9] = hdr.Sequence
	binary.BigEndian.PutUint16(dst[10:12], hdr.DataLength)

	return nil
}
