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

import "errors"

// Codec error sentinels.
//
//revive:disable:exported
var (
	ErrSmallBuffer     = errors.New("sdc: destination buffer too small")
	ErrNilStream       = errors.New("sdc: nil bitstream")
	ErrBitCount        = errors.New("sdc: bit count out of range")
	ErrFieldTooLarge   = errors.New("sdc: field value exceeds declared bit width")
	ErrCodewordTooLong = errors.New("sdc: codeword length exceeds 32 bits")
	ErrEscapeLiteral   = errors.New("sdc: escape literal violates spillover invariant")
	ErrDataLength      = errors.New("sdc: data length not a multiple of the record size")
	ErrUnsupportedType = errors.New("sdc: unsupported data type")
	ErrParameter       = errors.New("sdc: compression parameter out of range")
)
