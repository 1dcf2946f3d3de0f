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

import "errors"

// Container error sentinels.
//
//revive:disable:exported
var (
	ErrTooSmall      = errors.New("entity: buffer smaller than the container header")
	ErrTooLarge      = errors.New("entity: original size exceeds the 24-bit header field")
	ErrHeaderField   = errors.New("entity: value does not fit its header field")
	ErrVersion       = errors.New("entity: unsupported container version")
	ErrSubservice    = errors.New("entity: unsupported collection subservice")
	ErrCollectionLen = errors.New("entity: collection length inconsistent with chunk")
	ErrMixedFamilies = errors.New("entity: collections from different families in one chunk")
	ErrTimestamp     = errors.New("entity: timestamp out of range")
)
