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

// Public sentinel errors for consumer error matching. Finer-grained
// sentinels from the internal packages stay wrapped inside these and can
// be reached with errors.Is.
var (
	// ErrConfig indicates an invalid or unsupported compression
	// configuration (bad data type, illegal mode for the type, parameter
	// out of range, missing or aliased buffer).
	ErrConfig = errors.New("invalid configuration")

	// ErrEncode indicates a failure during compression (destination too
	// small, sample wider than its declared bits).
	ErrEncode = errors.New("compression failed")

	// ErrDecode indicates a failure during decompression (malformed code
	// word, escape literal violating the spillover invariant, truncated
	// stream, bad container header).
	ErrDecode = errors.New("decompression failed")

	// ErrChunk indicates a malformed chunk (inconsistent collection
	// lengths, unsupported subservice, mixed families, chunk above the
	// maximum entity size).
	ErrChunk = errors.New("invalid chunk")
)
