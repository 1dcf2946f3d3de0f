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
	"log"
	"os"

	"github.com/xyproto/env/v2"
)

// Debug tracing, off unless the SDC_DEBUG environment variable is set.
// The trace is diagnostic only and not part of the codec contract.

//nolint:gochecknoglobals // read once at startup
var (
	debugEnabled = env.Bool("SDC_DEBUG")
	debugLogger  = log.New(os.Stderr, "sdc: ", 0)
)

func debugf(format string, args ...any) {
	if !debugEnabled {
		return
	}

	debugLogger.Printf(format, args...)
}
