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
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Parameter-set files. Ground tooling exchanges compression parameter sets
// as TOML; the in-memory Params struct stays the contract.

// LoadParams reads a parameter set from a TOML file. Keys missing from the
// file keep the DefaultParams value.
func LoadParams(path string) (*Params, error) {
	par := DefaultParams()

	meta, err := toml.DecodeFile(path, par)
	if err != nil {
		return nil, fmt.Errorf("loading parameter set %s: %w", path, err)
	}

	if undec := meta.Undecoded(); len(undec) > 0 {
		return nil, fmt.Errorf("%w: unknown parameter key %q in %s", ErrConfig, undec[0].String(), path)
	}

	return par, nil
}

// SaveParams writes a parameter set to a TOML file.
func SaveParams(path string, par *Params) error {
	f, err := os.Create(path) //nolint:gosec // caller-chosen path, ground tooling
	if err != nil {
		return fmt.Errorf("creating parameter set %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // close error shadowed by encode error

	if err := toml.NewEncoder(f).Encode(par); err != nil {
		return fmt.Errorf("writing parameter set %s: %w", path, err)
	}

	return f.Close()
}
