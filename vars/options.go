// Copyright 2026 The ti-tools Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vars

import "fmt"

// ReadMode controls how a single structural check reacts to malformed data
// while decoding a file.
type ReadMode int

const (
	// ReadModeError fails the decode when the checked field is malformed.
	// This is the default for every check.
	ReadModeError ReadMode = iota

	// ReadModeFix silently replaces the malformed field with a consistent
	// value and continues decoding.
	ReadModeFix

	// ReadModeIgnore accepts the field unconditionally and continues. The
	// resulting File may violate the format's invariants; callers choosing
	// this mode accept responsibility for whatever happens downstream.
	ReadModeIgnore
)

func (m ReadMode) String() string {
	switch m {
	case ReadModeError:
		return "error"
	case ReadModeFix:
		return "fix"
	case ReadModeIgnore:
		return "ignore"
	}
	return fmt.Sprintf("ReadMode(%d)", int(m))
}

// ParseReadMode returns the ReadMode named by s, as produced by
// [ReadMode.String].
func ParseReadMode(s string) (ReadMode, error) {
	switch s {
	case "error":
		return ReadModeError, nil
	case "fix":
		return ReadModeFix, nil
	case "ignore":
		return ReadModeIgnore, nil
	}
	return ReadModeError, fmt.Errorf("unknown read mode %q", s)
}

// VariableReadOptions carries payload-level decoding options. It is passed
// through to the [PayloadDecoder] untouched; the container itself does not
// consult it. Reserved for concrete payload implementations.
type VariableReadOptions struct{}

// FileReadOptions bundles one [ReadMode] per independently-checkable field of
// a file. The zero value checks everything in [ReadModeError] mode.
type FileReadOptions struct {
	Signature      ReadMode
	VariableLength ReadMode
	Variable       VariableReadOptions
	Checksum       ReadMode
}

// NewFileReadOptions returns options with every structural check set to the
// given mode.
func NewFileReadOptions(mode ReadMode) FileReadOptions {
	return FileReadOptions{
		Signature:      mode,
		VariableLength: mode,
		Checksum:       mode,
	}
}
