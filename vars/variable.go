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

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Variable wraps the single payload stored in a [File]. It has no lifecycle
// of its own: a file owns its variable exclusively, and replacing the payload
// goes through [File.SetVariable] so the dependent header fields stay
// consistent.
type Variable struct {
	payload Payload
}

// NewVariable returns a Variable wrapping the given payload.
func NewVariable(payload Payload) *Variable {
	return &Variable{
		payload: payload,
	}
}

// Payload returns the payload stored in the variable.
func (v *Variable) Payload() Payload {
	return v.payload
}

// Bytes returns the serialized form of the variable, exactly as stored in the
// variable region of a file.
func (v *Variable) Bytes() []byte {
	return v.payload.Bytes()
}

// Digest returns the BLAKE2b-256 digest of the variable's serialized form.
// Two variables with the same digest carry the same payload bytes, which
// makes the digest usable as a content identity when scanning many files.
func (v *Variable) Digest() Digest {
	return Digest(blake2b.Sum256(v.Bytes()))
}

// Digest is the BLAKE2b-256 digest of a variable's serialized form.
type Digest [32]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}
