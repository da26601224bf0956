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

// Payload is implemented by concrete variable kinds stored in a [File].
//
// Implementations own the byte serialization of their kind; the container
// never looks inside it. The serialized form must not exceed
// [MaxVariableLength] bytes or the payload cannot be stored in a file.
type Payload interface {
	// Bytes returns the serialized form of the payload, exactly as stored
	// in the variable region of a file.
	Bytes() []byte

	// FileExtension returns the canonical file extension for files
	// carrying this payload kind.
	FileExtension() string
}

// PayloadDecoder constructs a payload from the variable region of a file. It
// is handed the exact bytes the container's declared length selects and the
// payload-level read options.
type PayloadDecoder func(data []byte, opts VariableReadOptions) (Payload, error)

// Raw is a payload that carries the variable region verbatim without
// interpreting it. It is the default carrier used when decoding a file with
// no kind-specific decoder.
type Raw struct {
	kind Kind
	data []byte
}

// NewRaw returns a Raw payload over a copy of data, tagged with the given
// kind. Use [KindUnknown] when the kind is not known.
func NewRaw(kind Kind, data []byte) *Raw {
	r := &Raw{
		kind: kind,
		data: make([]byte, len(data)),
	}
	copy(r.data, data)
	return r
}

// Bytes returns the serialized form of the payload.
func (r *Raw) Bytes() []byte {
	return r.data
}

// FileExtension returns the canonical file extension of the payload's kind,
// or an empty string when the kind is unknown.
func (r *Raw) FileExtension() string {
	return r.kind.Extension
}

// Kind returns the variable kind the payload was tagged with.
func (r *Raw) Kind() Kind {
	return r.kind
}

// RawPayloadDecoder returns a [PayloadDecoder] that captures the variable
// region as a [Raw] payload of the given kind.
func RawPayloadDecoder(kind Kind) PayloadDecoder {
	return func(data []byte, _ VariableReadOptions) (Payload, error) {
		return NewRaw(kind, data), nil
	}
}
