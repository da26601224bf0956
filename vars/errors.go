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
	"errors"
	"fmt"
)

// ErrCommentEncoding is returned when the comment region does not hold valid
// UTF-8 and cannot be viewed as a string. The raw bytes remain accessible
// through [Comment] regardless.
var ErrCommentEncoding = errors.New("comment region is not valid UTF-8")

// ErrDataTooShort is returned when the input is physically too short to hold
// the fixed header and checksum regions, or the bytes the declared variable
// length points at. No read mode can relax this: there is nothing to be
// tolerant about when the bytes do not exist.
var ErrDataTooShort = errors.New("data too short for file regions")

// SignatureMismatchError is returned when the signature region does not match
// [FileSignature] and the signature read mode is [ReadModeError]. It is also
// returned by [File.SetSignature] when given any other value.
type SignatureMismatchError struct {
	Got [SignatureSize]byte
}

func (e *SignatureMismatchError) Error() string {
	return fmt.Sprintf(
		"signature mismatch: expected % x, got % x",
		FileSignature,
		e.Got,
	)
}

// LengthMismatchError is returned when the declared variable length does not
// agree with the variable region actually present and the variable length
// read mode is [ReadModeError].
type LengthMismatchError struct {
	Declared uint16
	Actual   int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf(
		"variable length mismatch: declared %d, actual %d",
		e.Declared,
		e.Actual,
	)
}

// ChecksumMismatchError is returned when the stored checksum does not equal
// the checksum computed over the variable's serialized bytes and the checksum
// read mode is [ReadModeError].
type ChecksumMismatchError struct {
	Stored   uint16
	Computed uint16
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf(
		"checksum mismatch: stored 0x%04x, computed 0x%04x",
		e.Stored,
		e.Computed,
	)
}
