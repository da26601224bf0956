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
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Byte layout of a variable file. All offsets are from the start of the file
// and all multi-byte integers are little-endian.
const (
	SignatureOffset = 0x00
	SignatureSize   = 0x0B

	CommentOffset = SignatureOffset + SignatureSize
	CommentSize   = 0x2A

	VariableLengthOffset = CommentOffset + CommentSize
	VariableLengthSize   = 0x02

	HeaderSize     = SignatureSize + CommentSize + VariableLengthSize
	VariableOffset = VariableLengthOffset + VariableLengthSize

	ChecksumSize = 0x02

	// MaxVariableLength is the largest variable region the 2-byte length
	// field can describe.
	MaxVariableLength = 0xFFFF
)

// FileSignature identifies data as usable on TI devices: the string
// "**TI83F*" followed by the bytes 0x1A, 0x0A, and 0x00.
var FileSignature = [SignatureSize]byte{
	'*', '*', 'T', 'I', '8', '3', 'F', '*', 0x1a, 0x0a, 0x00,
}

// File is the in-memory representation of a variable file exported from a TI
// calculator. Files wrap a single variable and carry metadata around it: a
// signature identifying the data as device-compatible, an optional comment,
// the declared length of the variable region, and a checksum over it.
//
// A File is built either by decoding raw data (see [NewFileFromBytes]) or
// around an existing payload (see [NewFile]). Header fields other than the
// comment are kept consistent with the payload by the ordinary setters;
// the *Unchecked setters deliberately bypass that and can produce a File
// whose invariants do not hold.
type File struct {
	signature      [SignatureSize]byte
	comment        Comment
	variableLength [VariableLengthSize]byte
	variable       *Variable
	checksum       [ChecksumSize]byte
}

// NewFile builds a File around the given payload, with the device signature,
// an empty zero-terminated comment, and length and checksum fields derived
// from the payload. It fails when the payload's serialized form exceeds
// [MaxVariableLength] bytes.
func NewFile(payload Payload) (*File, error) {
	f := &File{
		signature: FileSignature,
	}
	if err := f.SetVariable(payload); err != nil {
		return nil, err
	}
	return f, nil
}

// NewFileFromBytes parses a File from raw data. The variable region is
// captured as a [Raw] payload of unknown kind; use
// [NewFileFromBytesWithPayload] to decode it as a concrete payload kind.
//
// Each structural check (signature, variable length, checksum) consults its
// [ReadMode] in opts and the decode fails fast at the first violation found
// in header order. The zero value of opts checks everything strictly.
func NewFileFromBytes(data []byte, opts FileReadOptions) (*File, error) {
	return NewFileFromBytesWithPayload(data, opts, nil)
}

// NewFileFromBytesWithPayload parses a File from raw data, delegating the
// variable region to the given payload decoder. A nil decoder falls back to
// the [Raw] carrier of unknown kind.
func NewFileFromBytesWithPayload(
	data []byte,
	opts FileReadOptions,
	decoder PayloadDecoder,
) (*File, error) {
	if decoder == nil {
		decoder = RawPayloadDecoder(KindUnknown)
	}
	if len(data) < HeaderSize+ChecksumSize {
		return nil, ErrDataTooShort
	}

	f := &File{}
	copy(f.signature[:], data[SignatureOffset:SignatureOffset+SignatureSize])
	if f.signature != FileSignature {
		switch opts.Signature {
		case ReadModeFix:
			f.signature = FileSignature
		case ReadModeIgnore:
			// Keep whatever was read.
		default:
			return nil, &SignatureMismatchError{Got: f.signature}
		}
	}

	copy(f.comment[:], data[CommentOffset:CommentOffset+CommentSize])
	copy(
		f.variableLength[:],
		data[VariableLengthOffset:VariableLengthOffset+VariableLengthSize],
	)

	declared := binary.LittleEndian.Uint16(f.variableLength[:])
	available := len(data) - HeaderSize - ChecksumSize
	regionLen := int(declared)
	if regionLen > available {
		switch opts.VariableLength {
		case ReadModeFix:
			regionLen = min(available, MaxVariableLength)
		case ReadModeIgnore:
			// The declared value is trusted, but the bytes it points at
			// must exist.
			return nil, ErrDataTooShort
		default:
			return nil, &LengthMismatchError{
				Declared: declared,
				Actual:   available,
			}
		}
	} else if regionLen < available && opts.VariableLength == ReadModeError {
		// Trailing bytes beyond the checksum region.
		return nil, &LengthMismatchError{
			Declared: declared,
			Actual:   available,
		}
	}

	region := data[VariableOffset : VariableOffset+regionLen]
	payload, err := decoder(region, opts.Variable)
	if err != nil {
		return nil, fmt.Errorf("decode variable payload: %w", err)
	}
	f.variable = NewVariable(payload)
	if actual := len(f.variable.Bytes()); actual != int(declared) {
		switch opts.VariableLength {
		case ReadModeFix:
			binary.LittleEndian.PutUint16(
				f.variableLength[:],
				uint16(actual),
			)
		case ReadModeIgnore:
			// The stored field keeps the declared value.
		default:
			return nil, &LengthMismatchError{
				Declared: declared,
				Actual:   actual,
			}
		}
	}

	checksumOffset := VariableOffset + regionLen
	copy(f.checksum[:], data[checksumOffset:checksumOffset+ChecksumSize])
	stored := binary.LittleEndian.Uint16(f.checksum[:])
	if computed := ComputeChecksum(f.variable.Bytes()); stored != computed {
		switch opts.Checksum {
		case ReadModeFix:
			binary.LittleEndian.PutUint16(f.checksum[:], computed)
		case ReadModeIgnore:
			// Keep the stored value.
		default:
			return nil, &ChecksumMismatchError{
				Stored:   stored,
				Computed: computed,
			}
		}
	}
	return f, nil
}

// NewFileFromReader parses a File from everything the reader yields.
func NewFileFromReader(r io.Reader, opts FileReadOptions) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewFileFromBytes(data, opts)
}

// NewFileFromPath parses the variable file at the given path.
func NewFileFromPath(path string, opts FileReadOptions) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewFileFromBytes(data, opts)
}

// Size returns the size in bytes of the file: the fixed header, the variable
// region as declared by the stored length field, and the checksum.
func (f *File) Size() int {
	return HeaderSize + int(f.VariableLength()) + ChecksumSize
}

// Bytes returns the raw representation of the entire file: signature,
// comment, length, variable region, and checksum, in that order. The length
// and checksum are recomputed from the variable's current serialized form, so
// the output always satisfies the format's invariants regardless of what the
// stored fields hold.
func (f *File) Bytes() []byte {
	data := f.variable.Bytes()
	buf := make([]byte, 0, HeaderSize+len(data)+ChecksumSize)
	buf = append(buf, f.signature[:]...)
	buf = append(buf, f.comment[:]...)

	var length [VariableLengthSize]byte
	binary.LittleEndian.PutUint16(length[:], uint16(len(data)))
	buf = append(buf, length[:]...)
	buf = append(buf, data...)

	var checksum [ChecksumSize]byte
	binary.LittleEndian.PutUint16(checksum[:], ComputeChecksum(data))
	buf = append(buf, checksum[:]...)
	return buf
}

// WriteTo writes the encoded file to w. It implements [io.WriterTo].
func (f *File) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(f.Bytes())
	return int64(n), err
}

// Validate checks the cross-field invariants against the current field
// values: the signature must equal [FileSignature], the stored length must
// match the variable's serialized length, and the stored checksum must match
// the checksum computed over the variable's bytes. It reports the first
// violation found in header order.
//
// A file decoded under [ReadModeError] or [ReadModeFix] always validates;
// one decoded under [ReadModeIgnore] or mutated through the *Unchecked
// setters may not.
func (f *File) Validate() error {
	if f.signature != FileSignature {
		return &SignatureMismatchError{Got: f.signature}
	}
	data := f.variable.Bytes()
	if declared := f.VariableLength(); int(declared) != len(data) {
		return &LengthMismatchError{
			Declared: declared,
			Actual:   len(data),
		}
	}
	if computed := ComputeChecksum(data); f.Checksum() != computed {
		return &ChecksumMismatchError{
			Stored:   f.Checksum(),
			Computed: computed,
		}
	}
	return nil
}

// Signature returns the signature region, which identifies the data as
// usable on TI devices. See [FileSignature] for the required value.
func (f *File) Signature() [SignatureSize]byte {
	return f.signature
}

// SetSignature sets the signature region. The only value that keeps the file
// usable on TI devices is [FileSignature]; any other value is rejected with a
// [SignatureMismatchError]. Use [File.SetSignatureUnchecked] to store an
// arbitrary value anyway.
func (f *File) SetSignature(signature [SignatureSize]byte) error {
	if signature != FileSignature {
		return &SignatureMismatchError{Got: signature}
	}
	f.signature = signature
	return nil
}

// SetSignatureUnchecked stores an arbitrary signature without validation.
// Data written with a signature other than [FileSignature] is not usable on
// TI devices.
func (f *File) SetSignatureUnchecked(signature [SignatureSize]byte) {
	f.signature = signature
}

// Comment returns the comment region for reading and mutation. Changing the
// comment is always safe; the calculator never reads it.
func (f *File) Comment() *Comment {
	return &f.comment
}

// SetComment stores a UTF-8 string in the comment region. It is shorthand
// for [Comment.SetText] on the file's comment.
func (f *File) SetComment(text string, zeroTerminated bool) {
	f.comment.SetText(text, zeroTerminated)
}

// VariableLength returns the stored length of the variable region. For a
// file decoded under [ReadModeIgnore] this is the declared value from the
// data, which may not match the variable actually held; see [File.Validate].
func (f *File) VariableLength() uint16 {
	return binary.LittleEndian.Uint16(f.variableLength[:])
}

// SetVariableLengthUnchecked stores an arbitrary variable length without
// rederiving it from the payload. The stored value influences [File.Size]
// and [File.ChecksumOffset] but not [File.Bytes], which always recomputes
// the length it writes.
func (f *File) SetVariableLengthUnchecked(length uint16) {
	binary.LittleEndian.PutUint16(f.variableLength[:], length)
}

// Variable returns the variable stored in the file.
func (f *File) Variable() *Variable {
	return f.variable
}

// SetVariable replaces the file's variable with one wrapping the given
// payload and rederives the stored length and checksum fields. It fails when
// the payload's serialized form exceeds [MaxVariableLength] bytes, in which
// case the file is left unchanged.
func (f *File) SetVariable(payload Payload) error {
	variable := NewVariable(payload)
	data := variable.Bytes()
	if len(data) > MaxVariableLength {
		return &LengthMismatchError{
			Declared: MaxVariableLength,
			Actual:   len(data),
		}
	}
	f.variable = variable
	binary.LittleEndian.PutUint16(f.variableLength[:], uint16(len(data)))
	binary.LittleEndian.PutUint16(f.checksum[:], ComputeChecksum(data))
	return nil
}

// ChecksumOffset returns how many bytes from the start of the file the
// checksum region sits, based on the stored variable length.
func (f *File) ChecksumOffset() int {
	return VariableOffset + int(f.VariableLength())
}

// Checksum returns the stored checksum. For a file decoded under
// [ReadModeIgnore] this is the value from the data, which may not match the
// variable actually held; see [File.Validate].
func (f *File) Checksum() uint16 {
	return binary.LittleEndian.Uint16(f.checksum[:])
}

// SetChecksumUnchecked stores an arbitrary checksum without rederiving it
// from the payload. The stored value is what [File.Checksum] and
// [File.Validate] see, but [File.Bytes] always recomputes the checksum it
// writes.
func (f *File) SetChecksumUnchecked(checksum uint16) {
	binary.LittleEndian.PutUint16(f.checksum[:], checksum)
}
