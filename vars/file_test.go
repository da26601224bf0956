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

package vars_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adambyle/ti-tools/internal/test"
	"github.com/adambyle/ti-tools/vars"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

// rawFile assembles file bytes region by region, allowing each field to be
// deliberately inconsistent with the others.
type rawFile struct {
	signature [vars.SignatureSize]byte
	comment   vars.Comment
	declared  uint16
	region    []byte
	checksum  uint16
	trailing  []byte
}

// validRawFile returns a rawFile whose fields all agree with the given
// variable region.
func validRawFile(region []byte) rawFile {
	var comment vars.Comment
	comment.SetText("assembled by hand", false)
	return rawFile{
		signature: vars.FileSignature,
		comment:   comment,
		declared:  uint16(len(region)),
		region:    region,
		checksum:  vars.ComputeChecksum(region),
	}
}

func (r rawFile) bytes() []byte {
	buf := make(
		[]byte,
		0,
		vars.HeaderSize+len(r.region)+vars.ChecksumSize+len(r.trailing),
	)
	buf = append(buf, r.signature[:]...)
	buf = append(buf, r.comment[:]...)
	buf = binary.LittleEndian.AppendUint16(buf, r.declared)
	buf = append(buf, r.region...)
	buf = binary.LittleEndian.AppendUint16(buf, r.checksum)
	buf = append(buf, r.trailing...)
	return buf
}

func TestNewFile(t *testing.T) {
	f, err := vars.NewFile(vars.NewRaw(vars.KindProgram, []byte{0x01, 0x02, 0x03}))
	require.NoError(t, err)

	require.Equal(t, vars.FileSignature, f.Signature())
	require.Equal(t, uint16(3), f.VariableLength())
	require.Equal(t, uint16(0x0006), f.Checksum())
	require.Equal(t, []byte{0x01, 0x02, 0x03}, f.Variable().Bytes())
	require.Equal(t, vars.HeaderSize+3+vars.ChecksumSize, f.Size())
	require.Equal(t, vars.VariableOffset+3, f.ChecksumOffset())
	require.NoError(t, f.Validate())

	// A fresh file carries an empty zero-terminated comment.
	require.True(t, f.Comment().IsZeroTerminated())
	require.Equal(t, 0, f.Comment().Length())
}

func TestNewFileRejectsOversizedPayload(t *testing.T) {
	_, err := vars.NewFile(
		vars.NewRaw(vars.KindAppVar, make([]byte, vars.MaxVariableLength+1)),
	)
	var lengthErr *vars.LengthMismatchError
	require.ErrorAs(t, err, &lengthErr)

	// The maximum itself still fits.
	f, err := vars.NewFile(
		vars.NewRaw(vars.KindAppVar, make([]byte, vars.MaxVariableLength)),
	)
	require.NoError(t, err)
	require.Equal(t, uint16(vars.MaxVariableLength), f.VariableLength())
}

func TestFileRoundTrip(t *testing.T) {
	f, err := vars.NewFile(
		vars.NewRaw(vars.KindProgram, []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x42}),
	)
	require.NoError(t, err)
	f.SetComment("Exported by ti-tools", true)

	encoded := f.Bytes()
	require.Len(t, encoded, f.Size())

	decoded, err := vars.NewFileFromBytes(encoded, vars.FileReadOptions{})
	require.NoError(t, err)

	require.Equal(t, f.Signature(), decoded.Signature())
	require.Equal(t, *f.Comment(), *decoded.Comment())
	require.Equal(t, f.VariableLength(), decoded.VariableLength())
	require.Equal(t, f.Variable().Bytes(), decoded.Variable().Bytes())
	require.Equal(t, f.Checksum(), decoded.Checksum())
	require.NoError(t, decoded.Validate())

	// Re-encoding the decoded file reproduces the input bytes.
	require.Equal(t, encoded, decoded.Bytes())
}

func TestFileBytesGoldenImage(t *testing.T) {
	f, err := vars.NewFile(vars.NewRaw(vars.KindProgram, []byte{0x01, 0x02, 0x03}))
	require.NoError(t, err)
	f.SetComment("hello", true)

	// Every byte of the image is pinned: signature, comment text over the
	// zeroed tail, little-endian length, variable region, checksum.
	expected := test.DecodeHexString(
		"2a2a54493833462a1a0a00" + // **TI83F* 0x1A 0x0A 0x00
			"68656c6c6f" + strings.Repeat("00", 37) + // "hello", zero padded
			"0300" + // variable length 3
			"010203" + // variable region
			"0600", // checksum 0x0006
	)
	require.Equal(t, expected, f.Bytes())
}

func TestNewFileFromBytesStrict(t *testing.T) {
	raw := validRawFile([]byte{0x10, 0x20, 0x30, 0x40})
	f, err := vars.NewFileFromBytes(raw.bytes(), vars.FileReadOptions{})
	require.NoError(t, err)

	require.Equal(t, vars.FileSignature, f.Signature())
	require.Equal(t, uint16(4), f.VariableLength())
	require.Equal(t, []byte{0x10, 0x20, 0x30, 0x40}, f.Variable().Bytes())
	require.Equal(t, raw.checksum, f.Checksum())
	require.NoError(t, f.Validate())

	text, err := f.Comment().Text(true)
	require.NoError(t, err)
	require.Equal(t, "assembled by hand", text)

	// Without a decoder the payload is the raw carrier of unknown kind.
	payload, ok := f.Variable().Payload().(*vars.Raw)
	require.True(t, ok, "expected *vars.Raw payload")
	require.Equal(t, vars.KindUnknown, payload.Kind())
	require.Equal(t, "", payload.FileExtension())
}

func TestNewFileFromBytesWithPayloadDecoder(t *testing.T) {
	raw := validRawFile([]byte{0x10, 0x20, 0x30})
	f, err := vars.NewFileFromBytesWithPayload(
		raw.bytes(),
		vars.FileReadOptions{},
		vars.RawPayloadDecoder(vars.KindProgram),
	)
	require.NoError(t, err)

	payload, ok := f.Variable().Payload().(*vars.Raw)
	require.True(t, ok, "expected *vars.Raw payload")
	require.Equal(t, vars.KindProgram, payload.Kind())
	require.Equal(t, "8xp", payload.FileExtension())
}

func TestNewFileFromBytesDecoderError(t *testing.T) {
	decodeErr := errors.New("truncated program header")
	decoder := func(data []byte, opts vars.VariableReadOptions) (vars.Payload, error) {
		return nil, decodeErr
	}

	raw := validRawFile([]byte{0x01})
	for _, mode := range []vars.ReadMode{
		vars.ReadModeError,
		vars.ReadModeFix,
		vars.ReadModeIgnore,
	} {
		_, err := vars.NewFileFromBytesWithPayload(
			raw.bytes(),
			vars.NewFileReadOptions(mode),
			decoder,
		)
		require.ErrorIs(
			t,
			err,
			decodeErr,
			"payload decode failure must surface under mode %s",
			mode,
		)
	}
}

func TestNewFileFromBytesTooShort(t *testing.T) {
	short := [][]byte{
		nil,
		make([]byte, vars.HeaderSize),
		make([]byte, vars.HeaderSize+vars.ChecksumSize-1),
	}
	for _, data := range short {
		for _, mode := range []vars.ReadMode{
			vars.ReadModeError,
			vars.ReadModeFix,
			vars.ReadModeIgnore,
		} {
			_, err := vars.NewFileFromBytes(data, vars.NewFileReadOptions(mode))
			require.ErrorIs(
				t,
				err,
				vars.ErrDataTooShort,
				"%d bytes under mode %s",
				len(data),
				mode,
			)
		}
	}
}

func TestFileDecodeSignatureModes(t *testing.T) {
	raw := validRawFile([]byte{0x01, 0x02, 0x03})
	raw.signature[0] = '!'
	data := raw.bytes()

	t.Run("Error", func(t *testing.T) {
		_, err := vars.NewFileFromBytes(data, vars.FileReadOptions{})
		var sigErr *vars.SignatureMismatchError
		require.ErrorAs(t, err, &sigErr)
		require.Equal(t, raw.signature, sigErr.Got)
	})

	t.Run("Fix", func(t *testing.T) {
		f, err := vars.NewFileFromBytes(
			data,
			vars.FileReadOptions{Signature: vars.ReadModeFix},
		)
		require.NoError(t, err)
		require.Equal(t, vars.FileSignature, f.Signature())
		require.NoError(t, f.Validate())
	})

	t.Run("Ignore", func(t *testing.T) {
		f, err := vars.NewFileFromBytes(
			data,
			vars.FileReadOptions{Signature: vars.ReadModeIgnore},
		)
		require.NoError(t, err)
		require.Equal(t, raw.signature, f.Signature())

		var sigErr *vars.SignatureMismatchError
		require.ErrorAs(t, f.Validate(), &sigErr)
	})
}

func TestFileDecodeChecksumModes(t *testing.T) {
	// Payload 0x01 0x02 0x03 sums to 0x0006; the stored value is off by one.
	raw := validRawFile([]byte{0x01, 0x02, 0x03})
	raw.checksum = 0x0007
	data := raw.bytes()

	t.Run("Error", func(t *testing.T) {
		_, err := vars.NewFileFromBytes(data, vars.FileReadOptions{})
		var checksumErr *vars.ChecksumMismatchError
		require.ErrorAs(t, err, &checksumErr)
		require.Equal(t, uint16(0x0007), checksumErr.Stored)
		require.Equal(t, uint16(0x0006), checksumErr.Computed)
	})

	t.Run("Fix", func(t *testing.T) {
		f, err := vars.NewFileFromBytes(
			data,
			vars.FileReadOptions{Checksum: vars.ReadModeFix},
		)
		require.NoError(t, err)
		require.Equal(t, uint16(0x0006), f.Checksum())
		require.NoError(t, f.Validate())
	})

	t.Run("Ignore", func(t *testing.T) {
		f, err := vars.NewFileFromBytes(
			data,
			vars.FileReadOptions{Checksum: vars.ReadModeIgnore},
		)
		require.NoError(t, err)
		require.Equal(t, uint16(0x0007), f.Checksum())

		var checksumErr *vars.ChecksumMismatchError
		require.ErrorAs(t, f.Validate(), &checksumErr)
	})
}

func TestFileDecodeLengthOverrun(t *testing.T) {
	// Declared length points past the end of the variable region.
	raw := validRawFile([]byte{0x01, 0x02, 0x03})
	raw.declared = 5
	data := raw.bytes()

	t.Run("Error", func(t *testing.T) {
		_, err := vars.NewFileFromBytes(data, vars.FileReadOptions{})
		var lengthErr *vars.LengthMismatchError
		require.ErrorAs(t, err, &lengthErr)
		require.Equal(t, uint16(5), lengthErr.Declared)
		require.Equal(t, 3, lengthErr.Actual)
	})

	t.Run("Fix", func(t *testing.T) {
		f, err := vars.NewFileFromBytes(
			data,
			vars.FileReadOptions{VariableLength: vars.ReadModeFix},
		)
		require.NoError(t, err)
		require.Equal(t, uint16(3), f.VariableLength())
		require.Equal(t, []byte{0x01, 0x02, 0x03}, f.Variable().Bytes())
		require.NoError(t, f.Validate())
	})

	t.Run("Ignore", func(t *testing.T) {
		// The declared length is trusted, but the bytes it selects must
		// exist; tolerance cannot conjure them.
		_, err := vars.NewFileFromBytes(
			data,
			vars.NewFileReadOptions(vars.ReadModeIgnore),
		)
		require.ErrorIs(t, err, vars.ErrDataTooShort)
	})
}

func TestFileDecodeTrailingBytes(t *testing.T) {
	// Two junk bytes follow the checksum; only strict mode objects.
	raw := validRawFile([]byte{0x01, 0x02, 0x03})
	raw.trailing = []byte{0xDE, 0xAD}
	data := raw.bytes()

	t.Run("Error", func(t *testing.T) {
		_, err := vars.NewFileFromBytes(data, vars.FileReadOptions{})
		var lengthErr *vars.LengthMismatchError
		require.ErrorAs(t, err, &lengthErr)
		require.Equal(t, uint16(3), lengthErr.Declared)
		require.Equal(t, 5, lengthErr.Actual)
	})

	for _, mode := range []vars.ReadMode{vars.ReadModeFix, vars.ReadModeIgnore} {
		t.Run(mode.String(), func(t *testing.T) {
			f, err := vars.NewFileFromBytes(
				data,
				vars.FileReadOptions{VariableLength: mode},
			)
			require.NoError(t, err)
			require.Equal(t, uint16(3), f.VariableLength())
			require.Equal(t, []byte{0x01, 0x02, 0x03}, f.Variable().Bytes())
			require.Equal(t, raw.checksum, f.Checksum())
		})
	}
}

func TestFileDecodeReserializingPayload(t *testing.T) {
	// A decoder that normalizes the payload to fewer bytes than the region
	// it was given, desynchronizing the header fields from the variable.
	decoder := func(data []byte, opts vars.VariableReadOptions) (vars.Payload, error) {
		return vars.NewRaw(vars.KindUnknown, data[:len(data)-1]), nil
	}

	raw := validRawFile([]byte{0x01, 0x02, 0x03})
	data := raw.bytes()

	t.Run("Error", func(t *testing.T) {
		_, err := vars.NewFileFromBytesWithPayload(
			data,
			vars.FileReadOptions{},
			decoder,
		)
		var lengthErr *vars.LengthMismatchError
		require.ErrorAs(t, err, &lengthErr)
		require.Equal(t, uint16(3), lengthErr.Declared)
		require.Equal(t, 2, lengthErr.Actual)
	})

	t.Run("Fix", func(t *testing.T) {
		// Fixing everything rederives both the length and the checksum
		// from the variable the decoder actually produced.
		f, err := vars.NewFileFromBytesWithPayload(
			data,
			vars.NewFileReadOptions(vars.ReadModeFix),
			decoder,
		)
		require.NoError(t, err)
		require.Equal(t, uint16(2), f.VariableLength())
		require.Equal(t, []byte{0x01, 0x02}, f.Variable().Bytes())
		require.Equal(t, uint16(0x0003), f.Checksum())
		require.NoError(t, f.Validate())
	})

	t.Run("Ignore", func(t *testing.T) {
		f, err := vars.NewFileFromBytesWithPayload(
			data,
			vars.NewFileReadOptions(vars.ReadModeIgnore),
			decoder,
		)
		require.NoError(t, err)
		require.Equal(t, uint16(3), f.VariableLength())
		require.Equal(t, []byte{0x01, 0x02}, f.Variable().Bytes())
		require.Equal(t, raw.checksum, f.Checksum())

		var lengthErr *vars.LengthMismatchError
		require.ErrorAs(t, f.Validate(), &lengthErr)
	})
}

func TestFileDecodeFailsFastInHeaderOrder(t *testing.T) {
	t.Run("SignatureBeforeChecksum", func(t *testing.T) {
		raw := validRawFile([]byte{0x01, 0x02, 0x03})
		raw.signature[0] = '!'
		raw.checksum = 0xFFFF

		_, err := vars.NewFileFromBytes(raw.bytes(), vars.FileReadOptions{})
		var sigErr *vars.SignatureMismatchError
		require.ErrorAs(t, err, &sigErr)
	})

	t.Run("LengthBeforeChecksum", func(t *testing.T) {
		raw := validRawFile([]byte{0x01, 0x02, 0x03})
		raw.declared = 5
		raw.checksum = 0xFFFF

		_, err := vars.NewFileFromBytes(raw.bytes(), vars.FileReadOptions{})
		var lengthErr *vars.LengthMismatchError
		require.ErrorAs(t, err, &lengthErr)
	})
}

func TestFileBytesRecomputesStaleFields(t *testing.T) {
	raw := validRawFile([]byte{0x01, 0x02, 0x03})
	raw.checksum = 0xBEEF
	f, err := vars.NewFileFromBytes(
		raw.bytes(),
		vars.NewFileReadOptions(vars.ReadModeIgnore),
	)
	require.NoError(t, err)
	require.Equal(t, uint16(0xBEEF), f.Checksum())

	// Stale stored fields never leak into the encoded output.
	f.SetVariableLengthUnchecked(999)
	decoded, err := vars.NewFileFromBytes(f.Bytes(), vars.FileReadOptions{})
	require.NoError(t, err)
	require.Equal(t, uint16(3), decoded.VariableLength())
	require.Equal(t, uint16(0x0006), decoded.Checksum())
}

func TestFileSizeUsesStoredLength(t *testing.T) {
	f, err := vars.NewFile(vars.NewRaw(vars.KindList, []byte{0x01, 0x02, 0x03}))
	require.NoError(t, err)
	require.Equal(t, 60, f.Size())
	require.Equal(t, 58, f.ChecksumOffset())

	f.SetVariableLengthUnchecked(100)
	require.Equal(t, vars.HeaderSize+100+vars.ChecksumSize, f.Size())
	require.Equal(t, vars.VariableOffset+100, f.ChecksumOffset())
}

func TestFileSetSignature(t *testing.T) {
	f, err := vars.NewFile(vars.NewRaw(vars.KindUnknown, []byte{0x01}))
	require.NoError(t, err)

	require.NoError(t, f.SetSignature(vars.FileSignature))

	bogus := vars.FileSignature
	bogus[2] = 'X'
	var sigErr *vars.SignatureMismatchError
	require.ErrorAs(t, f.SetSignature(bogus), &sigErr)
	require.Equal(t, vars.FileSignature, f.Signature(), "rejected value stored")

	f.SetSignatureUnchecked(bogus)
	require.Equal(t, bogus, f.Signature())
	require.ErrorAs(t, f.Validate(), &sigErr)
}

func TestFileSetVariable(t *testing.T) {
	f, err := vars.NewFile(vars.NewRaw(vars.KindProgram, []byte{0x01, 0x02}))
	require.NoError(t, err)

	require.NoError(
		t,
		f.SetVariable(vars.NewRaw(vars.KindProgram, []byte{0x0A, 0x0B, 0x0C})),
	)
	require.Equal(t, uint16(3), f.VariableLength())
	require.Equal(t, uint16(0x0021), f.Checksum())
	require.NoError(t, f.Validate())

	// An oversized replacement is rejected and leaves the file unchanged.
	err = f.SetVariable(
		vars.NewRaw(vars.KindProgram, make([]byte, vars.MaxVariableLength+1)),
	)
	var lengthErr *vars.LengthMismatchError
	require.ErrorAs(t, err, &lengthErr)
	require.Equal(t, []byte{0x0A, 0x0B, 0x0C}, f.Variable().Bytes())
	require.NoError(t, f.Validate())
}

func TestFileSetChecksumUnchecked(t *testing.T) {
	f, err := vars.NewFile(vars.NewRaw(vars.KindUnknown, []byte{0x01, 0x02, 0x03}))
	require.NoError(t, err)

	f.SetChecksumUnchecked(0xBEEF)
	require.Equal(t, uint16(0xBEEF), f.Checksum())

	var checksumErr *vars.ChecksumMismatchError
	require.ErrorAs(t, f.Validate(), &checksumErr)
	require.Equal(t, uint16(0xBEEF), checksumErr.Stored)
	require.Equal(t, uint16(0x0006), checksumErr.Computed)
}

func TestFileSetComment(t *testing.T) {
	f, err := vars.NewFile(vars.NewRaw(vars.KindUnknown, []byte{0x01}))
	require.NoError(t, err)

	f.SetComment("graphing homework", false)
	text, err := f.Comment().Text(true)
	require.NoError(t, err)
	require.Equal(t, "graphing homework", text)
	require.False(t, f.Comment().IsZeroTerminated())

	// Comment changes never disturb the cross-field invariants.
	require.NoError(t, f.Validate())
}

func TestFileWriteTo(t *testing.T) {
	f, err := vars.NewFile(vars.NewRaw(vars.KindPicture, []byte{0xAA, 0xBB}))
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := f.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(f.Size()), n)
	require.Equal(t, f.Bytes(), buf.Bytes())
}

func TestNewFileFromReader(t *testing.T) {
	raw := validRawFile([]byte{0x05, 0x06})
	f, err := vars.NewFileFromReader(
		bytes.NewReader(raw.bytes()),
		vars.FileReadOptions{},
	)
	require.NoError(t, err)
	require.Equal(t, []byte{0x05, 0x06}, f.Variable().Bytes())
}

func TestNewFileFromPath(t *testing.T) {
	raw := validRawFile([]byte{0x07, 0x08, 0x09})
	path := filepath.Join(t.TempDir(), "test.8xp")
	require.NoError(t, os.WriteFile(path, raw.bytes(), 0o644))

	f, err := vars.NewFileFromPath(path, vars.FileReadOptions{})
	require.NoError(t, err)
	require.Equal(t, []byte{0x07, 0x08, 0x09}, f.Variable().Bytes())

	_, err = vars.NewFileFromPath(
		filepath.Join(t.TempDir(), "missing.8xp"),
		vars.FileReadOptions{},
	)
	require.Error(t, err)
}

func TestVariableDigest(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	v := vars.NewVariable(vars.NewRaw(vars.KindProgram, data))

	expected := blake2b.Sum256(data)
	require.Equal(t, vars.Digest(expected), v.Digest())
	require.Len(t, v.Digest().String(), 64)

	// The digest identifies payload content, not the kind tag.
	same := vars.NewVariable(vars.NewRaw(vars.KindAppVar, data))
	require.Equal(t, v.Digest(), same.Digest())

	other := vars.NewVariable(vars.NewRaw(vars.KindProgram, []byte{0x01}))
	require.NotEqual(t, v.Digest(), other.Digest())
}
