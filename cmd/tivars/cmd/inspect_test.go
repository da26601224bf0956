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

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adambyle/ti-tools/vars"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeVarFile(t *testing.T, dir string, name string, payload []byte) string {
	t.Helper()
	f, err := vars.NewFile(vars.NewRaw(vars.KindProgram, payload))
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, f.Bytes(), 0o644))
	return path
}

func TestBuildInspectReportValid(t *testing.T) {
	path := writeVarFile(t, t.TempDir(), "QUAD.8xp", []byte{0x01, 0x02, 0x03})

	report, err := buildInspectReport(path)
	require.NoError(t, err)

	assert.Equal(t, path, report.Path)
	assert.Equal(t, int64(60), report.Size)
	assert.True(t, report.SignatureValid)
	assert.Equal(t, "program", report.Kind)
	assert.Equal(t, "", report.Comment)
	assert.True(t, report.CommentValidUTF8)
	assert.True(t, report.ZeroTerminated)
	assert.Equal(t, 0, report.CommentLength)
	assert.Equal(t, uint16(3), report.DeclaredLength)
	assert.Equal(t, 3, report.ActualLength)
	assert.Equal(t, "0x0006", report.StoredChecksum)
	assert.Equal(t, "0x0006", report.ComputedChecksum)
	assert.Len(t, report.Digest, 64)
	assert.True(t, report.Valid)
}

func TestBuildInspectReportChecksumMismatch(t *testing.T) {
	dir := t.TempDir()
	path := writeVarFile(t, dir, "BAD.8xp", []byte{0x01, 0x02, 0x03})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-2]++
	require.NoError(t, os.WriteFile(path, data, 0o644))

	report, err := buildInspectReport(path)
	require.NoError(t, err)

	assert.True(t, report.SignatureValid)
	assert.Equal(t, "0x0007", report.StoredChecksum)
	assert.Equal(t, "0x0006", report.ComputedChecksum)
	assert.False(t, report.Valid)
}

func TestBuildInspectReportLengthMismatch(t *testing.T) {
	dir := t.TempDir()
	path := writeVarFile(t, dir, "LONG.8xp", []byte{0x01, 0x02, 0x03})

	// Declare a shorter region than is present
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[vars.VariableLengthOffset] = 2
	require.NoError(t, os.WriteFile(path, data, 0o644))

	report, err := buildInspectReport(path)
	require.NoError(t, err)

	assert.Equal(t, uint16(2), report.DeclaredLength)
	assert.Equal(t, 3, report.ActualLength)
	assert.False(t, report.Valid)
}

func TestBuildInspectReportTruncated(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "SHORT.8xp")
	require.NoError(t, os.WriteFile(path, []byte{0x2A, 0x2A}, 0o644))

	_, err := buildInspectReport(path)
	assert.ErrorIs(t, err, vars.ErrDataTooShort)
}

func TestBuildInspectReportMissingFile(t *testing.T) {
	_, err := buildInspectReport(filepath.Join(t.TempDir(), "absent.8xp"))
	assert.Error(t, err)
}

func TestCollectVariableFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeVarFile(t, dir, "a.8xp", []byte{0x01})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	c := writeVarFile(t, filepath.Join(dir, "sub"), "c.8xl", []byte{0x02})
	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("not a variable"), 0o644))

	// Directories are filtered to known extensions
	paths, err := collectVariableFiles([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{a, c}, paths)

	// Explicitly listed files are taken as-is
	paths, err = collectVariableFiles([]string{notes, a})
	require.NoError(t, err)
	assert.Equal(t, []string{notes, a}, paths)

	_, err = collectVariableFiles([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}
