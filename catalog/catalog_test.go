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

package catalog_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/adambyle/ti-tools/catalog"
	"github.com/adambyle/ti-tools/vars"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeFile(t *testing.T, kind vars.Kind, payload []byte, comment string) *vars.File {
	t.Helper()
	f, err := vars.NewFile(vars.NewRaw(kind, payload))
	require.NoError(t, err)
	if comment != "" {
		f.SetComment(comment, false)
	}
	return f
}

func TestCatalogAddFile(t *testing.T) {
	f := makeFile(t, vars.KindProgram, []byte{0x01, 0x02, 0x03}, "Group file")

	c := catalog.NewCatalog()
	require.NoError(t, c.AddFile("progs/QUAD.8xp", f))

	require.Equal(t, 1, c.Len())
	entry := c.Entries[0]
	assert.Equal(t, "progs/QUAD.8xp", entry.Path)
	assert.Equal(t, "program", entry.Kind)
	assert.Equal(t, int64(f.Size()), entry.Size)
	assert.Equal(t, uint16(3), entry.VariableLength)
	assert.Equal(
		t,
		vars.ComputeChecksum([]byte{0x01, 0x02, 0x03}),
		entry.Checksum,
	)
	assert.Equal(t, f.Variable().Digest().String(), entry.Digest)
	assert.Len(t, entry.Digest, 64)
	assert.Equal(t, "Group file", entry.Comment)
	assert.False(t, entry.ZeroTerminated)
}

func TestCatalogAddFileNil(t *testing.T) {
	c := catalog.NewCatalog()
	err := c.AddFile("a.8xp", nil)
	assert.ErrorIs(t, err, catalog.ErrNilFile)
	assert.Equal(t, 0, c.Len())
}

func TestCatalogAddFileUnknownKind(t *testing.T) {
	f := makeFile(t, vars.KindUnknown, []byte{0xFF}, "")

	c := catalog.NewCatalog()
	require.NoError(t, c.AddFile("mystery.bin", f))

	entry, ok := c.Lookup("mystery.bin")
	require.True(t, ok)
	assert.Equal(t, "unknown", entry.Kind)
}

func TestCatalogAddFileKindFromPath(t *testing.T) {
	// A raw payload of unknown kind still gets cataloged under the kind
	// its path extension names.
	f := makeFile(t, vars.KindUnknown, []byte{0x01}, "")

	c := catalog.NewCatalog()
	require.NoError(t, c.AddFile("progs/QUAD.8xp", f))

	entry, ok := c.Lookup("progs/QUAD.8xp")
	require.True(t, ok)
	assert.Equal(t, "program", entry.Kind)
}

func TestCatalogEntriesSortedByPath(t *testing.T) {
	c := catalog.NewCatalog()
	for _, path := range []string{"c.8xp", "a.8xp", "b.8xp"} {
		f := makeFile(t, vars.KindProgram, []byte(path), "")
		require.NoError(t, c.AddFile(path, f))
	}

	require.Equal(t, 3, c.Len())
	assert.Equal(t, "a.8xp", c.Entries[0].Path)
	assert.Equal(t, "b.8xp", c.Entries[1].Path)
	assert.Equal(t, "c.8xp", c.Entries[2].Path)
}

func TestCatalogAddFileReplacesSamePath(t *testing.T) {
	c := catalog.NewCatalog()

	first := makeFile(t, vars.KindProgram, []byte{0x01}, "")
	require.NoError(t, c.AddFile("a.8xp", first))

	second := makeFile(t, vars.KindProgram, []byte{0x01, 0x02}, "")
	require.NoError(t, c.AddFile("a.8xp", second))

	require.Equal(t, 1, c.Len())
	entry, ok := c.Lookup("a.8xp")
	require.True(t, ok)
	assert.Equal(t, uint16(2), entry.VariableLength)
}

func TestCatalogLookup(t *testing.T) {
	c := catalog.NewCatalog()
	f := makeFile(t, vars.KindList, []byte{0x0A}, "")
	require.NoError(t, c.AddFile("lists/L1.8xl", f))

	entry, ok := c.Lookup("lists/L1.8xl")
	require.True(t, ok)
	assert.Equal(t, "list", entry.Kind)

	_, ok = c.Lookup("lists/L2.8xl")
	assert.False(t, ok)
}

func TestCatalogDuplicates(t *testing.T) {
	c := catalog.NewCatalog()

	shared := []byte{0xDE, 0xAD}
	require.NoError(t, c.AddFile("b.8xp", makeFile(t, vars.KindProgram, shared, "")))
	require.NoError(t, c.AddFile("a.8xp", makeFile(t, vars.KindProgram, shared, "")))
	require.NoError(
		t,
		c.AddFile("unique.8xp", makeFile(t, vars.KindProgram, []byte{0x01}, "")),
	)

	groups := c.Duplicates()
	require.Len(t, groups, 1)
	require.Len(t, groups[0], 2)
	// Entries within a group follow catalog (path) order
	assert.Equal(t, "a.8xp", groups[0][0].Path)
	assert.Equal(t, "b.8xp", groups[0][1].Path)
	assert.Equal(t, groups[0][0].Digest, groups[0][1].Digest)
}

func TestCatalogDuplicatesNone(t *testing.T) {
	c := catalog.NewCatalog()
	require.NoError(t, c.AddFile("a.8xp", makeFile(t, vars.KindProgram, []byte{0x01}, "")))
	require.NoError(t, c.AddFile("b.8xp", makeFile(t, vars.KindProgram, []byte{0x02}, "")))

	assert.Empty(t, c.Duplicates())
}

func TestCatalogEncodeRoundTrip(t *testing.T) {
	c := catalog.NewCatalog()
	require.NoError(
		t,
		c.AddFile("a.8xp", makeFile(t, vars.KindProgram, []byte{0x01, 0x02}, "Alpha")),
	)
	require.NoError(
		t,
		c.AddFile("b.8xl", makeFile(t, vars.KindList, []byte{0x03}, "Beta")),
	)

	data, err := c.Encode()
	require.NoError(t, err)

	decoded, err := catalog.NewCatalogFromBytes(data)
	require.NoError(t, err)

	assert.Equal(t, uint(catalog.CatalogVersion), decoded.Version)
	assert.Equal(t, c.Entries, decoded.Entries)
	// Timestamps are stored with second precision
	assert.WithinDuration(t, c.GeneratedAt, decoded.GeneratedAt, time.Second)
}

func TestCatalogEncodeDeterministic(t *testing.T) {
	c := catalog.NewCatalog()
	require.NoError(t, c.AddFile("a.8xp", makeFile(t, vars.KindProgram, []byte{0x01}, "")))

	first, err := c.Encode()
	require.NoError(t, err)
	second, err := c.Encode()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCatalogVersionCheck(t *testing.T) {
	future := &catalog.Catalog{
		Version:     catalog.CatalogVersion + 1,
		GeneratedAt: time.Now(),
	}
	data, err := future.Encode()
	require.NoError(t, err)

	_, err = catalog.NewCatalogFromBytes(data)
	require.Error(t, err)

	var versionErr *catalog.UnsupportedVersionError
	require.True(t, errors.As(err, &versionErr))
	assert.Equal(t, uint(catalog.CatalogVersion+1), versionErr.Version)
}

func TestCatalogFromBytesGarbage(t *testing.T) {
	_, err := catalog.NewCatalogFromBytes([]byte{0xFF, 0x00, 0x12})
	assert.Error(t, err)
}

func TestCatalogFromReader(t *testing.T) {
	c := catalog.NewCatalog()
	require.NoError(t, c.AddFile("a.8xp", makeFile(t, vars.KindProgram, []byte{0x01}, "")))

	var buf bytes.Buffer
	n, err := c.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	decoded, err := catalog.NewCatalogFromReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, c.Entries, decoded.Entries)
}

func TestCatalogFromFile(t *testing.T) {
	c := catalog.NewCatalog()
	require.NoError(t, c.AddFile("a.8xp", makeFile(t, vars.KindProgram, []byte{0x01}, "")))

	path := filepath.Join(t.TempDir(), "manifest.cbor")
	require.NoError(t, c.WriteFile(path))

	decoded, err := catalog.NewCatalogFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, c.Entries, decoded.Entries)

	_, err = catalog.NewCatalogFromFile(filepath.Join(t.TempDir(), "missing.cbor"))
	assert.Error(t, err)
}
