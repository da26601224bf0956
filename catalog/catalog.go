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

// Package catalog builds and serializes manifests of scanned variable files.
// A catalog records per-file metadata (kind, sizes, checksum, payload digest)
// but never the payload bytes themselves, so it stays small enough to commit
// alongside a collection or ship to another tool.
package catalog

import (
	"errors"
	"path/filepath"
	"sort"
	"time"

	"github.com/adambyle/ti-tools/vars"
)

// CatalogVersion is the current manifest format version. Decoding rejects
// catalogs written with any other version.
const CatalogVersion = 1

// ErrNilFile is returned by AddFile when given a nil file.
var ErrNilFile = errors.New("nil file")

// Entry describes a single variable file. Only metadata is recorded; the
// payload digest stands in for the content.
type Entry struct {
	// Path is the file path as submitted, used as the entry key.
	Path string `cbor:"0,keyasint"`
	// Kind is the variable kind name derived from the payload's canonical
	// file extension ("unknown" when the extension isn't recognized).
	Kind string `cbor:"1,keyasint"`
	// Size is the total encoded file size in bytes.
	Size int64 `cbor:"2,keyasint"`
	// VariableLength is the declared variable region length.
	VariableLength uint16 `cbor:"3,keyasint"`
	// Checksum is the stored file checksum.
	Checksum uint16 `cbor:"4,keyasint"`
	// Digest is the hex form of the variable's payload digest.
	Digest string `cbor:"5,keyasint"`
	// Comment is the comment region text, empty when the region does not
	// hold valid UTF-8.
	Comment string `cbor:"6,keyasint,omitempty"`
	// ZeroTerminated records the comment region's termination convention.
	ZeroTerminated bool `cbor:"7,keyasint,omitempty"`
}

// Catalog is a manifest of scanned variable files, ordered by path.
type Catalog struct {
	Version     uint      `cbor:"0,keyasint"`
	GeneratedAt time.Time `cbor:"1,keyasint"`
	Entries     []Entry   `cbor:"2,keyasint"`
}

// NewCatalog creates an empty catalog stamped with the current time.
func NewCatalog() *Catalog {
	return &Catalog{
		Version:     CatalogVersion,
		GeneratedAt: time.Now().UTC(),
	}
}

// AddFile records an entry for the given decoded file. Entries are kept
// sorted by path; adding a path that is already present replaces its entry.
func (c *Catalog) AddFile(path string, f *vars.File) error {
	if f == nil {
		return ErrNilFile
	}

	// Comment text is best effort. A comment region holding invalid UTF-8
	// still decodes as a file; the manifest just records no text for it.
	commentText, err := f.Comment().Text(true)
	if err != nil {
		commentText = ""
	}

	// The payload names its own kind when it has one; raw payloads of
	// unknown kind fall back to the path extension.
	kind := vars.KindByExtension(f.Variable().Payload().FileExtension())
	if kind == vars.KindUnknown {
		kind = vars.KindByExtension(filepath.Ext(path))
	}

	entry := Entry{
		Path:           path,
		Kind:           kind.Name,
		Size:           int64(f.Size()),
		VariableLength: f.VariableLength(),
		Checksum:       f.Checksum(),
		Digest:         f.Variable().Digest().String(),
		Comment:        commentText,
		ZeroTerminated: f.Comment().IsZeroTerminated(),
	}

	i := sort.Search(len(c.Entries), func(i int) bool {
		return c.Entries[i].Path >= path
	})
	if i < len(c.Entries) && c.Entries[i].Path == path {
		c.Entries[i] = entry
		return nil
	}
	c.Entries = append(c.Entries, Entry{})
	copy(c.Entries[i+1:], c.Entries[i:])
	c.Entries[i] = entry
	return nil
}

// Lookup returns the entry for the given path.
func (c *Catalog) Lookup(path string) (Entry, bool) {
	i := sort.Search(len(c.Entries), func(i int) bool {
		return c.Entries[i].Path >= path
	})
	if i < len(c.Entries) && c.Entries[i].Path == path {
		return c.Entries[i], true
	}
	return Entry{}, false
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.Entries)
}

// Duplicates groups entries whose payload digests collide, i.e. distinct
// paths holding identical variable content. Groups are ordered by the first
// path they appear at, and only digests with two or more entries are
// reported.
func (c *Catalog) Duplicates() [][]Entry {
	byDigest := make(map[string][]Entry)
	var order []string
	for _, entry := range c.Entries {
		if _, seen := byDigest[entry.Digest]; !seen {
			order = append(order, entry.Digest)
		}
		byDigest[entry.Digest] = append(byDigest[entry.Digest], entry)
	}

	var groups [][]Entry
	for _, digest := range order {
		if group := byDigest[digest]; len(group) > 1 {
			groups = append(groups, group)
		}
	}
	return groups
}
