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

package catalog

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// UnsupportedVersionError is returned when decoding a catalog written with a
// format version this package does not understand.
type UnsupportedVersionError struct {
	Version uint
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf(
		"unsupported catalog version %d (supported: %d)",
		e.Version,
		CatalogVersion,
	)
}

var (
	cachedEncMode     cbor.EncMode
	cachedEncModeErr  error
	cachedEncModeOnce sync.Once
)

// getEncMode returns a cached EncMode, initializing it on first use.
// Deterministic map ordering keeps byte-identical output for identical
// catalogs, so manifests diff cleanly under version control.
func getEncMode() (cbor.EncMode, error) {
	cachedEncModeOnce.Do(func() {
		opts := cbor.EncOptions{
			Sort: cbor.SortCoreDeterministic,
			Time: cbor.TimeUnix,
		}
		cachedEncMode, cachedEncModeErr = opts.EncMode()
	})
	return cachedEncMode, cachedEncModeErr
}

// Encode serializes the catalog to CBOR.
func (c *Catalog) Encode() ([]byte, error) {
	em, err := getEncMode()
	if err != nil {
		return nil, err
	}
	return em.Marshal(c)
}

// WriteTo serializes the catalog to the given writer.
func (c *Catalog) WriteTo(w io.Writer) (int64, error) {
	data, err := c.Encode()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// WriteFile serializes the catalog into the named file.
func (c *Catalog) WriteFile(path string) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// NewCatalogFromBytes decodes a catalog from CBOR.
func NewCatalogFromBytes(data []byte) (*Catalog, error) {
	c := &Catalog{}
	if err := cbor.Unmarshal(data, c); err != nil {
		return nil, err
	}
	if c.Version != CatalogVersion {
		return nil, &UnsupportedVersionError{Version: c.Version}
	}
	return c, nil
}

// NewCatalogFromReader decodes a catalog from the given reader.
func NewCatalogFromReader(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewCatalogFromBytes(data)
}

// NewCatalogFromFile decodes a catalog from the named file.
func NewCatalogFromFile(path string) (*Catalog, error) {
	dataFile, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer dataFile.Close()
	return NewCatalogFromReader(dataFile)
}
