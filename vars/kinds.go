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

import "strings"

// Variable kind definitions
var (
	KindReal = Kind{
		Name:      "real",
		Extension: "8xn",
	}
	KindComplex = Kind{
		Name:      "complex",
		Extension: "8xc",
	}
	KindList = Kind{
		Name:      "list",
		Extension: "8xl",
	}
	KindMatrix = Kind{
		Name:      "matrix",
		Extension: "8xm",
	}
	KindEquation = Kind{
		Name:      "equation",
		Extension: "8xy",
	}
	KindString = Kind{
		Name:      "string",
		Extension: "8xs",
	}
	KindProgram = Kind{
		Name:      "program",
		Extension: "8xp",
	}
	KindPicture = Kind{
		Name:      "picture",
		Extension: "8xi",
	}
	KindGraphDatabase = Kind{
		Name:      "gdb",
		Extension: "8xd",
	}
	KindWindow = Kind{
		Name:      "window",
		Extension: "8xw",
	}
	KindZoom = Kind{
		Name:      "zoom",
		Extension: "8xz",
	}
	KindTable = Kind{
		Name:      "table",
		Extension: "8xt",
	}
	KindAppVar = Kind{
		Name:      "appvar",
		Extension: "8xv",
	}
	KindGroup = Kind{
		Name:      "group",
		Extension: "8xg",
	}

	KindUnknown = Kind{
		Name:      "unknown",
		Extension: "",
	} // KindUnknown is used as a return value for lookup functions when a kind isn't found
)

// List of known kinds for use in lookup functions
var kinds = []Kind{
	KindReal,
	KindComplex,
	KindList,
	KindMatrix,
	KindEquation,
	KindString,
	KindProgram,
	KindPicture,
	KindGraphDatabase,
	KindWindow,
	KindZoom,
	KindTable,
	KindAppVar,
	KindGroup,
}

// KindByName returns a known variable kind by name
func KindByName(name string) Kind {
	for _, kind := range kinds {
		if kind.Name == name {
			return kind
		}
	}
	return KindUnknown
}

// KindByExtension returns a known variable kind by its canonical file
// extension. A leading dot is allowed and matching is case-insensitive.
func KindByExtension(ext string) Kind {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, kind := range kinds {
		if kind.Extension == ext {
			return kind
		}
	}
	return KindUnknown
}

// Kind identifies a calculator variable kind and the canonical file extension
// used when a single variable of that kind is written to disk. The payload
// contents of a kind are opaque to this package.
type Kind struct {
	Name      string
	Extension string
}

func (k Kind) String() string {
	return k.Name
}
