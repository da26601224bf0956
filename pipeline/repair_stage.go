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

package pipeline

import (
	"bytes"
	"context"
	"time"
)

// RepairStage re-encodes decoded files into their canonical form. Since
// encoding rederives the length and checksum fields, the output of this stage
// always satisfies the format's invariants; comparing it against the bytes
// read tells whether the file on disk needs rewriting.
//
// The stage never touches the filesystem. Writing repaired bytes back is the
// caller's decision, typically made while draining Results().
type RepairStage struct{}

// NewRepairStage creates a new RepairStage.
func NewRepairStage() *RepairStage {
	return &RepairStage{}
}

// Name returns the stage name.
func (s *RepairStage) Name() string {
	return "repair"
}

// Process re-encodes the item's decoded file. Items that failed decode pass
// through untouched.
func (s *RepairStage) Process(ctx context.Context, item *FileItem) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	file := item.File()
	if file == nil {
		return nil
	}

	start := time.Now()
	repaired := file.Bytes()
	changed := !bytes.Equal(repaired, item.Data())
	item.SetRepair(repaired, changed, time.Since(start))
	return nil
}
