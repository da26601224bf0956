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
	"sync"
	"time"

	"github.com/adambyle/ti-tools/vars"
)

// FileItem represents a variable file as it moves through the pipeline.
// It is thread-safe and tracks the processing state at each stage.
type FileItem struct {
	// Immutable fields (set at construction, never modified)
	// These are unexported to prevent modification; use getter methods.
	path           string
	sequenceNumber uint64
	receivedAt     time.Time

	// Mutable fields protected by mutex
	mu sync.RWMutex

	// Raw file data; present at construction for in-memory submissions,
	// otherwise set by the decode stage after reading the path.
	data []byte

	// Decode stage results
	file           *vars.File
	decodeError    error
	decodeDuration time.Duration

	// Repair stage results
	repaired       []byte
	changed        bool
	repairDuration time.Duration

	// Collect stage results
	collected       bool
	collectError    error
	collectDuration time.Duration
}

// NewFileItem creates a new FileItem with the given immutable fields. The
// data slice is copied so the item owns its bytes and is immune to
// modifications by the caller, which is critical for concurrent pipeline
// processing. A nil data slice means the decode stage reads the path itself.
func NewFileItem(path string, data []byte, seq uint64) *FileItem {
	var owned []byte
	if data != nil {
		owned = make([]byte, len(data))
		copy(owned, data)
	}
	return &FileItem{
		path:           path,
		data:           owned,
		sequenceNumber: seq,
		receivedAt:     time.Now(),
	}
}

// Path returns the file path the item was submitted under. For in-memory
// submissions this is a reporting tag, not a location on disk.
func (f *FileItem) Path() string {
	return f.path
}

// SequenceNumber returns the sequence number assigned to this file.
func (f *FileItem) SequenceNumber() uint64 {
	return f.sequenceNumber
}

// ReceivedAt returns the time when this file was submitted.
func (f *FileItem) ReceivedAt() time.Time {
	return f.receivedAt
}

// Data returns the raw file bytes, or nil if the file has not been read yet.
// The returned slice should not be modified.
func (f *FileItem) Data() []byte {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.data
}

// SetData sets the raw file bytes read from disk.
func (f *FileItem) SetData(data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = data
}

// File returns the decoded file, or nil if not yet decoded or decode failed.
func (f *FileItem) File() *vars.File {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.file
}

// SetFile sets the decoded file and decode duration.
// Clears any previously set decode error for consistency.
func (f *FileItem) SetFile(file *vars.File, duration time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.file = file
	f.decodeError = nil
	f.decodeDuration = duration
}

// DecodeError returns the decode error, if any.
func (f *FileItem) DecodeError() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.decodeError
}

// SetDecodeError sets the decode error and duration.
// Clears any previously set file for consistency.
func (f *FileItem) SetDecodeError(err error, duration time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.file = nil
	f.decodeError = err
	f.decodeDuration = duration
}

// DecodeDuration returns the time spent in the decode stage.
func (f *FileItem) DecodeDuration() time.Duration {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.decodeDuration
}

// IsDecoded returns true if the file has been successfully decoded.
func (f *FileItem) IsDecoded() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.file != nil
}

// SetRepair sets the repair result: the file's canonical re-encoding and
// whether it differs from the bytes read.
func (f *FileItem) SetRepair(repaired []byte, changed bool, duration time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.repaired = repaired
	f.changed = changed
	f.repairDuration = duration
}

// Repaired returns the canonical re-encoding produced by the repair stage,
// or nil if the item has not passed through it.
func (f *FileItem) Repaired() []byte {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.repaired
}

// RepairChanged returns true if the repair stage produced bytes that differ
// from the bytes read, meaning the file on disk violates an invariant.
func (f *FileItem) RepairChanged() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.changed
}

// RepairDuration returns the time spent in the repair stage.
func (f *FileItem) RepairDuration() time.Duration {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.repairDuration
}

// SetCollected sets the collect result.
func (f *FileItem) SetCollected(collected bool, err error, duration time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collected = collected
	f.collectError = err
	f.collectDuration = duration
}

// IsCollected returns true if the file was handed to the collect function.
func (f *FileItem) IsCollected() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.collected
}

// CollectError returns the collect error, if any.
func (f *FileItem) CollectError() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.collectError
}

// CollectDuration returns the time spent in the collect stage.
func (f *FileItem) CollectDuration() time.Duration {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.collectDuration
}

// TotalDuration returns the total processing time from submission to completion.
func (f *FileItem) TotalDuration() time.Duration {
	return time.Since(f.receivedAt)
}
