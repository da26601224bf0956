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

// Package pipeline provides a concurrent processing pipeline for batches of
// variable files. It supports parallel decoding and repair with ordered
// collection of results.
package pipeline

import (
	"context"
	"time"
)

// Stage represents a processing stage in the file pipeline.
type Stage interface {
	// Name returns the name of the stage for metrics.
	Name() string
	// Process processes a single file item. Returns an error if processing fails.
	Process(ctx context.Context, item *FileItem) error
}

// StageFunc is an adapter that allows using ordinary functions as Stage implementations.
type StageFunc struct {
	name string
	fn   func(ctx context.Context, item *FileItem) error
}

// NewStageFunc creates a new StageFunc with the given name and processing function.
func NewStageFunc(name string, fn func(ctx context.Context, item *FileItem) error) *StageFunc {
	return &StageFunc{
		name: name,
		fn:   fn,
	}
}

// Name returns the name of the stage.
func (s *StageFunc) Name() string {
	return s.name
}

// Process calls the underlying function.
func (s *StageFunc) Process(ctx context.Context, item *FileItem) error {
	return s.fn(ctx, item)
}

// Pipeline represents a variable file processing pipeline.
type Pipeline interface {
	// Start starts the pipeline processing.
	Start(ctx context.Context) error
	// Submit submits a file path for processing; the file is read by the
	// decode stage. The context allows callers to handle timeouts or
	// cancellations when the pipeline is full and applying backpressure.
	Submit(ctx context.Context, path string) error
	// SubmitBytes submits in-memory file data for processing, tagged with a
	// path used for reporting.
	SubmitBytes(ctx context.Context, path string, data []byte) error
	// Results returns a channel of processed file items.
	Results() <-chan *FileItem
	// Errors returns a channel of processing errors.
	Errors() <-chan error
	// Stop gracefully stops the pipeline.
	Stop() error
	// WaitForDrain waits for all submitted files to be processed.
	WaitForDrain(ctx context.Context) error
	// Stats returns the current pipeline statistics.
	Stats() Stats
}

// Stats contains statistics about pipeline performance.
type Stats struct {
	// FilesSubmitted is the total number of files submitted to the pipeline.
	FilesSubmitted uint64
	// FilesDecoded is the total number of files successfully decoded.
	FilesDecoded uint64
	// FilesRepaired is the total number of files whose canonical re-encoding
	// differs from the bytes read.
	FilesRepaired uint64
	// FilesCollected is the total number of files handed to the collect
	// function in submission order.
	FilesCollected uint64
	// DecodeErrors is the total number of decode errors.
	DecodeErrors uint64
	// CollectErrors is the total number of collect errors.
	CollectErrors uint64

	// CurrentQueueDepth is the current number of files in the pipeline.
	CurrentQueueDepth int
	// PeakQueueDepth is the maximum queue depth observed.
	PeakQueueDepth int

	// LastFileTime is the time the last file was collected.
	LastFileTime time.Time
	// StartTime is when the pipeline was started.
	StartTime time.Time
}
