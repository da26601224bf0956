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
	"context"
	"errors"
	"sync"
	"time"
)

// ErrPendingLimitExceeded is returned when the collect stage's pending buffer is full.
var ErrPendingLimitExceeded = errors.New("pipeline: pending file limit exceeded")

// CollectFunc is a function that receives finished files in submission order
// (by SequenceNumber). Typical collectors append catalog entries or print
// per-file report lines.
type CollectFunc func(*FileItem) error

// CollectStage buffers out-of-order files and collects them in sequence order.
//
// Thread-safety: While CollectStage uses internal locking for state management,
// ProcessWithStatus must be called from a single goroutine to guarantee ordered
// execution of CollectFunc. The CollectStageRunner provides this guarantee.
type CollectStage struct {
	collectFunc CollectFunc
	maxPending  int
	mu          sync.Mutex
	// pending holds out-of-order items waiting to be collected
	pending map[uint64]*FileItem
	// nextSequence is the next sequence number to collect
	nextSequence uint64
}

// NewCollectStage creates a new CollectStage with the given collect function.
// maxPending limits the number of out-of-order files that can be buffered.
// Use 0 for unlimited (not recommended for large batches).
func NewCollectStage(collectFunc CollectFunc, maxPending int) *CollectStage {
	return &CollectStage{
		collectFunc:  collectFunc,
		maxPending:   maxPending,
		pending:      make(map[uint64]*FileItem),
		nextSequence: 0,
	}
}

// Name returns the stage name.
func (s *CollectStage) Name() string {
	return "collect"
}

// Process buffers the item and collects any items that are now in order.
// Returns nil even if the item is buffered (not yet collected).
// The actual collect error is stored in the item and sent to the error channel.
func (s *CollectStage) Process(ctx context.Context, item *FileItem) error {
	_, err := s.ProcessWithStatus(ctx, item)
	return err
}

// ProcessWithStatus processes an item and returns all items that were processed.
// If the item is next in sequence, it is processed immediately along with any
// buffered items that become ready. If the item is out of order, it is buffered
// and the returned slice will be nil.
//
// Returning processed items directly (rather than through a callback) means
// nothing can be dropped when a long run of buffered items is released at once.
func (s *CollectStage) ProcessWithStatus(ctx context.Context, item *FileItem) ([]*FileItem, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.Lock()

	// Check if this is the next item to collect
	if item.SequenceNumber() == s.nextSequence {
		s.nextSequence++
		s.mu.Unlock()
		// Collect if the file actually decoded
		if item.DecodeError() == nil {
			s.collectItem(ctx, item)
		}
		// Try to collect any buffered items that are now in order
		buffered := s.collectPending(ctx)
		// Return the input item plus any buffered items
		processed := make([]*FileItem, 0, 1+len(buffered))
		processed = append(processed, item)
		processed = append(processed, buffered...)
		return processed, nil
	}

	// Buffer for later - always add to preserve sequence ordering
	s.pending[item.SequenceNumber()] = item
	pendingCount := len(s.pending)
	s.mu.Unlock()

	// Check pending limit after buffering - return error to signal backpressure
	// but the item is still buffered to prevent sequence gaps
	if s.maxPending > 0 && pendingCount > s.maxPending {
		return nil, ErrPendingLimitExceeded
	}
	return nil, nil
}

// collectItem collects a single item without holding the lock.
func (s *CollectStage) collectItem(ctx context.Context, item *FileItem) {
	select {
	case <-ctx.Done():
		item.SetCollected(false, ctx.Err(), 0)
		return
	default:
	}

	start := time.Now()
	var err error
	if s.collectFunc != nil {
		err = s.collectFunc(item)
	}
	duration := time.Since(start)

	if err != nil {
		item.SetCollected(false, err, duration)
	} else {
		item.SetCollected(true, nil, duration)
	}
}

// collectPending collects any pending items that are now in order.
// This method acquires and releases the lock as needed to avoid holding it during collectFunc.
// Returns a slice of all items that were processed from the pending buffer.
func (s *CollectStage) collectPending(ctx context.Context) []*FileItem {
	var processed []*FileItem
	for {
		select {
		case <-ctx.Done():
			return processed
		default:
		}

		s.mu.Lock()
		item, ok := s.pending[s.nextSequence]
		if !ok {
			s.mu.Unlock()
			return processed
		}
		delete(s.pending, s.nextSequence)
		s.nextSequence++
		s.mu.Unlock()

		// Collect if decoded, otherwise just advance (sequence already incremented)
		if item.DecodeError() == nil {
			s.collectItem(ctx, item)
		}

		processed = append(processed, item)
	}
}

// Reset resets the stage state for reuse.
func (s *CollectStage) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = make(map[uint64]*FileItem)
	s.nextSequence = 0
}

// PendingCount returns the number of items waiting to be collected.
func (s *CollectStage) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// CollectStageRunner runs the collect stage as a single goroutine.
type CollectStageRunner struct {
	stage   *CollectStage
	input   <-chan *FileItem
	output  chan<- *FileItem
	errors  chan<- error
	metrics *Metrics
	done    chan struct{}
	running bool
	mu      sync.Mutex
}

// NewCollectStageRunner creates a new runner for the collect stage.
func NewCollectStageRunner(
	stage *CollectStage,
	input <-chan *FileItem,
	output chan<- *FileItem,
	errors chan<- error,
) *CollectStageRunner {
	return &CollectStageRunner{
		stage:  stage,
		input:  input,
		output: output,
		errors: errors,
		done:   make(chan struct{}),
	}
}

// SetMetrics sets the metrics collector for the runner.
// Must be called before Start() to avoid data races.
func (r *CollectStageRunner) SetMetrics(metrics *Metrics) {
	r.metrics = metrics
}

// Start starts the collect stage runner.
func (r *CollectStageRunner) Start(ctx context.Context) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.done = make(chan struct{})
	r.mu.Unlock()

	go r.run(ctx)
}

// Stop waits for the runner to complete. The runner will exit when the context
// passed to Start is cancelled or the input channel is closed. This method blocks
// until completion; it does not signal the runner to stop.
func (r *CollectStageRunner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	// Capture done channel while holding lock to avoid race with concurrent Start()
	done := r.done
	r.mu.Unlock()

	<-done
}

func (r *CollectStageRunner) run(ctx context.Context) {
	defer func() {
		r.mu.Lock()
		r.running = false
		close(r.done)
		r.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-r.input:
			if !ok {
				return
			}

			processed, err := r.stage.ProcessWithStatus(ctx, item)
			if err != nil {
				select {
				case r.errors <- err:
				case <-ctx.Done():
					return
				}
				continue
			}

			// Forward all processed items (includes input item + any buffered
			// items that became ready).
			for _, p := range processed {
				r.forwardItem(ctx, p)
			}
		}
	}
}

// forwardItem sends an item to output and reports any collect errors.
func (r *CollectStageRunner) forwardItem(ctx context.Context, item *FileItem) {
	// Record metrics for items that went through the collect stage (both
	// success and failure). Items with decode errors are not collected and
	// don't have collect metrics.
	if r.metrics != nil && item.DecodeError() == nil {
		r.metrics.RecordCollect(item.CollectDuration(), item.CollectError())
	}

	select {
	case r.output <- item:
	case <-ctx.Done():
		return
	}

	// Report collect errors separately
	if collectErr := item.CollectError(); collectErr != nil {
		select {
		case r.errors <- collectErr:
		case <-ctx.Done():
			return
		}
	}
}
