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
	"sync/atomic"
	"time"
)

// ErrPipelineStopped is returned when trying to submit to a stopped pipeline.
var ErrPipelineStopped = errors.New("pipeline is stopped")

// ErrPipelineNotStarted is returned when trying to use a pipeline that hasn't been started.
var ErrPipelineNotStarted = errors.New("pipeline not started")

// closedResultsChan is a closed channel returned by Results() before Start() is called.
// This prevents callers from blocking indefinitely on a nil channel.
var closedResultsChan = func() <-chan *FileItem {
	ch := make(chan *FileItem)
	close(ch)
	return ch
}()

// newNotStartedErrorsChan creates a fresh channel that yields ErrPipelineNotStarted once.
// Each call creates a new channel to ensure all callers receive the error.
func newNotStartedErrorsChan() <-chan error {
	ch := make(chan error, 1)
	ch <- ErrPipelineNotStarted
	close(ch)
	return ch
}

// FilePipeline orchestrates the variable file processing pipeline.
type FilePipeline struct {
	config Config

	// Stages
	decodeStage  *DecodeStage
	repairStage  *RepairStage
	collectStage *CollectStage

	// Worker pools and runners
	decodePool    *StageWorkerPool
	repairPool    *StageWorkerPool
	collectRunner *CollectStageRunner

	// Channels
	submitChan   chan *FileItem
	decodedChan  chan *FileItem
	repairedChan chan *FileItem
	resultsChan  chan *FileItem
	errorsChan   chan error

	// Metrics
	metrics *Metrics

	// State
	sequenceCounter uint64
	ctx             context.Context
	cancel          context.CancelFunc
	started         atomic.Bool
	stopped         atomic.Bool
	wg              sync.WaitGroup
	mu              sync.Mutex   // protects Start/Stop
	submitMu        sync.RWMutex // protects Submit against concurrent Stop
}

// NewFilePipeline creates a new FilePipeline using functional options.
// Use With* options to customize the pipeline configuration.
//
// Example:
//
//	p := NewFilePipeline(
//	    WithDecodeWorkers(4),
//	    WithReadOptions(vars.NewFileReadOptions(vars.ReadModeFix)),
//	)
func NewFilePipeline(opts ...Option) *FilePipeline {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	metrics := config.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &FilePipeline{
		config:  config,
		metrics: metrics,
	}
}

// Start starts the pipeline processing.
func (p *FilePipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped.Load() {
		return ErrPipelineStopped
	}

	if p.started.Load() {
		return nil // Already started
	}

	// Create cancellable context
	p.ctx, p.cancel = context.WithCancel(ctx)

	// Create channels
	bufSize := p.config.QueueSize
	p.submitChan = make(chan *FileItem, bufSize)
	p.decodedChan = make(chan *FileItem, bufSize)
	p.resultsChan = make(chan *FileItem, bufSize)
	p.errorsChan = make(chan error, bufSize)

	// Create decode stage
	p.decodeStage = NewDecodeStage(p.config.ReadOptions, p.config.PayloadDecoder)
	p.collectStage = NewCollectStage(p.config.CollectFunc, p.config.MaxPendingFiles)

	// Create decode worker pool
	p.decodePool = NewStageWorkerPool(StageWorkerPoolConfig{
		Stage:         p.decodeStage,
		NumWorkers:    p.config.DecodeWorkers,
		Input:         p.submitChan,
		Output:        p.decodedChan,
		Errors:        p.errorsChan,
		RecordMetrics: DecodeMetricsRecorder(p.metrics),
	})

	// Determine input channel for collect stage
	var collectInput <-chan *FileItem

	repairEnabled := p.config.RepairWorkers > 0
	if repairEnabled {
		// Create repair stage
		p.repairedChan = make(chan *FileItem, bufSize)
		p.repairStage = NewRepairStage()
		p.repairPool = NewStageWorkerPool(StageWorkerPoolConfig{
			Stage:         p.repairStage,
			NumWorkers:    p.config.RepairWorkers,
			Input:         p.decodedChan,
			Output:        p.repairedChan,
			Errors:        p.errorsChan,
			RecordMetrics: RepairMetricsRecorder(p.metrics),
			ShouldRecord:  RecordIfDecoded,
		})
		collectInput = p.repairedChan
	} else {
		// Skip repair - decoded files go directly to collection
		collectInput = p.decodedChan
	}

	p.collectRunner = NewCollectStageRunner(
		p.collectStage,
		collectInput,
		p.resultsChan,
		p.errorsChan,
	)
	p.collectRunner.SetMetrics(p.metrics)

	// Start all stages
	// Note: p.ctx is derived from the passed ctx via context.WithCancel above
	p.decodePool.Start(p.ctx)
	if repairEnabled {
		p.repairPool.Start(p.ctx)
	}
	p.collectRunner.Start(p.ctx)

	// Start metrics collection goroutine
	p.wg.Add(1)
	go p.metricsCollector()

	p.started.Store(true)
	return nil
}

// Submit submits a file path for processing; the decode stage reads it.
// This method is safe to call concurrently with Stop().
// The context allows callers to handle timeouts or cancellations when the
// pipeline is full and applying backpressure.
func (p *FilePipeline) Submit(ctx context.Context, path string) error {
	return p.submit(ctx, path, nil)
}

// SubmitBytes submits in-memory file data for processing, tagged with a path
// used for reporting. The data is copied.
func (p *FilePipeline) SubmitBytes(ctx context.Context, path string, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	return p.submit(ctx, path, data)
}

func (p *FilePipeline) submit(ctx context.Context, path string, data []byte) error {
	// Early checks for common cases (before acquiring lock)
	if !p.started.Load() {
		return ErrPipelineNotStarted
	}

	// RLock allows concurrent submits while preventing races with Stop().
	// This is critical: between the stopped check and channel send, Stop() could
	// close submitChan causing a panic. The RLock ensures Stop() waits until
	// all in-flight submits complete before closing the channel.
	p.submitMu.RLock()
	defer p.submitMu.RUnlock()

	// Check stopped under lock to ensure we don't race with Stop()
	if p.stopped.Load() {
		return ErrPipelineStopped
	}

	// Allocate sequence number only once, then send.
	// We use a single blocking select to avoid sequence gaps that would occur
	// if we allocated in a non-blocking attempt that failed.
	item := NewFileItem(path, data, atomic.AddUint64(&p.sequenceCounter, 1)-1)

	select {
	case p.submitChan <- item:
		p.metrics.RecordSubmit()
		return nil
	case <-ctx.Done():
		// Context cancelled while waiting - sequence gap is acceptable
		// because this typically means shutdown.
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrPipelineStopped
	}
}

// Results returns a channel of processed file items.
// If the pipeline has not been started, returns a closed channel to prevent blocking.
func (p *FilePipeline) Results() <-chan *FileItem {
	if !p.started.Load() {
		return closedResultsChan
	}
	return p.resultsChan
}

// Errors returns a channel of processing errors.
// If the pipeline has not been started, returns a channel that yields
// ErrPipelineNotStarted once and then closes.
func (p *FilePipeline) Errors() <-chan error {
	if !p.started.Load() {
		return newNotStartedErrorsChan()
	}
	return p.errorsChan
}

// Stop gracefully stops the pipeline.
func (p *FilePipeline) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started.Load() || p.stopped.Load() {
		return nil
	}

	// Cancel context FIRST to unblock any Submit() calls waiting on channel send.
	// This must happen before acquiring submitMu.Lock() to avoid deadlock:
	// Submit() holds RLock while blocking on channel, and we need it to unblock
	// via ctx.Done() before we can acquire the write lock.
	p.cancel()

	// Now acquire write lock to ensure no Submit() calls are in progress.
	// Any Submit() blocked on channel send will now return via ctx.Done().
	p.submitMu.Lock()
	p.stopped.Store(true)
	// Close input channel to signal shutdown
	close(p.submitChan)
	p.submitMu.Unlock()

	// Wait for decode workers to finish
	p.decodePool.Stop()
	close(p.decodedChan)

	// Wait for repair workers to finish (if repair is enabled)
	if p.repairPool != nil {
		p.repairPool.Stop()
		close(p.repairedChan)
	}

	// Wait for collect runner to finish
	p.collectRunner.Stop()

	// Close output channels
	close(p.resultsChan)
	close(p.errorsChan)

	// Wait for metrics collector
	p.wg.Wait()

	return nil
}

// Stats returns the current pipeline statistics.
func (p *FilePipeline) Stats() Stats {
	return p.metrics.Stats()
}

// PendingCount returns the approximate number of files still being processed.
// This includes items in inter-stage channels and items buffered in the
// collect stage.
func (p *FilePipeline) PendingCount() int {
	if !p.started.Load() {
		return 0
	}
	channelDepth := len(p.submitChan) + len(p.decodedChan) + len(p.repairedChan)
	collectPending := 0
	if p.collectStage != nil {
		collectPending = p.collectStage.PendingCount()
	}
	return channelDepth + collectPending
}

// WaitForDrain blocks until all currently submitted files have been processed
// or the context is cancelled. Batch callers typically submit everything,
// drain, and then Stop().
func (p *FilePipeline) WaitForDrain(ctx context.Context) error {
	if !p.started.Load() {
		return ErrPipelineNotStarted
	}

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if p.PendingCount() == 0 {
				return nil
			}
		}
	}
}

// metricsCollector collects metrics from processed items.
func (p *FilePipeline) metricsCollector() {
	defer p.wg.Done()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			// Update queue depth
			depth := len(p.submitChan) + len(p.decodedChan) + len(p.repairedChan)
			p.metrics.UpdateQueueDepth(depth)
		}
	}
}

// DrainResults reads all available results without blocking.
// Useful for testing or cleanup.
func (p *FilePipeline) DrainResults() []*FileItem {
	var results []*FileItem
	for {
		select {
		case item, ok := <-p.resultsChan:
			if !ok {
				return results
			}
			results = append(results, item)
		default:
			return results
		}
	}
}

// DrainErrors reads all available errors without blocking.
// Useful for testing or cleanup.
func (p *FilePipeline) DrainErrors() []error {
	var errs []error
	for {
		select {
		case err, ok := <-p.errorsChan:
			if !ok {
				return errs
			}
			errs = append(errs, err)
		default:
			return errs
		}
	}
}
