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
	"sync/atomic"
	"time"
)

// Metrics tracks metrics for the entire pipeline.
// Uses atomic counters for thread-safe operation.
type Metrics struct {
	// Counters (atomic)
	filesSubmitted atomic.Uint64
	filesDecoded   atomic.Uint64
	filesRepaired  atomic.Uint64
	filesCollected atomic.Uint64
	decodeErrors   atomic.Uint64
	collectErrors  atomic.Uint64

	// Queue tracking (requires mutex)
	mu                sync.RWMutex
	currentQueueDepth int
	peakQueueDepth    int

	// Timing
	lastFileTime time.Time
	startTime    time.Time
}

// NewMetrics creates a new Metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),
	}
}

// RecordSubmit increments the submitted counter.
func (m *Metrics) RecordSubmit() {
	m.filesSubmitted.Add(1)
}

// RecordDecode records a decode result.
func (m *Metrics) RecordDecode(duration time.Duration, err error) {
	if err != nil {
		m.decodeErrors.Add(1)
	} else {
		m.filesDecoded.Add(1)
	}
}

// RecordRepair records a repair result. Only files whose canonical
// re-encoding differs from the bytes read count as repaired.
func (m *Metrics) RecordRepair(changed bool, err error) {
	if err == nil && changed {
		m.filesRepaired.Add(1)
	}
}

// RecordCollect records a collect result.
func (m *Metrics) RecordCollect(duration time.Duration, err error) {
	if err != nil {
		m.collectErrors.Add(1)
	} else {
		m.filesCollected.Add(1)
		m.mu.Lock()
		m.lastFileTime = time.Now()
		m.mu.Unlock()
	}
}

// UpdateQueueDepth updates the queue depth tracking.
func (m *Metrics) UpdateQueueDepth(depth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentQueueDepth = depth
	if depth > m.peakQueueDepth {
		m.peakQueueDepth = depth
	}
}

// Stats returns a snapshot of the current metrics.
func (m *Metrics) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Stats{
		FilesSubmitted:    m.filesSubmitted.Load(),
		FilesDecoded:      m.filesDecoded.Load(),
		FilesRepaired:     m.filesRepaired.Load(),
		FilesCollected:    m.filesCollected.Load(),
		DecodeErrors:      m.decodeErrors.Load(),
		CollectErrors:     m.collectErrors.Load(),
		CurrentQueueDepth: m.currentQueueDepth,
		PeakQueueDepth:    m.peakQueueDepth,
		LastFileTime:      m.lastFileTime,
		StartTime:         m.startTime,
	}
}

// Reset resets all metrics.
func (m *Metrics) Reset() {
	m.filesSubmitted.Store(0)
	m.filesDecoded.Store(0)
	m.filesRepaired.Store(0)
	m.filesCollected.Store(0)
	m.decodeErrors.Store(0)
	m.collectErrors.Store(0)

	m.mu.Lock()
	m.currentQueueDepth = 0
	m.peakQueueDepth = 0
	m.lastFileTime = time.Time{}
	m.startTime = time.Now()
	m.mu.Unlock()
}
