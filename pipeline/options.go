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
	"runtime"

	"github.com/adambyle/ti-tools/vars"
)

// DefaultMaxPendingFiles is the default limit for out-of-order files buffered
// in the collect stage. It bounds memory growth when one slow file holds up a
// long run of finished successors.
const DefaultMaxPendingFiles = 1024

// Config holds configuration for a FilePipeline.
type Config struct {
	// DecodeWorkers is the number of parallel decode workers.
	DecodeWorkers int
	// RepairWorkers is the number of parallel repair workers.
	// Zero disables the repair stage entirely.
	RepairWorkers int
	// QueueSize is the buffer size for inter-stage channels.
	QueueSize int
	// MaxPendingFiles limits out-of-order files buffered in the collect stage.
	MaxPendingFiles int
	// ReadOptions is the tolerance policy handed to the decoder for every file.
	ReadOptions vars.FileReadOptions
	// PayloadDecoder decodes variable regions; nil leaves payloads raw.
	PayloadDecoder vars.PayloadDecoder
	// CollectFunc is the function called with finished files in submission order.
	CollectFunc CollectFunc
	// Metrics collects pipeline counters. A fresh collector is created when nil.
	Metrics *Metrics
}

// DefaultConfig returns a Config with sensible defaults. The repair stage is
// disabled by default; enable it with WithRepair or WithRepairWorkers when
// the caller intends to rewrite malformed files.
func DefaultConfig() Config {
	// Decoding is mostly file I/O; one worker per CPU keeps disks busy
	// without flooding the scheduler.
	decodeWorkers := runtime.NumCPU()
	if decodeWorkers < 2 {
		decodeWorkers = 2
	}

	return Config{
		DecodeWorkers:   decodeWorkers,
		RepairWorkers:   0,
		QueueSize:       256,
		MaxPendingFiles: DefaultMaxPendingFiles,
	}
}

// Option is a functional option for configuring a FilePipeline.
type Option func(*Config)

// WithConfig applies a complete Config, replacing all default values.
// Options applied after WithConfig will still override the config values.
func WithConfig(config Config) Option {
	return func(c *Config) {
		*c = config
	}
}

// WithDecodeWorkers sets the number of decode workers.
func WithDecodeWorkers(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.DecodeWorkers = n
		}
	}
}

// WithRepair enables or disables the repair stage with a single worker.
// Re-encoding is cheap; use WithRepairWorkers to raise parallelism for
// very large batches.
func WithRepair(enabled bool) Option {
	return func(c *Config) {
		if enabled {
			if c.RepairWorkers <= 0 {
				c.RepairWorkers = 1
			}
		} else {
			c.RepairWorkers = 0
		}
	}
}

// WithRepairWorkers sets the number of repair workers.
// Set to 0 to disable the repair stage entirely.
func WithRepairWorkers(n int) Option {
	return func(c *Config) {
		if n >= 0 {
			c.RepairWorkers = n
		}
	}
}

// WithQueueSize sets the buffer size for inter-stage channels.
func WithQueueSize(size int) Option {
	return func(c *Config) {
		if size > 0 {
			c.QueueSize = size
		}
	}
}

// WithMaxPendingFiles sets the limit for out-of-order files in the collect
// stage. This prevents unbounded memory growth.
func WithMaxPendingFiles(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxPendingFiles = n
		}
	}
}

// WithReadOptions sets the tolerance policy used when decoding every
// submitted file. The zero value checks everything strictly.
func WithReadOptions(opts vars.FileReadOptions) Option {
	return func(c *Config) {
		c.ReadOptions = opts
	}
}

// WithPayloadDecoder sets the payload decoder handed to the container
// decoder. A nil decoder is ignored (payloads stay raw).
func WithPayloadDecoder(decoder vars.PayloadDecoder) Option {
	return func(c *Config) {
		if decoder != nil {
			c.PayloadDecoder = decoder
		}
	}
}

// WithCollectFunc sets the collect function.
// A nil function is ignored (the pipeline will order results without a sink).
func WithCollectFunc(fn CollectFunc) Option {
	return func(c *Config) {
		if fn != nil {
			c.CollectFunc = fn
		}
	}
}

// WithMetrics sets an external metrics collector, letting callers aggregate
// counters across several pipelines.
func WithMetrics(metrics *Metrics) Option {
	return func(c *Config) {
		if metrics != nil {
			c.Metrics = metrics
		}
	}
}
