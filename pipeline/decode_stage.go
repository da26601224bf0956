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
	"fmt"
	"os"
	"time"

	"github.com/adambyle/ti-tools/vars"
)

// ErrNilStage is returned when a nil stage is passed to a worker pool.
var ErrNilStage = errors.New("pipeline: nil stage")

// DecodeStage reads variable files from disk (when submitted by path) and
// decodes them under the configured read options.
type DecodeStage struct {
	readOptions vars.FileReadOptions
	decoder     vars.PayloadDecoder
}

// NewDecodeStage creates a new DecodeStage. A nil decoder leaves payloads as
// the raw carrier.
func NewDecodeStage(opts vars.FileReadOptions, decoder vars.PayloadDecoder) *DecodeStage {
	return &DecodeStage{
		readOptions: opts,
		decoder:     decoder,
	}
}

// Name returns the stage name.
func (s *DecodeStage) Name() string {
	return "decode"
}

// Process reads and decodes the file in the item. Errors are tagged with the
// item's path since batch callers see many files interleaved.
func (s *DecodeStage) Process(ctx context.Context, item *FileItem) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	start := time.Now()

	data := item.Data()
	if data == nil {
		var err error
		data, err = os.ReadFile(item.Path())
		if err != nil {
			err = fmt.Errorf("%s: %w", item.Path(), err)
			item.SetDecodeError(err, time.Since(start))
			return err
		}
		item.SetData(data)
	}

	file, err := vars.NewFileFromBytesWithPayload(data, s.readOptions, s.decoder)
	duration := time.Since(start)

	if err != nil {
		err = fmt.Errorf("%s: %w", item.Path(), err)
		item.SetDecodeError(err, duration)
		return err
	}

	item.SetFile(file, duration)
	return nil
}
