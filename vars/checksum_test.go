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

package vars_test

import (
	"bytes"
	"testing"

	"github.com/adambyle/ti-tools/vars"
)

func TestComputeChecksum(t *testing.T) {
	testDefs := []struct {
		name     string
		data     []byte
		expected uint16
	}{
		{
			name:     "Empty",
			data:     nil,
			expected: 0x0000,
		},
		{
			name:     "SingleByte",
			data:     []byte{0xFF},
			expected: 0x00FF,
		},
		{
			name:     "SmallPayload",
			data:     []byte{0x01, 0x02, 0x03},
			expected: 0x0006,
		},
		{
			// 257 * 0xFF fills the entire 16-bit range.
			name:     "MaxWithoutWrap",
			data:     bytes.Repeat([]byte{0xFF}, 257),
			expected: 0xFFFF,
		},
		{
			// One more byte wraps the sum around.
			name:     "Wraps",
			data:     bytes.Repeat([]byte{0xFF}, 258),
			expected: 0x00FE,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			sum := vars.ComputeChecksum(testDef.data)
			if sum != testDef.expected {
				t.Errorf(
					"checksum mismatch: got 0x%04x, expected 0x%04x",
					sum,
					testDef.expected,
				)
			}
		})
	}
}
