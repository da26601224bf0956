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

// Package vars implements the container format used to exchange variable data
// with TI-83/84 series calculators.
//
// A variable file is a fixed-layout binary container: an 11-byte signature
// identifying the data as device-compatible, a 42-byte comment region, a
// 2-byte little-endian length, the variable payload itself, and a trailing
// 2-byte checksum over the payload bytes.
//
// The package decodes and encodes whole containers ([File]), exposes the
// comment region's dual encoding ([Comment]), and validates the cross-field
// invariants that tie the header to the payload. How strictly malformed input
// is treated is configurable per field through [FileReadOptions]: each
// structural check can fail the decode, silently repair the field, or accept
// it as-is.
//
// Payload contents are never interpreted. Concrete variable kinds implement
// the [Payload] interface; the built-in [Raw] payload carries the variable
// region verbatim for callers that only care about the container.
package vars
