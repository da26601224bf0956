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

package vars

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

const commentPad = byte(' ')

// Comment is the fixed-size comment region of a file. On disk the region is
// either zero-terminated (bytes after the terminator are unconstrained) or
// padded to the right with space characters filling the full region.
//
// The calculator leaves this region empty and never reads it, so mutating it
// is always safe.
type Comment [CommentSize]byte

// terminatorPosition returns the index of the first null byte, or -1 when the
// region is not zero-terminated.
func (c *Comment) terminatorPosition() int {
	return bytes.IndexByte(c[:], 0)
}

// trailingSpaces returns the number of space characters padding the right end
// of the region.
func (c *Comment) trailingSpaces() int {
	count := 0
	for i := CommentSize - 1; i >= 0; i-- {
		if c[i] != commentPad {
			break
		}
		count++
	}
	return count
}

// Text parses the comment region as a UTF-8 string.
//
// If the region is zero-terminated, the bytes before the terminator are the
// comment and trim has no effect. Otherwise the full region is the comment
// and, when trim is true, trailing space padding is stripped from the result.
//
// Returns [ErrCommentEncoding] when the viewed bytes are not valid UTF-8.
func (c *Comment) Text(trim bool) (string, error) {
	data := c[:]
	if pos := c.terminatorPosition(); pos >= 0 {
		data = c[:pos]
		trim = false
	}
	if !utf8.Valid(data) {
		return "", ErrCommentEncoding
	}
	text := string(data)
	if trim {
		text = strings.TrimRight(text, " ")
	}
	return text, nil
}

// Length returns the size in bytes of the comment itself, ignoring the zero
// terminator or space padding that delimits it.
func (c *Comment) Length() int {
	if pos := c.terminatorPosition(); pos >= 0 {
		return pos
	}
	return CommentSize - c.trailingSpaces()
}

// IsZeroTerminated reports whether the region contains a null byte. A comment
// filling the entire region has no terminator and reports false.
func (c *Comment) IsZeroTerminated() bool {
	return c.terminatorPosition() >= 0
}

// MakeZeroTerminated converts a space-padded region to a zero-terminated one
// by overwriting the first trailing space with a null byte. It does nothing
// when the region is already zero-terminated, or when the comment fills the
// whole region and leaves no room for a terminator.
func (c *Comment) MakeZeroTerminated() {
	if c.IsZeroTerminated() {
		return
	}
	spaces := c.trailingSpaces()
	if spaces == 0 {
		// No room at the end for a terminator.
		return
	}
	c[CommentSize-spaces] = 0
}

// MakePadded converts a zero-terminated region to a space-padded one by
// overwriting the terminator and everything after it with space characters.
// It does nothing when the region is not zero-terminated.
func (c *Comment) MakePadded() {
	pos := c.terminatorPosition()
	if pos < 0 {
		return
	}
	for i := pos; i < CommentSize; i++ {
		c[i] = commentPad
	}
}

// SetText stores up to [CommentSize] bytes of the UTF-8 encoding of text in
// the region, truncating silently if it does not fit. A shorter comment is
// followed by a single null byte when zeroTerminated is true (bytes after it
// are left untouched), or by space padding to the end of the region
// otherwise.
func (c *Comment) SetText(text string, zeroTerminated bool) {
	data := []byte(text)
	for i := 0; i < CommentSize; i++ {
		if i < len(data) {
			c[i] = data[i]
			continue
		}
		if zeroTerminated {
			c[i] = 0
			return
		}
		c[i] = commentPad
	}
}
