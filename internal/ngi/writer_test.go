// This file is part of Atto-8 - https://github.com/Bricktech2000/Atto-8
//
// Copyright 2023 The Atto-8 Authors
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

package ngi

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type failAfter struct {
	n   int
	buf bytes.Buffer
}

func (f *failAfter) Write(p []byte) (int, error) {
	if f.n == 0 {
		return 0, errors.New("disk full")
	}
	f.n--
	return f.buf.Write(p)
}

func TestErrWriterSticky(t *testing.T) {
	f := &failAfter{n: 2}
	ew := NewErrWriter(f)
	ew.Printf("%02X", 0x81)
	ew.Line()
	ew.Printf("%02X\n", 0x82)
	ew.Printf("%02X\n", 0x83)
	assert.Equal(t, "81\n", f.buf.String())
	assert.EqualError(t, ew.Err, "write failed: disk full")
	_, err := ew.Write([]byte("x"))
	assert.Equal(t, ew.Err, err)
}

func TestNewErrWriterReuses(t *testing.T) {
	ew := NewErrWriter(&bytes.Buffer{})
	assert.Same(t, ew, NewErrWriter(ew))
}
