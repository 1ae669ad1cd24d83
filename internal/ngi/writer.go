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

// Package ngi holds helpers shared by the Atto-8 listing writers.
package ngi

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// ErrWriter tracks the first io error of a sequence of writes. Once a write
// fails, every later call returns that error without touching the underlying
// writer, so listing code can check Err once at the end.
type ErrWriter struct {
	dst io.Writer
	Err error
}

// NewErrWriter wraps w. If w already is an *ErrWriter it is returned as is.
func NewErrWriter(w io.Writer) *ErrWriter {
	if ew, ok := w.(*ErrWriter); ok {
		return ew
	}
	return &ErrWriter{dst: w}
}

func (w *ErrWriter) Write(p []byte) (int, error) {
	if w.Err != nil {
		return 0, w.Err
	}
	n, err := w.dst.Write(p)
	w.Err = errors.Wrap(err, "write failed")
	return n, w.Err
}

// Printf formats to the underlying writer unless an earlier write failed.
func (w *ErrWriter) Printf(format string, args ...interface{}) {
	if w.Err == nil {
		fmt.Fprintf(w, format, args...)
	}
}

// Line ends the current line.
func (w *ErrWriter) Line() {
	w.Write([]byte{'\n'})
}
