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

package asm

import (
	"fmt"
	"strings"
)

// Pos locates a diagnostic. Index is the position of the offending mnemonic in
// the preprocessed token stream of File, or -1 when the diagnostic concerns
// the whole file.
type Pos struct {
	File  string
	Index int
}

func (p Pos) String() string {
	if p.Index < 0 {
		return p.File
	}
	return fmt.Sprintf("%s:%d", p.File, p.Index)
}

// Error is a single assembler diagnostic.
type Error struct {
	Pos Pos
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("Error: %v: %s", e.Pos, e.Msg)
}

// ErrAsm is the error returned by Assemble and AssembleFile. It holds every
// diagnostic found during a run, in the order they were found.
type ErrAsm []Error

func (e ErrAsm) Error() string {
	lines := make([]string, len(e))
	for i := range e {
		lines[i] = e[i].Error()
	}
	return strings.Join(lines, "\n")
}

func (e *ErrAsm) add(pos Pos, format string, args ...interface{}) {
	*e = append(*e, Error{pos, fmt.Sprintf(format, args...)})
}
