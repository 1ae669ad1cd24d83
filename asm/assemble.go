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
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Bricktech2000/Atto-8-sub000/isa"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// SetLogger replaces the logger used for debug output. The assembler never
// logs above Debug level.
func SetLogger(l logrus.FieldLogger) {
	logger = l
}

// DefaultEntry is the macro expanded by default.
const DefaultEntry = "main"

type assembler struct {
	name     string
	entry    string
	readFile func(string) ([]byte, error)
	errs     ErrAsm
}

// Option configures an assembler run.
type Option func(*assembler)

// Entry sets the name of the macro expansion starts from.
func Entry(name string) Option {
	return func(a *assembler) { a.entry = name }
}

// FS makes include directives read from fsys instead of the host file system.
func FS(fsys fs.FS) Option {
	return func(a *assembler) {
		a.readFile = func(path string) ([]byte, error) {
			return fs.ReadFile(fsys, filepath.ToSlash(filepath.Clean(path)))
		}
	}
}

func newAssembler(name string, opts []Option) *assembler {
	a := &assembler{name: name, entry: DefaultEntry, readFile: os.ReadFile}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *assembler) errorf(pos int, format string, args ...interface{}) {
	a.errs.add(Pos{a.name, pos}, format, args...)
}

// Assemble compiles the assembly read from r into a memory image of exactly
// isa.MemSize bytes. The name is used in error positions and as the base for
// relative include paths.
//
// The returned error, if not nil, is an ErrAsm value listing every problem
// found. No image is returned in that case.
func Assemble(name string, r io.Reader, opts ...Option) ([]byte, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: read failed", name)
	}
	a := newAssembler(name, opts)
	text := a.preprocess(string(src), filepath.Dir(name))
	return a.run(a.tokenize(mnemonize(text)))
}

// AssembleFile reads and compiles the file at path.
func AssembleFile(path string, opts ...Option) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open failed")
	}
	defer f.Close()
	return Assemble(path, f, opts...)
}

func (a *assembler) run(toks []Token) ([]byte, error) {
	roots := a.lower(a.expand(toks, a.entry))
	roots = optimize(roots)
	img := a.codegen(a.layout(roots))
	if len(a.errs) > 0 {
		return nil, a.errs
	}
	return img, nil
}

// Cell is one resolved memory cell: an instruction, or a raw byte when Raw is
// set.
type Cell struct {
	Ins  isa.Instruction
	Raw  bool
	Byte byte
}

type pending struct {
	root Root
	at   int
	size int
}

// layout resolves labels and lays out roots. Nodes referencing labels defined
// further down get a placeholder whose size is grown, restarting the whole
// walk, until every node fits.
func (a *assembler) layout(roots []Root) []Cell {
	sizes := make(map[string]int)
	for pass := 1; ; pass++ {
		labels := make(map[Label]uint8)
		var cells []Cell
		var unresolved []pending
		emit := func(ins ...isa.Instruction) {
			for _, i := range ins {
				cells = append(cells, Cell{Ins: i})
			}
		}
		for _, r := range roots {
			switch r.Kind {
			case RootInstruction:
				emit(r.Ins)
			case RootDyn:
				if !r.Bound {
					a.errorf(r.Pos, "Dynamic directive has no instruction argument")
					continue
				}
				emit(r.Ins)
			case RootLabelDef:
				if _, dup := labels[r.Label]; dup {
					a.errorf(r.Pos, "Duplicate label definition `%v`", r.Label)
					continue
				}
				labels[r.Label] = uint8(len(cells))
			case RootNode:
				if v, _, ok := r.Node.Resolve(labels); ok {
					emit(BuildPush(v)...)
					continue
				}
				size, ok := sizes[r.Node.key()]
				if !ok {
					size = 1
				}
				unresolved = append(unresolved, pending{r, len(cells), size})
				for i := 0; i < size; i++ {
					emit(isa.Plain(isa.OpNop))
				}
			case RootOpcode:
				cells = append(cells, Cell{Raw: true, Byte: r.Byte})
			case RootConst:
				a.errorf(r.Pos, "Constant directive argument did not reduce to a node")
			case RootOrg:
				if !r.Bound {
					a.errorf(r.Pos, "Origin directive has no node argument")
					continue
				}
				v, missing, ok := r.Node.Resolve(labels)
				if !ok {
					a.errorf(r.Pos, "Origin argument references currently unresolved label `%v`", missing)
					continue
				}
				if int(v) < len(cells) {
					a.errorf(r.Pos, "Origin 0x%02X moves location counter backward from 0x%02X", v, len(cells))
					continue
				}
				for len(cells) < int(v) {
					cells = append(cells, Cell{Raw: true})
				}
			}
		}

		grown := 0
		for _, p := range unresolved {
			v, missing, ok := p.root.Node.Resolve(labels)
			if !ok {
				a.errorf(p.root.Pos, "Undefined label `%v`", missing)
				v = 0
			}
			ins := BuildPush(v)
			if len(ins) > p.size {
				sizes[p.root.Node.key()] = len(ins)
				grown++
				continue
			}
			for i, in := range ins {
				cells[p.at+i] = Cell{Ins: in}
			}
		}
		if len(a.errs) > 0 || grown == 0 {
			logger.WithFields(logrus.Fields{"passes": pass, "cells": len(cells)}).Debug("layout done")
			return cells
		}
		logger.WithFields(logrus.Fields{"pass": pass, "grown": grown}).Debug("layout restarted")
	}
}

// BuildPush returns the shortest instruction sequence pushing v.
func BuildPush(v uint8) []isa.Instruction {
	switch {
	case v >= 0xF0:
		return []isa.Instruction{isa.New(isa.OpPhn, v)}
	case v == 0x80:
		return []isa.Instruction{isa.New(isa.OpPsh, 0x7F), isa.Plain(isa.OpInc)}
	case v <= 0x7F:
		return []isa.Instruction{isa.New(isa.OpPsh, v)}
	}
	return []isa.Instruction{isa.New(isa.OpPsh, -v), isa.Plain(isa.OpNeg)}
}

// codegen encodes cells into a memory image padded with zeros.
func (a *assembler) codegen(cells []Cell) []byte {
	if len(cells) > isa.MemSize {
		a.errs.add(Pos{a.name, -1}, "Program size 0x%02X exceeds available memory of 0x%02X", len(cells), isa.MemSize)
		return nil
	}
	img := make([]byte, isa.MemSize)
	for i, c := range cells {
		if c.Raw {
			img[i] = c.Byte
			continue
		}
		img[i] = isa.Encode(c.Ins)
	}
	return img
}
