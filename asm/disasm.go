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

	"github.com/Bricktech2000/Atto-8-sub000/internal/ngi"
	"github.com/Bricktech2000/Atto-8-sub000/isa"
)

// Disassemble writes the mnemonic of the opcode at position pc of img to w
// and returns the position of the next opcode and any write error. Bytes that
// encode no instruction are written as raw byte escapes.
func Disassemble(img []byte, pc int, w io.Writer) (next int, err error) {
	ew := ngi.NewErrWriter(w)
	if ins, ok := isa.Decode(img[pc]); ok {
		io.WriteString(ew, ins.String())
	} else {
		ew.Printf("@%02X", img[pc])
	}
	return pc + 1, ew.Err
}

// DisassembleAll writes a disassembly of every byte of img, one per line,
// prefixed by its address. The base argument is the address of img[0].
func DisassembleAll(img []byte, base int, w io.Writer) error {
	ew := ngi.NewErrWriter(w)
	for pc := 0; pc < len(img); {
		ew.Printf("%02X\t%02X\t", base+pc, img[pc])
		pc, _ = Disassemble(img, pc, ew)
		ew.Line()
		if ew.Err != nil {
			return ew.Err
		}
	}
	return nil
}
