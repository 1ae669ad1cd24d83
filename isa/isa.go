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

package isa

import (
	"fmt"
	"math/bits"
)

// Machine constants.
const (
	MemSize   = 0x100 // bytes of addressable memory
	OpCount   = 0x80  // microcode entries per carry value
	StepCount = 0x20  // microcode steps per (opcode, carry) pair
	MicSize   = OpCount * 2 * StepCount
)

// Op is the kind of an Instruction.
type Op uint8

// Atto-8 instruction kinds.
const (
	OpPsh Op = iota
	OpPhn
	OpAdd
	OpSub
	OpRot
	OpOrr
	OpAnd
	OpXor
	OpXnd
	OpInc
	OpDec
	OpNeg
	OpShl
	OpShr
	OpNot
	OpBuf
	OpLda
	OpSta
	OpLdi
	OpSti
	OpLds
	OpSts
	OpSwp
	OpPop
	OpNop
	OpHlt
	OpDbg
	OpLdo
	OpSto
	opCount
)

var opNames = [...]string{
	"psh", "phn",
	"add", "sub", "rot", "orr", "and", "xor", "xnd",
	"inc", "dec", "neg", "shl", "shr", "not", "buf",
	"lda", "sta", "ldi", "sti", "lds", "sts",
	"swp", "pop", "nop", "hlt", "dbg",
	"ldo", "sto",
}

// Mnemonic returns the textual name of op.
func (op Op) Mnemonic() string {
	if op >= opCount {
		return "???"
	}
	return opNames[op]
}

// IsBinary reports whether op is a sized binary operation.
func (op Op) IsBinary() bool { return op >= OpAdd && op <= OpXnd }

// IsUnary reports whether op rewrites the top of the stack in place.
func (op Op) IsUnary() bool { return op >= OpInc && op <= OpBuf }

// Instruction is a fully resolved machine operation. Arg holds the immediate
// for Psh and Phn, the operand size for binary operations and the stack
// offset for Ldo and Sto. It is zero for every other instruction.
type Instruction struct {
	Op  Op
	Arg uint8
}

// New returns the instruction op with argument arg.
func New(op Op, arg uint8) Instruction { return Instruction{op, arg} }

// Plain returns the argument-less instruction op.
func Plain(op Op) Instruction { return Instruction{Op: op} }

func (i Instruction) String() string {
	switch {
	case i.Op == OpPsh || i.Op == OpPhn:
		return fmt.Sprintf("%s%02X", i.Op.Mnemonic(), i.Arg)
	case i.Op.IsBinary():
		return fmt.Sprintf("%s%X", i.Op.Mnemonic(), i.Arg)
	case i.Op == OpLdo || i.Op == OpSto:
		return fmt.Sprintf("%s%X", i.Op.Mnemonic(), i.Arg)
	}
	return i.Op.Mnemonic()
}

// Valid reports whether the instruction's argument is in range for its kind.
func (i Instruction) Valid() bool {
	switch {
	case i.Op >= opCount:
		return false
	case i.Op == OpPsh:
		return i.Arg <= 0x7F
	case i.Op == OpPhn:
		return i.Arg >= 0xF0
	case i.Op.IsBinary():
		return ValidSize(i.Arg)
	case i.Op == OpLdo || i.Op == OpSto:
		return i.Arg <= 0x0F
	}
	return i.Arg == 0
}

// ValidSize reports whether size is an encodable operand size.
func ValidSize(size uint8) bool {
	return size == 1 || size == 2 || size == 4 || size == 8
}

const (
	miscBase   = 0x81
	binaryBase = 0xA0
	ldoBase    = 0xC0
	stoBase    = 0xD0
	phnBase    = 0xF0
)

// Encode returns the opcode byte for i. It panics on an invalid instruction.
func Encode(i Instruction) byte {
	if !i.Valid() {
		panic(fmt.Sprintf("isa: cannot encode invalid instruction %v (%d, %d)", i, i.Op, i.Arg))
	}
	switch {
	case i.Op == OpPsh:
		return i.Arg
	case i.Op == OpPhn:
		return i.Arg
	case i.Op.IsBinary():
		return binaryBase | byte(i.Op-OpAdd)<<2 | byte(bits.TrailingZeros8(i.Arg))
	case i.Op == OpLdo:
		return ldoBase | i.Arg
	case i.Op == OpSto:
		return stoBase | i.Arg
	}
	return miscBase + byte(i.Op-OpInc)
}

// Decode returns the instruction encoded by b. The boolean result is false
// for bytes that do not encode any instruction; such bytes are carried through
// the toolchain verbatim.
func Decode(b byte) (Instruction, bool) {
	switch {
	case b&0x80 == 0:
		return New(OpPsh, b), true
	case b >= phnBase:
		return New(OpPhn, b), true
	case b&0xF0 == stoBase:
		return New(OpSto, b&0x0F), true
	case b&0xF0 == ldoBase:
		return New(OpLdo, b&0x0F), true
	case b&0xE0 == binaryBase:
		op := (b >> 2) & 0x07
		if op > byte(OpXnd-OpAdd) {
			return Instruction{}, false
		}
		return New(OpAdd+Op(op), 1<<(b&0x03)), true
	case b >= miscBase && b <= miscBase+byte(OpDbg-OpInc):
		return Plain(OpInc + Op(b-miscBase)), true
	}
	return Instruction{}, false
}

// MicroIndex returns the microcode entry used to execute opcode b. Every byte
// with the top bit clear shares entry 0.
func MicroIndex(b byte) int {
	if b&0x80 == 0 {
		return 0
	}
	return int(b & 0x7F)
}
