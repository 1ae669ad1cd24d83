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

// Package isa defines the Atto-8 instruction set shared by the assembler and
// the microcode compiler.
//
// Atto-8 is an 8-bit stack machine with 256 bytes of memory. Every
// instruction is a single byte:
//
//	byte		asm	stack	description
//	---------	----	-----	------------------------------------------------
//	0x00-0x7F	pshXX	-n	push the byte itself
//	0x81		inc	n-n	increment top
//	0x82		dec	n-n	decrement top
//	0x83		neg	n-n	two's complement negate top
//	0x84		shl	n-n	shift top left by one
//	0x85		shr	n-n	logical shift top right by one
//	0x86		not	n-n	complement top
//	0x87		buf	n-n	no-op buffer
//	0x88		lda	a-n	load the byte at address a
//	0x89		sta	av-	store v at address a
//	0x8A		ldi	-n	push the instruction pointer
//	0x8B		sti	a-	jump to a
//	0x8C		lds	-n	push the stack pointer
//	0x8D		sts	a-	set the stack pointer
//	0x8E		swp	xy-yx	swap the top two bytes
//	0x8F		pop	n-	drop top
//	0x90		nop		no-op
//	0x91		hlt		halt (re-executes itself)
//	0x92		dbg		debug request
//	0b101OOOSS	opS	a-	pop a; b = b OP a where b sits S-1 below the new top
//	0xC0-0xCF	ldoO	-n	push the byte at offset O
//	0xD0-0xDF	stoO	n-	pop and store at offset O of the new top
//	0xF0-0xFF	phnXX	-n	push the byte itself (short negative push)
//
// Binary operations OOO are add, sub, rot, orr, and, xor and xnd; SS is the
// base 2 logarithm of the operand size S. Every other byte is unassigned and
// decodes to nothing.
package isa
