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

// Package asm assembles Atto-8 macro assembly into memory images.
//
// Source text is split at white space into mnemonics. A '#' at the start of a
// line or after white space starts a comment running to the end of the line.
// A line of the form
//
//	@ path/to/file.asm
//
// is replaced by the contents of the named file, relative to the including
// file.
//
// Mnemonics:
//
//	name!		start the definition of macro name
//	!name		expand macro name
//	name:		define global label name
//	:name		push the address of global label name
//	name. .name:	define local label name
//	.name		push the address of local label name
//	xHH		push the byte HH (upper case hex)
//	@HH		emit the raw byte HH
//	@const		require the preceding value to fold to a node
//	@dyn		emit the preceding instruction verbatim
//	@org		move the location counter to the preceding value
//	@error		report an error when expanded
//	pshHH phnHH	explicit immediate pushes
//	addS ... xndS	sized binary operations; a bare mnemonic means size 1
//	ldoO stoO	stack offset loads and stores
//
// See package isa for the instruction set.
//
// Assembly starts by expanding the macro main, or the one given with Entry;
// macros that are never expanded are not checked. Local labels are scoped to
// the macro expansion that defines them, so a macro may be expanded several
// times without its labels colliding. Labels that are defined but never
// referenced are errors.
//
// Everything computable at assembly time is folded into expression nodes and
// simplified by a peephole optimizer before code is laid out. Pushes of
// labels defined further down are sized iteratively until the layout is
// stable.
package asm
