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

	"github.com/Bricktech2000/Atto-8-sub000/isa"
)

// RootKind is the kind of an IR item.
type RootKind uint8

// IR item kinds.
const (
	RootInstruction RootKind = iota
	RootLabelDef
	RootNode
	RootOpcode
	RootConst
	RootDyn
	RootOrg
)

// Root is an item of the optimizer's intermediate representation. Dyn and
// Org roots carry their argument once Bound is set: Dyn binds Ins, Org binds
// Node.
type Root struct {
	Kind  RootKind
	Pos   int
	Ins   isa.Instruction
	Label Label
	Node  *Node
	Byte  uint8
	Bound bool
}

func insRoot(pos int, i isa.Instruction) Root { return Root{Kind: RootInstruction, Pos: pos, Ins: i} }
func nodeRoot(pos int, n *Node) Root { return Root{Kind: RootNode, Pos: pos, Node: n} }

func (r Root) is(op isa.Op) bool { return r.Kind == RootInstruction && r.Ins.Op == op }

func (r Root) isIns(i isa.Instruction) bool { return r.Kind == RootInstruction && r.Ins == i }

// nodeValue returns the constant value of a Node root.
func (r Root) nodeValue() (uint8, bool) {
	if r.Kind != RootNode {
		return 0, false
	}
	return r.Node.constant()
}

func (r Root) equal(o Root) bool {
	if r.Kind != o.Kind || r.Ins != o.Ins || r.Label != o.Label || r.Byte != o.Byte || r.Bound != o.Bound {
		return false
	}
	return r.Node.Equal(o.Node)
}

func (r Root) String() string {
	switch r.Kind {
	case RootInstruction:
		return r.Ins.String()
	case RootLabelDef:
		return r.Label.String() + ":"
	case RootNode:
		return r.Node.String()
	case RootOpcode:
		return fmt.Sprintf("@%02X", r.Byte)
	case RootConst:
		return "@const"
	case RootDyn:
		if r.Bound {
			return fmt.Sprintf("@dyn(%v)", r.Ins)
		}
		return "@dyn"
	case RootOrg:
		if r.Bound {
			return fmt.Sprintf("@org(%v)", r.Node)
		}
		return "@org"
	}
	return "???"
}

func rootsEqual(a, b []Root) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].equal(b[i]) {
			return false
		}
	}
	return true
}

// lower maps every expanded token to exactly one Root. Out of range operands
// are reported and replaced with a valid default.
func (a *assembler) lower(toks []Token) []Root {
	roots := make([]Root, 0, len(toks))
	for _, tok := range toks {
		r := Root{Pos: tok.Pos}
		switch tok.Kind {
		case TokLabelDef:
			r.Kind, r.Label = RootLabelDef, scoped(tok.Label)
		case TokLabelRef:
			r.Kind, r.Node = RootNode, LabelRef(scoped(tok.Label))
		case TokLiteral:
			r.Kind, r.Node = RootNode, Value(tok.Value)
		case TokRaw:
			r.Kind, r.Byte = RootOpcode, tok.Value
		case TokConst:
			r.Kind = RootConst
		case TokDyn:
			r.Kind = RootDyn
		case TokOrg:
			r.Kind = RootOrg
		case TokInstruction:
			r.Kind, r.Ins = RootInstruction, a.checkOperand(tok)
		default:
			panic(fmt.Sprintf("asm: token `%v` reached lowering", tok))
		}
		roots = append(roots, r)
	}
	return roots
}

func scoped(l Label) Label {
	if l.Local && l.Scope == 0 {
		panic(fmt.Sprintf("asm: local label `%v` has no scope", l))
	}
	return l
}

func (a *assembler) checkOperand(tok Token) isa.Instruction {
	i := tok.Ins
	switch {
	case i.Op == isa.OpPsh:
		i.Arg = a.assertImm(tok.Pos, i.Arg)
	case i.Op == isa.OpPhn:
		i.Arg = a.assertNimm(tok.Pos, i.Arg)
	case i.Op.IsBinary():
		i.Arg = a.assertSize(tok.Pos, i.Arg)
	case i.Op == isa.OpLdo || i.Op == isa.OpSto:
		i.Arg = a.assertOfst(tok.Pos, i.Arg)
	}
	return i
}

func (a *assembler) assertImm(pos int, v uint8) uint8 {
	if v > 0x7F {
		a.errorf(pos, "Invalid immediate 0x%02X", v)
		return 0
	}
	return v
}

func (a *assembler) assertNimm(pos int, v uint8) uint8 {
	if v&0xF0 != 0xF0 {
		a.errorf(pos, "Invalid negative immediate 0x%02X", v)
		return 0xF0
	}
	return v
}

func (a *assembler) assertSize(pos int, v uint8) uint8 {
	if !isa.ValidSize(v) {
		a.errorf(pos, "Invalid size 0x%X", v)
		return 1
	}
	return v
}

func (a *assembler) assertOfst(pos int, v uint8) uint8 {
	if v > 0x0F {
		a.errorf(pos, "Invalid offset 0x%X", v)
		return 0
	}
	return v
}
