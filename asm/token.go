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

// Label names a code location. Local labels are only visible within the macro
// expansion that defines them; Scope is 0 until macro expansion assigns one.
type Label struct {
	Name  string
	Local bool
	Scope int
}

// String returns the label in reference syntax.
func (l Label) String() string {
	if l.Local {
		return "." + l.Name
	}
	return ":" + l.Name
}

// key also distinguishes the expansion scope.
func (l Label) key() string {
	if l.Local {
		return fmt.Sprintf(".%s/%d", l.Name, l.Scope)
	}
	return ":" + l.Name
}

// TokenKind is the lexical class of a Token.
type TokenKind uint8

// Token kinds.
const (
	TokLabelDef TokenKind = iota
	TokLabelRef
	TokMacroDef
	TokMacroRef
	TokConst    // @const
	TokDyn      // @dyn
	TokOrg      // @org
	TokError    // @error
	TokRaw      // @HH
	TokLiteral  // xHH
	TokInstruction
)

// Token is a lexical unit of assembly source. Instruction arguments are kept
// as written; range checks happen when tokens are lowered.
type Token struct {
	Kind  TokenKind
	Pos   int
	Label Label           // TokLabelDef, TokLabelRef
	Macro string          // TokMacroDef, TokMacroRef
	Value uint8           // TokRaw, TokLiteral
	Ins   isa.Instruction // TokInstruction
}

func (t Token) String() string {
	switch t.Kind {
	case TokLabelDef:
		if t.Label.Local {
			return t.Label.Name + "."
		}
		return t.Label.Name + ":"
	case TokLabelRef:
		return t.Label.String()
	case TokMacroDef:
		return t.Macro + "!"
	case TokMacroRef:
		return "!" + t.Macro
	case TokConst:
		return "@const"
	case TokDyn:
		return "@dyn"
	case TokOrg:
		return "@org"
	case TokError:
		return "@error"
	case TokRaw:
		return fmt.Sprintf("@%02X", t.Value)
	case TokLiteral:
		return fmt.Sprintf("x%02X", t.Value)
	}
	return t.Ins.String()
}
