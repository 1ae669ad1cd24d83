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

type macro struct {
	name string
	pos  int
	body []Token
}

// collectMacros records the body of every macro definition. Duplicate
// definitions are reported and dropped, as are tokens preceding the first
// definition.
func (a *assembler) collectMacros(toks []Token) map[string]*macro {
	macros := make(map[string]*macro)
	var cur *macro
	for _, tok := range toks {
		switch {
		case tok.Kind == TokMacroDef:
			cur = &macro{name: tok.Macro, pos: tok.Pos}
			if _, dup := macros[tok.Macro]; dup {
				a.errorf(tok.Pos, "Duplicate macro definition `%v`", tok)
				continue
			}
			macros[tok.Macro] = cur
		case cur == nil:
			a.errorf(tok.Pos, "Orphan token `%v` outside of macro", tok)
		default:
			cur.body = append(cur.body, tok)
		}
	}
	return macros
}

type expander struct {
	a       *assembler
	macros  map[string]*macro
	parents []string
	scope   int
}

// expand unfolds macro references depth first, starting with a reference to
// entry. Every expanded body gets a fresh scope stamped onto its local labels.
func (a *assembler) expand(toks []Token, entry string) []Token {
	e := &expander{a: a, macros: a.collectMacros(toks)}
	out := e.unfold(Token{Kind: TokMacroRef, Macro: entry}, nil)
	a.checkLabels(out)
	return out
}

func (e *expander) unfold(ref Token, out []Token) []Token {
	for _, p := range e.parents {
		if p == ref.Macro {
			e.a.errorf(ref.Pos, "Macro self-reference `%v`", ref)
			return out
		}
	}
	m, ok := e.macros[ref.Macro]
	if !ok {
		e.a.errorf(ref.Pos, "Undefined macro `%v`", ref)
		return out
	}
	e.scope++
	scope := e.scope
	e.parents = append(e.parents, ref.Macro)
	for _, tok := range m.body {
		switch tok.Kind {
		case TokMacroRef:
			out = e.unfold(tok, out)
			continue
		case TokError:
			e.a.errorf(tok.Pos, "Error directive encountered")
			continue
		case TokLabelDef, TokLabelRef:
			if tok.Label.Local && tok.Label.Scope == 0 {
				tok.Label.Scope = scope
			}
		}
		out = append(out, tok)
	}
	e.parents = e.parents[:len(e.parents)-1]
	return out
}

// checkLabels reports labels that are defined but never referenced.
func (a *assembler) checkLabels(toks []Token) {
	used := make(map[Label]bool)
	for _, tok := range toks {
		if tok.Kind == TokLabelRef {
			used[tok.Label] = true
		}
	}
	for _, tok := range toks {
		if tok.Kind == TokLabelDef && !used[tok.Label] {
			a.errorf(tok.Pos, "Unused label definition `%v`", tok)
		}
	}
}
