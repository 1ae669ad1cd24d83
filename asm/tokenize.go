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
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/Bricktech2000/Atto-8-sub000/isa"
)

// preprocess strips comments from src and replaces every "@ path" include
// line with the preprocessed contents of path, relative to dir. Includes are
// not checked for cycles.
func (a *assembler) preprocess(src, dir string) string {
	var sb strings.Builder
	for _, line := range strings.Split(src, "\n") {
		line = stripComment(line)
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "@ ") {
			a.include(filepath.Join(dir, strings.TrimSpace(trimmed[2:])), &sb)
			continue
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (a *assembler) include(path string, sb *strings.Builder) {
	b, err := a.readFile(path)
	if err != nil {
		a.errs.add(Pos{path, -1}, "%v", errors.Wrap(err, "unable to read file"))
		return
	}
	sb.WriteString(a.preprocess(string(b), filepath.Dir(path)))
}

// stripComment truncates line at the first '#' that starts the line or
// follows white space.
func stripComment(line string) string {
	for i, r := range line {
		if r == '#' && (i == 0 || unicode.IsSpace(rune(line[i-1]))) {
			return line[:i]
		}
	}
	return line
}

// mnemonize splits preprocessed source into mnemonics. A mnemonic's position
// is its index in the returned slice.
func mnemonize(src string) []string {
	return strings.Fields(src)
}

// tokenize maps every mnemonic to a Token. Invalid mnemonics are reported and
// replaced by nop so that positions stay aligned.
func (a *assembler) tokenize(mnemonics []string) []Token {
	toks := make([]Token, len(mnemonics))
	for i, mn := range mnemonics {
		tok, ok := parseToken(mn)
		if !ok {
			a.errorf(i, "Invalid mnemonic `%s`", mn)
			tok = Token{Kind: TokInstruction, Ins: isa.Plain(isa.OpNop)}
		}
		tok.Pos = i
		toks[i] = tok
	}
	return toks
}

var keywords = map[string]isa.Instruction{
	"add": isa.New(isa.OpAdd, 1),
	"sub": isa.New(isa.OpSub, 1),
	"rot": isa.New(isa.OpRot, 1),
	"orr": isa.New(isa.OpOrr, 1),
	"and": isa.New(isa.OpAnd, 1),
	"xor": isa.New(isa.OpXor, 1),
	"xnd": isa.New(isa.OpXnd, 1),
	"inc": isa.Plain(isa.OpInc),
	"dec": isa.Plain(isa.OpDec),
	"neg": isa.Plain(isa.OpNeg),
	"shl": isa.Plain(isa.OpShl),
	"shr": isa.Plain(isa.OpShr),
	"not": isa.Plain(isa.OpNot),
	"buf": isa.Plain(isa.OpBuf),
	"lda": isa.Plain(isa.OpLda),
	"sta": isa.Plain(isa.OpSta),
	"ldi": isa.Plain(isa.OpLdi),
	"sti": isa.Plain(isa.OpSti),
	"lds": isa.Plain(isa.OpLds),
	"sts": isa.Plain(isa.OpSts),
	"swp": isa.Plain(isa.OpSwp),
	"pop": isa.Plain(isa.OpPop),
	"nop": isa.Plain(isa.OpNop),
	"hlt": isa.Plain(isa.OpHlt),
	"dbg": isa.Plain(isa.OpDbg),
}

var directives = map[string]TokenKind{
	"@const": TokConst,
	"@dyn":   TokDyn,
	"@org":   TokOrg,
	"@error": TokError,
}

// parseHex parses s as an upper case hexadecimal number of exactly n digits.
func parseHex(s string, n int) (uint8, bool) {
	if len(s) != n || strings.ToUpper(s) != s {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0, false
	}
	return uint8(v), true
}

func parseToken(mn string) (Token, bool) {
	if kind, ok := directives[mn]; ok {
		return Token{Kind: kind}, true
	}
	if ins, ok := keywords[mn]; ok {
		return Token{Kind: TokInstruction, Ins: ins}, true
	}
	n := len(mn)
	if n < 2 {
		return Token{}, false
	}
	switch {
	case mn[0] == '@':
		v, ok := parseHex(mn[1:], 2)
		return Token{Kind: TokRaw, Value: v}, ok
	case mn[0] == 'x' && n == 3:
		if v, ok := parseHex(mn[1:], 2); ok {
			return Token{Kind: TokLiteral, Value: v}, true
		}
	case mn[n-1] == '!':
		return Token{Kind: TokMacroDef, Macro: mn[:n-1]}, true
	case mn[0] == '!':
		return Token{Kind: TokMacroRef, Macro: mn[1:]}, true
	case mn[0] == '.' && mn[n-1] == ':':
		if n == 2 {
			return Token{}, false
		}
		return Token{Kind: TokLabelDef, Label: Label{Name: mn[1 : n-1], Local: true}}, true
	case mn[n-1] == ':':
		return Token{Kind: TokLabelDef, Label: Label{Name: mn[:n-1]}}, true
	case mn[0] == ':':
		return Token{Kind: TokLabelRef, Label: Label{Name: mn[1:]}}, true
	case mn[n-1] == '.':
		return Token{Kind: TokLabelDef, Label: Label{Name: mn[:n-1], Local: true}}, true
	case mn[0] == '.':
		return Token{Kind: TokLabelRef, Label: Label{Name: mn[1:], Local: true}}, true
	}
	return parseInstruction(mn)
}

// parseInstruction recognizes the argument-carrying mnemonics: psh and phn
// take two hex digits, sized and offset operations take one.
func parseInstruction(mn string) (Token, bool) {
	if len(mn) < 4 {
		return Token{}, false
	}
	prefix, arg := mn[:3], mn[3:]
	var ins isa.Instruction
	switch prefix {
	case "psh", "phn":
		v, ok := parseHex(arg, 2)
		if !ok {
			return Token{}, false
		}
		op := isa.OpPsh
		if prefix == "phn" {
			op = isa.OpPhn
		}
		ins = isa.New(op, v)
	case "ldo", "sto":
		v, ok := parseHex(arg, 1)
		if !ok {
			return Token{}, false
		}
		op := isa.OpLdo
		if prefix == "sto" {
			op = isa.OpSto
		}
		ins = isa.New(op, v)
	default:
		base, ok := keywords[prefix]
		if !ok || !base.Op.IsBinary() {
			return Token{}, false
		}
		v, ok := parseHex(arg, 1)
		if !ok {
			return Token{}, false
		}
		ins = isa.New(base.Op, v)
	}
	return Token{Kind: TokInstruction, Ins: ins}, true
}
