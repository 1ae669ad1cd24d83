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

package asm_test

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bricktech2000/Atto-8-sub000/asm"
	"github.com/Bricktech2000/Atto-8-sub000/isa"
)

func assemble(src string, opts ...asm.Option) ([]byte, error) {
	return asm.Assemble("test.asm", strings.NewReader(src), opts...)
}

func requireErrors(t *testing.T, err error, msgs ...string) asm.ErrAsm {
	t.Helper()
	require.Error(t, err)
	errs, ok := err.(asm.ErrAsm)
	require.True(t, ok, "%T is not asm.ErrAsm", err)
	for _, msg := range msgs {
		found := false
		for _, e := range errs {
			if strings.Contains(e.Msg, msg) {
				found = true
				break
			}
		}
		assert.True(t, found, "no error containing %q in\n%v", msg, err)
	}
	return errs
}

func TestAssemble(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []byte
	}{
		{"fold", "main! x05 x03 add", []byte{0x08}},
		{"identity", "main! x00 add1 hlt", []byte{0x91}},
		{"reuse", "main! x07 x09 pop x07", []byte{0x07, 0xC0}},
		{"hygiene", "main! !foo !foo foo! .lbl: x01 .lbl", []byte{0x01, 0x00, 0x01, 0x02}},
		{"local def suffix", "main! !foo !foo foo! lbl. .lbl sti", []byte{0x00, 0x8B, 0x02, 0x8B}},
		{"raw", "main! @E5 @80", []byte{0xE5, 0x80}},
		{"phn", "main! xF5 phnFE", []byte{0xF5, 0xFE}},
		{"dyn", "main! nop @dyn", []byte{0x90}},
		{"const", "main! x05 x03 add @const", []byte{0x08}},
		{"comments", "# header\nmain! x01 #x02 hlt\nhlt", []byte{0x01, 0x91}},
		{"org", "main! x03 @org hlt", []byte{0x00, 0x00, 0x00, 0x91}},
		{"backward label", "main! top: x00 add :top sti", []byte{0x00, 0x8B}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			img, err := assemble(tc.src)
			require.NoError(t, err)
			require.Len(t, img, isa.MemSize)
			assert.Equal(t, tc.want, img[:len(tc.want)])
			for _, b := range img[len(tc.want):] {
				require.Zero(t, b)
			}
		})
	}
}

func TestAssembleEntry(t *testing.T) {
	img, err := assemble("main! @error boot! hlt", asm.Entry("boot"))
	require.NoError(t, err)
	assert.Equal(t, byte(0x91), img[0])
}

func TestRelaxation(t *testing.T) {
	img, err := assemble("main! :end x90 @org end: hlt")
	require.NoError(t, err)
	// 0x90 takes psh70 neg; the first pass only reserved one byte for it.
	assert.Equal(t, []byte{0x70, 0x83}, img[:2])
	assert.Equal(t, byte(0x91), img[0x90])
	for _, b := range img[2:0x90] {
		require.Zero(t, b)
	}
}

func TestRelaxationKeepsFiller(t *testing.T) {
	// With a one byte push end lands at 0xEF, which needs two bytes; with two
	// it lands at 0xF0, which needs one. No layout is exact, so the grown slot
	// keeps a nop after phnF0.
	img, err := assemble("main! :end sti " + strings.Repeat("hlt ", 0xED) + "end: hlt")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xF0, 0x90, 0x8B}, img[:3])
	assert.Equal(t, byte(0x91), img[0xF0])
	assert.Equal(t, byte(0x00), img[0xF1])
}

func TestForwardReferenceFits(t *testing.T) {
	// end lands at 0x03; its push only needs one byte.
	img, err := assemble("main! :end hlt hlt end: hlt")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x03, 0x91, 0x91, 0x91}, img[:4])
}

func TestAssembleErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msgs []string
	}{
		{"invalid mnemonic", "main! bogus x5 xab", []string{"Invalid mnemonic `bogus`", "Invalid mnemonic `x5`", "Invalid mnemonic `xab`"}},
		{"operands", "main! psh80 add3 phn10", []string{"Invalid immediate", "Invalid size", "Invalid negative immediate"}},
		{"duplicate macro", "main! hlt main! hlt", []string{"Duplicate macro definition"}},
		{"orphan", "hlt main! hlt", []string{"Orphan token `hlt`"}},
		{"cycle", "main! !a a! !b b! !a", []string{"Macro self-reference `!a`"}},
		{"undefined macro", "main! !nope", []string{"Undefined macro `!nope`"}},
		{"no entry", "foo! hlt", []string{"Undefined macro `!main`"}},
		{"error directive", "main! @error", []string{"Error directive encountered"}},
		{"unused label", "main! foo: hlt", []string{"Unused label definition `foo:`"}},
		{"undefined label", "main! :nowhere", []string{"Undefined label `:nowhere`"}},
		{"duplicate label", "main! a: a: :a", []string{"Duplicate label definition `:a`"}},
		{"org unresolved", "main! :later @org later: hlt", []string{"currently unresolved label `:later`"}},
		{"org backward", "main! hlt hlt x01 @org", []string{"moves location counter backward"}},
		{"org unbound", "main! @org", []string{"Origin directive has no node argument"}},
		{"const unbound", "main! hlt @const", []string{"Constant directive argument did not reduce"}},
		{"dyn unbound", "main! @dyn", []string{"Dynamic directive has no instruction argument"}},
		{"too large", "main! " + strings.Repeat("hlt ", isa.MemSize+1), []string{"Program size 0x101 exceeds available memory"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			img, err := assemble(tc.src)
			assert.Nil(t, img)
			requireErrors(t, err, tc.msgs...)
		})
	}
}

func TestErrorsAccumulate(t *testing.T) {
	_, err := assemble("main! bogus !nope psh90")
	errs := requireErrors(t, err, "Invalid mnemonic", "Undefined macro", "Invalid immediate")
	assert.Len(t, errs, 3)
	assert.Equal(t, asm.Pos{File: "test.asm", Index: 1}, errs[0].Pos)
	assert.Equal(t, "Error: test.asm:1: Invalid mnemonic `bogus`", errs[0].Error())
	assert.Equal(t, 3, strings.Count(err.Error(), "Error: "))
}

func TestInclude(t *testing.T) {
	fsys := fstest.MapFS{
		"lib/std.asm":  {Data: []byte("@ inc.asm\nstd! x05 !inc # trailing\n")},
		"lib/inc.asm":  {Data: []byte("inc! inc\n")},
		"lib/main.asm": {Data: []byte("unused\n")},
	}
	src := "@ lib/std.asm\nmain! !std hlt\n"
	img, err := assemble(src, asm.FS(fsys))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x06, 0x91}, img[:2])

	_, err = assemble("@ missing.asm\nmain! hlt", asm.FS(fsys))
	errs := requireErrors(t, err, "unable to read file")
	assert.Equal(t, asm.Pos{File: "missing.asm", Index: -1}, errs[0].Pos)
}

func TestBuildPush(t *testing.T) {
	for v := 0; v < 0x100; v++ {
		ins := asm.BuildPush(uint8(v))
		var stack []uint8
		for _, i := range ins {
			require.True(t, i.Valid(), "%v", i)
			switch i.Op {
			case isa.OpPsh, isa.OpPhn:
				stack = append(stack, i.Arg)
			case isa.OpInc:
				stack[len(stack)-1]++
			case isa.OpNeg:
				stack[len(stack)-1] = -stack[len(stack)-1]
			default:
				t.Fatalf("unexpected instruction %v pushing %02X", i, v)
			}
		}
		require.Equal(t, []uint8{uint8(v)}, stack, "pushing %02X", v)
		if v <= 0x7F || v >= 0xF0 {
			assert.Len(t, ins, 1, "pushing %02X", v)
		} else {
			assert.Len(t, ins, 2, "pushing %02X", v)
		}
	}
}
