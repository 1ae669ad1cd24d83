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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.asm")
	out := filepath.Join(dir, "prog.bin")
	require.NoError(t, os.WriteFile(src, []byte("main! hlt\n"), 0o644))

	config = cliConfig{entry: "main", listing: true}
	var stdout bytes.Buffer
	require.NoError(t, run(src, out, &stdout))
	assert.Equal(t, "Done\n", stdout.String())

	img, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Len(t, img, 0x100)
	assert.Equal(t, byte(0x91), img[0])

	lst, err := os.ReadFile(out + ".lst")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(lst), "00\t91\thlt\n"))
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.asm")
	out := filepath.Join(dir, "bad.bin")
	require.NoError(t, os.WriteFile(src, []byte("main! bogus\n"), 0o644))

	config = cliConfig{entry: "main"}
	var stdout bytes.Buffer
	err := run(src, out, &stdout)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid mnemonic `bogus`")
	assert.Empty(t, stdout.String())
	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestFlags(t *testing.T) {
	config = cliConfig{entry: "main"}
	flags := pflag.NewFlagSet("asm", pflag.ContinueOnError)
	addFlags(flags)
	require.NoError(t, flags.Parse([]string{"--entry", "boot", "--listing", "in.asm", "out.bin"}))
	assert.Equal(t, cliConfig{entry: "boot", listing: true}, config)
	assert.Equal(t, []string{"in.asm", "out.bin"}, flags.Args())
}
