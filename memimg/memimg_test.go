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

package memimg_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bricktech2000/Atto-8-sub000/memimg"
)

func TestBytes(t *testing.T) {
	name := filepath.Join(t.TempDir(), "mem.bin")
	img := []byte{0x08, 0xC0, 0x91, 0x00}
	require.NoError(t, memimg.SaveBytes(name, img))

	got, err := memimg.LoadBytes(name, len(img))
	require.NoError(t, err)
	assert.Equal(t, img, got)

	_, err = memimg.LoadBytes(name, 0x100)
	assert.Error(t, err)
}

func TestWords(t *testing.T) {
	name := filepath.Join(t.TempDir(), "mic.bin")
	rom := []uint16{0x2040, 0xFFFD, 0x0001}
	require.NoError(t, memimg.SaveWords(name, rom))

	raw, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x40, 0x20, 0xFD, 0xFF, 0x01, 0x00}, raw)

	got, err := memimg.LoadWords(name, len(rom))
	require.NoError(t, err)
	assert.Equal(t, rom, got)
}

func TestSaveFailure(t *testing.T) {
	name := filepath.Join(t.TempDir(), "missing", "mem.bin")
	assert.Error(t, memimg.SaveBytes(name, []byte{1}))
	_, err := os.Stat(name)
	assert.True(t, os.IsNotExist(err))

	_, err = memimg.LoadBytes(name, 1)
	assert.Error(t, err)
}

func TestSaveRemovesOnWriteError(t *testing.T) {
	name := filepath.Join(t.TempDir(), "out.lst")
	err := memimg.Save(name, func(w io.Writer) error {
		io.WriteString(w, "partial")
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	_, err = os.Stat(name)
	assert.True(t, os.IsNotExist(err))
}
