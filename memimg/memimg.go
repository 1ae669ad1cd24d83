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

package memimg

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Save creates fileName and fills it with write. The file is removed if
// anything fails.
func Save(fileName string, write func(w io.Writer) error) (err error) {
	f, err := os.Create(fileName)
	if err != nil {
		return errors.Wrap(err, "create failed")
	}
	w := bufio.NewWriter(f)
	defer func() {
		if ferr := w.Flush(); err == nil && ferr != nil {
			err = errors.Wrap(ferr, "flush failed")
		}
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "close failed")
		}
		// delete file on error
		if err != nil {
			os.Remove(fileName)
		}
	}()
	return errors.Wrap(write(w), "save failed")
}

// SaveBytes writes a memory image, one byte per memory cell.
func SaveBytes(fileName string, img []byte) error {
	return Save(fileName, func(w io.Writer) error {
		_, err := w.Write(img)
		return errors.Wrap(err, "write failed")
	})
}

// SaveWords writes a microcode image as little endian 16 bit words.
func SaveWords(fileName string, rom []uint16) error {
	return Save(fileName, func(w io.Writer) error {
		var b [2]byte
		for _, v := range rom {
			binary.LittleEndian.PutUint16(b[:], v)
			if _, err := w.Write(b[:]); err != nil {
				return errors.Wrap(err, "write failed")
			}
		}
		return nil
	})
}

func open(fileName string, wantSize int64) (*os.File, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "open failed")
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "fstat failed")
	}
	if st.Size() != wantSize {
		f.Close()
		return nil, errors.Errorf("%v: image is %d bytes, expected %d", fileName, st.Size(), wantSize)
	}
	return f, nil
}

// LoadBytes reads a memory image of exactly size bytes.
func LoadBytes(fileName string, size int) ([]byte, error) {
	f, err := open(fileName, int64(size))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img := make([]byte, size)
	if _, err = io.ReadFull(bufio.NewReader(f), img); err != nil {
		return nil, errors.Wrap(err, "load failed")
	}
	return img, nil
}

// LoadWords reads a microcode image of exactly words little endian words.
func LoadWords(fileName string, words int) ([]uint16, error) {
	f, err := open(fileName, int64(words)*2)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rom := make([]uint16, words)
	if err = binary.Read(bufio.NewReader(f), binary.LittleEndian, rom); err != nil {
		return nil, errors.Wrap(err, "load failed")
	}
	return rom, nil
}
