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

package mic

import (
	"io"

	"github.com/pkg/errors"

	"github.com/Bricktech2000/Atto-8-sub000/internal/ngi"
	"github.com/Bricktech2000/Atto-8-sub000/isa"
)

// WriteListing writes a human readable listing of a microcode image to w.
// Entries that trap are listed on a single line; otherwise the steps up to
// the first MicrocodeFault are listed for each carry value. Entries whose
// two carry tables are identical are listed once.
func WriteListing(w io.Writer, rom []uint16) error {
	if len(rom) != isa.MicSize {
		return errors.Errorf("microcode image has %d words, want %d", len(rom), isa.MicSize)
	}
	ew := ngi.NewErrWriter(w)
	for index := 0; index < isa.OpCount; index++ {
		name := "???"
		if ins, ok := isa.Decode(opcodeOf(index)); ok {
			name = ins.String()
		}
		if first := Unpack(rom[Addr(false, index, 0)]); first.IsTrap() && first != MicrocodeFault {
			ew.Printf("%02X %s\t%v\n", index, name, first)
			continue
		}
		tables := 2
		if sameTables(rom, index) {
			tables = 1
		}
		for carry := 0; carry < tables; carry++ {
			ew.Printf("%02X %s", index, name)
			if tables == 2 {
				ew.Printf(" carry=%d", carry)
			}
			ew.Line()
			for step := 0; step < isa.StepCount; step++ {
				cw := Unpack(rom[Addr(carry == 1, index, step)])
				if cw == MicrocodeFault {
					break
				}
				ew.Printf("\t%02d\t%04X\t%v\n", step, uint16(cw), cw)
			}
		}
		if ew.Err != nil {
			return ew.Err
		}
	}
	return ew.Err
}

func sameTables(rom []uint16, index int) bool {
	for step := 0; step < isa.StepCount; step++ {
		if rom[Addr(false, index, step)] != rom[Addr(true, index, step)] {
			return false
		}
	}
	return true
}
