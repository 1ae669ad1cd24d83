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
	"github.com/Bricktech2000/Atto-8-sub000/isa"
)

// Machine is the register state of the shared bus microarchitecture.
type Machine struct {
	IP, SP, AL, IL uint8
	XL, YL, ZL     uint8
	CF             bool
	Mem            [isa.MemSize]byte
}

// Trap is returned when execution reaches a tick trap.
type Trap struct {
	Word ControlWord
}

func (t *Trap) Error() string { return "tick trap: " + t.Word.String() }

// Tick executes one control word and reports whether it fetched the next
// instruction. Words driving the bus more than once raise BusContention.
func (m *Machine) Tick(w ControlWord) (fetched bool, err error) {
	if w.IsTrap() {
		return false, &Trap{w}
	}
	if w.Drivers() > 1 {
		return false, &Trap{BusContention}
	}
	sum := uint16(m.XL) + uint16(m.YL)
	if w.Has(Cin) {
		sum++
	}
	var bus uint8
	switch {
	case w.Has(SumData):
		bus = uint8(sum)
	case w.Has(NandData):
		bus = ^(m.XL & m.YL)
	case w.Has(ZLData):
		bus = m.ZL
	case w.Has(IPData):
		bus = m.IP
	case w.Has(SPData):
		bus = m.SP
	case w.Has(MemData):
		bus = m.Mem[m.AL]
	}
	if w.Has(DataMem) {
		m.Mem[m.AL] = bus
	}
	latch := func(s Signal, r *uint8) {
		if w.Has(s) {
			*r = bus
		}
	}
	latch(DataXL, &m.XL)
	latch(DataYL, &m.YL)
	latch(DataZL, &m.ZL)
	latch(DataIP, &m.IP)
	latch(DataSP, &m.SP)
	latch(DataAL, &m.AL)
	if w.Has(Cout) {
		m.CF = sum > 0xFF
	}
	if w.Has(DataIL) {
		m.IL = bus
		m.IP++
		return true, nil
	}
	return false, nil
}

// Exec runs the microcode of the latched instruction from step 0 up to and
// including the fetch of the next one. It returns the number of steps taken.
func (m *Machine) Exec(rom []uint16) (int, error) {
	index := isa.MicroIndex(m.IL)
	for step := 0; step < isa.StepCount; step++ {
		fetched, err := m.Tick(Unpack(rom[Addr(m.CF, index, step)]))
		if err != nil {
			return step + 1, err
		}
		if fetched {
			return step + 1, nil
		}
	}
	return isa.StepCount, &Trap{MicrocodeFault}
}

// Reset puts m in the state of having just fetched the opcode at pc.
func (m *Machine) Reset(pc uint8) {
	m.AL = pc
	m.IL = m.Mem[pc]
	m.IP = pc + 1
	m.YL = 0
	m.CF = false
}
