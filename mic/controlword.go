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
	"math/bits"
	"strings"
)

// Signal is one bus enable line of the microarchitecture. Its bit position in
// a ControlWord is part of the microcode image format.
type Signal uint16

// Control signals, least significant bit first.
const (
	Cin      Signal = 1 << iota // carry into the adder
	Cout                        // latch the adder carry out into CF
	SumData                     // drive XL + YL + CIN
	NandData                    // drive ~(XL & YL)
	DataXL
	DataYL
	DataZL
	ZLData
	IPData
	DataIP
	SPData
	DataSP
	DataAL
	MemData // drive the byte at AL
	DataMem // store into the byte at AL
	DataIL  // latch the next opcode, bump IP and restart the step counter
)

var signalNames = [...]string{
	"CIN", "COUT", "SUM_DATA", "NAND_DATA", "DATA_XL", "DATA_YL", "DATA_ZL", "ZL_DATA",
	"IP_DATA", "DATA_IP", "SP_DATA", "DATA_SP", "DATA_AL", "MEM_DATA", "DATA_MEM", "DATA_IL",
}

const drivers = SumData | NandData | ZLData | IPData | SPData | MemData

// ControlWord is the set of signals asserted during one microcode step.
type ControlWord uint16

// Tick trap sentinels. Each asserts several bus drivers at once and so can
// never be a legal control word.
const (
	IllegalOpcode  ControlWord = 0xFFFF
	DebugRequest   ControlWord = 0xFFFE
	MicrocodeFault ControlWord = 0xFFFD
	BusContention  ControlWord = 0xFFFC
)

// Word returns the control word asserting sigs.
func Word(sigs ...Signal) ControlWord {
	var w ControlWord
	for _, s := range sigs {
		w |= ControlWord(s)
	}
	return w
}

// Has reports whether s is asserted in w.
func (w ControlWord) Has(s Signal) bool { return Signal(w)&s != 0 }

// Drivers returns the number of signals driving the data bus.
func (w ControlWord) Drivers() int { return bits.OnesCount16(uint16(Signal(w) & drivers)) }

// IsTrap reports whether w is a tick trap sentinel.
func (w ControlWord) IsTrap() bool { return w >= BusContention }

func (w ControlWord) String() string {
	switch w {
	case IllegalOpcode:
		return "IllegalOpcode"
	case DebugRequest:
		return "DebugRequest"
	case MicrocodeFault:
		return "MicrocodeFault"
	case BusContention:
		return "BusContention"
	case 0:
		return "-"
	}
	var names []string
	for i, name := range signalNames {
		if w&(1<<uint(i)) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, "|")
}

// Pack returns the microcode image encoding of w.
func Pack(w ControlWord) uint16 { return uint16(w) }

// Unpack decodes a microcode image word.
func Unpack(v uint16) ControlWord { return ControlWord(v) }

// Addr returns the microcode image address of a step.
func Addr(carry bool, index, step int) int {
	c := 0
	if carry {
		c = 1
	}
	return c<<12 | index<<5 | step
}
