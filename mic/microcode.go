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
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Bricktech2000/Atto-8-sub000/isa"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// SetLogger replaces the logger used for debug output.
func SetLogger(l logrus.FieldLogger) {
	logger = l
}

// Error is a problem with the microcode of one opcode entry.
type Error struct {
	Index int
	Msg   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("Error: %02X: %s", e.Index, e.Msg)
}

// ErrMic is the error returned by Compile. It lists every problem found.
type ErrMic []Error

func (e ErrMic) Error() string {
	lines := make([]string, len(e))
	for i := range e {
		lines[i] = e[i].Error()
	}
	return strings.Join(lines, "\n")
}

func (e *ErrMic) add(index int, format string, args ...interface{}) {
	*e = append(*e, Error{index, fmt.Sprintf(format, args...)})
}

// sequence holds the control words of one opcode entry, one list per value
// of the carry flip-flop.
type sequence [2][]ControlWord

func (s *sequence) both(sigs ...Signal) {
	s.each(Word(sigs...), Word(sigs...))
}

func (s *sequence) each(w0, w1 ControlWord) {
	s[0] = append(s[0], w0)
	s[1] = append(s[1], w1)
}

func (s *sequence) len() int {
	if len(s[1]) > len(s[0]) {
		return len(s[1])
	}
	return len(s[0])
}

func (s *sequence) fetch() {
	s.both(IPData, DataAL)
	s.both(MemData, DataIL)
}

// pushZL pushes ZL and fetches.
func (s *sequence) pushZL() {
	s.both(SPData, DataXL)
	s.both(NandData, DataYL)
	s.both(SumData, DataSP, DataAL)
	s.both(ZLData, DataMem)
	s.both(DataYL)
	s.fetch()
}

// pop drops the top of the stack and fetches. YL must be clear.
func (s *sequence) pop() {
	s.both(SPData, DataXL)
	s.both(SumData, Cin, DataSP)
	s.fetch()
}

// opcodeOf returns an opcode executed through entry index.
func opcodeOf(index int) byte {
	if index == 0 {
		return 0x00
	}
	return byte(0x80 | index)
}

// derive returns the control words of entry index, or the trap the entry
// raises instead. Every sequence starts with AL holding the address of the
// opcode and with YL and CF clear, and must leave YL and CF clear when it
// fetches the next instruction.
func derive(index int) (s sequence, trap ControlWord) {
	ins, ok := isa.Decode(opcodeOf(index))
	if !ok {
		return s, IllegalOpcode
	}
	switch op := ins.Op; {
	case op == isa.OpPsh || op == isa.OpPhn:
		s.both(MemData, DataZL)
		s.pushZL()
	case op.IsBinary():
		s.binary(op, int(ins.Arg))
	case op == isa.OpLdo:
		s.ldo(int(ins.Arg))
	case op == isa.OpSto:
		s.sto(int(ins.Arg))
	case op == isa.OpDbg:
		return s, DebugRequest
	default:
		s.misc(op)
	}
	return s, 0
}

func (s *sequence) misc(op isa.Op) {
	switch op {
	case isa.OpInc:
		s.both(SPData, DataAL)
		s.both(MemData, DataXL)
		s.both(SumData, Cin, DataMem)
	case isa.OpDec:
		s.both(SPData, DataAL)
		s.both(MemData, DataXL)
		s.both(NandData, DataYL)
		s.both(SumData, DataMem)
		s.both(DataYL)
	case isa.OpNeg:
		s.both(SPData, DataAL)
		s.both(MemData, DataXL)
		s.both(NandData, DataYL)
		s.both(NandData, DataYL)
		s.both(DataXL)
		s.both(SumData, Cin, DataMem)
		s.both(DataYL)
	case isa.OpShl:
		s.both(SPData, DataAL)
		s.both(MemData, DataXL, DataYL)
		s.both(SumData, DataMem)
		s.both(DataYL)
	case isa.OpShr:
		// eight rotations through carry of the nine bit value CF:x
		s.both(SPData, DataAL)
		s.both(MemData, DataXL, DataYL)
		for i := 0; i < 8; i++ {
			w := Word(SumData, Cout, DataXL, DataYL)
			if i == 7 {
				w |= Word(DataMem)
			}
			s.each(w, w|Word(Cin))
		}
		s.both(DataXL, DataYL)
		s.both(Cout)
	case isa.OpNot:
		s.both(SPData, DataAL)
		s.both(MemData, DataXL)
		s.both(NandData, DataYL)
		s.both(NandData, DataMem)
		s.both(DataYL)
	case isa.OpBuf, isa.OpNop:
	case isa.OpLda:
		s.both(SPData, DataAL)
		s.both(MemData, DataAL)
		s.both(MemData, DataZL)
		s.both(SPData, DataAL)
		s.both(ZLData, DataMem)
	case isa.OpSta:
		s.both(SPData, DataAL)
		s.both(MemData, DataZL)
		s.both(SPData, DataXL)
		s.both(SumData, Cin, DataAL, DataXL)
		s.both(SumData, Cin, DataSP)
		s.both(MemData, DataXL)
		s.both(ZLData, DataAL)
		s.both(SumData, DataMem)
	case isa.OpLdi:
		s.both(IPData, DataZL)
		s.pushZL()
		return
	case isa.OpLds:
		s.both(SPData, DataZL)
		s.pushZL()
		return
	case isa.OpSti:
		s.both(SPData, DataAL)
		s.both(MemData, DataIP)
		s.pop()
		return
	case isa.OpSts:
		s.both(SPData, DataAL)
		s.both(MemData, DataSP)
	case isa.OpSwp:
		s.both(SPData, DataAL)
		s.both(MemData, DataZL)
		s.both(SPData, DataXL)
		s.both(SumData, Cin, DataAL)
		s.both(MemData, DataXL)
		s.both(ZLData, DataMem)
		s.both(SPData, DataAL)
		s.both(SumData, DataMem)
	case isa.OpPop:
		s.pop()
		return
	case isa.OpHlt:
		// step IP back onto this instruction and fetch it again
		s.both(IPData, DataXL)
		s.both(NandData, DataYL)
		s.both(SumData, DataIP, DataAL)
		s.both(DataYL)
		s.both(MemData, DataIL)
		return
	default:
		panic(fmt.Sprintf("mic: no microcode for %v", op))
	}
	s.fetch()
}

// binary points ZL and AL at the operand size-1 bytes below the new top of
// the stack, combines it with the top and pops.
func (s *sequence) binary(op isa.Op, size int) {
	s.both(SPData, DataXL)
	for i := 1; i < size; i++ {
		s.both(SumData, Cin, DataXL)
	}
	s.both(SumData, Cin, DataZL, DataAL)

	switch op {
	case isa.OpAdd:
		s.both(MemData, DataXL)
		s.both(SPData, DataAL)
		s.both(MemData, DataYL)
		s.both(ZLData, DataAL)
		s.both(SumData, DataMem)
		s.both(DataYL)
	case isa.OpSub:
		s.both(SPData, DataAL)
		s.both(MemData, DataXL)
		s.both(NandData, DataYL)
		s.both(NandData, DataYL)
		s.both(ZLData, DataAL)
		s.both(MemData, DataXL)
		s.both(SumData, Cin, DataMem)
		s.both(DataYL)
	case isa.OpRot:
		s.rot()
		return
	case isa.OpOrr:
		s.both(NandData, DataYL)
		s.both(MemData, DataXL)
		s.both(NandData, DataMem)
		s.both(SPData, DataAL)
		s.both(MemData, DataXL)
		s.both(NandData, DataYL)
		s.both(ZLData, DataAL)
		s.both(MemData, DataXL)
		s.both(NandData, DataMem)
		s.both(DataYL)
	case isa.OpAnd:
		s.both(MemData, DataXL)
		s.both(SPData, DataAL)
		s.both(MemData, DataYL)
		s.both(ZLData, DataAL)
		s.both(NandData, DataMem, DataXL)
		s.both(DataYL)
		s.both(NandData, DataYL)
		s.both(NandData, DataMem)
		s.both(DataYL)
	case isa.OpXor:
		// t = ~(a & b), u = ~(a & t), v = ~(b & t), result ~(u & v); the
		// popped operand's slot holds u
		s.both(MemData, DataXL)
		s.both(SPData, DataAL)
		s.both(MemData, DataYL)
		s.both(NandData, DataMem)
		s.both(MemData, DataXL)
		s.both(NandData, DataMem)
		s.both(ZLData, DataAL)
		s.both(MemData, DataYL)
		s.both(NandData, DataMem)
		s.both(MemData, DataXL)
		s.both(SPData, DataAL)
		s.both(MemData, DataYL)
		s.both(ZLData, DataAL)
		s.both(NandData, DataMem)
		s.both(DataYL)
	case isa.OpXnd:
		s.both(DataMem)
	}
	s.pop()
}

// rot rotates the target left once per execution, decrementing the rotation
// count in place and executing itself again until the count reaches zero. CF
// selects between the branches.
func (s *sequence) rot() {
	s.both(SPData, DataAL)
	s.both(MemData, DataXL)
	s.both(NandData, DataYL)
	s.both(SumData, Cout, DataMem) // count-1, CF set unless count was zero
	s.both(DataYL)

	s.each(Word(SPData, DataXL), Word(ZLData, DataAL))
	s.each(Word(SumData, Cin, DataSP), Word(MemData, DataXL, DataYL))
	s.each(Word(IPData, DataAL), 0)
	s.each(Word(MemData, DataIL), Word(SumData, Cout, DataMem)) // CF is now the bit rotated out

	s.each(Word(DataYL), Word(MemData, DataXL))
	s.each(Word(IPData, DataXL), Word(DataYL))
	s.each(Word(NandData, DataYL), Word(SumData, Cin, DataMem))
	s.each(Word(SumData, DataIP, DataAL), Word(IPData, DataXL))
	s.each(Word(DataYL), Word(NandData, DataYL))
	s.each(0, Word(SumData, DataIP, DataAL))
	s.each(0, Word(DataXL, DataYL))
	s.each(0, Word(Cout))
	s.both(MemData, DataIL)
}

func (s *sequence) ldo(offset int) {
	if offset == 0 {
		s.both(SPData, DataAL)
	} else {
		s.both(SPData, DataXL)
		for i := 1; i < offset; i++ {
			s.both(SumData, Cin, DataXL)
		}
		s.both(SumData, Cin, DataAL)
	}
	s.both(MemData, DataZL)
	s.pushZL()
}

func (s *sequence) sto(offset int) {
	s.both(SPData, DataAL)
	s.both(MemData, DataZL)
	s.both(SPData, DataXL)
	for i := 0; i <= offset; i++ {
		w := Word(SumData, Cin)
		if i == 0 {
			w |= Word(DataSP)
		}
		if i == offset {
			w |= Word(DataAL)
		} else {
			w |= Word(DataXL)
		}
		s.each(w, w)
	}
	s.both(ZLData, DataMem)
	s.fetch()
}

// Compile derives the microcode image: isa.MicSize words addressed by Addr.
// Steps past the end of a sequence hold MicrocodeFault.
//
// The returned error, if not nil, is an ErrMic value and no image is
// returned.
func Compile() ([]uint16, error) {
	return compile(derive)
}

func compile(derive func(index int) (sequence, ControlWord)) ([]uint16, error) {
	var errs ErrMic
	rom := make([]uint16, isa.MicSize)
	for index := 0; index < isa.OpCount; index++ {
		s, trap := derive(index)
		if n := s.len(); n > isa.StepCount {
			errs.add(index, "Microcode sequence of %d steps exceeds step budget of %d", n, isa.StepCount)
			s = sequence{}
		}
		for carry := 0; carry < 2; carry++ {
			for step := 0; step < isa.StepCount; step++ {
				w := MicrocodeFault
				switch {
				case trap != 0:
					w = trap
				case step < len(s[carry]):
					w = s[carry][step]
					if w.Drivers() > 1 {
						errs.add(index, "Bus contention at step %d with carry %d: %v", step, carry, w)
						w = BusContention
					}
				}
				rom[Addr(carry == 1, index, step)] = Pack(w)
			}
		}
		logger.WithFields(logrus.Fields{"index": index, "steps": s.len(), "trap": trap}).Debug("derived microcode")
	}
	errs = append(errs, check(rom)...)
	if len(errs) > 0 {
		return nil, errs
	}
	return rom, nil
}

const samples = 8

func sample(k int, op byte) *Machine {
	m := new(Machine)
	for i := range m.Mem {
		m.Mem[i] = byte(i*7 + k*53 + 11)
	}
	pc := byte(0x10 + k*3)
	m.SP = byte(0xC0 + k*5)
	m.XL, m.ZL = 0xA5, 0x5A
	m.Mem[pc] = op
	m.Reset(pc)
	return m
}

// check runs every entry that does not trap from a few machine states and
// verifies that it reaches the next fetch with YL and CF clear.
func check(rom []uint16) ErrMic {
	var errs ErrMic
	for index := 0; index < isa.OpCount; index++ {
		if Unpack(rom[Addr(false, index, 0)]).IsTrap() {
			continue
		}
		for k := 0; k < samples; k++ {
			m := sample(k, opcodeOf(index))
			_, err := m.Exec(rom)
			switch {
			case err != nil:
				errs.add(index, "%v", err)
			case m.YL != 0:
				errs.add(index, "YL not cleared before fetch")
			case m.CF:
				errs.add(index, "Carry flag set at fetch")
			default:
				continue
			}
			break
		}
	}
	return errs
}
