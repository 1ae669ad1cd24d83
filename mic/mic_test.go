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
	"bytes"
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bricktech2000/Atto-8-sub000/isa"
)

func compiled(t *testing.T) []uint16 {
	t.Helper()
	rom, err := Compile()
	require.NoError(t, err)
	require.Len(t, rom, isa.MicSize)
	return rom
}

func TestControlWordLayout(t *testing.T) {
	assert.Equal(t, uint16(0x0001), Pack(Word(Cin)))
	assert.Equal(t, uint16(0x0004), Pack(Word(SumData)))
	assert.Equal(t, uint16(0x8000), Pack(Word(DataIL)))
	assert.Equal(t, uint16(0x2800), Pack(Word(MemData, DataSP)))
	assert.Equal(t, Word(IPData, DataAL), Unpack(Pack(Word(IPData, DataAL))))
	assert.Equal(t, "IP_DATA|DATA_AL", Word(IPData, DataAL).String())
	assert.Equal(t, 0x1000|0x25<<5|3, Addr(true, 0x25, 3))

	for _, trap := range []ControlWord{IllegalOpcode, DebugRequest, MicrocodeFault, BusContention} {
		assert.True(t, trap.IsTrap())
		assert.True(t, trap.Drivers() > 1, "%v", trap)
	}
	assert.False(t, Word(SumData, DataMem, DataXL).IsTrap())
}

func TestTickBus(t *testing.T) {
	m := &Machine{XL: 0xF0, YL: 0x20}
	_, err := m.Tick(Word(SumData, Cout, DataZL))
	require.NoError(t, err)
	assert.Equal(t, uint8(0x10), m.ZL)
	assert.True(t, m.CF)

	// an undriven bus reads zero
	_, err = m.Tick(Word(DataXL))
	require.NoError(t, err)
	assert.Zero(t, m.XL)

	_, err = m.Tick(Word(SumData, MemData, DataXL))
	require.Error(t, err)
	assert.Equal(t, BusContention, err.(*Trap).Word)

	m.Mem[0x42] = 0x99
	m.AL, m.IP = 0x42, 0x42
	fetched, err := m.Tick(Word(MemData, DataIL))
	require.NoError(t, err)
	assert.True(t, fetched)
	assert.Equal(t, uint8(0x99), m.IL)
	assert.Equal(t, uint8(0x43), m.IP)
}

func TestCompileTraps(t *testing.T) {
	rom := compiled(t)
	dbg := isa.MicroIndex(isa.Encode(isa.Plain(isa.OpDbg)))
	for _, carry := range []bool{false, true} {
		for step := 0; step < isa.StepCount; step++ {
			assert.Equal(t, DebugRequest, Unpack(rom[Addr(carry, dbg, step)]))
			assert.Equal(t, IllegalOpcode, Unpack(rom[Addr(carry, 0x13, step)]))
			assert.Equal(t, IllegalOpcode, Unpack(rom[Addr(carry, 0x3C, step)]))
			assert.Equal(t, IllegalOpcode, Unpack(rom[Addr(carry, 0x60, step)]))
		}
	}
	// the push entry is eight steps long
	assert.Equal(t, Word(MemData, DataIL), Unpack(rom[Addr(false, 0, 7)]))
	assert.Equal(t, MicrocodeFault, Unpack(rom[Addr(false, 0, 8)]))
}

func TestStepBudget(t *testing.T) {
	for index := 0; index < isa.OpCount; index++ {
		s, _ := derive(index)
		assert.True(t, s.len() <= isa.StepCount, "entry %02X takes %d steps", index, s.len())
		assert.Equal(t, len(s[0]), len(s[1]), "entry %02X", index)
	}
}

func TestCompileReportsEveryOverflow(t *testing.T) {
	long := func() sequence {
		var s sequence
		for i := 0; i <= isa.StepCount; i++ {
			s.both(DataYL)
		}
		return s
	}
	derive := func(index int) (s sequence, trap ControlWord) {
		switch index {
		case 0x03, 0x07:
			return long(), 0
		case 0x05:
			s.each(Word(IPData, SPData, DataAL), Word(DataYL))
			return s, 0
		}
		return s, IllegalOpcode
	}
	rom, err := compile(derive)
	assert.Nil(t, rom)
	require.IsType(t, ErrMic{}, err)
	assert.Equal(t, ErrMic{
		{0x03, "Microcode sequence of 33 steps exceeds step budget of 32"},
		{0x05, "Bus contention at step 0 with carry 0: IP_DATA|SP_DATA|DATA_AL"},
		{0x07, "Microcode sequence of 33 steps exceeds step budget of 32"},
	}, err)
	assert.Equal(t, "Error: 03: Microcode sequence of 33 steps exceeds step budget of 32\n"+
		"Error: 05: Bus contention at step 0 with carry 0: IP_DATA|SP_DATA|DATA_AL\n"+
		"Error: 07: Microcode sequence of 33 steps exceeds step budget of 32", err.Error())
}

// reference executes ins at pc the way the instruction set describes it and
// returns the expected machine and the address of the popped operand slot,
// which binary operations may clobber, or -1.
func reference(m Machine, pc uint8, ins isa.Instruction) (Machine, int) {
	clobbered := -1
	next := pc + 1
	push := func(v uint8) {
		m.SP--
		m.Mem[m.SP] = v
	}
	top := &m.Mem[m.SP]
	switch op := ins.Op; {
	case op == isa.OpPsh || op == isa.OpPhn:
		push(m.Mem[pc])
	case op.IsBinary():
		a := m.Mem[m.SP]
		clobbered = int(m.SP)
		m.SP++
		b := &m.Mem[m.SP+ins.Arg-1]
		switch op {
		case isa.OpAdd:
			*b += a
		case isa.OpSub:
			*b -= a
		case isa.OpRot:
			*b = bits.RotateLeft8(*b, int(a%8))
		case isa.OpOrr:
			*b |= a
		case isa.OpAnd:
			*b &= a
		case isa.OpXor:
			*b ^= a
		case isa.OpXnd:
			*b = 0
		}
	case op == isa.OpInc:
		*top++
	case op == isa.OpDec:
		*top--
	case op == isa.OpNeg:
		*top = -*top
	case op == isa.OpShl:
		*top <<= 1
	case op == isa.OpShr:
		*top >>= 1
	case op == isa.OpNot:
		*top = ^*top
	case op == isa.OpLda:
		*top = m.Mem[*top]
	case op == isa.OpSta:
		addr, v := m.Mem[m.SP], m.Mem[m.SP+1]
		m.SP += 2
		m.Mem[addr] = v
	case op == isa.OpLdi:
		push(pc + 1)
	case op == isa.OpSti:
		next = *top
		m.SP++
	case op == isa.OpLds:
		push(m.SP)
	case op == isa.OpSts:
		m.SP = *top
	case op == isa.OpSwp:
		m.Mem[m.SP], m.Mem[m.SP+1] = m.Mem[m.SP+1], m.Mem[m.SP]
	case op == isa.OpPop:
		m.SP++
	case op == isa.OpHlt:
		next = pc
	case op == isa.OpLdo:
		push(m.Mem[m.SP+ins.Arg])
	case op == isa.OpSto:
		a := m.Mem[m.SP]
		m.SP++
		m.Mem[m.SP+ins.Arg] = a
	}
	m.IL = m.Mem[next]
	m.IP = next + 1
	return m, clobbered
}

func TestInstructionSemantics(t *testing.T) {
	rom := compiled(t)
	for b := 0; b < 0x100; b++ {
		ins, ok := isa.Decode(byte(b))
		if !ok || ins.Op == isa.OpDbg {
			continue
		}
		for k := 0; k < samples; k++ {
			m := sample(k, byte(b))
			pc := m.AL
			if ins.Op == isa.OpRot {
				m.Mem[m.SP] = byte(k * 3) // keep the rotation count small
			}
			want, clobbered := reference(*m, pc, ins)

			_, err := m.Exec(rom)
			for i := 0; err == nil && ins.Op == isa.OpRot && m.IP == pc+1 && i < 0x100; i++ {
				_, err = m.Exec(rom)
			}
			require.NoError(t, err, "%v sample %d", ins, k)

			if clobbered >= 0 {
				m.Mem[clobbered] = want.Mem[clobbered]
			}
			assert.Equal(t, want.Mem, m.Mem, "%v sample %d: memory", ins, k)
			assert.Equal(t, want.SP, m.SP, "%v sample %d: SP", ins, k)
			assert.Equal(t, want.IP, m.IP, "%v sample %d: IP", ins, k)
			assert.Equal(t, want.IL, m.IL, "%v sample %d: IL", ins, k)
			assert.Zero(t, m.YL, "%v sample %d: YL", ins, k)
			assert.False(t, m.CF, "%v sample %d: CF", ins, k)
		}
	}
}

func TestCheckReportsViolations(t *testing.T) {
	rom := compiled(t)
	nop := isa.MicroIndex(isa.Encode(isa.Plain(isa.OpNop)))
	// leave YL set
	for carry := 0; carry < 2; carry++ {
		rom[Addr(carry == 1, nop, 0)] = Pack(Word(NandData, DataYL))
		rom[Addr(carry == 1, nop, 1)] = Pack(Word(IPData, DataAL))
		rom[Addr(carry == 1, nop, 2)] = Pack(Word(MemData, DataIL))
	}
	errs := check(rom)
	require.Len(t, errs, 1)
	assert.Equal(t, nop, errs[0].Index)
	assert.Equal(t, "Error: 10: YL not cleared before fetch", errs[0].Error())

	// never fetch
	inc := isa.MicroIndex(isa.Encode(isa.Plain(isa.OpInc)))
	for step := 0; step < isa.StepCount; step++ {
		rom[Addr(false, inc, step)] = 0
	}
	errs = check(rom)
	require.Len(t, errs, 2)
	assert.Contains(t, errs.Error(), "Error: 01: tick trap: MicrocodeFault")
}

func TestWriteListing(t *testing.T) {
	rom := compiled(t)
	var buf bytes.Buffer
	require.NoError(t, WriteListing(&buf, rom))
	out := buf.String()
	assert.Contains(t, out, "00 psh00\n\t00\t2040\tDATA_ZL|MEM_DATA\n")
	assert.Contains(t, out, "12 dbg\tDebugRequest\n")
	assert.Contains(t, out, "13 ???\tIllegalOpcode\n")
	assert.Contains(t, out, "05 shr carry=1\n")
	assert.Contains(t, out, "28 rot1 carry=1\n")

	assert.Error(t, WriteListing(&buf, rom[:10]))
}
