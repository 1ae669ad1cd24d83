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

// Package mic derives the Atto-8 microcode image.
//
// The microarchitecture moves every value over a single 8-bit data bus that
// reads zero when nothing drives it. Its registers are IP and SP, the address
// latch AL, the instruction latch IL, the operand latches XL, YL and ZL, and a
// carry flip-flop CF. The bus can be driven by the adder (XL + YL + CIN), by a
// NAND gate (~(XL & YL)), by ZL, IP, SP or by the memory byte at AL.
//
// Each instruction runs as a sequence of control words, one per clock. The
// word for a step is read at
//
//	CF<<12 | index<<5 | step
//
// where index is the low seven bits of the opcode, or zero for the short
// pushes 0x00-0x7F. Since CF is part of the address, a sequence may branch on
// the carry produced by an earlier step. Latching IL ends a sequence: it bumps
// IP and restarts the step counter. Every sequence leaves YL and CF clear
// when it does so, and Compile verifies this by running each one.
//
// Entries that do not run microcode hold a tick trap sentinel instead:
// IllegalOpcode for unassigned opcodes and DebugRequest for dbg. Steps past
// the end of a sequence hold MicrocodeFault.
package mic
