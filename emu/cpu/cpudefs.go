/*
   BAL370 CPU state and instruction decode definitions

   Copyright (c) 2024, Richard Cornwell

   Permission is hereby granted, free of charge, to any person obtaining a
   copy of this software and associated documentation files (the "Software"),
   to deal in the Software without restriction, including without limitation
   the rights to use, copy, modify, merge, publish, distribute, sublicense,
   and/or sell copies of the Software, and to permit persons to whom the
   Software is furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
   RICHARD CORNWELL BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

*/

package cpu

import (
	"os"

	"github.com/rcornwell/bal370/emu/opcodemap"
)

// stepInfo is the decoded-operand record the design notes ask for: a pure
// function of (format, raw instruction bytes) destructured by each handler,
// replacing the source's runtime text-substituted field extraction.
type stepInfo struct {
	opcode   byte
	format   opcodemap.Format
	length   uint32 // instruction length in bytes
	R1       uint8
	R2       uint8
	X2       uint8
	B1       uint8
	B2       uint8
	D1       uint32
	D2       uint32
	B3       uint8
	D3       uint32
	L1       uint8 // SS: whole LL byte   / SS2: L1 field
	L2       uint8 // SS2: L2 field
	I2       uint8 // SI immediate byte

	address1 uint32 // effective address of first storage operand
	address2 uint32 // effective address of second storage operand / RS B2,D2
	src1     uint32 // register operand 1 value, when applicable
	src2     uint32 // register operand 2 value, when applicable
}

// CC models the one-hot condition code the architecture specifies: exactly
// one of the four bits is set after any cc-setting instruction.
type CC uint8

const (
	CCEqual CC = iota // CC0 - equal / zero
	CCLow             // CC1 - low / negative
	CCHigh            // CC2 - high / positive
	CCOver            // CC3 - overflow
)

// Mask returns the one-hot bit position BC/BCR test against, 0x8 for CC0
// down to 0x1 for CC3.
func (c CC) Mask() uint8 {
	return 0x8 >> uint8(c)
}

// TerminateAddr is the sentinel "return to OS" address R14 initializes to;
// a branch-register to R14 carrying this value ends execution cleanly.
const TerminateAddr uint32 = 0x0EEEEE

// execState is the executor's own control-flow variant (design notes §9):
// either fetch the next instruction normally, or resume the instruction
// staged by a prior EX. It replaces the source's magic PC sentinels
// (999999 / 978670) with a tagged value so a legal address is never
// confused with a control signal.
type execState int

const (
	stateFetch execState = iota
	stateFetchStaged
	stateTerminated
)

// exStage holds the subject instruction of an EX (Execute), its second byte
// already OR-masked, and the PC to resume at once it completes. Lifetime:
// one instruction cycle.
type exStage struct {
	bytes     []byte
	resumePC  uint32
}

// Memory is the storage interface the CPU operates against (emu/memory.Memory).
type Memory interface {
	GetByte(addr uint32) byte
	PutByte(addr uint32, v byte)
	GetBytes(addr uint32, n int) []byte
	PutBytes(addr uint32, data []byte)
	GetHalf(addr uint32) uint16
	PutHalf(addr uint32, v uint16)
	GetWord(addr uint32) uint32
	PutWord(addr uint32, v uint32)
	CheckAddr(addr uint32, n int) bool
	Size() int
}

// StepEvent is pushed to an optional channel after each instruction cycle
// so a debugger can observe engine state without the engine depending on
// any UI; headless runs simply never read it (design notes §9).
type StepEvent struct {
	PC       uint32
	CC       CC
	Regs     [16]uint32
	Halt     bool
	Err      error
	Mnemonic string // mnemonic just executed, "" for the terminal/fault events
	R1       int    // decoded R1 field of the instruction just executed
}

// CPU is the consolidated EngineState the design notes ask for: registers,
// CC, PC, memory, file handles and EX-staging owned by a single instance
// passed by reference into every handler, replacing the source's ambient
// globals.
type CPU struct {
	mem  Memory
	PC   uint32
	regs [16]uint32
	cc   CC

	state execState
	stage exStage

	files map[string]*os.File

	breakpoints map[uint32]struct{}

	table [256]func(*CPU, *stepInfo) uint16

	// Terminal output sink for SVC 255/254/253/252/251; defaults to
	// os.Stdout but is swappable so the debugger can capture it.
	Out *os.File

	Steps chan<- StepEvent
}

// New constructs a CPU bound to the given memory, with R14 initialized to
// the termination sentinel and an empty breakpoint/file-handle set.
func New(mem Memory) *CPU {
	cpu := &CPU{
		mem:         mem,
		files:       make(map[string]*os.File),
		breakpoints: make(map[uint32]struct{}),
		Out:         os.Stdout,
	}
	cpu.regs[14] = TerminateAddr
	cpu.createTable()
	return cpu
}

// Registers returns a copy of the register file, for debugger display.
func (cpu *CPU) Registers() [16]uint32 {
	return cpu.regs
}

// SetRegister stores v into register r (0..15).
func (cpu *CPU) SetRegister(r int, v uint32) {
	cpu.regs[r] = v
}

// Register returns register r's raw bit pattern (0..15).
func (cpu *CPU) Register(r int) uint32 {
	return cpu.regs[r]
}

// ConditionCode returns the current condition code.
func (cpu *CPU) ConditionCode() CC {
	return cpu.cc
}

// AddBreakpoint adds a breakpoint address.
func (cpu *CPU) AddBreakpoint(addr uint32) {
	cpu.breakpoints[addr] = struct{}{}
}

// RemoveBreakpoint removes one breakpoint address.
func (cpu *CPU) RemoveBreakpoint(addr uint32) {
	delete(cpu.breakpoints, addr)
}

// ClearBreakpoints removes every breakpoint.
func (cpu *CPU) ClearBreakpoints() {
	cpu.breakpoints = make(map[uint32]struct{})
}

// Breakpoints returns the current breakpoint address set.
func (cpu *CPU) Breakpoints() []uint32 {
	out := make([]uint32, 0, len(cpu.breakpoints))
	for a := range cpu.breakpoints {
		out = append(out, a)
	}
	return out
}

// AtBreakpoint reports whether addr is a set breakpoint.
func (cpu *CPU) AtBreakpoint(addr uint32) bool {
	_, ok := cpu.breakpoints[addr]
	return ok
}

// CloseFiles closes every open SVC file handle; called on emulator exit.
func (cpu *CPU) CloseFiles() {
	for h, f := range cpu.files {
		f.Close()
		delete(cpu.files, h)
	}
}
