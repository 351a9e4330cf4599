/*
   BAL370 CPU engine tests

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
	"testing"

	"github.com/rcornwell/bal370/emu/codec"
	"github.com/rcornwell/bal370/emu/convert"
	"github.com/rcornwell/bal370/emu/memory"
)

func newTestCPU(kbytes int) (*CPU, *memory.Memory) {
	mem := memory.New(kbytes)
	cpu := New(mem)
	return cpu, mem
}

// Scenario 1 (design notes §8): BALR-established no-op link, a four byte
// store loop counted down by BCT, then a clean return through R14's
// termination sentinel.
func TestBALRLoopStore(t *testing.T) {
	cpu, mem := newTestCPU(1)

	const areaAddr = 0x1C
	prog := []byte{
		0x05, 0xC0, // BALR R12,0
		0x41, 0x30, 0x00, areaAddr, // LA R3,AREA1
		0x41, 0x40, 0x00, 0x04, // LA R4,4
		0x92, 0xF0, 0x30, 0x00, // loop: MVI 0(R3),C'0'
		0x41, 0x30, 0x30, 0x01, // LA R3,1(R3)
		0x46, 0x40, 0x00, 0x0A, // BCT R4,loop
		0x41, 0xF0, 0x00, 0x00, // LA R15,0
		0x07, 0xFE, // BR R14
	}
	mem.PutBytes(0, prog)
	mem.PutWord(areaAddr, 0xFFFFFFFF)

	ev := cpu.Run()
	if !ev.Halt || ev.Err != nil {
		t.Fatalf("Run did not terminate cleanly: halt=%v err=%v", ev.Halt, ev.Err)
	}

	got := mem.GetBytes(areaAddr, 4)
	want := []byte{0xF0, 0xF0, 0xF0, 0xF0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AREA1[%d] = %02X, want %02X", i, got[i], want[i])
		}
	}
	if cpu.regs[15] != 0 {
		t.Errorf("R15 = %d, want 0", cpu.regs[15])
	}
	if cpu.regs[14] != TerminateAddr {
		t.Errorf("R14 = %06X, want %06X", cpu.regs[14], TerminateAddr)
	}
}

// Scenario 2: signed add of a register holding the maximum positive value
// and 1 overflows and sets CC3.
func TestAddOverflowSetsCC3(t *testing.T) {
	cpu, _ := newTestCPU(1)
	cpu.regs[1] = 0x7FFFFFFF
	cpu.regs[2] = 1
	step := &stepInfo{opcode: 0x1A, format: 0, R1: 1, R2: 2, src1: cpu.regs[1], src2: cpu.regs[2]}

	if rc := cpu.opA(step); rc != 0 {
		t.Fatalf("opA returned fault rc=%d", rc)
	}
	if cpu.regs[1] != 0x80000000 {
		t.Errorf("R1 = %08X, want 80000000", cpu.regs[1])
	}
	if cpu.cc != CCOver {
		t.Errorf("CC = %d, want CCOver", cpu.cc)
	}
}

// Scenario 3: AP of +123 and -456 yields -333 with CC1, and never reports
// overflow (§9 documented behavior).
func TestAPPackedAddSub(t *testing.T) {
	cpu, mem := newTestCPU(1)
	mem.PutBytes(0x100, []byte{0x00, 0x12, 0x3C}) // +123
	mem.PutBytes(0x200, []byte{0x45, 0x6D})        // -456

	step := &stepInfo{
		opcode: 0xFA, format: 5, L1: 2, L2: 1,
		address1: 0x100, address2: 0x200,
	}
	if rc := cpu.opAP(step); rc != 0 {
		t.Fatalf("opAP returned fault rc=%d", rc)
	}

	got := mem.GetBytes(0x100, 3)
	want := []byte{0x00, 0x33, 0x3D}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("operand1[%d] = %02X, want %02X", i, got[i], want[i])
		}
	}
	if cpu.cc != CCLow {
		t.Errorf("CC = %d, want CCLow", cpu.cc)
	}
}

// Scenario 4: CLC compares byte by byte, stopping at the first mismatch.
func TestCLCCompare(t *testing.T) {
	cases := []struct {
		name   string
		a, b   string
		wantCC CC
	}{
		{"low", "ABC", "ABD", CCLow},
		{"equal", "ABC", "ABC", CCEqual},
		{"high", "ABD", "ABC", CCHigh},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cpu, mem := newTestCPU(1)
			mem.PutBytes(0x100, []byte(tc.a))
			mem.PutBytes(0x200, []byte(tc.b))
			step := &stepInfo{
				opcode: 0xD5, L1: uint8(len(tc.a) - 1),
				address1: 0x100, address2: 0x200,
			}
			if rc := cpu.opCL(step); rc != 0 {
				t.Fatalf("opCL returned fault rc=%d", rc)
			}
			if cpu.cc != tc.wantCC {
				t.Errorf("CLC(%q,%q) CC = %d, want %d", tc.a, tc.b, cpu.cc, tc.wantCC)
			}
		})
	}
}

// Scenario 6: BXLE loops while the running sum stays <= the compare value,
// incrementing by regs[R2] each pass (R2 even selects R2+1 as the compare
// register).
func TestBXLELoop(t *testing.T) {
	cpu, _ := newTestCPU(1)
	cpu.regs[1] = 0  // R1: running sum
	cpu.regs[2] = 2  // R2 even: increment
	cpu.regs[3] = 10 // R2+1: compare value
	cpu.PC = 100

	step := &stepInfo{opcode: 0x87, R1: 1, R2: 2, address2: 0x40}
	branched := 0
	for branched < 5 {
		cpu.PC = 100
		cpu.opBXLE(step)
		if cpu.PC != 0x40 {
			t.Fatalf("pass %d: expected branch, PC = %d", branched+1, cpu.PC)
		}
		branched++
	}
	if cpu.regs[1] != 10 {
		t.Errorf("R1 after 5 branching passes = %d, want 10", cpu.regs[1])
	}

	cpu.PC = 100
	cpu.opBXLE(step)
	if cpu.PC != 100 {
		t.Errorf("6th pass branched to %d, want fall-through to 100", cpu.PC)
	}
	if cpu.regs[1] != 12 {
		t.Errorf("R1 after 6th pass = %d, want 12", cpu.regs[1])
	}
}

// A simplified ED scenario traced directly against this package's own
// edit() state machine: a three digit-select pattern over the packed value
// 01 2C (+012) with leading zero suppression.
func TestEDSuppressesLeadingZeros(t *testing.T) {
	cpu, mem := newTestCPU(1)
	mem.PutBytes(0x100, []byte{0x40, 0x20, 0x20, 0x20}) // fill, 3 digit selects
	mem.PutBytes(0x200, []byte{0x01, 0x2C})              // +012

	step := &stepInfo{opcode: 0xDE, L1: 3, address1: 0x100, address2: 0x200}
	if rc := cpu.opED(step); rc != 0 {
		t.Fatalf("opED returned fault rc=%d", rc)
	}
	got := mem.GetBytes(0x100, 4)
	want := []byte{0x40, 0x40, 0xF1, 0xF2}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pattern[%d] = %02X, want %02X", i, got[i], want[i])
		}
	}
}

// ED's CC reflects the source's sign nibble: a nonzero positive source
// (+2) edited under one digit select gives CC2.
func TestEDConditionCode(t *testing.T) {
	cpu, mem := newTestCPU(1)
	mem.PutBytes(0x100, []byte{0x40, 0x20}) // fill, 1 digit select
	mem.PutBytes(0x200, []byte{0x2C})       // +2

	step := &stepInfo{opcode: 0xDE, L1: 1, address1: 0x100, address2: 0x200}
	if rc := cpu.opED(step); rc != 0 {
		t.Fatalf("opED returned fault rc=%d", rc)
	}
	if got := mem.GetBytes(0x100, 2); got[1] != 0xF2 {
		t.Errorf("pattern[1] = %02X, want F2", got[1])
	}
	if cpu.cc != CCHigh {
		t.Errorf("CC = %d, want CCHigh", cpu.cc)
	}
}

// Universal invariant: CC is always one of the four one-hot values.
func TestConditionCodeAlwaysOneHot(t *testing.T) {
	cpu, _ := newTestCPU(1)
	for _, cc := range []CC{CCEqual, CCLow, CCHigh, CCOver} {
		cpu.cc = cc
		mask := cpu.cc.Mask()
		bits := 0
		for b := uint8(0); b < 4; b++ {
			if mask&(1<<b) != 0 {
				bits++
			}
		}
		if bits != 1 {
			t.Errorf("Mask() for CC %d is not one-hot: %04b", cc, mask)
		}
	}
}

// Universal invariant: hex round-trips through the convert helpers.
func TestHexRoundTrip(t *testing.T) {
	for _, n := range []int32{0, 1, -1, 123456, -999999, 2147483647, -2147483648} {
		hex := convert.IntToHex(n)
		got := convert.HexToInt(hex)
		if int32(got) != n {
			t.Errorf("HexToInt(IntToHex(%d)) = %d", n, got)
		}
	}
}

// Universal invariant: packed decimal round-trips through the convert
// helpers for a fixed field width.
func TestPackedDecimalRoundTrip(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 123, -456, 999999} {
		packed := convert.IntToPackedDecimal(n, 8)
		got, err := convert.PackedDecimalToInt(packed)
		if err != nil {
			t.Fatalf("PackedDecimalToInt: %v", err)
		}
		if got != n {
			t.Errorf("PackedDecimalToInt(IntToPackedDecimal(%d)) = %d", n, got)
		}
	}
}

// Universal invariant: a non-branching instruction advances PC by exactly
// its format length.
func TestNonBranchingAdvancesByFormatLength(t *testing.T) {
	cpu, mem := newTestCPU(1)
	mem.PutBytes(0, []byte{0x41, 0x10, 0x00, 0x08}) // LA R1,8
	cpu.PC = 0
	cpu.Step()
	if cpu.PC != 4 {
		t.Errorf("PC after LA = %d, want 4", cpu.PC)
	}
}

// Universal invariant: a file opened for write via SVC 249 and closed via
// SVC 248 round trips cleanly.
func TestSVCOpenCloseRoundTrip(t *testing.T) {
	cpu, mem := newTestCPU(1)
	path := t.TempDir() + "/out.txt"
	name := codec.ASCIIToEBCDIC([]byte(path))
	mem.PutBytes(0, name)

	cpu.regs[0] = 0
	cpu.regs[1] = uint32(0x01)<<16 | uint32(len(name)) // handle digit 0, write, namelen
	cpu.svcOpen()
	if cpu.regs[15] != 0 {
		t.Fatalf("svcOpen failed, R15=%d", cpu.regs[15])
	}

	cpu.regs[1] = uint32(0x00) << 24
	cpu.svcClose()
	if cpu.regs[15] != 0 {
		t.Fatalf("svcClose failed, R15=%d", cpu.regs[15])
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file was not created: %v", err)
	}
}
