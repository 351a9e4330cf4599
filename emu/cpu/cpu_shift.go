/*
   BAL370 shift instruction execution

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

// Shift count is the low 6 bits of the D2 field; B2 is ignored entirely
// (shift instructions never call calcAddress). The documented source bug
// (§9): SLA alone uses the raw D2 value, not its low 6 bits.

// algebraicShiftLeft32 shifts the 31-bit magnitude of val left by count
// bits, keeping the sign bit fixed, and reports overflow if any bit
// shifted past bit 30 differed from the sign.
func algebraicShiftLeft32(val int32, count uint32) (int32, bool) {
	sign := uint32(val) & 0x80000000
	mag := uint32(val) & 0x7FFFFFFF
	overflow := false
	for i := uint32(0); i < count; i++ {
		top := mag & 0x40000000
		if (top != 0) != (sign != 0) {
			overflow = true
		}
		mag = (mag << 1) & 0x7FFFFFFF
	}
	return int32(sign | mag), overflow
}

func algebraicShiftLeft64(val uint64, count uint32) (uint64, bool) {
	sign := val & 0x8000000000000000
	mag := val & 0x7FFFFFFFFFFFFFFF
	overflow := false
	for i := uint32(0); i < count; i++ {
		top := mag & 0x4000000000000000
		if (top != 0) != (sign != 0) {
			overflow = true
		}
		mag = (mag << 1) & 0x7FFFFFFFFFFFFFFF
	}
	return sign | mag, overflow
}

// opSLA implements Shift Left Single Algebraic, with the documented
// unmasked shift-count bug reproduced.
func (cpu *CPU) opSLA(step *stepInfo) uint16 {
	count := step.D2
	result, overflow := algebraicShiftLeft32(int32(step.src1), count)
	cpu.regs[step.R1] = uint32(result)
	if overflow {
		cpu.cc = CCOver
	} else {
		cpu.setArithCC(int64(result))
	}
	return 0
}

// opSRA implements Shift Right Single Algebraic. Right shifts cannot
// overflow.
func (cpu *CPU) opSRA(step *stepInfo) uint16 {
	count := step.D2 & 0x3F
	result := int32(step.src1) >> count
	cpu.regs[step.R1] = uint32(result)
	cpu.setArithCC(int64(result))
	return 0
}

// opSLL/opSRL implement the logical single shifts; CC is never set.
func (cpu *CPU) opSLL(step *stepInfo) uint16 {
	count := step.D2 & 0x3F
	cpu.regs[step.R1] = step.src1 << count
	return 0
}

func (cpu *CPU) opSRL(step *stepInfo) uint16 {
	count := step.D2 & 0x3F
	cpu.regs[step.R1] = step.src1 >> count
	return 0
}

// opSLDA implements Shift Left Double Algebraic on the 64-bit pair
// R1,R1+1 (R1 must be even; not checked, per architecture).
func (cpu *CPU) opSLDA(step *stepInfo) uint16 {
	count := step.D2 & 0x3F
	r1 := step.R1 &^ 1
	pair := uint64(cpu.regs[r1])<<32 | uint64(cpu.regs[r1|1])
	result, overflow := algebraicShiftLeft64(pair, count)
	cpu.regs[r1] = uint32(result >> 32)
	cpu.regs[r1|1] = uint32(result)
	cpu.setPairCC(int64(result), overflow)
	return 0
}

// opSRDA implements Shift Right Double Algebraic.
func (cpu *CPU) opSRDA(step *stepInfo) uint16 {
	count := step.D2 & 0x3F
	r1 := step.R1 &^ 1
	pair := int64(uint64(cpu.regs[r1])<<32 | uint64(cpu.regs[r1|1]))
	result := pair >> count
	cpu.regs[r1] = uint32(uint64(result) >> 32)
	cpu.regs[r1|1] = uint32(result)
	cpu.setPairCC(result, false)
	return 0
}

// opSLDL/opSRDL implement the logical double shifts; CC is never set.
func (cpu *CPU) opSLDL(step *stepInfo) uint16 {
	count := step.D2 & 0x3F
	r1 := step.R1 &^ 1
	pair := uint64(cpu.regs[r1])<<32 | uint64(cpu.regs[r1|1])
	pair <<= count
	cpu.regs[r1] = uint32(pair >> 32)
	cpu.regs[r1|1] = uint32(pair)
	return 0
}

func (cpu *CPU) opSRDL(step *stepInfo) uint16 {
	count := step.D2 & 0x3F
	r1 := step.R1 &^ 1
	pair := uint64(cpu.regs[r1])<<32 | uint64(cpu.regs[r1|1])
	pair >>= count
	cpu.regs[r1] = uint32(pair >> 32)
	cpu.regs[r1|1] = uint32(pair)
	return 0
}

func (cpu *CPU) setPairCC(result int64, overflow bool) {
	switch {
	case overflow:
		cpu.cc = CCOver
	case result == 0:
		cpu.cc = CCEqual
	case result < 0:
		cpu.cc = CCLow
	default:
		cpu.cc = CCHigh
	}
}
