/*
   BAL370 instruction decoder

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

import "github.com/rcornwell/bal370/emu/opcodemap"

// formatLength returns the instruction length in bytes for a format.
func formatLength(f opcodemap.Format) uint32 {
	switch f {
	case opcodemap.RR:
		return 2
	case opcodemap.RX, opcodemap.SI, opcodemap.RS:
		return 4
	case opcodemap.SS, opcodemap.SS2:
		return 6
	default:
		return 2
	}
}

// decode reads the instruction at pc from memory and decodes it.
func (cpu *CPU) decode(pc uint32) (*stepInfo, bool) {
	op := cpu.mem.GetByte(pc)
	format, ok := opcodemap.FormatOf(op)
	if !ok {
		return nil, false
	}
	raw := cpu.mem.GetBytes(pc, int(formatLength(format)))
	return buildStep(raw)
}

// buildStep destructures raw instruction bytes per their format's nibble
// layout (spec table in §4.1) into a stepInfo. It is a pure function of
// the bytes, replacing the source's text-substituted field extraction, and
// is shared by normal fetch and EX-staged fetch.
func buildStep(raw []byte) (*stepInfo, bool) {
	op := raw[0]
	format, ok := opcodemap.FormatOf(op)
	if !ok {
		return nil, false
	}
	length := formatLength(format)

	step := &stepInfo{opcode: op, format: format, length: length}

	switch format {
	case opcodemap.RR:
		step.R1 = raw[1] >> 4
		step.R2 = raw[1] & 0x0F

	case opcodemap.RX:
		step.R1 = raw[1] >> 4
		step.X2 = raw[1] & 0x0F
		step.B2 = raw[2] >> 4
		step.D2 = uint32(raw[2]&0x0F)<<8 | uint32(raw[3])

	case opcodemap.SI:
		step.I2 = raw[1]
		step.B1 = raw[2] >> 4
		step.D1 = uint32(raw[2]&0x0F)<<8 | uint32(raw[3])

	case opcodemap.RS:
		step.R1 = raw[1] >> 4
		step.R2 = raw[1] & 0x0F
		step.B2 = raw[2] >> 4
		step.D2 = uint32(raw[2]&0x0F)<<8 | uint32(raw[3])

	case opcodemap.SS:
		step.L1 = raw[1] // LL length byte, used whole for MVC/CLC/etc.
		step.B1 = raw[2] >> 4
		step.D1 = uint32(raw[2]&0x0F)<<8 | uint32(raw[3])
		step.B3 = raw[4] >> 4
		step.D3 = uint32(raw[4]&0x0F)<<8 | uint32(raw[5])

	case opcodemap.SS2:
		step.L1 = raw[1] >> 4
		step.L2 = raw[1] & 0x0F
		step.B1 = raw[2] >> 4
		step.D1 = uint32(raw[2]&0x0F)<<8 | uint32(raw[3])
		step.B3 = raw[4] >> 4
		step.D3 = uint32(raw[4]&0x0F)<<8 | uint32(raw[5])
	}

	return step, true
}

// calcAddress computes an effective address: D + (regs[X] if X!=0) +
// (regs[B] if B!=0). A zero field omits its component entirely -
// architecturally distinct from "add register 0", and must not be
// special-cased as "add zero".
func (cpu *CPU) calcAddress(b, x uint8, d uint32) uint32 {
	addr := d
	if x != 0 {
		addr += cpu.regs[x]
	}
	if b != 0 {
		addr += cpu.regs[b]
	}
	return addr
}

// resolveAddresses fills in address1/address2 and src1/src2 for a decoded
// step, per its format's addressing mode.
func (cpu *CPU) resolveAddresses(step *stepInfo) {
	switch step.format {
	case opcodemap.RR:
		step.src1 = cpu.regs[step.R1]
		step.src2 = cpu.regs[step.R2]

	case opcodemap.RX:
		step.src1 = cpu.regs[step.R1]
		step.address1 = cpu.calcAddress(step.B2, step.X2, step.D2)

	case opcodemap.SI:
		step.address1 = cpu.calcAddress(step.B1, 0, step.D1)

	case opcodemap.RS:
		step.src1 = cpu.regs[step.R1]
		step.src2 = cpu.regs[step.R2]
		step.address2 = cpu.calcAddress(step.B2, 0, step.D2)

	case opcodemap.SS, opcodemap.SS2:
		step.address1 = cpu.calcAddress(step.B1, 0, step.D1)
		step.address2 = cpu.calcAddress(step.B3, 0, step.D3)
	}
}
