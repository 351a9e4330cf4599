/*
   BAL370 standard (fixed-point, logical, branch, move) instruction execution

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

// operand2Word returns the RX/RR second operand as a full 32-bit value:
// the R2 register for RR forms, the memory word at address1 for RX forms.
func (cpu *CPU) operand2Word(step *stepInfo) uint32 {
	if step.format == opcodemap.RR {
		return step.src2
	}
	if step.opcode == opcodemap.OpAH || step.opcode == opcodemap.OpSH ||
		step.opcode == opcodemap.OpCH || step.opcode == opcodemap.OpMH {
		return signExtendHalf(cpu.mem.GetHalf(step.address1))
	}
	return cpu.mem.GetWord(step.address1)
}

func signExtendHalf(h uint16) uint32 {
	return uint32(int32(int16(h)))
}

// setArithCC sets CC per the signed arithmetic rule (§4.4): overflow if the
// true mathematical sum exceeds 32-bit signed range, else zero/negative/positive.
func (cpu *CPU) setArithCC(result int64) {
	switch {
	case result > 2147483647 || result < -2147483648:
		cpu.cc = CCOver
	case result == 0:
		cpu.cc = CCEqual
	case result < 0:
		cpu.cc = CCLow
	default:
		cpu.cc = CCHigh
	}
}

// opA implements A/AR/AH: signed 32-bit add.
func (cpu *CPU) opA(step *stepInfo) uint16 {
	op1 := int64(int32(step.src1))
	op2 := int64(int32(cpu.operand2Word(step)))
	sum := op1 + op2
	cpu.regs[step.R1] = uint32(sum)
	cpu.setArithCC(sum)
	return 0
}

// opS implements S/SR/SH: signed 32-bit subtract.
func (cpu *CPU) opS(step *stepInfo) uint16 {
	op1 := int64(int32(step.src1))
	op2 := int64(int32(cpu.operand2Word(step)))
	diff := op1 - op2
	cpu.regs[step.R1] = uint32(diff)
	cpu.setArithCC(diff)
	return 0
}

// opAL implements AL/ALR: logical add. CC is driven by (result nonzero,
// carry out of bit 0), per the IBM Principles of Operation logical-add
// table: 0 zero & no carry, 1 nonzero & no carry, 2 zero & carry,
// 3 nonzero & carry.
func (cpu *CPU) opAL(step *stepInfo) uint16 {
	op1 := uint64(step.src1)
	op2 := uint64(cpu.operand2Word(step))
	sum := op1 + op2
	result := uint32(sum)
	carry := sum > 0xFFFFFFFF
	cpu.regs[step.R1] = result
	cpu.cc = logicalAddCC(result, carry)
	return 0
}

// opSL implements SL/SLR: logical subtract, computed as op1 + ^op2 + 1 so
// carry-out has the same meaning as for AL. CC=3 (nonzero & carry) is not
// produced for subtract per the architecture.
func (cpu *CPU) opSL(step *stepInfo) uint16 {
	op1 := uint64(step.src1)
	op2 := uint64(cpu.operand2Word(step))
	sum := op1 + uint64(^uint32(op2)) + 1
	result := uint32(sum)
	carry := sum > 0xFFFFFFFF
	cpu.regs[step.R1] = result
	cpu.cc = logicalSubCC(result, carry)
	return 0
}

func logicalAddCC(result uint32, carry bool) CC {
	switch {
	case result == 0 && !carry:
		return CCEqual
	case result != 0 && !carry:
		return CCLow
	case result == 0 && carry:
		return CCHigh
	default:
		return CCOver
	}
}

func logicalSubCC(result uint32, carry bool) CC {
	switch {
	case result == 0 && carry:
		return CCEqual
	case result != 0 && carry:
		return CCLow
	default:
		return CCHigh
	}
}

// opM implements M/MR/MH: signed multiply into the even/odd register pair
// R1,R1+1. CC is unchanged.
func (cpu *CPU) opM(step *stepInfo) uint16 {
	op1 := int64(int32(cpu.regs[step.R1|1]))
	op2 := int64(int32(cpu.operand2Word(step)))
	product := op1 * op2
	r1 := step.R1 &^ 1
	cpu.regs[r1] = uint32(product >> 32)
	cpu.regs[r1|1] = uint32(product)
	return 0
}

// opD implements D/DR: signed divide of the 64-bit value in R1,R1+1 by the
// operand. Quotient into R1+1, remainder into R1.
func (cpu *CPU) opD(step *stepInfo) uint16 {
	r1 := step.R1 &^ 1
	dividend := int64(cpu.regs[r1])<<32 | int64(cpu.regs[r1|1])
	divisor := int64(int32(cpu.operand2Word(step)))
	if divisor == 0 {
		return 9
	}
	quotient := dividend / divisor
	remainder := dividend % divisor
	cpu.regs[r1] = uint32(remainder)
	cpu.regs[r1|1] = uint32(quotient)
	return 0
}

// opC implements C/CR/CH: signed compare.
func (cpu *CPU) opC(step *stepInfo) uint16 {
	op1 := int32(step.src1)
	op2 := int32(cpu.operand2Word(step))
	switch {
	case op1 == op2:
		cpu.cc = CCEqual
	case op1 < op2:
		cpu.cc = CCLow
	default:
		cpu.cc = CCHigh
	}
	return 0
}

// opCL implements CL/CLR/CLI/CLC: unsigned logical compare, byte by byte
// left to right, stopping at the first mismatch.
func (cpu *CPU) opCL(step *stepInfo) uint16 {
	var a, b []byte
	switch step.opcode {
	case opcodemap.OpCLI:
		a = []byte{cpu.mem.GetByte(step.address1)}
		b = []byte{step.I2}
	case opcodemap.OpCLC:
		n := int(step.L1) + 1
		a = cpu.mem.GetBytes(step.address1, n)
		b = cpu.mem.GetBytes(step.address2, n)
	case opcodemap.OpCLR:
		a = u32Bytes(step.src1)
		b = u32Bytes(step.src2)
	default: // OpCL
		a = u32Bytes(step.src1)
		b = u32Bytes(cpu.operand2Word(step))
	}
	cpu.cc = compareBytes(a, b)
	return 0
}

func u32Bytes(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func compareBytes(a, b []byte) CC {
	for i := range a {
		if a[i] == b[i] {
			continue
		}
		if a[i] < b[i] {
			return CCLow
		}
		return CCHigh
	}
	return CCEqual
}

// opCLM implements Compare Logical under Mask: the R2 field is a 4-bit
// mask selecting which bytes of R1 participate, consuming popcount(mask)
// bytes of the storage operand. CC=0 if mask is zero.
func (cpu *CPU) opCLM(step *stepInfo) uint16 {
	mask := step.R2
	if mask == 0 {
		cpu.cc = CCEqual
		return 0
	}
	regBytes := u32Bytes(step.src1)
	var a, b []byte
	addr := step.address2
	for i := 0; i < 4; i++ {
		if mask&(0x8>>i) == 0 {
			continue
		}
		a = append(a, regBytes[i])
		b = append(b, cpu.mem.GetByte(addr))
		addr++
	}
	cpu.cc = compareBytes(a, b)
	return 0
}

// opCLCL implements Compare Logical Long: operands addressed by register
// pairs (address even, length odd). Pad byte is R2+1's high byte. CC=3
// (destructive overlap) is never produced, matching the documented source
// behavior (§9).
func (cpu *CPU) opCLCL(step *stepInfo) uint16 {
	r1, r2 := step.R1&^1, step.R2&^1
	addr1, len1 := cpu.regs[r1], cpu.regs[r1|1]&0x00FFFFFF
	addr2, len2 := cpu.regs[r2], cpu.regs[r2|1]&0x00FFFFFF
	pad := byte(cpu.regs[r2|1] >> 24)

	cc := CCEqual
	n := len1
	if len2 > n {
		n = len2
	}
	for i := uint32(0); i < n; i++ {
		var b1, b2 byte
		if i < len1 {
			b1 = cpu.mem.GetByte(addr1 + i)
		} else {
			b1 = pad
		}
		if i < len2 {
			b2 = cpu.mem.GetByte(addr2 + i)
		} else {
			b2 = pad
		}
		if b1 != b2 {
			if b1 < b2 {
				cc = CCLow
			} else {
				cc = CCHigh
			}
			break
		}
	}
	cpu.regs[r1] = addr1 + len1
	cpu.regs[r1|1] = 0
	cpu.regs[r2] = addr2 + len2
	cpu.regs[r2|1] = 0
	cpu.cc = cc
	return 0
}

// opMVCL implements Move Long: same addressing as CLCL, copies the shorter
// of the two lengths worth of bytes then pads the destination with pad if
// source is shorter. CC=3 (destructive overlap) is never produced (§9).
func (cpu *CPU) opMVCL(step *stepInfo) uint16 {
	r1, r2 := step.R1&^1, step.R2&^1
	dstAddr, dstLen := cpu.regs[r1], cpu.regs[r1|1]&0x00FFFFFF
	srcAddr, srcLen := cpu.regs[r2], cpu.regs[r2|1]&0x00FFFFFF
	pad := byte(cpu.regs[r2|1] >> 24)

	cc := CCEqual
	switch {
	case dstLen < srcLen:
		cc = CCLow
	case dstLen > srcLen:
		cc = CCHigh
	}

	for i := uint32(0); i < dstLen; i++ {
		var b byte
		if i < srcLen {
			b = cpu.mem.GetByte(srcAddr + i)
		} else {
			b = pad
		}
		cpu.mem.PutByte(dstAddr+i, b)
	}

	cpu.regs[r1] = dstAddr + dstLen
	cpu.regs[r1|1] = 0
	if srcLen > dstLen {
		cpu.regs[r2] = srcAddr + dstLen
		cpu.regs[r2|1] = (srcLen - dstLen) | (uint32(pad) << 24)
	} else {
		cpu.regs[r2] = srcAddr + srcLen
		cpu.regs[r2|1] = uint32(pad) << 24
	}
	cpu.cc = cc
	return 0
}

// opLR/opL load a register from another register / from storage.
func (cpu *CPU) opLR(step *stepInfo) uint16 {
	cpu.regs[step.R1] = step.src2
	return 0
}

func (cpu *CPU) opL(step *stepInfo) uint16 {
	cpu.regs[step.R1] = cpu.mem.GetWord(step.address1)
	return 0
}

// opLH loads a sign-extended halfword.
func (cpu *CPU) opLH(step *stepInfo) uint16 {
	cpu.regs[step.R1] = signExtendHalf(cpu.mem.GetHalf(step.address1))
	return 0
}

// opLA loads the effective address itself. The documented source bug
// (§9): it does not mask the result to 24 bits, unlike real S/370
// hardware; reproduced here as specified rather than silently "fixed".
func (cpu *CPU) opLA(step *stepInfo) uint16 {
	cpu.regs[step.R1] = step.address1
	return 0
}

// opLPR/opLNR/opLCR/opLTR: load positive/negative/complement/and-test.
func (cpu *CPU) opLPR(step *stepInfo) uint16 {
	v := int32(step.src2)
	if v < 0 {
		v = -v
	}
	cpu.regs[step.R1] = uint32(v)
	cpu.setArithCC(int64(v))
	return 0
}

func (cpu *CPU) opLNR(step *stepInfo) uint16 {
	v := int32(step.src2)
	if v > 0 {
		v = -v
	}
	cpu.regs[step.R1] = uint32(v)
	cpu.setArithCC(int64(v))
	return 0
}

func (cpu *CPU) opLCR(step *stepInfo) uint16 {
	v := -int64(int32(step.src2))
	cpu.regs[step.R1] = uint32(v)
	cpu.setArithCC(v)
	return 0
}

func (cpu *CPU) opLTR(step *stepInfo) uint16 {
	cpu.regs[step.R1] = step.src2
	cpu.setArithCC(int64(int32(step.src2)))
	return 0
}

// opST/opSTH/opSTC store a register's word/halfword/low byte to storage.
func (cpu *CPU) opST(step *stepInfo) uint16 {
	cpu.mem.PutWord(step.address1, step.src1)
	return 0
}

func (cpu *CPU) opSTH(step *stepInfo) uint16 {
	cpu.mem.PutHalf(step.address1, uint16(step.src1))
	return 0
}

func (cpu *CPU) opSTC(step *stepInfo) uint16 {
	cpu.mem.PutByte(step.address1, byte(step.src1))
	return 0
}

// opIC inserts the low byte from storage into R1's low byte; other bytes
// of R1 are unaffected.
func (cpu *CPU) opIC(step *stepInfo) uint16 {
	cpu.regs[step.R1] = (step.src1 &^ 0xFF) | uint32(cpu.mem.GetByte(step.address1))
	return 0
}

// opSTM/opLM store/load the registers R1..R2 (wrapping through 15 to 0).
func (cpu *CPU) opSTM(step *stepInfo) uint16 {
	addr := step.address2
	r := step.R1
	for {
		cpu.mem.PutWord(addr, cpu.regs[r])
		addr += 4
		if r == step.R2 {
			break
		}
		r = (r + 1) & 0xF
	}
	return 0
}

func (cpu *CPU) opLM(step *stepInfo) uint16 {
	addr := step.address2
	r := step.R1
	for {
		cpu.regs[r] = cpu.mem.GetWord(addr)
		addr += 4
		if r == step.R2 {
			break
		}
		r = (r + 1) & 0xF
	}
	return 0
}

// opICM inserts bytes under mask from storage into R1. The documented
// source bug (§9): CC is only ever set to 0 here, never 1/2 based on the
// inserted value's sign, reproduced as specified.
func (cpu *CPU) opICM(step *stepInfo) uint16 {
	mask := step.R2
	result := cpu.regs[step.R1]
	addr := step.address2
	anyNonzero := false
	for i := 0; i < 4; i++ {
		bit := uint(0x8 >> i)
		if mask&uint8(bit) == 0 {
			continue
		}
		b := cpu.mem.GetByte(addr)
		addr++
		shift := uint(24 - 8*i)
		result = (result &^ (0xFF << shift)) | (uint32(b) << shift)
		if b != 0 {
			anyNonzero = true
		}
	}
	cpu.regs[step.R1] = result
	if !anyNonzero {
		cpu.cc = CCEqual
	} else {
		cpu.cc = CCEqual // documented bug: never reports 1/2, see §9.
	}
	return 0
}

// opSTCM is ICM's inverse: stores selected bytes of R1 to storage under mask.
func (cpu *CPU) opSTCM(step *stepInfo) uint16 {
	mask := step.R2
	regBytes := u32Bytes(step.src1)
	addr := step.address2
	for i := 0; i < 4; i++ {
		if mask&uint8(0x8>>i) == 0 {
			continue
		}
		cpu.mem.PutByte(addr, regBytes[i])
		addr++
	}
	return 0
}

// opCS/opCDS: compare and swap / compare double and swap.
func (cpu *CPU) opCS(step *stepInfo) uint16 {
	cur := cpu.mem.GetWord(step.address2)
	if cur == step.src1 {
		cpu.mem.PutWord(step.address2, step.src2)
		cpu.cc = CCEqual
	} else {
		cpu.regs[step.R1] = cur
		cpu.cc = CCLow
	}
	return 0
}

func (cpu *CPU) opCDS(step *stepInfo) uint16 {
	r1, r2 := step.R1&^1, step.R2&^1
	want := uint64(cpu.regs[r1])<<32 | uint64(cpu.regs[r1|1])
	cur := uint64(cpu.mem.GetWord(step.address2))<<32 | uint64(cpu.mem.GetWord(step.address2+4))
	if cur == want {
		newVal := uint64(cpu.regs[r2])<<32 | uint64(cpu.regs[r2|1])
		cpu.mem.PutWord(step.address2, uint32(newVal>>32))
		cpu.mem.PutWord(step.address2+4, uint32(newVal))
		cpu.cc = CCEqual
	} else {
		cpu.regs[r1] = uint32(cur >> 32)
		cpu.regs[r1|1] = uint32(cur)
		cpu.cc = CCLow
	}
	return 0
}

// opN/opO/opX implement AND/OR/XOR across RR, RX, SI and SS forms.
func (cpu *CPU) opN(step *stepInfo) uint16 { return cpu.logicalOp(step, func(a, b byte) byte { return a & b }) }
func (cpu *CPU) opO(step *stepInfo) uint16 { return cpu.logicalOp(step, func(a, b byte) byte { return a | b }) }
func (cpu *CPU) opX(step *stepInfo) uint16 { return cpu.logicalOp(step, func(a, b byte) byte { return a ^ b }) }

func (cpu *CPU) logicalOp(step *stepInfo, f func(a, b byte) byte) uint16 {
	switch step.format {
	case opcodemap.RR:
		a := u32Bytes(step.src1)
		b := u32Bytes(step.src2)
		var out uint32
		for i := 0; i < 4; i++ {
			out = out<<8 | uint32(f(a[i], b[i]))
		}
		cpu.regs[step.R1] = out
		cpu.setLogicalCC(out)
	case opcodemap.RX:
		a := u32Bytes(step.src1)
		b := u32Bytes(cpu.mem.GetWord(step.address1))
		var out uint32
		for i := 0; i < 4; i++ {
			out = out<<8 | uint32(f(a[i], b[i]))
		}
		cpu.regs[step.R1] = out
		cpu.setLogicalCC(out)
	case opcodemap.SI:
		v := f(cpu.mem.GetByte(step.address1), step.I2)
		cpu.mem.PutByte(step.address1, v)
		cpu.setLogicalCC(uint32(v))
	case opcodemap.SS:
		n := int(step.L1) + 1
		a := cpu.mem.GetBytes(step.address1, n)
		b := cpu.mem.GetBytes(step.address2, n)
		out := make([]byte, n)
		var any byte
		for i := 0; i < n; i++ {
			out[i] = f(a[i], b[i])
			any |= out[i]
		}
		cpu.mem.PutBytes(step.address1, out)
		cpu.setLogicalCC(uint32(any))
	}
	return 0
}

func (cpu *CPU) setLogicalCC(v uint32) {
	if v == 0 {
		cpu.cc = CCEqual
	} else {
		cpu.cc = CCLow
	}
}

// opTM: test under mask sets CC from the bits of the tested byte selected
// by the immediate mask (0 none set, 1 some set not all, 2 unused here,
// 3 all selected bits set).
func (cpu *CPU) opTM(step *stepInfo) uint16 {
	v := cpu.mem.GetByte(step.address1) & step.I2
	switch {
	case v == 0:
		cpu.cc = CCEqual
	case v == step.I2:
		cpu.cc = CCOver
	default:
		cpu.cc = CCLow
	}
	return 0
}

// opMVI stores an immediate byte.
func (cpu *CPU) opMVI(step *stepInfo) uint16 {
	cpu.mem.PutByte(step.address1, step.I2)
	return 0
}

// opMVC copies LL+1 bytes from the second operand to the first.
func (cpu *CPU) opMVC(step *stepInfo) uint16 {
	n := int(step.L1) + 1
	cpu.mem.PutBytes(step.address1, cpu.mem.GetBytes(step.address2, n))
	return 0
}

// opMVN/opMVZ move only the numeric/zone nibbles of each byte, leaving the
// other nibble of the destination untouched.
func (cpu *CPU) opMVN(step *stepInfo) uint16 {
	n := int(step.L1) + 1
	src := cpu.mem.GetBytes(step.address2, n)
	dst := cpu.mem.GetBytes(step.address1, n)
	for i := range dst {
		dst[i] = (dst[i] & 0xF0) | (src[i] & 0x0F)
	}
	cpu.mem.PutBytes(step.address1, dst)
	return 0
}

func (cpu *CPU) opMVZ(step *stepInfo) uint16 {
	n := int(step.L1) + 1
	src := cpu.mem.GetBytes(step.address2, n)
	dst := cpu.mem.GetBytes(step.address1, n)
	for i := range dst {
		dst[i] = (dst[i] & 0x0F) | (src[i] & 0xF0)
	}
	cpu.mem.PutBytes(step.address1, dst)
	return 0
}

// opTR translates LL+1 bytes of the first operand through the 256-entry
// function table at the second operand, overwriting the argument in place
// as it goes. Documented source bug (§9): if the function table overlaps
// the argument region, later lookups observe earlier overwrites, exactly
// as reproduced here.
func (cpu *CPU) opTR(step *stepInfo) uint16 {
	n := int(step.L1) + 1
	for i := 0; i < n; i++ {
		addr := step.address1 + uint32(i)
		b := cpu.mem.GetByte(addr)
		cpu.mem.PutByte(addr, cpu.mem.GetByte(step.address2+uint32(b)))
	}
	return 0
}

// opTRT scans the first operand through the function table at the second
// operand looking for the first nonzero table entry; stops and records the
// scan address in R1 and the matched table byte in the low byte of R2.
func (cpu *CPU) opTRT(step *stepInfo) uint16 {
	n := int(step.L1) + 1
	cpu.cc = CCEqual
	for i := 0; i < n; i++ {
		addr := step.address1 + uint32(i)
		b := cpu.mem.GetByte(addr)
		f := cpu.mem.GetByte(step.address2 + uint32(b))
		if f != 0 {
			cpu.regs[1] = (cpu.regs[1] &^ 0x00FFFFFF) | addr
			cpu.regs[2] = (cpu.regs[2] &^ 0xFF) | uint32(f)
			if i == n-1 {
				cpu.cc = CCHigh
			} else {
				cpu.cc = CCLow
			}
			return 0
		}
	}
	return 0
}
