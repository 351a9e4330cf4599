/*
   BAL370 branch family instruction execution

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

// opBAL implements BAL/BALR: link R1 with the return address (PC has
// already been advanced past this instruction by Step), then branch.
// BALR with R2=0 is architecturally a no-branch link.
func (cpu *CPU) opBAL(step *stepInfo) uint16 {
	link := cpu.PC
	cpu.regs[step.R1] = link
	if step.format == opcodemap.RR {
		if step.R2 != 0 {
			cpu.PC = cpu.regs[step.R2]
		}
		return 0
	}
	cpu.PC = step.address1
	return 0
}

// opBCT implements BCT/BCTR: decrement R1, branch if the result is
// nonzero. BCTR with R2=0 never branches.
func (cpu *CPU) opBCT(step *stepInfo) uint16 {
	result := int32(step.src1) - 1
	cpu.regs[step.R1] = uint32(result)
	branch := result != 0

	if step.format == opcodemap.RR {
		if step.R2 == 0 {
			branch = false
		}
		if branch {
			cpu.PC = cpu.regs[step.R2]
		}
		return 0
	}
	if branch {
		cpu.PC = step.address1
	}
	return 0
}

// opBC implements BC/BCR: branch if (mask & CC-one-hot) is nonzero. Mask 0
// never branches; mask 0xF is unconditional. BCR with R2=0 never branches.
func (cpu *CPU) opBC(step *stepInfo) uint16 {
	branch := step.R1&cpu.cc.Mask() != 0

	if step.format == opcodemap.RR {
		if step.R2 == 0 {
			branch = false
		}
		if branch {
			cpu.PC = cpu.regs[step.R2]
		}
		return 0
	}
	if branch {
		cpu.PC = step.address1
	}
	return 0
}

// opBXH implements Branch on Index High: R1 += regs[R2]; if R2 is odd the
// same register is the compare value, else R2+1 is. Branch if the new
// sum is strictly greater than the compare value.
func (cpu *CPU) opBXH(step *stepInfo) uint16 {
	sum, compare := cpu.bxhIncrement(step)
	if int32(sum) > int32(compare) {
		cpu.PC = step.address2
	}
	return 0
}

// opBXLE implements Branch on Index Low or Equal: same increment rule as
// BXH, branch if the new sum is less than or equal to the compare value.
func (cpu *CPU) opBXLE(step *stepInfo) uint16 {
	sum, compare := cpu.bxhIncrement(step)
	if int32(sum) <= int32(compare) {
		cpu.PC = step.address2
	}
	return 0
}

func (cpu *CPU) bxhIncrement(step *stepInfo) (sum, compare uint32) {
	increment := cpu.regs[step.R2]
	sum = cpu.regs[step.R1] + increment
	cpu.regs[step.R1] = sum
	compareReg := step.R2
	if step.R2%2 == 0 {
		compareReg = step.R2 + 1
	}
	compare = cpu.regs[compareReg]
	return sum, compare
}
