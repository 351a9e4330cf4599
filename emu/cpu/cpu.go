/*
   CPU: main CPU instruction fetch and execute.

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
   ROBERT M SUPNIK BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

*/

package cpu

import (
	"fmt"

	"github.com/rcornwell/bal370/emu/opcodemap"
)

// Error codes a Step can fail with; these are the "abnormal termination"
// reasons §4.2/§7 name.
var (
	ErrUnknownOpcode = fmt.Errorf("cpu: opcode not in decode table")
	ErrPCOutOfRange  = fmt.Errorf("cpu: program counter out of range")
	ErrExStaging     = fmt.Errorf("cpu: execute staging exhausted")
)

// createTable builds the opcode -> handler dispatch table.
func (cpu *CPU) createTable() {
	for i := range cpu.table {
		cpu.table[i] = (*CPU).opUnknown
	}

	set := func(op byte, fn func(*CPU, *stepInfo) uint16) {
		cpu.table[op] = fn
	}

	set(opcodemap.OpBALR, (*CPU).opBAL)
	set(opcodemap.OpBAL, (*CPU).opBAL)
	set(opcodemap.OpBCTR, (*CPU).opBCT)
	set(opcodemap.OpBCT, (*CPU).opBCT)
	set(opcodemap.OpBCR, (*CPU).opBC)
	set(opcodemap.OpBC, (*CPU).opBC)
	set(opcodemap.OpBXH, (*CPU).opBXH)
	set(opcodemap.OpBXLE, (*CPU).opBXLE)
	set(opcodemap.OpSVC, (*CPU).opSVC)
	set(opcodemap.OpEX, (*CPU).opEX)

	set(opcodemap.OpLR, (*CPU).opLR)
	set(opcodemap.OpL, (*CPU).opL)
	set(opcodemap.OpLH, (*CPU).opLH)
	set(opcodemap.OpLA, (*CPU).opLA)
	set(opcodemap.OpLPR, (*CPU).opLPR)
	set(opcodemap.OpLNR, (*CPU).opLNR)
	set(opcodemap.OpLCR, (*CPU).opLCR)
	set(opcodemap.OpLTR, (*CPU).opLTR)
	set(opcodemap.OpST, (*CPU).opST)
	set(opcodemap.OpSTH, (*CPU).opSTH)
	set(opcodemap.OpSTC, (*CPU).opSTC)
	set(opcodemap.OpIC, (*CPU).opIC)
	set(opcodemap.OpSTM, (*CPU).opSTM)
	set(opcodemap.OpLM, (*CPU).opLM)
	set(opcodemap.OpICM, (*CPU).opICM)
	set(opcodemap.OpSTCM, (*CPU).opSTCM)
	set(opcodemap.OpCS, (*CPU).opCS)
	set(opcodemap.OpCDS, (*CPU).opCDS)

	set(opcodemap.OpA, (*CPU).opA)
	set(opcodemap.OpAR, (*CPU).opA)
	set(opcodemap.OpAH, (*CPU).opA)
	set(opcodemap.OpS, (*CPU).opS)
	set(opcodemap.OpSR, (*CPU).opS)
	set(opcodemap.OpSH, (*CPU).opS)
	set(opcodemap.OpAL, (*CPU).opAL)
	set(opcodemap.OpALR, (*CPU).opAL)
	set(opcodemap.OpSL, (*CPU).opSL)
	set(opcodemap.OpSLR, (*CPU).opSL)
	set(opcodemap.OpM, (*CPU).opM)
	set(opcodemap.OpMR, (*CPU).opM)
	set(opcodemap.OpMH, (*CPU).opM)
	set(opcodemap.OpD, (*CPU).opD)
	set(opcodemap.OpDR, (*CPU).opD)

	set(opcodemap.OpC, (*CPU).opC)
	set(opcodemap.OpCR, (*CPU).opC)
	set(opcodemap.OpCH, (*CPU).opC)
	set(opcodemap.OpCL, (*CPU).opCL)
	set(opcodemap.OpCLR, (*CPU).opCL)
	set(opcodemap.OpCLI, (*CPU).opCL)
	set(opcodemap.OpCLC, (*CPU).opCL)
	set(opcodemap.OpCLM, (*CPU).opCLM)
	set(opcodemap.OpCLCL, (*CPU).opCLCL)
	set(opcodemap.OpMVCL, (*CPU).opMVCL)

	set(opcodemap.OpN, (*CPU).opN)
	set(opcodemap.OpNR, (*CPU).opN)
	set(opcodemap.OpNI, (*CPU).opN)
	set(opcodemap.OpNC, (*CPU).opN)
	set(opcodemap.OpO, (*CPU).opO)
	set(opcodemap.OpOR, (*CPU).opO)
	set(opcodemap.OpOI, (*CPU).opO)
	set(opcodemap.OpOC, (*CPU).opO)
	set(opcodemap.OpX, (*CPU).opX)
	set(opcodemap.OpXR, (*CPU).opX)
	set(opcodemap.OpXI, (*CPU).opX)
	set(opcodemap.OpXC, (*CPU).opX)
	set(opcodemap.OpTM, (*CPU).opTM)
	set(opcodemap.OpMVI, (*CPU).opMVI)
	set(opcodemap.OpMVC, (*CPU).opMVC)
	set(opcodemap.OpMVN, (*CPU).opMVN)
	set(opcodemap.OpMVZ, (*CPU).opMVZ)
	set(opcodemap.OpTR, (*CPU).opTR)
	set(opcodemap.OpTRT, (*CPU).opTRT)

	set(opcodemap.OpSLA, (*CPU).opSLA)
	set(opcodemap.OpSLL, (*CPU).opSLL)
	set(opcodemap.OpSLDA, (*CPU).opSLDA)
	set(opcodemap.OpSLDL, (*CPU).opSLDL)
	set(opcodemap.OpSRA, (*CPU).opSRA)
	set(opcodemap.OpSRL, (*CPU).opSRL)
	set(opcodemap.OpSRDA, (*CPU).opSRDA)
	set(opcodemap.OpSRDL, (*CPU).opSRDL)

	set(opcodemap.OpAP, (*CPU).opAP)
	set(opcodemap.OpSP, (*CPU).opSP)
	set(opcodemap.OpMP, (*CPU).opMP)
	set(opcodemap.OpDP, (*CPU).opDP)
	set(opcodemap.OpZAP, (*CPU).opZAP)
	set(opcodemap.OpCP, (*CPU).opCP)
	set(opcodemap.OpSRP, (*CPU).opSRP)
	set(opcodemap.OpPACK, (*CPU).opPACK)
	set(opcodemap.OpUNPK, (*CPU).opUNPK)
	set(opcodemap.OpMVO, (*CPU).opMVO)
	set(opcodemap.OpED, (*CPU).opED)
	set(opcodemap.OpEDMK, (*CPU).opEDMK)
	set(opcodemap.OpCVB, (*CPU).opCVB)
	set(opcodemap.OpCVD, (*CPU).opCVD)
}

// opUnknown handles any opcode byte absent from the table.
func (cpu *CPU) opUnknown(_ *stepInfo) uint16 {
	return 1
}

// Step executes exactly one instruction cycle: fetch, decode, execute,
// advance PC, check termination. It mirrors the source's per-cycle
// sequence in §4.2 with the sentinel PCs replaced by the execState variant
// for EX-staging (termination still checks the TerminateAddr value
// directly, since that is architecturally R14's own content, not a
// control-flow sentinel the engine invents).
func (cpu *CPU) Step() StepEvent {
	if cpu.PC == TerminateAddr {
		cpu.state = stateTerminated
		ev := StepEvent{PC: cpu.PC, CC: cpu.cc, Regs: cpu.regs, Halt: true}
		cpu.emit(ev)
		return ev
	}

	var step *stepInfo
	var ok bool
	staged := cpu.state == stateFetchStaged

	if staged {
		step, ok = buildStep(cpu.stage.bytes)
		if !ok {
			return cpu.fail(ErrExStaging)
		}
	} else {
		if !cpu.mem.CheckAddr(cpu.PC, 1) {
			return cpu.fail(ErrPCOutOfRange)
		}
		step, ok = cpu.decode(cpu.PC)
		if !ok {
			return cpu.fail(ErrUnknownOpcode)
		}
	}

	cpu.resolveAddresses(step)

	nextPC := cpu.PC + step.length
	if staged {
		nextPC = cpu.stage.resumePC
		cpu.state = stateFetch
	}
	cpu.PC = nextPC

	handler := cpu.table[step.opcode]
	if rc := handler(cpu, step); rc != 0 {
		return cpu.fail(fmt.Errorf("cpu: instruction fault rc=%d at opcode %02X", rc, step.opcode))
	}

	ev := StepEvent{
		PC:       cpu.PC,
		CC:       cpu.cc,
		Regs:     cpu.regs,
		Mnemonic: opcodemap.Mnemonic(step.opcode),
		R1:       int(step.R1),
	}
	cpu.emit(ev)
	return ev
}

// Run executes instructions until termination, an error, or a breakpoint
// is hit (checked before executing the instruction at that address).
func (cpu *CPU) Run() StepEvent {
	for {
		if cpu.state != stateFetchStaged && cpu.AtBreakpoint(cpu.PC) {
			return StepEvent{PC: cpu.PC, CC: cpu.cc, Regs: cpu.regs}
		}
		ev := cpu.Step()
		if ev.Halt || ev.Err != nil {
			return ev
		}
	}
}

func (cpu *CPU) fail(err error) StepEvent {
	cpu.state = stateTerminated
	ev := StepEvent{PC: cpu.PC, CC: cpu.cc, Regs: cpu.regs, Halt: true, Err: err}
	cpu.emit(ev)
	return ev
}

func (cpu *CPU) emit(ev StepEvent) {
	if cpu.Steps == nil {
		return
	}
	select {
	case cpu.Steps <- ev:
	default:
	}
}

// stageExecute installs the EX subject instruction for the next Step call.
func (cpu *CPU) stageExecute(bytes []byte, resumePC uint32) {
	cpu.state = stateFetchStaged
	cpu.stage = exStage{bytes: bytes, resumePC: resumePC}
}
