/*
   BAL370 opcode constants

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

// Package opcodemap holds the opcode byte constants for every mnemonic this
// engine executes. Privileged, floating-point and DAT-related opcodes from
// the full 370 instruction set are intentionally absent; see DESIGN.md.
package opcodemap

// Format tags the six instruction layouts the decoder understands.
type Format int

const (
	RR Format = iota
	RX
	SI
	RS
	SS
	SS2
)

const (
	OpBALR = 0x05
	OpBCTR = 0x06
	OpBCR  = 0x07
	OpSVC  = 0x0A
	OpMVCL = 0x0E
	OpCLCL = 0x0F
	OpLPR  = 0x10
	OpLNR  = 0x11
	OpLTR  = 0x12
	OpLCR  = 0x13
	OpNR   = 0x14
	OpCLR  = 0x15
	OpOR   = 0x16
	OpXR   = 0x17
	OpLR   = 0x18
	OpCR   = 0x19
	OpAR   = 0x1A
	OpSR   = 0x1B
	OpMR   = 0x1C
	OpDR   = 0x1D
	OpALR  = 0x1E
	OpSLR  = 0x1F

	OpSTH = 0x40
	OpLA  = 0x41
	OpSTC = 0x42
	OpIC  = 0x43
	OpEX  = 0x44
	OpBAL = 0x45
	OpBCT = 0x46
	OpBC  = 0x47
	OpLH  = 0x48
	OpCH  = 0x49
	OpAH  = 0x4A
	OpSH  = 0x4B
	OpMH  = 0x4C
	OpCVD = 0x4E
	OpCVB = 0x4F

	OpST = 0x50
	OpN  = 0x54
	OpCL = 0x55
	OpO  = 0x56
	OpX  = 0x57
	OpL  = 0x58
	OpC  = 0x59
	OpA  = 0x5A
	OpS  = 0x5B
	OpM  = 0x5C
	OpD  = 0x5D
	OpAL = 0x5E
	OpSL = 0x5F

	OpBXH  = 0x86
	OpBXLE = 0x87
	OpSRL  = 0x88
	OpSLL  = 0x89
	OpSRA  = 0x8A
	OpSLA  = 0x8B
	OpSRDL = 0x8C
	OpSLDL = 0x8D
	OpSRDA = 0x8E
	OpSLDA = 0x8F

	OpSTM = 0x90
	OpTM  = 0x91
	OpMVI = 0x92
	OpNI  = 0x94
	OpCLI = 0x95
	OpOI  = 0x96
	OpXI  = 0x97
	OpLM  = 0x98

	OpCS   = 0xBA
	OpCDS  = 0xBB
	OpCLM  = 0xBD
	OpSTCM = 0xBE
	OpICM  = 0xBF

	OpMVN = 0xD1
	OpMVC = 0xD2
	OpMVZ = 0xD3
	OpNC  = 0xD4
	OpCLC = 0xD5
	OpOC  = 0xD6
	OpXC  = 0xD7
	OpTR  = 0xDC
	OpTRT = 0xDD
	OpED  = 0xDE
	OpEDMK = 0xDF

	OpSRP  = 0xF0
	OpMVO  = 0xF1
	OpPACK = 0xF2
	OpUNPK = 0xF3
	OpZAP  = 0xF8
	OpCP   = 0xF9
	OpAP   = 0xFA
	OpSP   = 0xFB
	OpMP   = 0xFC
	OpDP   = 0xFD
)

// entry pairs an opcode's format with its mnemonic for decoder/disassembler
// table construction.
type entry struct {
	Format  Format
	Mnemonic string
}

// Table maps every supported opcode byte to its format and mnemonic.
var Table = map[byte]entry{
	OpBALR: {RR, "BALR"}, OpBCTR: {RR, "BCTR"}, OpBCR: {RR, "BCR"}, OpSVC: {RR, "SVC"},
	OpMVCL: {RR, "MVCL"}, OpCLCL: {RR, "CLCL"}, OpLPR: {RR, "LPR"}, OpLNR: {RR, "LNR"},
	OpLTR: {RR, "LTR"}, OpLCR: {RR, "LCR"}, OpNR: {RR, "NR"}, OpCLR: {RR, "CLR"},
	OpOR: {RR, "OR"}, OpXR: {RR, "XR"}, OpLR: {RR, "LR"}, OpCR: {RR, "CR"},
	OpAR: {RR, "AR"}, OpSR: {RR, "SR"}, OpMR: {RR, "MR"}, OpDR: {RR, "DR"},
	OpALR: {RR, "ALR"}, OpSLR: {RR, "SLR"},

	OpSTH: {RX, "STH"}, OpLA: {RX, "LA"}, OpSTC: {RX, "STC"}, OpIC: {RX, "IC"},
	OpEX: {RX, "EX"}, OpBAL: {RX, "BAL"}, OpBCT: {RX, "BCT"}, OpBC: {RX, "BC"},
	OpLH: {RX, "LH"}, OpCH: {RX, "CH"}, OpAH: {RX, "AH"}, OpSH: {RX, "SH"},
	OpMH: {RX, "MH"}, OpCVD: {RX, "CVD"}, OpCVB: {RX, "CVB"},
	OpST: {RX, "ST"}, OpN: {RX, "N"}, OpCL: {RX, "CL"}, OpO: {RX, "O"},
	OpX: {RX, "X"}, OpL: {RX, "L"}, OpC: {RX, "C"}, OpA: {RX, "A"},
	OpS: {RX, "S"}, OpM: {RX, "M"}, OpD: {RX, "D"}, OpAL: {RX, "AL"}, OpSL: {RX, "SL"},
	OpSRL: {RX, "SRL"}, OpSLL: {RX, "SLL"}, OpSRA: {RX, "SRA"}, OpSLA: {RX, "SLA"},
	OpSRDL: {RX, "SRDL"}, OpSLDL: {RX, "SLDL"}, OpSRDA: {RX, "SRDA"}, OpSLDA: {RX, "SLDA"},

	OpTM: {SI, "TM"}, OpMVI: {SI, "MVI"}, OpNI: {SI, "NI"}, OpCLI: {SI, "CLI"},
	OpOI: {SI, "OI"}, OpXI: {SI, "XI"},

	OpSTM: {RS, "STM"}, OpLM: {RS, "LM"}, OpCS: {RS, "CS"}, OpCDS: {RS, "CDS"},
	OpCLM: {RS, "CLM"}, OpSTCM: {RS, "STCM"}, OpICM: {RS, "ICM"},
	OpBXH: {RS, "BXH"}, OpBXLE: {RS, "BXLE"},

	OpMVN: {SS, "MVN"}, OpMVC: {SS, "MVC"}, OpMVZ: {SS, "MVZ"}, OpNC: {SS, "NC"},
	OpCLC: {SS, "CLC"}, OpOC: {SS, "OC"}, OpXC: {SS, "XC"}, OpTR: {SS, "TR"},
	OpTRT: {SS, "TRT"}, OpED: {SS, "ED"}, OpEDMK: {SS, "EDMK"},

	OpSRP: {SS2, "SRP"}, OpMVO: {SS2, "MVO"}, OpPACK: {SS2, "PACK"}, OpUNPK: {SS2, "UNPK"},
	OpZAP: {SS2, "ZAP"}, OpCP: {SS2, "CP"}, OpAP: {SS2, "AP"}, OpSP: {SS2, "SP"},
	OpMP: {SS2, "MP"}, OpDP: {SS2, "DP"},
}

// Mnemonic returns the mnemonic for an opcode byte, or "" if unsupported.
func Mnemonic(op byte) string {
	e, ok := Table[op]
	if !ok {
		return ""
	}
	return e.Mnemonic
}

// FormatOf returns the instruction format for an opcode byte.
func FormatOf(op byte) (Format, bool) {
	e, ok := Table[op]
	return e.Format, ok
}
