/*
	   BAL370 Disassembler

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

// Package disassembler renders raw instruction bytes as mnemonic text for
// the debugger's state display after "s"/"g", a fallback used whenever a
// loaded source listing has no line for the current PC. The
// original Python engine had no such view at all; it is new in this
// engine, grounded on the teacher's disassemble.go but rebuilt against
// this engine's own six-format opcodemap instead of the full 370 set.
package disassembler

import (
	"fmt"

	"github.com/rcornwell/bal370/emu/opcodemap"
)

// Disassemble renders the instruction at the start of data and returns its
// text plus its length in bytes. data must hold at least 6 bytes; callers
// with less at the end of memory should pad with zero.
func Disassemble(data []byte) (string, int) {
	op := data[0]
	format, ok := opcodemap.FormatOf(op)
	if !ok {
		return undefined(data)
	}
	mnem := opcodemap.Mnemonic(op)
	inst := mnem
	for len(inst) < 6 {
		inst += " "
	}

	var length int
	switch format {
	case opcodemap.RR:
		length = 2
		inst += fmt.Sprintf("%d,%d", data[1]>>4, data[1]&0xF)

	case opcodemap.RX:
		length = 4
		inst += fmt.Sprintf("%d,", data[1]>>4)
		inst += address(data[1]&0xF, data[2], data[3])

	case opcodemap.SI:
		length = 4
		inst += address(0, data[2], data[3])
		inst += fmt.Sprintf(",%02X", data[1])

	case opcodemap.RS:
		length = 4
		inst += fmt.Sprintf("%d,%d,", data[1]>>4, data[1]&0xF)
		inst += address(0, data[2], data[3])

	case opcodemap.SS:
		length = 6
		inst += fmt.Sprintf("%d,", data[1])
		inst += address(0, data[2], data[3])
		inst += ","
		inst += address(0, data[4], data[5])

	case opcodemap.SS2:
		length = 6
		inst += fmt.Sprintf("%d(%d,", data[1]>>4, data[1]&0xF)
		inst += address(0, data[2], data[3])
		inst += "),"
		inst += address(0, data[4], data[5])
	}
	return inst, length
}

// address renders a D(X,B) or D(B) effective-address field; a zero base
// or index register is omitted, matching calcAddress's own treatment of
// a zero field as "absent", not "register 0".
func address(x, d1, d2 byte) string {
	offset := uint16(d1&0x0F)<<8 | uint16(d2)
	b := d1 >> 4
	out := fmt.Sprintf("%03X", offset)
	if x != 0 || b != 0 {
		out += "("
		if x != 0 {
			out += fmt.Sprintf("%d", x)
			if b != 0 {
				out += ","
			}
		}
		if b != 0 {
			out += fmt.Sprintf("%d", b)
		}
		out += ")"
	}
	return out
}

// undefined renders an opcode byte this engine does not support, guessing
// a length from the top two bits the way the architecture's format
// families are laid out.
func undefined(data []byte) (string, int) {
	switch data[0] & 0xC0 {
	case 0x00:
		return fmt.Sprintf("DC    X'%02X%02X'", data[0], data[1]), 2
	case 0x40, 0x80:
		return fmt.Sprintf("DC    X'%02X%02X%02X%02X'", data[0], data[1], data[2], data[3]), 4
	default:
		return fmt.Sprintf("DC    X'%02X%02X%02X%02X%02X%02X'",
			data[0], data[1], data[2], data[3], data[4], data[5]), 6
	}
}
