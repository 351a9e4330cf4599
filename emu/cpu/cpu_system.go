/*
   BAL370 Execute staging and host-service (SVC) dispatch

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
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rcornwell/bal370/emu/codec"
	"github.com/rcornwell/bal370/emu/opcodemap"
)

// opEX implements Execute: the subject instruction at address1 is staged,
// its second byte OR-masked by bits 24-31 of R1, and the current PC (the
// address past this EX) saved as the resume point.
func (cpu *CPU) opEX(step *stepInfo) uint16 {
	subjectOp := cpu.mem.GetByte(step.address1)
	format, ok := opcodemap.FormatOf(subjectOp)
	if !ok {
		return 1
	}
	length := formatLength(format)
	bytes := append([]byte(nil), cpu.mem.GetBytes(step.address1, int(length))...)
	if length >= 2 {
		bytes[1] |= byte(cpu.regs[step.R1])
	}
	cpu.stageExecute(bytes, cpu.PC)
	return 0
}

// opSVC dispatches the host-service trap. SVC number = R1*16 + R2, the two
// nibbles following the opcode.
func (cpu *CPU) opSVC(step *stepInfo) uint16 {
	num := uint16(step.R1)*16 + uint16(step.R2)

	switch num {
	case 255:
		cpu.svcPrintText()
	case 254:
		fmt.Fprintln(cpu.Out, int32(cpu.regs[0]))
	case 253:
		fmt.Fprintf(cpu.Out, "%08X\n", cpu.regs[0])
	case 252:
		fmt.Fprintln(cpu.Out, cpu.cc)
	case 251:
		fmt.Fprintln(cpu.Out, cpu.regs)
	case 250:
		time.Sleep(time.Duration(cpu.regs[0]) * time.Millisecond)
	case 249:
		cpu.svcOpen()
	case 248:
		cpu.svcClose()
	case 247:
		cpu.svcGet()
	case 246:
		cpu.svcPut()
	default:
		return 1
	}
	return 0
}

// svcPrintText implements SVC 255: regs[1] EBCDIC bytes starting at
// regs[0] are translated to host text and written to cpu.Out.
func (cpu *CPU) svcPrintText() {
	addr := cpu.regs[0]
	n := int(cpu.regs[1])
	data := cpu.mem.GetBytes(addr, n)
	fmt.Fprintln(cpu.Out, string(codec.EBCDICToASCII(data)))
}

// handleDigits splits a file-handle byte into its decimal tens/units
// digits, reproducing the source's constraint that a handle is only valid
// when both nibbles are decimal digits 0-9.
func handleDigits(b byte) (string, bool) {
	hi, lo := b>>4, b&0x0F
	if hi > 9 || lo > 9 {
		return "", false
	}
	return fmt.Sprintf("%d%d", hi, lo), true
}

// svcOpen implements SVC 249: open a file by EBCDIC name. regs[1] byte 0 is
// the handle digits, byte 1 the r/w indicator (00=read, 01=write), and the
// low 16 bits the filename length at regs[0].
func (cpu *CPU) svcOpen() {
	r1 := cpu.regs[1]
	handleByte := byte(r1 >> 24)
	rw := byte(r1 >> 16)
	nameLen := int(r1 & 0xFFFF)

	if rw != 0x00 && rw != 0x01 {
		cpu.regs[15] = 1
		return
	}
	handle, ok := handleDigits(handleByte)
	if !ok {
		cpu.regs[15] = 2
		return
	}

	name := string(codec.EBCDICToASCII(cpu.mem.GetBytes(cpu.regs[0], nameLen)))
	var f *os.File
	var err error
	if rw == 0x00 {
		f, err = os.Open(name)
	} else {
		f, err = os.Create(name)
	}
	if err != nil {
		cpu.regs[15] = 3
		return
	}
	cpu.files[handle] = f
	cpu.regs[15] = 0
}

// svcClose implements SVC 248: close by handle.
func (cpu *CPU) svcClose() {
	handle, ok := handleDigits(byte(cpu.regs[1] >> 24))
	if !ok {
		cpu.regs[15] = 1
		return
	}
	f, ok := cpu.files[handle]
	if !ok {
		cpu.regs[15] = 1
		return
	}
	if err := f.Close(); err != nil {
		cpu.regs[15] = 2
		return
	}
	delete(cpu.files, handle)
	cpu.regs[15] = 0
}

// svcGet implements SVC 247: read one newline-delimited record into memory
// at regs[0], converting host text to EBCDIC. regs[15] gets the record
// length, 0 at EOF, -1 on error.
func (cpu *CPU) svcGet() {
	handle, ok := handleDigits(byte(cpu.regs[1] >> 24))
	if !ok {
		cpu.regs[15] = ^uint32(0)
		return
	}
	f, ok := cpu.files[handle]
	if !ok {
		cpu.regs[15] = ^uint32(0)
		return
	}
	r := bufio.NewReader(f)
	line, err := r.ReadString('\n')
	if n := r.Buffered(); n > 0 {
		f.Seek(-int64(n), io.SeekCurrent)
	}
	if err != nil && line == "" {
		cpu.regs[15] = 0
		return
	}
	line = trimNewline(line)
	cpu.mem.PutBytes(cpu.regs[0], codec.ASCIIToEBCDIC([]byte(line)))
	cpu.regs[15] = uint32(len(line))
}

// svcPut implements SVC 246: write a length-prefixed EBCDIC buffer (length
// in the low half of R1) to handle, appending a newline.
func (cpu *CPU) svcPut() {
	handleByte := byte(cpu.regs[1] >> 24)
	n := int(cpu.regs[1] & 0xFFFF)

	handle, ok := handleDigits(handleByte)
	if !ok {
		cpu.regs[15] = 1
		return
	}
	f, ok := cpu.files[handle]
	if !ok {
		cpu.regs[15] = 1
		return
	}
	data := codec.EBCDICToASCII(cpu.mem.GetBytes(cpu.regs[0], n))
	if _, err := f.Write(append(data, '\n')); err != nil {
		cpu.regs[15] = 2
		return
	}
	cpu.regs[15] = 0
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
