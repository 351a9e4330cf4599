/*
   BAL370 register display views

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

// Package register formats the CPU's raw register file for debugger
// display. The register file itself stays a plain [16]uint32 inside
// cpu.CPU (see DESIGN.md); this package supplies the on-demand
// signed/hex views and the "last written as" tag the debugger's register
// display after "s" and "g" needs without requiring the engine to carry a
// display model of its own.
package register

import "github.com/rcornwell/bal370/emu/convert"

// Kind tags how a register was last loaded, for debugger annotation.
type Kind int

const (
	KindUnknown Kind = iota
	KindInt           // loaded by an arithmetic/load instruction
	KindAddr          // loaded by LA or a branch-and-link
	KindMask          // loaded by ICM/STCM style partial load
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindAddr:
		return "addr"
	case KindMask:
		return "mask"
	default:
		return "?"
	}
}

// View is an on-demand, read-only projection of one register's bit
// pattern plus the tag the debugger last recorded for it.
type View struct {
	raw  uint32
	kind Kind
}

// Cast wraps a raw register value, tagged with how it was last written.
func Cast(raw uint32, kind Kind) View {
	return View{raw: raw, kind: kind}
}

// AsUint returns the register's raw bit pattern.
func (v View) AsUint() uint32 {
	return v.raw
}

// AsInt returns the register's bit pattern as a signed 32-bit integer.
func (v View) AsInt() int32 {
	return int32(v.raw)
}

// AsHex returns the register formatted the way the debugger prints
// addresses and immediates, grounded on convert.IntToHex.
func (v View) AsHex() string {
	return convert.IntToHex(v.AsInt())
}

// Kind returns the tag recorded for this register's last write.
func (v View) Kind() Kind {
	return v.kind
}

// File tracks the "last written as" tag for all 16 registers; the
// debugger controller updates it alongside each StepEvent and uses it
// to annotate the "s"/"g" register display, while the engine's own register file
// remains untagged.
type File struct {
	tags [16]Kind
}

// Note records how register r was most recently written.
func (f *File) Note(r int, kind Kind) {
	f.tags[r] = kind
}

// View returns a display view of register r given its current value.
func (f *File) View(r int, raw uint32) View {
	return Cast(raw, f.tags[r])
}
