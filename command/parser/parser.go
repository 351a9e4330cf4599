/*
   BAL370 - Debugger command parser

   Copyright 2024, Richard Cornwell

   Permission is hereby granted, free of charge, to any person obtaining a copy
   of this software and associated documentation files (the "Software"), to deal
   in the Software without restriction, including without limitation the rights
   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
   copies of the Software, and to permit persons to whom the Software is
   furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
   SOFTWARE.

*/

// Package parser implements the debugger controller's eight commands
// (spec.md §4.9): s, g, sd, sb, cb, db, dm, df, plus q/quit. It is adapted
// from the teacher's command/parser device-admin console - the same
// cmdLine scanning idiom (skipSpace/isEOL/getWord) driving a small
// min-match command table - rescoped from device attach/detach/show to
// this engine's step/breakpoint/memory-dump surface.
package parser

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/rcornwell/bal370/emu/cpu"
	disassembler "github.com/rcornwell/bal370/emu/disassemble"
	"github.com/rcornwell/bal370/emu/loader"
	"github.com/rcornwell/bal370/emu/memory"
	"github.com/rcornwell/bal370/emu/register"
)

type cmdLine struct {
	line string
	pos  int
}

type cmdEntry struct {
	name    string
	min     int
	process func(*Debugger, *cmdLine) (bool, error)
}

var cmdList = []cmdEntry{
	{name: "s", min: 1, process: (*Debugger).cmdStep},
	{name: "g", min: 1, process: (*Debugger).cmdGo},
	{name: "sd", min: 2, process: (*Debugger).cmdSetDelay},
	{name: "sb", min: 2, process: (*Debugger).cmdSetBreak},
	{name: "cb", min: 2, process: (*Debugger).cmdClearBreak},
	{name: "db", min: 2, process: (*Debugger).cmdDumpBreak},
	{name: "dm", min: 2, process: (*Debugger).cmdDumpMemory},
	{name: "df", min: 2, process: (*Debugger).cmdDumpField},
	{name: "quit", min: 1, process: (*Debugger).cmdQuit},
}

// Debugger holds the controller state the spec's §4.9 commands mutate: the
// CPU under control, the memory it addresses, the external loader's
// source/symbol maps (read-only, for display), and the inter-step sleep
// "g" mode honors.
type Debugger struct {
	CPU       *cpu.CPU
	Mem       *memory.Memory
	Source    loader.SourceMap
	Symbols   loader.SymbolMap
	regs      register.File
	stepDelay time.Duration
	Out       io.Writer
}

// New builds a Debugger bound to cpu/mem with no step delay; default
// breakpoints and step delay from a config file are installed afterwards
// with SetBreakpoints and SetStepDelay.
func New(c *cpu.CPU, mem *memory.Memory, source loader.SourceMap, symbols loader.SymbolMap, out io.Writer) *Debugger {
	return &Debugger{CPU: c, Mem: mem, Source: source, Symbols: symbols, Out: out}
}

// SetBreakpoints installs a default breakpoint set, e.g. loaded from
// util/config at startup.
func (d *Debugger) SetBreakpoints(addrs []uint32) {
	for _, a := range addrs {
		d.CPU.AddBreakpoint(a)
	}
}

// SetStepDelay sets the inter-step sleep "g" mode honors, in milliseconds.
func (d *Debugger) SetStepDelay(ms int) {
	d.stepDelay = time.Duration(ms) * time.Millisecond
}

// ProcessCommand parses and executes one command line, reporting whether
// the debugger session should end.
func (d *Debugger) ProcessCommand(line string) (bool, error) {
	cl := &cmdLine{line: line}
	word := cl.getWord()
	if word == "" {
		return false, nil
	}
	if word == "q" {
		word = "quit"
	}

	match := matchList(word)
	switch len(match) {
	case 0:
		return false, fmt.Errorf("command not found: %s", word)
	case 1:
		return match[0].process(d, cl)
	default:
		return false, fmt.Errorf("ambiguous command: %s", word)
	}
}

// CompleteCmd returns command names matching a partial command, for the
// console reader's tab-completion.
func CompleteCmd(partial string) []string {
	var out []string
	for _, c := range cmdList {
		if strings.HasPrefix(c.name, strings.ToLower(strings.TrimSpace(partial))) {
			out = append(out, c.name)
		}
	}
	return out
}

func matchList(word string) []cmdEntry {
	var match []cmdEntry
	for _, c := range cmdList {
		if len(word) >= c.min && strings.HasPrefix(c.name, word) {
			match = append(match, c)
		}
	}
	return match
}

func (cl *cmdLine) isEOL() bool {
	return cl.pos >= len(cl.line)
}

func (cl *cmdLine) skipSpace() {
	for !cl.isEOL() && unicode.IsSpace(rune(cl.line[cl.pos])) {
		cl.pos++
	}
}

// getWord returns the next whitespace-delimited token, lower-cased.
func (cl *cmdLine) getWord() string {
	cl.skipSpace()
	start := cl.pos
	for !cl.isEOL() && !unicode.IsSpace(rune(cl.line[cl.pos])) {
		cl.pos++
	}
	return strings.ToLower(cl.line[start:cl.pos])
}

// remainder returns everything left on the line, trimmed.
func (cl *cmdLine) remainder() string {
	cl.skipSpace()
	return strings.TrimSpace(cl.line[cl.pos:])
}

func parseHex(text string) (uint32, error) {
	v, err := strconv.ParseUint(text, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("not a valid hex address: %q", text)
	}
	return uint32(v), nil
}

// cmdStep executes exactly one instruction cycle and displays state.
func (d *Debugger) cmdStep(_ *cmdLine) (bool, error) {
	ev := d.CPU.Step()
	d.noteRegisterWrites(ev.Mnemonic, ev.R1)
	d.display()
	return false, ev.Err
}

// cmdGo steps once (to clear a breakpoint at the current PC) then runs
// until the next breakpoint, honoring the configured inter-step delay.
func (d *Debugger) cmdGo(_ *cmdLine) (bool, error) {
	ev := d.CPU.Step()
	d.noteRegisterWrites(ev.Mnemonic, ev.R1)
	for !ev.Halt && ev.Err == nil && !d.CPU.AtBreakpoint(d.CPU.PC) {
		if d.stepDelay > 0 {
			time.Sleep(d.stepDelay)
		}
		ev = d.CPU.Step()
		d.noteRegisterWrites(ev.Mnemonic, ev.R1)
	}
	d.display()
	return false, ev.Err
}

// cmdSetDelay implements "sd N": set the inter-step sleep for "g" mode.
func (d *Debugger) cmdSetDelay(cl *cmdLine) (bool, error) {
	text := cl.getWord()
	ms, err := strconv.Atoi(text)
	if err != nil {
		return false, fmt.Errorf("sd: not a number: %q", text)
	}
	d.SetStepDelay(ms)
	return false, nil
}

// cmdSetBreak implements "sb ADDR": add a breakpoint.
func (d *Debugger) cmdSetBreak(cl *cmdLine) (bool, error) {
	addr, err := parseHex(cl.getWord())
	if err != nil {
		return false, err
	}
	d.CPU.AddBreakpoint(addr)
	return false, nil
}

// cmdClearBreak implements "cb ADDR" / "cb all".
func (d *Debugger) cmdClearBreak(cl *cmdLine) (bool, error) {
	word := cl.getWord()
	if word == "all" {
		d.CPU.ClearBreakpoints()
		return false, nil
	}
	addr, err := parseHex(word)
	if err != nil {
		return false, err
	}
	d.CPU.RemoveBreakpoint(addr)
	return false, nil
}

// cmdDumpBreak implements "db": list breakpoints.
func (d *Debugger) cmdDumpBreak(_ *cmdLine) (bool, error) {
	bps := d.CPU.Breakpoints()
	if len(bps) == 0 {
		fmt.Fprintln(d.Out, "no breakpoints set")
		return false, nil
	}
	for _, a := range bps {
		fmt.Fprintf(d.Out, "%06X\n", a)
	}
	return false, nil
}

// cmdDumpMemory implements "dm ADDR N": dump at most 48 bytes from memory.
func (d *Debugger) cmdDumpMemory(cl *cmdLine) (bool, error) {
	addr, err := parseHex(cl.getWord())
	if err != nil {
		return false, err
	}
	nText := cl.getWord()
	n := 16
	if nText != "" {
		v, err := strconv.Atoi(nText)
		if err != nil {
			return false, fmt.Errorf("dm: not a number: %q", nText)
		}
		n = v
	}
	if n > 48 {
		n = 48
	}
	if n <= 0 {
		return false, errors.New("dm: count must be positive")
	}
	data := d.Mem.GetBytes(addr, n)
	for off := 0; off < n; off += 16 {
		end := off + 16
		if end > n {
			end = n
		}
		fmt.Fprintf(d.Out, "%06X: ", addr+uint32(off))
		for _, b := range data[off:end] {
			fmt.Fprintf(d.Out, "%02X ", b)
		}
		fmt.Fprintln(d.Out)
	}
	return false, nil
}

// cmdDumpField implements "df NAME" / "df NAME(R)": dump a named symbol
// field, optionally with regs[R] added as a DSECT base.
func (d *Debugger) cmdDumpField(cl *cmdLine) (bool, error) {
	text := cl.remainder()
	if text == "" {
		return false, errors.New("df: symbol name required")
	}

	name := text
	regNum := -1
	if idx := strings.IndexByte(text, '('); idx >= 0 && strings.HasSuffix(text, ")") {
		name = text[:idx]
		regText := text[idx+1 : len(text)-1]
		r, err := strconv.Atoi(regText)
		if err != nil || r < 0 || r > 15 {
			return false, fmt.Errorf("df: bad register %q", regText)
		}
		regNum = r
	}

	sym, ok := d.Symbols[padSymbol(name)]
	if !ok {
		return false, fmt.Errorf("df: symbol not found: %s", name)
	}

	addr := sym.Location
	if regNum >= 0 {
		addr += d.CPU.Register(regNum)
	}
	length := int(sym.Length)
	if length <= 0 || length > 48 {
		length = 48
	}
	data := d.Mem.GetBytes(addr, length)
	fmt.Fprintf(d.Out, "%s @ %06X: ", strings.TrimSpace(name), addr)
	for _, b := range data {
		fmt.Fprintf(d.Out, "%02X ", b)
	}
	fmt.Fprintln(d.Out)
	return false, nil
}

// cmdQuit implements "q"/"quit".
func (d *Debugger) cmdQuit(_ *cmdLine) (bool, error) {
	return true, nil
}

func padSymbol(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	if len(name) >= 8 {
		return name[:8]
	}
	return name + strings.Repeat(" ", 8-len(name))
}

// display prints PC, the source line for it (or a disassembly fallback),
// condition code, and the register file, as the controller does between
// every step (spec.md §4.9).
func (d *Debugger) display() {
	pc := d.CPU.PC
	key := fmt.Sprintf("%06X", pc)
	line, ok := d.Source[key]
	if !ok {
		raw := d.Mem.GetBytes(pc, 6)
		line, _ = disassembler.Disassemble(raw)
	}
	fmt.Fprintf(d.Out, "%s  %s\n", key, line)
	fmt.Fprintf(d.Out, "CC=%d\n", d.CPU.ConditionCode())

	regs := d.CPU.Registers()
	for r := 0; r < 16; r += 4 {
		for c := 0; c < 4; c++ {
			view := d.regs.View(r+c, regs[r+c])
			fmt.Fprintf(d.Out, "R%-2d=%s(%s) ", r+c, view.AsHex(), view.Kind())
		}
		fmt.Fprintln(d.Out)
	}
}

// noteRegisterWrites re-tags the register display kinds after an
// instruction touching r1 completes, so the register display after "s"/"g"
// reflects
// whether the value is an address, an integer, or a partial-load mask -
// the teacher's register view has no engine counterpart to read this
// from, so the debugger infers it from the mnemonic it just executed.
func (d *Debugger) noteRegisterWrites(mnemonic string, r1 int) {
	switch mnemonic {
	case "LA", "BAL", "BALR":
		d.regs.Note(r1, register.KindAddr)
	case "ICM":
		d.regs.Note(r1, register.KindMask)
	case "LR", "L", "LH", "LPR", "LNR", "LCR", "LTR",
		"A", "AR", "AH", "AL", "ALR", "S", "SR", "SH", "SL", "SLR",
		"M", "MR", "MH", "D", "DR", "N", "NR", "O", "OR", "X", "XR",
		"IC", "CVB", "LM":
		d.regs.Note(r1, register.KindInt)
	}
}
