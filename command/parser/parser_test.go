package parser

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rcornwell/bal370/emu/cpu"
	"github.com/rcornwell/bal370/emu/loader"
	"github.com/rcornwell/bal370/emu/memory"
)

// newDebugger builds a Debugger over a fresh CPU/memory pair with a single
// LR R1,R2 instruction (opcode 0x18) at address 0, for exercising "s"/"g".
func newDebugger(t *testing.T) (*Debugger, *bytes.Buffer) {
	t.Helper()
	mem := memory.New(4)
	mem.PutBytes(0, []byte{0x18, 0x12})
	engine := cpu.New(mem)
	engine.SetRegister(2, 0xCAFEBABE)
	var out bytes.Buffer
	return New(engine, mem, loader.SourceMap{}, loader.SymbolMap{}, &out), &out
}

func TestProcessCommandStep(t *testing.T) {
	dbg, out := newDebugger(t)
	quit, err := dbg.ProcessCommand("s")
	require.NoError(t, err)
	require.False(t, quit)
	require.Equal(t, uint32(0xCAFEBABE), dbg.CPU.Register(1))
	require.Contains(t, out.String(), "CC=")
}

func TestProcessCommandUnknown(t *testing.T) {
	dbg, _ := newDebugger(t)
	_, err := dbg.ProcessCommand("bogus")
	require.Error(t, err)
}

func TestProcessCommandShortPrefixNotFound(t *testing.T) {
	dbg, _ := newDebugger(t)
	// "d" is shorter than every two-letter command's min-match length
	// (db/dm/df all require at least 2 characters), so it resolves to
	// no command rather than an ambiguous one.
	_, err := dbg.ProcessCommand("d")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
}

func TestProcessCommandEmptyLine(t *testing.T) {
	dbg, _ := newDebugger(t)
	quit, err := dbg.ProcessCommand("   ")
	require.NoError(t, err)
	require.False(t, quit)
}

func TestQuitAliases(t *testing.T) {
	dbg, _ := newDebugger(t)
	quit, err := dbg.ProcessCommand("q")
	require.NoError(t, err)
	require.True(t, quit)
}

func TestBreakpointCommands(t *testing.T) {
	dbg, out := newDebugger(t)

	_, err := dbg.ProcessCommand("sb 10")
	require.NoError(t, err)
	require.True(t, dbg.CPU.AtBreakpoint(0x10))

	out.Reset()
	_, err = dbg.ProcessCommand("db")
	require.NoError(t, err)
	require.Contains(t, out.String(), "000010")

	_, err = dbg.ProcessCommand("cb all")
	require.NoError(t, err)
	require.False(t, dbg.CPU.AtBreakpoint(0x10))
}

func TestSetDelay(t *testing.T) {
	dbg, _ := newDebugger(t)
	_, err := dbg.ProcessCommand("sd 5")
	require.NoError(t, err)
	require.Equal(t, 5*1000*1000, int(dbg.stepDelay))

	_, err = dbg.ProcessCommand("sd notanumber")
	require.Error(t, err)
}

func TestDumpMemoryCapsCount(t *testing.T) {
	dbg, out := newDebugger(t)
	_, err := dbg.ProcessCommand("dm 0 999")
	require.NoError(t, err)
	lines := bytes.Count(out.Bytes(), []byte("\n"))
	require.Equal(t, 3, lines) // 48 bytes at 16/line
}

func TestDumpFieldWithRegister(t *testing.T) {
	dbg, out := newDebugger(t)
	dbg.Symbols = loader.SymbolMap{"FIELDA  ": {Location: 0x100, Length: 4}}
	dbg.CPU.SetRegister(3, 0x10)

	_, err := dbg.ProcessCommand("df fielda(3)")
	require.NoError(t, err)
	require.Contains(t, out.String(), "000110")
}

func TestDumpFieldUnknownSymbol(t *testing.T) {
	dbg, _ := newDebugger(t)
	_, err := dbg.ProcessCommand("df nosuch")
	require.Error(t, err)
}

func TestCompleteCmd(t *testing.T) {
	matches := CompleteCmd("s")
	require.Contains(t, matches, "s")
	require.Contains(t, matches, "sb")
	require.Contains(t, matches, "sd")
}
