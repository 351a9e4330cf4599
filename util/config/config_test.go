package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadBreakpointsAndDelay(t *testing.T) {
	src := "# sample rc\nbreakpoint 00001C\nbreakpoint 2000\nstepdelay 50\n"
	cfg, err := Load(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, []uint32{0x1C, 0x2000}, cfg.Breakpoints)
	require.Equal(t, 50, cfg.StepDelay)
}

func TestLoadIgnoresBlankAndComment(t *testing.T) {
	cfg, err := Load(strings.NewReader("\n   \n# nothing here\n"))
	require.NoError(t, err)
	require.Empty(t, cfg.Breakpoints)
	require.Zero(t, cfg.StepDelay)
}

func TestLoadUnknownKeyword(t *testing.T) {
	_, err := Load(strings.NewReader("frobnicate yes\n"))
	require.Error(t, err)
}

func TestLoadBadAddress(t *testing.T) {
	_, err := Load(strings.NewReader("breakpoint ZZZZZZ\n"))
	require.Error(t, err)
}
