/*
   BAL370 - Debugger run-time configuration file

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

// Package config loads the one piece of run-time configuration this
// emulator needs: a default breakpoint list and step-delay for the
// debugger, from a small line-oriented file. It is adapted from the
// teacher's config/configparser line-scanning convention ('#' comments,
// <keyword> <value> lines) but scaled down to this engine's much smaller
// configuration surface - there are no device models to register here,
// only debugger defaults.
package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Config holds the debugger defaults a ".s370rc"-style file may supply.
type Config struct {
	Breakpoints []uint32
	StepDelay   int // milliseconds, for "g" mode; 0 = no delay
}

// Load reads a configuration file in the format:
//
//	# comment
//	breakpoint ADDR
//	stepdelay  MILLISECONDS
//
// one directive per line; blank lines and lines starting with '#' are
// ignored. Unknown keywords are reported as an error naming the line.
func Load(r io.Reader) (Config, error) {
	cfg := Config{}
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		keyword := strings.ToLower(fields[0])
		switch keyword {
		case "breakpoint":
			if len(fields) != 2 {
				return cfg, fmt.Errorf("config: line %d: breakpoint requires one address", lineNum)
			}
			addr, err := strconv.ParseUint(fields[1], 16, 32)
			if err != nil {
				return cfg, fmt.Errorf("config: line %d: bad breakpoint address %q: %w", lineNum, fields[1], err)
			}
			cfg.Breakpoints = append(cfg.Breakpoints, uint32(addr))

		case "stepdelay":
			if len(fields) != 2 {
				return cfg, fmt.Errorf("config: line %d: stepdelay requires one value", lineNum)
			}
			ms, err := strconv.Atoi(fields[1])
			if err != nil {
				return cfg, fmt.Errorf("config: line %d: bad stepdelay %q: %w", lineNum, fields[1], err)
			}
			cfg.StepDelay = ms

		default:
			return cfg, fmt.Errorf("config: line %d: unknown keyword %q", lineNum, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
