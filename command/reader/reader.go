/*
   BAL370 - Debugger console reader

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

// Package reader drives the debugger console with github.com/peterh/liner,
// line-for-line the same pattern as the teacher's command/reader.go:
// liner.Prompt in a loop, history on success, CompleteCmd wired as the
// tab-completer, and Ctrl-C/Ctrl-D both ending the session cleanly.
package reader

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/peterh/liner"
	"github.com/rcornwell/bal370/command/parser"
)

// ConsoleReader runs the debugger's read-eval-print loop against dbg until
// the user quits or the input stream ends.
func ConsoleReader(dbg *parser.Debugger) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(partial string) []string {
		return parser.CompleteCmd(partial)
	})

	for {
		command, err := line.Prompt("bal370> ")
		if err == nil {
			line.AppendHistory(command)
			quit, cmdErr := dbg.ProcessCommand(command)
			if cmdErr != nil {
				fmt.Fprintln(dbg.Out, "Error: "+cmdErr.Error())
			}
			if quit {
				return
			}
			continue
		}

		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return
		}
		slog.Error("error reading debugger command: " + err.Error())
		return
	}
}
