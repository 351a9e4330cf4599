/*
   BAL370 - Emulator entry point

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

// Command s370emu loads an assembled BAL object deck and runs it, either
// headless (stdout gets SVC 255 text output) or, with --debug, under the
// liner-based step/breakpoint console. Flag parsing follows the teacher's
// main.go convention: github.com/pborman/getopt/v2, --help prints usage
// and exits 0.
package main

import (
	"log/slog"
	"os"
	"strconv"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/bal370/command/parser"
	"github.com/rcornwell/bal370/command/reader"
	"github.com/rcornwell/bal370/emu/cpu"
	"github.com/rcornwell/bal370/emu/loader"
	"github.com/rcornwell/bal370/emu/memory"
	"github.com/rcornwell/bal370/util/config"
	"github.com/rcornwell/bal370/util/logger"
)

func main() {
	optImage := getopt.StringLong("image", 'i', "", "Object deck to load")
	optSource := getopt.StringLong("source", 's', "", "Source listing for debugger display")
	optSymbols := getopt.StringLong("symbols", 'y', "", "Symbol table for df command")
	optConfig := getopt.StringLong("config", 'c', "", "Debugger config file (breakpoints, step delay)")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optSizeStr := getopt.StringLong("size", 'k', "64", "Memory size in kilobytes")
	optDebug := getopt.BoolLong("debug", 'd', "Run under the step/breakpoint debugger")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	optSize, err := strconv.Atoi(*optSizeStr)
	if err != nil {
		slog.Error("--size must be an integer", "value", *optSizeStr)
		os.Exit(1)
	}

	var logFile *os.File
	if *optLogFile != "" {
		var err error
		logFile, err = os.Create(*optLogFile)
		if err != nil {
			slog.Error("can't create log file", "file", *optLogFile, "error", err)
			os.Exit(1)
		}
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelInfo)
	debugFlag := *optDebug
	log := slog.New(logger.NewHandler(logFile, &slog.HandlerOptions{Level: programLevel}, &debugFlag))
	slog.SetDefault(log)

	if *optImage == "" {
		log.Error("--image is required")
		os.Exit(1)
	}

	deck, err := os.ReadFile(*optImage)
	if err != nil {
		log.Error("can't read object deck", "file", *optImage, "error", err)
		os.Exit(1)
	}

	mem := memory.New(optSize)
	image, err := loader.ParseObjectDeck(deck, mem.Size())
	if err != nil {
		log.Error("can't parse object deck", "error", err)
		os.Exit(1)
	}
	mem.PutBytes(0, image)

	var sourceMap loader.SourceMap
	if *optSource != "" {
		f, err := os.Open(*optSource)
		if err != nil {
			log.Error("can't open source listing", "file", *optSource, "error", err)
			os.Exit(1)
		}
		sourceMap, err = loader.LoadListing(f)
		f.Close()
		if err != nil {
			log.Error("can't parse source listing", "error", err)
			os.Exit(1)
		}
	}

	var symbolMap loader.SymbolMap
	if *optSymbols != "" {
		f, err := os.Open(*optSymbols)
		if err != nil {
			log.Error("can't open symbol table", "file", *optSymbols, "error", err)
			os.Exit(1)
		}
		symbolMap, err = loader.LoadSymbols(f)
		f.Close()
		if err != nil {
			log.Error("can't parse symbol table", "error", err)
			os.Exit(1)
		}
	}

	engine := cpu.New(mem)
	defer engine.CloseFiles()

	if !debugFlag {
		ev := engine.Run()
		engine.CloseFiles()
		if ev.Err != nil {
			log.Error("abnormal termination", "error", ev.Err, "pc", ev.PC)
			os.Exit(1)
		}
		os.Exit(0)
	}

	dbg := parser.New(engine, mem, sourceMap, symbolMap, os.Stdout)
	if *optConfig != "" {
		f, err := os.Open(*optConfig)
		if err != nil {
			log.Error("can't open debugger config", "file", *optConfig, "error", err)
			os.Exit(1)
		}
		cfg, err := config.Load(f)
		f.Close()
		if err != nil {
			log.Error("can't parse debugger config", "error", err)
			os.Exit(1)
		}
		dbg.SetBreakpoints(cfg.Breakpoints)
		dbg.SetStepDelay(cfg.StepDelay)
	}

	reader.ConsoleReader(dbg)
}
