/*
   BAL370 object-deck and listing loader

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

// Package loader implements the external collaborator spec.md §6 describes:
// the object-deck/listing loader that produces the engine's initial memory
// image, source map, and symbol table. The engine itself never parses
// assembler output; it only consumes the []byte image and two lookup maps
// this package hands it. Grounded on the teacher's emu/assemble/assemble.go
// listing-format parsing and util/card byte-table conventions, since the
// teacher has no object-deck loader of its own (it IPLs from device images).
package loader

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// txtDelimiter is the ".TXT " EBCDIC byte sequence object decks use to
// separate TXT records: 02 E3 E7 E3 40.
var txtDelimiter = []byte{0x02, 0xE3, 0xE7, 0xE3, 0x40}

// Symbol is one entry of the symbol table: a DSECT-relative location and
// length, both parsed from the hex text the assembler listing carried them in.
type Symbol struct {
	Location uint32
	Length   uint32
}

// SourceMap maps a six-uppercase-hex address string to its listing line,
// used only by the debugger for display (spec.md §6).
type SourceMap map[string]string

// SymbolMap maps an eight-character padded symbol name to its Symbol,
// used only by the debugger's "df" command (spec.md §6).
type SymbolMap map[string]Symbol

// ParseObjectDeck splits an OBJ byte stream into TXT records on the
// delimiter 02 E3 E7 E3 40 and lays each record's payload into a memory
// image. A record's first 3 bytes are its load address, bytes 5-6 its
// length, and bytes 11 onward its payload; gaps between TXT extents are
// zero-filled, and re-entering a prior address range overwrites bytes in
// place (so ORG works without any special casing here).
func ParseObjectDeck(deck []byte, size int) ([]byte, error) {
	image := make([]byte, size)

	records := bytes.Split(deck, txtDelimiter)
	for i, rec := range records {
		if i == 0 {
			// Leading bytes before the first delimiter are deck-header
			// noise (IDR/END records), not a TXT body; skip them.
			continue
		}
		if len(rec) < 11 {
			continue
		}
		addr := uint32(rec[0])<<16 | uint32(rec[1])<<8 | uint32(rec[2])
		length := int(rec[4])<<8 | int(rec[5])
		if len(rec) < 10+length {
			return nil, fmt.Errorf("loader: TXT record at %06X truncated, wanted %d bytes, got %d",
				addr, length, len(rec)-10)
		}
		payload := rec[10 : 10+length]
		if int(addr)+length > len(image) {
			return nil, fmt.Errorf("loader: TXT record at %06X overruns %d-byte image", addr, len(image))
		}
		copy(image[addr:], payload)
	}
	return image, nil
}

// LoadListing reads a two-column "ADDR  SOURCE" text format, one line per
// source statement, into a SourceMap. Blank lines and lines whose first
// field does not parse as six hex digits are skipped, standing in for the
// out-of-scope ProcessPRN_OBJ listing tool.
func LoadListing(r io.Reader) (SourceMap, error) {
	out := make(SourceMap)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.SplitN(line, " ", 2)
		addr := strings.TrimSpace(fields[0])
		if len(addr) != 6 {
			continue
		}
		if _, err := strconv.ParseUint(addr, 16, 32); err != nil {
			continue
		}
		text := ""
		if len(fields) == 2 {
			text = strings.TrimRight(fields[1], "\r")
		}
		out[strings.ToUpper(addr)] = text
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("loader: reading source listing: %w", err)
	}
	return out, nil
}

// LoadSymbols reads a "SYMBOL  ADDR  LEN" text format, one symbol per line,
// into a SymbolMap. SYMBOL is padded/truncated to eight characters per
// spec.md §6; ADDR and LEN are hex.
func LoadSymbols(r io.Reader) (SymbolMap, error) {
	out := make(SymbolMap)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		loc, err := strconv.ParseUint(fields[1], 16, 32)
		if err != nil {
			return nil, fmt.Errorf("loader: symbol %q has bad address %q: %w", fields[0], fields[1], err)
		}
		length, err := strconv.ParseUint(fields[2], 16, 32)
		if err != nil {
			return nil, fmt.Errorf("loader: symbol %q has bad length %q: %w", fields[0], fields[2], err)
		}
		name := padSymbol(fields[0])
		out[name] = Symbol{Location: uint32(loc), Length: uint32(length)}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("loader: reading symbol table: %w", err)
	}
	return out, nil
}

// padSymbol pads or truncates a symbol name to the eight characters the
// source's symbol_dict keys on.
func padSymbol(name string) string {
	name = strings.ToUpper(name)
	if len(name) >= 8 {
		return name[:8]
	}
	return name + strings.Repeat(" ", 8-len(name))
}
