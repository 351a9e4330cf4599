package memory

/*
 * BAL370  - Low level memory
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// BAL object code addresses individual bytes (MVI, STC, ED/EDMK all target
// a single byte at an arbitrary offset) so unlike the teacher's word-array
// 370 memory this store is a flat byte slice with no alignment or
// protection-key enforcement. Memory is an instance, not a package-level
// singleton, so a loader and its debugger/test harness can each hold their
// own image.
type Memory struct {
	mem  []byte
	size uint32
}

// New allocates a Memory of k kilobytes, capped at 16M like the teacher.
func New(k int) *Memory {
	if k > (16 * 1024) {
		k = 16 * 1024
	}
	size := uint32(k * 1024)
	return &Memory{mem: make([]byte, size), size: size}
}

// Size returns the memory size in bytes.
func (m *Memory) Size() int {
	return int(m.size)
}

// CheckAddr reports whether the n-byte range starting at addr lies entirely
// within memory.
func (m *Memory) CheckAddr(addr uint32, n int) bool {
	if n <= 0 {
		return addr < m.size
	}
	end := addr + uint32(n-1)
	return end >= addr && end < m.size
}

// GetByte returns a byte from memory, reading as zero when out of range.
func (m *Memory) GetByte(addr uint32) byte {
	if addr >= m.size {
		return 0
	}
	return m.mem[addr]
}

// PutByte stores a byte to memory, ignored if out of range.
func (m *Memory) PutByte(addr uint32, v byte) {
	if addr < m.size {
		m.mem[addr] = v
	}
}

// GetBytes returns a copy of n bytes starting at addr. Bytes beyond the
// end of memory read as zero.
func (m *Memory) GetBytes(addr uint32, n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = m.GetByte(addr + uint32(i))
	}
	return out
}

// PutBytes stores data starting at addr, truncated at the end of memory.
func (m *Memory) PutBytes(addr uint32, data []byte) {
	for i, b := range data {
		m.PutByte(addr+uint32(i), b)
	}
}

// GetHalf returns a big-endian halfword from memory.
func (m *Memory) GetHalf(addr uint32) uint16 {
	return uint16(m.GetByte(addr))<<8 | uint16(m.GetByte(addr+1))
}

// PutHalf stores a big-endian halfword to memory.
func (m *Memory) PutHalf(addr uint32, v uint16) {
	m.PutByte(addr, byte(v>>8))
	m.PutByte(addr+1, byte(v))
}

// GetWord returns a big-endian fullword from memory.
func (m *Memory) GetWord(addr uint32) uint32 {
	return uint32(m.GetByte(addr))<<24 | uint32(m.GetByte(addr+1))<<16 |
		uint32(m.GetByte(addr+2))<<8 | uint32(m.GetByte(addr+3))
}

// PutWord stores a big-endian fullword to memory.
func (m *Memory) PutWord(addr uint32, v uint32) {
	m.PutByte(addr, byte(v>>24))
	m.PutByte(addr+1, byte(v>>16))
	m.PutByte(addr+2, byte(v>>8))
	m.PutByte(addr+3, byte(v))
}
