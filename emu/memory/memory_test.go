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

import (
	"testing"
)

// Set size in K.
func TestNewSize(t *testing.T) {
	for i := range 32 {
		m := New(i)
		if i > (16 * 1024) {
			if m.size != (16 * 1024 * 1024) {
				t.Errorf("Memory size not correct got: %d expected: %d", m.size, 16*1024*1024)
			}
		} else {
			if m.size != uint32(i*1024) {
				t.Errorf("Memory size not correct got: %d expected: %d", m.size, i*1024)
			}
		}

		r := m.Size()
		if i > (16 * 1024) {
			if r != 16*1024*1024 {
				t.Errorf("Size not correct got: %d expected: %d", r, 16*1024*1024)
			}
		} else {
			if r != i*1024 {
				t.Errorf("Size not correct got: %d expected: %d", r, i*1024)
			}
		}
	}
}

// Check get/put byte.
func TestGetPutByte(t *testing.T) {
	m := New(2)
	for i := range uint32(256) {
		m.PutByte(i, byte(i))
	}
	for i := range uint32(256) {
		r := m.GetByte(i)
		if r != byte(i) {
			t.Errorf("GetByte not correct got: %d expected: %d", r, byte(i))
		}
	}
	// Out of range reads as zero, out of range writes are ignored.
	r := m.GetByte(m.size + 10)
	if r != 0 {
		t.Errorf("GetByte out of range got: %d expected: 0", r)
	}
	m.PutByte(m.size+10, 0xff)
	if m.CheckAddr(m.size+10, 1) {
		t.Errorf("CheckAddr did not detect out of range address")
	}
}

// Check get/put bytes.
func TestGetPutBytes(t *testing.T) {
	m := New(2)
	data := []byte{1, 2, 3, 4, 5}
	m.PutBytes(100, data)
	r := m.GetBytes(100, 5)
	for i, b := range r {
		if b != data[i] {
			t.Errorf("GetBytes[%d] got: %d expected: %d", i, b, data[i])
		}
	}
}

// Check get/put halfword, big-endian.
func TestGetPutHalf(t *testing.T) {
	m := New(2)
	m.PutHalf(200, 0x1234)
	if m.GetByte(200) != 0x12 || m.GetByte(201) != 0x34 {
		t.Errorf("PutHalf did not store big-endian bytes")
	}
	r := m.GetHalf(200)
	if r != 0x1234 {
		t.Errorf("GetHalf not correct got: %04x expected: %04x", r, 0x1234)
	}
}

// Check get/put word, big-endian.
func TestGetPutWord(t *testing.T) {
	m := New(2)
	m.PutWord(300, 0x12345678)
	if m.GetByte(300) != 0x12 || m.GetByte(301) != 0x34 || m.GetByte(302) != 0x56 || m.GetByte(303) != 0x78 {
		t.Errorf("PutWord did not store big-endian bytes")
	}
	r := m.GetWord(300)
	if r != 0x12345678 {
		t.Errorf("GetWord not correct got: %08x expected: %08x", r, 0x12345678)
	}
}

// Check CheckAddr.
func TestCheckAddr(t *testing.T) {
	m := New(2)

	if !m.CheckAddr(1024, 1) {
		t.Errorf("CheckAddr returned error below memory size")
	}
	if m.CheckAddr(m.size, 1) {
		t.Errorf("CheckAddr did not return error at memory size")
	}
	if m.CheckAddr(m.size+4096, 1) {
		t.Errorf("CheckAddr did not return error above memory size")
	}
	if !m.CheckAddr(m.size-4, 4) {
		t.Errorf("CheckAddr rejected a range ending exactly at memory size")
	}
	if m.CheckAddr(m.size-3, 4) {
		t.Errorf("CheckAddr accepted a range extending past memory size")
	}
}

// Byte addressing allows odd, unaligned offsets unlike the teacher's
// word-only store.
func TestUnalignedAccess(t *testing.T) {
	m := New(2)
	m.PutByte(501, 0xab)
	if m.GetByte(501) != 0xab {
		t.Errorf("PutByte at odd address failed")
	}
	m.PutHalf(501, 0xbeef)
	if m.GetHalf(501) != 0xbeef {
		t.Errorf("PutHalf at odd address failed")
	}
}
