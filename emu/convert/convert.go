/*
 * BAL370 - Integer, hex and packed-decimal conversion helpers
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

// Package convert holds the small numeric-representation helpers the
// original source calls cvthex2int/cvtint2hex/cvtint2pdec/cvtpdec2int: the
// register file's on-demand hex/int views and the packed-decimal
// coprocessor's digit packing/unpacking.
package convert

import (
	"errors"
	"fmt"
)

// ErrBadSign is returned when a packed-decimal sign nibble is not one of
// the architecturally defined values.
var ErrBadSign = errors.New("convert: invalid packed-decimal sign nibble")

// HexToInt interprets an 8-hex-digit string as a 32-bit two's-complement
// integer: if the high nibble is 8 or above the value is treated as
// negative, otherwise as unsigned.
func HexToInt(hex string) int64 {
	var v uint64
	fmt.Sscanf(hex, "%x", &v)
	bits := uint(len(hex)) * 4
	if bits == 0 {
		return 0
	}
	signBit := uint64(1) << (bits - 1)
	if v&signBit != 0 {
		return int64(v) - int64(uint64(1)<<bits)
	}
	return int64(v)
}

// IntToHex renders i as an 8-hex-digit, uppercase, zero-padded two's
// complement hex string.
func IntToHex(i int32) string {
	return fmt.Sprintf("%08X", uint32(i))
}

// IntToSComp renders negative i as the two's complement of i within the
// given bit width; non-negative i passes through as an unsigned magnitude.
func IntToSComp(i int64, bits uint) uint64 {
	mask := uint64(1)<<bits - 1
	return uint64(i) & mask
}

// IntToPackedDecimal packs i into nibbles-1 decimal digits plus a trailing
// sign nibble (C for non-negative, D for negative), left-padded with zero
// digits. An odd nibbles count gets one extra leading zero nibble so the
// sign stays in the low nibble of the last byte.
func IntToPackedDecimal(i int64, nibbles int) []byte {
	neg := i < 0
	if neg {
		i = -i
	}
	digits := make([]byte, nibbles)
	for p := nibbles - 1; p >= 1; p-- {
		digits[p-1] = byte(i % 10)
		i /= 10
	}
	sign := byte(0xC)
	if neg {
		sign = 0xD
	}
	digits[nibbles-1] = sign

	out := make([]byte, (nibbles+1)/2)
	shift := len(out)*2 - nibbles
	for n := 0; n < nibbles; n++ {
		k := n + shift
		b := k / 2
		if k%2 == 0 {
			out[b] |= digits[n] << 4
		} else {
			out[b] |= digits[n]
		}
	}
	return out
}

// PackedDecimalToInt unpacks a packed-decimal byte slice into a signed
// integer. The trailing nibble must be a valid sign: A, C, E, F (positive)
// or B, D (negative).
func PackedDecimalToInt(pd []byte) (int64, error) {
	if len(pd) == 0 {
		return 0, ErrBadSign
	}
	sign := pd[len(pd)-1] & 0x0F
	var neg bool
	switch sign {
	case 0xA, 0xC, 0xE, 0xF:
		neg = false
	case 0xB, 0xD:
		neg = true
	default:
		return 0, ErrBadSign
	}

	var v int64
	for i, b := range pd {
		hi := b >> 4
		if hi > 9 {
			return 0, ErrBadSign
		}
		v = v*10 + int64(hi)
		if i == len(pd)-1 {
			continue
		}
		lo := b & 0x0F
		if lo > 9 {
			return 0, ErrBadSign
		}
		v = v*10 + int64(lo)
	}
	if neg {
		v = -v
	}
	return v, nil
}

// PackedSignPositive reports whether the given sign nibble represents a
// non-negative packed-decimal value.
func PackedSignPositive(sign byte) bool {
	switch sign & 0x0F {
	case 0xA, 0xC, 0xE, 0xF:
		return true
	default:
		return false
	}
}
