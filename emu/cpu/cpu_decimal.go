/*
   BAL370 packed-decimal coprocessor instruction execution

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

package cpu

import "github.com/rcornwell/bal370/emu/convert"

// setPackedCC applies the AP/SP/ZAP condition-code rule: 0 zero, 1
// negative, 2 positive. Overflow is architecturally not detected.
func (cpu *CPU) setPackedCC(v int64) {
	switch {
	case v == 0:
		cpu.cc = CCEqual
	case v < 0:
		cpu.cc = CCLow
	default:
		cpu.cc = CCHigh
	}
}

// opAP implements Add Decimal: op1 += op2, repacked to op1's length.
func (cpu *CPU) opAP(step *stepInfo) uint16 {
	return cpu.packedAddSub(step, '+')
}

// opSP implements Subtract Decimal.
func (cpu *CPU) opSP(step *stepInfo) uint16 {
	return cpu.packedAddSub(step, '-')
}

// opZAP implements Zero and Add Decimal: op1 := op2, repacked to op1's
// length; CC set as AP.
func (cpu *CPU) opZAP(step *stepInfo) uint16 {
	return cpu.packedAddSub(step, 'z')
}

func (cpu *CPU) packedAddSub(step *stepInfo, kind byte) uint16 {
	numb1 := int(step.L1) + 1
	numb2 := int(step.L2) + 1

	var op1 int64
	if kind != 'z' {
		v, err := convert.PackedDecimalToInt(cpu.mem.GetBytes(step.address1, numb1))
		if err != nil {
			return 9
		}
		op1 = v
	}
	op2, err := convert.PackedDecimalToInt(cpu.mem.GetBytes(step.address2, numb2))
	if err != nil {
		return 9
	}

	var result int64
	switch kind {
	case '+':
		result = op1 + op2
	case '-':
		result = op1 - op2
	case 'z':
		result = op2
	}

	cpu.mem.PutBytes(step.address1, convert.IntToPackedDecimal(result, numb1*2))
	cpu.setPackedCC(result)
	return 0
}

// opMP implements Multiply Decimal; CC is left unchanged.
func (cpu *CPU) opMP(step *stepInfo) uint16 {
	numb1 := int(step.L1) + 1
	numb2 := int(step.L2) + 1

	op1, err := convert.PackedDecimalToInt(cpu.mem.GetBytes(step.address1, numb1))
	if err != nil {
		return 9
	}
	op2, err := convert.PackedDecimalToInt(cpu.mem.GetBytes(step.address2, numb2))
	if err != nil {
		return 9
	}
	result := op1 * op2
	cpu.mem.PutBytes(step.address1, convert.IntToPackedDecimal(result, numb1*2))
	return 0
}

// opCP implements Compare Decimal: unpack both operands and compare
// signed values.
func (cpu *CPU) opCP(step *stepInfo) uint16 {
	numb1 := int(step.L1) + 1
	numb2 := int(step.L2) + 1

	op1, err := convert.PackedDecimalToInt(cpu.mem.GetBytes(step.address1, numb1))
	if err != nil {
		return 9
	}
	op2, err := convert.PackedDecimalToInt(cpu.mem.GetBytes(step.address2, numb2))
	if err != nil {
		return 9
	}
	switch {
	case op1 == op2:
		cpu.cc = CCEqual
	case op1 < op2:
		cpu.cc = CCLow
	default:
		cpu.cc = CCHigh
	}
	return 0
}

// floorDivMod mirrors Python's // and % operators (result takes the
// divisor's sign), which is what the source's DP relies on.
func floorDivMod(a, b int64) (q, r int64) {
	q = a / b
	r = a % b
	if r != 0 && (r < 0) != (b < 0) {
		q--
		r += b
	}
	return q, r
}

// opDP implements Divide Decimal: dividend length L1+1, divisor length
// L2+1; result = quotient (length L1-L2) followed by remainder (length
// L2+1), written back over the dividend field.
func (cpu *CPU) opDP(step *stepInfo) uint16 {
	numb1 := int(step.L1) + 1
	numb2 := int(step.L2) + 1

	dividend, err := convert.PackedDecimalToInt(cpu.mem.GetBytes(step.address1, numb1))
	if err != nil {
		return 9
	}
	divisor, err := convert.PackedDecimalToInt(cpu.mem.GetBytes(step.address2, numb2))
	if err != nil {
		return 9
	}
	if divisor == 0 {
		return 9
	}
	quotient, remainder := floorDivMod(dividend, divisor)

	quotientLen := numb1 - numb2
	qBytes := convert.IntToPackedDecimal(quotient, quotientLen*2)
	rBytes := convert.IntToPackedDecimal(remainder, numb2*2)
	out := append(append([]byte(nil), qBytes...), rBytes...)
	cpu.mem.PutBytes(step.address1, out)
	return 0
}

// packedDigits returns the decimal-digit nibbles of a packed-decimal field
// (its sign nibble excluded) plus the sign nibble itself.
func packedDigits(pd []byte) (digits []byte, sign byte) {
	digits = make([]byte, 0, len(pd)*2)
	for i, b := range pd {
		digits = append(digits, b>>4)
		if i < len(pd)-1 {
			digits = append(digits, b&0x0F)
		} else {
			sign = b & 0x0F
		}
	}
	return digits, sign
}

// packDigits repacks digits (most-significant first) plus a trailing sign
// nibble into bytes, left-truncating or zero-padding to fit exactly n
// bytes.
func packDigits(digits []byte, sign byte, n int) []byte {
	want := n*2 - 1
	if len(digits) > want {
		digits = digits[len(digits)-want:]
	} else if len(digits) < want {
		pad := make([]byte, want-len(digits))
		digits = append(pad, digits...)
	}
	all := append(append([]byte(nil), digits...), sign)
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = all[2*i]<<4 | all[2*i+1]
	}
	return out
}

// opSRP implements Shift and Round Decimal: shift packed value at
// address1 by the signed count held in D3 (values above 31 are
// two's-complement negatives meaning a right shift), rounding with the
// digit in L2 on a right shift. CC includes overflow when a left shift
// pushes a nonzero digit out the high end.
func (cpu *CPU) opSRP(step *stepInfo) uint16 {
	numb1 := int(step.L1) + 1
	roundingDigit := int(step.L2)

	pd := cpu.mem.GetBytes(step.address1, numb1)
	digits, sign := packedDigits(pd)

	count := int32(step.D3)
	if step.D3 > 31 {
		count = int32(step.D3) - 64
	}

	overflow := false
	switch {
	case count > 0:
		for i := int32(0); i < count; i++ {
			if digits[0] != 0 {
				overflow = true
			}
			digits = append(digits[1:], 0)
		}
	case count < 0:
		shiftOut := byte(0)
		for i := int32(0); i < -count; i++ {
			shiftOut = digits[len(digits)-1]
			digits = append([]byte{0}, digits[:len(digits)-1]...)
		}
		if int(shiftOut)+roundingDigit > 9 {
			digits = incrementDigits(digits)
		}
	}

	cpu.mem.PutBytes(step.address1, packDigits(digits, sign, numb1))

	value := digitsToInt(digits, sign)
	switch {
	case overflow:
		cpu.cc = CCOver
	default:
		cpu.setPackedCC(value)
	}
	return 0
}

func digitsToInt(digits []byte, sign byte) int64 {
	var v int64
	for _, d := range digits {
		v = v*10 + int64(d)
	}
	if !convert.PackedSignPositive(sign) {
		v = -v
	}
	return v
}

func incrementDigits(digits []byte) []byte {
	out := append([]byte(nil), digits...)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] < 9 {
			out[i]++
			return out
		}
		out[i] = 0
	}
	return out
}

// opPACK implements Pack: convert a zoned-decimal source (digit in the low
// nibble of each byte, sign in the high nibble of its last byte) into a
// packed-decimal destination.
func (cpu *CPU) opPACK(step *stepInfo) uint16 {
	numb1 := int(step.L1) + 1
	numb2 := int(step.L2) + 1
	src := cpu.mem.GetBytes(step.address2, numb2)

	digits := make([]byte, numb2)
	for i, b := range src {
		digits[i] = b & 0x0F
	}
	zoneSign := src[numb2-1] >> 4
	sign := byte(0xD)
	if zoneSign == 0xF || zoneSign == 0xC {
		sign = 0xC
	}
	cpu.mem.PutBytes(step.address1, packDigits(digits, sign, numb1))
	return 0
}

// opUNPK implements Unpack: the reverse of PACK, expanding a packed source
// into zoned decimal (zone F on every byte but the last, which carries the
// sign).
func (cpu *CPU) opUNPK(step *stepInfo) uint16 {
	numb1 := int(step.L1) + 1
	numb2 := int(step.L2) + 1
	digits, sign := packedDigits(cpu.mem.GetBytes(step.address2, numb2))

	want := numb1
	if len(digits) > want {
		digits = digits[len(digits)-want:]
	} else if len(digits) < want {
		pad := make([]byte, want-len(digits))
		digits = append(pad, digits...)
	}

	out := make([]byte, numb1)
	for i := 0; i < numb1; i++ {
		out[i] = 0xF0 | digits[i]
	}
	out[numb1-1] = sign<<4 | digits[numb1-1]
	cpu.mem.PutBytes(step.address1, out)
	return 0
}

// opMVO implements Move with Offset: the source digits are shifted one
// nibble right into the destination, whose own existing sign nibble is
// kept as the new low-order nibble.
func (cpu *CPU) opMVO(step *stepInfo) uint16 {
	numb1 := int(step.L1) + 1
	numb2 := int(step.L2) + 1

	dest := cpu.mem.GetBytes(step.address1, numb1)
	destSign := dest[numb1-1] & 0x0F
	src := cpu.mem.GetBytes(step.address2, numb2)

	nibbles := make([]byte, 0, numb2*2+1)
	for _, b := range src {
		nibbles = append(nibbles, b>>4, b&0x0F)
	}
	nibbles = append(nibbles, destSign)

	want := numb1 * 2
	if len(nibbles) > want {
		nibbles = nibbles[len(nibbles)-want:]
	} else if len(nibbles) < want {
		pad := make([]byte, want-len(nibbles))
		nibbles = append(pad, nibbles...)
	}

	out := make([]byte, numb1)
	for i := 0; i < numb1; i++ {
		out[i] = nibbles[2*i]<<4 | nibbles[2*i+1]
	}
	cpu.mem.PutBytes(step.address1, out)
	return 0
}

// opCVB implements Convert to Binary: unpack the 8-byte packed-decimal
// value at address1 into R1.
func (cpu *CPU) opCVB(step *stepInfo) uint16 {
	v, err := convert.PackedDecimalToInt(cpu.mem.GetBytes(step.address1, 8))
	if err != nil {
		return 9
	}
	cpu.regs[step.R1] = uint32(int32(v))
	return 0
}

// opCVD implements Convert to Decimal: pack R1's signed value into the
// 8-byte packed-decimal field at address1.
func (cpu *CPU) opCVD(step *stepInfo) uint16 {
	v := int64(int32(cpu.regs[step.R1]))
	cpu.mem.PutBytes(step.address1, convert.IntToPackedDecimal(v, 16))
	return 0
}

// opED implements Edit: format the packed source under address2 into the
// pattern at address1, in place. Pattern bytes 0x20 (digit-select), 0x21
// (significance-start) and 0x22 (field-separator) drive the state
// machine; any other byte is a literal message character. CC reflects the
// last field edited: 0 all-zero digits, 1 nonzero & negative, 2 nonzero &
// positive.
func (cpu *CPU) opED(step *stepInfo) uint16 {
	_, cc := cpu.edit(step, false)
	cpu.cc = cc
	return 0
}

// opEDMK implements Edit and Mark: as ED, but also records into R1 the
// address of the first significant result byte (only the first such
// event).
func (cpu *CPU) opEDMK(step *stepInfo) uint16 {
	firstSig, cc := cpu.edit(step, true)
	if firstSig != 0 {
		cpu.regs[1] = firstSig
	}
	cpu.cc = cc
	return 0
}

// edit runs the shared ED/EDMK state machine. When mark is set it returns
// the address of the first result byte whose nonzero digit turned
// significance ON (0 if none did; a significance-start byte does not count).
func (cpu *CPU) edit(step *stepInfo, mark bool) (firstSig uint32, cc CC) {
	const (
		digitSelect    = 0x20
		significance   = 0x21
		fieldSeparator = 0x22
	)

	patternLen := int(step.L1) + 1
	pattern := append([]byte(nil), cpu.mem.GetBytes(step.address1, patternLen)...)
	fill := pattern[0]

	srcAddr := step.address2
	srcByte := byte(0)
	high := true
	significant := false

	lastZero := true
	lastSign := byte(0xC)

	nextDigit := func() byte {
		if high {
			srcByte = cpu.mem.GetByte(srcAddr)
			high = false
			if lo := srcByte & 0x0F; lo > 9 {
				lastSign = lo
			}
			d := srcByte >> 4
			return d
		}
		d := srcByte & 0x0F
		high = true
		srcAddr++
		return d
	}

	for i := 1; i < patternLen; i++ {
		b := pattern[i]
		switch b {
		case digitSelect, significance:
			d := nextDigit()
			if d != 0 {
				lastZero = false
			}
			if b == significance {
				significant = true
			}
			if !significant && d == 0 {
				pattern[i] = fill
				break
			}
			if !significant && d != 0 {
				significant = true
				if mark && firstSig == 0 {
					firstSig = step.address1 + uint32(i)
				}
			}
			pattern[i] = 0xF0 | d
		case fieldSeparator:
			pattern[i] = fill
			significant = false
			lastZero = true
		default:
			if !significant {
				pattern[i] = fill
			}
		}
	}

	cpu.mem.PutBytes(step.address1, pattern)

	switch {
	case lastZero:
		cc = CCEqual
	case !convert.PackedSignPositive(lastSign):
		cc = CCLow
	default:
		cc = CCHigh
	}
	return firstSig, cc
}
