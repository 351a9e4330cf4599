package codec

import "testing"

func TestRoundTripDigits(t *testing.T) {
	for d := byte('0'); d <= '9'; d++ {
		e := ToEBCDIC(d)
		if ToASCII(e) != d {
			t.Errorf("round trip digit %c failed: ebcdic=%02X back=%c", d, e, ToASCII(e))
		}
	}
}

func TestKnownValues(t *testing.T) {
	cases := []struct {
		ascii byte
		ebc   byte
	}{
		{'0', 0xF0},
		{'9', 0xF9},
		{'A', 0xC1},
		{'Z', 0xE9},
		{' ', 0x40},
	}
	for _, c := range cases {
		if got := ToEBCDIC(c.ascii); got != c.ebc {
			t.Errorf("ToEBCDIC(%q) = %02X, want %02X", c.ascii, got, c.ebc)
		}
		if got := ToASCII(c.ebc); got != c.ascii {
			t.Errorf("ToASCII(%02X) = %q, want %q", c.ebc, got, c.ascii)
		}
	}
}

func TestBufferTranslate(t *testing.T) {
	src := []byte("HELLO")
	e := ASCIIToEBCDIC(src)
	back := EBCDICToASCII(e)
	if string(back) != "HELLO" {
		t.Errorf("buffer round trip got %q want HELLO", back)
	}
}

func TestUnmappedFallback(t *testing.T) {
	if ToEBCDIC(0x80) != 0x3F {
		t.Errorf("unmapped ASCII byte should map to 0x3F")
	}
	if ToASCII(0x20) != 0x1A {
		t.Errorf("unmapped EBCDIC byte should map to 0x1A")
	}
}
