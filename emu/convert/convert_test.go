package convert

import "testing"

func TestHexIntRoundTrip(t *testing.T) {
	values := []int32{0, 1, -1, 2147483647, -2147483648, 12345, -12345}
	for _, v := range values {
		hex := IntToHex(v)
		if len(hex) != 8 {
			t.Errorf("IntToHex(%d) = %q, want 8 chars", v, hex)
		}
		back := HexToInt(hex)
		if back != int64(v) {
			t.Errorf("round trip %d -> %s -> %d", v, hex, back)
		}
	}
}

func TestHexToIntSignExtend(t *testing.T) {
	if HexToInt("FFFFFFFF") != -1 {
		t.Errorf("FFFFFFFF should be -1, got %d", HexToInt("FFFFFFFF"))
	}
	if HexToInt("7FFFFFFF") != 2147483647 {
		t.Errorf("7FFFFFFF should be max int32")
	}
}

func TestPackedDecimalRoundTrip(t *testing.T) {
	cases := []int64{0, 123, -123, 999999, -1}
	for _, v := range cases {
		pd := IntToPackedDecimal(v, 7)
		back, err := PackedDecimalToInt(pd)
		if err != nil {
			t.Fatalf("unexpected error for %d: %v", v, err)
		}
		if back != v {
			t.Errorf("packed round trip %d -> %x -> %d", v, pd, back)
		}
	}
}

func TestPackedDecimalKnownBytes(t *testing.T) {
	// +123 packed into 3 bytes: 00 12 3C
	pd := []byte{0x00, 0x12, 0x3C}
	v, err := PackedDecimalToInt(pd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 123 {
		t.Errorf("got %d want 123", v)
	}
}

func TestPackedDecimalBadSign(t *testing.T) {
	pd := []byte{0x12, 0x39}
	if _, err := PackedDecimalToInt(pd); err != ErrBadSign {
		t.Errorf("expected ErrBadSign, got %v", err)
	}
}

func TestPackedSignPositive(t *testing.T) {
	for _, s := range []byte{0xA, 0xC, 0xE, 0xF} {
		if !PackedSignPositive(s) {
			t.Errorf("sign %X should be positive", s)
		}
	}
	for _, s := range []byte{0xB, 0xD} {
		if PackedSignPositive(s) {
			t.Errorf("sign %X should be negative", s)
		}
	}
}
