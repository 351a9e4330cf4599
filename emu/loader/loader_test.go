package loader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseObjectDeckSingleRecord(t *testing.T) {
	rec := buildTXT(0x000010, []byte{0xF0, 0xF1, 0xF2, 0xF3})

	image, err := ParseObjectDeck(rec, 64)
	require.NoError(t, err)
	require.Equal(t, []byte{0xF0, 0xF1, 0xF2, 0xF3}, image[0x10:0x14])
}

func TestParseObjectDeckGapZeroFilled(t *testing.T) {
	deck := append(buildTXT(0x000000, []byte{0x01, 0x02}), buildTXT(0x000010, []byte{0x03, 0x04})...)
	image, err := ParseObjectDeck(deck, 32)
	require.NoError(t, err)
	require.Equal(t, byte(0x01), image[0])
	require.Equal(t, byte(0x02), image[1])
	require.Equal(t, byte(0x00), image[8])
	require.Equal(t, byte(0x03), image[0x10])
}

func TestParseObjectDeckORGOverwrite(t *testing.T) {
	deck := append(buildTXT(0x000000, []byte{0xAA, 0xBB}), buildTXT(0x000000, []byte{0xCC})...)
	image, err := ParseObjectDeck(deck, 16)
	require.NoError(t, err)
	require.Equal(t, byte(0xCC), image[0])
	require.Equal(t, byte(0xBB), image[1])
}

func TestLoadListing(t *testing.T) {
	src := "00001C MVI 0(R3),C'0'\n00001E        \nnotaddr garbage\n000020 LA R3,1(R3)\n"
	sm, err := LoadListing(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, "MVI 0(R3),C'0'", sm["00001C"])
	require.Equal(t, "LA R3,1(R3)", sm["000020"])
	_, ok := sm["NOTADDR"]
	require.False(t, ok)
}

func TestLoadSymbols(t *testing.T) {
	src := "AREA1   00001C  4\nLOOP    000010  2\n"
	sym, err := LoadSymbols(strings.NewReader(src))
	require.NoError(t, err)
	s, ok := sym[padSymbol("AREA1")]
	require.True(t, ok)
	require.Equal(t, uint32(0x1C), s.Location)
	require.Equal(t, uint32(4), s.Length)
}

// buildTXT constructs one TXT record as ParseObjectDeck expects: the
// delimiter is literal, so a record lives between two delimiters (or deck
// start/end) as [addr(3)][pad(1)][len(2)][pad(4)][payload].
func buildTXT(addr uint32, payload []byte) []byte {
	rec := []byte{
		byte(addr >> 16), byte(addr >> 8), byte(addr),
		0x00,
		byte(len(payload) >> 8), byte(len(payload)),
		0x00, 0x00, 0x00, 0x00,
	}
	rec = append(rec, payload...)
	return append(append([]byte{}, txtDelimiter...), rec...)
}
