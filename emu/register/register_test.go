package register

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCastViews(t *testing.T) {
	v := Cast(0xFFFFFFFF, KindInt)
	assert.Equal(t, uint32(0xFFFFFFFF), v.AsUint())
	assert.Equal(t, int32(-1), v.AsInt())
	assert.Equal(t, KindInt, v.Kind())
}

func TestAsHexMatchesConvert(t *testing.T) {
	v := Cast(0x1C, KindAddr)
	assert.Equal(t, "0000001C", v.AsHex())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "int", KindInt.String())
	assert.Equal(t, "addr", KindAddr.String())
	assert.Equal(t, "mask", KindMask.String())
	assert.Equal(t, "?", KindUnknown.String())
}

func TestFileNoteAndView(t *testing.T) {
	var f File
	f.Note(3, KindAddr)
	v := f.View(3, 0x2000)
	assert.Equal(t, KindAddr, v.Kind())
	assert.Equal(t, uint32(0x2000), v.AsUint())

	// Unnoted registers default to KindUnknown.
	v2 := f.View(5, 0x10)
	assert.Equal(t, KindUnknown, v2.Kind())
}
