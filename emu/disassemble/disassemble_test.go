package disassembler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	op "github.com/rcornwell/bal370/emu/opcodemap"
)

func TestDisassembleRR(t *testing.T) {
	inst, length := Disassemble([]byte{op.OpAR, 0x12})
	assert.Equal(t, "AR    1,2", inst)
	assert.Equal(t, 2, length)

	inst, length = Disassemble([]byte{op.OpAR, 0x56, 0x00, 0x10})
	assert.Equal(t, "AR    5,6", inst)
	assert.Equal(t, 2, length)
}

func TestDisassembleRX(t *testing.T) {
	inst, length := Disassemble([]byte{op.OpL, 0x81, 0x21, 0x00})
	assert.Equal(t, "L     8,100(1,2)", inst)
	assert.Equal(t, 4, length)

	inst, length = Disassemble([]byte{op.OpL, 0x50, 0x02, 0x00})
	assert.Equal(t, "L     5,200", inst)
	assert.Equal(t, 4, length)

	inst, length = Disassemble([]byte{op.OpL, 0x70, 0x50, 0xA0})
	assert.Equal(t, "L     7,0A0(5)", inst)
	assert.Equal(t, 4, length)
}

func TestDisassembleSI(t *testing.T) {
	inst, length := Disassemble([]byte{op.OpCLI, 0x85, 0x11, 0x00})
	assert.Equal(t, "CLI   100(1),85", inst)
	assert.Equal(t, 4, length)

	inst, length = Disassemble([]byte{op.OpCLI, 0x45, 0x02, 0x00})
	assert.Equal(t, "CLI   200,45", inst)
	assert.Equal(t, 4, length)
}

func TestDisassembleRS(t *testing.T) {
	inst, length := Disassemble([]byte{op.OpLM, 0x85, 0x11, 0x00})
	assert.Equal(t, "LM    8,5,100(1)", inst)
	assert.Equal(t, 4, length)

	inst, length = Disassemble([]byte{op.OpLM, 0x5A, 0xC2, 0x00})
	assert.Equal(t, "LM    5,10,200(12)", inst)
	assert.Equal(t, 4, length)
}

func TestDisassembleSS(t *testing.T) {
	inst, length := Disassemble([]byte{op.OpMVC, 0x03, 0x01, 0x00, 0x00, 0x45})
	assert.Equal(t, "MVC   3,100,045", inst)
	assert.Equal(t, 6, length)

	inst, length = Disassemble([]byte{op.OpMVC, 0x32, 0x72, 0x00, 0x91, 0x00})
	assert.Equal(t, "MVC   50,200(7),100(9)", inst)
	assert.Equal(t, 6, length)
}

func TestDisassembleSS2(t *testing.T) {
	inst, length := Disassemble([]byte{op.OpAP, 0x30, 0x01, 0x00, 0x00, 0x45})
	assert.Equal(t, "AP    3(0,100),045", inst)
	assert.Equal(t, 6, length)

	inst, length = Disassemble([]byte{op.OpAP, 0x6a, 0x34, 0x00, 0x81, 0x00})
	assert.Equal(t, "AP    6(10,400(3)),100(8)", inst)
	assert.Equal(t, 6, length)
}

func TestDisassembleUndefinedOpcode(t *testing.T) {
	inst, length := Disassemble([]byte{0xFF, 0x00, 0, 0, 0, 0})
	assert.Contains(t, inst, "DC")
	assert.Equal(t, 6, length)
}
