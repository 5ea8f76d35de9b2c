package cpu

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
)

func TestNewMachineIsReset(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, uint16(0), m.PC())
	assert.Equal(t, uint16(0xffff), m.SP())
	assert.Equal(t, uint16(0), m.O())
	assert.Equal(t, uint64(0), m.Cycles())
	assert.NoError(t, m.Err())
	for i := 0; i < regCount; i++ {
		assert.Equal(t, uint16(0), m.Register(i), "register %d", i)
	}
}

func TestResetClearsDirtyState(t *testing.T) {
	m := NewMachine()
	m.Load(0, []uint16{makeOpcode(opSET, A, 0x1f), 0x0030})
	if _, err := m.StepInstruction(); err != nil {
		t.Fatalf("unexpected error: %v\nstate: %s", err, spew.Sdump(m))
	}
	assert.NotEqual(t, uint16(0), m.Register(A))

	m.Reset()
	assert.Equal(t, uint16(0), m.PC())
	assert.Equal(t, uint16(0xffff), m.SP())
	assert.Equal(t, uint16(0), m.Register(A))
	assert.Equal(t, uint16(0), m.Memory(0))
	assert.Equal(t, uint64(0), m.Cycles())
}

func TestLoadAndMemory(t *testing.T) {
	m := NewMachine()
	words := []uint16{0x7c01, 0x0030, 0x7de1}
	m.Load(0x10, words)
	for i, w := range words {
		assert.Equal(t, w, m.Memory(0x10+uint16(i)))
	}
}

func TestRegisterOutOfRange(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, uint16(0), m.Register(-1))
	assert.Equal(t, uint16(0), m.Register(regCount))
}

func TestRegisterName(t *testing.T) {
	assert.Equal(t, "A", RegisterName(A))
	assert.Equal(t, "J", RegisterName(J))
	assert.Equal(t, "", RegisterName(-1))
	assert.Equal(t, "", RegisterName(regCount))
}
