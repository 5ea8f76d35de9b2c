package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNeedsNextWord(t *testing.T) {
	assert.False(t, needsNextWord(0x00)) // register
	assert.False(t, needsNextWord(0x08)) // [register]
	assert.True(t, needsNextWord(0x10))  // [next_word+reg]
	assert.True(t, needsNextWord(0x17))
	assert.False(t, needsNextWord(0x18)) // POP
	assert.False(t, needsNextWord(0x19)) // PEEK
	assert.False(t, needsNextWord(0x1a)) // PUSH
	assert.False(t, needsNextWord(0x1b)) // SP
	assert.False(t, needsNextWord(0x1c)) // PC
	assert.False(t, needsNextWord(0x1d)) // O
	assert.True(t, needsNextWord(0x1e))  // [next_word]
	assert.True(t, needsNextWord(0x1f))  // next_word literal
	assert.False(t, needsNextWord(0x20)) // inline literal 0
	assert.False(t, needsNextWord(0x3f)) // inline literal 31
}

func TestResolveImmediateRegisterIndirect(t *testing.T) {
	m := NewMachine()
	m.reg[A] = 0x100
	m.mem[0x100] = 0x55
	loc := m.resolveImmediate(0x08) // [A]
	assert.Equal(t, uint16(0x55), m.load(loc))
}

func TestResolveImmediatePopPushOrder(t *testing.T) {
	m := NewMachine()
	m.sp = 0xfffe
	m.mem[0xfffe] = 42

	popLoc := m.resolveImmediate(0x18)
	assert.Equal(t, uint16(42), m.load(popLoc))
	assert.Equal(t, uint16(0xffff), m.sp, "POP must post-increment SP")

	pushLoc := m.resolveImmediate(0x1a)
	assert.Equal(t, uint16(0xfffe), m.sp, "PUSH must pre-decrement SP")
	m.store(pushLoc, 7)
	assert.Equal(t, uint16(7), m.mem[0xfffe])
}

func TestResolveImmediateInlineLiteral(t *testing.T) {
	m := NewMachine()
	loc := m.resolveImmediate(0x20) // literal 0
	assert.Equal(t, uint16(0), m.load(loc))

	loc = m.resolveImmediate(0x3f) // literal 31
	assert.Equal(t, uint16(31), m.load(loc))

	m.store(loc, 0xdead)
	assert.Equal(t, uint16(31), m.load(loc), "a literal location's value never changes")
}

func TestResolveDeferredNextWordPlusRegister(t *testing.T) {
	m := NewMachine()
	m.reg[I] = 5
	m.mem[0] = 0x100
	m.mem[0x105] = 0x77

	loc := m.resolveDeferred(0x16) // [next_word + I]
	assert.Equal(t, uint16(1), m.pc, "resolving must consume the next word")
	assert.Equal(t, uint16(0x77), m.load(loc))
}

func TestResolveDeferredNextWordLiteral(t *testing.T) {
	m := NewMachine()
	m.mem[0] = 0x4242
	loc := m.resolveDeferred(0x1f)
	assert.Equal(t, uint16(0x4242), m.load(loc))
	m.store(loc, 1)
	assert.Equal(t, uint16(0x4242), m.load(loc), "writes to a next-word literal are discarded")
}
