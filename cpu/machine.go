// Package cpu implements a cycle-accurate interpreter for the DCPU-16, a
// 16-bit word-addressed processor with eight general-purpose registers, a
// program counter, a stack pointer, and an overflow register.
//
// The interpreter is steppable at the granularity of a single clock cycle:
// a caller can ask for exactly N cycles of work and the Machine will suspend
// mid-instruction if N is reached, resuming correctly on the next call.
package cpu

// RAMSIZE is the number of addressable 16-bit words of memory.
const RAMSIZE = 0x10000

// Register offsets into Machine.reg.
const (
	A = iota
	B
	C
	X
	Y
	Z
	I
	J
	regCount
)

// Basic opcode constants (bits 0..3 of an instruction word).
const (
	opExtended = iota
	opSET
	opADD
	opSUB
	opMUL
	opDIV
	opMOD
	opSHL
	opSHR
	opAND
	opBOR
	opXOR
	opIFE
	opIFN
	opIFG
	opIFB
)

// Extended opcode constants (bits 4..9 when the basic opcode is 0).
const (
	_ = iota
	opJSR
)

// Instruction field masks, over a little-endian-decoded instruction word
// laid out as bbbbbbaaaaaaoooo (b high, a middle, o low).
const (
	opcodeMask  = 0x000f
	aFieldShift = 4
	aFieldMask  = 0x03f0
	bFieldShift = 10
	bFieldMask  = 0xfc00
	operandMask = 0x3f
)

// STOP is the encoding of "SUB PC, 1", a one-word infinite loop used to
// detect that a program has halted (see StepUntilStuck).
const STOP uint16 = (0x21 << 10) | (0x1c << 4) | 0x03

var registerNames = [regCount]string{"A", "B", "C", "X", "Y", "Z", "I", "J"}

// RegisterName returns the one-letter name ("A".."J") of general-purpose
// register id, or "" if id is out of range.
func RegisterName(id int) string {
	if id < 0 || id >= regCount {
		return ""
	}
	return registerNames[id]
}

// Machine is a single DCPU-16 virtual CPU. The zero value is not usable;
// construct one with NewMachine.
//
// Machine is not safe for concurrent use. All mutation goes through the
// stepping entry points (StepCycles, StepInstruction, StepUntilStuck);
// reading state from another goroutine during a step is a data race by
// contract, not a supported usage.
type Machine struct {
	reg [regCount]uint16
	mem [RAMSIZE]uint16

	pc uint16
	sp uint16
	o  uint16

	// scratch absorbs writes to non-writable destinations (literal
	// operands used as the "a" slot). Its value is undefined after use
	// and must never be read by a correct program.
	scratch uint16

	cycles uint64

	cont continuation
	err  error
}

// NewMachine returns a freshly reset Machine.
func NewMachine() *Machine {
	m := &Machine{}
	m.Reset()
	return m
}

// Reset restores the machine to its initial state: all registers, PC, and O
// cleared to zero, SP set to 0xFFFF, all memory cleared, the cycle counter
// zeroed, and the continuation returned to idle.
func (m *Machine) Reset() {
	m.reg = [regCount]uint16{}
	m.mem = [RAMSIZE]uint16{}
	m.pc = 0
	m.sp = 0xffff
	m.o = 0
	m.scratch = 0
	m.cycles = 0
	m.cont = continuation{}
	m.err = nil
}

// Load copies words into memory starting at base. The caller is responsible
// for ensuring base+len(words) fits within RAMSIZE; Load does not wrap to
// address 0, and words that would land past the end of memory are dropped.
func (m *Machine) Load(base uint16, words []uint16) {
	copy(m.mem[base:], words)
}

// Register returns the value of general-purpose register id (0..7), or 0 if
// id is out of range.
func (m *Machine) Register(id int) uint16 {
	if id < 0 || id >= regCount {
		return 0
	}
	return m.reg[id]
}

// PC returns the program counter.
func (m *Machine) PC() uint16 { return m.pc }

// SP returns the stack pointer.
func (m *Machine) SP() uint16 { return m.sp }

// O returns the overflow register.
func (m *Machine) O() uint16 { return m.o }

// Memory returns the word stored at addr.
func (m *Machine) Memory(addr uint16) uint16 { return m.mem[addr] }

// Cycles returns the number of clock cycles the machine has executed since
// the last Reset.
func (m *Machine) Cycles() uint64 { return m.cycles }

// Err returns the sticky decode fault, if any. Once non-nil, every further
// call to StepCycles, StepInstruction, or StepUntilStuck returns the same
// error without consuming any cycles.
func (m *Machine) Err() error { return m.err }
