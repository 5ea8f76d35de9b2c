package cpu

// locKind identifies which cell a location refers to. This is the safe
// reification of the teacher's raw host pointer into guest memory/registers:
// a location names a cell, and load/store operate on the Machine rather than
// dereferencing a pointer.
type locKind int

const (
	locRegister locKind = iota
	locMemory
	locSP
	locPC
	locO
	// locLiteral is a read-only value resolved from an inline small
	// literal or a next-word literal. Loading it yields lit; storing to
	// it is routed to the scratch sink instead, per the "assignment to a
	// literal fails silently" rule.
	locLiteral
)

// location is a mutable cell handle produced by resolving a 6-bit operand
// code: a register, a memory word, one of the three named special
// registers, or a read-only literal.
type location struct {
	kind locKind
	addr uint16 // register index or memory address, when applicable
	lit  uint16 // literal value, when kind == locLiteral
}

// load reads the current value behind loc.
func (m *Machine) load(loc location) uint16 {
	switch loc.kind {
	case locRegister:
		return m.reg[loc.addr]
	case locMemory:
		return m.mem[loc.addr]
	case locSP:
		return m.sp
	case locPC:
		return m.pc
	case locO:
		return m.o
	case locLiteral:
		return loc.lit
	}
	panic("cpu: unreachable location kind")
}

// store writes v behind loc. Writes to a literal location are discarded
// into the scratch sink.
func (m *Machine) store(loc location, v uint16) {
	switch loc.kind {
	case locRegister:
		m.reg[loc.addr] = v
	case locMemory:
		m.mem[loc.addr] = v
	case locSP:
		m.sp = v
	case locPC:
		m.pc = v
	case locO:
		m.o = v
	case locLiteral:
		m.scratch = v
	default:
		panic("cpu: unreachable location kind")
	}
}

// fetchNextWord reads memory[PC], advances PC, and returns the word. Callers
// are responsible for accounting the cycle this costs; fetchNextWord itself
// only ever runs inside a cycle the engine has already charged for.
func (m *Machine) fetchNextWord() uint16 {
	w := m.mem[m.pc]
	m.pc++
	return w
}

// needsNextWord reports whether operand code (6 bits) requires consuming a
// word from the instruction stream to resolve, i.e. whether resolving it
// costs an extra cycle. It performs no side effects, so it is safe to call
// purely to classify an operand before deciding whether to resolve it now
// or defer to a later cycle.
func needsNextWord(code uint16) bool {
	c := code & operandMask
	switch {
	case c >= 0x10 && c <= 0x17: // [next_word + reg]
		return true
	case c == 0x1e: // [next_word]
		return true
	case c == 0x1f: // next_word literal
		return true
	default:
		return false
	}
}

// resolveImmediate resolves an operand code that needsNextWord reports as
// false: register-direct, [reg], POP/PEEK/PUSH, SP/PC/O, and inline small
// literals. It must not be called for a code that needs a next word.
//
// A literal operand resolves to the same locLiteral handle regardless of
// whether it is used as the destination ("a") or source ("b") role: load
// always yields the literal value, and store (only ever reachable when the
// literal was used as a destination) is routed to the scratch sink by
// locLiteral's case in store, so no separate role parameter is needed here.
func (m *Machine) resolveImmediate(code uint16) location {
	c := code & operandMask
	switch {
	case c <= 0x07: // register
		return location{kind: locRegister, addr: c}
	case c <= 0x0f: // [register]
		return location{kind: locMemory, addr: m.reg[c-0x08]}
	case c == 0x18: // POP: [SP++]
		addr := m.sp
		m.sp++
		return location{kind: locMemory, addr: addr}
	case c == 0x19: // PEEK: [SP]
		return location{kind: locMemory, addr: m.sp}
	case c == 0x1a: // PUSH: [--SP]
		m.sp--
		return location{kind: locMemory, addr: m.sp}
	case c == 0x1b:
		return location{kind: locSP}
	case c == 0x1c:
		return location{kind: locPC}
	case c == 0x1d:
		return location{kind: locO}
	case c >= 0x20 && c <= 0x3f: // inline literal 0..31
		return location{kind: locLiteral, lit: c - 0x20}
	}
	panic("cpu: resolveImmediate called on a next-word operand code")
}

// resolveDeferred resolves an operand code that needsNextWord reports as
// true, consuming the next instruction word. It must only be called once
// the cycle engine has actually allotted the cycle this resolution costs.
func (m *Machine) resolveDeferred(code uint16) location {
	c := code & operandMask
	switch {
	case c >= 0x10 && c <= 0x17: // [next_word + reg]
		w := m.fetchNextWord()
		return location{kind: locMemory, addr: w + m.reg[c-0x10]}
	case c == 0x1e: // [next_word]
		w := m.fetchNextWord()
		return location{kind: locMemory, addr: w}
	case c == 0x1f: // next_word literal
		w := m.fetchNextWord()
		return location{kind: locLiteral, lit: w}
	}
	panic("cpu: resolveDeferred called on an immediate operand code")
}
