package cpu

// baseCycles gives the documented base cycle cost of each basic opcode,
// excluding any extra cycles paid by next-word operand resolution or a
// failed conditional's skip.
var baseCycles = map[uint16]int{
	opSET: 1,
	opADD: 2,
	opSUB: 2,
	opMUL: 2,
	opDIV: 3,
	opMOD: 3,
	opSHL: 2,
	opSHR: 2,
	opAND: 1,
	opBOR: 1,
	opXOR: 1,
	opIFE: 2,
	opIFN: 2,
	opIFG: 2,
	opIFB: 2,
}

const jsrBaseCycles = 2

// stepKind names one queued micro-step of an in-flight instruction.
type stepKind int

const (
	stepResolveA stepKind = iota
	stepResolveB
	stepExecWait
)

// queuedStep is one cycle's worth of deferred work. final marks the step
// that, once performed, should also run the instruction's actual semantics
// (finishExecute) — whichever queued step happens to be last, since base
// cycle cost and operand-resolution cost are independent and either may be
// the one to land on the final cycle of an instruction.
type queuedStep struct {
	kind  stepKind
	final bool
}

// continuation is the engine's re-entrant state: everything needed to
// resume instruction processing at the next cycle boundary. Between
// instructions, hasInstr is false and queue is empty, but skipPending may
// still be set (a pending skip survives until doSkip services it); idle
// reports true only once that skip has been serviced too.
type continuation struct {
	hasInstr bool
	instr    uint16
	instrPC  uint16

	extended bool
	op       uint16
	aCode    uint16
	bCode    uint16

	aLoc location
	bLoc location
	aVal uint16
	bVal uint16

	queue []queuedStep

	skipPending bool
}

// idle reports whether the engine has no instruction in flight and no
// pending skip — i.e. the next cycle will start a fresh fetch.
func (m *Machine) idle() bool {
	return !m.cont.hasInstr && len(m.cont.queue) == 0 && !m.cont.skipPending
}

// StepCycles advances the machine by exactly n cycles, or fewer if a decode
// fault is hit partway through. It may leave the machine mid-instruction;
// the continuation captures enough state to resume correctly on the next
// call.
func (m *Machine) StepCycles(n int) error {
	for i := 0; i < n; i++ {
		if m.err != nil {
			return m.err
		}
		m.stepOneCycle()
	}
	return m.err
}

// StepInstruction advances the machine until the instruction currently
// starting (or in flight) completes, including any skip it triggers. It
// returns the number of cycles consumed, which equals the instruction's
// base cost plus any next-word operand costs plus, if a conditional failed,
// the one-cycle skip penalty.
func (m *Machine) StepInstruction() (int, error) {
	cycles := 0
	for {
		if m.err != nil {
			return cycles, m.err
		}
		m.stepOneCycle()
		cycles++
		if m.err != nil {
			return cycles, m.err
		}
		if m.idle() {
			return cycles, nil
		}
	}
}

// StepUntilStuck repeatedly steps whole instructions until PC is unchanged
// across one instruction — the signature of a one-word infinite loop such
// as STOP. It returns the total cycles consumed. If the loaded program
// never reaches such a loop, it does not return; bounding the work is the
// caller's responsibility (StepCycles takes an explicit cycle budget).
func (m *Machine) StepUntilStuck() (int, error) {
	total := 0
	for {
		before := m.pc
		n, err := m.StepInstruction()
		total += n
		if err != nil {
			return total, err
		}
		if m.pc == before {
			return total, nil
		}
	}
}

// stepOneCycle performs exactly one cycle's worth of work and advances the
// cycle counter by one.
func (m *Machine) stepOneCycle() {
	m.cycles++

	if !m.cont.hasInstr && len(m.cont.queue) == 0 {
		if m.cont.skipPending {
			m.doSkip()
			return
		}
		m.doFetch()
		return
	}

	step := m.cont.queue[0]
	m.cont.queue = m.cont.queue[1:]
	switch step.kind {
	case stepResolveA:
		loc := m.resolveDeferred(m.cont.aCode)
		m.cont.aLoc = loc
		m.cont.aVal = m.load(loc)
	case stepResolveB:
		loc := m.resolveDeferred(m.cont.bCode)
		m.cont.bLoc = loc
		m.cont.bVal = m.load(loc)
	case stepExecWait:
		// Extra execute phase of an op whose base cost exceeds one cycle
		// (one for ADD/SUB/MUL/SHL/SHR/IFx/JSR, two for DIV/MOD): the cycle
		// is spent; the operation itself runs on the final step.
	}
	if step.final {
		m.finishExecute()
	}
}

// doFetch reads the instruction word at PC, decodes it, resolves whichever
// operands are free to resolve immediately, and schedules the rest of the
// instruction (deferred operand resolution and/or extra execute phases) as
// a queue of future cycles. If the whole instruction turns out to be
// free (no next-word operands, one base cycle), it executes immediately.
func (m *Machine) doFetch() {
	instrPC := m.pc
	word := m.fetchNextWord()
	m.cont.hasInstr = true
	m.cont.instr = word
	m.cont.instrPC = instrPC

	op := word & opcodeMask
	aCode := (word & aFieldMask) >> aFieldShift
	bCode := (word & bFieldMask) >> bFieldShift

	var steps []queuedStep
	var base int

	if op == opExtended {
		m.cont.extended = true
		m.cont.op = aCode
		m.cont.aCode = bCode

		switch aCode {
		case opJSR:
			base = jsrBaseCycles
		default:
			m.raiseDecodeFault(word, instrPC)
			return
		}

		if needsNextWord(bCode) {
			steps = append(steps, queuedStep{kind: stepResolveA})
		} else {
			loc := m.resolveImmediate(bCode)
			m.cont.aLoc = loc
			m.cont.aVal = m.load(loc)
		}
	} else {
		m.cont.extended = false
		m.cont.op = op
		m.cont.aCode = aCode
		m.cont.bCode = bCode
		base = baseCycles[op]

		if needsNextWord(aCode) {
			steps = append(steps, queuedStep{kind: stepResolveA})
		} else {
			loc := m.resolveImmediate(aCode)
			m.cont.aLoc = loc
			m.cont.aVal = m.load(loc)
		}
		if needsNextWord(bCode) {
			steps = append(steps, queuedStep{kind: stepResolveB})
		} else {
			loc := m.resolveImmediate(bCode)
			m.cont.bLoc = loc
			m.cont.bVal = m.load(loc)
		}
	}

	for i := 0; i < base-1; i++ {
		steps = append(steps, queuedStep{kind: stepExecWait})
	}

	if len(steps) == 0 {
		m.finishExecute()
		return
	}
	steps[len(steps)-1].final = true
	m.cont.queue = steps
}

// doSkip performs the one-cycle "skip the next instruction" action: it
// reads the instruction word at PC only to determine its static length,
// advances PC past it without resolving any of its operands or executing
// it, and clears skipPending.
func (m *Machine) doSkip() {
	word := m.mem[m.pc]
	length, err := InstructionLength(word)
	if err != nil {
		m.raiseDecodeFault(word, m.pc)
		return
	}
	m.pc += uint16(length)
	m.cont.skipPending = false
}

// finishExecute performs the actual semantics of the in-flight
// instruction — the operation table in spec §4.3 — using the operand
// values captured at resolve time, then returns the continuation to idle.
func (m *Machine) finishExecute() {
	defer m.endInstruction()

	if m.cont.extended {
		switch m.cont.op {
		case opJSR:
			m.sp--
			m.mem[m.sp] = m.pc
			m.pc = m.cont.aVal
		}
		return
	}

	a, b := m.cont.aVal, m.cont.bVal
	switch m.cont.op {
	case opSET:
		m.store(m.cont.aLoc, b)
	case opADD:
		t := uint32(a) + uint32(b)
		if t > 0xffff {
			m.o = 1
		} else {
			m.o = 0
		}
		m.store(m.cont.aLoc, uint16(t))
	case opSUB:
		if a < b {
			m.o = 0xffff
		} else {
			m.o = 0
		}
		m.store(m.cont.aLoc, uint16(uint32(a)-uint32(b)))
	case opMUL:
		t := uint32(a) * uint32(b)
		m.o = uint16(t >> 16)
		m.store(m.cont.aLoc, uint16(t))
	case opDIV:
		if b == 0 {
			m.store(m.cont.aLoc, 0)
			m.o = 0
		} else {
			m.o = uint16(((uint32(a) << 16) / uint32(b)) >> 16)
			m.store(m.cont.aLoc, a/b)
		}
	case opMOD:
		if b == 0 {
			m.store(m.cont.aLoc, 0)
		} else {
			m.store(m.cont.aLoc, a%b)
		}
	case opSHL:
		t := uint32(a) << b
		m.o = uint16((t >> 16) & 0xffff)
		m.store(m.cont.aLoc, uint16(t))
	case opSHR:
		m.o = uint16(((uint32(a) << 16) >> b) & 0xffff)
		m.store(m.cont.aLoc, a>>b)
	case opAND:
		m.store(m.cont.aLoc, a&b)
	case opBOR:
		m.store(m.cont.aLoc, a|b)
	case opXOR:
		m.store(m.cont.aLoc, a^b)
	case opIFE:
		if a != b {
			m.cont.skipPending = true
		}
	case opIFN:
		if a == b {
			m.cont.skipPending = true
		}
	case opIFG:
		if !(a > b) {
			m.cont.skipPending = true
		}
	case opIFB:
		if a&b == 0 {
			m.cont.skipPending = true
		}
	}
}

// endInstruction clears the in-flight instruction's resolved state,
// returning the continuation to idle (modulo any skipPending flag just
// raised by finishExecute, which survives until doSkip services it).
func (m *Machine) endInstruction() {
	m.cont.hasInstr = false
	m.cont.extended = false
	m.cont.aLoc = location{}
	m.cont.bLoc = location{}
	m.cont.aVal = 0
	m.cont.bVal = 0
	m.cont.queue = nil
}

// raiseDecodeFault records a fatal decode error and clears the
// continuation. Every subsequent step call returns this same error without
// consuming further cycles.
func (m *Machine) raiseDecodeFault(word, pc uint16) {
	m.err = &DecodeError{Word: word, PC: pc}
	m.cont = continuation{}
}
