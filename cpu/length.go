package cpu

import "fmt"

// DecodeError reports an instruction that cannot be decoded: an unknown
// extended opcode, either encountered during execution or while computing
// InstructionLength.
type DecodeError struct {
	Word uint16 // the offending instruction word
	PC   uint16 // address the word was fetched from; zero when returned by InstructionLength
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cpu: invalid extended opcode in instruction %#04x at pc %#04x", e.Word, e.PC)
}

// extraWords returns how many instruction-stream words operand code
// consumes beyond the opcode word itself: 0 or 1.
func extraWords(code uint16) int {
	if needsNextWord(code) {
		return 1
	}
	return 0
}

// InstructionLength returns the static length, in words, of the instruction
// encoded by word: 1 plus one word for each operand whose addressing mode
// requires a next word. It performs no side effects and does not consult
// the values of any next words, only their presence.
//
// It returns a *DecodeError if word is an extended instruction (basic
// opcode 0) whose extended opcode is not defined, since such an instruction
// has no well-defined length.
func InstructionLength(word uint16) (int, error) {
	op := word & opcodeMask
	aCode := (word & aFieldMask) >> aFieldShift
	bCode := (word & bFieldMask) >> bFieldShift

	if op == opExtended {
		switch aCode {
		case opJSR:
			return 1 + extraWords(bCode), nil
		default:
			return 0, &DecodeError{Word: word}
		}
	}
	return 1 + extraWords(aCode) + extraWords(bCode), nil
}
