// Package opcodes holds the instruction set shared by the battle AI assembler
// and the interpreter that runs its output.
//
// Every instruction is one opcode byte followed by its operands, each of which
// is a byte, a halfword or a word. Multi-byte operands are little-endian.
package opcodes

import "strings"

// Width is the encoded size of an operand in bytes.
type Width uint8

const (
	// Byte is an 8-bit operand.
	Byte Width = 1
	// Half is a 16-bit operand.
	Half Width = 2
	// Word is a 32-bit operand. Jump targets are always words.
	Word Width = 4
)

// String returns the signature letter for the width.
func (w Width) String() string {
	switch w {
	case Byte:
		return "b"
	case Half:
		return "h"
	case Word:
		return "w"
	default:
		return "?"
	}
}

// Bits returns the width in bits.
func (w Width) Bits() uint {
	return uint(w) * 8
}

// Spec describes one primitive instruction. Specs are shared and must not be
// modified once a Table has been built from them.
type Spec struct {
	Mnemonic string
	Code     byte
	Operands []Width
}

// Size returns the encoded length of the instruction, opcode byte included.
func (s *Spec) Size() uint32 {
	size := uint32(1)
	for _, w := range s.Operands {
		size += uint32(w)
	}
	return size
}

// Signature returns the operand widths as a string such as "bhw".
func (s *Spec) Signature() string {
	var sb strings.Builder
	for _, w := range s.Operands {
		sb.WriteString(w.String())
	}
	return sb.String()
}

// Target returns the index of the operand holding a jump target, or -1 when
// the instruction does not transfer control.
func (s *Spec) Target() int {
	n := len(s.Operands)
	if n == 0 || s.Operands[n-1] != Word {
		return -1
	}
	if strings.HasPrefix(s.Mnemonic, "if_") || s.Mnemonic == "call" || s.Mnemonic == "goto" {
		return n - 1
	}
	return -1
}
