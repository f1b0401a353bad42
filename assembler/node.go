package assembler

import (
	"strings"

	"github.com/Urethramancer/battleai/opcodes"
)

// LineType defines the kind of a parsed source line.
type LineType int

const (
	// LineInstruction is a mnemonic with optional operands.
	LineInstruction LineType = iota
	// LineLabel declares a name for the offset of the next instruction.
	LineLabel
	// LineDirective is a dot directive. It is kept but never interpreted.
	LineDirective
)

// Line represents one parsed source line.
type Line struct {
	Type     LineType
	Number   int
	Name     string   // label name, directive name or mnemonic
	Args     string   // raw directive arguments
	Operands []string // instruction operands, trimmed
}

// Instruction is a mnemonic with its operand tokens after macro expansion.
type Instruction struct {
	Mnemonic string
	Operands []string
	Line     int
}

func (i Instruction) String() string {
	if len(i.Operands) == 0 {
		return i.Mnemonic
	}
	return i.Mnemonic + " " + strings.Join(i.Operands, ", ")
}

// NodeType defines the type of an entry in the expanded program.
type NodeType int

const (
	// NodeInstruction holds an expanded instruction.
	NodeInstruction NodeType = iota
	// NodeLabel holds a label declaration.
	NodeLabel
)

// Node is one element of the expanded program walked by both passes.
type Node struct {
	Type   NodeType
	Label  string
	Line   int
	Instr  Instruction
	Spec   *opcodes.Spec // set by the offset pass
	Offset uint32        // set by the offset pass
}
