package assembler

import (
	"fmt"

	"github.com/Urethramancer/battleai/opcodes"
)

// CellKind tells whether a byte of output is known or left to the host build.
type CellKind uint8

const (
	// CellLiteral is a resolved byte.
	CellLiteral CellKind = iota
	// CellDeferred is byte Index of the named constant Expr, resolved by the
	// host compiler.
	CellDeferred
)

// Cell is one byte of the emitted stream.
type Cell struct {
	Kind  CellKind
	Value byte
	Expr  string
	Index int
}

func (c Cell) String() string {
	if c.Kind == CellDeferred {
		return fmt.Sprintf("B%d(%s)", c.Index, c.Expr)
	}
	return fmt.Sprintf("0x%02X", c.Value)
}

// OperandKind classifies a resolved operand token.
type OperandKind uint8

const (
	// OperandOffset is a label resolved to its byte offset.
	OperandOffset OperandKind = iota
	// OperandLiteral is an integer literal or a named constant with a known value.
	OperandLiteral
	// OperandSymbol is a name passed through to the host build.
	OperandSymbol
)

func (k OperandKind) String() string {
	switch k {
	case OperandOffset:
		return "offset"
	case OperandLiteral:
		return "literal"
	default:
		return "symbol"
	}
}

// Operand is one encoded operand slot.
type Operand struct {
	Kind  OperandKind
	Token string
	Value int64 // offset or literal value; zero for symbols
	Width opcodes.Width
	Cells []Cell
}

func literalCells(w opcodes.Width, v int64) []Cell {
	b := opcodes.AppendLE(make([]byte, 0, w), w, uint64(v))
	cells := make([]Cell, len(b))
	for i, x := range b {
		cells[i] = Cell{Kind: CellLiteral, Value: x}
	}
	return cells
}

func deferredCells(w opcodes.Width, expr string) []Cell {
	cells := make([]Cell, w)
	for i := range cells {
		cells[i] = Cell{Kind: CellDeferred, Expr: expr, Index: i}
	}
	return cells
}

// Encoded is an instruction after both passes.
type Encoded struct {
	Offset   uint32
	Line     int
	Spec     *opcodes.Spec
	Source   Instruction
	Operands []Operand
}

// Size returns the encoded length in bytes.
func (e *Encoded) Size() uint32 {
	return e.Spec.Size()
}

// Cells returns the opcode byte followed by the operand bytes.
func (e *Encoded) Cells() []Cell {
	cells := make([]Cell, 0, e.Size())
	cells = append(cells, Cell{Kind: CellLiteral, Value: e.Spec.Code})
	for _, op := range e.Operands {
		cells = append(cells, op.Cells...)
	}
	return cells
}
