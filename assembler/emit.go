package assembler

import (
	"github.com/sirupsen/logrus"

	"github.com/Urethramancer/battleai/opcodes"
)

// emit encodes every placed instruction. It cannot fail: each operand slot gets
// an offset, a literal or a deferred symbol.
func (s *session) emit(placed []*Node) []*Encoded {
	out := make([]*Encoded, 0, len(placed))
	for _, n := range placed {
		out = append(out, s.encode(n))
	}
	return out
}

func (s *session) encode(n *Node) *Encoded {
	spec := n.Spec
	tokens := n.Instr.Operands
	fields := logrus.Fields{"mnemonic": spec.Mnemonic}

	switch {
	case len(tokens) < len(spec.Operands):
		s.report(Warning, n.Line, fields, "%s takes %d operands, got %d; missing operands are zero",
			spec.Mnemonic, len(spec.Operands), len(tokens))
	case len(tokens) > len(spec.Operands):
		s.report(Warning, n.Line, fields, "%s takes %d operands, ignoring %d extra",
			spec.Mnemonic, len(spec.Operands), len(tokens)-len(spec.Operands))
	}

	e := &Encoded{
		Offset:   n.Offset,
		Line:     n.Line,
		Spec:     spec,
		Source:   n.Instr,
		Operands: make([]Operand, len(spec.Operands)),
	}
	for i, w := range spec.Operands {
		tok := "0"
		if i < len(tokens) {
			tok = tokens[i]
		}
		e.Operands[i] = s.resolve(n.Line, spec, tok, w)
	}
	return e
}

// resolve classifies a token as label offset, literal or deferred symbol, in
// that order, and encodes it at the given width.
func (s *session) resolve(line int, spec *opcodes.Spec, tok string, w opcodes.Width) Operand {
	if tok == "" {
		s.report(Warning, line, logrus.Fields{"mnemonic": spec.Mnemonic}, "empty operand encoded as zero")
		return Operand{Kind: OperandLiteral, Width: w, Cells: literalCells(w, 0)}
	}
	if off, ok := s.symbols[tok]; ok {
		if w != opcodes.Word {
			s.report(Warning, line, logrus.Fields{"mnemonic": spec.Mnemonic, "operand": tok},
				"label %s used in a %d-byte operand; offset truncated", tok, w)
		}
		return Operand{Kind: OperandOffset, Token: tok, Value: int64(off), Width: w, Cells: literalCells(w, int64(off))}
	}

	v, ok := parseInteger(tok)
	if !ok {
		v, ok = s.asm.constants[tok]
	}
	if ok {
		if !opcodes.Fits(w, v) {
			s.report(Warning, line, logrus.Fields{"mnemonic": spec.Mnemonic, "operand": tok},
				"value %s does not fit in %d bytes; truncated", tok, w)
		}
		return Operand{Kind: OperandLiteral, Token: tok, Value: v, Width: w, Cells: literalCells(w, v)}
	}

	return Operand{Kind: OperandSymbol, Token: tok, Width: w, Cells: deferredCells(w, tok)}
}
