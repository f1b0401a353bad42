package assembler

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Urethramancer/battleai/opcodes"
)

// Assembler holds the tables used to assemble scripts. It is never modified by
// Assemble, so one Assembler may serve concurrent calls.
type Assembler struct {
	table     *opcodes.Table
	macros    *MacroSet
	constants map[string]int64
	log       logrus.FieldLogger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithTable replaces the opcode table. Remember to supply macros validated
// against the same table with WithMacros.
func WithTable(t *opcodes.Table) Option {
	return func(asm *Assembler) { asm.table = t }
}

// WithMacros replaces the macro set. A nil set disables macros.
func WithMacros(ms *MacroSet) Option {
	return func(asm *Assembler) { asm.macros = ms }
}

// WithConstants supplies values for names that would otherwise be passed
// through to the host build.
func WithConstants(c map[string]int64) Option {
	return func(asm *Assembler) {
		asm.constants = make(map[string]int64, len(c))
		for k, v := range c {
			asm.constants[k] = v
		}
	}
}

// WithLogger sets the logger diagnostics are reported to.
func WithLogger(l logrus.FieldLogger) Option {
	return func(asm *Assembler) { asm.log = l }
}

// New creates an Assembler for the Gen 3 instruction set.
func New(opts ...Option) *Assembler {
	asm := &Assembler{
		table:  opcodes.Default(),
		macros: DefaultMacros(),
		log:    logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(asm)
	}
	return asm
}

// Table returns the opcode table in use.
func (asm *Assembler) Table() *opcodes.Table {
	return asm.table
}

// session is the state of one assembly run.
type session struct {
	asm     *Assembler
	name    string
	log     logrus.FieldLogger
	symbols Symbols
	defined map[string]int // label -> line of first definition
	diags   []Diagnostic
	size    uint32
}

func (asm *Assembler) newSession(name string) *session {
	return &session{
		asm:     asm,
		name:    name,
		log:     asm.log,
		symbols: make(Symbols),
		defined: make(map[string]int),
	}
}

// Assemble translates script source into a program. Problems in the source are
// reported as diagnostics on the program and never stop assembly.
func (asm *Assembler) Assemble(src string) *Program {
	return asm.newSession("").run(src)
}

// AssembleFile reads and assembles a script. Only a read failure is returned
// as an error.
func (asm *Assembler) AssembleFile(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading script")
	}
	return asm.newSession(path).run(string(data)), nil
}

func (s *session) run(src string) *Program {
	lines := ParseSource(src)
	nodes := s.expandAll(lines)
	placed := s.assign(nodes)
	encoded := s.emit(placed)

	s.log.WithFields(logrus.Fields{
		"lines":        len(lines),
		"instructions": len(encoded),
		"labels":       len(s.symbols),
		"size":         s.size,
	}).Debug("assembled")

	return &Program{
		Instructions: encoded,
		Symbols:      s.symbols,
		Diagnostics:  s.diags,
		Size:         s.size,
	}
}

// expandAll turns parsed lines into labels and primitive instructions.
// Directives are dropped here.
func (s *session) expandAll(lines []Line) []*Node {
	nodes := make([]*Node, 0, len(lines))
	for _, l := range lines {
		switch l.Type {
		case LineLabel:
			nodes = append(nodes, &Node{Type: NodeLabel, Label: l.Name, Line: l.Number})
		case LineDirective:
			s.log.WithFields(logrus.Fields{"line": l.Number, "directive": l.Name}).Debug("ignoring directive")
		case LineInstruction:
			for _, in := range s.expand(l) {
				nodes = append(nodes, &Node{Type: NodeInstruction, Instr: in, Line: in.Line})
			}
		}
	}
	return nodes
}

// assign binds labels and gives every known instruction its offset.
// Unknown mnemonics are reported and dropped without taking space.
func (s *session) assign(nodes []*Node) []*Node {
	var pc uint32
	placed := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		switch n.Type {
		case NodeLabel:
			if first, ok := s.defined[n.Label]; ok {
				s.report(Error, n.Line, logrus.Fields{"label": n.Label},
					"label %s already defined on line %d", n.Label, first)
				continue
			}
			s.defined[n.Label] = n.Line
			s.symbols[n.Label] = pc

		case NodeInstruction:
			spec, ok := s.asm.table.Lookup(n.Instr.Mnemonic)
			if !ok {
				s.report(Error, n.Line, logrus.Fields{"mnemonic": n.Instr.Mnemonic},
					"unknown opcode: %s", n.Instr.Mnemonic)
				continue
			}
			n.Spec = spec
			n.Offset = pc
			pc += spec.Size()
			placed = append(placed, n)
		}
	}
	s.size = pc
	return placed
}
