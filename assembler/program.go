package assembler

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Symbols maps label names to byte offsets in the script stream.
type Symbols map[string]uint32

// Lookup returns the offset bound to a label.
func (s Symbols) Lookup(name string) (uint32, bool) {
	off, ok := s[name]
	return off, ok
}

// Names returns the labels ordered by offset, then by name.
func (s Symbols) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := s[names[i]], s[names[j]]
		if a != b {
			return a < b
		}
		return names[i] < names[j]
	})
	return names
}

// Program is the result of assembling one script.
type Program struct {
	Instructions []*Encoded
	Symbols      Symbols
	Diagnostics  []Diagnostic
	Size         uint32
}

// Failed reports whether any diagnostic is an error.
func (p *Program) Failed() bool {
	for _, d := range p.Diagnostics {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Errors returns the error diagnostics.
func (p *Program) Errors() []Diagnostic {
	var errs []Diagnostic
	for _, d := range p.Diagnostics {
		if d.Severity == Error {
			errs = append(errs, d)
		}
	}
	return errs
}

// Cells returns the whole script stream.
func (p *Program) Cells() []Cell {
	cells := make([]Cell, 0, p.Size)
	for _, e := range p.Instructions {
		cells = append(cells, e.Cells()...)
	}
	return cells
}

// Deferred returns the symbolic names left for the host build, in order of
// first use.
func (p *Program) Deferred() []string {
	var names []string
	seen := make(map[string]bool)
	for _, e := range p.Instructions {
		for _, op := range e.Operands {
			if op.Kind == OperandSymbol && !seen[op.Token] {
				seen[op.Token] = true
				names = append(names, op.Token)
			}
		}
	}
	return names
}

// Bytes returns the script stream as raw bytes. It fails while any operand is
// still symbolic.
func (p *Program) Bytes() ([]byte, error) {
	if d := p.Deferred(); len(d) > 0 {
		return nil, errors.Errorf("unresolved symbols: %s", strings.Join(d, ", "))
	}
	out := make([]byte, 0, p.Size)
	for _, c := range p.Cells() {
		out = append(out, c.Value)
	}
	return out, nil
}
