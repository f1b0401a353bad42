package assembler

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Urethramancer/battleai/opcodes"
)

// Macro is a mnemonic that expands to primitive instructions. It is either an
// alias (Target with fixed leading operands) or structural (Build).
type Macro struct {
	Name string

	// Alias form.
	Target string
	Fixed  []string

	// Structural form. Build receives exactly Arity operands.
	Arity int
	Build func(ops []string) []Instruction
}

// Alias returns a macro expanding to target with fixed operands placed ahead of
// the caller's.
func Alias(name, target string, fixed ...string) Macro {
	return Macro{Name: name, Target: target, Fixed: fixed}
}

// Structural returns a macro that rewrites its operands into a sequence of
// primitive instructions.
func Structural(name string, arity int, build func(ops []string) []Instruction) Macro {
	return Macro{Name: name, Arity: arity, Build: build}
}

// IsAlias reports whether the macro is a simple alias.
func (m *Macro) IsAlias() bool {
	return m.Build == nil
}

// expand rewrites ops. The caller has already checked the operand count of
// structural macros.
func (m *Macro) expand(ops []string) []Instruction {
	if m.IsAlias() {
		args := make([]string, 0, len(m.Fixed)+len(ops))
		args = append(args, m.Fixed...)
		args = append(args, ops...)
		return []Instruction{{Mnemonic: m.Target, Operands: args}}
	}
	return m.Build(ops)
}

// MacroSet is an immutable collection of macros validated against a table.
type MacroSet struct {
	macros map[string]*Macro
}

// NewMacroSet validates the macros against the table and returns the set.
// Every instruction a macro produces must be a primitive of the table with a
// matching operand count; macros expanding to other macros are rejected.
func NewMacroSet(t *opcodes.Table, macros ...Macro) (*MacroSet, error) {
	ms := &MacroSet{macros: make(map[string]*Macro, len(macros))}
	for i := range macros {
		m := macros[i]
		if _, ok := ms.macros[m.Name]; ok {
			return nil, errors.Errorf("macro %s defined twice", m.Name)
		}
		if _, ok := t.Lookup(m.Name); ok {
			return nil, errors.Errorf("macro %s shadows a primitive", m.Name)
		}
		ms.macros[m.Name] = &m
	}

	for _, name := range ms.Names() {
		m := ms.macros[name]
		probe := make([]string, m.Arity)
		for i := range probe {
			probe[i] = fmt.Sprintf("arg%d", i)
		}
		if m.IsAlias() {
			probe = nil
		}
		for _, in := range m.expand(probe) {
			if _, ok := ms.macros[in.Mnemonic]; ok {
				return nil, errors.Errorf("macro %s expands to macro %s", name, in.Mnemonic)
			}
			spec, ok := t.Lookup(in.Mnemonic)
			if !ok {
				return nil, errors.Errorf("macro %s expands to unknown mnemonic %s", name, in.Mnemonic)
			}
			if m.IsAlias() {
				if len(in.Operands) > len(spec.Operands) {
					return nil, errors.Errorf("macro %s: %d fixed operands but %s takes %d", name, len(in.Operands), spec.Mnemonic, len(spec.Operands))
				}
				continue
			}
			if len(in.Operands) != len(spec.Operands) {
				return nil, errors.Errorf("macro %s: %s given %d operands, takes %d", name, spec.Mnemonic, len(in.Operands), len(spec.Operands))
			}
		}
	}
	return ms, nil
}

// Lookup returns the macro with the given name.
func (ms *MacroSet) Lookup(name string) (*Macro, bool) {
	if ms == nil {
		return nil, false
	}
	m, ok := ms.macros[name]
	return m, ok
}

// Names returns the macro names in sorted order.
func (ms *MacroSet) Names() []string {
	names := make([]string, 0, len(ms.macros))
	for n := range ms.macros {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Kind classifies a mnemonic.
type Kind int

const (
	// KindUnknown is neither a macro nor a primitive.
	KindUnknown Kind = iota
	// KindPrimitive is an instruction of the opcode table.
	KindPrimitive
	// KindAlias is an alias macro.
	KindAlias
	// KindStructural is a structural macro.
	KindStructural
)

// Resolution is the result of looking a mnemonic up.
type Resolution struct {
	Kind  Kind
	Spec  *opcodes.Spec
	Macro *Macro
}

// Resolve classifies a mnemonic. Macros take precedence over primitives.
func (asm *Assembler) Resolve(mnemonic string) Resolution {
	if m, ok := asm.macros.Lookup(mnemonic); ok {
		if m.IsAlias() {
			return Resolution{Kind: KindAlias, Macro: m}
		}
		return Resolution{Kind: KindStructural, Macro: m}
	}
	if s, ok := asm.table.Lookup(mnemonic); ok {
		return Resolution{Kind: KindPrimitive, Spec: s}
	}
	return Resolution{Kind: KindUnknown}
}

// expand rewrites one instruction line. Non-macros pass through unchanged and
// unknown mnemonics are left for the offset pass to report.
func (s *session) expand(l Line) []Instruction {
	r := s.asm.Resolve(l.Name)
	if r.Kind != KindAlias && r.Kind != KindStructural {
		return []Instruction{{Mnemonic: l.Name, Operands: l.Operands, Line: l.Number}}
	}

	m := r.Macro
	ops := l.Operands
	if r.Kind == KindStructural {
		if len(ops) < m.Arity {
			s.report(Error, l.Number, logrus.Fields{"mnemonic": l.Name},
				"macro %s takes %d operands, got %d", m.Name, m.Arity, len(ops))
			return nil
		}
		if len(ops) > m.Arity {
			s.report(Warning, l.Number, logrus.Fields{"mnemonic": l.Name},
				"macro %s takes %d operands, ignoring %d extra", m.Name, m.Arity, len(ops)-m.Arity)
			ops = ops[:m.Arity]
		}
	}

	out := m.expand(ops)
	for i := range out {
		out[i].Line = l.Number
	}
	return out
}

// condition builds the query-then-compare idiom: query(ops[:n-1]) followed by
// compare(value, target).
func condition(query, compare, value string, arity int) func(ops []string) []Instruction {
	return func(ops []string) []Instruction {
		q := Instruction{Mnemonic: query, Operands: append([]string(nil), ops[:arity-1]...)}
		c := Instruction{Mnemonic: compare, Operands: []string{value, ops[arity-1]}}
		return []Instruction{q, c}
	}
}

// flag builds a single primitive with a fixed flag inserted before the trailing
// operand.
func flag(target, value string) func(ops []string) []Instruction {
	return func(ops []string) []Instruction {
		args := append([]string(nil), ops[:len(ops)-1]...)
		args = append(args, value, ops[len(ops)-1])
		return []Instruction{{Mnemonic: target, Operands: args}}
	}
}

// Gen3Macros returns the macro definitions of the Gen 3 script dialect.
func Gen3Macros() []Macro {
	return []Macro{
		Alias("get_curr_move_type", "get_type", "AI_TYPE_MOVE"),
		Alias("get_user_type1", "get_type", "AI_TYPE1_USER"),
		Alias("get_user_type2", "get_type", "AI_TYPE2_USER"),
		Alias("get_target_type1", "get_type", "AI_TYPE1_TARGET"),
		Alias("get_target_type2", "get_type", "AI_TYPE2_TARGET"),

		Structural("if_ability", 3, condition("check_ability", "if_equal", "1", 3)),
		Structural("if_no_ability", 3, condition("check_ability", "if_equal", "0", 3)),
		Structural("if_type", 3, condition("is_of_type", "if_equal", "1", 3)),
		Structural("if_no_type", 3, condition("is_of_type", "if_equal", "0", 3)),
		Structural("if_double_battle", 1, condition("is_double_battle", "if_equal", "1", 1)),
		Structural("if_not_double_battle", 1, condition("is_double_battle", "if_equal", "0", 1)),

		Structural("if_target_faster", 1, flag("if_user_goes", "1")),
		Structural("if_user_faster", 1, flag("if_user_goes", "0")),
		Structural("if_any_move_disabled", 2, flag("if_any_move_disabled_or_encored", "0")),
		Structural("if_any_move_encored", 2, flag("if_any_move_disabled_or_encored", "1")),
	}
}

var defaultMacros = sync.OnceValue(func() *MacroSet {
	ms, err := NewMacroSet(opcodes.Default(), Gen3Macros()...)
	if err != nil {
		panic(err)
	}
	return ms
})

// DefaultMacros returns the Gen 3 macros validated against opcodes.Default.
func DefaultMacros() *MacroSet {
	return defaultMacros()
}
