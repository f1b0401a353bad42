package disassembler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/Urethramancer/battleai/opcodes"
)

// Instruction represents a single decoded instruction at a specific offset.
type Instruction struct {
	Offset   uint32
	Spec     *opcodes.Spec
	Operands []uint64
}

// Size returns the encoded length of the instruction.
func (i Instruction) Size() uint32 {
	return i.Spec.Size()
}

// Decode reads the instruction starting at pc.
func Decode(code []byte, pc uint32, t *opcodes.Table) (Instruction, error) {
	if int(pc) >= len(code) {
		return Instruction{}, errors.Errorf("offset %04X past end of code", pc)
	}
	spec, ok := t.ByCode(code[pc])
	if !ok {
		return Instruction{}, errors.Errorf("%04X: unknown opcode 0x%02X", pc, code[pc])
	}
	inst := Instruction{Offset: pc, Spec: spec, Operands: make([]uint64, len(spec.Operands))}
	p := int(pc) + 1
	for i, w := range spec.Operands {
		v, ok := opcodes.ReadLE(code[p:], w)
		if !ok {
			return Instruction{}, errors.Errorf("%04X: %s truncated", pc, spec.Mnemonic)
		}
		inst.Operands[i] = v
		p += int(w)
	}
	return inst, nil
}

// DecodeAll decodes the whole stream front to back. The stream holds nothing
// but instructions, so a linear sweep finds every one.
func DecodeAll(code []byte, t *opcodes.Table) ([]Instruction, error) {
	var out []Instruction
	for pc := uint32(0); int(pc) < len(code); {
		inst, err := Decode(code, pc, t)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
		pc += inst.Size()
	}
	return out, nil
}

// Disassemble renders code as script source that assembles back to the same
// bytes. Jump targets get L_XXXX labels; names adds labels of its own, such as
// entry points, and each must sit on an instruction start or the end of code.
func Disassemble(code []byte, t *opcodes.Table, names map[uint32][]string) (string, error) {
	insts, err := DecodeAll(code, t)
	if err != nil {
		return "", err
	}

	// Offsets a label may bind to: every instruction start and the end.
	starts := make(map[uint32]bool, len(insts)+1)
	for _, in := range insts {
		starts[in.Offset] = true
	}
	starts[uint32(len(code))] = true

	labels := make(map[uint32][]string)
	for off, ns := range names {
		if !starts[off] {
			return "", errors.Errorf("label %s at %04X is not an instruction boundary", strings.Join(ns, ", "), off)
		}
		labels[off] = append(labels[off], ns...)
	}
	targets := make(map[uint32]bool)
	for _, in := range insts {
		if ti := in.Spec.Target(); ti >= 0 {
			dst := uint32(in.Operands[ti])
			if starts[dst] && !targets[dst] {
				targets[dst] = true
				labels[dst] = append(labels[dst], labelName(dst))
			}
		}
	}

	var out strings.Builder
	for _, in := range insts {
		writeLabels(&out, labels[in.Offset])
		ops := make([]string, len(in.Operands))
		for i, v := range in.Operands {
			ops[i] = fmt.Sprintf("%d", v)
			if i == in.Spec.Target() && targets[uint32(v)] {
				ops[i] = labelName(uint32(v))
			}
		}
		if len(ops) > 0 {
			fmt.Fprintf(&out, "    %s %s\n", in.Spec.Mnemonic, strings.Join(ops, ", "))
		} else {
			fmt.Fprintf(&out, "    %s\n", in.Spec.Mnemonic)
		}
	}
	writeLabels(&out, labels[uint32(len(code))])
	return out.String(), nil
}

func writeLabels(out *strings.Builder, names []string) {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	for _, n := range sorted {
		fmt.Fprintf(out, "%s:\n", n)
	}
}

func labelName(off uint32) string {
	return fmt.Sprintf("L_%04X", off)
}
