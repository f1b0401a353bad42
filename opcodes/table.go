package opcodes

import (
	"bufio"
	_ "embed"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

//go:embed gen3.tbl
var gen3 string

// Table maps mnemonics and codes to instruction specs.
type Table struct {
	byName map[string]*Spec
	byCode map[byte]*Spec
	specs  []*Spec
}

// NewTable builds a table from the given specs. Mnemonics and codes must be unique.
func NewTable(specs ...Spec) (*Table, error) {
	t := &Table{
		byName: make(map[string]*Spec, len(specs)),
		byCode: make(map[byte]*Spec, len(specs)),
	}
	for i := range specs {
		s := specs[i]
		if s.Mnemonic == "" {
			return nil, errors.Errorf("opcode 0x%02X has no mnemonic", s.Code)
		}
		if prev, ok := t.byName[s.Mnemonic]; ok {
			return nil, errors.Errorf("duplicate mnemonic %s (0x%02X and 0x%02X)", s.Mnemonic, prev.Code, s.Code)
		}
		if prev, ok := t.byCode[s.Code]; ok {
			return nil, errors.Errorf("duplicate code 0x%02X (%s and %s)", s.Code, prev.Mnemonic, s.Mnemonic)
		}
		s.Operands = append([]Width(nil), s.Operands...)
		t.byName[s.Mnemonic] = &s
		t.byCode[s.Code] = &s
		t.specs = append(t.specs, &s)
	}
	sort.Slice(t.specs, func(i, j int) bool { return t.specs[i].Code < t.specs[j].Code })
	return t, nil
}

// ParseTable reads a table in the format of the embedded gen3.tbl: one
// instruction per line as "code mnemonic signature", with "-" for an empty
// signature and '#' starting a comment.
func ParseTable(r io.Reader) (*Table, error) {
	var specs []Spec
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			return nil, errors.Errorf("line %d: expected code, mnemonic and signature", line)
		}
		code, err := strconv.ParseUint(fields[0], 0, 8)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: bad opcode %q", line, fields[0])
		}
		sig, err := ParseSignature(fields[2])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		specs = append(specs, Spec{Mnemonic: fields[1], Code: byte(code), Operands: sig})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading opcode table")
	}
	return NewTable(specs...)
}

// ParseSignature converts a signature string such as "bbw" to operand widths.
// Both "" and "-" denote an instruction without operands.
func ParseSignature(sig string) ([]Width, error) {
	if sig == "-" {
		return nil, nil
	}
	widths := make([]Width, 0, len(sig))
	for _, c := range sig {
		switch c {
		case 'b':
			widths = append(widths, Byte)
		case 'h':
			widths = append(widths, Half)
		case 'w':
			widths = append(widths, Word)
		default:
			return nil, errors.Errorf("invalid operand width %q in signature %q", c, sig)
		}
	}
	return widths, nil
}

// Lookup returns the spec for a mnemonic.
func (t *Table) Lookup(mnemonic string) (*Spec, bool) {
	s, ok := t.byName[mnemonic]
	return s, ok
}

// ByCode returns the spec for an opcode byte.
func (t *Table) ByCode(code byte) (*Spec, bool) {
	s, ok := t.byCode[code]
	return s, ok
}

// Specs returns all instructions ordered by code.
func (t *Table) Specs() []*Spec {
	return append([]*Spec(nil), t.specs...)
}

// Len returns the number of instructions in the table.
func (t *Table) Len() int {
	return len(t.specs)
}

var defaultTable = sync.OnceValue(func() *Table {
	t, err := ParseTable(strings.NewReader(gen3))
	if err != nil {
		panic(err)
	}
	return t
})

// Default returns the Gen 3 instruction set, including the nop_XX
// placeholders that keep unused codes reserved.
func Default() *Table {
	return defaultTable()
}
