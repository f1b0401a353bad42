package assembler

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// EntryTable lists the scripts the interpreter can start at, by slot. An empty
// name marks a slot that is intentionally unbound.
type EntryTable []string

// Gen3Entries returns the Gen 3 entry table: ten scripts, nineteen unused
// slots, then roaming, safari and first battle.
func Gen3Entries() EntryTable {
	t := EntryTable{
		"AI_CheckBadMove",
		"AI_TryToFaint",
		"AI_Viability",
		"AI_SetupFirstTurn",
		"AI_Risky",
		"AI_PreferPowerExtremes",
		"AI_PreferBatonPass",
		"AI_DoubleBattle",
		"AI_HPAware",
		"AI_TrySunnyDayStart",
	}
	t = append(t, make(EntryTable, 19)...)
	return append(t, "AI_Roaming", "AI_Safari", "AI_FirstBattle")
}

// ParseEntries reads an entry table: one script name per line, "-" for an
// unbound slot. Blank lines and lines starting with '#' or '@' are skipped.
func ParseEntries(r io.Reader) (EntryTable, error) {
	var t EntryTable
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "@") {
			continue
		}
		if line == "-" {
			line = ""
		}
		t = append(t, line)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading entry table")
	}
	return t, nil
}

// Entry is one resolved slot of an entry table.
type Entry struct {
	Slot   int
	Name   string
	Offset uint32
	Found  bool
}

// Unbound reports whether the slot has no script assigned.
func (e Entry) Unbound() bool {
	return e.Name == ""
}

// Missing reports whether the slot names a label the script does not define.
func (e Entry) Missing() bool {
	return e.Name != "" && !e.Found
}

// Resolve looks every slot up in the symbol table. Missing names are kept,
// marked as not found, with offset zero.
func (t EntryTable) Resolve(sym Symbols) []Entry {
	out := make([]Entry, len(t))
	for i, name := range t {
		out[i] = Entry{Slot: i, Name: name}
		if name == "" {
			continue
		}
		out[i].Offset, out[i].Found = sym.Lookup(name)
	}
	return out
}

// MissingEntries returns the names of slots that did not resolve.
func MissingEntries(entries []Entry) []string {
	var names []string
	for _, e := range entries {
		if e.Missing() {
			names = append(names, e.Name)
		}
	}
	return names
}

// ParseConstants reads NAME = VALUE lines for WithConstants. Blank lines and
// lines starting with '#' or '@' are skipped.
func ParseConstants(r io.Reader) (map[string]int64, error) {
	c := make(map[string]int64)
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "@") {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, errors.Errorf("line %d: expected NAME = VALUE", n)
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		v, ok := parseInteger(value)
		if name == "" || !ok {
			return nil, errors.Errorf("line %d: invalid constant %q", n, line)
		}
		c[name] = v
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading constants")
	}
	return c, nil
}
