// Package output renders assembled scripts for the host build: a C++ source
// and header pair, or a raw binary container.
package output

import (
	"fmt"
	"io"

	"github.com/Urethramancer/battleai/assembler"
)

// CPPOptions names the generated C++ artifacts.
type CPPOptions struct {
	Namespace string
	Scripts   string   // byte stream array
	Table     string   // entry table array
	Header    string   // header included by the source
	Includes  []string // extra includes providing the symbolic constants
}

// DefaultCPPOptions returns the names the battle engine links against.
func DefaultCPPOptions() CPPOptions {
	return CPPOptions{
		Namespace: "pkmn",
		Scripts:   "gBattleAI_Scripts",
		Table:     "gBattleAI_ScriptsTable",
		Header:    "ai_scripts.hpp",
		Includes:  []string{"constants.hpp", "types.hpp"},
	}
}

// WriteSource renders the script stream and the entry table as C++ arrays.
// Deferred bytes become B0..B3 expressions over the symbolic name, and entries
// that did not resolve are written as 0 with an ERROR comment.
func WriteSource(w io.Writer, prog *assembler.Program, entries []assembler.Entry, opt CPPOptions) error {
	ew := NewErrWriter(w)

	fmt.Fprintf(ew, "#include \"%s\"\n", opt.Header)
	for _, inc := range opt.Includes {
		fmt.Fprintf(ew, "#include \"%s\"\n", inc)
	}
	fmt.Fprintf(ew, "\nnamespace %s {\n\n", opt.Namespace)

	io.WriteString(ew, "#define B0(x) ((x) & 0xFF)\n")
	io.WriteString(ew, "#define B1(x) (((x) >> 8) & 0xFF)\n")
	io.WriteString(ew, "#define B2(x) (((x) >> 16) & 0xFF)\n")
	io.WriteString(ew, "#define B3(x) (((x) >> 24) & 0xFF)\n\n")

	fmt.Fprintf(ew, "const uint8_t %s[] = {\n", opt.Scripts)
	for _, e := range prog.Instructions {
		io.WriteString(ew, "    ")
		for _, c := range e.Cells() {
			io.WriteString(ew, c.String())
			io.WriteString(ew, ", ")
		}
		fmt.Fprintf(ew, "// %04X: %s\n", e.Offset, e.Source)
	}
	io.WriteString(ew, "};\n\n")

	fmt.Fprintf(ew, "const uint32_t %s[] = {\n", opt.Table)
	for _, e := range entries {
		switch {
		case e.Unbound():
			fmt.Fprintf(ew, "    0, // %d: unused\n", e.Slot)
		case e.Found:
			fmt.Fprintf(ew, "    %d, // %s\n", e.Offset, e.Name)
		default:
			fmt.Fprintf(ew, "    0, // ERROR: %s not found\n", e.Name)
		}
	}
	io.WriteString(ew, "};\n\n")

	fmt.Fprintf(ew, "} // namespace %s\n", opt.Namespace)
	return ew.Err
}

// WriteHeader renders the declarations of both arrays.
func WriteHeader(w io.Writer, opt CPPOptions) error {
	ew := NewErrWriter(w)
	io.WriteString(ew, "#pragma once\n#include <cstdint>\n\n")
	fmt.Fprintf(ew, "namespace %s {\n", opt.Namespace)
	fmt.Fprintf(ew, "extern const uint8_t %s[];\n", opt.Scripts)
	fmt.Fprintf(ew, "extern const uint32_t %s[];\n", opt.Table)
	fmt.Fprintf(ew, "} // namespace %s\n", opt.Namespace)
	return ew.Err
}

