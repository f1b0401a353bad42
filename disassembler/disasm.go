// Package disassembler decodes battle AI byte code back into script source.
package disassembler

import "fmt"

// EntryNames labels entry table offsets as Entry_N. Unused and missing slots
// are stored as zero, so zero offsets are only labelled for slot 0.
func EntryNames(entries []uint32) map[uint32][]string {
	names := make(map[uint32][]string)
	for i, off := range entries {
		if off == 0 && i > 0 {
			continue
		}
		names[off] = append(names[off], fmt.Sprintf("Entry_%d", i))
	}
	return names
}
