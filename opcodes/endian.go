package opcodes

import (
	"encoding/binary"
)

// AppendLE appends v to b as a little-endian value of the given width.
// Bits above the width are dropped.
func AppendLE(b []byte, w Width, v uint64) []byte {
	switch w {
	case Byte:
		return append(b, byte(v))
	case Half:
		return binary.LittleEndian.AppendUint16(b, uint16(v))
	default:
		return binary.LittleEndian.AppendUint32(b, uint32(v))
	}
}

// ReadLE reads a little-endian value of the given width from the start of b.
// It reports false if b is too short.
func ReadLE(b []byte, w Width) (uint64, bool) {
	if len(b) < int(w) {
		return 0, false
	}
	switch w {
	case Byte:
		return uint64(b[0]), true
	case Half:
		return uint64(binary.LittleEndian.Uint16(b)), true
	default:
		return uint64(binary.LittleEndian.Uint32(b)), true
	}
}

// Fits reports whether v can be stored in the given width, either as an
// unsigned value or as a two's complement signed value.
func Fits(w Width, v int64) bool {
	bits := w.Bits()
	return v >= -(int64(1)<<(bits-1)) && v < int64(1)<<bits
}
