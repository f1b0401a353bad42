package output

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/Urethramancer/battleai/assembler"
)

// Magic starts every binary container.
const Magic = "BAI1"

// Image is the content of a binary container.
type Image struct {
	Entries []uint32
	Code    []byte
}

// NewImage builds an image from a program whose operands are all resolved.
// Entries that did not resolve are stored as zero.
func NewImage(prog *assembler.Program, entries []assembler.Entry) (*Image, error) {
	code, err := prog.Bytes()
	if err != nil {
		return nil, errors.Wrap(err, "binary output needs every constant defined")
	}
	img := &Image{Entries: make([]uint32, len(entries)), Code: code}
	for i, e := range entries {
		img.Entries[i] = e.Offset
	}
	return img, nil
}

// WriteBinary writes the container: magic, entry count, entries, code length
// and code. All fields are little-endian.
func WriteBinary(w io.Writer, img *Image) error {
	ew := NewErrWriter(w)
	io.WriteString(ew, Magic)
	binary.Write(ew, binary.LittleEndian, uint32(len(img.Entries)))
	binary.Write(ew, binary.LittleEndian, img.Entries)
	binary.Write(ew, binary.LittleEndian, uint32(len(img.Code)))
	ew.Write(img.Code)
	return ew.Err
}

// ReadBinary parses a container written by WriteBinary.
func ReadBinary(data []byte) (*Image, error) {
	r := bytes.NewReader(data)
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil || string(magic) != Magic {
		return nil, errors.New("not a battle AI script container")
	}

	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, errors.Wrap(err, "reading entry count")
	}
	if int64(n)*4 > int64(r.Len()) {
		return nil, errors.Errorf("entry count %d exceeds container size", n)
	}
	img := &Image{Entries: make([]uint32, n)}
	if err := binary.Read(r, binary.LittleEndian, img.Entries); err != nil {
		return nil, errors.Wrap(err, "reading entries")
	}

	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, errors.Wrap(err, "reading code length")
	}
	if int64(n) != int64(r.Len()) {
		return nil, errors.Errorf("code length %d does not match %d remaining bytes", n, r.Len())
	}
	img.Code = make([]byte, n)
	if _, err := io.ReadFull(r, img.Code); err != nil {
		return nil, errors.Wrap(err, "reading code")
	}
	return img, nil
}
