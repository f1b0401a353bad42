package output

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Artifact is a rendered output file.
type Artifact struct {
	Path string
	Data []byte
}

// WriteArtifacts writes each artifact through a temporary file in the target
// directory and renames it into place, so no file is ever left half written.
// Every artifact must be rendered before calling this.
func WriteArtifacts(arts ...Artifact) error {
	for _, a := range arts {
		if err := writeAtomic(a.Path, a.Data); err != nil {
			return err
		}
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	tmp := f.Name()
	if _, err = f.Write(data); err == nil {
		err = f.Close()
	} else {
		f.Close()
	}
	if err == nil {
		err = os.Chmod(tmp, 0644)
	}
	if err == nil {
		err = os.Rename(tmp, path)
	}
	if err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}
