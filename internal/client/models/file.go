package models

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// PendingFile is a user-selected file awaiting upload. It is never persisted.
type PendingFile struct {
	Name string
	Size int64
	open func() (io.ReadCloser, error)
}

// Open returns a fresh reader over the file contents.
func (f PendingFile) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("pending file %q has no content", f.Name)
	}
	return f.open()
}

// PendingFileFromPath stats path and returns a PendingFile reading from it.
func PendingFileFromPath(path string) (PendingFile, error) {
	st, err := os.Stat(path)
	if err != nil {
		return PendingFile{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if st.IsDir() {
		return PendingFile{}, fmt.Errorf("%s is a directory", path)
	}

	return PendingFile{
		Name: filepath.Base(path),
		Size: st.Size(),
		open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// PendingFileFromBytes keeps data in memory; used for files received over
// the HTTP bridge and in tests.
func PendingFileFromBytes(name string, data []byte) PendingFile {
	return PendingFile{
		Name: name,
		Size: int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}
