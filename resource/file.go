package resource

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// File adapts an *os.File into a Resource. It is always seekable.
type File struct {
	f *os.File
}

var _ Resource = (*File)(nil)

// NewFile wraps an already-open file. The caller remains responsible for
// closing it.
func NewFile(f *os.File) *File {
	return &File{f: f}
}

// Open opens path for reading and writing, creating it if necessary, and
// wraps it as a Resource. The caller must Close the returned File when
// done.
func Open(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "resource: open file")
	}
	return NewFile(f), nil
}

func (r *File) Read(p []byte) (int, error)  { return r.f.Read(p) }
func (r *File) Write(p []byte) (int, error) { return r.f.Write(p) }

func (r *File) Seekable() bool { return true }

func (r *File) Seek(abs int64) error {
	_, err := r.f.Seek(abs, io.SeekStart)
	return errors.Wrap(err, "resource: seek")
}

func (r *File) Size() (int64, error) {
	info, err := r.f.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "resource: stat")
	}
	return info.Size(), nil
}

// Close closes the underlying file.
func (r *File) Close() error { return r.f.Close() }
