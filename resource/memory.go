package resource

import (
	"github.com/pkg/errors"

	"github.com/JohannesEbke/a4io/internal/byteslicereader"
)

// Memory is an in-memory, seekable Resource backed by a growable byte
// slice. It is the resource tests and small tools reach for instead of a
// temp file, built on a trimmed copy of the slice reader the teacher uses
// for its in-memory scans.
type Memory struct {
	r byteslicereader.R
}

var _ Resource = (*Memory)(nil)

// NewMemory returns a Memory resource, optionally pre-populated with
// initial contents (which are copied).
func NewMemory(initial []byte) *Memory {
	m := &Memory{}
	if len(initial) > 0 {
		m.r.Buffer = append([]byte(nil), initial...)
	}
	return m
}

// Bytes returns the resource's current full contents.
func (m *Memory) Bytes() []byte { return m.r.Buffer }

func (m *Memory) Read(p []byte) (int, error) { return m.r.Read(p) }

func (m *Memory) Write(p []byte) (int, error) {
	pos := int(m.r.Pos())
	need := pos + len(p)
	if need > len(m.r.Buffer) {
		grown := make([]byte, need)
		copy(grown, m.r.Buffer)
		m.r.Buffer = grown
	}
	n := copy(m.r.Buffer[pos:], p)
	if _, err := m.r.Seek(int64(pos+n), 0); err != nil {
		return n, errors.Wrap(err, "resource: memory write seek")
	}
	return n, nil
}

func (m *Memory) Seekable() bool { return true }

func (m *Memory) Seek(abs int64) error {
	if abs < 0 {
		return errors.New("resource: negative seek offset")
	}
	if abs > int64(len(m.r.Buffer)) {
		// Seeking past the end is allowed: the buffer is extended with
		// zero bytes up to abs right away, so Size reports abs even
		// before any Write (unlike os.File, whose size only grows on a
		// write).
		grown := make([]byte, abs)
		copy(grown, m.r.Buffer)
		m.r.Buffer = grown
	}
	_, err := m.r.Seek(abs, 0)
	return err
}

func (m *Memory) Size() (int64, error) { return int64(len(m.r.Buffer)), nil }
