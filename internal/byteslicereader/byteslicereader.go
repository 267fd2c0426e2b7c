// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package byteslicereader offers R, a seekable slice-backed reader. It
// backs resource.Memory, the in-memory implementation of the byte
// resource abstraction used by tests and small tools that don't want to
// touch a filesystem.
package byteslicereader

import (
	"io"

	"github.com/pkg/errors"
)

// R is a seekable, slice-backed reader.
type R struct {
	// Buffer is the backing buffer for this reader.
	Buffer []byte

	pos int64
}

var _ interface {
	io.Reader
	io.Seeker
} = (*R)(nil)

func (r *R) remainingSlice() []byte {
	if r.pos >= int64(len(r.Buffer)) {
		return nil
	}
	return r.Buffer[r.pos:]
}

// Pos returns the reader's current absolute position.
func (r *R) Pos() int64 { return r.pos }

// Read implements io.Reader.
func (r *R) Read(b []byte) (amt int, err error) {
	remaining := r.remainingSlice()
	amt = copy(b, remaining)

	r.pos += int64(amt)
	if amt == 0 && len(b) > 0 {
		err = io.EOF
	}
	return
}

// Seek implements io.Seeker.
func (r *R) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekEnd:
		newPos = int64(len(r.Buffer)) + offset
	case io.SeekCurrent:
		newPos = r.pos + offset
	default:
		return r.pos, errors.Errorf("byteslicereader: unknown whence %d", whence)
	}

	if newPos < 0 || newPos > int64(len(r.Buffer)) {
		return r.pos, errors.New("byteslicereader: seek outside of bounds")
	}

	r.pos = newPos
	return r.pos, nil
}
