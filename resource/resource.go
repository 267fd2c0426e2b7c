// Package resource implements the byte resource abstraction: the lowest
// layer a stream reader or writer sits on. A Resource is just bytes with
// an optional seek capability; everything above this layer (framing,
// compression, class resolution) is resource-agnostic.
package resource

import (
	"io"

	"github.com/pkg/errors"
)

// Resource is a byte sink/source that optionally supports absolute
// seeking. Discovery and seek_to require Seekable() to be true; plain
// forward reading and writing never do.
type Resource interface {
	io.Reader
	io.Writer

	// Seekable reports whether Seek and Size are usable on this resource.
	Seekable() bool

	// Seek moves to an absolute byte offset from the start of the
	// resource. It is only valid when Seekable returns true.
	Seek(abs int64) error

	// Size returns the resource's total byte length. It is only valid
	// when Seekable returns true.
	Size() (int64, error)
}

// ErrNotSeekable is returned by Seek/Size on a non-seekable Resource.
var ErrNotSeekable = errors.New("resource: not seekable")
