// Package a4io implements the A4 streaming container format: a single
// linear sequence of framed, typed records (header, content, metadata,
// optional compressed sections, footer) that can be written forward-only
// and read either sequentially or by reverse-scanning the file for its
// footer chain.
//
// A4 files are self-describing at the class level: a compile-time
// registry covers the fixed record types every reader understands
// (headers, footers, compressed-section markers), while an
// application's own content and metadata message types are declared per
// stream, either implicitly (the header's default content/metadata
// class) or explicitly via an emitted ProtoClass descriptor the first
// time a non-default type is used.
//
// The subpackages do the actual work:
//
//	resource   the byte-resource abstraction (file, in-memory buffer)
//	framing    the length/class-id record codec and START/END magic
//	compress   the plain/compressed adapter and its codec registry
//	classreg   the fixed and per-stream dynamic class registries
//	message    the Message interface and built-in wire record types
//	stream     the Writer/Reader state machines, Envelope, and discovery
//
// Open and Create are thin convenience wrappers over resource.File and
// stream.NewReader/stream.NewWriter for the common case of a single
// on-disk file; anything that needs an in-memory resource, a custom
// WriterConfig/ReaderConfig, or multi-segment concatenation should use
// the resource and stream packages directly.
package a4io

import (
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/JohannesEbke/a4io/message"
	"github.com/JohannesEbke/a4io/resource"
	"github.com/JohannesEbke/a4io/stream"
)

// stagingPath returns a sibling path to dest for building a file before
// atomically renaming it into place, named with a collision-resistant
// uuid suffix. It plays the role of the teacher's
// stagingdir.New(tempDir, filepath.Base(path)) staging directory, minus
// the directory nesting: a single output file only needs a single
// staging name, not a whole scratch tree.
func stagingPath(dest string) string {
	return dest + ".staging-" + uuid.NewString()
}

// Create builds a brand new single-segment A4 file at path: writing goes
// to a staging sibling file first, and the returned commit function
// renames it into place over path, so a reader never observes a
// partially written file at the destination name. Callers must call
// Writer.Close before invoking commit; committing before the footer is
// written moves an incomplete file into place. This mirrors the
// teacher's stagingdir.Commit atomic-move pattern, without its "move the
// pre-existing destination aside" step: Create refuses to clobber an
// existing file outright rather than salvaging it.
//
// content and metadata are sample instances of the stream's default
// content/metadata classes; either may be nil to declare no default
// class, in which case every record of that kind must be written with
// an explicit class id via a ProtoClass declaration.
func Create(path string, content, metadata message.Message, description string) (*stream.Writer, func() error, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, nil, errors.Errorf("a4: refusing to overwrite existing file %q", path)
	}
	staging := stagingPath(path)

	f, err := resource.Open(staging)
	if err != nil {
		return nil, nil, err
	}
	w := stream.NewWriter(f, content, metadata, description)

	commit := func() error {
		if err := f.Close(); err != nil {
			return err
		}
		return errors.Wrap(os.Rename(staging, path), "a4: commit staged file")
	}
	return w, commit, nil
}

// Open opens path for reading and returns a Reader along with a closer
// that also closes the underlying file.
func Open(path string) (*stream.Reader, func() error, error) {
	f, err := resource.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if err := f.Seek(0); err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	r := stream.NewReader(f)
	return r, f.Close, nil
}
