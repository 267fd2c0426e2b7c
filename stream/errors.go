package stream

import (
	"github.com/pkg/errors"

	"github.com/JohannesEbke/a4io/classreg"
	"github.com/JohannesEbke/a4io/compress"
	"github.com/JohannesEbke/a4io/resource"
)

// Sentinel errors for the failure classes a reader or writer can hit.
// Each is declared once with errors.New, or reused from a lower layer,
// and compared with errors.Cause(err) == Err..., the same pattern the
// teacher's code uses for io.EOF detection.
var (
	// ErrTruncated covers unexpected end of resource mid-record, a
	// missing END_MAGIC, or a footer size inconsistent with the tail.
	ErrTruncated = errors.New("stream: truncated")
	// ErrMagicMismatch is a START_MAGIC/END_MAGIC mismatch.
	ErrMagicMismatch = errors.New("stream: magic mismatch")
	// ErrVersionMismatch is a header a4_version != 2.
	ErrVersionMismatch = errors.New("stream: version mismatch")
	// ErrUnknownClass is a record class id with no descriptor.
	ErrUnknownClass = classreg.ErrUnknownClass
	// ErrUnknownCodec is an unsupported compression codec id.
	ErrUnknownCodec = compress.ErrUnknownCodec
	// ErrNotSeekable is a seek-requiring operation on a non-seekable
	// resource.
	ErrNotSeekable = resource.ErrNotSeekable
	// ErrInvalidSeek is a (segment, metadata) seek target out of range
	// even after carry normalization.
	ErrInvalidSeek = errors.New("stream: invalid seek target")
)
