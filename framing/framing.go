// Package framing implements the on-wire record grammar: fixed 8-byte
// magic tokens bracketing a segment, and individual records of the form
//
//	size:u32LE [class_id:u32LE] payload
//
// where the top bit of size is a flag meaning "a class id follows"; the
// low 31 bits are the payload length. This is the generalization of the
// teacher's protostream varint-length-prefixed record to a fixed-width,
// optionally class-tagged one, grounded on the same "length prefix then
// raw bytes" shape protostream.Encoder/Decoder use.
package framing

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/JohannesEbke/a4io/internal/bufferpool"
	"github.com/JohannesEbke/a4io/internal/dataio"
)

// classIDFlag marks, in a record's size word, that a class id immediately
// follows the size word.
const classIDFlag = uint32(1) << 31

const maxPayloadSize = classIDFlag - 1

// MagicLen is the fixed length of a segment's start/end magic token.
const MagicLen = 8

// StartMagic opens a segment.
var StartMagic = [MagicLen]byte{'A', '4', 'S', 'T', 'R', 'E', 'A', 'M'}

// EndMagic closes a segment.
var EndMagic = [MagicLen]byte{'A', '4', 'S', 'T', 'R', 'M', 'E', 'N'}

// ErrMagicMismatch is returned when a magic token doesn't match the
// expected value.
var ErrMagicMismatch = errors.New("framing: magic token mismatch")

// ErrPayloadTooLarge is returned when a record payload would not fit in
// the 31 bits available for its size.
var ErrPayloadTooLarge = errors.New("framing: payload exceeds maximum record size")

// WriteMagic writes a fixed magic token directly to w (outside of any
// record or compression framing).
func WriteMagic(w io.Writer, tag [MagicLen]byte) error {
	_, err := w.Write(tag[:])
	return errors.Wrap(err, "framing: write magic")
}

// ReadMagic reads and returns the next 8 bytes from r, for comparison
// against StartMagic/EndMagic by the caller.
func ReadMagic(r io.Reader) ([MagicLen]byte, error) {
	var tag [MagicLen]byte
	_, err := io.ReadFull(r, tag[:])
	return tag, err
}

// WriteUint32LE writes v as a raw little-endian u32, outside of any
// record framing (used for the footer_size trailer word).
func WriteUint32LE(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return errors.Wrap(err, "framing: write u32")
}

// ReadUint32LE reads a raw little-endian u32.
func ReadUint32LE(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// Writer writes framed records to a swappable sink. Swapping the sink is
// how a stream.Writer transitions in and out of a compressed section
// without re-creating the framer.
type Writer struct {
	w dataio.Writer
}

// NewWriter returns a Writer over w.
func NewWriter(w dataio.Writer) *Writer { return &Writer{w: w} }

// SetSink redirects subsequent WriteRecord calls to w.
func (fw *Writer) SetSink(w dataio.Writer) { fw.w = w }

// WriteRecord writes one framed record. If includeClassID is false, the
// record's class id flag is left clear and classID is not written; the
// reader is expected to resolve the record to the segment's default
// content class in that case.
func (fw *Writer) WriteRecord(classID uint32, includeClassID bool, payload []byte) error {
	if uint32(len(payload)) > maxPayloadSize {
		return ErrPayloadTooLarge
	}
	size := uint32(len(payload))
	if includeClassID {
		size |= classIDFlag
	}
	if err := WriteUint32LE(fw.w, size); err != nil {
		return errors.Wrap(err, "framing: write record size")
	}
	if includeClassID {
		if err := WriteUint32LE(fw.w, classID); err != nil {
			return errors.Wrap(err, "framing: write record class id")
		}
	}
	if len(payload) > 0 {
		if _, err := fw.w.Write(payload); err != nil {
			return errors.Wrap(err, "framing: write record payload")
		}
	}
	return nil
}

// Reader reads framed records from a swappable source. Its payload buffer
// comes from a bufferpool.Pool shared across the Reader's whole lifetime:
// steady-state reading of a stream with uniformly sized records settles
// into reusing the same backing array call after call rather than
// allocating one per record.
type Reader struct {
	r    dataio.Reader
	pool bufferpool.Pool
	cur  *bufferpool.Buffer
}

// NewReader returns a Reader over r.
func NewReader(r dataio.Reader) *Reader { return &Reader{r: r} }

// SetSource redirects subsequent ReadRecord calls to r.
func (fr *Reader) SetSource(r dataio.Reader) { fr.r = r }

// ReadRecord reads one framed record. hasClassID reports whether classID
// is meaningful; when false, the caller must resolve the record against
// the segment's default content class. err is io.EOF only when zero bytes
// of the size word could be read (a clean stream end); any other
// truncation is returned as a non-EOF error.
//
// The returned payload is only valid until the next call to ReadRecord:
// it aliases a buffer owned by fr's pool, released back to the pool as
// soon as the next record's read begins. Every call site in this module
// fully consumes payload (by unmarshaling it into a message, which copies
// out any bytes fields it keeps) before reading the next record.
func (fr *Reader) ReadRecord() (classID uint32, hasClassID bool, payload []byte, err error) {
	size, err := ReadUint32LE(fr.r)
	if err != nil {
		return 0, false, nil, err
	}
	hasClassID = size&classIDFlag != 0
	size &^= classIDFlag

	if hasClassID {
		classID, err = ReadUint32LE(fr.r)
		if err != nil {
			return 0, false, nil, errors.Wrap(err, "framing: read record class id")
		}
	}

	if fr.cur != nil {
		fr.cur.Release()
		fr.cur = nil
	}
	buf := fr.pool.Get(int(size))
	if size > 0 {
		if _, err := io.ReadFull(fr.r, buf.Bytes()); err != nil {
			buf.Release()
			return 0, false, nil, errors.Wrap(err, "framing: read record payload")
		}
	}
	fr.cur = buf
	return classID, hasClassID, buf.Bytes(), nil
}
