package stream

import (
	"io"
	"sort"

	"github.com/pkg/errors"

	"github.com/JohannesEbke/a4io/classreg"
	"github.com/JohannesEbke/a4io/compress"
	"github.com/JohannesEbke/a4io/framing"
	"github.com/JohannesEbke/a4io/internal/dataio"
	"github.com/JohannesEbke/a4io/logging"
	"github.com/JohannesEbke/a4io/message"
	"github.com/JohannesEbke/a4io/resource"
)

// ReaderConfig carries the construction-time knobs a Reader needs beyond
// the resource itself, mirroring WriterConfig.
type ReaderConfig struct {
	// Logger receives diagnostic messages. Nil means logging.Nop.
	Logger logging.L
}

// NewReader constructs a Reader over res.
func (cfg ReaderConfig) NewReader(res resource.Resource) *Reader {
	return &Reader{
		logger: logging.Must(cfg.Logger),
		res:    res,
	}
}

// NewReader is the zero-config convenience constructor.
func NewReader(res resource.Resource) *Reader {
	return ReaderConfig{}.NewReader(res)
}

// Reader is a stream reader state machine, grounded on the teacher's
// EventStreamReader: a persistent decoder cycling across files (there,
// literal files; here, segments within one resource), lazily opening the
// next one and returning io.EOF only at true end of stream. It is not
// safe for concurrent use.
type Reader struct {
	logger logging.L
	res    resource.Resource

	err   error
	ended bool

	// segments is the whole-resource reverse-scan result, computed lazily
	// the first time it's needed: eagerly when the first segment's header
	// declares backward metadata (spec.md §4.5.1), or on demand by SeekTo.
	segments    []*SegmentInfo
	haveSegs    bool
	segIdxKnown bool
	segIdx      int

	// Live per-segment decode state. cr/fr persist across segment
	// boundaries during ordinary forward iteration so a non-seekable
	// resource can still read a concatenated multi-segment stream; SeekTo
	// discards and rebuilds them against a fresh absolute position.
	cr         *compress.Reader
	fr         *framing.Reader
	compressed bool

	// crBaseAbsolute is the resource's absolute byte offset at which the
	// current cr was created: 0 the first time, or a SeekTo/rediscovery
	// target thereafter. Absolute position = crBaseAbsolute + r.cr.Pos().
	crBaseAbsolute int64
	// segInteriorStart is the absolute resource offset of the current
	// segment's interior (the first byte after its START_MAGIC). It is an
	// absolute quantity, unlike crBaseAbsolute, so it stays valid across
	// the cr rebuilds ensureDiscovered and SeekTo perform mid-segment;
	// subtracting it from the current absolute position converts to the
	// segment-relative offset SegmentInfo's MetadataOffsets/
	// MetadataEndOffsets are expressed in.
	segInteriorStart int64

	header     *message.StreamHeader
	rreg       *classreg.Reader
	haveHeader bool

	currentMetadata message.Message
	newMetadata     bool

	// backward-direction bookkeeping: the current segment's discovered
	// metadata list and offsets, indexed by content-record offset to
	// resolve which metadata applies (spec.md §4.5.2).
	backwardOffsets []uint64
	backwardValues  []message.Message
}

// IsGood reports whether the reader has not yet failed.
func (r *Reader) IsGood() bool { return r.err == nil }

// Error reports whether the reader has failed.
func (r *Reader) Error() bool { return r.err != nil }

// End reports whether the reader has reached a clean end of stream.
func (r *Reader) End() bool { return r.ended && r.err == nil }

// CurrentMetadata returns the metadata in force for the last message
// returned by Next, or nil if none.
func (r *Reader) CurrentMetadata() message.Message { return r.currentMetadata }

// TakeNewMetadataFlag reports whether current metadata changed since the
// last call, clearing the flag.
func (r *Reader) TakeNewMetadataFlag() bool {
	v := r.newMetadata
	r.newMetadata = false
	return v
}

func (r *Reader) fail(err error) Envelope {
	if r.err == nil {
		r.err = err
		r.logger.Warnf("stream reader failed: %s", err)
	}
	return errorEnvelope(r.err)
}

// Next advances the reader by one logical step, returning a Message,
// End, or Error envelope per spec.md §4.5.
func (r *Reader) Next() Envelope {
	if r.err != nil {
		return errorEnvelope(r.err)
	}
	if r.ended {
		return endEnvelope()
	}

	for {
		if !r.haveHeader {
			done, err := r.openSegment()
			if err != nil {
				return r.fail(err)
			}
			if done {
				r.ended = true
				return endEnvelope()
			}
		}

		offset := uint64((r.crBaseAbsolute + r.cr.Pos()) - r.segInteriorStart)
		classID, hasClassID, payload, err := r.fr.ReadRecord()
		if err != nil {
			return r.fail(errors.Wrap(ErrTruncated, err.Error()))
		}
		resolved := classID
		if !hasClassID {
			resolved = r.rreg.ContentClassID()
		}

		switch resolved {
		case message.ClassIDStartCompressedSection:
			sc := &message.StartCompressedSection{}
			if err := sc.Unmarshal(payload); err != nil {
				return r.fail(errors.Wrap(err, "stream: unmarshal StartCompressedSection"))
			}
			if err := r.cr.Begin(sc.Codec); err != nil {
				return r.fail(errors.Wrap(err, "stream: begin compressed section"))
			}
			r.fr.SetSource(dataio.MakeReader(r.cr.Source()))
			r.compressed = true
			continue

		case message.ClassIDEndCompressedSection:
			if err := r.cr.End(); err != nil {
				return r.fail(errors.Wrap(err, "stream: end compressed section"))
			}
			r.fr.SetSource(dataio.MakeReader(r.cr.Source()))
			r.compressed = false
			continue

		case message.ClassIDProtoClass:
			pc := &message.ProtoClass{}
			if err := pc.Unmarshal(payload); err != nil {
				return r.fail(errors.Wrap(err, "stream: unmarshal ProtoClass"))
			}
			r.rreg.RegisterProtoClass(pc)
			continue

		case message.ClassIDStreamFooter:
			done, err := r.closeSegment(payload)
			if err != nil {
				return r.fail(err)
			}
			if done {
				r.ended = true
				return endEnvelope()
			}
			continue

		default:
			if r.rreg.IsMetadataClass(resolved) {
				m, err := r.rreg.New(resolved)
				if err != nil {
					return r.fail(err)
				}
				if err := m.Unmarshal(payload); err != nil {
					return r.fail(errors.Wrap(err, "stream: unmarshal metadata"))
				}
				if r.header.MetadataRefersForward {
					r.setCurrentMetadata(m)
				}
				continue
			}

			m, err := r.rreg.New(resolved)
			if err != nil {
				return r.fail(err)
			}
			if err := m.Unmarshal(payload); err != nil {
				return r.fail(errors.Wrap(err, "stream: unmarshal message"))
			}
			if !r.header.MetadataRefersForward {
				r.applyBackwardMetadata(offset)
			}
			return messageEnvelope(resolved, m)
		}
	}
}

func (r *Reader) setCurrentMetadata(m message.Message) {
	r.currentMetadata = m
	r.newMetadata = true
}

// applyBackwardMetadata sets current metadata to the first discovered
// metadata record in this segment whose offset is strictly greater than
// the given content record's offset: the metadata that will eventually be
// written to label it (spec.md §4.5.2, "associated with content records
// preceding it").
func (r *Reader) applyBackwardMetadata(contentOffset uint64) {
	i := sort.Search(len(r.backwardOffsets), func(i int) bool {
		return r.backwardOffsets[i] > contentOffset
	})
	var next message.Message
	if i < len(r.backwardValues) {
		next = r.backwardValues[i]
	}
	if next != r.currentMetadata {
		r.currentMetadata = next
		r.newMetadata = true
	}
}

// openSegment reads the next segment's START_MAGIC and header, or reports
// done=true at a clean end of resource (no bytes at all where a new
// segment's magic was expected).
func (r *Reader) openSegment() (done bool, err error) {
	if r.cr == nil {
		r.cr = compress.NewReader(r.res)
		r.fr = framing.NewReader(dataio.MakeReader(r.cr.Source()))
	}

	tag, err := framing.ReadMagic(r.cr.Source())
	if err != nil {
		if err == io.EOF {
			return true, nil
		}
		return false, errors.Wrap(ErrTruncated, "reading start magic: "+err.Error())
	}
	if tag != framing.StartMagic {
		return false, errors.Wrap(ErrMagicMismatch, "expected start magic")
	}
	r.segInteriorStart = r.crBaseAbsolute + r.cr.Pos()

	classID, hasClassID, payload, err := r.fr.ReadRecord()
	if err != nil {
		return false, errors.Wrap(ErrTruncated, err.Error())
	}
	if !hasClassID || classID != message.ClassIDStreamHeader {
		return false, errors.Wrap(ErrMagicMismatch, "expected StreamHeader record")
	}
	header := &message.StreamHeader{}
	if err := header.Unmarshal(payload); err != nil {
		return false, errors.Wrap(err, "stream: unmarshal header")
	}
	if header.A4Version != 2 {
		return false, errors.Wrapf(ErrVersionMismatch, "got a4_version=%d", header.A4Version)
	}

	r.header = header
	r.rreg = classreg.NewReader()
	if header.ContentClassId != 0 {
		r.rreg.DeclareContent(header.ContentClassId)
	}
	if header.MetadataClassId != 0 {
		r.rreg.DeclareMetadata(header.MetadataClassId)
	}
	r.haveHeader = true
	r.currentMetadata = nil
	r.newMetadata = false
	r.backwardOffsets, r.backwardValues = nil, nil

	if !r.segIdxKnown {
		r.segIdx = 0
		r.segIdxKnown = true
	} else {
		r.segIdx++
	}

	if !header.MetadataRefersForward {
		if err := r.discoverForBackward(); err != nil {
			return false, err
		}
	}
	return false, nil
}

// discoverForBackward ensures whole-resource discovery has run and seeds
// this segment's backward-metadata index from it, per spec.md §4.5.1: a
// backward-metadata segment must expose current metadata from record 0,
// which requires knowing every metadata offset in the segment before
// returning the first content record.
func (r *Reader) discoverForBackward() error {
	if err := r.ensureDiscovered(); err != nil {
		return err
	}
	if r.segIdx >= len(r.segments) {
		return errors.Errorf("stream: segment index %d out of discovered range", r.segIdx)
	}
	info := r.segments[r.segIdx]
	r.backwardOffsets = info.MetadataOffsets
	r.backwardValues = info.Metadata
	return nil
}

// ensureDiscovered runs the whole-resource reverse scan once and caches
// its result. Ordinarily it is invoked immediately after a header is
// parsed and before any body record has been read, which matters: at
// that exact point the live sequential-read position is still an exact
// byte offset (no compressed section has opened yet in this segment), so
// it can be snapshotted, left to Discover's own free use of res.Seek, and
// rebuilt afterward. SeekTo may also call this before anything has been
// opened at all (r.cr == nil), in which case there is no live position to
// preserve: SeekTo repositions unconditionally right after this returns.
func (r *Reader) ensureDiscovered() error {
	if r.haveSegs {
		return nil
	}
	if !r.res.Seekable() {
		return ErrNotSeekable
	}

	if r.cr == nil {
		segs, err := Discover(r.res)
		if err != nil {
			return err
		}
		r.segments = segs
		r.haveSegs = true
		return nil
	}

	resumeAt := r.crBaseAbsolute + r.cr.Pos()

	segs, err := Discover(r.res)
	if err != nil {
		return err
	}

	if err := r.res.Seek(resumeAt); err != nil {
		return errors.Wrap(err, "stream: resume after discovery")
	}
	r.cr = compress.NewReader(r.res)
	r.fr.SetSource(dataio.MakeReader(r.cr.Source()))
	r.compressed = false
	r.crBaseAbsolute = resumeAt

	r.segments = segs
	r.haveSegs = true
	return nil
}

// closeSegment parses a StreamFooter payload (already read by the caller
// as a record), consumes the trailing footer_size/END_MAGIC trailer, and
// reports whether the resource has reached true end of stream.
func (r *Reader) closeSegment(footerPayload []byte) (done bool, err error) {
	footer := &message.StreamFooter{}
	if err := footer.Unmarshal(footerPayload); err != nil {
		return false, errors.Wrap(err, "stream: unmarshal footer")
	}

	if _, err := framing.ReadUint32LE(r.cr.Source()); err != nil {
		return false, errors.Wrap(ErrTruncated, "reading footer size trailer: "+err.Error())
	}

	tag, err := framing.ReadMagic(r.cr.Source())
	if err != nil {
		return false, errors.Wrap(ErrTruncated, "reading end magic: "+err.Error())
	}
	if tag != framing.EndMagic {
		return false, errors.Wrap(ErrMagicMismatch, "expected end magic")
	}

	r.haveHeader = false
	r.header = nil

	atEOF, err := r.cr.PlainAtEOF()
	if err != nil {
		return false, errors.Wrap(err, "stream: probing for next segment")
	}
	return atEOF, nil
}
