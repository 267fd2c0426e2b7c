// Package stream implements the writer and reader state machines that
// turn a resource.Resource into a sequence of typed messages framed by a
// header/footer, interleaved with metadata markers and compressed
// sections. It is grounded on the teacher's
// replay/streamfile.EventStreamWriter/EventStreamReader, with the
// directory-of-files, device-registry, and staging-directory machinery
// replaced by a single-segment-aware, class-id-based model.
package stream

import (
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

// WriterConfig carries the construction-time knobs a Writer needs beyond
// the resource and message samples themselves, mirroring the teacher's
// EventStreamConfig pattern (a plain struct of optional fields, with a
// "New<Thing>" method on it).
type WriterConfig struct {
	// Logger receives diagnostic messages. Nil means logging.Nop.
	Logger logging.L
}

// NewWriter constructs a Writer over res. content and metadata are sample
// instances of the stream's default content/metadata classes (their
// FullName is used to declare the header's content_class_id/
// metadata_class_id); either may be nil to declare no default class.
// description is the header's free-form description field.
func (cfg WriterConfig) NewWriter(res resource.Resource, content, metadata message.Message, description string) *Writer {
	return &Writer{
		logger:         logging.Must(cfg.Logger),
		res:            res,
		contentSample:  content,
		metadataSample: metadata,
		description:    description,
		wreg:           classreg.NewWriter(),
		classCounts:    make(map[uint32]*message.StreamFooter_ClassCount),
	}
}

// NewWriter is the zero-config convenience constructor.
func NewWriter(res resource.Resource, content, metadata message.Message, description string) *Writer {
	return WriterConfig{}.NewWriter(res, content, metadata, description)
}

// Writer is a single-segment stream writer state machine. It is not safe
// for concurrent use; a single Writer belongs to one goroutine for its
// entire lifetime.
type Writer struct {
	logger logging.L
	res    resource.Resource

	contentSample  message.Message
	metadataSample message.Message
	description    string

	forwardMetadata bool
	codec           uint32
	level           int

	opened bool
	closed bool
	err    error

	wreg *classreg.Writer
	fw   *framing.Writer
	cw   *compress.Writer

	compressed bool

	metadataOffsets   []uint64
	protoclassOffsets []uint64
	classCounts       map[uint32]*message.StreamFooter_ClassCount
}

// SetForwardMetadata selects forward metadata direction. It must be
// called before the first Write/Metadata/Close.
func (w *Writer) SetForwardMetadata() error {
	if w.opened {
		return errors.New("stream: SetForwardMetadata called after open")
	}
	w.forwardMetadata = true
	return nil
}

// SetCompression configures a compressed section to begin with the
// stream's first body record. It must be called before the first
// Write/Metadata/Close.
func (w *Writer) SetCompression(codec uint32, level int) error {
	if w.opened {
		return errors.New("stream: SetCompression called after open")
	}
	switch codec {
	case compress.Uncompressed, compress.Zlib, compress.Gzip, compress.Snappy, compress.LZ4:
	default:
		return compress.ErrUnknownCodec
	}
	w.codec = codec
	w.level = level
	return nil
}

// IsGood reports whether the writer has not yet failed.
func (w *Writer) IsGood() bool { return w.err == nil }

func (w *Writer) fail(err error) error {
	if err == nil {
		return nil
	}
	if w.err == nil {
		w.err = err
		w.logger.Warnf("stream writer failed: %s", err)
	}
	return w.err
}

// ensureOpen writes the start magic, header, and (if configured) the
// opening StartCompressedSection record, exactly once, lazily on the
// first Write, Metadata, or Close call.
func (w *Writer) ensureOpen() error {
	if w.err != nil {
		return w.err
	}
	if w.opened {
		return nil
	}
	w.opened = true

	if err := framing.WriteMagic(w.res, framing.StartMagic); err != nil {
		return w.fail(errors.Wrap(err, "stream: write start magic"))
	}

	var contentID, metadataID uint32
	if w.contentSample != nil {
		contentID = w.wreg.DeclareContent(w.contentSample.FullName())
	}
	if w.metadataSample != nil {
		metadataID = w.wreg.DeclareMetadata(w.metadataSample.FullName())
	}

	w.cw = compress.NewWriter(w.res)
	w.fw = framing.NewWriter(nil)
	w.syncSink()

	hdr := &message.StreamHeader{
		A4Version:             2,
		MetadataRefersForward: w.forwardMetadata,
		ContentClassId:        contentID,
		MetadataClassId:       metadataID,
		Description:           w.description,
	}
	if err := w.writeBuiltin(message.ClassIDStreamHeader, hdr); err != nil {
		return w.fail(err)
	}

	if w.codec != compress.Uncompressed {
		if err := w.writeBuiltin(message.ClassIDStartCompressedSection,
			&message.StartCompressedSection{Codec: w.codec, Level: int32(w.level)}); err != nil {
			return w.fail(err)
		}
		if err := w.cw.Begin(w.codec, w.level); err != nil {
			return w.fail(errors.Wrap(err, "stream: begin compression"))
		}
		w.compressed = true
		w.syncSink()
	}
	return nil
}

func (w *Writer) syncSink() {
	w.fw.SetSink(dataio.MakeWriter(w.cw.Sink()))
}

func (w *Writer) writeBuiltin(classID uint32, m message.Message) error {
	b, err := m.Marshal()
	if err != nil {
		return errors.Wrapf(err, "stream: marshal %s", m.FullName())
	}
	if err := w.fw.WriteRecord(classID, true, b); err != nil {
		return errors.Wrapf(err, "stream: write %s record", m.FullName())
	}
	return nil
}

func (w *Writer) recordClassCount(classID uint32, name string) {
	cc, ok := w.classCounts[classID]
	if !ok {
		cc = &message.StreamFooter_ClassCount{ClassId: classID, ClassName: name}
		w.classCounts[classID] = cc
	}
	cc.Count++
}

// Write emits m as a content record.
func (w *Writer) Write(m message.Message) error {
	if err := w.ensureOpen(); err != nil {
		return err
	}
	if err := w.maybeEmitProtoClass(m); err != nil {
		return w.fail(err)
	}
	classID, _ := w.wreg.Assign(m)
	b, err := m.Marshal()
	if err != nil {
		return w.fail(errors.Wrapf(err, "stream: marshal %s", m.FullName()))
	}
	includeClassID := !w.wreg.IsContentDefault(classID)
	if err := w.fw.WriteRecord(classID, includeClassID, b); err != nil {
		return w.fail(errors.Wrap(err, "stream: write content record"))
	}
	w.recordClassCount(classID, m.FullName())
	return nil
}

// Metadata emits m as a metadata record, recording its on-disk offset for
// the footer's metadata_offsets.
func (w *Writer) Metadata(m message.Message) error {
	if err := w.ensureOpen(); err != nil {
		return err
	}
	if err := w.maybeEmitProtoClass(m); err != nil {
		return w.fail(err)
	}
	classID, _ := w.wreg.Assign(m)
	offset := w.cw.Pos()
	b, err := m.Marshal()
	if err != nil {
		return w.fail(errors.Wrapf(err, "stream: marshal %s", m.FullName()))
	}
	if err := w.fw.WriteRecord(classID, true, b); err != nil {
		return w.fail(errors.Wrap(err, "stream: write metadata record"))
	}
	w.metadataOffsets = append(w.metadataOffsets, uint64(offset))
	w.recordClassCount(classID, m.FullName())
	return nil
}

// maybeEmitProtoClass emits a ProtoClass record for m's class the first
// time it's used, unless the class is fixed in the compile-time table. A
// declared header default that is not fixed gets one too.
func (w *Writer) maybeEmitProtoClass(m message.Message) error {
	classID, needsProtoClass := w.wreg.Assign(m)
	if !needsProtoClass {
		return nil
	}
	offset := w.cw.Pos()
	kind := message.ProtoClassKindOther
	switch classID {
	case w.wreg.ContentClassID():
		kind = message.ProtoClassKindContent
	case w.wreg.MetadataClassID():
		kind = message.ProtoClassKindMetadata
	}
	pc := &message.ProtoClass{
		ClassId:       classID,
		ClassFullName: m.FullName(),
		Kind:          kind,
	}
	if err := w.writeBuiltin(message.ClassIDProtoClass, pc); err != nil {
		return err
	}
	w.protoclassOffsets = append(w.protoclassOffsets, uint64(offset))
	return nil
}

// Close flushes any open compressed section, writes the footer and
// trailer, and marks the writer closed. Close is idempotent.
func (w *Writer) Close() error {
	if w.closed {
		return w.err
	}
	if err := w.ensureOpen(); err != nil {
		w.closed = true
		return err
	}
	w.closed = true

	if w.compressed {
		if err := w.writeBuiltin(message.ClassIDEndCompressedSection, &message.EndCompressedSection{}); err != nil {
			return w.fail(err)
		}
		if err := w.cw.End(); err != nil {
			return w.fail(errors.Wrap(err, "stream: end compression"))
		}
		w.compressed = false
		w.syncSink()
	}

	footerStart := w.cw.Pos()
	footer := &message.StreamFooter{
		Size:              uint64(footerStart),
		MetadataOffsets:   w.metadataOffsets,
		ProtoclassOffsets: w.protoclassOffsets,
		ClassCounts:       sortedClassCounts(w.classCounts),
	}
	fb, err := footer.Marshal()
	if err != nil {
		return w.fail(errors.Wrap(err, "stream: marshal footer"))
	}
	if err := w.fw.WriteRecord(message.ClassIDStreamFooter, true, fb); err != nil {
		return w.fail(errors.Wrap(err, "stream: write footer record"))
	}
	footerRecordBytes := w.cw.Pos() - footerStart

	if err := w.cw.Flush(); err != nil {
		return w.fail(errors.Wrap(err, "stream: flush"))
	}
	if err := framing.WriteUint32LE(w.res, uint32(footerRecordBytes)); err != nil {
		return w.fail(errors.Wrap(err, "stream: write footer size"))
	}
	if err := framing.WriteMagic(w.res, framing.EndMagic); err != nil {
		return w.fail(errors.Wrap(err, "stream: write end magic"))
	}
	return nil
}

func sortedClassCounts(m map[uint32]*message.StreamFooter_ClassCount) []*message.StreamFooter_ClassCount {
	out := make([]*message.StreamFooter_ClassCount, 0, len(m))
	for _, cc := range m {
		out = append(out, cc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClassId < out[j].ClassId })
	return out
}
