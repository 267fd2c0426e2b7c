package stream

import (
	"io"

	"github.com/pkg/errors"

	"github.com/JohannesEbke/a4io/classreg"
	"github.com/JohannesEbke/a4io/compress"
	"github.com/JohannesEbke/a4io/framing"
	"github.com/JohannesEbke/a4io/internal/dataio"
	"github.com/JohannesEbke/a4io/message"
	"github.com/JohannesEbke/a4io/resource"
)

// SegmentInfo is one discovered (header, footer) segment, produced by
// walking the footer chain backward from end-of-resource.
type SegmentInfo struct {
	// HeaderStart is the absolute resource offset of the segment's
	// START_MAGIC.
	HeaderStart int64
	// FooterRecordStart is the absolute resource offset of the segment's
	// StreamFooter record.
	FooterRecordStart int64
	// BodyStart is the segment-interior offset of the first record after
	// the StreamHeader: the position seek_to(seg, 0) into a
	// backward-metadata segment must land on, since interior offset 0 is
	// the StreamHeader record itself, not a content record.
	BodyStart uint64

	Header *message.StreamHeader
	Footer *message.StreamFooter

	// Metadata holds every metadata record's decoded message, in file
	// order. It is what the backward-direction live reader indexes into,
	// and what seek_to resolves a metadata index against.
	Metadata []message.Message
	// MetadataOffsets holds the segment-interior on-disk offset of each
	// entry in Metadata, aligned by index, mirroring footer.MetadataOffsets
	// but decoded rather than raw.
	MetadataOffsets []uint64
	// MetadataEndOffsets holds the segment-interior offset immediately
	// after each entry in Metadata: where the content group it labels (in
	// backward direction) begins. SeekTo uses this to land exactly on the
	// first content record a backward metadata index labels.
	MetadataEndOffsets []uint64

	// ProtoClasses holds every ProtoClass record encountered while
	// replaying the segment, in file order. seek_to uses this to rebuild a
	// segment's inbound class registry without a live re-scan.
	ProtoClasses []*message.ProtoClass

	// CompressedRanges holds the [start, end) segment-interior byte ranges
	// during which a compressed section was active. A seek target that
	// falls inside one of these cannot be honored: random access into a
	// compressed section is a stated non-goal (spec.md §1), since the
	// codec's internal buffering means no byte offset inside the range
	// corresponds to a decodable boundary.
	CompressedRanges [][2]uint64
}

// readAt performs an absolute seek-then-read on res, restoring nothing:
// callers that need to preserve position must seek back themselves.
func readAt(res resource.Resource, offset int64, buf []byte) error {
	if err := res.Seek(offset); err != nil {
		return errors.Wrap(err, "stream: seek")
	}
	if _, err := io.ReadFull(res, buf); err != nil {
		return errors.Wrap(ErrTruncated, err.Error())
	}
	return nil
}

// Discover walks the chain of footers backward from end-of-resource,
// parsing each segment's footer and then re-reading that segment forward
// (correctly entering and leaving any compressed sections, since ProtoClass
// records emitted inside one are only meaningful once the codec has been
// entered) to resolve its metadata records and register its dynamic
// descriptors. Discover requires res to be seekable.
func Discover(res resource.Resource) ([]*SegmentInfo, error) {
	if !res.Seekable() {
		return nil, ErrNotSeekable
	}
	size, err := res.Size()
	if err != nil {
		return nil, errors.Wrap(err, "stream: size")
	}

	var reversed []*SegmentInfo
	pos := size
	for {
		if pos < framing.MagicLen+4 {
			return nil, errors.Wrap(ErrTruncated, "not enough bytes for a footer trailer")
		}

		var endMagic [framing.MagicLen]byte
		if err := readAt(res, pos-framing.MagicLen, endMagic[:]); err != nil {
			return nil, err
		}
		if endMagic != framing.EndMagic {
			return nil, errors.Wrap(ErrMagicMismatch, "expected end magic")
		}

		var sizeBuf [4]byte
		if err := readAt(res, pos-framing.MagicLen-4, sizeBuf[:]); err != nil {
			return nil, err
		}
		footerSize, err := framing.ReadUint32LE(bytesReader(sizeBuf[:]))
		if err != nil {
			return nil, errors.Wrap(err, "stream: decode footer size")
		}

		footerRecordStart := pos - framing.MagicLen - 4 - int64(footerSize)
		if footerRecordStart < 0 {
			return nil, errors.Wrap(ErrTruncated, "footer size overruns start of resource")
		}

		if err := res.Seek(footerRecordStart); err != nil {
			return nil, errors.Wrap(err, "stream: seek to footer record")
		}
		fr := framing.NewReader(dataio.MakeReader(res))
		classID, hasClassID, payload, err := fr.ReadRecord()
		if err != nil {
			return nil, errors.Wrap(ErrTruncated, err.Error())
		}
		if !hasClassID || classID != message.ClassIDStreamFooter {
			return nil, errors.Wrap(ErrMagicMismatch, "expected StreamFooter record")
		}
		footer := &message.StreamFooter{}
		if err := footer.Unmarshal(payload); err != nil {
			return nil, errors.Wrap(err, "stream: unmarshal footer")
		}

		headerStart := footerRecordStart - int64(footer.Size) - framing.MagicLen
		if headerStart < 0 {
			return nil, errors.Wrap(ErrTruncated, "footer interior size overruns start of resource")
		}

		info, err := discoverSegmentDetail(res, headerStart, footerRecordStart, footer)
		if err != nil {
			return nil, err
		}
		reversed = append(reversed, info)

		if headerStart == 0 {
			break
		}
		pos = headerStart
	}

	segments := make([]*SegmentInfo, len(reversed))
	for i, s := range reversed {
		segments[len(reversed)-1-i] = s
	}
	return segments, nil
}

// discoverSegmentDetail forward-replays one segment's body (from just
// after its START_MAGIC to its footer record), transparently entering and
// exiting compressed sections, to register ProtoClass descriptors and
// collect metadata records in file order.
func discoverSegmentDetail(res resource.Resource, headerStart, footerRecordStart int64, footer *message.StreamFooter) (*SegmentInfo, error) {
	if err := res.Seek(headerStart + framing.MagicLen); err != nil {
		return nil, errors.Wrap(err, "stream: seek to segment interior")
	}

	cr := compress.NewReader(res)
	fr := framing.NewReader(dataio.MakeReader(cr.Source()))

	classID, hasClassID, payload, err := fr.ReadRecord()
	if err != nil {
		return nil, errors.Wrap(ErrTruncated, err.Error())
	}
	if !hasClassID || classID != message.ClassIDStreamHeader {
		return nil, errors.Wrap(ErrMagicMismatch, "expected StreamHeader record")
	}
	header := &message.StreamHeader{}
	if err := header.Unmarshal(payload); err != nil {
		return nil, errors.Wrap(err, "stream: unmarshal header")
	}
	if header.A4Version != 2 {
		return nil, errors.Wrapf(ErrVersionMismatch, "got a4_version=%d", header.A4Version)
	}

	rreg := classreg.NewReader()
	if header.ContentClassId != 0 {
		rreg.DeclareContent(header.ContentClassId)
	}
	if header.MetadataClassId != 0 {
		rreg.DeclareMetadata(header.MetadataClassId)
	}

	info := &SegmentInfo{
		HeaderStart:       headerStart,
		FooterRecordStart: footerRecordStart,
		BodyStart:         uint64(cr.Pos()),
		Header:            header,
		Footer:            footer,
	}

	var compressedStart uint64
	inCompressed := false

	for headerStart+framing.MagicLen+cr.Pos() < footerRecordStart {
		offset := cr.Pos()
		classID, hasClassID, payload, err := fr.ReadRecord()
		if err != nil {
			return nil, errors.Wrap(ErrTruncated, err.Error())
		}
		resolved := classID
		if !hasClassID {
			resolved = rreg.ContentClassID()
		}

		switch resolved {
		case message.ClassIDStartCompressedSection:
			sc := &message.StartCompressedSection{}
			if err := sc.Unmarshal(payload); err != nil {
				return nil, errors.Wrap(err, "stream: unmarshal StartCompressedSection")
			}
			if err := cr.Begin(sc.Codec); err != nil {
				return nil, errors.Wrap(err, "stream: begin compressed section")
			}
			fr.SetSource(dataio.MakeReader(cr.Source()))
			compressedStart = uint64(cr.Pos())
			inCompressed = true

		case message.ClassIDEndCompressedSection:
			if err := cr.End(); err != nil {
				return nil, errors.Wrap(err, "stream: end compressed section")
			}
			fr.SetSource(dataio.MakeReader(cr.Source()))
			if inCompressed {
				info.CompressedRanges = append(info.CompressedRanges, [2]uint64{compressedStart, uint64(cr.Pos())})
				inCompressed = false
			}

		case message.ClassIDProtoClass:
			pc := &message.ProtoClass{}
			if err := pc.Unmarshal(payload); err != nil {
				return nil, errors.Wrap(err, "stream: unmarshal ProtoClass")
			}
			rreg.RegisterProtoClass(pc)
			info.ProtoClasses = append(info.ProtoClasses, pc)

		default:
			if rreg.IsMetadataClass(resolved) {
				e, ok := rreg.Resolve(resolved)
				if !ok {
					return nil, ErrUnknownClass
				}
				m := e.New()
				if err := m.Unmarshal(payload); err != nil {
					return nil, errors.Wrap(err, "stream: unmarshal metadata")
				}
				info.Metadata = append(info.Metadata, m)
				info.MetadataOffsets = append(info.MetadataOffsets, uint64(offset))
				info.MetadataEndOffsets = append(info.MetadataEndOffsets, uint64(cr.Pos()))
			}
		}
	}

	return info, nil
}

// bytesReader adapts a fixed byte slice into a dataio.Reader for the tiny
// fixed-size reads discovery does directly against already-fetched bytes.
func bytesReader(b []byte) dataio.Reader {
	return dataio.MakeReader(&sliceReader{b: b})
}

type sliceReader struct {
	b []byte
}

func (s *sliceReader) Read(p []byte) (int, error) {
	n := copy(p, s.b)
	s.b = s.b[n:]
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}
