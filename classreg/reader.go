package classreg

import "github.com/JohannesEbke/a4io/message"

// Reader is the per-stream inbound class registry described in spec.md
// §4.3. It starts empty at the beginning of each segment (a new dynamic
// descriptor scope) and is populated from the header's content/metadata
// declarations, from ProtoClass body records, and lazily from the
// compile-time table as a fallback.
type Reader struct {
	byID map[uint32]Entry

	contentID  uint32
	metadataID uint32
}

// NewReader returns an empty inbound registry, scoped to one segment.
func NewReader() *Reader {
	return &Reader{byID: make(map[uint32]Entry)}
}

// DeclareContent records that classID is this segment's default content
// class (so class-id-less records resolve to it), resolving it against
// the compile-time table when possible.
func (r *Reader) DeclareContent(classID uint32) {
	r.contentID = classID
	if _, ok := r.byID[classID]; !ok {
		if fixed, ok := LookupFixedByID(classID); ok {
			r.byID[classID] = fixed
		}
	}
}

// DeclareMetadata records that classID is this segment's default metadata
// class.
func (r *Reader) DeclareMetadata(classID uint32) {
	r.metadataID = classID
	if _, ok := r.byID[classID]; !ok {
		if fixed, ok := LookupFixedByID(classID); ok {
			r.byID[classID] = fixed
		}
	}
}

// ContentClassID returns the segment's default content class id, or 0.
func (r *Reader) ContentClassID() uint32 { return r.contentID }

// MetadataClassID returns the segment's default metadata class id, or 0.
func (r *Reader) MetadataClassID() uint32 { return r.metadataID }

// IsMetadataClass reports whether classID is the segment's declared
// default metadata class. Non-default metadata classes are not modeled:
// spec.md's direction rules apply to "the metadata class", singular, per
// segment.
func (r *Reader) IsMetadataClass(classID uint32) bool {
	return r.metadataID != 0 && classID == r.metadataID
}

// RegisterProtoClass registers a dynamic descriptor carried by an
// in-stream ProtoClass record, independent of the compile-time table.
func (r *Reader) RegisterProtoClass(pc *message.ProtoClass) Entry {
	e := Entry{
		ClassID:  pc.ClassId,
		FullName: pc.ClassFullName,
		New:      message.NewDynamicFactory(pc.ClassFullName, pc.Schema),
	}
	r.byID[pc.ClassId] = e
	return e
}

// Resolve returns the entry for classID: an already-registered dynamic or
// declared entry first, falling back to the compile-time table by id.
func (r *Reader) Resolve(classID uint32) (Entry, bool) {
	if e, ok := r.byID[classID]; ok {
		return e, true
	}
	if e, ok := LookupFixedByID(classID); ok {
		r.byID[classID] = e
		return e, true
	}
	return Entry{}, false
}

// New allocates a fresh message instance for classID using Resolve, or
// returns ErrUnknownClass if classID is unknown.
func (r *Reader) New(classID uint32) (message.Message, error) {
	e, ok := r.Resolve(classID)
	if !ok {
		return nil, ErrUnknownClass
	}
	return e.New(), nil
}
