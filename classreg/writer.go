package classreg

import "github.com/JohannesEbke/a4io/message"

// assignedClass tracks one class the writer has allocated an id for: its
// id and whether a ProtoClass record has been emitted for it yet.
type assignedClass struct {
	id      uint32
	emitted bool
}

// Writer is the per-stream outbound class registry described in spec.md
// §4.3: it assigns the content/metadata default classes their base ids
// and allocates sequential ids for everything else, remembering which
// classes have already had a ProtoClass record emitted for them.
type Writer struct {
	byName map[string]*assignedClass
	next   uint32

	contentID  uint32
	metadataID uint32
}

// NewWriter returns an empty outbound registry. Default content/metadata
// classes are declared afterwards with DeclareContent/DeclareMetadata.
func NewWriter() *Writer {
	return &Writer{
		byName: make(map[string]*assignedClass),
		next:   FirstDynamicClassID,
	}
}

// DeclareContent assigns name the fixed ContentBase id, as the header's
// default content class. It must be called at most once, before any
// Assign call for a different name collides with ContentBase. Unless
// name is already in the compile-time table, its assignedClass starts
// unemitted: a stream's default content class is otherwise just a bare
// numeric id in the header, with no reader-side factory to build it
// from, so the first Write of that class must still emit a ProtoClass
// descriptor the same way any other dynamically assigned class does.
func (w *Writer) DeclareContent(name string) uint32 {
	w.byName[name] = &assignedClass{id: ContentBase, emitted: fixedByName(name)}
	w.contentID = ContentBase
	return ContentBase
}

// DeclareMetadata assigns name the fixed MetadataBase id, as the header's
// default metadata class. See DeclareContent for why it is not marked
// emitted up front.
func (w *Writer) DeclareMetadata(name string) uint32 {
	w.byName[name] = &assignedClass{id: MetadataBase, emitted: fixedByName(name)}
	w.metadataID = MetadataBase
	return MetadataBase
}

// fixedByName reports whether name already has a compile-time entry, in
// which case every reader can build it without an in-stream descriptor.
func fixedByName(name string) bool {
	_, ok := LookupFixedByName(name)
	return ok
}

// ContentClassID returns the id assigned by DeclareContent, or 0 if none.
func (w *Writer) ContentClassID() uint32 { return w.contentID }

// MetadataClassID returns the id assigned by DeclareMetadata, or 0 if none.
func (w *Writer) MetadataClassID() uint32 { return w.metadataID }

// Assign returns the class id for m, assigning one the first time m's full
// name is seen. needsProtoClass reports whether the caller must emit a
// ProtoClass record for this class before writing m (true exactly once per
// class, the first time, unless the class is fixed in the compile-time
// table; a declared content/metadata default is no exception).
func (w *Writer) Assign(m message.Message) (classID uint32, needsProtoClass bool) {
	name := m.FullName()
	if ac, ok := w.byName[name]; ok {
		if ac.emitted {
			return ac.id, false
		}
		ac.emitted = true
		return ac.id, true
	}

	if fixed, ok := LookupFixedByName(name); ok {
		w.byName[name] = &assignedClass{id: fixed.ClassID, emitted: true}
		return fixed.ClassID, false
	}

	id := w.next
	w.next++
	w.byName[name] = &assignedClass{id: id, emitted: true}
	return id, true
}

// IsContentDefault reports whether classID equals the declared default
// content class id, i.e. whether a record of this class may omit its id.
func (w *Writer) IsContentDefault(classID uint32) bool {
	return w.contentID != 0 && classID == w.contentID
}
