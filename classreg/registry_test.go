package classreg

import (
	"testing"

	"github.com/JohannesEbke/a4io/message"
)

func TestWriterAssignsFixedIDsToDeclaredDefaults(t *testing.T) {
	w := NewWriter()
	contentID := w.DeclareContent("a4.demo.Event")
	metadataID := w.DeclareMetadata("a4.demo.RunMetadata")

	if contentID != ContentBase {
		t.Fatalf("got content id %d, want %d", contentID, ContentBase)
	}
	if metadataID != MetadataBase {
		t.Fatalf("got metadata id %d, want %d", metadataID, MetadataBase)
	}

	classID, needsProtoClass := w.Assign(&message.Event{})
	// a4.demo.Event is not in the compile-time table, so the declared
	// default still needs a ProtoClass the first time it is assigned.
	if classID != ContentBase || !needsProtoClass {
		t.Fatalf("got id=%d needsProtoClass=%v, want %d/true", classID, needsProtoClass, ContentBase)
	}
	if !w.IsContentDefault(classID) {
		t.Fatalf("expected %d to be the content default", classID)
	}
}

func TestWriterAssignsSequentialIDsToNewClasses(t *testing.T) {
	w := NewWriter()

	classID1, needs1 := w.Assign(nameOnly{"custom.One"})
	if !needs1 || classID1 != FirstDynamicClassID {
		t.Fatalf("got id=%d needs=%v, want %d/true", classID1, needs1, FirstDynamicClassID)
	}

	// Assigning the same class again must not re-request a ProtoClass.
	classID1Again, needs1Again := w.Assign(nameOnly{"custom.One"})
	if needs1Again || classID1Again != classID1 {
		t.Fatalf("got id=%d needs=%v on second assign, want %d/false", classID1Again, needs1Again, classID1)
	}

	classID2, needs2 := w.Assign(nameOnly{"custom.Two"})
	if !needs2 || classID2 != FirstDynamicClassID+1 {
		t.Fatalf("got id=%d needs=%v, want %d/true", classID2, needs2, FirstDynamicClassID+1)
	}
}

// nameOnly is a minimal message.Message stand-in for exercising Assign
// without pulling in a real proto-backed type.
type nameOnly struct{ name string }

func (n nameOnly) Marshal() ([]byte, error) { return nil, nil }
func (n nameOnly) Unmarshal(b []byte) error { return nil }
func (n nameOnly) FullName() string         { return n.name }

func TestReaderResolvesFixedClassesWithoutExplicitDeclaration(t *testing.T) {
	r := NewReader()
	e, ok := r.Resolve(message.ClassIDStreamHeader)
	if !ok {
		t.Fatalf("expected StreamHeader to resolve from the compile-time table")
	}
	if e.FullName != "a4.StreamHeader" {
		t.Fatalf("got %q", e.FullName)
	}
}

func TestReaderRegisterProtoClassThenResolve(t *testing.T) {
	r := NewReader()
	pc := &message.ProtoClass{ClassId: 100, ClassFullName: "custom.Thing"}
	r.RegisterProtoClass(pc)

	m, err := r.New(100)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.FullName() != "custom.Thing" {
		t.Fatalf("got %q", m.FullName())
	}
}

func TestReaderNewUnknownClassFails(t *testing.T) {
	r := NewReader()
	if _, err := r.New(9999); err != ErrUnknownClass {
		t.Fatalf("got %v, want ErrUnknownClass", err)
	}
}

func TestReaderDeclareContentAndMetadataDefaults(t *testing.T) {
	r := NewReader()
	r.DeclareContent(50)
	r.DeclareMetadata(51)

	if r.ContentClassID() != 50 {
		t.Fatalf("got %d, want 50", r.ContentClassID())
	}
	if !r.IsMetadataClass(51) {
		t.Fatalf("expected 51 to be the metadata class")
	}
	if r.IsMetadataClass(50) {
		t.Fatalf("content class must not also read as metadata")
	}
}
