package framing

import (
	"bytes"
	"io"
	"testing"

	"github.com/JohannesEbke/a4io/internal/dataio"
)

func TestRecordRoundTripWithClassID(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(dataio.MakeWriter(&buf))
	if err := w.WriteRecord(42, true, []byte("hello")); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := NewReader(dataio.MakeReader(&buf))
	classID, hasClassID, payload, err := r.ReadRecord()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !hasClassID || classID != 42 {
		t.Fatalf("got classID=%d hasClassID=%v, want 42/true", classID, hasClassID)
	}
	if string(payload) != "hello" {
		t.Fatalf("got payload %q", payload)
	}
}

func TestRecordRoundTripWithoutClassID(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(dataio.MakeWriter(&buf))
	if err := w.WriteRecord(0, false, []byte("payload")); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := NewReader(dataio.MakeReader(&buf))
	_, hasClassID, payload, err := r.ReadRecord()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if hasClassID {
		t.Fatalf("expected hasClassID=false")
	}
	if string(payload) != "payload" {
		t.Fatalf("got payload %q", payload)
	}
}

func TestReadRecordEOFAtCleanBoundary(t *testing.T) {
	r := NewReader(dataio.MakeReader(bytes.NewReader(nil)))
	_, _, _, err := r.ReadRecord()
	if err != io.EOF {
		t.Fatalf("got %v, want io.EOF", err)
	}
}

func TestMagicRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMagic(&buf, StartMagic); err != nil {
		t.Fatalf("write magic: %v", err)
	}
	got, err := ReadMagic(&buf)
	if err != nil {
		t.Fatalf("read magic: %v", err)
	}
	if got != StartMagic {
		t.Fatalf("got %v, want %v", got, StartMagic)
	}
}

