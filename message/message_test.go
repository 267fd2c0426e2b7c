package message

import (
	"bytes"
	"testing"
)

func TestEventMarshalRoundTrip(t *testing.T) {
	want := &Event{SequenceNumber: 42, Payload: []byte("hi"), Label: "demo"}
	b, err := want.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got := &Event{}
	if err := got.Unmarshal(b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.SequenceNumber != want.SequenceNumber || got.Label != want.Label || !bytes.Equal(got.Payload, want.Payload) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestStreamHeaderMarshalRoundTrip(t *testing.T) {
	want := &StreamHeader{
		A4Version:             2,
		MetadataRefersForward: true,
		ContentClassId:        16,
		MetadataClassId:       17,
		Description:           "test stream",
	}
	b, err := want.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := &StreamHeader{}
	if err := got.Unmarshal(b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if *got != *want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestDynamicRoundTripsRawBytes(t *testing.T) {
	factory := NewDynamicFactory("custom.Thing", []byte("schema-blob"))
	m := factory()
	if m.FullName() != "custom.Thing" {
		t.Fatalf("got %q", m.FullName())
	}
	if err := m.Unmarshal([]byte("payload-bytes")); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	b, err := m.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(b, []byte("payload-bytes")) {
		t.Fatalf("got %q", b)
	}
}
