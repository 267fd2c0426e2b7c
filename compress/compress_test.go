package compress

import (
	"bytes"
	"io"
	"testing"
)

func roundTrip(t *testing.T, codec uint32, payload []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := NewWriter(&buf)
	if codec != Uncompressed {
		if err := w.Begin(codec, -1); err != nil {
			t.Fatalf("begin: %v", err)
		}
	}
	if _, err := w.Sink().Write(payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	if codec != Uncompressed {
		if err := w.End(); err != nil {
			t.Fatalf("end: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	r := NewReader(&buf)
	if codec != Uncompressed {
		if err := r.Begin(codec); err != nil {
			t.Fatalf("begin read: %v", err)
		}
	}
	got := make([]byte, len(payload))
	if _, err := io.ReadFull(r.Source(), got); err != nil {
		t.Fatalf("read: %v", err)
	}
	return got
}

func TestRoundTripAllCodecs(t *testing.T) {
	payload := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 50)

	for _, codec := range []uint32{Uncompressed, Zlib, Gzip, Snappy, LZ4} {
		got := roundTrip(t, codec, payload)
		if !bytes.Equal(got, payload) {
			t.Fatalf("codec %s: round trip mismatch", Name(codec))
		}
	}
}

func TestByNameCoversEveryCodec(t *testing.T) {
	for _, codec := range []uint32{Uncompressed, Zlib, Gzip, Snappy, LZ4} {
		name := Name(codec)
		if ByName[name] != codec {
			t.Fatalf("ByName[%q] = %d, want %d", name, ByName[name], codec)
		}
	}
}

func TestPlainAtEOF(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if _, err := w.Sink().Write([]byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	r := NewReader(&buf)
	atEOF, err := r.PlainAtEOF()
	if err != nil {
		t.Fatalf("PlainAtEOF: %v", err)
	}
	if atEOF {
		t.Fatalf("expected more data")
	}
	if _, err := io.ReadFull(r.Source(), make([]byte, 1)); err != nil {
		t.Fatalf("read: %v", err)
	}
	atEOF, err = r.PlainAtEOF()
	if err != nil {
		t.Fatalf("PlainAtEOF: %v", err)
	}
	if !atEOF {
		t.Fatalf("expected EOF")
	}
}
