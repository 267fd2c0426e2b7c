package resource

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileWriteSeekReadSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resource.bin")

	f, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	if !f.Seekable() {
		t.Fatalf("expected a *File to be seekable")
	}
	if _, err := f.Write([]byte("hello")); err != nil {
		t.Fatalf("write: %v", err)
	}
	size, err := f.Size()
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if size != 5 {
		t.Fatalf("got size %d, want 5", size)
	}

	if err := f.Seek(0); err != nil {
		t.Fatalf("seek: %v", err)
	}
	got := make([]byte, 5)
	if _, err := f.Read(got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q", got)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}
}
