package diagnostics

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRotateCompressesAndTruncates(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRotator(dir, "debug.log")
	if err != nil {
		t.Fatalf("NewRotator: %v", err)
	}
	defer r.Close()

	if _, err := r.Write([]byte("line one\nline two\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := r.Rotate(now); err != nil {
		t.Fatalf("Rotate: %v", err)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "debug.log.*.gz"))
	if len(matches) != 1 {
		t.Fatalf("got %d rotated files, want 1: %v", len(matches), matches)
	}

	gf, err := os.Open(matches[0])
	if err != nil {
		t.Fatalf("Open rotated file: %v", err)
	}
	defer gf.Close()

	zr, err := gzip.NewReader(gf)
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	defer zr.Close()

	content, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(content) != "line one\nline two\n" {
		t.Errorf("rotated content = %q, want original log text", content)
	}

	info, err := os.Stat(filepath.Join(dir, "debug.log"))
	if err != nil {
		t.Fatalf("Stat active segment: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("active segment size = %d, want 0 after rotate", info.Size())
	}
}
