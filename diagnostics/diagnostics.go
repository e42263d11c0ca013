// Package diagnostics rotates the receiver's verbose-debug log segments
// (enabled by -v -v or higher) into gzip-compressed files, the way the
// reference receiver compresses its own rotated access logs. This is
// diagnostic logging only; decoded messages are never persisted here.
package diagnostics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"
)

// Rotator writes verbose log lines to a plain file and, on Rotate,
// compresses the current segment to a timestamped .gz file and starts a
// fresh one.
type Rotator struct {
	dir  string
	name string
	f    *os.File
}

// NewRotator opens (or creates) dir/name as the active log segment.
func NewRotator(dir, name string) (*Rotator, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("diagnostics: mkdir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("diagnostics: open %s: %w", name, err)
	}
	return &Rotator{dir: dir, name: name, f: f}, nil
}

// Write appends a line to the active segment.
func (r *Rotator) Write(p []byte) (int, error) {
	return r.f.Write(p)
}

// Rotate gzip-compresses the active segment under a timestamped name and
// truncates it for fresh writes.
func (r *Rotator) Rotate(now time.Time) error {
	path := filepath.Join(r.dir, r.name)

	if err := r.f.Sync(); err != nil {
		return fmt.Errorf("diagnostics: sync before rotate: %w", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("diagnostics: read %s: %w", path, err)
	}

	gzPath := fmt.Sprintf("%s.%s.gz", path, now.UTC().Format("20060102T150405Z"))
	gzFile, err := os.Create(gzPath)
	if err != nil {
		return fmt.Errorf("diagnostics: create %s: %w", gzPath, err)
	}
	defer gzFile.Close()

	zw := gzip.NewWriter(gzFile)
	if _, err := zw.Write(raw); err != nil {
		return fmt.Errorf("diagnostics: gzip write: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("diagnostics: gzip close: %w", err)
	}

	if err := r.f.Truncate(0); err != nil {
		return fmt.Errorf("diagnostics: truncate %s: %w", path, err)
	}
	if _, err := r.f.Seek(0, 0); err != nil {
		return fmt.Errorf("diagnostics: seek %s: %w", path, err)
	}
	return nil
}

// Close closes the active segment file.
func (r *Rotator) Close() error {
	return r.f.Close()
}
