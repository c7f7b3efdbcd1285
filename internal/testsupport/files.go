package testsupport

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// HashableSize is the smallest video size that carries a content fingerprint.
const HashableSize = 2 * 64 * 1024

// WriteFile creates path (and its parent directories) holding size bytes. The
// content repeats the file's base name, so two fixtures with different names
// get different fingerprints. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	pattern := bytes.Repeat([]byte(filepath.Base(path)+"\n"), 64)
	if _, err := io.CopyN(f, &cycleReader{pattern: pattern}, size); err != nil {
		f.Close()
		t.Fatalf("write %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
}

type cycleReader struct {
	pattern []byte
	off     int
}

func (r *cycleReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		c := copy(p[n:], r.pattern[r.off:])
		n += c
		r.off = (r.off + c) % len(r.pattern)
	}
	return n, nil
}
