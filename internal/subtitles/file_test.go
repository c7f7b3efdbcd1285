package subtitles

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"

	"subfetch/internal/services"
)

func gzipBytes(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(data)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func newFile(dir, link string) File {
	f := NewFile(Candidate{DownloadLink: link, Format: "srt"}, dir, "Show.S01E01.mkv")
	f.LockDir = filepath.Join(dir, ".locks")
	return f
}

func TestFilePath(t *testing.T) {
	f := NewFile(Candidate{Format: ".sub"}, "/videos", "Show.S01E01.mkv")
	if got := f.Path(); got != filepath.Join("/videos", "Show.S01E01.mkv.sub") {
		t.Fatalf("unexpected path: %s", got)
	}
	f.Candidate.Format = ""
	if got := f.Path(); got != filepath.Join("/videos", "Show.S01E01.mkv.srt") {
		t.Fatalf("unexpected default path: %s", got)
	}
}

func TestDownloadDecompressesIntoNewFolder(t *testing.T) {
	payload := gzipBytes(t, "1\n00:00:01,000 --> 00:00:02,000\nHello\n")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "Subs")
	f := newFile(dir, server.URL+"/sub.gz")
	path, err := f.Download(context.Background(), server.Client())
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if path != filepath.Join(dir, "Show.S01E01.mkv.srt") {
		t.Fatalf("unexpected path: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read subtitle: %v", err)
	}
	if string(data) != "1\n00:00:01,000 --> 00:00:02,000\nHello\n" {
		t.Fatalf("unexpected content: %q", data)
	}

	// A second download into the existing folder succeeds.
	if _, err := f.Download(context.Background(), server.Client()); err != nil {
		t.Fatalf("second Download returned error: %v", err)
	}
}

func TestDownloadRejectsNonGzipWithoutPartialFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("plain text, not gzip"))
	}))
	defer server.Close()

	dir := t.TempDir()
	f := newFile(dir, server.URL)
	_, err := f.Download(context.Background(), server.Client())
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, statErr := os.Stat(f.Path()); !os.IsNotExist(statErr) {
		t.Fatalf("expected no destination file, stat err=%v", statErr)
	}
}

func TestDownloadTruncatedPayloadKeepsExistingFile(t *testing.T) {
	payload := gzipBytes(t, string(bytes.Repeat([]byte("subtitle line\n"), 2000)))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload[:len(payload)/2])
	}))
	defer server.Close()

	dir := t.TempDir()
	f := newFile(dir, server.URL)
	if err := os.WriteFile(f.Path(), []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Download(context.Background(), server.Client()); err == nil {
		t.Fatal("expected error for truncated payload")
	}
	data, err := os.ReadFile(f.Path())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "existing" {
		t.Fatalf("destination modified: %q", data)
	}
}

func TestDownloadHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	f := newFile(t.TempDir(), server.URL)
	_, err := f.Download(context.Background(), server.Client())
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external error, got %v", err)
	}
}

func TestDownloadMissingLink(t *testing.T) {
	f := newFile(t.TempDir(), "")
	if _, err := f.Download(context.Background(), nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDownloadCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(gzipBytes(t, "data"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := newFile(t.TempDir(), server.URL)
	if _, err := f.Download(ctx, server.Client()); err == nil {
		t.Fatal("expected error for canceled context")
	}
	if _, statErr := os.Stat(f.Path()); !os.IsNotExist(statErr) {
		t.Fatalf("expected no destination file, stat err=%v", statErr)
	}
}
