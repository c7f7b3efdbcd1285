package subtitles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"subfetch/internal/fileutil"
	"subfetch/internal/services"
)

const defaultFormat = "srt"

// File is a chosen candidate bound to its destination.
type File struct {
	Candidate Candidate
	Dir       string
	BaseName  string
	// LockDir holds advisory lock files for destinations. Defaults to a
	// subfetch folder in the system temp directory.
	LockDir string
}

// NewFile binds candidate to dir/baseName.format.
func NewFile(candidate Candidate, dir, baseName string) File {
	return File{Candidate: candidate, Dir: dir, BaseName: baseName}
}

// Path returns the final destination.
func (f File) Path() string {
	format := strings.TrimPrefix(strings.TrimSpace(f.Candidate.Format), ".")
	if format == "" {
		format = defaultFormat
	}
	return filepath.Join(f.Dir, f.BaseName+"."+format)
}

// Download fetches the gzip payload, decodes it, and atomically writes the
// subtitle to Path. The destination is left untouched on any failure.
func (f File) Download(ctx context.Context, client *http.Client) (string, error) {
	link := strings.TrimSpace(f.Candidate.DownloadLink)
	if link == "" {
		return "", services.Wrap(services.ErrValidation, "download", "link", "candidate has no download link", nil)
	}
	if client == nil {
		client = http.DefaultClient
	}
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "download", "mkdir", f.Dir, err)
	}

	dest := f.Path()
	lockDir := f.LockDir
	if lockDir == "" {
		lockDir = filepath.Join(os.TempDir(), "subfetch-locks")
	}
	unlock, err := fileutil.LockPath(ctx, lockDir, dest)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "download", "lock", dest, err)
	}
	defer unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "download", "build request", link, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "download", "request", link, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", services.Wrap(services.ErrExternalTool, "download", "request",
			fmt.Sprintf("%s: %s", resp.Status, strings.TrimSpace(string(body))), nil)
	}

	zr, err := gzip.NewReader(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "download", "gunzip", "payload is not gzip", err)
	}
	defer zr.Close()
	zr.Multistream(false)

	if _, err := fileutil.WriteAtomic(dest, contextReader{ctx: ctx, r: zr}, 0o644); err != nil {
		marker := services.ErrExternalTool
		if errors.Is(err, gzip.ErrChecksum) || errors.Is(err, gzip.ErrHeader) || errors.Is(err, io.ErrUnexpectedEOF) {
			marker = services.ErrValidation
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", services.Wrap(marker, "download", "write", dest, err)
	}
	return dest, nil
}

// contextReader stops a copy as soon as ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
