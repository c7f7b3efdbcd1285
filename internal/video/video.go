// Package video describes local video files: their size, content
// fingerprint, inferred episode metadata, and subtitle destination.
package video

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"subfetch/internal/fingerprint"
	"subfetch/internal/release"
)

// Options controls how a File is constructed.
type Options struct {
	// Subfolder places subtitles in folder/<Subfolder> instead of next to
	// the video. Empty means the video's own folder.
	Subfolder string
	// Infer overrides filename inference. Defaults to release.Infer.
	Infer release.Func
}

// File is an immutable snapshot of a video on disk. Fingerprint and metadata
// are computed once in New.
type File struct {
	Path           string
	Name           string
	Size           int64
	Fingerprint    string
	HasFingerprint bool
	Metadata       release.Metadata
	HasMetadata    bool
	SubDir         string
}

// New stats path and computes the fingerprint and inferred metadata. A file
// that cannot be fingerprinted or parsed is still returned; only a failed
// stat is an error.
func New(path string, opts Options) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve video path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat video: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("stat video: %s is a directory", abs)
	}

	infer := opts.Infer
	if infer == nil {
		infer = release.Infer
	}

	f := &File{
		Path:   abs,
		Name:   filepath.Base(abs),
		Size:   info.Size(),
		SubDir: filepath.Dir(abs),
	}
	if sub := strings.TrimSpace(opts.Subfolder); sub != "" {
		f.SubDir = filepath.Join(f.SubDir, sub)
	}
	f.Fingerprint, f.HasFingerprint = fingerprint.Compute(abs)
	f.Metadata, f.HasMetadata = infer(f.Name)
	return f, nil
}

// Stem is the file name without its final extension.
func (f *File) Stem() string {
	return strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
}

// SubtitleExists reports whether a subtitle with one of exts is already
// present, named either video.ext.sub or video.sub, in the destination
// folder or a "Subs" folder beside the video.
func (f *File) SubtitleExists(exts []string) bool {
	dirs := []string{f.SubDir}
	if subs := filepath.Join(filepath.Dir(f.Path), "Subs"); subs != f.SubDir {
		dirs = append(dirs, subs)
	}
	for _, dir := range dirs {
		for _, ext := range exts {
			for _, base := range []string{f.Name, f.Stem()} {
				if _, err := os.Stat(filepath.Join(dir, base+ext)); err == nil {
					return true
				}
			}
		}
	}
	return false
}
