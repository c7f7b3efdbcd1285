package pipeline

import (
	"context"
	"errors"

	"subfetch/internal/matcher"
	"subfetch/internal/release"
	"subfetch/internal/subtitles"
	"subfetch/internal/video"
)

var (
	// ErrSkip tells the pipeline the user declined every candidate for a file.
	ErrSkip = errors.New("skipped by user")
	// ErrQuit stops the batch after the current file.
	ErrQuit = errors.New("quit by user")
)

// Selector picks one candidate for a video. It returns false when nothing
// qualifies, ErrSkip when the user declines, and ErrQuit to end the batch.
type Selector interface {
	Select(ctx context.Context, f *video.File, candidates []subtitles.Candidate) (subtitles.Candidate, bool, error)
}

// AutoSelector applies the matcher heuristic without interaction.
type AutoSelector struct {
	Matcher *matcher.Matcher
}

// NewAutoSelector returns an AutoSelector using m, or a default matcher when m is nil.
func NewAutoSelector(m *matcher.Matcher) AutoSelector {
	if m == nil {
		m = matcher.New(matcher.Options{Cutoff: matcher.DefaultCutoff})
	}
	return AutoSelector{Matcher: m}
}

func (a AutoSelector) Select(_ context.Context, f *video.File, candidates []subtitles.Candidate) (subtitles.Candidate, bool, error) {
	m := a.Matcher
	if m == nil {
		m = matcher.New(matcher.Options{Cutoff: matcher.DefaultCutoff})
	}
	c, ok := m.Select(candidates, ReferenceFor(f.Metadata, f.HasMetadata))
	return c, ok, nil
}

// ReferenceFor turns inferred metadata into the matcher's comparison target.
// Absent metadata produces an empty reference that no title can match.
func ReferenceFor(meta release.Metadata, ok bool) matcher.Reference {
	if !ok {
		return matcher.Reference{}
	}
	return matcher.Reference{
		Series:    meta.Series,
		HasSeries: meta.Series != "",
		Title:     meta.Title,
		HasTitle:  meta.Title != "",
	}
}
