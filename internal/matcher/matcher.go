// Package matcher picks the best subtitle candidate for a video without user
// input.
//
// Candidates found by content fingerprint are authoritative and win
// outright. Everything else must clear a title similarity cutoff, and among
// those the most downloaded candidate is chosen.
package matcher

import (
	"strings"

	"subfetch/internal/subtitles"
	"subfetch/internal/textutil"
)

// DefaultCutoff is the similarity a title must exceed to be considered.
const DefaultCutoff = 0.75

// Placeholders for absent fields and for titles that normalize to nothing.
// They never compare equal to each other or to a normalized title, and
// similarity against either is always zero.
const (
	missingCandidate = "\x00missing-candidate-title"
	missingReference = "\x00missing-reference-title"
)

// Options configures a Matcher.
type Options struct {
	// Cutoff is the exclusive lower bound on the similarity ratio.
	Cutoff float64
	// Normalize prepares titles before comparison. Defaults to
	// textutil.StripNonAlnum.
	Normalize textutil.Normalizer
}

// Reference describes the video a candidate is compared against.
type Reference struct {
	Series    string
	HasSeries bool
	Title     string
	HasTitle  bool
}

// Matcher applies the selection heuristic.
type Matcher struct {
	cutoff    float64
	normalize textutil.Normalizer
}

// New returns a Matcher. A negative cutoff falls back to DefaultCutoff.
func New(opts Options) *Matcher {
	cutoff := opts.Cutoff
	if cutoff < 0 {
		cutoff = DefaultCutoff
	}
	normalize := opts.Normalize
	if normalize == nil {
		normalize = textutil.StripNonAlnum
	}
	return &Matcher{cutoff: cutoff, normalize: normalize}
}

// Cutoff returns the configured similarity cutoff.
func (m *Matcher) Cutoff() float64 {
	return m.cutoff
}

// Select returns the chosen candidate, or false when nothing qualifies.
func (m *Matcher) Select(candidates []subtitles.Candidate, ref Reference) (subtitles.Candidate, bool) {
	possible := m.Possible(candidates, ref)

	for _, c := range possible {
		if c.Synced() {
			return c, true
		}
	}

	var best subtitles.Candidate
	found := false
	for _, c := range possible {
		if !found || c.DownloadCount > best.DownloadCount {
			best = c
			found = true
		}
	}
	return best, found
}

// Possible returns, in encounter order, every candidate that either clears
// the similarity cutoff or was matched by content fingerprint.
func (m *Matcher) Possible(candidates []subtitles.Candidate, ref Reference) []subtitles.Candidate {
	reference := m.referenceKey(ref)
	out := make([]subtitles.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Synced() || m.Score(c, reference) > m.cutoff {
			out = append(out, c)
		}
	}
	return out
}

// Score returns the similarity between the candidate title and a reference
// key produced by ReferenceKey.
func (m *Matcher) Score(c subtitles.Candidate, referenceKey string) float64 {
	return similarity(m.candidateKey(c), referenceKey)
}

// ReferenceKey normalizes the reference's "series title" string.
func (m *Matcher) ReferenceKey(ref Reference) string {
	return m.referenceKey(ref)
}

func (m *Matcher) candidateKey(c subtitles.Candidate) string {
	if !c.HasTitle {
		return missingCandidate
	}
	// A title with nothing left after normalization (non-Latin script,
	// punctuation only) carries no signal and must not match.
	if key := m.normalize(c.Title); strings.TrimSpace(key) != "" {
		return key
	}
	return missingCandidate
}

func (m *Matcher) referenceKey(ref Reference) string {
	parts := make([]string, 0, 2)
	if ref.HasSeries {
		parts = append(parts, ref.Series)
	}
	if ref.HasTitle {
		parts = append(parts, ref.Title)
	}
	if len(parts) == 0 {
		return missingReference
	}
	if key := m.normalize(strings.Join(parts, " ")); strings.TrimSpace(key) != "" {
		return key
	}
	return missingReference
}

func similarity(a, b string) float64 {
	if a == missingCandidate || a == missingReference || b == missingCandidate || b == missingReference {
		return 0
	}
	return textutil.Ratio(a, b)
}
