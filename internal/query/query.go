// Package query turns a video file into catalog search requests.
package query

import (
	"fmt"
	"strconv"

	"subfetch/internal/video"
)

// Kind distinguishes the two request shapes the catalog accepts.
type Kind string

const (
	// KindHash searches by content fingerprint and byte size.
	KindHash Kind = "hash"
	// KindDescriptive searches by series name, season, and episode.
	KindDescriptive Kind = "descriptive"
)

// Request is a single SearchSubtitles query.
type Request struct {
	Kind     Kind
	Language string

	Fingerprint string
	Size        int64

	Query   string
	Season  int
	Episode int
}

// Build returns the hash request (when a fingerprint exists) followed by the
// descriptive request (when series, season, and episode were inferred).
// An empty result means the file cannot be searched.
func Build(f *video.File, language string) []Request {
	if f == nil {
		return nil
	}
	var out []Request
	if f.HasFingerprint && f.Fingerprint != "" {
		out = append(out, Request{
			Kind:        KindHash,
			Language:    language,
			Fingerprint: f.Fingerprint,
			Size:        f.Size,
		})
	}
	if f.HasMetadata && f.Metadata.Series != "" && f.Metadata.Episode > 0 {
		out = append(out, Request{
			Kind:     KindDescriptive,
			Language: language,
			Query:    DescriptiveQuery(f.Metadata.Series, f.Metadata.Season, f.Metadata.Episode),
			Season:   f.Metadata.Season,
			Episode:  f.Metadata.Episode,
		})
	}
	return out
}

// DescriptiveQuery formats "Series SxxEyy".
func DescriptiveQuery(series string, season, episode int) string {
	return fmt.Sprintf("%s S%02dE%02d", series, season, episode)
}

// Params renders the request as the XML-RPC struct the catalog expects.
// Hash requests omit query fields since the catalog ignores them when
// moviehash is set.
func (r Request) Params() map[string]any {
	params := map[string]any{"sublanguageid": r.Language}
	switch r.Kind {
	case KindHash:
		params["moviehash"] = r.Fingerprint
		params["moviebytesize"] = strconv.FormatInt(r.Size, 10)
	case KindDescriptive:
		params["query"] = r.Query
		params["season"] = r.Season
		params["episode"] = r.Episode
	}
	return params
}

// String is a short log label for the request.
func (r Request) String() string {
	if r.Kind == KindHash {
		return fmt.Sprintf("hash %s/%d", r.Fingerprint, r.Size)
	}
	return fmt.Sprintf("query %q", r.Query)
}
