package subtitles

import (
	"fmt"
	"strconv"
	"strings"
)

// Provenance records which search strategy produced a candidate.
type Provenance string

const (
	ProvenanceFingerprint Provenance = "content-fingerprint"
	ProvenanceExternalID  Provenance = "external-id"
	ProvenanceDescriptive Provenance = "descriptive-query"
	ProvenanceFullText    Provenance = "full-text"
	ProvenanceUnknown     Provenance = "unknown"
)

// UnknownDownloadCount marks a missing or unparseable popularity value.
const UnknownDownloadCount = -1

// Candidate is one subtitle search result.
type Candidate struct {
	Title      string
	HasTitle   bool
	Season     int
	HasSeason  bool
	Episode    int
	HasEpisode bool

	MatchedBy     Provenance
	DownloadCount int

	DownloadLink string
	Format       string
	FileName     string
}

// Synced reports whether the candidate was matched by content fingerprint.
func (c Candidate) Synced() bool {
	return c.MatchedBy == ProvenanceFingerprint
}

// String is a short log label.
func (c Candidate) String() string {
	name := c.FileName
	if name == "" {
		name = c.Title
	}
	return fmt.Sprintf("%s [%s, %d downloads]", name, c.MatchedBy, c.DownloadCount)
}

// ParseProvenance maps a catalog MatchedBy value.
func ParseProvenance(value string) Provenance {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "moviehash":
		return ProvenanceFingerprint
	case "imdbid":
		return ProvenanceExternalID
	case "tag":
		return ProvenanceDescriptive
	case "fulltext":
		return ProvenanceFullText
	default:
		return ProvenanceUnknown
	}
}

// FromRecord builds a Candidate from a decoded catalog struct. Missing keys
// and unexpected value types degrade to defaults rather than failing.
func FromRecord(record map[string]any) Candidate {
	c := Candidate{
		MatchedBy:     ParseProvenance(stringField(record, "MatchedBy")),
		DownloadCount: UnknownDownloadCount,
		DownloadLink:  stringField(record, "SubDownloadLink"),
		Format:        stringField(record, "SubFormat"),
		FileName:      stringField(record, "SubFileName"),
	}
	if title := stringField(record, "MovieName"); strings.TrimSpace(title) != "" {
		c.Title, c.HasTitle = title, true
	}
	c.Season, c.HasSeason = intField(record, "SeriesSeason")
	c.Episode, c.HasEpisode = intField(record, "SeriesEpisode")
	if count, ok := intField(record, "SubDownloadsCnt"); ok && count >= 0 {
		c.DownloadCount = count
	}
	return c
}

// FromRecords converts a slice of decoded structs, skipping non-struct
// entries.
func FromRecords(records []any) []Candidate {
	out := make([]Candidate, 0, len(records))
	for _, raw := range records {
		record, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, FromRecord(record))
	}
	return out
}

func stringField(record map[string]any, key string) string {
	switch v := record[key].(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func intField(record map[string]any, key string) (int, bool) {
	switch v := record[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
