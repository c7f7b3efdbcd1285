// Package release infers series, season, and episode details from video
// file names.
package release

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/moistari/rls"
)

// Metadata is the structured result of filename inference.
type Metadata struct {
	Series  string
	Season  int
	Episode int
	Title   string
}

// Func infers metadata from a file name. The boolean reports whether series,
// season, and episode were all recovered.
type Func func(name string) (Metadata, bool)

var (
	seasonEpisodeRe = regexp.MustCompile(`(?i)^(.*?)[\s._-]*s(\d{1,2})[\s._-]*e(\d{1,3})(.*)$`)
	crossEpisodeRe  = regexp.MustCompile(`(?i)^(.*?)[\s._-]*\[?(\d{1,2})x(\d{2,3})\]?(.*)$`)
	separatorRe     = regexp.MustCompile(`[._]+`)
	spaceRe         = regexp.MustCompile(`\s+`)
	releaseTagRe    = regexp.MustCompile(`(?i)\b(480p|576p|720p|1080[pi]|2160p|4k|hdtv|web[\s-]?dl|webrip|bluray|brrip|dvdrip|x26[45]|h\.?26[45]|hevc|xvid|proper|repack|internal)\b`)
)

// Infer parses name with the rls release parser and falls back to plain
// SxxEyy / NxNN patterns when the parser does not produce an episode.
func Infer(name string) (Metadata, bool) {
	base := stripExtension(filepath.Base(name))
	if strings.TrimSpace(base) == "" {
		return Metadata{}, false
	}

	parsed := rls.ParseString(base)
	if meta, ok := fromRelease(parsed); ok {
		return meta, true
	}
	return inferPattern(base)
}

// editionRegions are the rls region values that tell apart same-named
// series (The Office US and UK), mapped to the form used in file names.
// Disc regions and market tags are left out.
var editionRegions = map[string]string{
	"USA": "US",
	"UK":  "UK",
	"AUS": "AUS",
	"CAN": "CAN",
}

func fromRelease(r rls.Release) (Metadata, bool) {
	series := cleanText(r.Title)
	if series == "" || r.Series <= 0 || r.Episode <= 0 {
		return Metadata{}, false
	}
	if region, ok := editionRegions[r.Region]; ok && !strings.HasSuffix(strings.ToUpper(series), " "+region) {
		series += " " + region
	}
	return Metadata{
		Series:  series,
		Season:  r.Series,
		Episode: r.Episode,
		Title:   cleanText(r.Subtitle),
	}, true
}

func inferPattern(base string) (Metadata, bool) {
	for _, re := range []*regexp.Regexp{seasonEpisodeRe, crossEpisodeRe} {
		match := re.FindStringSubmatch(base)
		if match == nil {
			continue
		}
		series := cleanText(match[1])
		season, seasonErr := strconv.Atoi(match[2])
		episode, episodeErr := strconv.Atoi(match[3])
		if series == "" || seasonErr != nil || episodeErr != nil || episode <= 0 {
			continue
		}
		return Metadata{
			Series:  series,
			Season:  season,
			Episode: episode,
			Title:   episodeTitle(match[4]),
		}, true
	}
	return Metadata{}, false
}

// episodeTitle keeps the text between the episode marker and the first
// release tag.
func episodeTitle(rest string) string {
	rest = separatorRe.ReplaceAllString(rest, " ")
	if loc := releaseTagRe.FindStringIndex(rest); loc != nil {
		rest = rest[:loc[0]]
	}
	if idx := strings.LastIndex(rest, "-"); idx > 0 && !strings.Contains(strings.TrimSpace(rest[idx+1:]), " ") {
		rest = rest[:idx]
	}
	return cleanText(rest)
}

func cleanText(value string) string {
	value = separatorRe.ReplaceAllString(value, " ")
	value = spaceRe.ReplaceAllString(value, " ")
	return strings.Trim(value, " -[]()")
}

func stripExtension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || len(ext) > 6 || strings.ContainsAny(ext, " ") {
		return name
	}
	return strings.TrimSuffix(name, ext)
}
