package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"subfetch/internal/matcher"
	"subfetch/internal/pipeline"
	"subfetch/internal/subtitles"
	"subfetch/internal/textutil"
	"subfetch/internal/video"
)

// promptSelector lists every candidate and asks which one to download.
// Candidates the automatic rule would accept are ranked first and marked, so
// Enter takes the automatic choice; the rest stay available as a manual
// fallback. Answering "a" applies the automatic rule to the current file.
type promptSelector struct {
	in      *bufio.Reader
	out     io.Writer
	matcher *matcher.Matcher
}

func newPromptSelector(in io.Reader, out io.Writer, m *matcher.Matcher) *promptSelector {
	return &promptSelector{in: bufio.NewReader(in), out: out, matcher: m}
}

func (s *promptSelector) Select(ctx context.Context, f *video.File, candidates []subtitles.Candidate) (subtitles.Candidate, bool, error) {
	if len(candidates) == 0 {
		return subtitles.Candidate{}, false, nil
	}
	auto := pipeline.AutoSelector{Matcher: s.matcher}
	ref := pipeline.ReferenceFor(f.Metadata, f.HasMetadata)
	refKey := s.matcher.ReferenceKey(ref)
	options := s.rankCandidates(candidates, refKey)

	fmt.Fprintf(s.out, "\n%s\n", f.Name)
	fmt.Fprintln(s.out, s.renderOptions(f, refKey, options))

	for {
		fmt.Fprintf(s.out, "Choice [Enter=1, 1-%d, s=skip, a=auto, q=quit]: ", len(options))
		line, err := s.in.ReadString('\n')
		if err != nil && (err != io.EOF || strings.TrimSpace(line) == "") {
			fmt.Fprintln(s.out)
			return subtitles.Candidate{}, false, pipeline.ErrQuit
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		switch answer {
		case "":
			return options[0], true, nil
		case "s":
			return subtitles.Candidate{}, false, pipeline.ErrSkip
		case "a":
			return auto.Select(ctx, f, candidates)
		case "q":
			return subtitles.Candidate{}, false, pipeline.ErrQuit
		}
		if n, convErr := strconv.Atoi(answer); convErr == nil && n >= 1 && n <= len(options) {
			return options[n-1], true, nil
		}
		fmt.Fprintf(s.out, "Invalid choice %q\n", answer)
	}
}

func (s *promptSelector) renderOptions(f *video.File, refKey string, options []subtitles.Candidate) string {
	rows := make([][]string, 0, len(options))
	for i, c := range options {
		sync := ""
		if c.Synced() {
			sync = "*"
		}
		accepted := ""
		if s.accepts(c, refKey) {
			accepted = "yes"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			sync,
			accepted,
			c.Title,
			c.FileName,
			downloadsLabel(c.DownloadCount),
			fmt.Sprintf("%.2f", s.matcher.Score(c, refKey)),
			fmt.Sprintf("%.2f", textutil.NameSimilarity(f.Stem(), strings.TrimSuffix(c.FileName, "."+c.Format))),
		})
	}
	return renderTable(
		[]string{"#", "Sync", "Auto", "Title", "File", "Downloads", "Title match", "Name match"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
	)
}

// accepts reports whether the automatic rule would consider c.
func (s *promptSelector) accepts(c subtitles.Candidate, refKey string) bool {
	return c.Synced() || s.matcher.Score(c, refKey) > s.matcher.Cutoff()
}

// rankCandidates orders fingerprint matches, then the remaining accepted
// candidates by popularity, then everything else by popularity. The first
// row is the automatic choice whenever there is one.
func (s *promptSelector) rankCandidates(candidates []subtitles.Candidate, refKey string) []subtitles.Candidate {
	rank := func(c subtitles.Candidate) int {
		switch {
		case c.Synced():
			return 0
		case s.accepts(c, refKey):
			return 1
		default:
			return 2
		}
	}
	out := append([]subtitles.Candidate(nil), candidates...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := rank(out[i]), rank(out[j])
		if ri != rj {
			return ri < rj
		}
		// fingerprint matches keep encounter order, as the matcher does
		return ri > 0 && out[i].DownloadCount > out[j].DownloadCount
	})
	return out
}

func downloadsLabel(count int) string {
	if count == subtitles.UnknownDownloadCount {
		return "?"
	}
	return strconv.Itoa(count)
}
