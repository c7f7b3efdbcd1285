package pipeline

import "subfetch/internal/subtitles"

// Outcome is the per-video result of a run.
type Outcome string

const (
	OutcomeDownloaded      Outcome = "downloaded"
	OutcomeSkippedExisting Outcome = "skipped_existing"
	OutcomeNothingToSearch Outcome = "nothing_to_search"
	OutcomeNoCandidates    Outcome = "no_candidates"
	// OutcomeNoMatch means candidates existed but none qualified.
	OutcomeNoMatch       Outcome = "no_match"
	OutcomeSkippedByUser Outcome = "skipped_by_user"
	OutcomeFailed        Outcome = "failed"
)

// Result describes what happened to one input path. Outcome is empty for
// files the run never reached because the user quit.
type Result struct {
	Video       string
	Fingerprint string
	Outcome     Outcome
	Candidates  int
	Subtitle    subtitles.Candidate
	HasSubtitle bool
	Dest        string
	Err         error
}

// Summary is the outcome of one Run.
type Summary struct {
	RunID   string
	Results []Result
	Quit    bool
}

// Count returns how many results have outcome o.
func (s Summary) Count(o Outcome) int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome == o {
			n++
		}
	}
	return n
}
