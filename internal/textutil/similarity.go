package textutil

import (
	"github.com/hbollon/go-edlib"
	"github.com/pmezard/go-difflib/difflib"
)

// Ratio returns 2*M/T where M is the number of characters in matching blocks
// and T the combined length. Two empty strings compare as 1.
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(splitRunes(a), splitRunes(b)).Ratio()
}

// NameSimilarity returns the Jaro-Winkler similarity of two already
// normalized names.
func NameSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return float64(edlib.JaroWinklerSimilarity(a, b))
}

func splitRunes(value string) []string {
	out := make([]string, 0, len(value))
	for _, r := range value {
		out = append(out, string(r))
	}
	return out
}
