package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer maps a raw title to the form compared by Ratio.
type Normalizer func(string) string

// StripNonAlnum removes every character outside [A-Za-z0-9 ] and lowercases
// the rest.
func StripNonAlnum(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	return b.String()
}

// FoldAccents decomposes value and drops combining marks so that "Amélie"
// becomes "Amelie". Input that fails to transform is returned unchanged.
func FoldAccents(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return folded
}

// FoldThenStrip applies FoldAccents before StripNonAlnum.
func FoldThenStrip(value string) string {
	return StripNonAlnum(FoldAccents(value))
}
