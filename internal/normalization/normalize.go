package normalization

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var articles = map[string]struct{}{
	"the": {},
	"a":   {},
	"an":  {},
}

// Normalize canonicalizes free text for comparison: lowercase, diacritics
// stripped, only [a-z0-9] and single spaces kept, articles removed.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	folded := stripDiacritics(strings.ToLower(s))

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}

	fields := strings.Fields(b.String())
	out := fields[:0]
	for _, f := range fields {
		if _, ok := articles[f]; ok {
			continue
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}

// Tokens splits a normalized string on single spaces.
func Tokens(normalized string) []string {
	return strings.Fields(normalized)
}

func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// ParseInputString trims and lowercases user input without further canonicalization.
func ParseInputString(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
