// Package chunker splits extracted document text into ordered, overlapping
// chunks sized for embedding.
package chunker

import (
	"strings"
	"unicode"
)

const (
	DefaultTargetTokens  = 900
	DefaultOverlapTokens = 120
	// CharsPerToken is a rough estimate for English prose.
	CharsPerToken = 4
	// MinTextChars is the shortest text worth indexing.
	MinTextChars = 20
)

type Options struct {
	TargetTokens  int
	OverlapTokens int
}

func (o Options) withDefaults() Options {
	if o.TargetTokens <= 0 {
		o.TargetTokens = DefaultTargetTokens
		if o.OverlapTokens == 0 {
			o.OverlapTokens = DefaultOverlapTokens
		}
	}
	if o.OverlapTokens < 0 || o.OverlapTokens >= o.TargetTokens {
		o.OverlapTokens = 0
	}
	return o
}

// Split packs whole sentences into chunks of about TargetTokens. Each new
// chunk starts with the tail of the previous one.
func Split(text string, opts Options) []string {
	opts = opts.withDefaults()
	targetChars := opts.TargetTokens * CharsPerToken
	overlapChars := opts.OverlapTokens * CharsPerToken

	var chunks []string
	cur := ""
	for _, s := range Sentences(text) {
		if cur != "" && runeLen(cur)+1+runeLen(s) > targetChars {
			chunks = append(chunks, strings.TrimSpace(cur))
			cur = tail(cur, overlapChars)
		}
		if cur == "" {
			cur = s
		} else {
			cur = cur + " " + s
		}
	}
	if strings.TrimSpace(cur) != "" {
		chunks = append(chunks, strings.TrimSpace(cur))
	}
	return chunks
}

// Sentences splits after '.', '!' or '?' when followed by whitespace.
func Sentences(text string) []string {
	var out []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
		default:
			continue
		}
		if i+1 >= len(runes) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

func tail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

func runeLen(s string) int { return len([]rune(s)) }
