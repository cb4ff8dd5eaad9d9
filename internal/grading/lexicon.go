package grading

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/quizlab-backend/internal/normalization"
)

// ConceptGroup tags answers that mention any of its keywords. Two answers
// sharing a tag are treated as equivalent by the concept tier.
type ConceptGroup struct {
	ID       string   `yaml:"id"`
	Keywords []string `yaml:"keywords"`
}

// Lexicon holds the word lists the grader is tuned with.
type Lexicon struct {
	Descriptors   []string       `yaml:"descriptors"`
	QuestionHints []string       `yaml:"question_hints"`
	ConceptGroups []ConceptGroup `yaml:"concept_groups"`

	descriptorSet map[string]struct{}
	hintRe        *regexp.Regexp
}

var defaultDescriptors = []string{
	"dynamic", "performance", "live", "studio", "digital", "analog", "hybrid",
	"virtual", "hardware", "software", "multi", "mono", "poly", "polyphonic",
	"stereo", "portable", "modular", "advanced", "basic", "external", "internal",
	"integrated", "classic", "modern", "compact",
}

var defaultQuestionHints = []string{
	"when", "what year", "which year", "date", "how many", "how much",
	"what number", "tempo", "bpm", "cc", "control change", "port", "channel",
	"track", "bank", "pattern", "page", "step",
}

var defaultConceptGroups = []ConceptGroup{
	{ID: "protect", Keywords: []string{"protect", "protection", "guard", "guardian", "defend", "defense", "safeguard", "security"}},
	{ID: "meat-diet", Keywords: []string{"meat", "prey", "preys", "flesh", "carnivore", "carnivores", "carnivorous", "meat eater", "meat-eating", "other animals"}},
}

// DefaultLexicon returns the built-in word lists.
func DefaultLexicon() *Lexicon {
	lx := &Lexicon{
		Descriptors:   append([]string(nil), defaultDescriptors...),
		QuestionHints: append([]string(nil), defaultQuestionHints...),
		ConceptGroups: append([]ConceptGroup(nil), defaultConceptGroups...),
	}
	lx.compile()
	return lx
}

// LoadLexicon reads a YAML lexicon. Lists missing from the file keep their
// built-in defaults; an empty path returns the defaults.
func LoadLexicon(path string) (*Lexicon, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultLexicon(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	return ParseLexicon(raw)
}

func ParseLexicon(raw []byte) (*Lexicon, error) {
	var lx Lexicon
	if err := yaml.Unmarshal(raw, &lx); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}
	if len(lx.Descriptors) == 0 {
		lx.Descriptors = append([]string(nil), defaultDescriptors...)
	}
	if len(lx.QuestionHints) == 0 {
		lx.QuestionHints = append([]string(nil), defaultQuestionHints...)
	}
	if lx.ConceptGroups == nil {
		lx.ConceptGroups = append([]ConceptGroup(nil), defaultConceptGroups...)
	}
	lx.compile()
	return &lx, nil
}

func (lx *Lexicon) compile() {
	lx.descriptorSet = make(map[string]struct{}, len(lx.Descriptors))
	for _, d := range lx.Descriptors {
		if n := normalization.Normalize(d); n != "" {
			lx.descriptorSet[n] = struct{}{}
		}
	}

	alts := make([]string, 0, len(lx.QuestionHints))
	for _, h := range lx.QuestionHints {
		if n := normalization.Normalize(h); n != "" {
			alts = append(alts, regexp.QuoteMeta(n))
		}
	}
	if len(alts) > 0 {
		lx.hintRe = regexp.MustCompile(`\b(?:` + strings.Join(alts, "|") + `)\b`)
	}

	for i := range lx.ConceptGroups {
		kws := make([]string, 0, len(lx.ConceptGroups[i].Keywords))
		for _, kw := range lx.ConceptGroups[i].Keywords {
			if n := normalization.Normalize(kw); n != "" {
				kws = append(kws, n)
			}
		}
		lx.ConceptGroups[i].Keywords = kws
	}
}

func (lx *Lexicon) isDescriptor(token string) bool {
	_, ok := lx.descriptorSet[token]
	return ok
}

func (lx *Lexicon) questionHinted(normalizedQuestion string) bool {
	return lx.hintRe != nil && lx.hintRe.MatchString(normalizedQuestion)
}

// conceptTags returns the ids of the concept groups mentioned in a normalized string.
func (lx *Lexicon) conceptTags(normalized string) []string {
	tokens := map[string]struct{}{}
	for _, t := range strings.Fields(normalized) {
		tokens[t] = struct{}{}
	}
	haystack := " " + normalized + " "
	var tags []string
	for _, g := range lx.ConceptGroups {
		for _, kw := range g.Keywords {
			hit := false
			if strings.Contains(kw, " ") {
				hit = strings.Contains(haystack, " "+kw+" ")
			} else {
				_, hit = tokens[kw]
			}
			if hit {
				tags = append(tags, g.ID)
				break
			}
		}
	}
	return tags
}
