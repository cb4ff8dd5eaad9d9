package grading

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/yungbote/quizlab-backend/internal/normalization"
	"github.com/yungbote/quizlab-backend/internal/similarity"
)

// Submission is one answer under evaluation, with its normalized forms
// computed once up front.
type Submission struct {
	Question string
	Expected string
	User     string
	Mode     Mode
	Strict   bool
	NoJudge  bool

	NormQuestion string
	NormExpected string
	NormUser     string
}

func newSubmission(question, expected, user string, opts Options) *Submission {
	return &Submission{
		Question:     question,
		Expected:     expected,
		User:         user,
		Mode:         opts.Mode,
		Strict:       opts.StrictOverride,
		NoJudge:      opts.DisableJudge,
		NormQuestion: normalization.Normalize(question),
		NormExpected: normalization.Normalize(expected),
		NormUser:     normalization.Normalize(user),
	}
}

// Tier is one step of the grading cascade. ok=false means undecided and the
// next tier runs.
type Tier interface {
	Name() string
	Decide(ctx context.Context, s *Submission) (res Result, ok bool)
}

type TierFunc struct {
	TierName string
	Fn       func(ctx context.Context, s *Submission) (Result, bool)
}

func (t TierFunc) Name() string { return t.TierName }
func (t TierFunc) Decide(ctx context.Context, s *Submission) (Result, bool) {
	return t.Fn(ctx, s)
}

func decided(correct bool, reason string) (Result, bool) {
	return Result{Correct: correct, Reason: reason}, true
}

func undecided() (Result, bool) { return Result{}, false }

// EmptyTier rejects blank answers and blank expectations.
var EmptyTier = TierFunc{TierName: "empty", Fn: func(_ context.Context, s *Submission) (Result, bool) {
	if s.NormUser == "" || (s.NormExpected == "" && s.Mode != ModeCreative) {
		return decided(false, "empty")
	}
	return undecided()
}}

// StrictOverrideTier applies the caller's "must match exactly" preference.
var StrictOverrideTier = TierFunc{TierName: "strict-override", Fn: func(_ context.Context, s *Submission) (Result, bool) {
	if !s.Strict {
		return undecided()
	}
	if s.NormUser == s.NormExpected {
		return decided(true, "exact")
	}
	return decided(false, "strict-mismatch")
}}

// ExactTier accepts normalized equality and hex/decimal equivalence.
var ExactTier = TierFunc{TierName: "exact", Fn: func(_ context.Context, s *Submission) (Result, bool) {
	if s.NormUser == s.NormExpected {
		return decided(true, "exact")
	}
	if normalization.HexDecimalEqual(s.User, s.Expected) {
		return decided(true, "hex-decimal")
	}
	return undecided()
}}

// StrictFactTier is terminal for strict facts so a wrong year or count is
// never rescued by the fuzzy tiers.
func StrictFactTier(lx *Lexicon) Tier {
	return TierFunc{TierName: "strict-fact", Fn: func(_ context.Context, s *Submission) (Result, bool) {
		if !lx.IsStrictFact(s.Question, s.Expected) {
			return undecided()
		}
		if StrictFactCorrect(s.User, s.Expected) {
			return decided(true, "strict-fact")
		}
		return decided(false, "strict-fact-mismatch")
	}}
}

// EditDistanceTier tolerates up to 20% edits of the shorter string, at least one.
var EditDistanceTier = TierFunc{TierName: "edit-distance", Fn: func(_ context.Context, s *Submission) (Result, bool) {
	maxEdits := max(1, min(len(s.NormUser), len(s.NormExpected))*2/10)
	if similarity.Levenshtein(s.NormUser, s.NormExpected) <= maxEdits {
		return decided(true, fmt.Sprintf("lev<=%d", maxEdits))
	}
	return undecided()
}}

// TokenOverlapTier accepts answers sharing at least two thirds of their tokens.
var TokenOverlapTier = TierFunc{TierName: "token-overlap", Fn: func(_ context.Context, s *Submission) (Result, bool) {
	if j := similarity.TokenJaccard(s.NormUser, s.NormExpected); j >= 0.66 {
		return decided(true, fmt.Sprintf("jaccard-%.2f", j))
	}
	return undecided()
}}

// DescriptorTier matches type/definition answers once generic descriptor
// adjectives are stripped from both sides.
func DescriptorTier(lx *Lexicon) Tier {
	return TierFunc{TierName: "descriptor", Fn: func(_ context.Context, s *Submission) (Result, bool) {
		u := stripDescriptors(lx, s.NormUser)
		e := stripDescriptors(lx, s.NormExpected)
		if len(u) == 0 || len(e) == 0 {
			return undecided()
		}
		us, es := strings.Join(u, " "), strings.Join(e, " ")
		switch {
		case us == es:
			return decided(true, "descriptor-equal")
		case len(us) >= 3 && strings.Contains(es, us), len(es) >= 3 && strings.Contains(us, es):
			return decided(true, "descriptor-substring")
		case u[len(u)-1] == e[len(e)-1]:
			return decided(true, "head-noun")
		case len(u) == 1 && len(u[0]) >= 3 && slices.Contains(e, u[0]):
			return decided(true, "key-token")
		}
		return undecided()
	}}
}

// ConceptTier accepts answers that share a concept group with the expected answer.
func ConceptTier(lx *Lexicon) Tier {
	return TierFunc{TierName: "concept", Fn: func(_ context.Context, s *Submission) (Result, bool) {
		expected := lx.conceptTags(s.NormExpected)
		if len(expected) == 0 {
			return undecided()
		}
		for _, tag := range lx.conceptTags(s.NormUser) {
			if slices.Contains(expected, tag) {
				return decided(true, "concept-"+tag)
			}
		}
		return undecided()
	}}
}

func stripDescriptors(lx *Lexicon, normalized string) []string {
	var out []string
	for _, t := range strings.Fields(normalized) {
		if !lx.isDescriptor(t) {
			out = append(out, t)
		}
	}
	return out
}
