package grading

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/quizlab-backend/internal/observability"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
)

const DefaultJudgeTimeout = 2500 * time.Millisecond

type Mode string

const (
	ModeStandard Mode = "standard"
	ModeCreative Mode = "creative"
)

// ParseMode maps free-form input to a Mode, defaulting to standard.
func ParseMode(s string) Mode {
	if Mode(s) == ModeCreative {
		return ModeCreative
	}
	return ModeStandard
}

type Result struct {
	Correct bool   `json:"correct"`
	Reason  string `json:"reason"`
}

type Options struct {
	// StrictOverride requires normalized equality and skips every lenient tier.
	StrictOverride bool
	// Mode selects creative grading, which skips the local tiers and asks the judge.
	Mode Mode
	// DisableJudge keeps grading local; answers that reach the judge tier
	// are incorrect.
	DisableJudge bool
}

type Grader struct {
	log          *logger.Logger
	judge        Judge
	judgeTimeout time.Duration
	lexicon      *Lexicon
	standard     []Tier
	creative     []Tier
}

type GraderOption func(*Grader)

func WithJudgeTimeout(d time.Duration) GraderOption {
	return func(g *Grader) {
		if d > 0 {
			g.judgeTimeout = d
		}
	}
}

func WithLexicon(lx *Lexicon) GraderOption {
	return func(g *Grader) {
		if lx != nil {
			g.lexicon = lx
		}
	}
}

// NewGrader builds the tier cascade. judge may be nil, in which case answers
// that reach the judge tier are graded incorrect.
func NewGrader(log *logger.Logger, judge Judge, opts ...GraderOption) *Grader {
	g := &Grader{
		log:          log.With("component", "Grader"),
		judge:        judge,
		judgeTimeout: DefaultJudgeTimeout,
		lexicon:      DefaultLexicon(),
	}
	for _, opt := range opts {
		opt(g)
	}
	judgeTier := g.judgeTier()
	g.standard = []Tier{
		EmptyTier,
		StrictOverrideTier,
		ExactTier,
		StrictFactTier(g.lexicon),
		EditDistanceTier,
		TokenOverlapTier,
		DescriptorTier(g.lexicon),
		ConceptTier(g.lexicon),
		judgeTier,
	}
	g.creative = []Tier{EmptyTier, judgeTier}
	return g
}

func (g *Grader) Lexicon() *Lexicon { return g.lexicon }

// Grade runs the cascade and returns the first decision. It never fails:
// judge errors and timeouts resolve to an incorrect result with a reason.
func (g *Grader) Grade(ctx context.Context, question, expected, user string, opts Options) Result {
	ctx, span := observability.StartSpan(ctx, "grading.Grade", attribute.String("grading.mode", string(opts.Mode)))
	defer span.End()

	tiers := g.standard
	if opts.Mode == ModeCreative {
		tiers = g.creative
	}
	s := newSubmission(question, expected, user, opts)
	for _, t := range tiers {
		if res, ok := t.Decide(ctx, s); ok {
			span.SetAttributes(
				attribute.String("grading.tier", t.Name()),
				attribute.Bool("grading.correct", res.Correct),
			)
			g.log.Debug("Answer graded", "tier", t.Name(), "correct", res.Correct, "reason", res.Reason)
			return res
		}
	}
	return Result{Correct: false, Reason: "undecided"}
}

func (g *Grader) judgeTier() Tier {
	return TierFunc{TierName: "judge", Fn: func(ctx context.Context, s *Submission) (Result, bool) {
		if s.NoJudge {
			return decided(false, "ai grading disabled")
		}
		if g.judge == nil {
			return decided(false, "no judge configured")
		}
		return g.askJudge(ctx, s), true
	}}
}

// askJudge races the judge against the timeout so a judge that ignores its
// context still cannot hold the request.
func (g *Grader) askJudge(ctx context.Context, s *Submission) Result {
	ctx, cancel := context.WithTimeout(ctx, g.judgeTimeout)
	defer cancel()

	type outcome struct {
		v   Verdict
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := g.judge.Judge(ctx, JudgeRequest{
			Question:   s.Question,
			Expected:   s.Expected,
			UserAnswer: s.User,
			Mode:       s.Mode,
		})
		done <- outcome{v: v, err: err}
	}()

	select {
	case <-ctx.Done():
		g.log.Warn("Judge timed out", "timeout", g.judgeTimeout.String())
		return Result{Correct: false, Reason: "judge timeout"}
	case out := <-done:
		if out.err != nil {
			g.log.Warn("Judge failed", "error", out.err)
			return Result{Correct: false, Reason: "judge error"}
		}
		reason := out.v.Reason
		if reason == "" {
			reason = "judge"
		}
		return Result{Correct: out.v.Correct, Reason: reason}
	}
}
