// Package generation produces new quiz questions from a topic or document
// while keeping them clear of the caller's earlier questions.
package generation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/quizlab-backend/internal/domain"
	"github.com/yungbote/quizlab-backend/internal/novelty"
	"github.com/yungbote/quizlab-backend/internal/observability"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
)

type TextGenerator interface {
	GenerateText(ctx context.Context, system string, user string) (string, error)
}

type Request struct {
	Topic        string
	Count        int
	PriorPrompts []string
	DocContext   string
}

// DefaultRoundTimeout caps one model call including its retries.
const DefaultRoundTimeout = 90 * time.Second

type Generator struct {
	log          *logger.Logger
	gen          TextGenerator
	novelty      *novelty.Filter
	opts         novelty.Options
	roundTimeout time.Duration
}

type GeneratorOption func(*Generator)

func WithRoundTimeout(d time.Duration) GeneratorOption {
	return func(g *Generator) {
		if d > 0 {
			g.roundTimeout = d
		}
	}
}

func NewGenerator(log *logger.Logger, gen TextGenerator, filter *novelty.Filter, opts ...GeneratorOption) *Generator {
	g := &Generator{
		log:          log.With("component", "QuizGenerator"),
		gen:          gen,
		novelty:      filter,
		roundTimeout: DefaultRoundTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate runs at most two model rounds: the first for the full count and,
// when novelty filtering leaves a shortfall, one refill for the rest. A short
// or empty result is returned as is.
func (g *Generator) Generate(ctx context.Context, req Request) ([]domain.Question, error) {
	if req.Count <= 0 {
		return []domain.Question{}, nil
	}
	ctx, span := observability.StartSpan(ctx, "generation.Generate", attribute.Int("target", req.Count))
	defer span.End()

	first, err := g.round(ctx, req.Count, req.Topic, req.PriorPrompts, req.DocContext)
	if err != nil {
		return nil, err
	}
	kept := g.novelty.FilterNovel(ctx, first, req.PriorPrompts, g.opts)
	if len(kept) >= req.Count {
		return kept[:req.Count], nil
	}

	need := req.Count - len(kept)
	expanded := make([]string, 0, len(req.PriorPrompts)+len(kept))
	expanded = append(expanded, req.PriorPrompts...)
	for _, q := range kept {
		expanded = append(expanded, q.Prompt)
	}
	g.log.Debug("Generation refill", "need", need, "first_round", len(first), "kept", len(kept))

	refill, err := g.round(ctx, need, req.Topic+refillSuffix, expanded, req.DocContext)
	if err != nil {
		return nil, err
	}
	extra := g.novelty.FilterNovel(ctx, refill, expanded, g.opts)

	out := append(kept, extra...)
	if len(out) > req.Count {
		out = out[:req.Count]
	}
	span.SetAttributes(attribute.Int("produced", len(out)))
	return out, nil
}

func (g *Generator) round(ctx context.Context, n int, topic string, prior []string, docContext string) ([]domain.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, g.roundTimeout)
	defer cancel()
	raw, err := g.gen.GenerateText(ctx, questionSystemPrompt, questionUserPrompt(n, topic, prior, docContext))
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}
	items, err := ParseQuestions(raw, n)
	if err != nil {
		g.log.Warn("Unparsable generation output", "error", err, "chars", len(raw))
		return nil, err
	}
	return items, nil
}
