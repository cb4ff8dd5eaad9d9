// Package novelty drops generated questions that repeat a caller's history or
// each other.
package novelty

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/quizlab-backend/internal/domain"
	"github.com/yungbote/quizlab-backend/internal/normalization"
	"github.com/yungbote/quizlab-backend/internal/observability"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
	"github.com/yungbote/quizlab-backend/internal/similarity"
)

const (
	DefaultSimToAvoid     = 0.86
	DefaultSimWithinBatch = 0.80
	// LexicalThreshold rejects a candidate before any embedding is paid for.
	LexicalThreshold = 0.90
	// MaxAvoid bounds the history sent to the embedding endpoint.
	MaxAvoid = 500
	// DefaultEmbedTimeout caps both embedding calls together.
	DefaultEmbedTimeout = 10 * time.Second
)

type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

type Options struct {
	SimToAvoid     float64
	SimWithinBatch float64
	EmbedTimeout   time.Duration
}

func (o Options) withDefaults() Options {
	if o.SimToAvoid <= 0 {
		o.SimToAvoid = DefaultSimToAvoid
	}
	if o.SimWithinBatch <= 0 {
		o.SimWithinBatch = DefaultSimWithinBatch
	}
	if o.EmbedTimeout <= 0 {
		o.EmbedTimeout = DefaultEmbedTimeout
	}
	return o
}

type Filter struct {
	log      *logger.Logger
	embedder Embedder
}

// NewFilter builds a filter. A nil embedder limits filtering to the lexical pass.
func NewFilter(log *logger.Logger, embedder Embedder) *Filter {
	return &Filter{log: log.With("component", "NoveltyFilter"), embedder: embedder}
}

// FilterNovel returns the candidates, in order, that are neither near
// duplicates of avoidPrompts nor of an earlier kept candidate. It never fails:
// an embedding error or timeout leaves the lexical result in place.
func (f *Filter) FilterNovel(ctx context.Context, candidates []domain.Question, avoidPrompts []string, opts Options) []domain.Question {
	opts = opts.withDefaults()
	ctx, span := observability.StartSpan(ctx, "novelty.FilterNovel")
	defer span.End()

	avoid := PrepareAvoid(avoidPrompts)
	survivors := lexicalFilter(candidates, avoid)
	if len(survivors) == 0 || f.embedder == nil {
		return survivors
	}

	candVecs, avoidVecs, err := f.embedWithTimeout(ctx, survivors, avoid, opts.EmbedTimeout)
	if err != nil {
		f.log.Warn("Novelty embedding failed, keeping lexical result", "error", err, "candidates", len(survivors))
		return survivors
	}

	kept := make([]domain.Question, 0, len(survivors))
	keptVecs := make([][]float32, 0, len(survivors))
	for i, q := range survivors {
		vec := candVecs[i]
		if maxCosine(vec, avoidVecs) >= opts.SimToAvoid {
			continue
		}
		if maxCosine(vec, keptVecs) >= opts.SimWithinBatch {
			continue
		}
		kept = append(kept, q)
		keptVecs = append(keptVecs, vec)
	}
	f.log.Debug("Novelty filter applied",
		"candidates", len(candidates),
		"lexical_survivors", len(survivors),
		"kept", len(kept),
		"avoid", len(avoid),
	)
	return kept
}

// PrepareAvoid trims and de-duplicates prompts case-insensitively, keeping
// the newest MaxAvoid entries.
func PrepareAvoid(prompts []string) []string {
	seen := make(map[string]struct{}, len(prompts))
	out := make([]string, 0, len(prompts))
	for _, p := range prompts {
		norm := normalization.Normalize(p)
		if norm == "" {
			continue
		}
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, p)
	}
	if len(out) > MaxAvoid {
		out = out[len(out)-MaxAvoid:]
	}
	return out
}

func lexicalFilter(candidates []domain.Question, avoid []string) []domain.Question {
	avoidNorm := make([]string, len(avoid))
	exact := make(map[string]struct{}, len(avoid))
	for i, a := range avoid {
		avoidNorm[i] = normalization.Normalize(a)
		exact[avoidNorm[i]] = struct{}{}
	}
	out := make([]domain.Question, 0, len(candidates))
next:
	for _, c := range candidates {
		norm := normalization.Normalize(c.Prompt)
		if norm == "" {
			continue
		}
		if _, dup := exact[norm]; dup {
			continue
		}
		for _, a := range avoidNorm {
			if similarity.TokenJaccard(norm, a) >= LexicalThreshold {
				continue next
			}
		}
		out = append(out, c)
	}
	return out
}

type embedResult struct {
	cand, avoid [][]float32
	err         error
}

// embedWithTimeout returns when the embeddings arrive or the timeout fires,
// whichever is first, even if the embedder ignores cancellation.
func (f *Filter) embedWithTimeout(ctx context.Context, candidates []domain.Question, avoid []string, timeout time.Duration) ([][]float32, [][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan embedResult, 1)
	go func() {
		cand, av, err := f.embedBoth(ctx, candidates, avoid)
		done <- embedResult{cand: cand, avoid: av, err: err}
	}()
	select {
	case r := <-done:
		return r.cand, r.avoid, r.err
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("embed: %w", ctx.Err())
	}
}

func (f *Filter) embedBoth(ctx context.Context, candidates []domain.Question, avoid []string) ([][]float32, [][]float32, error) {
	prompts := make([]string, len(candidates))
	for i, c := range candidates {
		prompts[i] = c.Prompt
	}

	var candVecs, avoidVecs [][]float32
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vecs, err := f.embedder.Embed(gctx, prompts)
		if err != nil {
			return fmt.Errorf("embed candidates: %w", err)
		}
		if len(vecs) != len(prompts) {
			return fmt.Errorf("embed candidates: got %d vectors want %d", len(vecs), len(prompts))
		}
		candVecs = vecs
		return nil
	})
	if len(avoid) > 0 {
		g.Go(func() error {
			vecs, err := f.embedder.Embed(gctx, avoid)
			if err != nil {
				return fmt.Errorf("embed avoid list: %w", err)
			}
			if len(vecs) != len(avoid) {
				return fmt.Errorf("embed avoid list: got %d vectors want %d", len(vecs), len(avoid))
			}
			avoidVecs = vecs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return candVecs, avoidVecs, nil
}

func maxCosine(vec []float32, others [][]float32) float64 {
	best := -1.0
	for _, o := range others {
		if s := similarity.Cosine(vec, o); s > best {
			best = s
		}
	}
	return best
}
