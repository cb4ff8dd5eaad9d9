package novelty

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/quizlab-backend/internal/domain"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
)

// fakeEmbedder maps known prompts to fixed vectors and everything else to a
// vector of its own.
type fakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	err     error
	calls   int
}

func (f *fakeEmbedder) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(inputs))
	for i, in := range inputs {
		if v, ok := f.vectors[in]; ok {
			out[i] = v
			continue
		}
		v := make([]float32, 16)
		v[len(in)%16] = 1
		v[(len(in)*7+3)%16] += 0.5
		out[i] = v
	}
	return out, nil
}

func q(prompt string) domain.Question {
	return domain.Question{Prompt: prompt, Answer: "x"}
}

func prompts(qs []domain.Question) []string {
	out := make([]string, len(qs))
	for i, v := range qs {
		out[i] = v.Prompt
	}
	return out
}

func TestFilterNovelDropsExactDuplicate(t *testing.T) {
	emb := &fakeEmbedder{}
	f := NewFilter(logger.Nop(), emb)

	got := f.FilterNovel(context.Background(),
		[]domain.Question{{Prompt: "What year did X happen?", Answer: "1980"}},
		[]string{"What year did X happen?"},
		Options{},
	)
	assert.Empty(t, got)
	assert.Zero(t, emb.calls, "lexical rejection must not pay for embeddings")
}

func TestFilterNovelLexicalNearDuplicate(t *testing.T) {
	f := NewFilter(logger.Nop(), nil)
	got := f.FilterNovel(context.Background(),
		[]domain.Question{q("What is the capital city of France?"), q("Name a prime number")},
		[]string{"capital city of France is what"},
		Options{},
	)
	assert.Equal(t, []string{"Name a prime number"}, prompts(got))
}

func TestFilterNovelSemanticHistory(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"How do goroutines communicate?":           {1, 0, 0},
		"What mechanism lets goroutines exchange?": {0.95, 0.1, 0},
		"What does defer do?":                      {0, 1, 0},
	}}
	f := NewFilter(logger.Nop(), emb)

	got := f.FilterNovel(context.Background(),
		[]domain.Question{q("What mechanism lets goroutines exchange?"), q("What does defer do?")},
		[]string{"How do goroutines communicate?"},
		Options{},
	)
	assert.Equal(t, []string{"What does defer do?"}, prompts(got))
}

func TestFilterNovelWithinBatchDiversity(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"What is a slice header?":      {1, 0, 0},
		"Describe the slice header":    {0.9, 0.1, 0},
		"How are maps iterated in Go?": {0, 0, 1},
	}}
	f := NewFilter(logger.Nop(), emb)

	got := f.FilterNovel(context.Background(),
		[]domain.Question{q("What is a slice header?"), q("Describe the slice header"), q("How are maps iterated in Go?")},
		nil,
		Options{},
	)
	assert.Equal(t, []string{"What is a slice header?", "How are maps iterated in Go?"}, prompts(got))
}

func TestFilterNovelEmbeddingFailureKeepsLexicalResult(t *testing.T) {
	emb := &fakeEmbedder{err: errors.New("upstream down")}
	f := NewFilter(logger.Nop(), emb)

	got := f.FilterNovel(context.Background(),
		[]domain.Question{q("alpha question"), q("beta question")},
		[]string{"gamma prompt"},
		Options{},
	)
	assert.Len(t, got, 2)
}

func TestPrepareAvoid(t *testing.T) {
	got := PrepareAvoid([]string{"What is Go?", "what is go", "  ", "Another"})
	assert.Equal(t, []string{"What is Go?", "Another"}, got)

	many := make([]string, MaxAvoid+20)
	for i := range many {
		many[i] = fmt.Sprintf("prompt %d", i)
	}
	capped := PrepareAvoid(many)
	require.Len(t, capped, MaxAvoid)
	assert.Equal(t, "prompt 20", capped[0])
}

type stallingEmbedder struct {
	release chan struct{}
}

func (s *stallingEmbedder) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	<-s.release
	return make([][]float32, len(inputs)), nil
}

func TestFilterNovelEmbedTimeoutKeepsLexicalResult(t *testing.T) {
	emb := &stallingEmbedder{release: make(chan struct{})}
	defer close(emb.release)
	f := NewFilter(logger.Nop(), emb)

	start := time.Now()
	got := f.FilterNovel(context.Background(),
		[]domain.Question{q("What is a mitochondrion?"), q("Name the powerhouse organelle"), q("What is a mitochondrion?")},
		[]string{"What is a mitochondrion?"},
		Options{EmbedTimeout: 20 * time.Millisecond},
	)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, []string{"Name the powerhouse organelle"}, prompts(got))
}
