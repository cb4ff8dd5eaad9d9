package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/quizlab-backend/internal/domain"
	"github.com/yungbote/quizlab-backend/internal/novelty"
	"github.com/yungbote/quizlab-backend/internal/platform/dbctx"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
)

type fakeGenerator struct {
	mu      sync.Mutex
	replies []string
	err     error
	users   []string
	systems []string
}

func (f *fakeGenerator) GenerateText(_ context.Context, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.systems = append(f.systems, system)
	f.users = append(f.users, user)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "[]", nil
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r, nil
}

func qaJSON(prompts ...string) string {
	parts := make([]string, len(prompts))
	for i, p := range prompts {
		parts[i] = fmt.Sprintf(`{"prompt": %q, "answer": "a%d"}`, p, i)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func newTestGenerator(gen TextGenerator) *Generator {
	log := logger.Nop()
	return NewGenerator(log, gen, novelty.NewFilter(log, nil))
}

func TestParseQuestions(t *testing.T) {
	long := strings.Repeat("x", 700)
	raw := "```json\n[{\"prompt\": \"What year?\", \"answer\": 1969}, {\"prompt\": \"\", \"answer\": \"drop\"}, {\"prompt\": \"" + long + "\", \"answer\": \"ok\"}]\n```"

	got, err := ParseQuestions(raw, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.Question{Prompt: "What year?", Answer: "1969"}, got[0])
	assert.Len(t, got[1].Prompt, MaxFieldChars)

	limited, err := ParseQuestions(qaJSON("a", "b", "c"), 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestParseQuestionsMalformed(t *testing.T) {
	for _, raw := range []string{"not json", `{"prompt": "x"}`, `["just a string"]`, ""} {
		_, err := ParseQuestions(raw, 5)
		assert.ErrorIs(t, err, ErrMalformedOutput, raw)
	}
}

func TestParseStringList(t *testing.T) {
	got, err := ParseStringList("```\n[\"one\", \" \", \"two\"]\n```")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, got)

	_, err = ParseStringList(`[1, 2]`)
	assert.ErrorIs(t, err, ErrMalformedOutput)
}

func TestGenerateSingleRoundWhenEnough(t *testing.T) {
	gen := &fakeGenerator{replies: []string{qaJSON("What is a channel?", "What is a mutex?")}}
	g := newTestGenerator(gen)

	got, err := g.Generate(context.Background(), Request{Topic: "Go concurrency", Count: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Len(t, gen.users, 1)
}

func TestGenerateRefillsOnce(t *testing.T) {
	gen := &fakeGenerator{replies: []string{
		qaJSON("What is a channel?", "What is a goroutine?"),
		qaJSON("What is a goroutine?", "What is a waitgroup?", "What is a select statement?"),
	}}
	g := newTestGenerator(gen)

	got, err := g.Generate(context.Background(), Request{
		Topic:        "Go",
		Count:        3,
		PriorPrompts: []string{"What is a goroutine?"},
	})
	require.NoError(t, err)

	var prompts []string
	for _, q := range got {
		prompts = append(prompts, q.Prompt)
	}
	assert.Equal(t, []string{"What is a channel?", "What is a waitgroup?"}, prompts)
	require.Len(t, gen.users, 2, "exactly one refill round")
	assert.Contains(t, gen.users[1], "Create 2 question/answer pairs")
	assert.Contains(t, gen.users[1], refillSuffix)
	assert.Contains(t, gen.users[1], "What is a channel?", "refill avoid list includes first round survivors")
}

func TestGenerateReturnsEmptyWhenNothingNovel(t *testing.T) {
	gen := &fakeGenerator{replies: []string{qaJSON("Same?"), qaJSON("Same?")}}
	g := newTestGenerator(gen)

	got, err := g.Generate(context.Background(), Request{Topic: "t", Count: 1, PriorPrompts: []string{"same"}})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Len(t, gen.users, 2)
}

func TestGenerateMalformedIsHardFailure(t *testing.T) {
	g := newTestGenerator(&fakeGenerator{replies: []string{"Sorry, I can't help"}})
	_, err := g.Generate(context.Background(), Request{Topic: "t", Count: 3})
	assert.ErrorIs(t, err, ErrMalformedOutput)

	g = newTestGenerator(&fakeGenerator{err: errors.New("boom")})
	_, err = g.Generate(context.Background(), Request{Topic: "t", Count: 3})
	assert.Error(t, err)
}

func TestQuestionUserPromptCapsPriorPrompts(t *testing.T) {
	prior := make([]string, MaxPriorPrompts+50)
	for i := range prior {
		prior[i] = fmt.Sprintf("prior-%d", i)
	}
	msg := questionUserPrompt(5, "topic", prior, "excerpt text")
	assert.Contains(t, msg, fmt.Sprintf("prior-%d", MaxPriorPrompts-1))
	assert.NotContains(t, msg, fmt.Sprintf("prior-%d\"", MaxPriorPrompts))
	assert.Contains(t, msg, "---DOC CONTEXT START---\nexcerpt text")
}

type fakeChunks struct {
	rows []*domain.FileChunk
	err  error
}

func (f fakeChunks) ListByFile(_ dbctx.Context, _ uuid.UUID, _ string) ([]*domain.FileChunk, error) {
	return f.rows, f.err
}

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f fakeEmbedder) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = f.vec
	}
	return out, nil
}

func TestRetrieverRanksByCosine(t *testing.T) {
	chunks := fakeChunks{rows: []*domain.FileChunk{
		{ChunkIndex: 0, Content: "far", Embedding: []float32{0, 1}},
		{ChunkIndex: 1, Content: "near", Embedding: []float32{1, 0.1}},
		{ChunkIndex: 2, Content: "middle", Embedding: []float32{1, 1}},
	}}
	r := NewRetriever(logger.Nop(), fakeEmbedder{vec: []float32{1, 0}}, chunks)

	got, err := r.MatchChunks(context.Background(), uuid.New(), "f", []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"near", "middle"}, got)

	ctxText := r.DocContext(context.Background(), uuid.New(), "f", 5, "topic", "")
	assert.Equal(t, "near\n\nmiddle\n\nfar", ctxText)
}

func TestRetrieverDegradesToEmpty(t *testing.T) {
	r := NewRetriever(logger.Nop(), fakeEmbedder{err: errors.New("down")}, fakeChunks{})
	assert.Empty(t, r.DocContext(context.Background(), uuid.New(), "f", 5, "topic", ""))

	r = NewRetriever(logger.Nop(), fakeEmbedder{vec: []float32{1}}, fakeChunks{err: errors.New("db")})
	assert.Empty(t, r.DocContext(context.Background(), uuid.New(), "f", 5, "topic", ""))

	assert.Empty(t, r.DocContext(context.Background(), uuid.New(), "", 5, "topic", ""))
}

func TestRetrieverContextBudget(t *testing.T) {
	big := strings.Repeat("y", DefaultContextChars)
	r := NewRetriever(logger.Nop(), fakeEmbedder{vec: []float32{1}}, fakeChunks{rows: []*domain.FileChunk{
		{ChunkIndex: 0, Content: big, Embedding: []float32{1}},
		{ChunkIndex: 1, Content: big, Embedding: []float32{0.5}},
	}})
	assert.Len(t, r.DocContext(context.Background(), uuid.New(), "f", 5, "", ""), DefaultContextChars)
}

func TestAssistant(t *testing.T) {
	gen := &fakeGenerator{replies: []string{`["a","b","c","d","e"]`, "not json", "  Think about the moon.  ", ""}}
	a := NewAssistant(gen)
	ctx := context.Background()

	ideas, err := a.SuggestPrompts(ctx, "Lions", "")
	require.NoError(t, err)
	assert.Len(t, ideas, SuggestionCount)

	ideas, err = a.SuggestPrompts(ctx, "", strings.Repeat("z", MaxSuggestContextChar+10))
	require.NoError(t, err)
	assert.Empty(t, ideas)
	assert.Equal(t, contextSuggestSystemPrompt, gen.systems[1])
	assert.True(t, strings.HasPrefix(gen.users[1], "Topic: General"))
	assert.Less(t, len(gen.users[1]), MaxSuggestContextChar+40)

	hint, err := a.Hint(ctx, "Q", "A")
	require.NoError(t, err)
	assert.Equal(t, "Think about the moon.", hint)

	hint, err = a.Hint(ctx, "Q", "A")
	require.NoError(t, err)
	assert.Equal(t, NoHint, hint)
}

type slowGenerator struct{}

func (slowGenerator) GenerateText(ctx context.Context, _, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestGenerateRoundTimeout(t *testing.T) {
	log := logger.Nop()
	g := NewGenerator(log, slowGenerator{}, novelty.NewFilter(log, nil), WithRoundTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := g.Generate(context.Background(), Request{Topic: "Cells", Count: 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}
