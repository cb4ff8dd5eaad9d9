package generation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/quizlab-backend/internal/domain"
	"github.com/yungbote/quizlab-backend/internal/platform/dbctx"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
	"github.com/yungbote/quizlab-backend/internal/similarity"
)

const (
	DefaultTopK         = 15
	DefaultContextChars = 12000
)

type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// ChunkSource lists the stored chunks of one user's file.
type ChunkSource interface {
	ListByFile(dbc dbctx.Context, userID uuid.UUID, fileID string) ([]*domain.FileChunk, error)
}

type Retriever struct {
	log      *logger.Logger
	embedder Embedder
	chunks   ChunkSource
}

func NewRetriever(log *logger.Logger, embedder Embedder, chunks ChunkSource) *Retriever {
	return &Retriever{log: log.With("component", "Retriever"), embedder: embedder, chunks: chunks}
}

// MatchChunks returns the content of the k chunks nearest to queryVec,
// closest first, scoped to one user and file.
func (r *Retriever) MatchChunks(ctx context.Context, userID uuid.UUID, fileID string, queryVec []float32, k int) ([]string, error) {
	rows, err := r.chunks.ListByFile(dbctx.Context{Ctx: ctx}, userID, fileID)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	type scored struct {
		content string
		score   float64
		index   int
	}
	ranked := make([]scored, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.Content) == "" {
			continue
		}
		ranked = append(ranked, scored{content: row.Content, score: similarity.Cosine(queryVec, row.Embedding), index: row.ChunkIndex})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score == ranked[j].score {
			return ranked[i].index < ranked[j].index
		}
		return ranked[i].score > ranked[j].score
	})
	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	out := make([]string, len(ranked))
	for i, s := range ranked {
		out[i] = s.content
	}
	return out, nil
}

// DocContext builds the excerpt block for a generation request. Any failure
// yields an empty context.
func (r *Retriever) DocContext(ctx context.Context, userID uuid.UUID, fileID string, n int, topic, title string) string {
	if r == nil || fileID == "" || r.embedder == nil {
		return ""
	}
	vecs, err := r.embedder.Embed(ctx, []string{retrievalQuery(n, topic, title)})
	if err != nil || len(vecs) != 1 {
		r.log.Warn("Retrieval query embedding failed", "error", err, "file_id", fileID)
		return ""
	}
	chunks, err := r.MatchChunks(ctx, userID, fileID, vecs[0], DefaultTopK)
	if err != nil {
		r.log.Warn("Chunk match failed", "error", err, "file_id", fileID)
		return ""
	}
	return truncate(strings.Join(chunks, "\n\n"), DefaultContextChars)
}
