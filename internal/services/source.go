package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/quizlab-backend/internal/data/repos"
	"github.com/yungbote/quizlab-backend/internal/domain"
	"github.com/yungbote/quizlab-backend/internal/ingestion/chunker"
	"github.com/yungbote/quizlab-backend/internal/platform/apierr"
	"github.com/yungbote/quizlab-backend/internal/platform/dbctx"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
)

type IndexInput struct {
	Text     string `json:"text"`
	FileID   string `json:"file_id,omitempty"`
	FileName string `json:"file_name,omitempty"`
}

type IndexResult struct {
	FileID string `json:"file_id"`
	Count  int    `json:"count"`
}

type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

type SourceService interface {
	Index(dbc dbctx.Context, in IndexInput) (*IndexResult, error)
}

type sourceService struct {
	log      *logger.Logger
	chunks   repos.FileChunkRepo
	embedder Embedder
}

func NewSourceService(baseLog *logger.Logger, rs repos.Set, embedder Embedder) SourceService {
	return &sourceService{
		log:      baseLog.With("service", "SourceService"),
		chunks:   rs.Chunks,
		embedder: embedder,
	}
}

// Index chunks text, embeds every chunk in one batch and replaces any
// chunks previously stored for the same file.
func (s *sourceService) Index(dbc dbctx.Context, in IndexInput) (*IndexResult, error) {
	rd, err := requireCaller(dbc)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(in.Text)
	if len([]rune(text)) < chunker.MinTextChars {
		return nil, apierr.BadRequest("Text too short")
	}
	fileID := strings.TrimSpace(in.FileID)
	if fileID == "" {
		fileID = uuid.NewString()
	}
	pieces := chunker.Split(text, chunker.Options{})
	if len(pieces) == 0 {
		return nil, apierr.BadRequest("Text too short")
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("embedding is not configured")
	}
	vectors, err := s.embedder.Embed(dbc.Ctx, pieces)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(pieces) {
		return nil, fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(vectors), len(pieces))
	}

	rows := make([]*domain.FileChunk, 0, len(pieces))
	for i, content := range pieces {
		rows = append(rows, &domain.FileChunk{
			UserID:     rd.UserID,
			FileID:     fileID,
			FileName:   strings.TrimSpace(in.FileName),
			ChunkIndex: i,
			Content:    content,
			Embedding:  vectors[i],
		})
	}
	if err := s.chunks.DeleteByFile(dbc, rd.UserID, fileID); err != nil {
		return nil, fmt.Errorf("clear previous chunks: %w", err)
	}
	if _, err := s.chunks.Create(dbc, rows); err != nil {
		return nil, fmt.Errorf("store chunks: %w", err)
	}
	s.log.Info("Source indexed", "file_id", fileID, "chunks", len(rows))
	return &IndexResult{FileID: fileID, Count: len(rows)}, nil
}
