package sources

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quizlab-backend/internal/domain"
	"github.com/yungbote/quizlab-backend/internal/platform/dbctx"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
)

type FileChunkRepo interface {
	Create(dbc dbctx.Context, chunks []*domain.FileChunk) ([]*domain.FileChunk, error)
	ListByFile(dbc dbctx.Context, userID uuid.UUID, fileID string) ([]*domain.FileChunk, error)
	CountByFile(dbc dbctx.Context, userID uuid.UUID, fileID string) (int64, error)
	DeleteByFile(dbc dbctx.Context, userID uuid.UUID, fileID string) error
}

type fileChunkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFileChunkRepo(db *gorm.DB, baseLog *logger.Logger) FileChunkRepo {
	repoLog := baseLog.With("repo", "FileChunkRepo")
	return &fileChunkRepo{db: db, log: repoLog}
}

func (r *fileChunkRepo) Create(dbc dbctx.Context, chunks []*domain.FileChunk) ([]*domain.FileChunk, error) {
	if len(chunks) == 0 {
		return []*domain.FileChunk{}, nil
	}
	// Content and embeddings are large; keep batches small.
	const batchSize = 100
	if err := dbc.DB(r.db).CreateInBatches(chunks, batchSize).Error; err != nil {
		return nil, err
	}
	return chunks, nil
}

func (r *fileChunkRepo) ListByFile(dbc dbctx.Context, userID uuid.UUID, fileID string) ([]*domain.FileChunk, error) {
	var results []*domain.FileChunk
	if err := dbc.DB(r.db).
		Where("user_id = ? AND file_id = ?", userID, fileID).
		Order("chunk_index ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *fileChunkRepo) CountByFile(dbc dbctx.Context, userID uuid.UUID, fileID string) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&domain.FileChunk{}).
		Where("user_id = ? AND file_id = ?", userID, fileID).
		Count(&n).Error
	return n, err
}

func (r *fileChunkRepo) DeleteByFile(dbc dbctx.Context, userID uuid.UUID, fileID string) error {
	return dbc.DB(r.db).Where("user_id = ? AND file_id = ?", userID, fileID).Delete(&domain.FileChunk{}).Error
}
