package accounts

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/quizlab-backend/internal/domain"
	"github.com/yungbote/quizlab-backend/internal/platform/dbctx"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
)

type IdentityRepo interface {
	Upsert(dbc dbctx.Context, identity *domain.Identity) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Identity, error)
	ListStaleAnonymous(dbc dbctx.Context, createdBefore time.Time, limit int) ([]*domain.Identity, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type identityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIdentityRepo(db *gorm.DB, baseLog *logger.Logger) IdentityRepo {
	repoLog := baseLog.With("repo", "IdentityRepo")
	return &identityRepo{db: db, log: repoLog}
}

// Upsert refreshes the mirror row from verified token claims.
func (r *identityRepo) Upsert(dbc dbctx.Context, identity *domain.Identity) error {
	now := time.Now().UTC()
	if identity.CreatedAt.IsZero() {
		identity.CreatedAt = now
	}
	identity.LastSeenAt = now
	return dbc.DB(r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "provider", "is_anonymous", "last_seen_at"}),
	}).Create(identity).Error
}

func (r *identityRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Identity, error) {
	var ident domain.Identity
	err := dbc.DB(r.db).Where("id = ?", id).First(&ident).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ident, nil
}

func (r *identityRepo) ListStaleAnonymous(dbc dbctx.Context, createdBefore time.Time, limit int) ([]*domain.Identity, error) {
	var results []*domain.Identity
	q := dbc.DB(r.db).Where("is_anonymous = ? AND created_at < ?", true, createdBefore).Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *identityRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", id).Delete(&domain.Identity{}).Error
}
