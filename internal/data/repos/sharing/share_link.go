package sharing

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quizlab-backend/internal/domain"
	"github.com/yungbote/quizlab-backend/internal/platform/dbctx"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
)

type ShareLinkRepo interface {
	Create(dbc dbctx.Context, link *domain.ShareLink) (*domain.ShareLink, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.ShareLink, error)
	GetBySlug(dbc dbctx.Context, slug string) (*domain.ShareLink, error)
	GetEnabledByQuiz(dbc dbctx.Context, quizID uuid.UUID) (*domain.ShareLink, error)
	SetEnabled(dbc dbctx.Context, id uuid.UUID, enabled bool) error
	DeleteByQuiz(dbc dbctx.Context, quizID uuid.UUID) error
}

type shareLinkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewShareLinkRepo(db *gorm.DB, baseLog *logger.Logger) ShareLinkRepo {
	repoLog := baseLog.With("repo", "ShareLinkRepo")
	return &shareLinkRepo{db: db, log: repoLog}
}

func (r *shareLinkRepo) Create(dbc dbctx.Context, link *domain.ShareLink) (*domain.ShareLink, error) {
	if err := dbc.DB(r.db).Create(link).Error; err != nil {
		return nil, err
	}
	return link, nil
}

func (r *shareLinkRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.ShareLink, error) {
	return r.first(dbc.DB(r.db).Where("id = ?", id))
}

func (r *shareLinkRepo) GetBySlug(dbc dbctx.Context, slug string) (*domain.ShareLink, error) {
	return r.first(dbc.DB(r.db).Where("slug = ?", slug))
}

func (r *shareLinkRepo) GetEnabledByQuiz(dbc dbctx.Context, quizID uuid.UUID) (*domain.ShareLink, error) {
	return r.first(dbc.DB(r.db).Where("quiz_id = ? AND is_enabled = ?", quizID, true).Order("created_at ASC"))
}

func (r *shareLinkRepo) first(q *gorm.DB) (*domain.ShareLink, error) {
	var link domain.ShareLink
	err := q.First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *shareLinkRepo) SetEnabled(dbc dbctx.Context, id uuid.UUID, enabled bool) error {
	return dbc.DB(r.db).Model(&domain.ShareLink{}).Where("id = ?", id).Update("is_enabled", enabled).Error
}

func (r *shareLinkRepo) DeleteByQuiz(dbc dbctx.Context, quizID uuid.UUID) error {
	return dbc.DB(r.db).Where("quiz_id = ?", quizID).Delete(&domain.ShareLink{}).Error
}
