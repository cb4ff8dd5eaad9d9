package quizzes

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quizlab-backend/internal/domain"
	"github.com/yungbote/quizlab-backend/internal/platform/dbctx"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
)

type GroupRepo interface {
	Create(dbc dbctx.Context, group *domain.Group) (*domain.Group, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Group, error)
	ListByOwner(dbc dbctx.Context, ownerID uuid.UUID) ([]*domain.Group, error)
	Rename(dbc dbctx.Context, id uuid.UUID, name string) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type groupRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGroupRepo(db *gorm.DB, baseLog *logger.Logger) GroupRepo {
	repoLog := baseLog.With("repo", "GroupRepo")
	return &groupRepo{db: db, log: repoLog}
}

func (r *groupRepo) Create(dbc dbctx.Context, group *domain.Group) (*domain.Group, error) {
	if err := dbc.DB(r.db).Create(group).Error; err != nil {
		return nil, err
	}
	return group, nil
}

func (r *groupRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Group, error) {
	var g domain.Group
	err := dbc.DB(r.db).Where("id = ?", id).First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *groupRepo) ListByOwner(dbc dbctx.Context, ownerID uuid.UUID) ([]*domain.Group, error) {
	var results []*domain.Group
	if err := dbc.DB(r.db).Where("owner_id = ?", ownerID).Order("name ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *groupRepo) Rename(dbc dbctx.Context, id uuid.UUID, name string) error {
	return dbc.DB(r.db).Model(&domain.Group{}).Where("id = ?", id).
		Updates(map[string]interface{}{"name": name, "updated_at": time.Now().UTC()}).Error
}

func (r *groupRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", id).Delete(&domain.Group{}).Error
}
