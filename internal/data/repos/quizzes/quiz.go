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

type QuizRepo interface {
	Create(dbc dbctx.Context, quiz *domain.Quiz) (*domain.Quiz, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Quiz, error)
	ListByOwner(dbc dbctx.Context, ownerID uuid.UUID, groupID *uuid.UUID) ([]*domain.Quiz, error)
	CountByOwner(dbc dbctx.Context, ownerID uuid.UUID) (int64, error)
	CountByGroup(dbc dbctx.Context, groupID uuid.UUID) (int64, error)
	ListPromptsByGroup(dbc dbctx.Context, ownerID, groupID uuid.UUID) ([]string, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	DetachGroup(dbc dbctx.Context, groupID uuid.UUID) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type quizRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizRepo(db *gorm.DB, baseLog *logger.Logger) QuizRepo {
	repoLog := baseLog.With("repo", "QuizRepo")
	return &quizRepo{db: db, log: repoLog}
}

func (r *quizRepo) Create(dbc dbctx.Context, quiz *domain.Quiz) (*domain.Quiz, error) {
	if err := dbc.DB(r.db).Create(quiz).Error; err != nil {
		return nil, err
	}
	return quiz, nil
}

// GetByID returns nil, nil when the quiz does not exist.
func (r *quizRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Quiz, error) {
	var quiz domain.Quiz
	err := dbc.DB(r.db).Where("id = ?", id).First(&quiz).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *quizRepo) ListByOwner(dbc dbctx.Context, ownerID uuid.UUID, groupID *uuid.UUID) ([]*domain.Quiz, error) {
	var results []*domain.Quiz
	q := dbc.DB(r.db).Where("owner_id = ?", ownerID)
	if groupID != nil {
		q = q.Where("group_id = ?", *groupID)
	}
	if err := q.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *quizRepo) CountByOwner(dbc dbctx.Context, ownerID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&domain.Quiz{}).Where("owner_id = ?", ownerID).Count(&n).Error
	return n, err
}

func (r *quizRepo) CountByGroup(dbc dbctx.Context, groupID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&domain.Quiz{}).Where("group_id = ?", groupID).Count(&n).Error
	return n, err
}

// ListPromptsByGroup returns every question prompt across the owner's quizzes
// in a group, oldest quiz first.
func (r *quizRepo) ListPromptsByGroup(dbc dbctx.Context, ownerID, groupID uuid.UUID) ([]string, error) {
	var rows []*domain.Quiz
	if err := dbc.DB(r.db).
		Select("id", "questions").
		Where("owner_id = ? AND group_id = ?", ownerID, groupID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	prompts := []string{}
	for _, q := range rows {
		for _, item := range q.Questions {
			if item.Prompt != "" {
				prompts = append(prompts, item.Prompt)
			}
		}
	}
	return prompts, nil
}

func (r *quizRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).Model(&domain.Quiz{}).Where("id = ?", id).Updates(updates).Error
}

func (r *quizRepo) DetachGroup(dbc dbctx.Context, groupID uuid.UUID) error {
	return dbc.DB(r.db).Model(&domain.Quiz{}).
		Where("group_id = ?", groupID).
		Updates(map[string]interface{}{"group_id": nil, "updated_at": time.Now().UTC()}).Error
}

func (r *quizRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", id).Delete(&domain.Quiz{}).Error
}
