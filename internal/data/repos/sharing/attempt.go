package sharing

import (
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quizlab-backend/internal/domain"
	"github.com/yungbote/quizlab-backend/internal/platform/dbctx"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
)

type AttemptRepo interface {
	Create(dbc dbctx.Context, attempt *domain.ShareAttempt) (*domain.ShareAttempt, error)
	// MaxAttemptNumber is keyed by participantUserID when set, else by participantName.
	MaxAttemptNumber(dbc dbctx.Context, ownerID, quizID uuid.UUID, participantUserID *uuid.UUID, participantName string) (int, error)
	ListByQuiz(dbc dbctx.Context, quizID uuid.UUID) ([]*domain.ShareAttempt, error)
	DeleteByQuiz(dbc dbctx.Context, quizID uuid.UUID) error
}

type attemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAttemptRepo(db *gorm.DB, baseLog *logger.Logger) AttemptRepo {
	repoLog := baseLog.With("repo", "AttemptRepo")
	return &attemptRepo{db: db, log: repoLog}
}

func (r *attemptRepo) Create(dbc dbctx.Context, attempt *domain.ShareAttempt) (*domain.ShareAttempt, error) {
	if err := dbc.DB(r.db).Create(attempt).Error; err != nil {
		return nil, err
	}
	return attempt, nil
}

func (r *attemptRepo) MaxAttemptNumber(dbc dbctx.Context, ownerID, quizID uuid.UUID, participantUserID *uuid.UUID, participantName string) (int, error) {
	q := dbc.DB(r.db).Model(&domain.ShareAttempt{}).Where("owner_id = ? AND quiz_id = ?", ownerID, quizID)
	if participantUserID != nil {
		q = q.Where("participant_user_id = ?", *participantUserID)
	} else {
		q = q.Where("participant_name = ? AND participant_user_id IS NULL", participantName)
	}
	var max sql.NullInt64
	if err := q.Select("MAX(attempt_number)").Row().Scan(&max); err != nil {
		return 0, err
	}
	return int(max.Int64), nil
}

func (r *attemptRepo) ListByQuiz(dbc dbctx.Context, quizID uuid.UUID) ([]*domain.ShareAttempt, error) {
	var results []*domain.ShareAttempt
	if err := dbc.DB(r.db).Where("quiz_id = ?", quizID).Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *attemptRepo) DeleteByQuiz(dbc dbctx.Context, quizID uuid.UUID) error {
	return dbc.DB(r.db).Where("quiz_id = ?", quizID).Delete(&domain.ShareAttempt{}).Error
}
