package sharing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/quizlab-backend/internal/domain"
	"github.com/yungbote/quizlab-backend/internal/platform/dbctx"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
)

type ScoreRepo interface {
	// RecordAttempt upserts the aggregate in one statement and returns the stored row.
	RecordAttempt(dbc dbctx.Context, ownerID, quizID, participantUserID uuid.UUID, participantName string, score int) (*domain.ScoreAggregate, error)
	ListByQuiz(dbc dbctx.Context, quizID uuid.UUID) ([]*domain.ScoreAggregate, error)
	DeleteByQuiz(dbc dbctx.Context, quizID uuid.UUID) error
}

type scoreRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScoreRepo(db *gorm.DB, baseLog *logger.Logger) ScoreRepo {
	repoLog := baseLog.With("repo", "ScoreRepo")
	return &scoreRepo{db: db, log: repoLog}
}

func (r *scoreRepo) RecordAttempt(dbc dbctx.Context, ownerID, quizID, participantUserID uuid.UUID, participantName string, score int) (*domain.ScoreAggregate, error) {
	now := time.Now().UTC()
	row := &domain.ScoreAggregate{
		OwnerID:           ownerID,
		QuizID:            quizID,
		ParticipantUserID: participantUserID,
		ParticipantName:   participantName,
		LastScore:         score,
		AttemptCount:      1,
		UpdatedAt:         now,
	}
	transaction := dbc.DB(r.db)
	err := transaction.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner_id"}, {Name: "quiz_id"}, {Name: "participant_user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"attempt_count":    gorm.Expr("quiz_scores.attempt_count + 1"),
			"last_score":       score,
			"participant_name": participantName,
			"updated_at":       now,
		}),
	}).Create(row).Error
	if err != nil {
		return nil, err
	}
	var stored domain.ScoreAggregate
	if err := transaction.
		Where("owner_id = ? AND quiz_id = ? AND participant_user_id = ?", ownerID, quizID, participantUserID).
		First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *scoreRepo) ListByQuiz(dbc dbctx.Context, quizID uuid.UUID) ([]*domain.ScoreAggregate, error) {
	var results []*domain.ScoreAggregate
	if err := dbc.DB(r.db).Where("quiz_id = ?", quizID).Order("updated_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *scoreRepo) DeleteByQuiz(dbc dbctx.Context, quizID uuid.UUID) error {
	return dbc.DB(r.db).Where("quiz_id = ?", quizID).Delete(&domain.ScoreAggregate{}).Error
}
