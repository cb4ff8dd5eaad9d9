package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShareLink struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID    uuid.UUID `gorm:"type:uuid;not null;index" json:"quiz_id"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Slug      string    `gorm:"column:slug;size:32;not null;uniqueIndex" json:"slug"`
	IsEnabled bool      `gorm:"column:is_enabled;not null" json:"is_enabled"`
	CreatedAt time.Time `json:"created_at"`
}

func (ShareLink) TableName() string { return "share_links" }

func (l *ShareLink) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// ShareAttempt is one play of a shared quiz. AttemptNumber increases per
// participant key: participant_user_id when present, else participant_name.
type ShareAttempt struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID           uuid.UUID  `gorm:"type:uuid;not null;index:idx_attempt_participant,priority:1" json:"owner_id"`
	QuizID            uuid.UUID  `gorm:"type:uuid;not null;index:idx_attempt_participant,priority:2" json:"quiz_id"`
	ParticipantName   string     `gorm:"column:participant_name;not null;index:idx_attempt_participant,priority:3" json:"participant_name"`
	ParticipantUserID *uuid.UUID `gorm:"type:uuid;column:participant_user_id;index" json:"participant_user_id,omitempty"`
	AttemptNumber     int        `gorm:"column:attempt_number;not null" json:"attempt_number"`
	Score             int        `gorm:"column:score;not null" json:"score"`
	CreatedAt         time.Time  `json:"created_at"`
}

func (ShareAttempt) TableName() string { return "quiz_attempts" }

func (a *ShareAttempt) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ScoreAggregate is keyed by (owner, quiz, participant_user_id).
type ScoreAggregate struct {
	OwnerID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"owner_id"`
	QuizID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"quiz_id"`
	ParticipantUserID uuid.UUID `gorm:"type:uuid;primaryKey;column:participant_user_id" json:"participant_user_id"`
	ParticipantName   string    `gorm:"column:participant_name" json:"participant_name"`
	LastScore         int       `gorm:"column:last_score;not null" json:"last_score"`
	AttemptCount      int       `gorm:"column:attempt_count;not null" json:"attempt_count"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (ScoreAggregate) TableName() string { return "quiz_scores" }
