package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Question is identified by its normalized prompt, never by a generated id.
type Question struct {
	Prompt string `json:"prompt"`
	Answer string `json:"answer"`
}

const (
	SourceManual   = "manual"
	SourceTopic    = "topic"
	SourceDocument = "document"
)

type Quiz struct {
	ID      uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
	GroupID *uuid.UUID `gorm:"type:uuid;index" json:"group_id,omitempty"`

	Title           string                        `gorm:"column:title;not null" json:"title"`
	Questions       datatypes.JSONSlice[Question] `gorm:"column:questions" json:"questions"`
	ReviewQuestions datatypes.JSONSlice[Question] `gorm:"column:review_questions" json:"review_questions"`

	SourcePrompt string `gorm:"column:source_prompt;type:text" json:"source_prompt,omitempty"`
	SourceFileID string `gorm:"column:source_file_id;index" json:"source_file_id,omitempty"`
	SourceType   string `gorm:"column:source_type" json:"source_type,omitempty"`
	AIGrading    bool   `gorm:"column:ai_grading;not null" json:"ai_grading"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Quiz) TableName() string { return "quizzes" }

func (q *Quiz) BeforeCreate(*gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.Questions == nil {
		q.Questions = datatypes.JSONSlice[Question]{}
	}
	if q.ReviewQuestions == nil {
		q.ReviewQuestions = datatypes.JSONSlice[Question]{}
	}
	return nil
}

type Group struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Name    string    `gorm:"column:name;not null" json:"name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Group) TableName() string { return "quiz_groups" }

func (g *Group) BeforeCreate(*gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
