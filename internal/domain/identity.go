package domain

import (
	"time"

	"github.com/google/uuid"
)

// Identity mirrors the caller identity from the auth platform so ownership
// checks and guest cleanup can run locally.
type Identity struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string    `gorm:"column:email;index" json:"email,omitempty"`
	Provider    string    `gorm:"column:provider" json:"provider,omitempty"`
	IsAnonymous bool      `gorm:"column:is_anonymous;not null;index" json:"is_anonymous"`
	CreatedAt   time.Time `json:"created_at"`
	LastSeenAt  time.Time `gorm:"column:last_seen_at" json:"last_seen_at"`
}

func (Identity) TableName() string { return "identities" }

// Models lists every table for migration.
func Models() []any {
	return []any{
		&Identity{},
		&Group{},
		&Quiz{},
		&ShareLink{},
		&ShareAttempt{},
		&ScoreAggregate{},
		&FileChunk{},
		&RateLimitCounter{},
	}
}
