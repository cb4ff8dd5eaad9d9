package ratelimit

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// hitSQL resets or increments the counter in one statement so two concurrent
// first requests cannot both read a missing row.
const hitSQL = `
INSERT INTO rate_limits ("key", endpoint, count, window_start)
VALUES (?, ?, 1, ?)
ON CONFLICT ("key", endpoint) DO UPDATE SET
  count = CASE WHEN rate_limits.window_start <= ? THEN 1 ELSE rate_limits.count + 1 END,
  window_start = CASE WHEN rate_limits.window_start <= ? THEN excluded.window_start ELSE rate_limits.window_start END
RETURNING count`

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Hit(ctx context.Context, key, endpoint string, window time.Duration, now time.Time) (int, error) {
	cutoff := now.Add(-window)
	var count int
	row := s.db.WithContext(ctx).Raw(hitSQL, key, endpoint, now, cutoff, cutoff).Row()
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("rate limit upsert: %w", err)
	}
	return count, nil
}
