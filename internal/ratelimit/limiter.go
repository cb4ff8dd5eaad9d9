// Package ratelimit is a fixed-window request counter per caller key and
// endpoint.
package ratelimit

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/quizlab-backend/internal/platform/httpx"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
)

// UnknownKey is used for guests whose network address cannot be resolved.
const UnknownKey = "unknown"

const (
	EndpointGradeAnswer  = "grade-answer"
	EndpointGenerateQuiz = "generate-quiz"
	DefaultWindow        = time.Hour
	PolicyAllow          = "allow"
	PolicyDeny           = "deny"
)

// Store counts one hit and reports the count inside the current window. A
// window that started at or before now-window is reset to a count of one.
type Store interface {
	Hit(ctx context.Context, key, endpoint string, window time.Duration, now time.Time) (int, error)
}

type Limiter struct {
	log         *logger.Logger
	store       Store
	now         func() time.Time
	denyUnknown bool
}

type Option func(*Limiter)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithUnknownPolicy sets how the UnknownKey bucket is treated.
func WithUnknownPolicy(policy string) Option {
	return func(l *Limiter) {
		l.denyUnknown = strings.EqualFold(strings.TrimSpace(policy), PolicyDeny)
	}
}

func NewLimiter(log *logger.Logger, store Store, opts ...Option) *Limiter {
	l := &Limiter{
		log:   log.With("component", "RateLimiter"),
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CheckAndIncrement records a call for (key, endpoint) and reports whether it
// fits within limit for the current window. Storage failures allow the call.
func (l *Limiter) CheckAndIncrement(ctx context.Context, key, endpoint string, limit int, window time.Duration) bool {
	if key == "" || key == UnknownKey {
		return !l.denyUnknown
	}
	if limit <= 0 {
		return false
	}
	if window <= 0 {
		window = DefaultWindow
	}
	count, err := l.store.Hit(ctx, key, endpoint, window, l.now().UTC())
	if err != nil {
		l.log.Warn("Rate limit store failed, allowing request", "error", err, "endpoint", endpoint)
		return true
	}
	return count <= limit
}

// ResolveKey keys guests by the first forwarded-for address and signed-in
// callers by their id.
func ResolveKey(isAnonymous bool, userID uuid.UUID, forwardedFor string) string {
	if !isAnonymous && userID != uuid.Nil {
		return userID.String()
	}
	if ip := httpx.FirstForwardedFor(forwardedFor); ip != "" {
		return ip
	}
	return UnknownKey
}
