package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/quizlab-backend/internal/platform/ctxutil"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
	"github.com/yungbote/quizlab-backend/internal/ratelimit"
)

const RateLimitMessage = "Rate limit exceeded. Please try again later."

type Limiter interface {
	CheckAndIncrement(ctx context.Context, key, endpoint string, limit int, window time.Duration) bool
}

// Limits are the per-window call budgets for one endpoint.
type Limits struct {
	Guest  int
	User   int
	Window time.Duration
}

type RateLimitMiddleware struct {
	log     *logger.Logger
	limiter Limiter
}

func NewRateLimitMiddleware(log *logger.Logger, limiter Limiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		log:     log.With("middleware", "RateLimitMiddleware"),
		limiter: limiter,
	}
}

// Limit must run after RequireAuth. Guests are keyed by the first
// X-Forwarded-For address, signed-in callers by id.
func (m *RateLimitMiddleware) Limit(endpoint string, limits Limits) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.limiter == nil {
			c.Next()
			return
		}
		isAnonymous, userID := true, uuid.Nil
		if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
			isAnonymous, userID = rd.IsAnonymous, rd.UserID
		}
		key := ratelimit.ResolveKey(isAnonymous, userID, c.GetHeader("X-Forwarded-For"))
		limit := limits.User
		if isAnonymous {
			limit = limits.Guest
		}
		if !m.limiter.CheckAndIncrement(c.Request.Context(), key, endpoint, limit, limits.Window) {
			m.log.Info("Rate limited", "endpoint", endpoint, "guest", isAnonymous)
			c.AbortWithStatus(http.StatusTooManyRequests)
			_, _ = c.Writer.WriteString(RateLimitMessage)
			return
		}
		c.Next()
	}
}
