package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/quizlab-backend/internal/identity"
	"github.com/yungbote/quizlab-backend/internal/platform/ctxutil"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
)

// TokenVerifier turns a bearer token into a caller.
type TokenVerifier interface {
	Verify(token string) (*identity.Caller, error)
}

// IdentityMirror records verified callers locally.
type IdentityMirror interface {
	Touch(ctx context.Context, c *identity.Caller) error
}

type AuthMiddleware struct {
	log      *logger.Logger
	verifier TokenVerifier
	mirror   IdentityMirror
}

func NewAuthMiddleware(log *logger.Logger, verifier TokenVerifier, mirror IdentityMirror) *AuthMiddleware {
	return &AuthMiddleware{
		log:      log.With("middleware", "AuthMiddleware"),
		verifier: verifier,
		mirror:   mirror,
	}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractTokenFromAll(c)
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			_, _ = c.Writer.WriteString("Unauthorized")
			return
		}
		caller, err := am.verifier.Verify(token)
		if err != nil {
			am.log.Debug("Token rejected", "error", err)
			c.AbortWithStatus(http.StatusUnauthorized)
			_, _ = c.Writer.WriteString("Unauthorized")
			return
		}
		ctx := c.Request.Context()
		if am.mirror != nil {
			if err := am.mirror.Touch(ctx, caller); err != nil {
				// The mirror only feeds cleanup and adoption checks.
				am.log.Warn("Identity mirror update failed", "error", err, "user_id", caller.ID)
			}
		}
		ctx = ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
			UserID:      caller.ID,
			Email:       caller.Email,
			IsAnonymous: caller.IsAnonymous,
			Token:       token,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractTokenFromAll(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
