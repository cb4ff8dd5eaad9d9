package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/quizlab-backend/internal/identity"
	"github.com/yungbote/quizlab-backend/internal/platform/ctxutil"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
	"github.com/yungbote/quizlab-backend/internal/ratelimit"
)

type recordingMirror struct {
	seen []*identity.Caller
	err  error
}

func (m *recordingMirror) Touch(_ context.Context, c *identity.Caller) error {
	m.seen = append(m.seen, c)
	return m.err
}

func signed(t *testing.T, v *identity.Verifier, c identity.Caller) string {
	t.Helper()
	tok, err := v.Sign(c, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))})
	require.NoError(t, err)
	return tok
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	v := identity.NewVerifier("test-secret")
	mirror := &recordingMirror{err: errors.New("db down")}
	am := NewAuthMiddleware(logger.Nop(), v, mirror)

	r := gin.New()
	r.GET("/api/me", am.RequireAuth(), func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		c.String(http.StatusOK, rd.UserID.String())
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", rec.Body.String())

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	id := uuid.New()
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, v, identity.Caller{ID: id, Email: "a@example.com", Provider: "email"}))
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id.String(), rec.Body.String())
	require.Len(t, mirror.seen, 1)
	assert.False(t, mirror.seen[0].IsAnonymous)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me?token="+signed(t, v, identity.Caller{ID: id, Provider: identity.ProviderAnonymous}), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, mirror.seen[1].IsAnonymous)
}

type countingLimiter struct {
	keys   []string
	limits []int
	allow  bool
}

func (l *countingLimiter) CheckAndIncrement(_ context.Context, key, _ string, limit int, _ time.Duration) bool {
	l.keys = append(l.keys, key)
	l.limits = append(l.limits, limit)
	return l.allow
}

func TestRateLimitKeysAndLimits(t *testing.T) {
	gin.SetMode(gin.TestMode)
	lim := &countingLimiter{allow: true}
	m := NewRateLimitMiddleware(logger.Nop(), lim)
	limits := Limits{Guest: 5, User: 20, Window: time.Hour}

	userID := uuid.New()
	serve := func(rd *ctxutil.RequestData, forwarded string) *httptest.ResponseRecorder {
		r := gin.New()
		r.POST("/api/grade-answer", func(c *gin.Context) {
			if rd != nil {
				c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
			}
			c.Next()
		}, m.Limit(ratelimit.EndpointGradeAnswer, limits), func(c *gin.Context) { c.Status(http.StatusOK) })
		req := httptest.NewRequest(http.MethodPost, "/api/grade-answer", nil)
		if forwarded != "" {
			req.Header.Set("X-Forwarded-For", forwarded)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	serve(&ctxutil.RequestData{UserID: uuid.New(), IsAnonymous: true}, "203.0.113.9, 10.0.0.1")
	serve(&ctxutil.RequestData{UserID: userID}, "203.0.113.9")
	serve(&ctxutil.RequestData{UserID: uuid.New(), IsAnonymous: true}, "")
	assert.Equal(t, []string{"203.0.113.9", userID.String(), ratelimit.UnknownKey}, lim.keys)
	assert.Equal(t, []int{5, 20, 5}, lim.limits)

	lim.allow = false
	rec := serve(&ctxutil.RequestData{UserID: userID}, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, RateLimitMessage, rec.Body.String())
}

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) {
		td := ctxutil.GetTraceData(c.Request.Context())
		c.String(http.StatusOK, td.RequestID)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerRequestID, "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Body.String())
	assert.Equal(t, "req-123", rec.Header().Get(headerRequestID))
	assert.NotEmpty(t, rec.Header().Get(headerTraceID))
}

func TestAttachTraceContextClientAddr(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var got *ctxutil.TraceData
	r.GET("/x", func(c *gin.Context) {
		got = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerForwardedFor, "203.0.113.9, 10.0.0.1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.NotNil(t, got)
	assert.Equal(t, "203.0.113.9", got.ClientAddr)
	assert.Equal(t, got.RequestID, got.TraceID)
	assert.Contains(t, got.LogFields(), "client")
}
