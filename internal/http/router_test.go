package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/quizlab-backend/internal/data/repos"
	"github.com/yungbote/quizlab-backend/internal/data/repos/testutil"
	"github.com/yungbote/quizlab-backend/internal/grading"
	httpH "github.com/yungbote/quizlab-backend/internal/http/handlers"
	httpMW "github.com/yungbote/quizlab-backend/internal/http/middleware"
	"github.com/yungbote/quizlab-backend/internal/identity"
	"github.com/yungbote/quizlab-backend/internal/quota"
	"github.com/yungbote/quizlab-backend/internal/ratelimit"
	"github.com/yungbote/quizlab-backend/internal/services"
)

type testServer struct {
	engine   *gin.Engine
	verifier *identity.Verifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)
	rs := repos.NewSet(db, log)
	verifier := identity.NewVerifier("router-test-secret")

	quizzes := services.NewQuizService(db, log, rs, quota.DefaultGuestLimit)
	accounts := services.NewAccountService(db, log, rs, quizzes)
	grader := grading.NewGrader(log, nil)
	limiter := ratelimit.NewLimiter(log, ratelimit.NewGormStore(db))

	engine := NewRouter(RouterConfig{
		Log:                 log,
		AuthMiddleware:      httpMW.NewAuthMiddleware(log, verifier, accounts),
		RateLimitMiddleware: httpMW.NewRateLimitMiddleware(log, limiter),
		GradeLimits:         httpMW.Limits{Guest: 2, User: 20, Window: time.Hour},
		QuizHandler:         httpH.NewQuizHandler(log, quizzes),
		GroupHandler:        httpH.NewGroupHandler(log, services.NewGroupService(db, log, rs)),
		GradingHandler:      httpH.NewGradingHandler(log, services.NewGradingService(log, rs, grader)),
		ShareHandler:        httpH.NewShareHandler(log, services.NewShareService(db, log, rs)),
		AccountHandler:      httpH.NewAccountHandler(log, accounts),
		HealthHandler:       httpH.NewHealthHandler(db),
	})
	return &testServer{engine: engine, verifier: verifier}
}

func (s *testServer) token(t *testing.T, c identity.Caller) string {
	t.Helper()
	tok, err := s.verifier.Sign(c, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))})
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequestWithContext(context.Background(), method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func TestRouterHealthAndAuth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/healthcheck", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = s.do(http.MethodGet, "/api/quizzes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", rec.Body.String())

	tok := s.token(t, identity.Caller{ID: uuid.New(), Email: "me@example.com", Provider: "email"})
	rec = s.do(http.MethodGet, "/api/me", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me services.Me
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "me@example.com", me.Identity.Email)
	assert.True(t, me.Quota.Allowed)
}

func TestRouterQuizAndShareFlow(t *testing.T) {
	s := newTestServer(t)
	owner := s.token(t, identity.Caller{ID: uuid.New(), Email: "owner@example.com", Provider: "email"})

	rec := s.do(http.MethodPost, "/api/quizzes", owner, map[string]any{
		"title":     "Capitals",
		"questions": []map[string]string{{"prompt": "Capital of France?", "answer": "Paris"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Quiz struct {
			ID uuid.UUID `json:"id"`
		} `json:"quiz"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	quizPath := "/api/quizzes/" + created.Quiz.ID.String()

	rec = s.do(http.MethodPost, quizPath+"/grade", owner, map[string]any{"index": 0, "user_answer": "paris"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"correct":true`)

	stranger := s.token(t, identity.Caller{ID: uuid.New(), Email: "x@example.com", Provider: "email"})
	rec = s.do(http.MethodGet, quizPath, stranger, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Quiz not found", rec.Body.String())

	rec = s.do(http.MethodPost, quizPath+"/share", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var link struct {
		ShareLink struct {
			ID   uuid.UUID `json:"id"`
			Slug string    `json:"slug"`
		} `json:"share_link"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &link))

	rec = s.do(http.MethodGet, "/api/share/"+link.ShareLink.Slug, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Capital of France?")
	assert.NotContains(t, rec.Body.String(), "owner_id")

	rec = s.do(http.MethodPost, "/api/share/"+link.ShareLink.Slug+"/attempts", "", map[string]any{"participant_name": "ann", "score": 99.5})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"score":100`)

	rec = s.do(http.MethodPatch, "/api/share-links/"+link.ShareLink.ID.String(), owner, map[string]any{"is_enabled": false})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, "/api/share/"+link.ShareLink.Slug, "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, quizPath+"/scores", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"participant_name":"ann"`)
}

func TestRouterGuestQuotaAndRateLimit(t *testing.T) {
	s := newTestServer(t)
	guest := s.token(t, identity.Caller{ID: uuid.New(), Provider: identity.ProviderAnonymous, IsAnonymous: true})

	for i := 0; i < quota.DefaultGuestLimit; i++ {
		rec := s.do(http.MethodPost, "/api/quizzes", guest, map[string]any{"title": "q"})
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := s.do(http.MethodPost, "/api/quizzes", guest, map[string]any{"title": "q"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, quota.TrialLimitMessage, rec.Body.String())

	body := map[string]any{"question": "Capital of France?", "expected": "Paris", "user_answer": "Paris"}
	for i := 0; i < 2; i++ {
		rec = s.do(http.MethodPost, "/api/grade-answer", guest, body, "X-Forwarded-For", "198.51.100.7")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec = s.do(http.MethodPost, "/api/grade-answer", guest, body, "X-Forwarded-For", "198.51.100.7")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, httpMW.RateLimitMessage, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/grade-answer", guest, map[string]any{"question": "q", "expected": "a", "user_answer": ""}, "X-Forwarded-For", "198.51.100.8")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No answer provided")
}
