package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/quizlab-backend/internal/platform/apierr"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err    error
		status int
		body   string
	}{
		{apierr.BadRequest("Missing expected answer"), http.StatusBadRequest, "Missing expected answer"},
		{apierr.NotFound("Quiz not found"), http.StatusNotFound, "Quiz not found"},
		{apierr.Unauthorized("Unauthorized"), http.StatusUnauthorized, "Unauthorized"},
		{apierr.Forbidden("Free trial limit reached."), http.StatusForbidden, "Free trial limit reached."},
		{errors.New("upstream exploded"), http.StatusInternalServerError, "upstream exploded"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		RespondError(c, tc.err)
		if rec.Code != tc.status {
			t.Fatalf("%v: status got=%d want=%d", tc.err, rec.Code, tc.status)
		}
		if rec.Body.String() != tc.body {
			t.Fatalf("%v: body got=%q want=%q", tc.err, rec.Body.String(), tc.body)
		}
	}
}
