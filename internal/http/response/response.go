package response

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/quizlab-backend/internal/platform/apierr"
)

// RespondError writes err as a plain-text body. Errors without a mapped
// status are 500s.
func RespondError(c *gin.Context, err error) {
	status := apierr.StatusOf(err)
	msg := http.StatusText(status)
	if err != nil {
		msg = message(err)
	}
	c.String(status, msg)
}

// RespondStatus writes msg as a plain-text body with the given status.
func RespondStatus(c *gin.Context, status int, msg string) {
	c.String(status, msg)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// message drops the sentinel suffix apierr adds to not-found and
// unauthorized errors.
func message(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{apierr.ErrNotFound, apierr.ErrUnauthorized} {
		if errors.Is(err, sentinel) {
			msg = strings.TrimSuffix(msg, ": "+sentinel.Error())
		}
	}
	return msg
}
