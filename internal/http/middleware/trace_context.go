package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/quizlab-backend/internal/platform/ctxutil"
	"github.com/yungbote/quizlab-backend/internal/platform/httpx"
)

const (
	headerTraceID      = "X-Trace-Id"
	headerRequestID    = "X-Request-Id"
	headerForwardedFor = "X-Forwarded-For"
)

// AttachTraceContext stores request ids and the caller address on the request context.
// The trace id prefers the active otel span over a client supplied header.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		td := &ctxutil.TraceData{
			RequestID:  strings.TrimSpace(c.GetHeader(headerRequestID)),
			ClientAddr: httpx.FirstForwardedFor(c.GetHeader(headerForwardedFor)),
		}
		if td.RequestID == "" {
			td.RequestID = uuid.NewString()
		}
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			td.TraceID = sc.TraceID().String()
		} else if h := strings.TrimSpace(c.GetHeader(headerTraceID)); h != "" {
			td.TraceID = h
		} else {
			td.TraceID = td.RequestID
		}
		if td.ClientAddr == "" {
			td.ClientAddr = c.ClientIP()
		}

		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))
		c.Header(headerTraceID, td.TraceID)
		c.Header(headerRequestID, td.RequestID)
		c.Next()
	}
}
