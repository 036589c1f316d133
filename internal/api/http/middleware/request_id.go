package middleware

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Kenz1481/web-deployment-website/internal/requestid"
)

// HeaderRequestID is read from and echoed back on every request.
const HeaderRequestID = "X-Request-Id"

// RequestIDMiddleware ensures every request has a stable request ID.
// An incoming X-Request-Id header is reused, otherwise a new id is generated.
// The id is stored in the gin context, in the request context and in the
// response header, and one access-log line is written per request.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Set("request_id", rid)
		c.Request = c.Request.WithContext(requestid.With(c.Request.Context(), rid))
		c.Writer.Header().Set(HeaderRequestID, rid)

		start := time.Now()
		c.Next()

		log.Printf(
			"[req] id=%s method=%s path=%s status=%d latency=%s",
			rid,
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start),
		)
	}
}

// GetRequestID extracts the request ID from a standard context
func GetRequestID(ctx context.Context) string {
	return requestid.From(ctx)
}
