package middleware

import (
	"time"

	"learnify-go/internal/logging"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// RequestLogger logs one line per HTTP request. Streaming handlers may set
// "stream_id" on the context so the access line can be joined with the
// stream's own log entries.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		extras := log.Fields{
			"status":     status,
			"latency_ms": logging.DurationMS(time.Since(start)),
			"bytes":      c.Writer.Size(),
			"user_agent": c.Request.UserAgent(),
		}
		if sid, ok := c.Get("stream_id"); ok {
			extras["stream_id"] = sid
		}
		entry := logging.WithReq(c, extras)
		switch {
		case status >= 500:
			entry.Error("http_request")
		case status >= 400:
			entry.Warn("http_request")
		default:
			entry.Info("http_request")
		}
	}
}
