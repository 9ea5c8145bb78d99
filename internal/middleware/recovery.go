package middleware

import (
	"fmt"
	"runtime/debug"

	apperrors "learnify-go/internal/errors"
	"learnify-go/internal/httpformat"
	"learnify-go/internal/logging"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Recovery returns a panic recovery middleware.
func Recovery() gin.HandlerFunc {
	return RecoveryWithWriter(nil)
}

// RecoveryWithWriter is Recovery with a hook invoked before the 500 is written.
// Once a stream has started the status line is already out, so only the
// log entry and the hook remain meaningful.
func RecoveryWithWriter(writer gin.RecoveryFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logging.WithReq(c, log.Fields{
					"error":      err,
					"stack":      string(debug.Stack()),
					"user_agent": c.Request.UserAgent(),
				}).Error("Panic recovered")

				if writer != nil {
					writer(c, err)
				}
				if c.Writer.Written() {
					c.Abort()
					return
				}
				httpformat.Abort(c, apperrors.Internal("Internal server error"))
			}
		}()

		c.Next()
	}
}

// SafeGo runs fn on a new goroutine and logs instead of crashing on panic.
func SafeGo(name string, fn func()) {
	go func() {
		defer func() {
			if err := recover(); err != nil {
				log.WithFields(log.Fields{
					"goroutine": name,
					"error":     err,
					"stack":     string(debug.Stack()),
				}).Error("Goroutine panic recovered")
			}
		}()
		fn()
	}()
}

// SafeCall calls fn and converts a panic into an error.
func SafeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"error": r,
				"stack": string(debug.Stack()),
			}).Error("Panic in SafeCall")
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return fn()
}
