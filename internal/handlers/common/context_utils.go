package common

import (
	"context"
	"time"

	"learnify-go/internal/constants"
)

// WithStreamTimeout bounds a whole stream; a non-positive timeout uses the
// package default.
func WithStreamTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = constants.StreamTimeout
	}
	return context.WithTimeout(parent, timeout)
}
