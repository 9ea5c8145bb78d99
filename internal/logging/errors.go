package logging

import (
	"context"
	"errors"

	"learnify-go/internal/streaming"
)

// StreamOutcome labels how a stream ended for logs and metrics.
func StreamOutcome(stats streaming.WriteStats, err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, streaming.ErrTransportClosed), errors.Is(err, context.Canceled):
		return "cancelled"
	case err != nil, stats.Failed:
		return "failed"
	case stats.Completed:
		return "completed"
	default:
		return "incomplete"
	}
}
