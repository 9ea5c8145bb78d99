package streaming

import (
	"context"
	"math/rand"
	"time"
)

// DelayPolicy decides how long to pause before emitting chunk i.
type DelayPolicy interface {
	Next(i int) time.Duration
}

// NoDelay emits back to back. Tests use it.
type NoDelay struct{}

func (NoDelay) Next(int) time.Duration { return 0 }

// FixedDelay always waits the same duration.
type FixedDelay time.Duration

func (d FixedDelay) Next(int) time.Duration { return time.Duration(d) }

// RandomDelay draws uniformly from [Min, Max] to mimic uneven typing.
type RandomDelay struct {
	Min time.Duration
	Max time.Duration
}

// DefaultRandomDelay matches the 30-60ms cadence of a typing model.
func DefaultRandomDelay() RandomDelay {
	return RandomDelay{Min: 30 * time.Millisecond, Max: 60 * time.Millisecond}
}

func (d RandomDelay) Next(int) time.Duration {
	if d.Max <= d.Min {
		return d.Min
	}
	return d.Min + time.Duration(rand.Int63n(int64(d.Max-d.Min)+1))
}

// sleep waits for d or until ctx is done; it reports whether the wait completed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
