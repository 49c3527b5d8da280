package engine

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryScheduler wraps an engine attempt in bounded exponential-backoff
// retry. Only optimistic-lock conflicts are retried; every other error is
// terminal on the first occurrence.
type RetryScheduler struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries uint64

	// BaseDelay is the first backoff interval.
	BaseDelay time.Duration

	// Multiplier grows the interval between attempts.
	Multiplier float64
}

// DefaultRetry matches the engine's contract: three retries, 100ms base,
// doubling, with jitter.
func DefaultRetry() RetryScheduler {
	return RetryScheduler{
		MaxRetries: 3,
		BaseDelay:  100 * time.Millisecond,
		Multiplier: 2,
	}
}

// Do runs op, retrying stale-snapshot failures until the budget or the
// caller's deadline runs out. Exhausted retries surface
// ErrConcurrencyConflict; an expired deadline surfaces ErrTimeout.
func (r RetryScheduler) Do(ctx context.Context, op func(context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.BaseDelay
	b.Multiplier = r.Multiplier
	b.RandomizationFactor = 0.25 // jitter desynchronizes colliding retriers
	b.MaxElapsedTime = 0

	policy := backoff.WithMaxRetries(backoff.WithContext(b, ctx), r.MaxRetries)

	err := backoff.Retry(func() error {
		err := op(ctx)
		if err == nil || errors.Is(err, errStaleSnapshot) {
			return err
		}
		return backoff.Permanent(err)
	}, policy)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrTimeout
	case errors.Is(err, errStaleSnapshot):
		return ErrConcurrencyConflict
	default:
		return err
	}
}
