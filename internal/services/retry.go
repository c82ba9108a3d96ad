package services

import (
	"context"
	"errors"
	"time"
)

// retryableStatuses are the upstream statuses worth another attempt.
var retryableStatuses = map[int]bool{
	429: true,
	502: true,
	504: true,
}

// RetryPolicy runs an operation up to MaxAttempts times with doubling backoff.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	// Retryable decides whether a failed attempt may be repeated.
	// Defaults to IsRetryable.
	Retryable func(error) bool
	// Sleep waits between attempts. Defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
	// OnRetry is called before each backoff wait.
	OnRetry func(attempt int, wait time.Duration, err error)
}

// DefaultRetryPolicy is three attempts starting at a one second backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Second}
}

// Backoff is the wait after the given failed attempt (1-based).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return p.InitialBackoff << (attempt - 1)
}

// Run calls fn until it succeeds, returns a non-retryable error, or the
// attempts run out. The last error is returned as-is.
func (p RetryPolicy) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsRetryable
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt == maxAttempts || !retryable(err) {
			return err
		}

		wait := p.Backoff(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, wait, err)
		}
		if serr := sleep(ctx, wait); serr != nil {
			return serr
		}
	}
	return err
}

// IsRetryable treats 429/502/504 and transport failures as transient.
// Other HTTP statuses, malformed bodies and cancellation are final.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		return retryableStatuses[upstreamErr.Status]
	}
	if errors.Is(err, ErrMalformedResponse) {
		return false
	}
	return true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
