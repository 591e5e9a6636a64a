package provider

import (
	"context"
	"fmt"
	"time"
)

const (
	// DefaultMaxAttempts bounds how often a retryable call is attempted in total.
	DefaultMaxAttempts = 3
	// DefaultBackoffStep is multiplied by the attempt number for linear backoff.
	DefaultBackoffStep = time.Second
)

// RetryPolicy is a value object describing how retryable provider calls are
// re-attempted: total attempt budget, linear backoff step and the predicate
// deciding which errors are worth retrying. It is independent of any
// transport so it can be tested and swapped on its own.
type RetryPolicy struct {
	MaxAttempts int
	BackoffStep time.Duration
	Retryable   func(error) bool
}

// DefaultRetryPolicy returns the policy used when configuration does not
// override it. The retryable predicate must still be supplied by the
// transport, since error classification is transport-specific.
func DefaultRetryPolicy(retryable func(error) bool) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		BackoffStep: DefaultBackoffStep,
		Retryable:   retryable,
	}
}

// Backoff returns the delay before the given attempt (1-based): step × attempt.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return p.BackoffStep * time.Duration(attempt)
}

// Do runs fn up to MaxAttempts times, sleeping Backoff(n) after the n-th
// failed attempt. Non-retryable errors are returned immediately; once the
// budget is spent the last error is wrapped with ErrExhausted.
func (p RetryPolicy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		lastErr = err

		if p.Retryable == nil || !p.Retryable(err) {
			return fmt.Errorf("%s: %w", op, err)
		}

		if attempt == attempts {
			break
		}

		if err := WaitFor(ctx, p.Backoff(attempt)); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return fmt.Errorf("%s after %d attempts: %w: %w", op, attempts, ErrExhausted, lastErr)
}

// WaitFor blocks for the given duration or until the context is done,
// whichever comes first.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
