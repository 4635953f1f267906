package tutor

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// maxRetryDelay caps the exponential wait between two attempts.
const maxRetryDelay = 5 * time.Second

// RetryConfig controls how many times a failed collaborator call is repeated.
// Context cancellation and deadline errors are never retried.
//
// Backoff is the wait before the second attempt; later waits grow
// exponentially with jitter up to maxRetryDelay. Zero retries immediately.
type RetryConfig struct {
	MaxAttempts int
	Backoff     time.Duration
	ShouldRetry func(error) bool
}

// DefaultRetryConfig makes two attempts per call, half a second apart.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 2, Backoff: 500 * time.Millisecond}
}

func (c RetryConfig) newBackOff() backoff.BackOff {
	if c.Backoff <= 0 {
		return &backoff.ZeroBackOff{}
	}
	return backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(c.Backoff),
		backoff.WithMaxInterval(maxRetryDelay),
		backoff.WithMaxElapsedTime(0),
	)
}

func withRetry[T any](ctx context.Context, cfg RetryConfig, call func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delays := cfg.newBackOff()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := call(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
		if attempt == attempts || !shouldRetry(ctx, cfg, err) {
			break
		}
		if err := wait(ctx, delays.NextBackOff()); err != nil {
			return zero, errors.Join(err, lastErr)
		}
	}
	return zero, lastErr
}

// wait sleeps for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
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

func shouldRetry(ctx context.Context, cfg RetryConfig, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if cfg.ShouldRetry == nil {
		return true
	}
	return cfg.ShouldRetry(err)
}
