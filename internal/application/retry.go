package application

import (
	"context"
	"time"
)

type RetryPolicy struct {
	Limit     int
	BaseDelay time.Duration
}

// Delay returns the wait after the given zero-based failed attempt: 2^attempt * BaseDelay.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return p.BaseDelay * time.Duration(int64(1)<<uint(attempt))
}

type sleepFunc func(ctx context.Context, d time.Duration) error

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

type retryObserver func(attempt int, wait time.Duration, err error)

// retry runs op at most policy.Limit+1 times and returns the number of attempts made.
func retry[T any](ctx context.Context, policy RetryPolicy, sleep sleepFunc, onRetry retryObserver, op func(context.Context) (T, error)) (T, int, error) {
	var zero T
	limit := max(policy.Limit, 0)

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= limit; attempt++ {
		attempts++
		value, err := op(ctx)
		if err == nil {
			return value, attempts, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == limit {
			break
		}

		wait := policy.Delay(attempt)
		if onRetry != nil {
			onRetry(attempt+1, wait, err)
		}
		if err := sleep(ctx, wait); err != nil {
			break
		}
	}

	return zero, attempts, lastErr
}
