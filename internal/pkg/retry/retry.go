// Package retry provides a fixed-delay retry helper shared by the connection and fetch paths.
package retry

import (
	"context"
	"fmt"
	"time"
)

const (
	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 3
	// DefaultDelay is the pause between two attempts.
	DefaultDelay = 1000 * time.Millisecond
)

// Func is an operation that can be retried.
type Func func(ctx context.Context) error

// OnRetry is called after a failed attempt when another attempt will follow.
// attempt is 1-based, left is the number of retries still available.
type OnRetry func(attempt, left int, err error)

// Policy holds the retry budget. The delay is fixed between attempts, there is no backoff.
type Policy struct {
	MaxRetries int
	Delay      time.Duration
}

// DefaultPolicy returns a policy with three retries one second apart.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: DefaultMaxRetries,
		Delay:      DefaultDelay,
	}
}

// normalized clamps negative values to zero.
func (p Policy) normalized() Policy {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.Delay < 0 {
		p.Delay = 0
	}
	return p
}

// ExhaustedError is returned once every attempt of a policy has failed.
type ExhaustedError struct {
	Attempts int
	Err      error
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("exhausted %d attempts: %v", e.Attempts, e.Err)
}

// Unwrap returns the last underlying error.
func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Do runs fn until it succeeds or the policy is exhausted. fn is invoked at most
// MaxRetries+1 times. Context cancellation stops the loop, including during a delay.
func Do(ctx context.Context, policy Policy, fn Func, onRetry OnRetry) error {
	policy = policy.normalized()

	var lastErr error
	for attempt := 1; attempt <= policy.MaxRetries+1; attempt++ {
		if err := ctx.Err(); err != nil {
			return contextError(err, lastErr)
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		left := policy.MaxRetries + 1 - attempt
		if left == 0 {
			break
		}

		if onRetry != nil {
			onRetry(attempt, left, lastErr)
		}

		if err := sleep(ctx, policy.Delay); err != nil {
			return contextError(err, lastErr)
		}
	}

	return &ExhaustedError{
		Attempts: policy.MaxRetries + 1,
		Err:      lastErr,
	}
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, policy Policy, fn func(ctx context.Context) (T, error), onRetry OnRetry) (T, error) {
	var result T
	err := Do(ctx, policy, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	}, onRetry)
	return result, err
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
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

func contextError(ctxErr, lastErr error) error {
	if lastErr == nil {
		return fmt.Errorf("context error: %w", ctxErr)
	}
	return fmt.Errorf("context error: %w (last error: %v)", ctxErr, lastErr)
}
