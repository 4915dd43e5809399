package resilience

import (
	"context"
	"database/sql/driver"
	"errors"
	"math/rand"
	"net"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// RetryPolicy defines the retry behavior for storage operations.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the initial call.
	MaxRetries int

	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration

	// MaxDelay caps the delay between retries.
	MaxDelay time.Duration

	UseJitter bool

	// Retryable decides which errors are retried. Nil means IsTransient.
	Retryable func(error) bool
}

// DefaultPolicy returns the policy repositories use unless configured otherwise.
func DefaultPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 2,
		BaseDelay:  50 * time.Millisecond,
		MaxDelay:   time.Second,
		UseJitter:  true,
	}
}

// Retry runs fn until it succeeds, returns a non-retryable error, the
// context ends, or the retries are exhausted. The last error is returned.
func Retry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	retryable := policy.Retryable
	if retryable == nil {
		retryable = IsTransient
	}

	var lastErr error
	maxAttempts := policy.MaxRetries + 1

	for attempt := range maxAttempts {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) {
			return err
		}

		if attempt < maxAttempts-1 {
			delay := CalculateBackoff(attempt, policy.BaseDelay, policy.MaxDelay, policy.UseJitter)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return lastErr
}

// CalculateBackoff returns baseDelay * 2^attempt capped at maxDelay,
// optionally scaled by a random factor in [0.5, 1.5).
func CalculateBackoff(attempt int, baseDelay, maxDelay time.Duration, useJitter bool) time.Duration {
	if baseDelay <= 0 {
		baseDelay = 50 * time.Millisecond
	}
	if maxDelay <= 0 {
		maxDelay = time.Second
	}

	delay := baseDelay
	for range attempt {
		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
			break
		}
	}

	if useJitter {
		delay = time.Duration(float64(delay) * (0.5 + rand.Float64()))
	}

	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

// IsTransient reports whether err is a connection-level storage failure
// that may succeed on a second attempt. Context errors never are.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// connection exceptions and serialization failures
		return pgErr.Code == "40001" || pgErr.Code == "40P01" || len(pgErr.Code) == 5 && pgErr.Code[:2] == "08"
	}

	return pgconn.SafeToRetry(err)
}
