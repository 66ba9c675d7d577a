// Package retry implements a small exponential backoff policy used when
// acquiring store connections.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrInvalidMaxAttempts is returned when a Policy allows no attempts at all.
var ErrInvalidMaxAttempts = errors.New("retry: max attempts must be > 0")

// Policy describes how many times an operation is attempted and how long to
// wait between attempts. The delay before attempt n+1 is
// BaseDelay * Multiplier^(n-1).
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64

	// Logger receives one record per failed attempt. nil means slog.Default().
	Logger *slog.Logger
}

// Default returns the policy used for connection acquisition: three total
// attempts, starting at one second and doubling.
func Default() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Second, Multiplier: 2}
}

// sleep is a test seam; production waits on a timer and honors ctx.
var sleep = func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Delay returns the wait that follows the given failed attempt (1-based).
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	m := p.Multiplier
	if m <= 0 {
		m = 2
	}
	d := float64(p.BaseDelay)
	for i := 1; i < attempt; i++ {
		d *= m
	}
	return time.Duration(d)
}

// Do runs op until it succeeds or the policy is exhausted. It returns the
// number of attempts made and the last error. No sleep follows the final
// attempt. Every error is treated as retryable.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context, attempt int) error) (int, error) {
	if p.MaxAttempts <= 0 {
		return 0, ErrInvalidMaxAttempts
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, err
		}

		lastErr = op(ctx, attempt)
		if lastErr == nil {
			if attempt > 1 {
				logger.Info("operation succeeded after retry", "attempt", attempt)
			}
			return attempt, nil
		}

		if attempt == p.MaxAttempts {
			logger.Warn("operation failed, giving up",
				"attempt", attempt, "max_attempts", p.MaxAttempts, "err", lastErr)
			break
		}

		delay := p.Delay(attempt)
		logger.Warn("operation failed, will retry",
			"attempt", attempt, "max_attempts", p.MaxAttempts, "backoff", delay, "err", lastErr)
		if err := sleep(ctx, delay); err != nil {
			return attempt, err
		}
	}
	return p.MaxAttempts, fmt.Errorf("after %d attempts: %w", p.MaxAttempts, lastErr)
}
