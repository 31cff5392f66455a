package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/Veraticus/clash-cost/internal/service"
)

// ErrMaxRetries indicates that all retry attempts have been exhausted.
var ErrMaxRetries = errors.New("max retries exceeded")

// RetryableError wraps an error with retry-specific metadata.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
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

// BackoffDelay returns the wait after the given zero-based attempt.
func BackoffDelay(opts service.RetryOptions, attempt int) time.Duration {
	delay := time.Duration(float64(opts.InitialDelay) * math.Pow(opts.Multiplier, float64(attempt)))
	if opts.MaxDelay > 0 && delay > opts.MaxDelay {
		delay = opts.MaxDelay
	}
	return delay
}

// WithRetry executes an operation with configurable retry behavior.
//
// A non-retryable error on the first attempt is returned unchanged. Any other
// failure is retried until MaxAttempts is reached, waiting
// InitialDelay × Multiplier^attempt between attempts; the last error is then
// returned wrapped in ErrMaxRetries.
func WithRetry(ctx context.Context, operation func(attempt int) error, opts service.RetryOptions) error {
	opts = normalizeRetryOptions(opts)

	var lastErr error
	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		err := operation(attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) && attempt == 0 {
			return err
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if attempt == opts.MaxAttempts-1 {
			break
		}

		delay := BackoffDelay(opts, attempt)
		slog.Warn("Operation failed, retrying",
			"attempt", attempt+1,
			"max_attempts", opts.MaxAttempts,
			"delay", delay,
			"error", err)

		if sleepErr := opts.Sleep(ctx, delay); sleepErr != nil {
			return sleepErr
		}
	}

	if opts.MaxAttempts == 1 {
		return lastErr
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, opts.MaxAttempts, lastErr)
}

func normalizeRetryOptions(opts service.RetryOptions) service.RetryOptions {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = time.Second
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 30 * time.Second
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = 2.0
	}
	if opts.Sleep == nil {
		opts.Sleep = SleepContext
	}
	return opts
}
