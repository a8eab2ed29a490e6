package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var (
	// ErrRateLimit marks an upstream throttling response. The next attempt waits MaxDelay.
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrMaxRetries is returned once every attempt has failed.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// RetryOptions configures exponential backoff for calls to remote services
// (the Postgres connect loop and the Sheets writer).
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

func (o RetryOptions) withDefaults() RetryOptions {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = 100 * time.Millisecond
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = 30 * time.Second
	}
	if o.Multiplier <= 0 {
		o.Multiplier = 2.0
	}
	return o
}

func (o RetryOptions) next(delay time.Duration) time.Duration {
	return min(time.Duration(float64(delay)*o.Multiplier), o.MaxDelay)
}

// RetryableError tags an error as worth retrying or not.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// Permanent wraps err so WithRetry gives up immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err, Retryable: false}
}

func stopRetrying(err error) bool {
	var re *RetryableError
	if errors.As(err, &re) && !re.Retryable {
		return true
	}
	return errors.Is(err, context.Canceled)
}

// WithRetry runs operation until it succeeds, returns a permanent error,
// attempts run out, or ctx is done.
func WithRetry(ctx context.Context, operation func() error, opts RetryOptions) error {
	opts = opts.withDefaults()
	delay := opts.InitialDelay

	var err error
	for attempt := 1; ; attempt++ {
		if err = operation(); err == nil {
			return nil
		}
		if stopRetrying(err) {
			return err
		}
		if attempt >= opts.MaxAttempts {
			return fmt.Errorf("%w after %d attempts: %v", ErrMaxRetries, attempt, err)
		}

		wait := delay
		if errors.Is(err, ErrRateLimit) {
			wait = opts.MaxDelay
		}
		slog.Warn("Remote call failed, backing off",
			"attempt", attempt,
			"max_attempts", opts.MaxAttempts,
			"wait", wait,
			"error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay = opts.next(delay)
	}
}
