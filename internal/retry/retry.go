// Package retry runs outbound calls under a bounded exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Policy describes how many times an operation is attempted and how long to
// wait between attempts. The delay before attempt n+1 is BaseDelay*2^(n-1),
// clamped to [MinDelay, MaxDelay], unless RetryAfter supplies a server wait.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MinDelay    time.Duration
	MaxDelay    time.Duration

	// Retryable reports whether err is worth another attempt. Nil retries
	// every error except context cancellation.
	Retryable func(err error) bool
	// RetryAfter extracts a server-requested wait from err.
	RetryAfter func(err error) (time.Duration, bool)
	// Sleep waits for d or until ctx is done. Nil uses a timer.
	Sleep  func(ctx context.Context, d time.Duration) error
	Logger *slog.Logger
}

// Default is five attempts waiting 4s, 4s, 4s, 8s between them.
func Default() Policy {
	return Policy{
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		MinDelay:    4 * time.Second,
		MaxDelay:    10 * time.Second,
	}
}

// Error is returned once every attempt has failed.
type Error struct {
	Op       string
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: gave up after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Delay returns the backoff before the attempt following attempt (1-based).
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			break
		}
	}
	if d < p.MinDelay {
		d = p.MinDelay
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Do calls fn until it succeeds, returns a non-retryable error, ctx ends or
// MaxAttempts is reached.
func (p Policy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	_, err := Do(ctx, p, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Do is the value-returning form of Policy.Do.
func Do[T any](ctx context.Context, p Policy, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if !p.retryable(err) {
			return zero, err
		}
		if attempt >= attempts {
			return zero, &Error{Op: op, Attempts: attempt, Err: lastErr}
		}

		wait := p.Delay(attempt)
		if p.RetryAfter != nil {
			if d, ok := p.RetryAfter(err); ok && d > 0 {
				wait = d
			}
		}
		p.logger().Warn("retrying",
			"op", op,
			"attempt", attempt,
			"wait", wait,
			"err", err,
		)
		if err := p.sleep(ctx, wait); err != nil {
			return zero, err
		}
	}
}

func (p Policy) retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if p.Retryable == nil {
		return true
	}
	return p.Retryable(err)
}

func (p Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p Policy) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// With returns a copy of p using the given predicate.
func (p Policy) With(retryable func(error) bool) Policy {
	p.Retryable = retryable
	return p
}
