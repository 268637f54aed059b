package httputil

import (
	"context"
	"errors"
	"time"
)

// maxDelay caps the backoff between attempts.
const maxDelay = 10 * time.Second

// RetryableError marks a failure as transient. [Retry] only tries again for
// errors that wrap one.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry calls fn until it succeeds, returns a permanent error, or has run
// attempts times. The wait starts at delay and doubles up to maxDelay.
// A done ctx stops the loop with ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for n := 1; ; n++ {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		err = fn()
		if err == nil || !IsRetryable(err) || n >= attempts {
			return err
		}
		if werr := wait(ctx, delay); werr != nil {
			return werr
		}
		delay = min(delay*2, maxDelay)
	}
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsRetryable reports whether err is marked for retry.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}
