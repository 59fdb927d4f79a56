package cache

import (
	"context"
	"errors"
	"time"
)

// ErrBackend is wrapped around transient backend failures (connection
// refused, timeouts).
var ErrBackend = errors.New("cache: backend unavailable")

// transientError marks a backend error that is worth another attempt.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

const retryAttempts = 3

// retryDelay is the first backoff delay; it doubles per attempt.
var retryDelay = 100 * time.Millisecond

// withRetry runs op until it succeeds, fails permanently, or the attempts
// run out. Only transient errors are retried.
func withRetry(ctx context.Context, op func() error) error {
	delay := retryDelay
	var err error
	for attempt := 1; ; attempt++ {
		if err = op(); err == nil || !isTransient(err) || attempt == retryAttempts {
			return err
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}
