package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// retryClient re-attempts transient generation failures a bounded number of
// times. Rerunning the pipeline remains the primary recovery mechanism; this
// wrapper is opt-in via llm.max_attempts and never alters what the caller
// persists.
type retryClient struct {
	inner    Client
	attempts int
	wait     time.Duration
}

// WithRetry wraps inner with up to attempts total tries per Generate call.
// Only ErrUnavailable, ErrTimeout, and ErrEmpty are retried; other errors
// return immediately.
func WithRetry(inner Client, attempts int, wait time.Duration) Client {
	return &retryClient{inner: inner, attempts: attempts, wait: wait}
}

func (r *retryClient) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= r.attempts; attempt++ {
		text, err := r.inner.Generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !retryable(err) || attempt == r.attempts {
			break
		}

		slog.Warn("generation attempt failed, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", r.attempts),
			slog.String("error", err.Error()),
		)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(r.wait):
		}
	}

	return "", lastErr
}

func retryable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrTimeout) || errors.Is(err, ErrEmpty)
}
