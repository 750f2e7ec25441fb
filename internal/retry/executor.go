package retry

import (
	"context"
	"log/slog"
	"time"
)

// DefaultMaxRetries is the retry budget applied when a client does not
// set its own.
const DefaultMaxRetries = 2

// Executor wraps one fallible operation with bounded retries. Each client
// owns its own Executor value; nothing is shared across clients or calls.
type Executor struct {
	// MaxRetries is the number of retries after the initial attempt, so
	// attempt indices run 0..MaxRetries inclusive. Zero disables retrying.
	MaxRetries int

	// Logger, when set, records each backoff at debug level.
	Logger *slog.Logger
}

// Do runs op until it succeeds, fails with a non-transient error, or the
// retry budget is exhausted, and returns the last error. A fatal error is
// surfaced immediately without consuming the budget. The backoff sleep
// honors ctx cancellation.
func (e Executor) Do(ctx context.Context, op func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= e.MaxRetries; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == e.MaxRetries || !IsTransient(err) {
			break
		}

		delay := Delay(attempt, err)
		if e.Logger != nil {
			e.Logger.Debug("transient failure, backing off",
				"attempt", attempt,
				"delay", delay,
				"error", err)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}
