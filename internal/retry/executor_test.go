package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fastTransient is a transient error whose Retry-After hint keeps test
// backoffs in the milliseconds.
func fastTransient(msg string) error {
	return &apiErr{code: 503, msg: msg, retryAfter: "0.01"}
}

func TestExecutor_FirstTrySuccess(t *testing.T) {
	calls := 0
	e := Executor{MaxRetries: 2}

	err := e.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("operation invoked %d times, want 1", calls)
	}
}

func TestExecutor_TransientThenSuccess(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		wantCalls int
	}{
		{"one transient failure", 1, 2},
		{"two transient failures", 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			e := Executor{MaxRetries: 2}

			err := e.Do(context.Background(), func(ctx context.Context) error {
				calls++
				if calls <= tt.failures {
					return fastTransient("overloaded")
				}
				return nil
			})

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if calls != tt.wantCalls {
				t.Errorf("operation invoked %d times, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestExecutor_ExhaustsBudget(t *testing.T) {
	calls := 0
	e := Executor{MaxRetries: 2}
	last := fastTransient("connection reset")

	err := e.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return last
	})

	if calls != 3 {
		t.Errorf("operation invoked %d times, want 3", calls)
	}
	if !errors.Is(err, last) {
		t.Errorf("surfaced error = %v, want last attempt's error", err)
	}
}

func TestExecutor_FatalErrorNoRetry(t *testing.T) {
	calls := 0
	e := Executor{MaxRetries: 5}
	fatal := &apiErr{code: 401, msg: "API error (status 401): invalid x-api-key"}

	err := e.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return fatal
	})

	if calls != 1 {
		t.Errorf("operation invoked %d times, want 1", calls)
	}
	if !errors.Is(err, fatal) {
		t.Errorf("surfaced error = %v, want the fatal error", err)
	}
}

func TestExecutor_ZeroRetries(t *testing.T) {
	calls := 0
	e := Executor{MaxRetries: 0}

	err := e.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return fastTransient("timeout")
	})

	if calls != 1 {
		t.Errorf("operation invoked %d times, want 1", calls)
	}
	if err == nil {
		t.Error("expected the transient error to surface with no budget")
	}
}

func TestExecutor_CancelledDuringBackoff(t *testing.T) {
	calls := 0
	e := Executor{MaxRetries: 2}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := e.Do(ctx, func(ctx context.Context) error {
		calls++
		// Hint of 5s would stall well past the deadline.
		return &apiErr{code: 429, msg: "rate limit", retryAfter: "5"}
	})

	if calls != 1 {
		t.Errorf("operation invoked %d times, want 1", calls)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("cancellation took %v, backoff did not honor ctx", elapsed)
	}
}
