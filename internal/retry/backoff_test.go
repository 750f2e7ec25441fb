package retry

import (
	"errors"
	"testing"
	"time"
)

func TestDelay_Exponential(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 10 * time.Second},
		{10, 10 * time.Second},
	}

	for _, tt := range tests {
		if got := Delay(tt.attempt, errors.New("timeout")); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestDelay_ServerHint(t *testing.T) {
	tests := []struct {
		name string
		hint string
		want time.Duration
	}{
		{"valid seconds", "5", 5 * time.Second},
		{"fractional seconds", "2.5", 2500 * time.Millisecond},
		{"padded", " 30 ", 30 * time.Second},
		{"too large falls back", "120", 1 * time.Second},
		{"non-numeric falls back", "abc", 1 * time.Second},
		{"zero falls back", "0", 1 * time.Second},
		{"negative falls back", "-3", 1 * time.Second},
		{"empty falls back", "", 1 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &apiErr{code: 429, msg: "rate_limit_error", retryAfter: tt.hint}
			if got := Delay(0, err); got != tt.want {
				t.Errorf("Delay(0, hint=%q) = %v, want %v", tt.hint, got, tt.want)
			}
		})
	}
}

func TestDelay_HintIgnoresAttempt(t *testing.T) {
	// A valid hint wins regardless of how deep into the retry loop we are.
	err := &apiErr{code: 503, msg: "service unavailable", retryAfter: "7"}
	if got := Delay(3, err); got != 7*time.Second {
		t.Errorf("Delay(3, hint=7) = %v, want 7s", got)
	}
}
