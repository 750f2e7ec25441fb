package retry

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	baseDelay = 1 * time.Second
	maxDelay  = 10 * time.Second

	// maxHintSeconds caps server-supplied retry hints; anything larger is
	// treated as bogus and falls back to exponential backoff.
	maxHintSeconds = 60
)

// RetryHinter is implemented by errors that carry a server-supplied
// "seconds to wait" hint, such as a Retry-After header value.
type RetryHinter interface {
	RetryAfterHint() string
}

// Delay returns how long to wait after a failed attempt before the next
// one. A valid server hint wins; otherwise the delay doubles per attempt
// from 1s, capped at 10s. Invalid hints fall back silently.
func Delay(attempt int, err error) time.Duration {
	var rh RetryHinter
	if errors.As(err, &rh) {
		hint := strings.TrimSpace(rh.RetryAfterHint())
		if secs, perr := strconv.ParseFloat(hint, 64); perr == nil && secs > 0 && secs <= maxHintSeconds {
			return time.Duration(secs * float64(time.Second))
		}
	}

	if attempt >= 4 {
		return maxDelay
	}
	d := baseDelay << uint(attempt)
	if d > maxDelay {
		d = maxDelay
	}
	return d
}
