package retry

import (
	"errors"
	"strings"
)

// StatusCoder is implemented by errors that carry the HTTP status code of
// a failed backend call.
type StatusCoder interface {
	HTTPStatus() int
}

// transientStatuses are HTTP status codes worth retrying: rate limiting,
// server faults, and Anthropic's 529 overloaded code.
var transientStatuses = map[int]bool{
	429: true,
	500: true,
	502: true,
	503: true,
	529: true,
}

// transientPatterns are matched as substrings against the lower-cased
// error text. They cover network-level failures and the overload wording
// used by the major LLM APIs.
var transientPatterns = []string{
	"econnrefused",
	"connection refused",
	"econnreset",
	"connection reset",
	"etimedout",
	"timed out",
	"timeout",
	"enotfound",
	"host not found",
	"rate_limit",
	"rate limit",
	"overloaded",
	"capacity",
	"network",
	"socket hang up",
	"fetch failed",
	"service unavailable",
	"internal server error",
}

// IsTransient reports whether err is likely to succeed on retry.
// Auth failures, bad requests, and policy violations classify as fatal.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var sc StatusCoder
	if errors.As(err, &sc) && transientStatuses[sc.HTTPStatus()] {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}

	return false
}
