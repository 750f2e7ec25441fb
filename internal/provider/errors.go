package provider

import "fmt"

// APIError is a non-2xx response from a backend API. It carries the
// status code for the transient classifier and the raw Retry-After header
// for the backoff policy, so neither has to parse error text.
type APIError struct {
	StatusCode int
	RetryAfter string // raw Retry-After header value, seconds
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// HTTPStatus implements retry.StatusCoder.
func (e *APIError) HTTPStatus() int { return e.StatusCode }

// RetryAfterHint implements retry.RetryHinter.
func (e *APIError) RetryAfterHint() string { return e.RetryAfter }
