package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for read failures.
var (
	ErrNotFound    = errors.New("upstream: not found")
	ErrBadRequest  = errors.New("upstream: bad request")
	ErrRateLimited = errors.New("upstream: rate limited")
	ErrServer      = errors.New("upstream: server error")
	ErrBadPayload  = errors.New("upstream: malformed payload")
)

// statusError maps a read response status onto an error; any 2xx maps to nil.
func statusError(status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusBadRequest:
		return ErrBadRequest
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status >= 500:
		return fmt.Errorf("%w: status %d", ErrServer, status)
	default:
		return fmt.Errorf("unexpected status %d: %s", status, truncate(string(body), 200))
	}
}

// IsErrorStatus reports whether a write response status is an HTTP error-class response (>= 400).
func IsErrorStatus(status int) bool {
	return status >= http.StatusBadRequest
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
