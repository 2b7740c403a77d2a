package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// StatusError represents a non-2xx response from the server
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server error (%d)", e.StatusCode)
}

// IsAuthError reports whether err is a 401 response. An auth failure must
// trigger a single reauthentication flow, never a blind retry.
func IsAuthError(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized
}

// IsTerminalError reports whether err is a 4xx response other than 401.
// The request is malformed or rejected; retrying cannot succeed.
func IsTerminalError(err error) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 &&
		statusErr.StatusCode != http.StatusUnauthorized
}

// IsTransientError reports whether err is worth retrying with backoff:
// a 5xx response, a timeout, or any transport-level failure.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	// Remaining transport errors (connection refused, DNS, dropped conn)
	// are treated as transient as well
	return !errors.Is(err, context.Canceled)
}
