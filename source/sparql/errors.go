package sparql

import (
	"errors"
	"fmt"
)

// Error types for classifying endpoint failures.

// NetworkError represents a failure to reach the endpoint or to read the
// full response: DNS, TLS, refused connections, timeouts, truncated or
// oversized bodies.
type NetworkError struct {
	Endpoint string
	err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("query %s: %v", e.Endpoint, e.err)
}

func (e *NetworkError) Unwrap() error {
	return e.err
}

// NewNetworkError wraps err as a network failure against endpoint.
func NewNetworkError(endpoint string, err error) error {
	return &NetworkError{Endpoint: endpoint, err: err}
}

// StatusError represents a response outside the 2xx range. The body is kept
// only as a short excerpt for diagnostics.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Status     string
	Excerpt    string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("query %s: HTTP %s", e.Endpoint, e.Status)
	if e.Excerpt != "" {
		msg += ": " + e.Excerpt
	}
	return msg
}

// IsNetworkError returns true if the error is a network failure.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsStatusError returns true if the endpoint answered with a non-2xx status.
func IsStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}
