package gateway

import (
	"fmt"
	"time"
)

// TimeoutError reports a fetch that exceeded the configured timeout.
type TimeoutError struct {
	URL     string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out after %ds: %s", int(e.Timeout.Seconds()), e.URL)
}

// StatusError reports an upstream HTTP error status. Body holds the first
// 200 bytes of the response for diagnostics.
type StatusError struct {
	Code int
	URL  string
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body)
}

// TransportError reports a network-level failure (DNS, connection refused,
// TLS) before any HTTP status was received.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
