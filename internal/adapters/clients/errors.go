// Package clients is the outbound HTTP client shared by the remote adapters.
// It retries transient failures, trips a circuit breaker on repeated ones,
// and emits OpenTelemetry spans and metrics for every call.
package clients

import (
	"errors"
	"fmt"
)

// Client errors are infrastructure failures. The acl package turns them
// into domain errors before they reach the application layer.
var (
	// ErrCircuitOpen is returned without contacting the remote while the breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last failure once every attempt is spent.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// retryableStatusError marks a response status worth another attempt.
type retryableStatusError struct {
	status int
}

func (e *retryableStatusError) Error() string {
	return fmt.Sprintf("remote returned status %d", e.status)
}
