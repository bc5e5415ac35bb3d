// Package clients provides the instrumented HTTP client the hosted store adapters share.
package clients

import (
	"errors"
	"fmt"
)

// Client errors represent transport failures. Store adapters translate them to
// domain errors; they never reach the HTTP edge unwrapped.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open and the call was not attempted.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last transport error once every attempt failed.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// ServerError is an intermediate 5xx result that triggers another attempt.
// The final attempt's response is returned to the caller instead.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: %d", e.StatusCode)
}
