package endpoint

import (
	"errors"
	"fmt"
)

// Common errors for endpoint operations
var (
	// ErrUnknownEndpoint indicates a send to a name that is not registered
	ErrUnknownEndpoint = errors.New("unknown endpoint")

	// ErrTransportOpen indicates the transport could not open a handle
	ErrTransportOpen = errors.New("transport open failed")
)

// Error represents an endpoint error with additional context
type Error struct {
	Op       string // operation that caused the error
	Endpoint string // endpoint name if relevant
	Err      error  // underlying error
}

func (e *Error) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("endpoint %s %s: %v", e.Op, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("endpoint %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// newError creates a new Error
func newError(op, endpoint string, err error) *Error {
	return &Error{
		Op:       op,
		Endpoint: endpoint,
		Err:      err,
	}
}
