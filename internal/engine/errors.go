package engine

import (
	"fmt"
)

// Error is a failure reported by an engine provider.
type Error struct {
	Provider string
	// Status is the upstream HTTP status or process exit code, zero when unknown.
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s engine error (status %d): %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s engine error: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error for provider.
func NewError(provider string, status int, err error) *Error {
	return &Error{Provider: provider, Status: status, Err: err}
}
