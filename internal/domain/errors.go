// Package domain defines the core business entities and errors for the
// recurring-task engine.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition is returned when a lifecycle transition is not
	// permitted from the task's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidPriority is returned when a task priority is not valid.
	ErrInvalidPriority = errors.New("invalid task priority")

	// ErrInvalidPattern is returned when a recurrence pattern is not valid.
	ErrInvalidPattern = errors.New("invalid recurrence pattern")

	// ErrInvalidStatus is returned when a task status is not valid.
	ErrInvalidStatus = errors.New("invalid task status")

	// ErrClientNotInContacts is returned when a team member mapping
	// references a client outside the task's contact list.
	ErrClientNotInContacts = errors.New("mapped client is not a task contact")

	// ErrInvalidPeriodKey is returned when a period key is malformed or
	// does not align with the task's recurrence pattern.
	ErrInvalidPeriodKey = errors.New("invalid period key")
)

// ValidationError carries the offending field alongside the underlying
// validation failure so callers can render a precise user-facing message.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError for the given field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
