package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/HillyAttic/cadence-api/internal/domain"
	"github.com/HillyAttic/cadence-api/internal/service"
	"github.com/HillyAttic/cadence-api/internal/service/auth"
	"github.com/HillyAttic/cadence-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, store.ErrCompletionNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Lifecycle violations
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, service.ErrTaskStopped):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidPattern),
		errors.Is(err, domain.ErrInvalidPriority),
		errors.Is(err, domain.ErrInvalidPeriodKey),
		errors.Is(err, domain.ErrClientNotInContacts),
		errors.Is(err, service.ErrInvalidDeleteOption),
		errors.Is(err, service.ErrEmptyBatch),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	// Not found errors
	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrCompletionNotFound),
		errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	// Lifecycle violations keep the domain explanation: the caller needs
	// to know why the action was rejected.
	case errors.Is(err, domain.ErrInvalidTransition):
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			return "Action not permitted: " + validationErr.Message
		}
		return "Action not permitted in the task's current status"

	case errors.Is(err, service.ErrTaskStopped):
		return "Task is stopped and accepts no new completions"

	case errors.Is(err, service.ErrInvalidDeleteOption):
		return "Delete option must be \"stop\" or \"all\""

	case errors.Is(err, service.ErrEmptyBatch):
		return "Completion batch is empty"

	// Validation errors surface the offending field
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrClientNotInContacts),
		errors.Is(err, domain.ErrInvalidPattern),
		errors.Is(err, domain.ErrInvalidPriority),
		errors.Is(err, domain.ErrInvalidPeriodKey):
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			return fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)
		}
		return "Invalid request data"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	// Default case for unknown errors
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validator
// struct-tag errors and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example format: "Key: 'CreateTaskRequest.Title' Error:Field validation for 'Title' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "uuid":
		return "invalid identifier"
	default:
		return "validation failed"
	}
}
