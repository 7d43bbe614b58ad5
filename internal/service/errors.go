// Package service provides the application-level orchestration for the
// recurring-task engine. The service layer owns the task record and its
// completion rows; handlers and background collaborators go through it
// rather than touching the stores directly.
package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers check these with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrInvalidDeleteOption indicates the caller did not disambiguate
	// between the reversible "stop" and the destructive "all" deletion.
	// Deletion never defaults to one of the two.
	ErrInvalidDeleteOption = errors.New("delete option must be \"stop\" or \"all\"")

	// ErrTaskStopped indicates a write was attempted against a stopped
	// task. Stopped tasks are terminal for generation and accept no new
	// completions, though their history stays readable.
	ErrTaskStopped = errors.New("task is stopped")

	// ErrEmptyBatch indicates a bulk completion save carried no entries.
	ErrEmptyBatch = errors.New("completion batch is empty")
)
