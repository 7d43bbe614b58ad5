package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/HillyAttic/cadence-api/internal/domain"
	"github.com/HillyAttic/cadence-api/internal/service"
	"github.com/HillyAttic/cadence-api/internal/service/auth"
	"github.com/HillyAttic/cadence-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "invalid token", err: auth.ErrInvalidToken, expected: http.StatusUnauthorized},
		{name: "expired token", err: auth.ErrExpiredToken, expected: http.StatusUnauthorized},
		{name: "task not found", err: store.ErrTaskNotFound, expected: http.StatusNotFound},
		{name: "wrapped not found", err: fmt.Errorf("resolving: %w", store.ErrTaskNotFound), expected: http.StatusNotFound},
		{name: "invalid transition", err: domain.ErrInvalidTransition, expected: http.StatusConflict},
		{
			name: "transition inside validation error",
			err: domain.NewValidationError("status",
				"only an active task can be paused", domain.ErrInvalidTransition),
			expected: http.StatusConflict,
		},
		{name: "stopped task", err: service.ErrTaskStopped, expected: http.StatusConflict},
		{name: "validation", err: domain.ErrValidation, expected: http.StatusBadRequest},
		{name: "invalid pattern", err: domain.ErrInvalidPattern, expected: http.StatusBadRequest},
		{name: "client not in contacts", err: domain.ErrClientNotInContacts, expected: http.StatusBadRequest},
		{name: "invalid delete option", err: service.ErrInvalidDeleteOption, expected: http.StatusBadRequest},
		{name: "empty batch", err: service.ErrEmptyBatch, expected: http.StatusBadRequest},
		{name: "unknown error", err: errors.New("boom"), expected: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	t.Run("lifecycle violation keeps the domain explanation", func(t *testing.T) {
		t.Parallel()
		err := domain.NewValidationError("status",
			"only a paused task can be resumed, current status is stopped",
			domain.ErrInvalidTransition)
		message := GetSafeErrorMessage(err)
		assert.Contains(t, message, "only a paused task can be resumed")
	})

	t.Run("validation error surfaces the field", func(t *testing.T) {
		t.Parallel()
		err := domain.NewValidationError("start_date", "must be formatted as YYYY-MM-DD", domain.ErrValidation)
		assert.Equal(t, "Invalid start_date: must be formatted as YYYY-MM-DD", GetSafeErrorMessage(err))
	})

	t.Run("unknown error is generic", func(t *testing.T) {
		t.Parallel()
		message := GetSafeErrorMessage(errors.New("pq: connection refused to db host 10.0.0.3"))
		assert.Equal(t, "An unexpected error occurred", message)
		assert.NotContains(t, message, "10.0.0.3")
	})

	t.Run("nil error is generic", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	})
}
