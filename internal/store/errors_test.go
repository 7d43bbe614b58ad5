package store

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "generic not found", err: ErrNotFound, expected: true},
		{name: "task not found", err: ErrTaskNotFound, expected: true},
		{name: "completion not found", err: ErrCompletionNotFound, expected: true},
		{name: "wrapped task not found", err: fmt.Errorf("get: %w", ErrTaskNotFound), expected: true},
		{name: "duplicate is not not-found", err: ErrDuplicate, expected: false},
		{name: "arbitrary error", err: errors.New("boom"), expected: false},
		{name: "nil error", err: nil, expected: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := IsNotFoundError(tc.err); got != tc.expected {
				t.Errorf("IsNotFoundError(%v) = %v, want %v", tc.err, got, tc.expected)
			}
		})
	}
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	inner := ErrDuplicate
	err := NewStoreError("recurring_task", "create", "id collision", inner)

	if !errors.Is(err, ErrDuplicate) {
		t.Error("StoreError should unwrap to the original error")
	}

	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatal("errors.As should find the StoreError")
	}
	if storeErr.Entity != "recurring_task" || storeErr.Operation != "create" {
		t.Errorf("context lost: %+v", storeErr)
	}

	// Without a wrapped error the message still reads cleanly.
	bare := NewStoreError("task_completion", "upsert", "nothing written", nil)
	if bare.Error() == "" {
		t.Error("expected a formatted message")
	}
}
