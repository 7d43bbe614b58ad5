package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewTaskCompletion(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()
	clientID := uuid.New()

	completion, err := NewTaskCompletion(taskID, clientID, "2025-07")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if completion.IsCompleted {
		t.Error("new completion must start incomplete")
	}
	if completion.CompletedBy != nil || completion.CompletedAt != nil {
		t.Error("new completion must carry no audit trail")
	}
}

func TestNewTaskCompletionValidation(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()
	clientID := uuid.New()

	testCases := []struct {
		name        string
		taskID      uuid.UUID
		clientID    uuid.UUID
		periodKey   string
		expectedErr error
	}{
		{
			name:        "nil task ID rejected",
			taskID:      uuid.Nil,
			clientID:    clientID,
			periodKey:   "2025-07",
			expectedErr: ErrCompletionTaskIDEmpty,
		},
		{
			name:        "nil client ID rejected",
			taskID:      taskID,
			clientID:    uuid.Nil,
			periodKey:   "2025-07",
			expectedErr: ErrCompletionClientIDEmpty,
		},
		{
			name:        "empty period key rejected",
			taskID:      taskID,
			clientID:    clientID,
			periodKey:   "",
			expectedErr: ErrCompletionPeriodKeyEmpty,
		},
		{
			name:        "malformed period key rejected",
			taskID:      taskID,
			clientID:    clientID,
			periodKey:   "July 2025",
			expectedErr: ErrInvalidPeriodKey,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewTaskCompletion(tc.taskID, tc.clientID, tc.periodKey)
			if !errors.Is(err, tc.expectedErr) {
				t.Errorf("got error %v, want %v", err, tc.expectedErr)
			}
		})
	}
}

func TestSetCompletedAuditTrail(t *testing.T) {
	t.Parallel()

	completion, err := NewTaskCompletion(uuid.New(), uuid.New(), "2025-07")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	firstActor := uuid.New()
	firstTime := time.Date(2025, time.July, 10, 9, 0, 0, 0, time.UTC)

	// Transition to completed sets the audit fields.
	completion.SetCompleted(true, firstActor, firstTime)
	if !completion.IsCompleted {
		t.Fatal("expected completed state")
	}
	if completion.CompletedBy == nil || *completion.CompletedBy != firstActor {
		t.Error("CompletedBy should record the first actor")
	}
	if completion.CompletedAt == nil || !completion.CompletedAt.Equal(firstTime) {
		t.Error("CompletedAt should record the transition time")
	}

	// Re-completing keeps the original audit trail.
	secondActor := uuid.New()
	secondTime := firstTime.Add(48 * time.Hour)
	completion.SetCompleted(true, secondActor, secondTime)
	if *completion.CompletedBy != firstActor {
		t.Error("re-completing must not overwrite the original actor")
	}
	if !completion.CompletedAt.Equal(firstTime) {
		t.Error("re-completing must not overwrite the original time")
	}
	if !completion.UpdatedAt.Equal(secondTime) {
		t.Error("UpdatedAt should still advance")
	}

	// Undoing clears it.
	completion.SetCompleted(false, secondActor, secondTime)
	if completion.IsCompleted {
		t.Error("expected incomplete state")
	}
	if completion.CompletedBy != nil || completion.CompletedAt != nil {
		t.Error("undo must clear the audit trail")
	}
}

func TestComputeProgress(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		completed  int
		total      int
		percentage int
	}{
		{name: "three of four", completed: 3, total: 4, percentage: 75},
		{name: "none done", completed: 0, total: 12, percentage: 0},
		{name: "all done", completed: 12, total: 12, percentage: 100},
		{name: "rounds to nearest", completed: 1, total: 3, percentage: 33},
		{name: "rounds up past half", completed: 2, total: 3, percentage: 67},
		{name: "zero total guards division", completed: 0, total: 0, percentage: 0},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := ComputeProgress(tc.completed, tc.total)
			if got.Percentage != tc.percentage {
				t.Errorf("Percentage = %d, want %d", got.Percentage, tc.percentage)
			}
			if got.Completed != tc.completed || got.Total != tc.total {
				t.Errorf("counters not carried through: %+v", got)
			}
		})
	}
}
