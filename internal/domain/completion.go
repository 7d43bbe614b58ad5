package domain

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/HillyAttic/cadence-api/internal/domain/recurrence"
)

// Completion-specific validation errors
var (
	// ErrCompletionTaskIDEmpty is returned when a completion's task ID is empty.
	ErrCompletionTaskIDEmpty = errors.New("completion task ID cannot be empty")

	// ErrCompletionClientIDEmpty is returned when a completion's client ID is empty.
	ErrCompletionClientIDEmpty = errors.New("completion client ID cannot be empty")

	// ErrCompletionPeriodKeyEmpty is returned when a completion has no period key.
	ErrCompletionPeriodKeyEmpty = errors.New("completion period key cannot be empty")
)

// TaskCompletion is one row in the per-client, per-period completion
// ledger. Identity is the composite (TaskID, ClientID, PeriodKey); rows
// are created lazily the first time a period is touched and mutated
// thereafter.
type TaskCompletion struct {
	TaskID      uuid.UUID  `json:"task_id"`
	ClientID    uuid.UUID  `json:"client_id"`
	PeriodKey   string     `json:"period_key"`
	IsCompleted bool       `json:"is_completed"`
	CompletedBy *uuid.UUID `json:"completed_by,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTaskCompletion creates a completion row for the composite identity.
// The row starts incomplete; use SetCompleted to flip it.
func NewTaskCompletion(taskID, clientID uuid.UUID, periodKey string) (*TaskCompletion, error) {
	now := time.Now().UTC()
	completion := &TaskCompletion{
		TaskID:    taskID,
		ClientID:  clientID,
		PeriodKey: periodKey,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := completion.Validate(); err != nil {
		return nil, err
	}

	return completion, nil
}

// Validate checks if the TaskCompletion has valid data.
// Returns an error if any field fails validation.
func (c *TaskCompletion) Validate() error {
	if c.TaskID == uuid.Nil {
		return ErrCompletionTaskIDEmpty
	}

	if c.ClientID == uuid.Nil {
		return ErrCompletionClientIDEmpty
	}

	if c.PeriodKey == "" {
		return ErrCompletionPeriodKeyEmpty
	}

	if _, err := recurrence.ParsePeriodKey(c.PeriodKey); err != nil {
		return ErrInvalidPeriodKey
	}

	return nil
}

// SetCompleted flips the completion flag. The audit fields are set only
// on the transition to completed and cleared when the completion is
// undone; re-completing an already-completed row keeps the original
// audit trail.
func (c *TaskCompletion) SetCompleted(completed bool, actorID uuid.UUID, now time.Time) {
	switch {
	case completed && !c.IsCompleted:
		c.CompletedBy = &actorID
		completedAt := now
		c.CompletedAt = &completedAt
	case !completed:
		c.CompletedBy = nil
		c.CompletedAt = nil
	}

	c.IsCompleted = completed
	c.UpdatedAt = now
}

// Progress summarises a client's completion state over the task's
// visible periods.
type Progress struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// ComputeProgress derives the completion percentage, rounding to the
// nearest whole percent and guarding the zero-period case.
func ComputeProgress(completed, total int) Progress {
	progress := Progress{
		Completed: completed,
		Total:     total,
	}
	if total > 0 {
		progress.Percentage = int(math.Round(100 * float64(completed) / float64(total)))
	}
	return progress
}
