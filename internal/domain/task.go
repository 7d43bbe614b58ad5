package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/HillyAttic/cadence-api/internal/domain/recurrence"
)

// Task-specific validation errors
var (
	// ErrTaskIDEmpty is returned when a task ID is empty or nil.
	ErrTaskIDEmpty = errors.New("task ID cannot be empty")

	// ErrTaskTitleEmpty is returned when a task's title is empty.
	ErrTaskTitleEmpty = errors.New("task title cannot be empty")

	// ErrTaskStartDateZero is returned when a task has no start date.
	ErrTaskStartDateZero = errors.New("task start date is required")

	// ErrTaskDueBeforeStart is returned when a task's due date precedes
	// its start date.
	ErrTaskDueBeforeStart = errors.New("task due date cannot precede start date")

	// ErrTaskNoContacts is returned when a task has no clients in scope.
	ErrTaskNoContacts = errors.New("task must have at least one contact")
)

// TaskStatus represents the lifecycle state of a recurring task.
type TaskStatus string

// Possible task status values. Paused is not Stopped: a paused task
// keeps its next occurrence frozen and can resume, while a stopped task
// is terminal for generation but retains its completion history.
const (
	TaskStatusActive  TaskStatus = "active"
	TaskStatusPaused  TaskStatus = "paused"
	TaskStatusStopped TaskStatus = "stopped"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s TaskStatus) Valid() bool {
	return isValidTaskStatus(s)
}

// TaskPriority represents the urgency of a recurring task.
type TaskPriority string

// Possible task priority values.
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// TeamMemberMapping assigns a subset of a task's clients to one team
// member. When a task carries mappings they are the authoritative
// assignment for visibility and responsibility.
type TeamMemberMapping struct {
	UserID    uuid.UUID   `json:"user_id"`
	UserName  string      `json:"user_name"`
	ClientIDs []uuid.UUID `json:"client_ids"`
}

// RecurringTask is a single task definition that produces an open-ended
// series of virtual occurrences. Occurrences are computed on demand from
// the recurrence pattern and are never materialized as separate rows.
type RecurringTask struct {
	ID                 uuid.UUID           `json:"id"`
	Title              string              `json:"title"`
	Description        string              `json:"description"`
	Priority           TaskPriority        `json:"priority"`
	Pattern            recurrence.Pattern  `json:"recurrence_pattern"`
	StartDate          time.Time           `json:"start_date"`
	DueDate            *time.Time          `json:"due_date,omitempty"`
	NextOccurrence     time.Time           `json:"next_occurrence"`
	Status             TaskStatus          `json:"status"`
	ContactIDs         []uuid.UUID         `json:"contact_ids"`
	TeamID             *uuid.UUID          `json:"team_id,omitempty"`
	TeamMemberMappings []TeamMemberMapping `json:"team_member_mappings,omitempty"`
	RequiresARN        bool                `json:"requires_arn"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// NewRecurringTask creates a new active RecurringTask and computes its
// first occurrence from the start date. Returns an error if validation
// fails.
func NewRecurringTask(
	title, description string,
	priority TaskPriority,
	pattern recurrence.Pattern,
	startDate time.Time,
	dueDate *time.Time,
	contactIDs []uuid.UUID,
	teamID *uuid.UUID,
	mappings []TeamMemberMapping,
	requiresARN bool,
) (*RecurringTask, error) {
	if !pattern.Valid() {
		return nil, NewValidationError("recurrence_pattern", string(pattern), ErrInvalidPattern)
	}

	next, err := recurrence.NextOccurrenceAfter(pattern, startDate)
	if err != nil {
		return nil, NewValidationError("start_date", "cannot compute first occurrence", err)
	}

	now := time.Now().UTC()
	task := &RecurringTask{
		ID:                 uuid.New(),
		Title:              title,
		Description:        description,
		Priority:           priority,
		Pattern:            pattern,
		StartDate:          startDate,
		DueDate:            dueDate,
		NextOccurrence:     next,
		Status:             TaskStatusActive,
		ContactIDs:         contactIDs,
		TeamID:             teamID,
		TeamMemberMappings: mappings,
		RequiresARN:        requiresARN,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the RecurringTask has valid data.
// Returns an error if any field fails validation.
func (t *RecurringTask) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.Title == "" {
		return ErrTaskTitleEmpty
	}

	if !isValidTaskPriority(t.Priority) {
		return ErrInvalidPriority
	}

	if !t.Pattern.Valid() {
		return ErrInvalidPattern
	}

	if t.StartDate.IsZero() {
		return ErrTaskStartDateZero
	}

	if t.DueDate != nil && t.DueDate.Before(t.StartDate) {
		return ErrTaskDueBeforeStart
	}

	if !isValidTaskStatus(t.Status) {
		return ErrInvalidStatus
	}

	if len(t.ContactIDs) == 0 {
		return ErrTaskNoContacts
	}

	return ValidateMappings(t.TeamMemberMappings, t.ContactIDs)
}

// Pause freezes the task's occurrence generation. Only an active task
// may pause; pausing an already-paused or stopped task is rejected.
// NextOccurrence is left untouched so Resume can pick up where the
// series stopped.
func (t *RecurringTask) Pause() error {
	if t.Status != TaskStatusActive {
		return NewValidationError("status",
			"only an active task can be paused, current status is "+string(t.Status),
			ErrInvalidTransition)
	}

	t.Status = TaskStatusPaused
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// Resume reactivates a paused task. If the frozen next occurrence has
// already elapsed relative to now, it is recomputed forward from now so
// the task does not resume straight into a backlog of overdue
// occurrences; otherwise the frozen value is kept.
func (t *RecurringTask) Resume(now time.Time) error {
	if t.Status != TaskStatusPaused {
		return NewValidationError("status",
			"only a paused task can be resumed, current status is "+string(t.Status),
			ErrInvalidTransition)
	}

	if t.NextOccurrence.Before(now) {
		next, err := recurrence.NextOccurrenceAfter(t.Pattern, now)
		if err != nil {
			return err
		}
		t.NextOccurrence = next
	}

	t.Status = TaskStatusActive
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// Stop terminates occurrence generation while keeping the task row and
// all completion history intact. Active and paused tasks can stop;
// stopping a stopped task is rejected.
func (t *RecurringTask) Stop() error {
	if t.Status == TaskStatusStopped {
		return NewValidationError("status",
			"task is already stopped", ErrInvalidTransition)
	}

	t.Status = TaskStatusStopped
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// AdvanceOccurrence consumes the pending occurrence and computes the
// next one from it.
func (t *RecurringTask) AdvanceOccurrence() error {
	next, err := recurrence.NextOccurrenceAfter(t.Pattern, t.NextOccurrence)
	if err != nil {
		return err
	}

	t.NextOccurrence = next
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// SeriesExhausted reports whether the pending occurrence has moved past
// the task's due date. An exhausted series produces no further
// occurrences but the task and its history remain readable.
func (t *RecurringTask) SeriesExhausted() bool {
	return t.DueDate != nil && t.NextOccurrence.After(*t.DueDate)
}

// isValidTaskStatus checks if the given status is a valid TaskStatus.
func isValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusActive, TaskStatusPaused, TaskStatusStopped:
		return true
	default:
		return false
	}
}

// isValidTaskPriority checks if the given priority is a valid TaskPriority.
func isValidTaskPriority(priority TaskPriority) bool {
	switch priority {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	default:
		return false
	}
}
