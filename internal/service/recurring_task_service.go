package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/HillyAttic/cadence-api/internal/domain"
	"github.com/HillyAttic/cadence-api/internal/domain/recurrence"
	"github.com/HillyAttic/cadence-api/internal/events"
	"github.com/HillyAttic/cadence-api/internal/platform/logger"
	"github.com/HillyAttic/cadence-api/internal/store"
)

// TaskServiceError is a custom error type for recurring-task service errors.
type TaskServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("recurring task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("recurring task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
func NewTaskServiceError(operation, message string, err error) *TaskServiceError {
	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// DeleteOption disambiguates the two deletion semantics. "stop" is
// reversible in the sense that history survives; "all" is the only
// destructive path.
type DeleteOption string

// Supported delete options.
const (
	DeleteOptionStop DeleteOption = "stop"
	DeleteOptionAll  DeleteOption = "all"
)

// CreateTaskParams carries the fields needed to create a recurring task.
type CreateTaskParams struct {
	Title       string
	Description string
	Priority    domain.TaskPriority
	Pattern     recurrence.Pattern
	StartDate   time.Time
	DueDate     *time.Time
	ContactIDs  []uuid.UUID
	TeamID      *uuid.UUID
	Mappings    []domain.TeamMemberMapping
	RequiresARN bool
}

// UpdateTaskParams carries a partial update; nil fields are left
// untouched. Changing the pattern or start date recomputes the next
// occurrence from the new values.
type UpdateTaskParams struct {
	Title       *string
	Description *string
	Priority    *domain.TaskPriority
	Pattern     *recurrence.Pattern
	StartDate   *time.Time
	DueDate     *time.Time
	ContactIDs  []uuid.UUID
	Mappings    []domain.TeamMemberMapping
	RequiresARN *bool
}

// CompletionUpdate is one entry in a bulk completion save.
type CompletionUpdate struct {
	ClientID    uuid.UUID
	PeriodKey   string
	IsCompleted bool
}

// RecurringTaskService is the single entry point the surrounding
// application uses to drive the recurring-task engine.
type RecurringTaskService interface {
	// CreateTask validates the input, computes the first occurrence and
	// persists a new active task.
	CreateTask(ctx context.Context, params CreateTaskParams) (*domain.RecurringTask, error)

	// GetTask retrieves a task by its ID.
	GetTask(ctx context.Context, id uuid.UUID) (*domain.RecurringTask, error)

	// ListTasks retrieves tasks with the given status.
	ListTasks(ctx context.Context, status domain.TaskStatus, limit, offset int) ([]*domain.RecurringTask, error)

	// UpdateTask applies a partial update to an existing task.
	UpdateTask(ctx context.Context, id uuid.UUID, params UpdateTaskParams) (*domain.RecurringTask, error)

	// PauseTask freezes occurrence generation for an active task.
	PauseTask(ctx context.Context, id uuid.UUID) (*domain.RecurringTask, error)

	// ResumeTask reactivates a paused task, refreshing an elapsed next
	// occurrence.
	ResumeTask(ctx context.Context, id uuid.UUID) (*domain.RecurringTask, error)

	// DeleteTask either stops the task (history retained) or removes it
	// and all of its completion rows, depending on the option.
	DeleteTask(ctx context.Context, id uuid.UUID, option DeleteOption) error

	// LoadCompletions returns the completed period keys per client.
	// Clients with no rows are absent from the map.
	LoadCompletions(ctx context.Context, taskID uuid.UUID) (map[uuid.UUID][]string, error)

	// BulkSaveCompletions writes a batch of completion updates as one
	// atomic unit. A single malformed entry rejects the whole batch.
	BulkSaveCompletions(ctx context.Context, taskID uuid.UUID, updates []CompletionUpdate, actorID uuid.UUID) error

	// ClientProgress computes per-client completion statistics over the
	// viewer's visible clients and the current fiscal year's visible
	// periods.
	ClientProgress(ctx context.Context, taskID, viewerID uuid.UUID, privileged bool) (map[uuid.UUID]domain.Progress, error)
}

// recurringTaskServiceImpl implements the RecurringTaskService interface.
type recurringTaskServiceImpl struct {
	taskStore       store.TaskStore
	completionStore store.CompletionStore
	transactor      store.Transactor
	emitter         events.EventEmitter
	logger          *slog.Logger
	now             func() time.Time
}

// NewRecurringTaskService creates a new RecurringTaskService.
// It returns an error if any of the required dependencies are nil.
// The emitter may be nil, in which case no events are published.
func NewRecurringTaskService(
	taskStore store.TaskStore,
	completionStore store.CompletionStore,
	transactor store.Transactor,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (RecurringTaskService, error) {
	if taskStore == nil {
		return nil, domain.NewValidationError("taskStore", "cannot be nil", domain.ErrValidation)
	}
	if completionStore == nil {
		return nil, domain.NewValidationError("completionStore", "cannot be nil", domain.ErrValidation)
	}
	if transactor == nil {
		return nil, domain.NewValidationError("transactor", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &recurringTaskServiceImpl{
		taskStore:       taskStore,
		completionStore: completionStore,
		transactor:      transactor,
		emitter:         emitter,
		logger:          logger.With(slog.String("component", "recurring_task_service")),
		now:             func() time.Time { return time.Now().UTC() },
	}, nil
}

// CreateTask implements RecurringTaskService.CreateTask
func (s *recurringTaskServiceImpl) CreateTask(
	ctx context.Context,
	params CreateTaskParams,
) (*domain.RecurringTask, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewRecurringTask(
		params.Title,
		params.Description,
		params.Priority,
		params.Pattern,
		params.StartDate,
		params.DueDate,
		params.ContactIDs,
		params.TeamID,
		params.Mappings,
		params.RequiresARN,
	)
	if err != nil {
		log.Warn("task creation rejected", slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		log.Error("failed to persist new task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return nil, NewTaskServiceError("create", "failed to save task", err)
	}

	log.Info("recurring task created",
		slog.String("task_id", task.ID.String()),
		slog.String("pattern", string(task.Pattern)),
		slog.Time("next_occurrence", task.NextOccurrence))

	s.emit(ctx, events.TaskCreated, task.ID, task)
	return task, nil
}

// GetTask implements RecurringTaskService.GetTask
func (s *recurringTaskServiceImpl) GetTask(ctx context.Context, id uuid.UUID) (*domain.RecurringTask, error) {
	return s.taskStore.GetByID(ctx, id)
}

// ListTasks implements RecurringTaskService.ListTasks
func (s *recurringTaskServiceImpl) ListTasks(
	ctx context.Context,
	status domain.TaskStatus,
	limit, offset int,
) ([]*domain.RecurringTask, error) {
	return s.taskStore.ListByStatus(ctx, status, limit, offset)
}

// UpdateTask implements RecurringTaskService.UpdateTask
func (s *recurringTaskServiceImpl) UpdateTask(
	ctx context.Context,
	id uuid.UUID,
	params UpdateTaskParams,
) (*domain.RecurringTask, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Title != nil {
		task.Title = *params.Title
	}
	if params.Description != nil {
		task.Description = *params.Description
	}
	if params.Priority != nil {
		task.Priority = *params.Priority
	}
	if params.RequiresARN != nil {
		task.RequiresARN = *params.RequiresARN
	}
	if params.DueDate != nil {
		task.DueDate = params.DueDate
	}
	if params.ContactIDs != nil {
		task.ContactIDs = params.ContactIDs
	}
	if params.Mappings != nil {
		task.TeamMemberMappings = params.Mappings
	}

	// A pattern or start-date change restarts the occurrence series from
	// the new values.
	scheduleChanged := false
	if params.Pattern != nil && *params.Pattern != task.Pattern {
		if !params.Pattern.Valid() {
			return nil, domain.NewValidationError(
				"recurrence_pattern", string(*params.Pattern), domain.ErrInvalidPattern)
		}
		task.Pattern = *params.Pattern
		scheduleChanged = true
	}
	if params.StartDate != nil && !params.StartDate.Equal(task.StartDate) {
		task.StartDate = *params.StartDate
		scheduleChanged = true
	}
	if scheduleChanged {
		next, err := recurrence.NextOccurrenceAfter(task.Pattern, task.StartDate)
		if err != nil {
			return nil, domain.NewValidationError("start_date", "cannot compute next occurrence", err)
		}
		task.NextOccurrence = next
	}

	task.UpdatedAt = s.now()

	if err := s.taskStore.Update(ctx, task); err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, err
	}

	log.Info("recurring task updated", slog.String("task_id", id.String()))
	s.emit(ctx, events.TaskUpdated, task.ID, task)
	return task, nil
}

// PauseTask implements RecurringTaskService.PauseTask
func (s *recurringTaskServiceImpl) PauseTask(ctx context.Context, id uuid.UUID) (*domain.RecurringTask, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := task.Pause(); err != nil {
		log.Warn("pause rejected",
			slog.String("task_id", id.String()),
			slog.String("status", string(task.Status)),
			slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.taskStore.Update(ctx, task); err != nil {
		return nil, err
	}

	log.Info("recurring task paused",
		slog.String("task_id", id.String()),
		slog.Time("frozen_next_occurrence", task.NextOccurrence))
	s.emit(ctx, events.TaskPaused, task.ID, nil)
	return task, nil
}

// ResumeTask implements RecurringTaskService.ResumeTask
func (s *recurringTaskServiceImpl) ResumeTask(ctx context.Context, id uuid.UUID) (*domain.RecurringTask, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := task.Resume(s.now()); err != nil {
		log.Warn("resume rejected",
			slog.String("task_id", id.String()),
			slog.String("status", string(task.Status)),
			slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.taskStore.Update(ctx, task); err != nil {
		return nil, err
	}

	log.Info("recurring task resumed",
		slog.String("task_id", id.String()),
		slog.Time("next_occurrence", task.NextOccurrence))
	s.emit(ctx, events.TaskResumed, task.ID, nil)
	return task, nil
}

// DeleteTask implements RecurringTaskService.DeleteTask
// Option "stop" transitions the task to stopped and leaves every
// completion row untouched. Option "all" removes the task row; the
// schema's ON DELETE CASCADE removes all of its completion rows with it
// (the full-purge contract; see the repository design notes).
func (s *recurringTaskServiceImpl) DeleteTask(ctx context.Context, id uuid.UUID, option DeleteOption) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	switch option {
	case DeleteOptionStop:
		task, err := s.taskStore.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := task.Stop(); err != nil {
			log.Warn("stop rejected",
				slog.String("task_id", id.String()),
				slog.String("error", err.Error()))
			return err
		}
		if err := s.taskStore.Update(ctx, task); err != nil {
			return err
		}
		log.Info("recurring task stopped, history retained",
			slog.String("task_id", id.String()))
		s.emit(ctx, events.TaskStopped, id, nil)
		return nil

	case DeleteOptionAll:
		if err := s.taskStore.Delete(ctx, id); err != nil {
			return err
		}
		log.Info("recurring task and completion history deleted",
			slog.String("task_id", id.String()))
		s.emit(ctx, events.TaskDeleted, id, nil)
		return nil

	default:
		log.Warn("delete rejected: ambiguous option",
			slog.String("task_id", id.String()),
			slog.String("option", string(option)))
		return fmt.Errorf("%w: got %q", ErrInvalidDeleteOption, option)
	}
}

// LoadCompletions implements RecurringTaskService.LoadCompletions
func (s *recurringTaskServiceImpl) LoadCompletions(
	ctx context.Context,
	taskID uuid.UUID,
) (map[uuid.UUID][]string, error) {
	// Resolve the task first so an unknown ID surfaces as NotFound
	// rather than an empty ledger.
	if _, err := s.taskStore.GetByID(ctx, taskID); err != nil {
		return nil, err
	}

	completions, err := s.completionStore.GetByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	byClient := make(map[uuid.UUID][]string)
	for _, completion := range completions {
		if !completion.IsCompleted {
			continue
		}
		byClient[completion.ClientID] = append(byClient[completion.ClientID], completion.PeriodKey)
	}
	return byClient, nil
}

// BulkSaveCompletions implements RecurringTaskService.BulkSaveCompletions
// The whole batch is validated up front and then applied inside a single
// transaction: either every entry is persisted or none is. Validation
// failures are reported as one aggregate error, not per item.
func (s *recurringTaskServiceImpl) BulkSaveCompletions(
	ctx context.Context,
	taskID uuid.UUID,
	updates []CompletionUpdate,
	actorID uuid.UUID,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(updates) == 0 {
		return ErrEmptyBatch
	}

	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return err
	}

	if task.Status == domain.TaskStatusStopped {
		log.Warn("completion write rejected for stopped task",
			slog.String("task_id", taskID.String()))
		return fmt.Errorf("%w: task %s", ErrTaskStopped, taskID)
	}

	if err := s.validateBatch(task, updates); err != nil {
		log.Warn("completion batch rejected",
			slog.String("task_id", taskID.String()),
			slog.Int("batch_size", len(updates)),
			slog.String("error", err.Error()))
		return err
	}

	now := s.now()
	err = s.transactor.RunIn(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.completionStore.WithTx(tx)
		for _, update := range updates {
			completion, err := domain.NewTaskCompletion(taskID, update.ClientID, update.PeriodKey)
			if err != nil {
				return err
			}
			completion.SetCompleted(update.IsCompleted, actorID, now)
			if err := txStore.Upsert(ctx, completion); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to save completion batch",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()),
			slog.Int("batch_size", len(updates)))
		return NewTaskServiceError("bulk_save_completions", "failed to save batch", err)
	}

	log.Info("completion batch saved",
		slog.String("task_id", taskID.String()),
		slog.String("actor_id", actorID.String()),
		slog.Int("batch_size", len(updates)))

	s.emit(ctx, events.CompletionsSaved, taskID, map[string]any{
		"actor_id":   actorID,
		"batch_size": len(updates),
	})
	return nil
}

// ClientProgress implements RecurringTaskService.ClientProgress
func (s *recurringTaskServiceImpl) ClientProgress(
	ctx context.Context,
	taskID, viewerID uuid.UUID,
	privileged bool,
) (map[uuid.UUID]domain.Progress, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	visibleClients := task.VisibleClients(viewerID, privileged)

	periods := recurrence.VisiblePeriods(
		task.Pattern,
		recurrence.GenerateFiscalYearPeriods(recurrence.FiscalYearOf(s.now())),
	)
	visibleKeys := make(map[string]struct{}, len(periods))
	for _, period := range periods {
		visibleKeys[period.Key] = struct{}{}
	}

	completions, err := s.completionStore.GetByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	completedByClient := make(map[uuid.UUID]int)
	for _, completion := range completions {
		if !completion.IsCompleted {
			continue
		}
		// Completions outside the pattern's visible set are inert.
		if _, ok := visibleKeys[completion.PeriodKey]; !ok {
			continue
		}
		completedByClient[completion.ClientID]++
	}

	progress := make(map[uuid.UUID]domain.Progress, len(visibleClients))
	for _, clientID := range visibleClients {
		progress[clientID] = domain.ComputeProgress(completedByClient[clientID], len(periods))
	}
	return progress, nil
}

// validateBatch checks every entry of a bulk save against the task's
// contact list and the pattern's period alignment. All violations are
// collected into one aggregate error because the write is all-or-nothing
// and callers should not expect item-level diagnostics.
func (s *recurringTaskServiceImpl) validateBatch(task *domain.RecurringTask, updates []CompletionUpdate) error {
	contacts := make(map[uuid.UUID]struct{}, len(task.ContactIDs))
	for _, id := range task.ContactIDs {
		contacts[id] = struct{}{}
	}

	var violations []string
	for i, update := range updates {
		if update.ClientID == uuid.Nil {
			violations = append(violations, fmt.Sprintf("entry %d: client ID is empty", i))
			continue
		}
		if _, ok := contacts[update.ClientID]; !ok {
			violations = append(violations,
				fmt.Sprintf("entry %d: client %s is not a task contact", i, update.ClientID))
		}
		if !recurrence.PeriodAligned(task.Pattern, update.PeriodKey) {
			violations = append(violations,
				fmt.Sprintf("entry %d: period %q does not align with pattern %s",
					i, update.PeriodKey, task.Pattern))
		}
	}

	if len(violations) > 0 {
		return domain.NewValidationError("updates",
			strings.Join(violations, "; "), domain.ErrValidation)
	}
	return nil
}

// emit publishes a lifecycle event without failing the operation when
// emission fails; collaborators losing an event must not corrupt the
// engine's own state.
func (s *recurringTaskServiceImpl) emit(ctx context.Context, eventType events.TaskEventType, taskID uuid.UUID, payload interface{}) {
	if s.emitter == nil {
		return
	}

	event, err := events.NewTaskEvent(eventType, taskID, payload)
	if err != nil {
		s.logger.Error("failed to build task event",
			slog.String("event_type", string(eventType)),
			slog.String("task_id", taskID.String()),
			slog.String("error", err.Error()))
		return
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit task event",
			slog.String("event_type", string(eventType)),
			slog.String("task_id", taskID.String()),
			slog.String("error", err.Error()))
	}
}
