package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/HillyAttic/cadence-api/internal/domain"
)

// TaskStore defines the interface for recurring-task persistence.
//
// The task record is logically owned by the service orchestrator; no
// other component mutates it directly. No lock is held across a
// resolve-then-write sequence, so a concurrent delete between resolve
// and write surfaces as ErrTaskNotFound from the write, never a crash.
type TaskStore interface {
	// Create saves a new recurring task to the store.
	// The task must be valid according to domain validation rules.
	Create(ctx context.Context, task *domain.RecurringTask) error

	// GetByID retrieves a recurring task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RecurringTask, error)

	// Update saves changes to an existing recurring task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.RecurringTask) error

	// Delete removes a recurring task from the store by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	//
	// Associated task_completions rows are removed by database-level
	// ON DELETE CASCADE; the application code does not delete them
	// explicitly. This is the only destructive path for completion
	// history.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByStatus retrieves tasks with the given status, most recently
	// created first. Returns an empty slice when nothing matches.
	ListByStatus(ctx context.Context, status domain.TaskStatus, limit, offset int) ([]*domain.RecurringTask, error)

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller,
	// typically via store.RunInTransaction.
	WithTx(tx *sql.Tx) TaskStore
}
