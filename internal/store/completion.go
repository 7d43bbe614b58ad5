package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/HillyAttic/cadence-api/internal/domain"
)

// CompletionStore defines the interface for the per-client, per-period
// completion ledger. Rows are keyed by the composite
// (task_id, client_id, period_key); concurrent writers to the same key
// use last-write-wins semantics (documented limitation, no optimistic
// concurrency token).
type CompletionStore interface {
	// GetByTask retrieves every completion row recorded for a task.
	// A client with no rows simply does not appear; that is zero
	// completions, not missing data. Returns an empty slice when the
	// task has no rows at all.
	GetByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskCompletion, error)

	// Upsert writes one completion row, creating it lazily on first
	// touch. The audit fields are only advanced on the transition to
	// completed and cleared when a completion is undone.
	//
	// IMPORTANT: When saving a batch, every Upsert MUST run within a
	// single transaction via WithTx so the batch applies as one atomic
	// unit; a partially-applied grid would corrupt the progress
	// percentages readers observe.
	Upsert(ctx context.Context, completion *domain.TaskCompletion) error

	// WithTx returns a new CompletionStore instance that uses the
	// provided transaction.
	WithTx(tx *sql.Tx) CompletionStore
}
