package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/HillyAttic/cadence-api/internal/domain"
	"github.com/HillyAttic/cadence-api/internal/platform/logger"
	"github.com/HillyAttic/cadence-api/internal/store"
)

// PostgresCompletionStore implements the store.CompletionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCompletionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCompletionStore creates a new PostgreSQL implementation of the CompletionStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCompletionStore(db store.DBTX, logger *slog.Logger) *PostgresCompletionStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCompletionStore{
		db:     db,
		logger: logger.With(slog.String("component", "completion_store")),
	}
}

// Ensure PostgresCompletionStore implements store.CompletionStore interface
var _ store.CompletionStore = (*PostgresCompletionStore)(nil)

// WithTx implements store.CompletionStore.WithTx
func (s *PostgresCompletionStore) WithTx(tx *sql.Tx) store.CompletionStore {
	return &PostgresCompletionStore{
		db:     tx,
		logger: s.logger,
	}
}

// GetByTask implements store.CompletionStore.GetByTask
// It retrieves every completion row recorded for a task, ordered by
// client and period for stable output.
func (s *PostgresCompletionStore) GetByTask(
	ctx context.Context,
	taskID uuid.UUID,
) ([]*domain.TaskCompletion, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving completions for task", slog.String("task_id", taskID.String()))

	query := `
		SELECT task_id, client_id, period_key, is_completed,
		       completed_by, completed_at, created_at, updated_at
		FROM task_completions
		WHERE task_id = $1
		ORDER BY client_id, period_key
	`

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		log.Error("failed to query completions",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var completions []*domain.TaskCompletion
	for rows.Next() {
		var (
			completion  domain.TaskCompletion
			completedBy uuid.NullUUID
			completedAt sql.NullTime
		)

		err := rows.Scan(
			&completion.TaskID,
			&completion.ClientID,
			&completion.PeriodKey,
			&completion.IsCompleted,
			&completedBy,
			&completedAt,
			&completion.CreatedAt,
			&completion.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan completion row",
				slog.String("error", err.Error()))
			return nil, err
		}

		if completedBy.Valid {
			by := completedBy.UUID
			completion.CompletedBy = &by
		}
		if completedAt.Valid {
			at := completedAt.Time
			completion.CompletedAt = &at
		}

		completions = append(completions, &completion)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	if completions == nil {
		completions = []*domain.TaskCompletion{}
	}

	log.Debug("retrieved completions for task",
		slog.String("task_id", taskID.String()),
		slog.Int("count", len(completions)))
	return completions, nil
}

// Upsert implements store.CompletionStore.Upsert
// It writes one completion row, creating it lazily on first touch.
// The ON CONFLICT clause keeps the original audit trail when an
// already-completed row is completed again and clears it when a
// completion is undone.
func (s *PostgresCompletionStore) Upsert(ctx context.Context, completion *domain.TaskCompletion) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := completion.Validate(); err != nil {
		log.Warn("completion validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("task_id", completion.TaskID.String()),
			slog.String("period_key", completion.PeriodKey))
		return err
	}

	query := `
		INSERT INTO task_completions (
			task_id, client_id, period_key, is_completed,
			completed_by, completed_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (task_id, client_id, period_key) DO UPDATE SET
			is_completed = EXCLUDED.is_completed,
			completed_by = CASE
				WHEN EXCLUDED.is_completed AND NOT task_completions.is_completed
					THEN EXCLUDED.completed_by
				WHEN NOT EXCLUDED.is_completed THEN NULL
				ELSE task_completions.completed_by
			END,
			completed_at = CASE
				WHEN EXCLUDED.is_completed AND NOT task_completions.is_completed
					THEN EXCLUDED.completed_at
				WHEN NOT EXCLUDED.is_completed THEN NULL
				ELSE task_completions.completed_at
			END,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		completion.TaskID,
		completion.ClientID,
		completion.PeriodKey,
		completion.IsCompleted,
		nullableUUID(completion.CompletedBy),
		nullableTime(completion.CompletedAt),
		completion.CreatedAt,
		completion.UpdatedAt,
	)

	if err != nil {
		// A foreign key violation means the task vanished between the
		// caller's resolve and this write; report it as not-found.
		if IsForeignKeyViolation(err) {
			log.Warn("task disappeared before completion write",
				slog.String("task_id", completion.TaskID.String()),
				slog.String("period_key", completion.PeriodKey))
			return fmt.Errorf("%w: task %s", store.ErrTaskNotFound, completion.TaskID)
		}

		log.Error("failed to upsert completion",
			slog.String("error", err.Error()),
			slog.String("task_id", completion.TaskID.String()),
			slog.String("client_id", completion.ClientID.String()),
			slog.String("period_key", completion.PeriodKey))
		return MapError(err)
	}

	log.Debug("completion upserted",
		slog.String("task_id", completion.TaskID.String()),
		slog.String("client_id", completion.ClientID.String()),
		slog.String("period_key", completion.PeriodKey),
		slog.Bool("is_completed", completion.IsCompleted))
	return nil
}
