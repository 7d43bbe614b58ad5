package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/HillyAttic/cadence-api/internal/domain"
	"github.com/HillyAttic/cadence-api/internal/domain/recurrence"
	"github.com/HillyAttic/cadence-api/internal/platform/logger"
	"github.com/HillyAttic/cadence-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TaskStore.Create
// It saves a new recurring task to the database, handling domain validation.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.RecurringTask) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	contactIDs, mappings, err := marshalTaskJSON(task)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO recurring_tasks (
			id, title, description, priority, recurrence_pattern,
			start_date, due_date, next_occurrence, status,
			contact_ids, team_id, team_member_mappings, requires_arn,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Title,
		task.Description,
		task.Priority,
		task.Pattern,
		task.StartDate,
		nullableTime(task.DueDate),
		task.NextOccurrence,
		task.Status,
		contactIDs,
		nullableUUID(task.TeamID),
		mappings,
		task.RequiresARN,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create recurring task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	log.Info("recurring task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("pattern", string(task.Pattern)),
		slog.String("status", string(task.Status)))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// It retrieves a recurring task by its unique ID.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.RecurringTask, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving recurring task by ID", slog.String("task_id", id.String()))

	query := `
		SELECT id, title, description, priority, recurrence_pattern,
		       start_date, due_date, next_occurrence, status,
		       contact_ids, team_id, team_member_mappings, requires_arn,
		       created_at, updated_at
		FROM recurring_tasks
		WHERE id = $1
	`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("recurring task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get recurring task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	log.Debug("recurring task retrieved successfully",
		slog.String("task_id", id.String()),
		slog.String("status", string(task.Status)))
	return task, nil
}

// Update implements store.TaskStore.Update
// It saves changes to an existing recurring task.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.RecurringTask) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	contactIDs, mappings, err := marshalTaskJSON(task)
	if err != nil {
		return err
	}

	query := `
		UPDATE recurring_tasks
		SET title = $1, description = $2, priority = $3,
		    recurrence_pattern = $4, start_date = $5, due_date = $6,
		    next_occurrence = $7, status = $8, contact_ids = $9,
		    team_id = $10, team_member_mappings = $11, requires_arn = $12,
		    updated_at = $13
		WHERE id = $14
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.Priority,
		task.Pattern,
		task.StartDate,
		nullableTime(task.DueDate),
		task.NextOccurrence,
		task.Status,
		contactIDs,
		nullableUUID(task.TeamID),
		mappings,
		task.RequiresARN,
		task.UpdatedAt,
		task.ID,
	)

	if err != nil {
		log.Error("failed to update recurring task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("recurring task not found for update",
			slog.String("task_id", task.ID.String()))
		return store.ErrTaskNotFound
	}

	log.Info("recurring task updated successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// Delete implements store.TaskStore.Delete
// It removes a recurring task from the store by its ID. The schema's
// ON DELETE CASCADE constraint removes the task's completion rows in
// the same statement.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM recurring_tasks
		WHERE id = $1
	`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete recurring task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("recurring task not found for delete",
			slog.String("task_id", id.String()))
		return store.ErrTaskNotFound
	}

	log.Info("recurring task deleted successfully",
		slog.String("task_id", id.String()))
	return nil
}

// ListByStatus implements store.TaskStore.ListByStatus
// It retrieves tasks with the given status, most recently created first.
// Returns an empty slice if no tasks match the criteria.
func (s *PostgresTaskStore) ListByStatus(
	ctx context.Context,
	status domain.TaskStatus,
	limit, offset int,
) ([]*domain.RecurringTask, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 20 // Default limit
	}
	if offset < 0 {
		offset = 0
	}

	log.Debug("listing recurring tasks by status",
		slog.String("status", string(status)),
		slog.Int("limit", limit),
		slog.Int("offset", offset))

	query := `
		SELECT id, title, description, priority, recurrence_pattern,
		       start_date, due_date, next_occurrence, status,
		       contact_ids, team_id, team_member_mappings, requires_arn,
		       created_at, updated_at
		FROM recurring_tasks
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, status, limit, offset)
	if err != nil {
		log.Error("failed to query recurring tasks by status",
			slog.String("error", err.Error()),
			slog.String("status", string(status)))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var tasks []*domain.RecurringTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan recurring task row",
				slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	if tasks == nil {
		tasks = []*domain.RecurringTask{}
	}

	log.Debug("listed recurring tasks by status",
		slog.String("status", string(status)),
		slog.Int("count", len(tasks)))
	return tasks, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanTask.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads one recurring_tasks row, decoding the JSONB columns
// and the nullable due_date/team_id fields.
func scanTask(row rowScanner) (*domain.RecurringTask, error) {
	var (
		task        domain.RecurringTask
		priority    string
		pattern     string
		status      string
		dueDate     sql.NullTime
		teamID      uuid.NullUUID
		contactsRaw []byte
		mappingsRaw []byte
	)

	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&priority,
		&pattern,
		&task.StartDate,
		&dueDate,
		&task.NextOccurrence,
		&status,
		&contactsRaw,
		&teamID,
		&mappingsRaw,
		&task.RequiresARN,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Priority = domain.TaskPriority(priority)
	task.Pattern = recurrence.Pattern(pattern)
	task.Status = domain.TaskStatus(status)

	if dueDate.Valid {
		due := dueDate.Time
		task.DueDate = &due
	}
	if teamID.Valid {
		team := teamID.UUID
		task.TeamID = &team
	}

	if err := json.Unmarshal(contactsRaw, &task.ContactIDs); err != nil {
		return nil, fmt.Errorf("failed to decode contact_ids: %w", err)
	}
	if len(mappingsRaw) > 0 {
		if err := json.Unmarshal(mappingsRaw, &task.TeamMemberMappings); err != nil {
			return nil, fmt.Errorf("failed to decode team_member_mappings: %w", err)
		}
	}

	return &task, nil
}

// marshalTaskJSON encodes the task's JSONB columns.
func marshalTaskJSON(task *domain.RecurringTask) (contactIDs, mappings []byte, err error) {
	contactIDs, err = json.Marshal(task.ContactIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode contact_ids: %w", err)
	}

	if task.TeamMemberMappings == nil {
		mappings = []byte("[]")
	} else {
		mappings, err = json.Marshal(task.TeamMemberMappings)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode team_member_mappings: %w", err)
		}
	}
	return contactIDs, mappings, nil
}

// nullableTime converts an optional time into its driver representation.
func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// nullableUUID converts an optional UUID into its driver representation.
func nullableUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
