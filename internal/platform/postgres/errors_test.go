package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/HillyAttic/cadence-api/internal/store"
)

func pgError(code, constraint string) *pgconn.PgError {
	return &pgconn.PgError{Code: code, ConstraintName: constraint}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		err      error
		expected error
	}{
		{
			name:     "nil error stays nil",
			err:      nil,
			expected: nil,
		},
		{
			name:     "no rows maps to not found",
			err:      sql.ErrNoRows,
			expected: store.ErrNotFound,
		},
		{
			name:     "wrapped no rows maps to not found",
			err:      fmt.Errorf("scanning: %w", sql.ErrNoRows),
			expected: store.ErrNotFound,
		},
		{
			name:     "unique violation maps to duplicate",
			err:      pgError("23505", "recurring_tasks_pkey"),
			expected: store.ErrDuplicate,
		},
		{
			name:     "foreign key violation maps to invalid entity",
			err:      pgError("23503", "task_completions_task_id_fkey"),
			expected: store.ErrInvalidEntity,
		},
		{
			name:     "check violation maps to invalid entity",
			err:      pgError("23514", "recurring_tasks_status_check"),
			expected: store.ErrInvalidEntity,
		},
		{
			name:     "not null violation maps to invalid entity",
			err:      pgError("23502", ""),
			expected: store.ErrInvalidEntity,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mapped := MapError(tc.err)
			if tc.expected == nil {
				assert.NoError(t, mapped)
				return
			}
			assert.ErrorIs(t, mapped, tc.expected)
		})
	}
}

func TestMapErrorPassesThroughUnknownErrors(t *testing.T) {
	t.Parallel()

	original := errors.New("connection reset")
	assert.Equal(t, original, MapError(original))

	// Unmapped PG codes also pass through unchanged.
	serialization := pgError("40001", "")
	assert.Equal(t, error(serialization), MapError(serialization))
}

func TestViolationPredicates(t *testing.T) {
	t.Parallel()

	unique := fmt.Errorf("insert: %w", pgError("23505", "recurring_tasks_pkey"))
	foreign := fmt.Errorf("insert: %w", pgError("23503", "task_completions_task_id_fkey"))

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsUniqueViolation(foreign))
	assert.False(t, IsUniqueViolation(errors.New("not a pg error")))

	assert.True(t, IsForeignKeyViolation(foreign))
	assert.False(t, IsForeignKeyViolation(unique))
}
