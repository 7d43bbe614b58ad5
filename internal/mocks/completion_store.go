package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"

	"github.com/HillyAttic/cadence-api/internal/domain"
	"github.com/HillyAttic/cadence-api/internal/store"
)

// MockCompletionStore implements store.CompletionStore for testing.
type MockCompletionStore struct {
	// Custom behavior functions
	GetByTaskFn func(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskCompletion, error)
	UpsertFn    func(ctx context.Context, completion *domain.TaskCompletion) error

	// Default response values
	Completions []*domain.TaskCompletion
	Err         error

	// Call tracking for verification
	mu          sync.Mutex
	Upserted    []*domain.TaskCompletion
	GetByCalled []uuid.UUID
}

// Verify interface compliance at compile time.
var _ store.CompletionStore = (*MockCompletionStore)(nil)

// GetByTask implements store.CompletionStore.
func (m *MockCompletionStore) GetByTask(
	ctx context.Context,
	taskID uuid.UUID,
) ([]*domain.TaskCompletion, error) {
	m.mu.Lock()
	m.GetByCalled = append(m.GetByCalled, taskID)
	m.mu.Unlock()

	if m.GetByTaskFn != nil {
		return m.GetByTaskFn(ctx, taskID)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Completions, nil
}

// Upsert implements store.CompletionStore.
func (m *MockCompletionStore) Upsert(ctx context.Context, completion *domain.TaskCompletion) error {
	m.mu.Lock()
	m.Upserted = append(m.Upserted, completion)
	m.mu.Unlock()

	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, completion)
	}
	return m.Err
}

// WithTx implements store.CompletionStore. The mock carries no
// connection, so it returns itself.
func (m *MockCompletionStore) WithTx(tx *sql.Tx) store.CompletionStore {
	return m
}
