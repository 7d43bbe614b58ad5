package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"

	"github.com/HillyAttic/cadence-api/internal/domain"
	"github.com/HillyAttic/cadence-api/internal/store"
)

// MockTaskStore implements store.TaskStore for testing.
type MockTaskStore struct {
	// Custom behavior functions
	CreateFn       func(ctx context.Context, task *domain.RecurringTask) error
	GetByIDFn      func(ctx context.Context, id uuid.UUID) (*domain.RecurringTask, error)
	UpdateFn       func(ctx context.Context, task *domain.RecurringTask) error
	DeleteFn       func(ctx context.Context, id uuid.UUID) error
	ListByStatusFn func(ctx context.Context, status domain.TaskStatus, limit, offset int) ([]*domain.RecurringTask, error)

	// Default response values
	Task  *domain.RecurringTask
	Tasks []*domain.RecurringTask
	Err   error

	// Call tracking for verification
	mu            sync.Mutex
	CreateCalls   []*domain.RecurringTask
	UpdateCalls   []*domain.RecurringTask
	DeleteCalls   []uuid.UUID
	GetByIDCalls  []uuid.UUID
	ListCallCount int
}

// Verify interface compliance at compile time.
var _ store.TaskStore = (*MockTaskStore)(nil)

// Create implements store.TaskStore.
func (m *MockTaskStore) Create(ctx context.Context, task *domain.RecurringTask) error {
	m.mu.Lock()
	m.CreateCalls = append(m.CreateCalls, task)
	m.mu.Unlock()

	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	return m.Err
}

// GetByID implements store.TaskStore.
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.RecurringTask, error) {
	m.mu.Lock()
	m.GetByIDCalls = append(m.GetByIDCalls, id)
	m.mu.Unlock()

	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Task == nil {
		return nil, store.ErrTaskNotFound
	}
	return m.Task, nil
}

// Update implements store.TaskStore.
func (m *MockTaskStore) Update(ctx context.Context, task *domain.RecurringTask) error {
	m.mu.Lock()
	m.UpdateCalls = append(m.UpdateCalls, task)
	m.mu.Unlock()

	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}
	return m.Err
}

// Delete implements store.TaskStore.
func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	m.DeleteCalls = append(m.DeleteCalls, id)
	m.mu.Unlock()

	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return m.Err
}

// ListByStatus implements store.TaskStore.
func (m *MockTaskStore) ListByStatus(
	ctx context.Context,
	status domain.TaskStatus,
	limit, offset int,
) ([]*domain.RecurringTask, error) {
	m.mu.Lock()
	m.ListCallCount++
	m.mu.Unlock()

	if m.ListByStatusFn != nil {
		return m.ListByStatusFn(ctx, status, limit, offset)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Tasks, nil
}

// WithTx implements store.TaskStore. The mock carries no connection, so
// it returns itself.
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}
