package mocks

import (
	"context"
	"sync"

	"github.com/HillyAttic/cadence-api/internal/store"
)

// MockTransactor implements store.Transactor for testing. By default it
// simply runs the function with a nil transaction, which works with the
// store mocks because their WithTx ignores the handle.
type MockTransactor struct {
	// RunInFn overrides the default pass-through behavior.
	RunInFn func(ctx context.Context, fn store.TxFn) error

	// Err, when set, is returned without running the function. Useful
	// for simulating a failure at transaction begin.
	Err error

	mu       sync.Mutex
	RunCount int
}

// Verify interface compliance at compile time.
var _ store.Transactor = (*MockTransactor)(nil)

// RunIn implements store.Transactor.
func (m *MockTransactor) RunIn(ctx context.Context, fn store.TxFn) error {
	m.mu.Lock()
	m.RunCount++
	m.mu.Unlock()

	if m.RunInFn != nil {
		return m.RunInFn(ctx, fn)
	}
	if m.Err != nil {
		return m.Err
	}
	return fn(ctx, nil)
}
