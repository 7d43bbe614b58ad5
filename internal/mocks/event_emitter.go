package mocks

import (
	"context"
	"sync"

	"github.com/HillyAttic/cadence-api/internal/events"
)

// MockEventEmitter implements events.EventEmitter for testing, recording
// every emitted event.
type MockEventEmitter struct {
	// EmitEventFn overrides the default record-and-return behavior.
	EmitEventFn func(ctx context.Context, event *events.TaskEvent) error

	// Err is returned after recording when no override is set.
	Err error

	mu     sync.Mutex
	Events []*events.TaskEvent
}

// Verify interface compliance at compile time.
var _ events.EventEmitter = (*MockEventEmitter)(nil)

// EmitEvent implements events.EventEmitter.
func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.TaskEvent) error {
	m.mu.Lock()
	m.Events = append(m.Events, event)
	m.mu.Unlock()

	if m.EmitEventFn != nil {
		return m.EmitEventFn(ctx, event)
	}
	return m.Err
}

// EventTypes returns the types of the recorded events in order.
func (m *MockEventEmitter) EventTypes() []events.TaskEventType {
	m.mu.Lock()
	defer m.mu.Unlock()

	types := make([]events.TaskEventType, 0, len(m.Events))
	for _, event := range m.Events {
		types = append(types, event.Type)
	}
	return types
}
