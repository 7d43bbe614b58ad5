// Package events decouples the recurring-task engine from the
// collaborating services that react to it (notification delivery,
// roster aggregation). The engine publishes lifecycle events through an
// EventEmitter without any knowledge of who consumes them.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TaskEventType identifies what happened to a recurring task.
type TaskEventType string

// Event types published by the engine.
const (
	TaskCreated      TaskEventType = "task.created"
	TaskUpdated      TaskEventType = "task.updated"
	TaskPaused       TaskEventType = "task.paused"
	TaskResumed      TaskEventType = "task.resumed"
	TaskStopped      TaskEventType = "task.stopped"
	TaskDeleted      TaskEventType = "task.deleted"
	CompletionsSaved TaskEventType = "task.completions_saved"
)

// TaskEvent describes one lifecycle change of a recurring task. The
// payload carries event-specific data serialized as JSON so handlers
// have no compile-time dependency on the engine's types.
type TaskEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type indicates what happened
	Type TaskEventType `json:"type"`

	// TaskID is the recurring task the event refers to
	TaskID uuid.UUID `json:"task_id"`

	// Payload contains event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload,omitempty"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *TaskEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewTaskEvent creates a new TaskEvent with the specified type and payload.
func NewTaskEvent(eventType TaskEventType, taskID uuid.UUID, payload interface{}) (*TaskEvent, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		payloadBytes = b
	}

	return &TaskEvent{
		ID:        uuid.New(),
		Type:      eventType,
		TaskID:    taskID,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *TaskEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows the engine to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *TaskEvent) error
}
