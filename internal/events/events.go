package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventTypeTaskComplete is the type carried by completion events.
const EventTypeTaskComplete = "task_complete"

// CompletionEvent tells observers that a task reached a terminal state.
// It has no dependency on the task package so that subscribers can live
// anywhere in the tree.
type CompletionEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type indicates the kind of event
	Type string `json:"type"`

	// TaskID identifies the finished task
	TaskID uuid.UUID `json:"task_id"`

	// Status is the terminal status of the task
	Status string `json:"status"`

	// CompletedAt is the timestamp when the task finished
	CompletedAt time.Time `json:"completed_at"`
}

// NewCompletionEvent creates a CompletionEvent for the given task.
func NewCompletionEvent(taskID uuid.UUID, status string, completedAt time.Time) *CompletionEvent {
	return &CompletionEvent{
		ID:          uuid.New(),
		Type:        EventTypeTaskComplete,
		TaskID:      taskID,
		Status:      status,
		CompletedAt: completedAt,
	}
}

// EventHandler defines an interface for components that receive events.
// Handlers are called on the worker's goroutine and must return quickly;
// anything slow belongs behind a buffer owned by the handler.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *CompletionEvent) error
}

// HandlerFunc adapts a plain function to the EventHandler interface.
type HandlerFunc func(ctx context.Context, event *CompletionEvent) error

// HandleEvent calls f(ctx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, event *CompletionEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows the scheduler to publish events without knowledge of subscribers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *CompletionEvent) error
}
