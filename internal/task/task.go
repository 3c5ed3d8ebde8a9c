package task

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// rank orders statuses so transitions can only move forward.
func (s TaskStatus) rank() int {
	switch s {
	case TaskStatusPending:
		return 0
	case TaskStatusRunning:
		return 1
	case TaskStatusCompleted, TaskStatusFailed:
		return 2
	default:
		return -1
	}
}

// Task is a unit of submitted work. It is created by the Dispatcher in the
// pending state, owned by the queue until a worker claims it, and owned
// exclusively by that worker afterwards.
type Task struct {
	ID          uuid.UUID
	Payload     json.RawMessage
	Priority    int
	Status      TaskStatus
	SubmittedAt time.Time
	CompletedAt time.Time
}

// NewTask creates a pending task with a fresh identifier.
func NewTask(payload json.RawMessage, priority int) *Task {
	return &Task{
		ID:          uuid.New(),
		Payload:     payload,
		Priority:    priority,
		Status:      TaskStatusPending,
		SubmittedAt: time.Now(),
	}
}

func (t *Task) transition(to TaskStatus) error {
	if to.rank() != t.Status.rank()+1 {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, to)
	}
	t.Status = to
	return nil
}

// MarkRunning moves a pending task to running.
func (t *Task) MarkRunning() error {
	return t.transition(TaskStatusRunning)
}

// MarkCompleted moves a running task to completed and stamps CompletedAt.
func (t *Task) MarkCompleted(at time.Time) error {
	if err := t.transition(TaskStatusCompleted); err != nil {
		return err
	}
	t.CompletedAt = at
	return nil
}

// MarkFailed moves a running task to failed and stamps CompletedAt.
func (t *Task) MarkFailed(at time.Time) error {
	if err := t.transition(TaskStatusFailed); err != nil {
		return err
	}
	t.CompletedAt = at
	return nil
}

// Executor performs the unit of work behind a task.
// Version: 1.0
type Executor interface {
	// Execute runs the task to completion. It is called exactly once per
	// claimed task and never concurrently for the same task.
	Execute(ctx context.Context, task *Task) error
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(ctx context.Context, task *Task) error

// Execute calls f(ctx, task).
func (f ExecutorFunc) Execute(ctx context.Context, task *Task) error {
	return f(ctx, task)
}

// TaskQueueReader provides the consuming side of the queue to workers
// Version: 1.0
type TaskQueueReader interface {
	// Pop removes and returns the most urgent task, or nil if none is queued
	Pop() *Task

	// Ready returns a channel that is signalled when work may be available
	Ready() <-chan struct{}

	// Signal wakes one idle consumer so that remaining work is picked up
	Signal()
}

// TaskQueueWriter provides write access to the task queue
// allowing the dispatcher to enqueue tasks for processing
// Version: 1.0
type TaskQueueWriter interface {
	// Push adds a task to the queue for processing
	// Returns an error if the queue is full or closed
	Push(task *Task) error

	// Size returns the number of queued tasks
	Size() int

	// Close closes the task queue, preventing further task submission
	Close()
}
