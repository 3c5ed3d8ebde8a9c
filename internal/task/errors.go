package task

import "errors"

// Common errors returned by the task package
var (
	// ErrQueueFull is returned when the queue has reached its configured capacity.
	// Nothing is enqueued when it is returned.
	ErrQueueFull = errors.New("task queue is full")

	// ErrQueueClosed is returned when a task is pushed after the queue was closed.
	ErrQueueClosed = errors.New("task queue is closed")

	// ErrNilTask is returned when a nil task is pushed.
	ErrNilTask = errors.New("task is nil")

	// ErrValidation is returned when a task's payload is missing required structure.
	// Tasks failing validation are dropped, never retried.
	ErrValidation = errors.New("task validation failed")

	// ErrInvalidTransition is returned when a status change would move a task backwards.
	ErrInvalidTransition = errors.New("invalid task status transition")
)
