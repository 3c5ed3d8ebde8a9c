package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/threadflow/internal/events"
)

// DispatcherConfig holds configuration for the dispatcher
type DispatcherConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize caps the number of pending tasks. Zero leaves the queue unbounded
	QueueSize int

	// HistorySize is the number of completion records retained for polling
	HistorySize int

	// PollInterval bounds how long an idle worker waits without a signal
	PollInterval time.Duration
}

// DefaultDispatcherConfig returns a DispatcherConfig with reasonable defaults
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		WorkerCount:  2,
		QueueSize:    0,
		HistorySize:  DefaultHistorySize,
		PollInterval: DefaultPollInterval,
	}
}

// Stats is a point-in-time view of the dispatcher's state.
type Stats struct {
	Pending     int    `json:"pending"`
	Workers     int    `json:"workers"`
	Active      int    `json:"active"`
	Completed   uint64 `json:"completed"`
	Failed      uint64 `json:"failed"`
	Subscribers int    `json:"subscribers"`
	Running     bool   `json:"running"`
}

// Dispatcher binds the queue, the worker pool, the completion history and
// the subscriber registry behind a small API for the transport layer.
type Dispatcher struct {
	queue     *TaskQueue
	pool      *WorkerPool
	completed *CompletionTracker
	failed    *CompletionTracker
	emitter   *events.InMemoryEventEmitter
	logger    *slog.Logger
}

// NewDispatcher creates a Dispatcher. Workers are not started until Start.
func NewDispatcher(config DispatcherConfig, executor Executor, logger *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		queue:     NewTaskQueue(config.QueueSize, logger),
		completed: NewCompletionTracker(config.HistorySize),
		failed:    NewCompletionTracker(config.HistorySize),
		emitter:   events.NewInMemoryEventEmitter(logger),
		logger:    logger.With("component", "dispatcher"),
	}

	sink := MultiSink{
		NewTrackerSink(d.completed),
		NewEmitterSink(d.emitter, logger),
	}

	d.pool = NewWorkerPool(d.queue, executor, sink, WorkerPoolConfig{
		WorkerCount:  config.WorkerCount,
		PollInterval: config.PollInterval,
	}, logger)
	d.pool.SetErrorHandler(d.deadLetter)

	return d
}

// Submit enqueues a new pending task and returns its identifier.
// It fails only when the queue cannot accept more work, in which case
// nothing is enqueued.
func (d *Dispatcher) Submit(payload json.RawMessage, priority int) (uuid.UUID, error) {
	task := NewTask(payload, priority)
	if err := d.queue.Push(task); err != nil {
		return uuid.Nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	d.logger.Debug("task submitted",
		"task_id", task.ID,
		"priority", priority)
	return task.ID, nil
}

// PendingCount returns the number of tasks waiting to be claimed.
func (d *Dispatcher) PendingCount() int {
	return d.queue.Size()
}

// CompletedSince returns completion records newer than since, most recent
// first. A zero since returns the whole retained history.
func (d *Dispatcher) CompletedSince(since time.Time) []CompletionRecord {
	return d.completed.Since(since)
}

// FailedSince returns dead-letter records for dropped tasks newer than
// since, most recent first.
func (d *Dispatcher) FailedSince(since time.Time) []CompletionRecord {
	return d.failed.Since(since)
}

// RegisterSink subscribes a push observer to completion events. The
// returned function removes it again.
func (d *Dispatcher) RegisterSink(handler events.EventHandler) func() {
	return d.emitter.RegisterHandler(handler)
}

// Start launches the worker pool.
func (d *Dispatcher) Start() {
	d.pool.Start()
}

// Stop refuses new submissions, waits for in-flight tasks to finish and
// leaves still-queued tasks unprocessed.
func (d *Dispatcher) Stop() {
	d.queue.Close()
	d.pool.Stop()
	d.logger.Info("dispatcher stopped", "unprocessed_count", d.queue.Size())
}

// Stats returns a snapshot of the dispatcher's counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Pending:     d.queue.Size(),
		Workers:     d.pool.WorkerCount(),
		Active:      d.pool.ActiveWorkers(),
		Completed:   d.completed.Total(),
		Failed:      d.failed.Total(),
		Subscribers: d.emitter.HandlerCount(),
		Running:     d.pool.Running(),
	}
}

// deadLetter records a dropped task and tells push subscribers about it.
func (d *Dispatcher) deadLetter(task *Task, err error) {
	at := task.CompletedAt
	if at.IsZero() {
		at = time.Now()
	}
	d.failed.RecordWithStatus(task.ID, at, TaskStatusFailed)

	d.logger.Warn("task dropped",
		"task_id", task.ID,
		"priority", task.Priority,
		"error", err)

	event := events.NewCompletionEvent(task.ID, string(TaskStatusFailed), at)
	if err := d.emitter.EmitEvent(context.Background(), event); err != nil {
		d.logger.Debug("failure event not delivered to every subscriber",
			"task_id", task.ID,
			"error", err)
	}
}
