package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/panics"
)

const (
	// DefaultPollInterval bounds how long an idle worker sleeps before it
	// re-checks the queue without having been signalled.
	DefaultPollInterval = 100 * time.Millisecond

	// MaxPollInterval is the largest accepted poll interval.
	MaxPollInterval = 200 * time.Millisecond
)

// WorkerPool manages a fixed set of worker goroutines that drain a task
// queue. Shutdown is cooperative: workers observe it between tasks, and a
// claimed task always runs to completion.
type WorkerPool struct {
	// taskQueue provides read access to the tasks to be processed
	taskQueue TaskQueueReader

	// executor performs each task's unit of work
	executor Executor

	// sink is notified once for every completed task
	sink NotificationSink

	// workerCount is the number of concurrent workers to start
	workerCount int

	// pollInterval bounds an idle worker's wait between queue checks
	pollInterval time.Duration

	// wg tracks active worker goroutines for clean shutdown
	wg sync.WaitGroup

	// ctx is cancelled to signal shutdown; it never reaches Execute
	ctx    context.Context
	cancel context.CancelFunc

	startOnce sync.Once
	running   atomic.Bool
	active    atomic.Int64

	// logger for structured logging
	logger *slog.Logger

	// errorHandler is called when a task execution fails
	// If nil, errors are only logged
	handlerMu    sync.RWMutex
	errorHandler func(task *Task, err error)

	now func() time.Time
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start
	// If zero or negative, defaults to 1
	WorkerCount int

	// PollInterval bounds how long an idle worker waits without a signal
	// If zero, negative or above MaxPollInterval, defaults to DefaultPollInterval
	PollInterval time.Duration
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig with reasonable defaults
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		WorkerCount:  2,
		PollInterval: DefaultPollInterval,
	}
}

// NewWorkerPool creates a new worker pool with the specified configuration.
// A nil sink discards completion notifications.
func NewWorkerPool(
	taskQueue TaskQueueReader,
	executor Executor,
	sink NotificationSink,
	config WorkerPoolConfig,
	logger *slog.Logger,
) *WorkerPool {
	logger = logger.With("component", "worker_pool")

	// Apply defaults for invalid config values
	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	pollInterval := config.PollInterval
	if pollInterval <= 0 || pollInterval > MaxPollInterval {
		pollInterval = DefaultPollInterval
	}

	if sink == nil {
		sink = NopSink{}
	}

	// Create a cancelable context for shutdown coordination
	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		taskQueue:    taskQueue,
		executor:     executor,
		sink:         sink,
		workerCount:  workerCount,
		pollInterval: pollInterval,
		ctx:          ctx,
		cancel:       cancel,
		logger:       logger,
		now:          time.Now,
	}
}

// SetErrorHandler allows setting a custom error handler for task execution failures
func (p *WorkerPool) SetErrorHandler(handler func(task *Task, err error)) {
	p.handlerMu.Lock()
	defer p.handlerMu.Unlock()
	p.errorHandler = handler
}

// Start launches the worker goroutines. Calling it again, or after Stop, does nothing.
func (p *WorkerPool) Start() {
	p.startOnce.Do(func() {
		if p.ctx.Err() != nil {
			return
		}
		p.running.Store(true)
		for i := 0; i < p.workerCount; i++ {
			p.wg.Add(1)
			go p.worker(i)
		}
		p.logger.Info("worker pool started", "worker_count", p.workerCount)
	})
}

// Stop signals every worker to exit and waits for in-flight tasks to
// finish. Tasks still queued are left in the queue.
func (p *WorkerPool) Stop() {
	p.cancel()
	p.wg.Wait()
	if p.running.CompareAndSwap(true, false) {
		p.logger.Info("worker pool stopped")
	}
}

// WorkerCount returns the number of workers the pool runs.
func (p *WorkerPool) WorkerCount() int {
	return p.workerCount
}

// ActiveWorkers returns the number of workers currently executing a task.
func (p *WorkerPool) ActiveWorkers() int {
	return int(p.active.Load())
}

// Running reports whether the pool has been started and not yet stopped.
func (p *WorkerPool) Running() bool {
	return p.running.Load()
}

// worker claims, executes and reports tasks until shutdown
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	logger := p.logger.With("worker_id", id)
	logger.Debug("starting worker")

	for {
		// Shutdown is only observed between tasks
		if p.ctx.Err() != nil {
			logger.Debug("stopping worker")
			return
		}

		task := p.taskQueue.Pop()
		if task == nil {
			select {
			case <-p.ctx.Done():
				logger.Debug("stopping worker")
				return
			case <-p.taskQueue.Ready():
			case <-time.After(p.pollInterval):
			}
			continue
		}

		// Pass the wake-up on so an idle sibling checks for remaining work
		p.taskQueue.Signal()

		p.processTask(task, id)
	}
}

// processTask handles execution of a single claimed task
func (p *WorkerPool) processTask(task *Task, workerID int) {
	logger := p.logger.With(
		"task_id", task.ID,
		"priority", task.Priority,
		"worker_id", workerID,
	)

	if err := task.MarkRunning(); err != nil {
		logger.Error("claimed task is not pending, dropping", "status", task.Status, "error", err)
		return
	}

	p.active.Add(1)
	defer p.active.Add(-1)

	logger.Info("processing task")
	startedAt := p.now()

	err := p.execute(task)
	finishedAt := p.now()

	if err != nil {
		// Failed tasks are dropped, never re-queued
		if markErr := task.MarkFailed(finishedAt); markErr != nil {
			logger.Error("failed to mark task as failed", "error", markErr)
		}
		logger.Error("task execution failed, dropping task", "error", err)
		p.handleError(task, err)
		return
	}

	if err := task.MarkCompleted(finishedAt); err != nil {
		logger.Error("failed to mark task as completed", "error", err)
		return
	}

	logger.Info("task completed successfully", "duration", finishedAt.Sub(startedAt))

	p.sink.Notify(context.Background(), CompletionRecord{
		TaskID:      task.ID,
		CompletedAt: task.CompletedAt,
		Status:      task.Status,
	})
}

// execute runs the executor and converts a panic into an error.
// Execute always gets a background context so shutdown never interrupts it.
func (p *WorkerPool) execute(task *Task) error {
	var err error
	var pc panics.Catcher
	pc.Try(func() {
		err = p.executor.Execute(context.Background(), task)
	})
	if recovered := pc.Recovered(); recovered != nil {
		return fmt.Errorf("task panicked: %w", recovered.AsError())
	}
	return err
}

func (p *WorkerPool) handleError(task *Task, err error) {
	p.handlerMu.RLock()
	handler := p.errorHandler
	p.handlerMu.RUnlock()

	if handler != nil {
		handler(task, err)
	}
}
