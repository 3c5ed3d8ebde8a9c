package task

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// SimulatedExecutorConfig holds the duration policy for SimulatedExecutor
type SimulatedExecutorConfig struct {
	// BaseDelay is the simulated duration of a task. Zero makes every task instant.
	BaseDelay time.Duration

	// ScaleByPriority scales BaseDelay by priority/ReferencePriority so that
	// more urgent tasks run shorter
	ScaleByPriority bool

	// ReferencePriority is the priority that maps to exactly BaseDelay.
	// If zero or negative, defaults to 5
	ReferencePriority int

	// MinDelay is the floor applied to scaled durations
	MinDelay time.Duration
}

// DefaultSimulatedExecutorConfig returns a SimulatedExecutorConfig with reasonable defaults
func DefaultSimulatedExecutorConfig() SimulatedExecutorConfig {
	return SimulatedExecutorConfig{
		BaseDelay:         2 * time.Second,
		ScaleByPriority:   false,
		ReferencePriority: 5,
		MinDelay:          50 * time.Millisecond,
	}
}

// SimulatedExecutor stands in for real task logic: it validates the payload
// and then waits for a duration derived from the task's priority.
type SimulatedExecutor struct {
	config SimulatedExecutorConfig
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewSimulatedExecutor creates a SimulatedExecutor with the given policy.
func NewSimulatedExecutor(config SimulatedExecutorConfig) *SimulatedExecutor {
	if config.ReferencePriority <= 0 {
		config.ReferencePriority = 5
	}
	if config.MinDelay < 0 {
		config.MinDelay = 0
	}
	return &SimulatedExecutor{
		config: config,
		sleep:  sleepContext,
	}
}

// Duration returns how long a task with the given priority runs.
func (e *SimulatedExecutor) Duration(priority int) time.Duration {
	if e.config.BaseDelay <= 0 {
		return 0
	}
	if !e.config.ScaleByPriority {
		return e.config.BaseDelay
	}

	factor := max(priority, 1)
	d := e.config.BaseDelay * time.Duration(factor) / time.Duration(e.config.ReferencePriority)
	return max(d, e.config.MinDelay)
}

// Execute validates the payload and simulates the work.
func (e *SimulatedExecutor) Execute(ctx context.Context, task *Task) error {
	if err := ValidatePayload(task.Payload); err != nil {
		return err
	}
	return e.sleep(ctx, e.Duration(task.Priority))
}

// ValidatePayload checks that a payload carries a usable JSON value.
func ValidatePayload(payload json.RawMessage) error {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return fmt.Errorf("%w: payload is empty", ErrValidation)
	}
	if !json.Valid(trimmed) {
		return fmt.Errorf("%w: payload is not valid JSON", ErrValidation)
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return fmt.Errorf("%w: payload is null", ErrValidation)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ Executor = (*SimulatedExecutor)(nil)
