package events

import (
	"context"
	"log/slog"
	"sync"
)

// registration wraps a handler so that identical handler values can be
// registered and removed independently.
type registration struct {
	handler EventHandler
}

// InMemoryEventEmitter is a concurrency-safe registry of event handlers
// that dispatches each event to every handler registered at emit time.
type InMemoryEventEmitter struct {
	handlers []*registration
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewInMemoryEventEmitter creates a new instance of InMemoryEventEmitter.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	return &InMemoryEventEmitter{
		handlers: make([]*registration, 0),
		logger:   logger.With("component", "in_memory_event_emitter"),
	}
}

// RegisterHandler adds a new event handler to receive events.
// The returned function removes the handler; calling it more than once is safe.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) func() {
	reg := &registration{handler: handler}

	e.mu.Lock()
	e.handlers = append(e.handlers, reg)
	count := len(e.handlers)
	e.mu.Unlock()

	e.logger.Debug("registered new event handler", "handler_count", count)

	var once sync.Once
	return func() {
		once.Do(func() { e.remove(reg) })
	}
}

func (e *InMemoryEventEmitter) remove(target *registration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, reg := range e.handlers {
		if reg == target {
			e.handlers = append(e.handlers[:i], e.handlers[i+1:]...)
			e.logger.Debug("unregistered event handler", "handler_count", len(e.handlers))
			return
		}
	}
}

// HandlerCount returns the number of registered handlers.
func (e *InMemoryEventEmitter) HandlerCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.handlers)
}

// EmitEvent publishes the given event to all registered handlers.
// If any handler returns an error, the event will still be sent to all other handlers,
// and the first error encountered will be returned.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *CompletionEvent) error {
	e.mu.RLock()
	handlers := make([]EventHandler, len(e.handlers))
	for i, reg := range e.handlers {
		handlers[i] = reg.handler
	}
	e.mu.RUnlock()

	e.logger.Debug("emitting event",
		"event_id", event.ID,
		"task_id", event.TaskID,
		"handler_count", len(handlers))

	if len(handlers) == 0 {
		return nil
	}

	var firstErr error
	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			e.logger.Warn("handler failed to process event",
				"error", err,
				"handler_index", i,
				"event_id", event.ID,
				"task_id", event.TaskID)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}
