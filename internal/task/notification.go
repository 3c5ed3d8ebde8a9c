package task

import (
	"context"
	"log/slog"

	"github.com/phrazzld/threadflow/internal/events"
)

// NotificationSink accepts completion records from workers and delivers
// them to zero or more observers. Delivery is best effort: no
// acknowledgement, no retry. Notify must return promptly no matter how slow
// the observers are.
type NotificationSink interface {
	Notify(ctx context.Context, rec CompletionRecord)
}

// NopSink discards every record.
type NopSink struct{}

// Notify does nothing.
func (NopSink) Notify(context.Context, CompletionRecord) {}

// TrackerSink is the poll-based sink: it records completions into a
// CompletionTracker and observers pull them with Since.
type TrackerSink struct {
	tracker *CompletionTracker
}

// NewTrackerSink creates a sink that feeds the given tracker.
func NewTrackerSink(tracker *CompletionTracker) *TrackerSink {
	return &TrackerSink{tracker: tracker}
}

// Notify records the completion.
func (s *TrackerSink) Notify(_ context.Context, rec CompletionRecord) {
	s.tracker.RecordWithStatus(rec.TaskID, rec.CompletedAt, rec.Status)
}

// EmitterSink is the push-based sink: it turns each record into an
// events.CompletionEvent and hands it to an emitter, whose handlers forward
// it to live subscribers.
type EmitterSink struct {
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewEmitterSink creates a sink that publishes through the given emitter.
func NewEmitterSink(emitter events.EventEmitter, logger *slog.Logger) *EmitterSink {
	return &EmitterSink{
		emitter: emitter,
		logger:  logger.With("component", "emitter_sink"),
	}
}

// Notify emits the completion event. Subscriber errors are logged only.
func (s *EmitterSink) Notify(ctx context.Context, rec CompletionRecord) {
	event := events.NewCompletionEvent(rec.TaskID, string(rec.Status), rec.CompletedAt)
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Debug("completion event not delivered to every subscriber",
			"task_id", rec.TaskID,
			"error", err)
	}
}

// MultiSink forwards each record to every sink in order.
type MultiSink []NotificationSink

// Notify calls Notify on each sink.
func (m MultiSink) Notify(ctx context.Context, rec CompletionRecord) {
	for _, sink := range m {
		sink.Notify(ctx, rec)
	}
}

var (
	_ NotificationSink = NopSink{}
	_ NotificationSink = (*TrackerSink)(nil)
	_ NotificationSink = (*EmitterSink)(nil)
	_ NotificationSink = MultiSink(nil)
)
