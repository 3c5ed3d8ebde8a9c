package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/threadflow/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink captures every record it is notified with
type recordingSink struct {
	mu      sync.Mutex
	records []CompletionRecord
	notify  chan CompletionRecord
}

func newRecordingSink() *recordingSink {
	return &recordingSink{notify: make(chan CompletionRecord, 100)}
}

func (s *recordingSink) Notify(_ context.Context, rec CompletionRecord) {
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
	s.notify <- rec
}

func (s *recordingSink) Records() []CompletionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CompletionRecord, len(s.records))
	copy(out, s.records)
	return out
}

func TestTrackerSink(t *testing.T) {
	tracker := NewCompletionTracker(5)
	sink := NewTrackerSink(tracker)

	rec := CompletionRecord{TaskID: uuid.New(), CompletedAt: time.Now(), Status: TaskStatusCompleted}
	sink.Notify(context.Background(), rec)

	records := tracker.Since(time.Time{})
	require.Len(t, records, 1)
	assert.Equal(t, rec, records[0])
}

func TestEmitterSink(t *testing.T) {
	emitter := events.NewInMemoryEventEmitter(setupTestLogger())
	sink := NewEmitterSink(emitter, setupTestLogger())

	var received []*events.CompletionEvent
	emitter.RegisterHandler(events.HandlerFunc(func(_ context.Context, e *events.CompletionEvent) error {
		received = append(received, e)
		return nil
	}))
	emitter.RegisterHandler(events.HandlerFunc(func(context.Context, *events.CompletionEvent) error {
		return errors.New("subscriber gone")
	}))

	rec := CompletionRecord{TaskID: uuid.New(), CompletedAt: time.Unix(1_700_000_000, 0), Status: TaskStatusCompleted}
	sink.Notify(context.Background(), rec)

	require.Len(t, received, 1)
	assert.Equal(t, events.EventTypeTaskComplete, received[0].Type)
	assert.Equal(t, rec.TaskID, received[0].TaskID)
	assert.Equal(t, "completed", received[0].Status)
	assert.Equal(t, rec.CompletedAt, received[0].CompletedAt)
}

func TestMultiSink(t *testing.T) {
	first := newRecordingSink()
	second := newRecordingSink()
	sink := MultiSink{first, NopSink{}, second}

	rec := CompletionRecord{TaskID: uuid.New(), CompletedAt: time.Now(), Status: TaskStatusCompleted}
	sink.Notify(context.Background(), rec)

	assert.Equal(t, []CompletionRecord{rec}, first.Records())
	assert.Equal(t, []CompletionRecord{rec}, second.Records())
}
