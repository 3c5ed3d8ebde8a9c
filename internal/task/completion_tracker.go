package task

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultHistorySize is the number of completion records retained when no
// capacity is configured.
const DefaultHistorySize = 100

// CompletionRecord is a retained fact that a task finished at a given time.
type CompletionRecord struct {
	TaskID      uuid.UUID  `json:"task_id"`
	CompletedAt time.Time  `json:"completed_at"`
	Status      TaskStatus `json:"status"`
}

// CompletionTracker keeps the most recent completion records in a
// fixed-capacity ring. Once full, each insert evicts the oldest record.
type CompletionTracker struct {
	mu      sync.RWMutex
	records []CompletionRecord
	next    int // index the next record is written to
	count   int
	total   uint64
}

// NewCompletionTracker creates a tracker that retains up to capacity records.
// A capacity of zero or less uses DefaultHistorySize.
func NewCompletionTracker(capacity int) *CompletionTracker {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &CompletionTracker{
		records: make([]CompletionRecord, capacity),
	}
}

// Record stores a completed task.
func (t *CompletionTracker) Record(taskID uuid.UUID, at time.Time) {
	t.RecordWithStatus(taskID, at, TaskStatusCompleted)
}

// RecordWithStatus stores a finished task with an explicit terminal status.
func (t *CompletionTracker) RecordWithStatus(taskID uuid.UUID, at time.Time, status TaskStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.records[t.next] = CompletionRecord{TaskID: taskID, CompletedAt: at, Status: status}
	t.next = (t.next + 1) % len(t.records)
	if t.count < len(t.records) {
		t.count++
	}
	t.total++
}

// Since returns the retained records completed strictly after since,
// most recent first. A zero since returns the whole retained history.
func (t *CompletionTracker) Since(since time.Time) []CompletionRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()

	capacity := len(t.records)
	result := make([]CompletionRecord, 0, t.count)
	for i := 0; i < t.count; i++ {
		idx := (t.next - 1 - i + capacity) % capacity
		rec := t.records[idx]
		if !since.IsZero() && !rec.CompletedAt.After(since) {
			continue
		}
		result = append(result, rec)
	}
	return result
}

// Len returns the number of retained records.
func (t *CompletionTracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

// Capacity returns the maximum number of retained records.
func (t *CompletionTracker) Capacity() int {
	return len(t.records)
}

// Total returns the number of records ever inserted, including evicted ones.
func (t *CompletionTracker) Total() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.total
}
