package task

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCompletionTracker(t *testing.T) {
	assert.Equal(t, 10, NewCompletionTracker(10).Capacity())
	assert.Equal(t, DefaultHistorySize, NewCompletionTracker(0).Capacity())
	assert.Equal(t, DefaultHistorySize, NewCompletionTracker(-1).Capacity())
}

func TestCompletionTracker_BoundedHistory(t *testing.T) {
	const capacity = 10
	tracker := NewCompletionTracker(capacity)
	base := time.Unix(1_700_000_000, 0)

	ids := make([]uuid.UUID, capacity+5)
	for i := range ids {
		ids[i] = uuid.New()
		tracker.Record(ids[i], base.Add(time.Duration(i)*time.Second))
	}

	records := tracker.Since(time.Time{})
	require.Len(t, records, capacity)
	assert.Equal(t, capacity, tracker.Len())
	assert.Equal(t, uint64(capacity+5), tracker.Total())

	retained := make(map[uuid.UUID]bool, len(records))
	for _, rec := range records {
		retained[rec.TaskID] = true
	}
	for _, evicted := range ids[:5] {
		assert.False(t, retained[evicted], "oldest records should have been evicted")
	}
	for _, kept := range ids[5:] {
		assert.True(t, retained[kept])
	}
}

func TestCompletionTracker_MostRecentFirst(t *testing.T) {
	tracker := NewCompletionTracker(5)
	base := time.Unix(1_700_000_000, 0)

	ids := make([]uuid.UUID, 7)
	for i := range ids {
		ids[i] = uuid.New()
		tracker.Record(ids[i], base.Add(time.Duration(i)*time.Second))
	}

	records := tracker.Since(time.Time{})
	require.Len(t, records, 5)
	for i, rec := range records {
		assert.Equal(t, ids[6-i], rec.TaskID)
		assert.Equal(t, TaskStatusCompleted, rec.Status)
	}
}

func TestCompletionTracker_SinceFilter(t *testing.T) {
	tracker := NewCompletionTracker(10)
	t1 := time.Unix(1_700_000_000, 0)
	t2 := t1.Add(time.Second)
	t3 := t2.Add(time.Second)

	id1, id2, id3 := uuid.New(), uuid.New(), uuid.New()
	tracker.Record(id1, t1)
	tracker.Record(id2, t2)
	tracker.Record(id3, t3)

	records := tracker.Since(t2)
	require.Len(t, records, 1)
	assert.Equal(t, id3, records[0].TaskID)
	assert.Equal(t, t3, records[0].CompletedAt)

	assert.Empty(t, tracker.Since(t3))
	assert.Len(t, tracker.Since(t1.Add(-time.Second)), 3)
}

func TestCompletionTracker_EmptyHistory(t *testing.T) {
	tracker := NewCompletionTracker(3)

	records := tracker.Since(time.Time{})
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestCompletionTracker_RecordWithStatus(t *testing.T) {
	tracker := NewCompletionTracker(3)
	id := uuid.New()

	tracker.RecordWithStatus(id, time.Now(), TaskStatusFailed)

	records := tracker.Since(time.Time{})
	require.Len(t, records, 1)
	assert.Equal(t, TaskStatusFailed, records[0].Status)
}

func TestCompletionTracker_ConcurrentRecordAndSince(t *testing.T) {
	const capacity = 16
	tracker := NewCompletionTracker(capacity)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				tracker.Record(uuid.New(), time.Now())
			}
		}()
	}

	stop := make(chan struct{})
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			select {
			case <-stop:
				return
			default:
			}
			records := tracker.Since(time.Time{})
			assert.LessOrEqual(t, len(records), capacity)
			for _, rec := range records {
				assert.NotEqual(t, uuid.Nil, rec.TaskID, "reader observed a torn record")
			}
		}
	}()

	wg.Wait()
	close(stop)
	<-readerDone

	assert.Equal(t, capacity, tracker.Len())
	assert.Equal(t, uint64(2000), tracker.Total())
}
