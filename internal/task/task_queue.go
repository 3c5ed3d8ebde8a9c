package task

import (
	"container/heap"
	"fmt"
	"log/slog"
	"sync"
)

// queueEntry pairs a task with its insertion sequence so that tasks of
// equal priority keep arrival order.
type queueEntry struct {
	task *Task
	seq  uint64
}

// entryHeap is a min-heap ordered by (priority, seq).
type entryHeap []queueEntry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].task.Priority != h[j].task.Priority {
		return h[i].task.Priority < h[j].task.Priority
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) {
	entry, ok := x.(queueEntry)
	if !ok {
		panic("entryHeap.Push: invalid type assertion")
	}
	*h = append(*h, entry)
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = queueEntry{}
	*h = old[:n-1]
	return entry
}

// TaskQueue is a thread-safe priority queue of pending tasks. Lower priority
// values are dequeued first; ties are broken by arrival order. It satisfies
// both TaskQueueReader and TaskQueueWriter.
type TaskQueue struct {
	mu      sync.Mutex
	entries entryHeap
	nextSeq uint64
	maxSize int
	closed  bool

	// ready holds at most one pending wake-up for idle workers
	ready chan struct{}

	logger *slog.Logger
}

// NewTaskQueue creates a new task queue. A maxSize of zero or less leaves
// the queue unbounded.
func NewTaskQueue(maxSize int, logger *slog.Logger) *TaskQueue {
	if maxSize < 0 {
		maxSize = 0
	}
	return &TaskQueue{
		entries: make(entryHeap, 0),
		maxSize: maxSize,
		ready:   make(chan struct{}, 1),
		logger:  logger.With("component", "task_queue"),
	}
}

// Push adds a task to the queue. It never blocks.
// Returns ErrQueueFull if the queue is at capacity or ErrQueueClosed after Close.
func (q *TaskQueue) Push(task *Task) error {
	if task == nil {
		return ErrNilTask
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	if q.maxSize > 0 && len(q.entries) >= q.maxSize {
		q.mu.Unlock()
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, q.maxSize)
	}
	heap.Push(&q.entries, queueEntry{task: task, seq: q.nextSeq})
	q.nextSeq++
	queueLen := len(q.entries)
	q.mu.Unlock()

	q.signal()

	q.logger.Debug("task enqueued",
		"task_id", task.ID,
		"priority", task.Priority,
		"queue_len", queueLen)
	return nil
}

// Pop removes and returns the most urgent task, or nil if the queue is empty.
// It never blocks.
func (q *TaskQueue) Pop() *Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return nil
	}
	entry, _ := heap.Pop(&q.entries).(queueEntry)
	return entry.task
}

// Size returns the number of queued tasks at the time of the call.
func (q *TaskQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Ready returns a channel that receives a value after a push. Consumers
// should treat it as a hint and always Pop to find out whether work exists.
func (q *TaskQueue) Ready() <-chan struct{} {
	return q.ready
}

// Signal wakes one idle consumer, if any is waiting.
func (q *TaskQueue) Signal() {
	q.signal()
}

func (q *TaskQueue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Close prevents further pushes. Tasks already queued stay queued.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		q.logger.Info("task queue closed", "queue_len", len(q.entries))
	}
}

// Closed reports whether Close has been called.
func (q *TaskQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
