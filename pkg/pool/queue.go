package pool

import (
	"container/heap"
	"sync"
)

// taskHeap orders tasks by priority, then by arrival order
type taskHeap []*Task

var _ heap.Interface = (*taskHeap)(nil)

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	task := x.(*Task)
	task.index = len(*h)
	*h = append(*h, task)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	task := old[n-1]
	old[n-1] = nil
	task.index = -1
	*h = old[:n-1]
	return task
}

// Queue is a thread-safe priority queue of pending tasks. Push never blocks;
// Pop blocks until a task is available or the queue is stopped.
type Queue struct {
	mu      sync.Mutex
	ready   sync.Cond
	tasks   taskHeap
	nextSeq uint64
	stopped bool
}

// NewQueue creates an empty task queue
func NewQueue() *Queue {
	q := &Queue{}
	q.ready.L = &q.mu
	return q
}

// Push enqueues a task without blocking. It fails with ErrStopped once the
// queue has been stopped.
func (q *Queue) Push(task *Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return ErrStopped
	}

	task.seq = q.nextSeq
	q.nextSeq++
	heap.Push(&q.tasks, task)
	q.ready.Signal()
	return nil
}

// Pop blocks the caller until a task is available, returning the most urgent
// one. After Stop it returns immediately with no task, even if tasks remain
// queued; workers use this to shut down.
func (q *Queue) Pop() (*Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.tasks) == 0 && !q.stopped {
		q.ready.Wait()
	}
	if q.stopped {
		return nil, false
	}
	return heap.Pop(&q.tasks).(*Task), true
}

// TryPop returns the most urgent task without blocking. Unlike Pop it keeps
// serving queued tasks after Stop, which lets the owner drain leftovers.
func (q *Queue) TryPop() (*Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tasks) == 0 {
		return nil, false
	}
	return heap.Pop(&q.tasks).(*Task), true
}

// Stop wakes every blocked Pop and makes future Pops return immediately.
// It is idempotent.
func (q *Queue) Stop() {
	q.mu.Lock()
	q.stopped = true
	q.mu.Unlock()
	q.ready.Broadcast()
}

// Len returns the number of queued tasks
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}
