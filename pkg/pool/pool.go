package pool

import (
	"runtime"
	"sync"
)

// WorkerPool owns a set of workers draining one priority queue. Every
// submitted task is executed by exactly one worker.
type WorkerPool struct {
	queue *Queue
	wg    sync.WaitGroup

	mu        sync.Mutex
	idle      sync.Cond
	workers   int
	pending   int // submitted but not yet finished
	executing int // currently running a task body
	stopped   bool
}

// Stats is a point-in-time snapshot of pool state
type Stats struct {
	Workers int
	Queued  int
	Active  int
	Idle    int
}

// NewWorkerPool creates and starts a pool with the given number of workers.
// A count of zero or less uses the hardware thread count, with a floor of two.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = max(2, runtime.NumCPU())
	}

	p := &WorkerPool{
		queue:   NewQueue(),
		workers: workers,
	}
	p.idle.L = &p.mu

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// worker loops popping and executing tasks until the queue is stopped
func (p *WorkerPool) worker() {
	defer p.wg.Done()

	for {
		task, ok := p.queue.Pop()
		if !ok {
			return
		}

		p.mu.Lock()
		p.executing++
		p.mu.Unlock()

		task.Execute()

		p.mu.Lock()
		p.executing--
		p.finishLocked()
		p.mu.Unlock()
	}
}

// finishLocked retires one pending task and wakes WaitAll callers once the
// pool is fully drained. Callers must hold p.mu.
func (p *WorkerPool) finishLocked() {
	p.pending--
	if p.pending < 0 {
		panic("pool: pending task count went negative")
	}
	if p.pending == 0 {
		p.idle.Broadcast()
	}
}

// Submit enqueues a callable at the given priority and returns a handle the
// caller can await for the value or a propagated failure.
func (p *WorkerPool) Submit(priority Priority, run func() (any, error)) (*Result, error) {
	task := NewTask(priority, run)

	p.mu.Lock()
	p.pending++
	p.mu.Unlock()

	if err := p.queue.Push(task); err != nil {
		p.mu.Lock()
		p.finishLocked()
		p.mu.Unlock()
		return nil, err
	}
	return task.Result(), nil
}

// WaitAll blocks until the queue is empty and no task is executing. It is a
// coarse barrier between submission batches, not a shutdown.
func (p *WorkerPool) WaitAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.pending > 0 {
		p.idle.Wait()
	}
}

// Stop shuts the pool down: it stops the queue, joins every worker, and
// fails any tasks that never ran so their waiters unblock. Idempotent.
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	p.queue.Stop()
	p.wg.Wait()

	for {
		task, ok := p.queue.TryPop()
		if !ok {
			break
		}
		task.fail(ErrStopped)
		p.mu.Lock()
		p.finishLocked()
		p.mu.Unlock()
	}
}

// Workers returns the number of workers in the pool
func (p *WorkerPool) Workers() int {
	return p.workers
}

// Stats returns a snapshot of current pool state
func (p *WorkerPool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Workers: p.workers,
		Queued:  p.queue.Len(),
		Active:  p.executing,
		Idle:    p.workers - p.executing,
	}
}
