package pool

import "fmt"

// Priority orders tasks in the queue. Lower values are more urgent.
type Priority int

const (
	PriorityHigh Priority = iota
	PriorityNormal
	PriorityLow
)

// String returns a human-readable priority name
func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// Task is a deferred unit of work with a priority and a result handle.
// The queue owns it until a worker picks it up; the result handle is shared
// between the submitter and the executing worker.
type Task struct {
	priority Priority
	seq      uint64 // arrival order, breaks ties between equal priorities
	index    int    // heap bookkeeping
	run      func() (any, error)
	result   *Result
}

// NewTask creates a task around a callable body
func NewTask(priority Priority, run func() (any, error)) *Task {
	return &Task{
		priority: priority,
		run:      run,
		result:   &Result{done: make(chan struct{})},
	}
}

// Priority returns the task's scheduling priority
func (t *Task) Priority() Priority {
	return t.priority
}

// Result returns the handle the submitter can await
func (t *Task) Result() *Result {
	return t.result
}

// Execute runs the task body exactly once. A panic in the body is captured
// into the result so the executing worker survives.
func (t *Task) Execute() {
	defer func() {
		if rec := recover(); rec != nil {
			t.result.err = fmt.Errorf("%w: %v", ErrTaskPanicked, rec)
		}
		close(t.result.done)
	}()
	t.result.value, t.result.err = t.run()
}

// fail completes the result without running the body
func (t *Task) fail(err error) {
	t.result.err = err
	close(t.result.done)
}

// Result carries a task's value or failure to the submitter
type Result struct {
	done  chan struct{}
	value any
	err   error
}

// Wait blocks until the task has completed and returns its value or error
func (r *Result) Wait() (any, error) {
	<-r.done
	return r.value, r.err
}

// Done reports without blocking whether the result is available
func (r *Result) Done() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}
