package pool

import "errors"

var (
	// ErrStopped is returned when submitting to a stopped queue or pool
	ErrStopped = errors.New("pool: stopped")

	// ErrTaskPanicked wraps a panic recovered from a task body
	ErrTaskPanicked = errors.New("pool: task panicked")
)
