package scheduler

import (
	"time"
)

// Task is a scheduled callback.
type Task interface {
	// Cancel prevents the callback from running. It reports whether the
	// call stopped the task; false means it already ran or was cancelled.
	Cancel() bool
}

// Scheduler runs callbacks after a delay. Callbacks run on a goroutine
// owned by the scheduler and must do their own locking.
type Scheduler interface {
	After(d time.Duration, fn func()) Task
}
