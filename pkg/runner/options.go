package runner

import (
	"log/slog"
	"time"

	"github.com/phdev/briefing/pkg/scheduler"
)

// DefaultSubscriberBuffer is the number of views buffered per subscriber.
const DefaultSubscriberBuffer = 16

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithScheduler sets the scheduler that fires delayed transitions. The
// caller keeps ownership and must stop it.
func WithScheduler(s scheduler.Scheduler) Option {
	return func(r *Runner) {
		r.sched = s
		r.ownsSched = false
	}
}

// WithClock sets the time source passed to the engine's Tick.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithIDGenerator overrides how new session IDs are minted.
func WithIDGenerator(fn func() string) Option {
	return func(r *Runner) {
		r.newID = fn
	}
}

// WithSubscriberBuffer sets the channel capacity of Subscribe.
func WithSubscriberBuffer(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.subBuffer = n
		}
	}
}
