package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/phdev/briefing/internal/logging"
)

// Timer is a Scheduler backed by time.AfterFunc. It tracks its active tasks
// so Stop can cancel everything on shutdown.
type Timer struct {
	mu     sync.Mutex
	tasks  map[uint64]*time.Timer
	nextID uint64
	closed bool
	logger *slog.Logger
}

// TimerOption configures a Timer.
type TimerOption func(*Timer)

// WithLogger sets the logger for scheduling events.
func WithLogger(logger *slog.Logger) TimerOption {
	return func(t *Timer) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTimer creates a Timer.
func NewTimer(opts ...TimerOption) *Timer {
	t := &Timer{
		tasks:  make(map[uint64]*time.Timer),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type timerTask struct {
	owner *Timer
	id    uint64
}

func (tt *timerTask) Cancel() bool {
	return tt.owner.cancel(tt.id)
}

// After schedules fn to run after d. A stopped Timer returns a task that
// never runs.
func (t *Timer) After(d time.Duration, fn func()) Task {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	id := t.nextID
	task := &timerTask{owner: t, id: id}
	if t.closed {
		return task
	}

	t.tasks[id] = time.AfterFunc(d, func() {
		t.mu.Lock()
		_, live := t.tasks[id]
		delete(t.tasks, id)
		t.mu.Unlock()
		if !live {
			return
		}
		t.logger.Debug("running scheduled task", "id", id)
		fn()
	})
	t.logger.Debug("task scheduled", "id", id, "delay", d)
	return task
}

func (t *Timer) cancel(id uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	timer, ok := t.tasks[id]
	if !ok {
		return false
	}
	delete(t.tasks, id)
	return timer.Stop()
}

// Active returns the number of tasks waiting to run.
func (t *Timer) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tasks)
}

// Stop cancels every pending task and refuses new ones.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, timer := range t.tasks {
		timer.Stop()
		delete(t.tasks, id)
	}
	t.closed = true
	t.logger.Debug("timer stopped")
}
