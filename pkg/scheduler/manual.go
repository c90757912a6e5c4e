package scheduler

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Scheduler driven by a virtual clock. Nothing runs until the
// clock is advanced, which makes delay-dependent behaviour deterministic in
// tests.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	queued []*manualTask
}

type manualTask struct {
	owner *Manual
	seq   uint64
	due   time.Time
	fn    func()
}

func (mt *manualTask) Cancel() bool {
	m := mt.owner
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, q := range m.queued {
		if q == mt {
			m.queued = append(m.queued[:i], m.queued[i+1:]...)
			return true
		}
	}
	return false
}

// NewManual creates a Manual scheduler whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the virtual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// After queues fn to run once the clock reaches now+d.
func (m *Manual) After(d time.Duration, fn func()) Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	t := &manualTask{owner: m, seq: m.seq, due: m.now.Add(d), fn: fn}
	m.queued = append(m.queued, t)
	sort.SliceStable(m.queued, func(i, j int) bool {
		if m.queued[i].due.Equal(m.queued[j].due) {
			return m.queued[i].seq < m.queued[j].seq
		}
		return m.queued[i].due.Before(m.queued[j].due)
	})
	return t
}

// Pending returns the number of queued tasks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queued)
}

// Advance moves the clock forward by d, running every task that falls due
// in order. Tasks scheduled by a running task are honoured if they fall due
// within the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		t := m.popDue(target)
		if t == nil {
			break
		}
		t.fn()
	}

	m.mu.Lock()
	if m.now.Before(target) {
		m.now = target
	}
	m.mu.Unlock()
}

// Flush runs queued tasks until none remain, moving the clock to each due
// time. It returns the number of tasks run.
func (m *Manual) Flush() int {
	ran := 0
	for {
		m.mu.Lock()
		if len(m.queued) == 0 {
			m.mu.Unlock()
			return ran
		}
		due := m.queued[0].due
		m.mu.Unlock()

		t := m.popDue(due)
		if t == nil {
			continue
		}
		t.fn()
		ran++
	}
}

func (m *Manual) popDue(limit time.Time) *manualTask {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.queued) == 0 || m.queued[0].due.After(limit) {
		return nil
	}
	t := m.queued[0]
	m.queued = m.queued[1:]
	if t.due.After(m.now) {
		m.now = t.due
	}
	return t
}
