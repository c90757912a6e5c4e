package runner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phdev/briefing/internal/logging"
	"github.com/phdev/briefing/internal/runtime"
	"github.com/phdev/briefing/pkg/domain"
	"github.com/phdev/briefing/pkg/ports"
	"github.com/phdev/briefing/pkg/scheduler"
	"github.com/phdev/briefing/pkg/session"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("runner is closed")

// Runner is the conversation front ends drive.
var _ ports.Conversation = (*Runner)(nil)

// errStale aborts a scheduled tick whose session moved to a new epoch.
var errStale = errors.New("stale scheduled transition")

// slot is the single scheduler task armed for a session.
type slot struct {
	task  scheduler.Task
	epoch int
	gen   uint64
}

// Runner owns the live side of the conversation: persistence, timers and
// change notification. It is safe for concurrent use; operations on one
// session are serialised by the session manager.
type Runner struct {
	engine   *runtime.Engine
	sessions *session.Manager

	sched     scheduler.Scheduler
	ownsSched bool
	now       func() time.Time
	newID     func() string
	logger    *slog.Logger
	subBuffer int

	mu      sync.Mutex
	slots   map[string]slot
	gen     uint64
	subs    map[string]map[uint64]chan domain.View
	nextSub uint64
	closed  bool
}

// New creates a Runner over an engine and a session manager.
func New(engine *runtime.Engine, sessions *session.Manager, opts ...Option) *Runner {
	r := &Runner{
		engine:    engine,
		sessions:  sessions,
		now:       time.Now,
		newID:     uuid.NewString,
		logger:    logging.NewNop(),
		subBuffer: DefaultSubscriberBuffer,
		slots:     make(map[string]slot),
		subs:      make(map[string]map[uint64]chan domain.View),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.sched == nil {
		r.sched = scheduler.NewTimer(scheduler.WithLogger(r.logger))
		r.ownsSched = true
	}
	return r
}

// Engine returns the conversation engine.
func (r *Runner) Engine() *runtime.Engine {
	return r.engine
}

// Sessions returns the session manager.
func (r *Runner) Sessions() *session.Manager {
	return r.sessions
}

// Start opens a new session and returns its first view.
func (r *Runner) Start(ctx context.Context, seed domain.Seed) (domain.View, error) {
	if r.isClosed() {
		return domain.View{}, ErrClosed
	}
	id := r.newID()

	s, _, err := r.sessions.LoadOrStart(ctx, id, func(ctx context.Context) (*domain.Session, error) {
		return r.engine.Start(ctx, id, seed)
	}, r.arm)
	if err != nil {
		return domain.View{}, err
	}
	r.logger.InfoContext(ctx, "session opened", "session_id", id, "seeded", seed.Seeded())
	return r.engine.Render(s), nil
}

// View returns the current view, applying any transition already due.
func (r *Runner) View(ctx context.Context, id string) (domain.View, error) {
	return r.apply(ctx, id, false, func(s *domain.Session) (*domain.Session, error) {
		return s, nil
	})
}

// SubmitText answers a text-input step.
func (r *Runner) SubmitText(ctx context.Context, id, text string) (domain.View, error) {
	return r.apply(ctx, id, true, func(s *domain.Session) (*domain.Session, error) {
		return r.engine.SubmitText(ctx, s, text)
	})
}

// SelectOption picks an option or a control of the live turn.
func (r *Runner) SelectOption(ctx context.Context, id, value string) (domain.View, error) {
	return r.apply(ctx, id, true, func(s *domain.Session) (*domain.Session, error) {
		return r.engine.SelectOption(ctx, s, value)
	})
}

// Toggle flips a checklist value.
func (r *Runner) Toggle(ctx context.Context, id, value string) (domain.View, error) {
	return r.apply(ctx, id, true, func(s *domain.Session) (*domain.Session, error) {
		return r.engine.ToggleSelection(ctx, s, value)
	})
}

// Confirm stores the checklist selection.
func (r *Runner) Confirm(ctx context.Context, id string) (domain.View, error) {
	return r.apply(ctx, id, true, func(s *domain.Session) (*domain.Session, error) {
		return r.engine.ConfirmSelection(ctx, s)
	})
}

// Control applies restart, review, finish or a correction answer.
func (r *Runner) Control(ctx context.Context, id string, c domain.Control) (domain.View, error) {
	return r.apply(ctx, id, true, func(s *domain.Session) (*domain.Session, error) {
		return r.engine.Control(ctx, s, c)
	})
}

// Delete drops a session, its timer and its subscribers.
func (r *Runner) Delete(ctx context.Context, id string) error {
	if r.isClosed() {
		return ErrClosed
	}
	if err := r.sessions.Delete(ctx, id); err != nil {
		return err
	}

	r.mu.Lock()
	if sl, ok := r.slots[id]; ok {
		sl.task.Cancel()
		delete(r.slots, id)
	}
	for _, ch := range r.subs[id] {
		close(ch)
	}
	delete(r.subs, id)
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "session deleted", "session_id", id)
	return nil
}

// Subscribe streams the views of a session as it changes, including changes
// made by timers. Slow subscribers miss intermediate views, never the
// channel close. The returned cancel func must be called to unsubscribe.
func (r *Runner) Subscribe(ctx context.Context, id string) (<-chan domain.View, func(), error) {
	if _, err := r.sessions.Load(ctx, id); err != nil {
		return nil, nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, nil, ErrClosed
	}

	r.nextSub++
	key := r.nextSub
	ch := make(chan domain.View, r.subBuffer)
	if r.subs[id] == nil {
		r.subs[id] = make(map[uint64]chan domain.View)
	}
	r.subs[id][key] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if c, ok := r.subs[id][key]; ok {
				close(c)
				delete(r.subs[id], key)
				if len(r.subs[id]) == 0 {
					delete(r.subs, id)
				}
			}
		})
	}
	return ch, cancel, nil
}

// Close cancels every armed task and closes all subscriptions. Sessions stay
// in the store; their pending transitions apply on the next View.
func (r *Runner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	for id, sl := range r.slots {
		sl.task.Cancel()
		delete(r.slots, id)
	}
	for id, subs := range r.subs {
		for _, ch := range subs {
			close(ch)
		}
		delete(r.subs, id)
	}
	r.mu.Unlock()

	if t, ok := r.sched.(*scheduler.Timer); ok && r.ownsSched {
		t.Stop()
	}
}

// apply runs op under the session lock after catching up on due
// transitions, persists the result, re-arms the timer and broadcasts.
// Reads only broadcast when catching up changed the session.
func (r *Runner) apply(ctx context.Context, id string, write bool, op func(*domain.Session) (*domain.Session, error)) (domain.View, error) {
	if r.isClosed() {
		return domain.View{}, ErrClosed
	}

	var before *domain.Session
	next, err := r.sessions.Update(ctx, id, func(s *domain.Session) (*domain.Session, error) {
		before = s
		caught, err := r.engine.Tick(ctx, s, r.now())
		if err != nil {
			return nil, err
		}
		return op(caught)
	}, r.arm)
	if err != nil {
		return domain.View{}, err
	}

	view := r.engine.Render(next)
	if write || !domain.Diff(before, next).IsEmpty() {
		r.broadcast(id, view)
	}
	return view, nil
}

// arm replaces the session's task with one for its pending transition.
// Must be called while holding the session lock, once the session is saved.
func (r *Runner) arm(s *domain.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sl, ok := r.slots[s.ID]; ok {
		sl.task.Cancel()
		delete(r.slots, s.ID)
	}
	if r.closed || s.Pending == nil {
		return
	}

	delay := s.Pending.DueAt.Sub(r.now())
	if delay < 0 {
		delay = 0
	}
	r.gen++
	gen, id, epoch := r.gen, s.ID, s.Epoch
	task := r.sched.After(delay, func() {
		r.fire(id, epoch, gen)
	})
	r.slots[id] = slot{task: task, epoch: epoch, gen: gen}
}

// fire is the scheduler callback: it reloads the session, ticks it and
// re-arms for whatever is pending next.
func (r *Runner) fire(id string, epoch int, gen uint64) {
	r.mu.Lock()
	if sl, ok := r.slots[id]; ok && sl.gen == gen {
		delete(r.slots, id)
	}
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return
	}

	ctx := context.Background()
	next, err := r.sessions.Update(ctx, id, func(s *domain.Session) (*domain.Session, error) {
		if s.Epoch != epoch {
			return nil, errStale
		}
		return r.engine.Tick(ctx, s, r.now())
	}, r.arm)
	switch {
	case errors.Is(err, errStale), errors.Is(err, domain.ErrSessionNotFound):
		r.logger.Debug("scheduled transition dropped", "session_id", id, "epoch", epoch, "reason", err)
		return
	case err != nil:
		r.logger.Error("scheduled transition failed", "session_id", id, "err", err)
		return
	}

	r.broadcast(id, r.engine.Render(next))
}

func (r *Runner) broadcast(id string, view domain.View) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ch := range r.subs[id] {
		select {
		case ch <- view:
		default:
			r.logger.Warn("subscriber is slow, view dropped", "session_id", id)
		}
	}
}

func (r *Runner) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Armed reports whether a timer is waiting for the session.
func (r *Runner) Armed(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.slots[id]
	return ok
}
