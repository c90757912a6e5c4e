package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/phdev/briefing/pkg/domain"
	"github.com/phdev/briefing/pkg/flow"
	"github.com/phdev/briefing/pkg/handoff"
)

// Pacing holds the artificial delays of the conversation.
type Pacing struct {
	// Typing is the "bot is typing" pause before every step.
	Typing time.Duration
	// Card is the pause between an info-card message and its process card.
	Card time.Duration
	// Read is the reading allowance before an info card advances on its own.
	Read time.Duration
}

// DefaultPacing matches the chat widget's timings.
var DefaultPacing = Pacing{
	Typing: 600 * time.Millisecond,
	Card:   800 * time.Millisecond,
	Read:   5 * time.Second,
}

// Policy decides what a failed validation does.
type Policy string

const (
	// PolicyHard keeps the visitor on the step until the answer validates.
	PolicyHard Policy = "hard"
	// PolicyAdvisory shows the message and moves on without storing the answer.
	PolicyAdvisory Policy = "advisory"
)

// SeedResolver maps a package reference to the title stored in the record.
type SeedResolver func(ref string) (string, bool)

// Engine is the conversation state machine. It holds no session state: every
// operation takes a session and returns a new one, leaving the input intact.
type Engine struct {
	table       *flow.Table
	pacing      Pacing
	policy      Policy
	maxInput    int
	target      handoff.Target
	processCard string
	resolveSeed SeedResolver
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	now         func() time.Time
}

// EngineOption defines a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithPacing overrides the conversation delays.
func WithPacing(p Pacing) EngineOption {
	return func(e *Engine) {
		e.pacing = p
	}
}

// WithPolicy sets the validation failure policy.
func WithPolicy(p Policy) EngineOption {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithMaxInputSize sets the byte ceiling for a text answer. Steps may
// declare a tighter one.
func WithMaxInputSize(n int) EngineOption {
	return func(e *Engine) {
		e.maxInput = n
	}
}

// WithTarget sets the messaging target of the handoff link.
func WithTarget(t handoff.Target) EngineOption {
	return func(e *Engine) {
		e.target = t
	}
}

// WithProcessCard sets the text of the card shown by info-card steps.
func WithProcessCard(text string) EngineOption {
	return func(e *Engine) {
		e.processCard = text
	}
}

// WithSeedResolver validates and normalises seeded package references.
func WithSeedResolver(fn SeedResolver) EngineOption {
	return func(e *Engine) {
		e.resolveSeed = fn
	}
}

// WithClock sets the time source used to schedule delays.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a new engine over a validated table.
func NewEngine(table *flow.Table, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		table:  table,
		pacing: DefaultPacing,
		policy: PolicyHard,
		target: handoff.Target{BaseURL: handoff.DefaultBaseURL, Recipient: handoff.DefaultRecipient},
		resolveSeed: func(ref string) (string, bool) {
			return ref, ref != ""
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.table == nil {
		return nil, fmt.Errorf("engine requires a flow table")
	}
	switch e.policy {
	case PolicyHard, PolicyAdvisory:
	default:
		return nil, fmt.Errorf("unknown validation policy %q", e.policy)
	}
	if err := e.target.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Table returns the flow the engine walks.
func (e *Engine) Table() *flow.Table {
	return e.table
}

// Start creates a session and enters the first step. An empty seed is a cold
// start; a seed naming a package writes it into the record and uses the
// seeded entry.
func (e *Engine) Start(ctx context.Context, id string, seed domain.Seed) (*domain.Session, error) {
	s, err := e.fresh(id, seed, domain.Draft{})
	if err != nil {
		return nil, err
	}
	s.Epoch = 1

	entry := e.table.Entries().Cold
	if s.Draft.ProjectType != "" && e.table.Entries().Seeded != "" {
		entry = e.table.Entries().Seeded
	}

	e.logger.InfoContext(ctx, "session started", "session_id", id, "seeded", seed.Seeded())
	if err := e.enter(ctx, s, entry, s.CreatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

// fresh builds an empty session for id, applying the seed.
func (e *Engine) fresh(id string, seed domain.Seed, keep domain.Draft) (*domain.Session, error) {
	s := domain.NewSession(id, seed, e.now())
	s.Draft = keep
	if seed.Seeded() {
		title, ok := e.resolveSeed(seed.ProjectType)
		if !ok {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownPackage, seed.ProjectType)
		}
		s.Seed.ProjectType = title
		if s.Draft.ProjectType == "" {
			s.Draft.ProjectType = title
		}
	}
	return s, nil
}

// Tick applies every pending transition due at or before now. Chained delays
// are measured from the previous due time, so a late tick catches up
// without stretching the pacing.
func (e *Engine) Tick(ctx context.Context, s *domain.Session, now time.Time) (*domain.Session, error) {
	next := s.Snapshot()
	changed := false

	for next.Pending != nil && !now.Before(next.Pending.DueAt) {
		p := *next.Pending
		next.Pending = nil
		changed = true

		step, err := e.table.Step(p.StepID)
		if err != nil {
			return nil, err
		}

		switch p.Kind {
		case domain.PendingReveal:
			e.reveal(next, step, p.DueAt)
		case domain.PendingProcessCard:
			next.AppendTurn(domain.Turn{
				Author: domain.AuthorBot,
				Kind:   domain.TurnProcessCard,
				StepID: step.ID,
				Mode:   step.Mode,
				Text:   e.processCard,
			})
			next.Pending = &domain.PendingTransition{
				Kind:   domain.PendingAutoAdvance,
				StepID: step.ID,
				DueAt:  p.DueAt.Add(e.pacing.Read),
			}
		case domain.PendingAutoAdvance:
			if err := e.enter(ctx, next, step.Next, p.DueAt); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unknown pending transition %q", p.Kind)
		}
	}

	if changed {
		next.UpdatedAt = now
	}
	return next, nil
}

// enter moves the session into the typing window of a step.
func (e *Engine) enter(ctx context.Context, s *domain.Session, id domain.StepID, base time.Time) error {
	step, err := e.table.Step(id)
	if err != nil {
		return err
	}

	s.CurrentStepID = step.ID
	s.Phase = domain.PhaseTyping
	s.Scratch = nil
	s.Prefill = ""
	s.Correction = nil
	s.Pending = &domain.PendingTransition{
		Kind:   domain.PendingReveal,
		StepID: step.ID,
		DueAt:  base.Add(e.pacing.Typing),
	}
	s.UpdatedAt = e.now()

	e.logger.DebugContext(ctx, "entering step", "session_id", s.ID, "step", step.ID, "mode", step.Mode)
	if e.hooks.OnStepEnter != nil {
		e.hooks.OnStepEnter(ctx, &domain.StepEvent{
			EventBase: e.event(domain.EventStepEnter, s.ID),
			StepID:    step.ID,
			Mode:      step.Mode,
		})
	}
	return nil
}

// reveal ends the typing window: the step's message becomes a transcript turn.
func (e *Engine) reveal(s *domain.Session, step domain.Step, at time.Time) {
	turn := domain.Turn{
		Author: domain.AuthorBot,
		Kind:   domain.TurnMessage,
		StepID: step.ID,
		Mode:   step.Mode,
		Text:   flow.ResolveMessage(step, s.Draft),
	}
	if step.Mode.HasOptions() {
		turn.Options = flow.ResolveOptions(step, s.Draft)
	}
	s.AppendTurn(turn)

	switch step.Mode {
	case domain.ModeInfoCard:
		s.Phase = domain.PhasePresenting
		s.Pending = &domain.PendingTransition{
			Kind:   domain.PendingProcessCard,
			StepID: step.ID,
			DueAt:  at.Add(e.pacing.Card),
		}
	case domain.ModeTerminal:
		s.Phase = domain.PhaseFinished
	case domain.ModeTextInput:
		// A value already in the record (review) pre-fills the input.
		s.Prefill = s.Draft.Get(step.Answer)
		s.Phase = domain.PhaseAwaitingInput
	default:
		s.Phase = domain.PhaseAwaitingInput
	}
}

func (e *Engine) event(t domain.EventType, sessionID string) domain.EventBase {
	return domain.EventBase{
		Timestamp: e.now(),
		Type:      t,
		SessionID: sessionID,
	}
}

// guardInput rejects visitor input outside the awaiting-input phase.
func guardInput(s *domain.Session) error {
	switch {
	case s.Phase == domain.PhaseFinished:
		return domain.ErrFinished
	case s.Phase.Suspended():
		return domain.ErrBusy
	}
	return nil
}

func (e *Engine) current(s *domain.Session) (domain.Step, error) {
	return e.table.Step(s.CurrentStepID)
}
