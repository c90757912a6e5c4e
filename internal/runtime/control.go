package runtime

import (
	"context"
	"fmt"

	"github.com/phdev/briefing/pkg/domain"
)

// Control applies an out-of-band action. Restart and review are accepted in
// any phase and discard pending work; the others need the live step.
func (e *Engine) Control(ctx context.Context, s *domain.Session, c domain.Control) (*domain.Session, error) {
	var (
		next *domain.Session
		err  error
	)
	switch c {
	case domain.ControlRestart:
		next, err = e.restart(ctx, s)
	case domain.ControlReview:
		next, err = e.review(ctx, s)
	case domain.ControlFinish:
		next, err = e.finish(ctx, s)
	case domain.ControlAccept:
		next, err = e.acceptCorrection(ctx, s)
	case domain.ControlRetype:
		next, err = e.retype(ctx, s)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownControl, c)
	}
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "control applied", "session_id", s.ID, "control", c, "from", s.CurrentStepID)
	if e.hooks.OnControl != nil {
		e.hooks.OnControl(ctx, &domain.ControlEvent{
			EventBase: e.event(domain.EventControl, s.ID),
			Control:   c,
			From:      s.CurrentStepID,
		})
	}
	return next, nil
}

// restart rebuilds the session from its seed. Nothing of the old transcript
// or record survives, and the epoch bump invalidates scheduled work.
func (e *Engine) restart(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	return e.reset(ctx, s, domain.Draft{}, "")
}

// review keeps only the visitor's name and re-enters data collection at the
// review entry, which never asks for identity again.
func (e *Engine) review(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	entry := e.table.Entries().Review
	if s.Draft.Name == "" || entry == "" {
		return e.restart(ctx, s)
	}
	return e.reset(ctx, s, domain.Draft{Name: s.Draft.Name}, entry)
}

func (e *Engine) reset(ctx context.Context, s *domain.Session, keep domain.Draft, entry domain.StepID) (*domain.Session, error) {
	seed := s.Seed
	if entry != "" {
		// Review asks for the package again.
		seed = domain.Seed{}
	}
	next, err := e.fresh(s.ID, seed, keep)
	if err != nil {
		return nil, err
	}
	next.Seed = s.Seed
	next.CreatedAt = s.CreatedAt
	next.Epoch = s.Epoch + 1

	if entry == "" {
		entry = e.table.Entries().Cold
		if next.Draft.ProjectType != "" && e.table.Entries().Seeded != "" {
			entry = e.table.Entries().Seeded
		}
	}
	if err := e.enter(ctx, next, entry, e.now()); err != nil {
		return nil, err
	}
	return next, nil
}

// finish builds the handoff link from the completed record and enters the
// terminal step.
func (e *Engine) finish(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	if err := guardInput(s); err != nil {
		return nil, err
	}
	step, err := e.current(s)
	if err != nil {
		return nil, err
	}
	if step.Mode != domain.ModeSummary {
		return nil, fmt.Errorf("%w: current step is '%s'", domain.ErrNotAtSummary, step.ID)
	}

	brief, err := s.Draft.Complete()
	if err != nil {
		return nil, err
	}

	now := e.now()
	link := e.target.Link(brief, now)

	next := s.Snapshot()
	next.Notice = nil
	label := "Enviar"
	if opt, ok := findOption(liveOptions(s), string(domain.ControlFinish)); ok {
		label = opt.Label
	}
	e.visitorSays(next, step, label)
	next.HandoffURL = link

	e.logger.InfoContext(ctx, "handoff link built", "session_id", s.ID, "project_type", brief.ProjectType)
	if e.hooks.OnHandoff != nil {
		e.hooks.OnHandoff(ctx, &domain.HandoffEvent{
			EventBase:   e.event(domain.EventHandoff, s.ID),
			ProjectType: brief.ProjectType,
			URL:         link,
		})
	}

	if err := e.enter(ctx, next, step.Next, now); err != nil {
		return nil, err
	}
	return next, nil
}

// acceptCorrection stores the cleaned value the visitor just confirmed.
func (e *Engine) acceptCorrection(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	if err := guardInput(s); err != nil {
		return nil, err
	}
	if s.Correction == nil {
		return nil, domain.ErrNoCorrection
	}
	step, err := e.current(s)
	if err != nil {
		return nil, err
	}

	next := s.Snapshot()
	cleaned := next.Correction.Cleaned
	next.Correction = nil
	next.Notice = nil
	e.visitorSays(next, step, EchoAccept)
	return e.answer(ctx, next, step, cleaned)
}

// retype drops the pending correction and asks for the answer again.
func (e *Engine) retype(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	if err := guardInput(s); err != nil {
		return nil, err
	}
	if s.Correction == nil {
		return nil, domain.ErrNoCorrection
	}
	step, err := e.current(s)
	if err != nil {
		return nil, err
	}

	next := s.Snapshot()
	next.Correction = nil
	next.Notice = nil
	e.visitorSays(next, step, EchoRetype)
	e.botNotice(next, step, MsgRetype, nil)
	return next, nil
}
