package runtime

import (
	"slices"

	"github.com/phdev/briefing/pkg/domain"
)

// Render projects a session into the view a presentation layer draws.
// Only the last bot turn is live, and only while the session awaits input;
// every earlier turn is frozen history.
func (e *Engine) Render(s *domain.Session) domain.View {
	v := domain.View{
		SessionID:  s.ID,
		StepID:     s.CurrentStepID,
		Phase:      s.Phase,
		Typing:     s.Phase == domain.PhaseTyping,
		Selected:   slices.Clone(s.Scratch),
		Record:     s.Draft.Clone(),
		HandoffURL: s.HandoffURL,
		Finished:   s.Phase == domain.PhaseFinished,
		Turns:      make([]domain.TurnView, len(s.Transcript)),
	}
	if s.Correction != nil {
		c := *s.Correction
		v.Correction = &c
	}
	if s.Notice != nil {
		n := *s.Notice
		v.Notice = &n
	}

	last := len(s.Transcript) - 1
	for i, t := range s.Transcript {
		t.Options = slices.Clone(t.Options)
		v.Turns[i] = domain.TurnView{
			Turn:   t,
			Latest: i == last,
			Live:   i == last && t.Author == domain.AuthorBot && s.Phase == domain.PhaseAwaitingInput,
		}
	}

	step, err := e.current(s)
	if err != nil {
		return v
	}
	v.Mode = step.Mode

	if step.Mode == domain.ModeTextInput && s.Phase == domain.PhaseAwaitingInput && s.Correction == nil {
		v.Input = &domain.InputView{
			Placeholder: step.Placeholder,
			Prefill:     s.Prefill,
			Optional:    step.Optional,
		}
	}
	return v
}
