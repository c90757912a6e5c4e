package runtime

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/phdev/briefing/pkg/domain"
	"github.com/phdev/briefing/pkg/validation"
)

// Visitor-facing texts produced by the engine itself.
const (
	MsgBlankAnswer = "Por favor, digite uma resposta para continuarmos."
	MsgRetype      = "Sem problemas! Digite novamente, por favor."
	EchoSkipped    = "Nada a acrescentar."
	EchoAccept     = "✅ Sim, está correto"
	EchoRetype     = "✏️ Quero digitar novamente"
)

// correctionOptions are offered when a validator cleaned the visitor's text.
var correctionOptions = []domain.Option{
	{Label: EchoAccept, Value: string(domain.ControlAccept), Control: domain.ControlAccept},
	{Label: EchoRetype, Value: string(domain.ControlRetype), Control: domain.ControlRetype},
}

// ValidationError reports text that could not be accepted at all, such as
// oversized or malformed input. Answers that merely fail a validator are a
// re-prompt, not an error.
type ValidationError struct {
	StepID domain.StepID
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input for step '%s': %v", e.StepID, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// SubmitText answers the current text-input step.
func (e *Engine) SubmitText(ctx context.Context, s *domain.Session, raw string) (*domain.Session, error) {
	if err := guardInput(s); err != nil {
		return nil, err
	}
	step, err := e.current(s)
	if err != nil {
		return nil, err
	}
	if step.Mode != domain.ModeTextInput {
		return nil, fmt.Errorf("%w: step '%s' expects %s", domain.ErrWrongMode, step.ID, step.Mode)
	}

	clean, err := validation.Sanitize(raw, validation.Limit(e.maxInput, step.MaxLength))
	if err != nil {
		return nil, &ValidationError{StepID: step.ID, Err: err}
	}

	next := s.Snapshot()
	next.Notice = nil
	// Typing a new answer while a correction is pending discards it.
	next.Correction = nil

	value := strings.TrimSpace(clean)
	if value == "" {
		if !step.Optional {
			e.rePrompt(ctx, next, step, MsgBlankAnswer, "")
			return next, nil
		}
		e.visitorSays(next, step, EchoSkipped)
		return e.answer(ctx, next, step, "")
	}

	// The transcript keeps what the visitor typed; the record gets the trimmed value.
	e.visitorSays(next, step, clean)

	if step.Validation != domain.ValidateNone {
		validate, ok := validation.Lookup(step.Validation)
		if !ok {
			return nil, fmt.Errorf("step '%s' uses unknown validator '%s'", step.ID, step.Validation)
		}
		res := validate(value)

		if !res.Valid {
			e.emitValidation(ctx, next, step, res)
			if e.policy == PolicyHard {
				e.rePrompt(ctx, next, step, res.Message, value)
				return next, nil
			}
			// Advisory: warn and move on, leaving the field at its previous value.
			next.Notice = &domain.Notice{StepID: step.ID, Message: res.Message}
			e.botNotice(next, step, res.Message, nil)
			if err := e.enter(ctx, next, step.Next, e.now()); err != nil {
				return nil, err
			}
			return next, nil
		}

		if res.Corrected {
			e.emitValidation(ctx, next, step, res)
			next.Correction = &domain.Correction{
				StepID:   step.ID,
				Field:    step.Answer,
				Original: value,
				Cleaned:  res.Cleaned,
				Message:  res.Message,
			}
			e.botNotice(next, step, res.Message, correctionOptions)
			return next, nil
		}
		value = res.Cleaned
	}

	return e.answer(ctx, next, step, value)
}

// SelectOption handles a click on one of the live turn's options. Control
// values are dispatched before any graph option.
func (e *Engine) SelectOption(ctx context.Context, s *domain.Session, value string) (*domain.Session, error) {
	if c, err := domain.ParseControl(value); err == nil {
		return e.Control(ctx, s, c)
	}

	if err := guardInput(s); err != nil {
		return nil, err
	}
	step, err := e.current(s)
	if err != nil {
		return nil, err
	}
	if step.Mode != domain.ModeSingleChoice && step.Mode != domain.ModeSummary {
		return nil, fmt.Errorf("%w: step '%s' expects %s", domain.ErrWrongMode, step.ID, step.Mode)
	}

	opt, ok := findOption(liveOptions(s), value)
	if !ok {
		return nil, fmt.Errorf("%w: %q at step '%s'", domain.ErrUnknownOption, value, step.ID)
	}

	next := s.Snapshot()
	next.Notice = nil
	e.visitorSays(next, step, opt.Label)

	field := step.Answer
	if field == domain.FieldNone {
		// Branch-only steps still record a package picked from their options.
		if _, isPackage := e.resolveSeed(opt.Value); isPackage {
			field = domain.FieldProjectType
		}
	}
	if field != domain.FieldNone {
		if err := next.Draft.Set(field, opt.Value); err != nil {
			return nil, err
		}
		e.emitAnswer(ctx, next, step, field)
	}

	target := opt.Next
	if target == "" {
		target = step.Next
	}
	if err := e.enter(ctx, next, target, e.now()); err != nil {
		return nil, err
	}
	return next, nil
}

// ToggleSelection flips a checklist value. It never touches the transcript.
func (e *Engine) ToggleSelection(ctx context.Context, s *domain.Session, value string) (*domain.Session, error) {
	if err := guardInput(s); err != nil {
		return nil, err
	}
	step, err := e.current(s)
	if err != nil {
		return nil, err
	}
	if step.Mode != domain.ModeMultiChoice {
		return nil, fmt.Errorf("%w: step '%s' expects %s", domain.ErrWrongMode, step.ID, step.Mode)
	}
	if _, ok := findOption(liveOptions(s), value); !ok {
		return nil, fmt.Errorf("%w: %q at step '%s'", domain.ErrUnknownOption, value, step.ID)
	}

	next := s.Snapshot()
	if i := slices.Index(next.Scratch, value); i >= 0 {
		next.Scratch = slices.Delete(next.Scratch, i, i+1)
	} else {
		next.Scratch = append(next.Scratch, value)
	}
	next.UpdatedAt = e.now()
	return next, nil
}

// ConfirmSelection stores the checklist. An empty selection stores the
// baseline default instead of an empty list.
func (e *Engine) ConfirmSelection(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	if err := guardInput(s); err != nil {
		return nil, err
	}
	step, err := e.current(s)
	if err != nil {
		return nil, err
	}
	if step.Mode != domain.ModeMultiChoice {
		return nil, fmt.Errorf("%w: step '%s' expects %s", domain.ErrWrongMode, step.ID, step.Mode)
	}

	selections := slices.Clone(s.Scratch)
	if len(selections) == 0 {
		selections = []string{domain.DefaultFunctionality}
	}

	next := s.Snapshot()
	next.Notice = nil
	e.visitorSays(next, step, "Selecionados: "+strings.Join(selections, ", "))
	if err := next.Draft.SetList(step.Answer, selections); err != nil {
		return nil, err
	}
	next.Scratch = nil
	e.emitAnswer(ctx, next, step, step.Answer)

	if err := e.enter(ctx, next, step.Next, e.now()); err != nil {
		return nil, err
	}
	return next, nil
}

// answer writes value into the step's field and advances.
func (e *Engine) answer(ctx context.Context, s *domain.Session, step domain.Step, value string) (*domain.Session, error) {
	if err := s.Draft.Set(step.Answer, value); err != nil {
		return nil, err
	}
	e.emitAnswer(ctx, s, step, step.Answer)
	if err := e.enter(ctx, s, step.Next, e.now()); err != nil {
		return nil, err
	}
	return s, nil
}

// rePrompt keeps the visitor on the step with a blocking notice.
func (e *Engine) rePrompt(ctx context.Context, s *domain.Session, step domain.Step, message, prefill string) {
	e.logger.InfoContext(ctx, "answer rejected", "session_id", s.ID, "step", step.ID)
	s.Notice = &domain.Notice{StepID: step.ID, Message: message, Blocking: true}
	s.Prefill = prefill
	e.botNotice(s, step, message, nil)
}

func (e *Engine) visitorSays(s *domain.Session, step domain.Step, text string) {
	s.AppendTurn(domain.Turn{
		Author: domain.AuthorVisitor,
		Kind:   domain.TurnMessage,
		StepID: step.ID,
		Text:   text,
	})
	s.UpdatedAt = e.now()
}

func (e *Engine) botNotice(s *domain.Session, step domain.Step, text string, opts []domain.Option) {
	s.AppendTurn(domain.Turn{
		Author:  domain.AuthorBot,
		Kind:    domain.TurnNotice,
		StepID:  step.ID,
		Mode:    step.Mode,
		Text:    text,
		Options: slices.Clone(opts),
	})
	s.UpdatedAt = e.now()
}

func (e *Engine) emitAnswer(ctx context.Context, s *domain.Session, step domain.Step, field domain.Field) {
	if e.hooks.OnAnswer != nil {
		e.hooks.OnAnswer(ctx, &domain.AnswerEvent{
			EventBase: e.event(domain.EventAnswer, s.ID),
			StepID:    step.ID,
			Field:     field,
		})
	}
}

func (e *Engine) emitValidation(ctx context.Context, s *domain.Session, step domain.Step, res validation.Result) {
	if e.hooks.OnValidationFailed != nil {
		e.hooks.OnValidationFailed(ctx, &domain.ValidationEvent{
			EventBase: e.event(domain.EventValidationFailed, s.ID),
			StepID:    step.ID,
			Tag:       step.Validation,
			Corrected: res.Corrected,
			Message:   res.Message,
		})
	}
}

// liveOptions returns the options of the live bot turn of the current step.
func liveOptions(s *domain.Session) []domain.Option {
	for i := len(s.Transcript) - 1; i >= 0; i-- {
		t := s.Transcript[i]
		if t.Author != domain.AuthorBot || t.StepID != s.CurrentStepID {
			return nil
		}
		if t.Kind == domain.TurnMessage {
			return t.Options
		}
	}
	return nil
}

func findOption(opts []domain.Option, value string) (domain.Option, bool) {
	for _, o := range opts {
		if o.Value == value {
			return o, true
		}
	}
	return domain.Option{}, false
}
