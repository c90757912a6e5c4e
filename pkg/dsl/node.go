package dsl

import "github.com/phdev/briefing/pkg/domain"

// StepBuilder provides a fluent API for configuring a step.
type StepBuilder struct {
	step    domain.Step
	builder *Builder
}

// Say sets a fixed message.
func (s *StepBuilder) Say(message string) *StepBuilder {
	s.step.Message = domain.Static(message)
	return s
}

// SayFunc sets a message computed from the answer record.
func (s *StepBuilder) SayFunc(fn func(domain.Draft) string) *StepBuilder {
	s.step.Message = domain.Computed(fn)
	return s
}

// Input marks the step as free-text input saved into field.
func (s *StepBuilder) Input(field domain.Field) *StepBuilder {
	s.step.Mode = domain.ModeTextInput
	s.step.Answer = field
	return s
}

// Placeholder sets the hint shown in an empty input box.
func (s *StepBuilder) Placeholder(text string) *StepBuilder {
	s.step.Placeholder = text
	return s
}

// Validate attaches a named validator to a text input.
func (s *StepBuilder) Validate(tag domain.ValidationTag) *StepBuilder {
	s.step.Validation = tag
	return s
}

// MaxLength caps the answer size in bytes below the engine-wide limit.
func (s *StepBuilder) MaxLength(n int) *StepBuilder {
	s.step.MaxLength = n
	return s
}

// Optional lets a text input accept a blank answer.
func (s *StepBuilder) Optional() *StepBuilder {
	s.step.Optional = true
	return s
}

// Choice marks the step as single choice. field may be FieldNone for steps
// that only branch.
func (s *StepBuilder) Choice(field domain.Field, opts ...domain.Option) *StepBuilder {
	s.step.Mode = domain.ModeSingleChoice
	s.step.Answer = field
	s.step.Options = domain.Fixed(opts...)
	return s
}

// Checklist marks the step as multi choice with options derived from the record.
func (s *StepBuilder) Checklist(field domain.Field, fn func(domain.Draft) []domain.Option) *StepBuilder {
	s.step.Mode = domain.ModeMultiChoice
	s.step.Answer = field
	s.step.Options = domain.Dynamic(fn)
	return s
}

// Options replaces the step's options with a fixed list.
func (s *StepBuilder) Options(opts ...domain.Option) *StepBuilder {
	s.step.Options = domain.Fixed(opts...)
	return s
}

// Info marks the step as a self-advancing info card.
func (s *StepBuilder) Info() *StepBuilder {
	s.step.Mode = domain.ModeInfoCard
	return s
}

// Summary marks the step as the review summary offering control options.
func (s *StepBuilder) Summary(controls ...domain.Option) *StepBuilder {
	s.step.Mode = domain.ModeSummary
	s.step.Options = domain.Fixed(controls...)
	return s
}

// Go sets the default successor.
func (s *StepBuilder) Go(target domain.StepID) *StepBuilder {
	s.step.Next = target
	return s
}

// Terminal marks the step as the end of the flow.
func (s *StepBuilder) Terminal() *StepBuilder {
	s.step.Mode = domain.ModeTerminal
	s.step.Next = ""
	s.step.Options = domain.OptionSet{}
	return s
}

// Build returns the underlying domain.Step.
func (s *StepBuilder) Build() domain.Step {
	return s.step
}

// Opt is a shorthand for an ordinary option.
func Opt(label, value string, next domain.StepID) domain.Option {
	return domain.Option{Label: label, Value: value, Next: next}
}

// Control is a shorthand for a control option.
func Control(label string, c domain.Control) domain.Option {
	return domain.Option{Label: label, Value: string(c), Control: c}
}
