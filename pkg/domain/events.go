package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter        EventType = "step_enter"
	EventAnswer           EventType = "answer"
	EventValidationFailed EventType = "validation_failed"
	EventControl          EventType = "control"
	EventHandoff          EventType = "handoff"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// StepEvent is emitted when the engine enters a step.
type StepEvent struct {
	EventBase
	StepID StepID `json:"step_id"`
	Mode   Mode   `json:"mode"`
}

// AnswerEvent is emitted when a value is written into the record.
type AnswerEvent struct {
	EventBase
	StepID StepID `json:"step_id"`
	Field  Field  `json:"field"`
}

// ValidationEvent is emitted when a validator rejects or corrects input.
type ValidationEvent struct {
	EventBase
	StepID    StepID        `json:"step_id"`
	Tag       ValidationTag `json:"tag"`
	Corrected bool          `json:"corrected"`
	Message   string        `json:"message"`
}

// ControlEvent is emitted for restart, review and finish.
type ControlEvent struct {
	EventBase
	Control Control `json:"control"`
	From    StepID  `json:"from"`
}

// HandoffEvent is emitted when the deep link is built.
type HandoffEvent struct {
	EventBase
	ProjectType string `json:"project_type"`
	URL         string `json:"url"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStepEnter        func(context.Context, *StepEvent)
	OnAnswer           func(context.Context, *AnswerEvent)
	OnValidationFailed func(context.Context, *ValidationEvent)
	OnControl          func(context.Context, *ControlEvent)
	OnHandoff          func(context.Context, *HandoffEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStepEnter:        chain(h.OnStepEnter, other.OnStepEnter),
		OnAnswer:           chain(h.OnAnswer, other.OnAnswer),
		OnValidationFailed: chain(h.OnValidationFailed, other.OnValidationFailed),
		OnControl:          chain(h.OnControl, other.OnControl),
		OnHandoff:          chain(h.OnHandoff, other.OnHandoff),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
