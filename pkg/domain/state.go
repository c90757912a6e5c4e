package domain

import (
	"slices"
	"time"
)

// Phase defines what the session is doing between visitor actions.
type Phase string

const (
	// PhaseTyping is the "bot is typing" suspension before a step is shown.
	PhaseTyping Phase = "typing"
	// PhasePresenting covers the self-advancing info-card sequence.
	PhasePresenting Phase = "presenting"
	// PhaseAwaitingInput means the live step accepts visitor input.
	PhaseAwaitingInput Phase = "awaiting-input"
	// PhaseFinished is the sink: the terminal step has been shown.
	PhaseFinished Phase = "finished"
)

// Suspended reports whether visitor input must be ignored.
func (p Phase) Suspended() bool {
	return p == PhaseTyping || p == PhasePresenting
}

// PendingKind names a delayed transition owned by the engine.
type PendingKind string

const (
	PendingReveal      PendingKind = "reveal"
	PendingProcessCard PendingKind = "process-card"
	PendingAutoAdvance PendingKind = "auto-advance"
)

// PendingTransition is a transition scheduled for DueAt.
type PendingTransition struct {
	Kind   PendingKind `json:"kind"`
	StepID StepID      `json:"stepId"`
	DueAt  time.Time   `json:"dueAt"`
}

// Seed is the external context a conversation may start with.
type Seed struct {
	ProjectType string `json:"projectType,omitempty"`
}

// Seeded reports whether the seed carries context.
func (s Seed) Seeded() bool {
	return s.ProjectType != ""
}

// Correction is a cleaned answer waiting for the visitor's confirmation.
type Correction struct {
	StepID   StepID `json:"stepId"`
	Field    Field  `json:"field"`
	Original string `json:"original"`
	Cleaned  string `json:"cleaned"`
	Message  string `json:"message"`
}

// Notice is the last validation message surfaced to the visitor.
type Notice struct {
	StepID  StepID `json:"stepId"`
	Message string `json:"message"`
	// Blocking is true when the answer was rejected.
	Blocking bool `json:"blocking"`
}

// Session is the complete, serialisable state of one conversation.
type Session struct {
	ID            string   `json:"id"`
	Seed          Seed     `json:"seed"`
	CurrentStepID StepID   `json:"currentStepId"`
	Phase         Phase    `json:"phase"`
	Draft         Draft    `json:"draft"`
	Transcript    []Turn   `json:"transcript"`
	Scratch       []string `json:"scratch,omitempty"`

	Pending    *PendingTransition `json:"pending,omitempty"`
	Prefill    string             `json:"prefill,omitempty"`
	Correction *Correction        `json:"correction,omitempty"`
	Notice     *Notice            `json:"notice,omitempty"`
	HandoffURL string             `json:"handoffUrl,omitempty"`

	// Epoch increases on every start, restart and review. Scheduled work
	// carrying an older epoch is stale.
	Epoch int `json:"epoch"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Sealed carries the encrypted session when the store encrypts at rest.
	// Every other field except ID and timestamps is empty in that case.
	Sealed []byte `json:"sealed,omitempty"`
}

// NewSession creates an empty session. The engine enters the first step.
func NewSession(id string, seed Seed, now time.Time) *Session {
	return &Session{
		ID:        id,
		Seed:      seed,
		Phase:     PhaseTyping,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Snapshot returns a deep copy safe for concurrent reads.
func (s *Session) Snapshot() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Draft = s.Draft.Clone()
	c.Transcript = make([]Turn, len(s.Transcript))
	for i, t := range s.Transcript {
		t.Options = slices.Clone(t.Options)
		c.Transcript[i] = t
	}
	c.Scratch = slices.Clone(s.Scratch)
	c.Sealed = slices.Clone(s.Sealed)
	if s.Pending != nil {
		p := *s.Pending
		c.Pending = &p
	}
	if s.Correction != nil {
		corr := *s.Correction
		c.Correction = &corr
	}
	if s.Notice != nil {
		n := *s.Notice
		c.Notice = &n
	}
	return &c
}

// AppendTurn adds a turn and assigns its sequence number.
func (s *Session) AppendTurn(t Turn) {
	t.ID = len(s.Transcript) + 1
	s.Transcript = append(s.Transcript, t)
}

// LastTurn returns the most recent turn, if any.
func (s *Session) LastTurn() (Turn, bool) {
	if len(s.Transcript) == 0 {
		return Turn{}, false
	}
	return s.Transcript[len(s.Transcript)-1], true
}

// Selected reports whether value is in the multi-select scratch set.
func (s *Session) Selected(value string) bool {
	return slices.Contains(s.Scratch, value)
}
