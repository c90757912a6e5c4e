package domain

// StepID identifies a step in the conversation graph.
type StepID string

// Mode defines how a step is presented and what response it expects.
type Mode string

const (
	// ModeTextInput displays a message and waits for free text.
	ModeTextInput Mode = "text-input"
	// ModeSingleChoice displays a message with buttons; one click answers it.
	ModeSingleChoice Mode = "single-choice"
	// ModeMultiChoice displays a checklist confirmed as a whole.
	ModeMultiChoice Mode = "multi-choice"
	// ModeInfoCard displays a message plus the process card and advances on its own.
	ModeInfoCard Mode = "info-card"
	// ModeSummary displays the collected record with control options.
	ModeSummary Mode = "summary"
	// ModeTerminal is the sink step. It has no successor.
	ModeTerminal Mode = "terminal"
)

// Interactive reports whether the step waits for the visitor.
func (m Mode) Interactive() bool {
	switch m {
	case ModeTextInput, ModeSingleChoice, ModeMultiChoice, ModeSummary:
		return true
	}
	return false
}

// HasOptions reports whether steps of this mode render option lists.
func (m Mode) HasOptions() bool {
	return m == ModeSingleChoice || m == ModeMultiChoice || m == ModeSummary
}

// ValidationTag selects a named validator for text-input steps.
type ValidationTag string

const (
	ValidateNone ValidationTag = ""
	ValidateName ValidationTag = "name"
	ValidateURLs ValidationTag = "urls"
)

// Option is one button or checklist entry of a step.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
	// Next overrides the step's default successor when set.
	Next StepID `json:"next,omitempty"`
	// Control marks out-of-band actions (restart, review, finish).
	// Control options never write into the record.
	Control Control `json:"control,omitempty"`
}

// Step is an immutable node of the conversation graph.
type Step struct {
	ID      StepID
	Mode    Mode
	Message Text
	Options OptionSet

	// Answer is the record field this step writes. Zero for steps that
	// collect nothing.
	Answer Field

	// Next is the default successor. Empty only for the terminal step.
	Next StepID

	Validation  ValidationTag
	Placeholder string

	// Optional lets a text-input step accept blank answers.
	Optional bool
	// MaxLength caps a text answer in bytes. Zero keeps the engine-wide limit.
	MaxLength int
}

// Successors returns every declared edge target of the step, default first.
func (s Step) Successors() []StepID {
	var out []StepID
	seen := make(map[StepID]bool)
	add := func(id StepID) {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	add(s.Next)
	for _, opt := range s.Options.Declared() {
		add(opt.Next)
	}
	return out
}
