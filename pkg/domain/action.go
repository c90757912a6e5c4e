package domain

// Author identifies who produced a turn.
type Author string

const (
	AuthorBot     Author = "bot"
	AuthorVisitor Author = "visitor"
)

// TurnKind tells the presentation layer how to draw a turn.
type TurnKind string

const (
	// TurnMessage is a text bubble, possibly with options.
	TurnMessage TurnKind = "message"
	// TurnProcessCard is the non-text methodology card of info-card steps.
	TurnProcessCard TurnKind = "process-card"
	// TurnNotice is a validation or correction prompt.
	TurnNotice TurnKind = "notice"
)

// Turn is one entry of the append-only transcript.
type Turn struct {
	ID      int      `json:"id"`
	Author  Author   `json:"author"`
	Kind    TurnKind `json:"kind"`
	StepID  StepID   `json:"stepId,omitempty"`
	Mode    Mode     `json:"mode,omitempty"`
	Text    string   `json:"text"`
	Options []Option `json:"options,omitempty"`
}

// TurnView decorates a turn for rendering.
type TurnView struct {
	Turn
	// Live is true only for the turn whose controls accept input.
	Live bool `json:"live"`
	// Latest is true for the last turn of the transcript.
	Latest bool `json:"latest"`
}

// InputView describes the free-text box of a text-input step.
type InputView struct {
	Placeholder string `json:"placeholder,omitempty"`
	Prefill     string `json:"prefill,omitempty"`
	Optional    bool   `json:"optional,omitempty"`
}

// View is everything a presentation layer needs to draw a session without
// knowing the flow table.
type View struct {
	SessionID  string      `json:"sessionId"`
	StepID     StepID      `json:"stepId"`
	Mode       Mode        `json:"mode"`
	Phase      Phase       `json:"phase"`
	Typing     bool        `json:"typing"`
	Turns      []TurnView  `json:"turns"`
	Input      *InputView  `json:"input,omitempty"`
	Selected   []string    `json:"selected,omitempty"`
	Correction *Correction `json:"correction,omitempty"`
	Notice     *Notice     `json:"notice,omitempty"`
	Record     Draft       `json:"record"`
	HandoffURL string      `json:"handoffUrl,omitempty"`
	Finished   bool        `json:"finished"`
}

// LiveTurn returns the turn currently accepting input.
func (v View) LiveTurn() (TurnView, bool) {
	for i := len(v.Turns) - 1; i >= 0; i-- {
		if v.Turns[i].Live {
			return v.Turns[i], true
		}
	}
	return TurnView{}, false
}
