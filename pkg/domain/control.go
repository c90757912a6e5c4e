package domain

import "fmt"

// Control is an out-of-band action. Controls are dispatched before any
// graph option and never appear as edges of the flow.
type Control string

const (
	ControlNone Control = ""
	// ControlRestart discards the session and starts over with the same seed.
	ControlRestart Control = "restart"
	// ControlReview keeps the visitor's name and restarts data collection.
	ControlReview Control = "review"
	// ControlFinish builds the handoff link from the completed record.
	ControlFinish Control = "finish"
	// ControlAccept confirms a corrected text answer.
	ControlAccept Control = "accept"
	// ControlRetype rejects a corrected answer and asks again.
	ControlRetype Control = "retype"
)

// ParseControl maps a wire value to a Control.
// The empty string is not a control and yields ControlNone with an error.
func ParseControl(s string) (Control, error) {
	switch c := Control(s); c {
	case ControlRestart, ControlReview, ControlFinish, ControlAccept, ControlRetype:
		return c, nil
	}
	return ControlNone, fmt.Errorf("%w: %q", ErrUnknownControl, s)
}

// Global reports whether the control is accepted in any phase.
func (c Control) Global() bool {
	return c == ControlRestart || c == ControlReview
}
