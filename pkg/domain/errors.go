package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

var (
	// ErrBusy is returned for visitor input during a typing or info-card window.
	ErrBusy = errors.New("session is busy")
	// ErrFinished is returned for input after the terminal step.
	ErrFinished = errors.New("conversation finished")
	// ErrWrongMode is returned when an action does not fit the current step.
	ErrWrongMode = errors.New("action not allowed for current step")
	// ErrUnknownOption is returned when a value is not among the live options.
	ErrUnknownOption = errors.New("unknown option")
	// ErrUnknownStep indicates a table authoring bug.
	ErrUnknownStep = errors.New("unknown step")
	// ErrUnknownPackage is returned for a seed naming no catalog package.
	ErrUnknownPackage = errors.New("unknown package")
	ErrUnknownControl = errors.New("unknown control")
	ErrUnknownField   = errors.New("unknown field")
	// ErrNotAtSummary is returned when finish is requested before the summary.
	ErrNotAtSummary = errors.New("finish is only available at the summary")
	// ErrNoCorrection is returned for accept/retype without a pending correction.
	ErrNoCorrection = errors.New("no correction pending")
)
