package tui

import (
	"github.com/charmbracelet/glamour"
)

// Renderer turns bot text into terminal output.
type Renderer func(string) (string, error)

// Plain returns text unchanged.
func Plain(s string) (string, error) {
	return s, nil
}

// NewRenderer returns a glamour renderer with a style matching the
// terminal background, falling back to Plain if glamour fails to start.
func NewRenderer(width int) Renderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return Plain
	}
	return r.Render
}
