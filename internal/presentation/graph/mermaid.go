package graph

import (
	"fmt"
	"strings"

	"github.com/phdev/briefing/pkg/domain"
	"github.com/phdev/briefing/pkg/flow"
)

// Overlay contains session state to highlight on the graph.
type Overlay struct {
	Visited []domain.StepID
	Current domain.StepID
}

// OverlayFor builds an overlay from the turns of a view.
func OverlayFor(v domain.View) *Overlay {
	o := &Overlay{Current: v.StepID}
	for _, turn := range v.Turns {
		if turn.StepID != "" {
			o.Visited = append(o.Visited, turn.StepID)
		}
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the table.
// Node shapes follow the step mode:
// - Entry points: ((Circle))
// - Text input: [/Parallelogram/]
// - Choices: {Rhombus}
// - Info card: [[Subroutine]]
// - Terminal: ([Stadium])
// Labelled edges come from fixed options with their own successor. Steps
// with computed options only show their default edge.
func GenerateMermaid(t *flow.Table, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	entries := make(map[domain.StepID]bool)
	for _, id := range t.Entries().IDs() {
		entries[id] = true
	}

	for _, step := range t.Steps() {
		id := sanitizeMermaidID(string(step.ID))
		opener, closer := shape(step, entries[step.ID])

		label := string(step.ID)
		if step.Optional {
			label += " <br/> (opcional)"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, label, closer)

		if step.Next != "" {
			arrow := "-->"
			if step.Mode == domain.ModeInfoCard {
				arrow = "-. ⏱️ .->"
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", id, arrow, sanitizeMermaidID(string(step.Next)))
		}
		for _, opt := range step.Options.Declared() {
			if opt.Next == "" || opt.Control != domain.ControlNone {
				continue
			}
			label := strings.ReplaceAll(opt.Label, "\"", "'")
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", id, label, sanitizeMermaidID(string(opt.Next)))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on light fills under both themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, v := range overlay.Visited {
			safe := sanitizeMermaidID(string(v))
			if safe != "" && !seen[safe] {
				seen[safe] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safe)
			}
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(string(overlay.Current)))
		}
	}

	return sb.String()
}

func shape(step domain.Step, entry bool) (string, string) {
	switch {
	case entry:
		return "((", "))"
	case step.Mode == domain.ModeTerminal:
		return "([", "])"
	case step.Mode == domain.ModeInfoCard:
		return "[[", "]]"
	case step.Mode == domain.ModeTextInput:
		return "[/", "/]"
	case step.Mode.HasOptions():
		return "{", "}"
	}
	return "[", "]"
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
