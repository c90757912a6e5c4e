package flow

import (
	"fmt"
	"strings"

	"github.com/phdev/briefing/pkg/domain"
	"github.com/phdev/briefing/pkg/validation"
)

// IntegrityError lists every problem found in a flow definition.
type IntegrityError struct {
	Problems []string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("flow integrity check found %d errors:\n- %s", len(e.Problems), strings.Join(e.Problems, "\n- "))
}

// Validate checks a flow definition without building it:
// unique ids, resolvable successors, a single terminal step, mode shape,
// reachability from the entry steps and absence of cycles.
func Validate(entries Entries, steps []domain.Step) error {
	var problems []string
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	byID := make(map[domain.StepID]domain.Step, len(steps))
	var terminals []domain.StepID
	for _, s := range steps {
		if s.ID == "" {
			report("step with empty id")
			continue
		}
		if _, dup := byID[s.ID]; dup {
			report("duplicate step id '%s'", s.ID)
			continue
		}
		byID[s.ID] = s
		if s.Mode == domain.ModeTerminal {
			terminals = append(terminals, s.ID)
		}
	}

	if entries.Cold == "" {
		report("cold start entry is not set")
	}
	for _, id := range entries.IDs() {
		if _, ok := byID[id]; !ok {
			report("entry step '%s' does not exist", id)
		}
	}

	switch len(terminals) {
	case 0:
		report("no terminal step")
	case 1:
	default:
		report("multiple terminal steps: %v", terminals)
	}

	for _, s := range steps {
		if s.ID == "" {
			continue
		}
		problems = append(problems, checkShape(s)...)
		for _, target := range s.Successors() {
			if _, ok := byID[target]; !ok {
				report("step '%s' points to missing step '%s'", s.ID, target)
			}
		}
	}

	if len(problems) == 0 {
		problems = append(problems, checkReachability(entries, byID, steps)...)
		problems = append(problems, checkCycles(entries, byID)...)
	}

	if len(problems) > 0 {
		return &IntegrityError{Problems: problems}
	}
	return nil
}

func checkShape(s domain.Step) []string {
	var problems []string
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf("step '%s': "+format, append([]any{s.ID}, args...)...))
	}

	switch s.Mode {
	case domain.ModeTextInput:
		if s.Answer == domain.FieldNone {
			report("text input needs an answer field")
		}
		if !validation.Known(s.Validation) {
			report("unknown validation tag '%s'", s.Validation)
		}
	case domain.ModeSingleChoice:
		if s.Options.Empty() {
			report("single choice needs options")
		}
	case domain.ModeMultiChoice:
		if s.Options.Empty() {
			report("multi choice needs options")
		}
		if s.Answer != domain.FieldFunctionalities {
			report("multi choice must write '%s'", domain.FieldFunctionalities)
		}
	case domain.ModeInfoCard, domain.ModeSummary:
	case domain.ModeTerminal:
		if s.Next != "" || len(s.Successors()) > 0 {
			report("terminal step must not have successors")
		}
		return problems
	default:
		report("unknown mode '%s'", s.Mode)
		return problems
	}

	if s.Mode != domain.ModeTextInput && s.Validation != domain.ValidateNone {
		report("validation is only supported on text input")
	}

	for _, opt := range s.Options.Declared() {
		if opt.Control != domain.ControlNone && opt.Next != "" {
			report("control option '%s' must not declare a successor", opt.Value)
		}
		if opt.Control == domain.ControlNone && s.Mode == domain.ModeSummary {
			report("summary options must be controls, got '%s'", opt.Value)
		}
	}

	if s.Next == "" {
		if s.Mode != domain.ModeSingleChoice || s.Options.IsDynamic() {
			report("missing default successor")
			return problems
		}
		for _, opt := range s.Options.Declared() {
			if opt.Control == domain.ControlNone && opt.Next == "" {
				report("option '%s' has no successor and the step has no default", opt.Value)
			}
		}
	}
	return problems
}

func checkReachability(entries Entries, byID map[domain.StepID]domain.Step, steps []domain.Step) []string {
	visited := make(map[domain.StepID]bool)
	queue := entries.IDs()

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		for _, target := range byID[current].Successors() {
			if !visited[target] {
				queue = append(queue, target)
			}
		}
	}

	var problems []string
	for _, s := range steps {
		if !visited[s.ID] {
			problems = append(problems, fmt.Sprintf("step '%s' is unreachable", s.ID))
		}
	}
	return problems
}

// checkCycles rejects back edges. Restart and review are controls and never
// appear as edges, so a well-formed flow is acyclic.
func checkCycles(entries Entries, byID map[domain.StepID]domain.Step) []string {
	const (
		white = iota
		grey
		black
	)
	color := make(map[domain.StepID]int, len(byID))
	var problems []string

	var visit func(id domain.StepID, path []domain.StepID)
	visit = func(id domain.StepID, path []domain.StepID) {
		color[id] = grey
		path = append(path, id)
		for _, next := range byID[id].Successors() {
			switch color[next] {
			case grey:
				problems = append(problems, fmt.Sprintf("cycle detected: %s -> %s", joinIDs(path), next))
			case white:
				visit(next, path)
			}
		}
		color[id] = black
	}

	for _, id := range entries.IDs() {
		if color[id] == white {
			visit(id, nil)
		}
	}
	return problems
}

func joinIDs(ids []domain.StepID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, " -> ")
}
