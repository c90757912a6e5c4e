package flow

import (
	"fmt"

	"github.com/phdev/briefing/pkg/domain"
)

// Entries names the steps a conversation can begin at.
type Entries struct {
	// Cold is entered when the visitor opens the chat without context.
	Cold domain.StepID
	// Seeded is entered when the conversation starts with a chosen package.
	Seeded domain.StepID
	// Review is entered by the review control; identity is already known.
	Review domain.StepID
}

// IDs returns the non-empty entry ids.
func (e Entries) IDs() []domain.StepID {
	var out []domain.StepID
	for _, id := range []domain.StepID{e.Cold, e.Seeded, e.Review} {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

// Table is an immutable, validated conversation graph.
type Table struct {
	entries  Entries
	steps    map[domain.StepID]domain.Step
	order    []domain.StepID
	terminal domain.StepID
}

// New validates the steps and builds a Table. A malformed graph is a
// configuration error and is reported as *IntegrityError.
func New(entries Entries, steps ...domain.Step) (*Table, error) {
	if err := Validate(entries, steps); err != nil {
		return nil, err
	}

	t := &Table{
		entries: entries,
		steps:   make(map[domain.StepID]domain.Step, len(steps)),
		order:   make([]domain.StepID, 0, len(steps)),
	}
	for _, s := range steps {
		t.steps[s.ID] = s
		t.order = append(t.order, s.ID)
		if s.Mode == domain.ModeTerminal {
			t.terminal = s.ID
		}
	}
	return t, nil
}

// MustNew is like New but panics on error. Use it only for built-in tables.
func MustNew(entries Entries, steps ...domain.Step) *Table {
	t, err := New(entries, steps...)
	if err != nil {
		panic(err)
	}
	return t
}

// Step looks up a step by id.
func (t *Table) Step(id domain.StepID) (domain.Step, error) {
	s, ok := t.steps[id]
	if !ok {
		return domain.Step{}, fmt.Errorf("%w: %q", domain.ErrUnknownStep, id)
	}
	return s, nil
}

// Steps returns the steps in declaration order.
func (t *Table) Steps() []domain.Step {
	out := make([]domain.Step, len(t.order))
	for i, id := range t.order {
		out[i] = t.steps[id]
	}
	return out
}

// Entries returns the start ids of the table.
func (t *Table) Entries() Entries {
	return t.entries
}

// Terminal returns the id of the sink step.
func (t *Table) Terminal() domain.StepID {
	return t.terminal
}

// ResolveMessage returns the step's message for the given record.
func ResolveMessage(step domain.Step, d domain.Draft) string {
	return step.Message.Resolve(d)
}

// ResolveOptions returns the step's options for the given record.
// The returned slice is a copy.
func ResolveOptions(step domain.Step, d domain.Draft) []domain.Option {
	return step.Options.Resolve(d)
}
