package dsl

import (
	"fmt"

	"github.com/phdev/briefing/pkg/domain"
	"github.com/phdev/briefing/pkg/flow"
)

// Builder manages the graph construction.
type Builder struct {
	steps map[domain.StepID]*StepBuilder
	order []domain.StepID
}

// New creates a new flow builder.
func New() *Builder {
	return &Builder{
		steps: make(map[domain.StepID]*StepBuilder),
	}
}

// Add creates a new step in the graph.
// If the step already exists, it returns the existing builder.
func (b *Builder) Add(id domain.StepID) *StepBuilder {
	if sb, ok := b.steps[id]; ok {
		return sb
	}
	sb := &StepBuilder{
		step: domain.Step{
			ID: id,
		},
		builder: b,
	}
	b.steps[id] = sb
	b.order = append(b.order, id)
	return sb
}

// Steps returns the configured steps in the order they were added.
func (b *Builder) Steps() []domain.Step {
	steps := make([]domain.Step, 0, len(b.order))
	for _, id := range b.order {
		steps = append(steps, b.steps[id].step)
	}
	return steps
}

// Build validates the graph and compiles it into a flow.Table.
func (b *Builder) Build(entries flow.Entries) (*flow.Table, error) {
	table, err := flow.New(entries, b.Steps()...)
	if err != nil {
		return nil, fmt.Errorf("failed to build flow: %w", err)
	}
	return table, nil
}
