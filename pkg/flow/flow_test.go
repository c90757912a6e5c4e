package flow

import (
	"errors"
	"testing"

	"github.com/phdev/briefing/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linear() []domain.Step {
	return []domain.Step{
		{ID: "ask", Mode: domain.ModeTextInput, Message: domain.Static("Nome?"), Answer: domain.FieldName, Validation: domain.ValidateName, Next: "pick"},
		{ID: "pick", Mode: domain.ModeSingleChoice, Message: domain.Static("Prazo?"), Answer: domain.FieldTimeline, Options: domain.Fixed(
			domain.Option{Label: "Rápido", Value: "fast", Next: "card"},
			domain.Option{Label: "Lento", Value: "slow", Next: "sum"},
		)},
		{ID: "card", Mode: domain.ModeInfoCard, Message: domain.Static("Processo"), Next: "sum"},
		{ID: "sum", Mode: domain.ModeSummary, Message: domain.Computed(func(d domain.Draft) string { return "Resumo de " + d.Name }), Next: "end", Options: domain.Fixed(
			domain.Option{Label: "Enviar", Value: "finish", Control: domain.ControlFinish},
		)},
		{ID: "end", Mode: domain.ModeTerminal, Message: domain.Static("Tchau")},
	}
}

func problems(t *testing.T, err error) []string {
	t.Helper()
	var ie *IntegrityError
	require.True(t, errors.As(err, &ie), "expected IntegrityError, got %v", err)
	return ie.Problems
}

func TestNew_ValidTable(t *testing.T) {
	tbl, err := New(Entries{Cold: "ask"}, linear()...)
	require.NoError(t, err)

	assert.Equal(t, domain.StepID("end"), tbl.Terminal())
	assert.Len(t, tbl.Steps(), 5)
	assert.Equal(t, domain.StepID("ask"), tbl.Steps()[0].ID, "declaration order is kept")

	s, err := tbl.Step("sum")
	require.NoError(t, err)
	assert.Equal(t, "Resumo de Ana", ResolveMessage(s, domain.Draft{Name: "Ana"}))

	_, err = tbl.Step("ghost")
	assert.ErrorIs(t, err, domain.ErrUnknownStep)
}

func TestValidate_MissingTarget(t *testing.T) {
	steps := linear()
	steps[2].Next = "nowhere"

	err := Validate(Entries{Cold: "ask"}, steps)
	assert.Contains(t, problems(t, err), "step 'card' points to missing step 'nowhere'")
}

func TestValidate_Unreachable(t *testing.T) {
	steps := append(linear(), domain.Step{ID: "orphan", Mode: domain.ModeInfoCard, Next: "end"})

	err := Validate(Entries{Cold: "ask"}, steps)
	assert.Equal(t, []string{"step 'orphan' is unreachable"}, problems(t, err))

	// Reachable from another entry point.
	assert.NoError(t, Validate(Entries{Cold: "ask", Review: "orphan"}, steps))
}

func TestValidate_Cycle(t *testing.T) {
	steps := linear()
	steps[2].Next = "ask"

	err := Validate(Entries{Cold: "ask"}, steps)
	ps := problems(t, err)
	require.Len(t, ps, 1)
	assert.Contains(t, ps[0], "cycle detected: ask -> pick -> card -> ask")
}

func TestValidate_Shape(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func([]domain.Step) []domain.Step
		problem string
	}{
		{
			name: "Duplicate id",
			mutate: func(s []domain.Step) []domain.Step {
				return append(s, domain.Step{ID: "ask", Mode: domain.ModeInfoCard, Next: "end"})
			},
			problem: "duplicate step id 'ask'",
		},
		{
			name: "Text input without field",
			mutate: func(s []domain.Step) []domain.Step {
				s[0].Answer = domain.FieldNone
				return s
			},
			problem: "step 'ask': text input needs an answer field",
		},
		{
			name: "Unknown validator",
			mutate: func(s []domain.Step) []domain.Step {
				s[0].Validation = "cpf"
				return s
			},
			problem: "step 'ask': unknown validation tag 'cpf'",
		},
		{
			name: "Second terminal",
			mutate: func(s []domain.Step) []domain.Step {
				s[2].Mode = domain.ModeTerminal
				s[2].Next = ""
				return s
			},
			problem: "multiple terminal steps: [card end]",
		},
		{
			name: "Control option with successor",
			mutate: func(s []domain.Step) []domain.Step {
				s[3].Options = domain.Fixed(domain.Option{Label: "Revisar", Value: "review", Control: domain.ControlReview, Next: "ask"})
				return s
			},
			problem: "step 'sum': control option 'review' must not declare a successor",
		},
		{
			name: "Option without successor",
			mutate: func(s []domain.Step) []domain.Step {
				s[1].Options = domain.Fixed(domain.Option{Label: "x", Value: "x"}, domain.Option{Label: "y", Value: "y", Next: "sum"})
				return s
			},
			problem: "step 'pick': option 'x' has no successor and the step has no default",
		},
		{
			name: "Missing default successor",
			mutate: func(s []domain.Step) []domain.Step {
				s[2].Next = ""
				return s
			},
			problem: "step 'card': missing default successor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(Entries{Cold: "ask"}, tt.mutate(linear()))
			assert.Contains(t, problems(t, err), tt.problem)
		})
	}
}

func TestValidate_Entries(t *testing.T) {
	err := Validate(Entries{Seeded: "ghost"}, linear())
	ps := problems(t, err)
	assert.Contains(t, ps, "cold start entry is not set")
	assert.Contains(t, ps, "entry step 'ghost' does not exist")
}

func TestMustNew_Panics(t *testing.T) {
	assert.Panics(t, func() { MustNew(Entries{Cold: "ask"}) })
}

func TestResolveOptions_Pure(t *testing.T) {
	step := domain.Step{Options: domain.Dynamic(func(d domain.Draft) []domain.Option {
		return []domain.Option{{Label: d.ProjectType, Value: d.ProjectType}}
	})}
	d := domain.Draft{ProjectType: "Site Profissional"}

	a := ResolveOptions(step, d)
	b := ResolveOptions(step, d)
	assert.Equal(t, a, b)
	a[0].Label = "changed"
	assert.Equal(t, "Site Profissional", ResolveOptions(step, d)[0].Label)
}
