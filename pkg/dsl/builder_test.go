package dsl

import (
	"testing"

	"github.com/phdev/briefing/pkg/domain"
	"github.com/phdev/briefing/pkg/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SimpleFlow(t *testing.T) {
	b := New()

	b.Add("start").
		Say("Olá! Como posso te chamar?").
		Input(domain.FieldName).
		Placeholder("Digite seu nome").
		MaxLength(256).
		Validate(domain.ValidateName).
		Go("timeline")

	b.Add("timeline").
		SayFunc(func(d domain.Draft) string { return "Prazo, " + d.Name + "?" }).
		Choice(domain.FieldTimeline,
			Opt("Urgente", "Urgente", "end"),
			Opt("Flexível", "Flexível", "end"),
		)

	b.Add("end").
		Say("Até já!").
		Terminal()

	table, err := b.Build(flow.Entries{Cold: "start"})
	require.NoError(t, err)

	start, err := table.Step("start")
	require.NoError(t, err)
	assert.Equal(t, domain.ModeTextInput, start.Mode)
	assert.Equal(t, domain.FieldName, start.Answer)
	assert.Equal(t, domain.ValidateName, start.Validation)
	assert.Equal(t, "Digite seu nome", start.Placeholder)
	assert.Equal(t, 256, start.MaxLength)

	timeline, err := table.Step("timeline")
	require.NoError(t, err)
	assert.Equal(t, "Prazo, Ana?", flow.ResolveMessage(timeline, domain.Draft{Name: "Ana"}))
	assert.Len(t, flow.ResolveOptions(timeline, domain.Draft{}), 2)

	assert.Equal(t, domain.StepID("end"), table.Terminal())
	assert.Len(t, table.Steps(), 3)
}

func TestBuilder_AddReturnsExisting(t *testing.T) {
	b := New()
	first := b.Add("a")
	assert.Same(t, first, b.Add("a"))
	assert.Len(t, b.Steps(), 1)
}

func TestBuilder_ChecklistAndSummary(t *testing.T) {
	b := New()
	b.Add("features").
		Say("Escolha").
		Checklist(domain.FieldFunctionalities, func(d domain.Draft) []domain.Option {
			return []domain.Option{{Label: d.ProjectType, Value: d.ProjectType}}
		}).
		Go("summary")
	b.Add("summary").
		Say("Resumo").
		Summary(Control("Enviar", domain.ControlFinish), Control("Revisar", domain.ControlReview)).
		Go("end")
	b.Add("end").Say("Fim").Terminal()

	table, err := b.Build(flow.Entries{Cold: "features"})
	require.NoError(t, err)

	summary, err := table.Step("summary")
	require.NoError(t, err)
	opts := flow.ResolveOptions(summary, domain.Draft{})
	require.Len(t, opts, 2)
	assert.Equal(t, domain.ControlFinish, opts[0].Control)
	assert.Equal(t, "finish", opts[0].Value)
}

func TestBuilder_InvalidGraph(t *testing.T) {
	b := New()
	b.Add("start").Say("Oi").Info().Go("missing")
	b.Add("end").Say("Fim").Terminal()

	_, err := b.Build(flow.Entries{Cold: "start"})
	require.Error(t, err)

	var ie *flow.IntegrityError
	assert.ErrorAs(t, err, &ie)
}
