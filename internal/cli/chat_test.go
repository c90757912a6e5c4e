package cli_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/phdev/briefing/internal/cli"
	"github.com/phdev/briefing/internal/runtime"
	"github.com/phdev/briefing/pkg/adapters/memory"
	"github.com/phdev/briefing/pkg/domain"
	"github.com/phdev/briefing/pkg/handoff"
	"github.com/phdev/briefing/pkg/runner"
	"github.com/phdev/briefing/pkg/session"
	"github.com/phdev/briefing/pkg/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunner(t *testing.T) *runner.Runner {
	t.Helper()
	engine, err := runtime.NewEngine(wizard.MustFlow(),
		runtime.WithPacing(runtime.Pacing{Typing: time.Millisecond, Card: time.Millisecond, Read: time.Millisecond}),
		runtime.WithProcessCard(wizard.ProcessCard()),
		runtime.WithSeedResolver(wizard.ResolvePackage),
	)
	require.NoError(t, err)
	r := runner.New(engine, session.NewManager(memory.NewStore()))
	t.Cleanup(r.Close)
	return r
}

func script(lines ...string) *strings.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func run(t *testing.T, chat *cli.Chat) domain.View {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	view, err := chat.Run(ctx)
	require.NoError(t, err)
	return view
}

func TestChat_CompletesBriefing(t *testing.T) {
	var out bytes.Buffer
	in := script(
		"/help",
		"Ana Souza",
		"Clínicas",
		"9",          // out of range
		"Indefinido", // by value
		"",           // confirm the checklist with defaults
		"Flexível",
		"yes", // values match case-insensitively
		"No",
		"A definir",
		"Cores: azul",
		"/finish",
	)
	chat := cli.NewChat(newRunner(t), in, &out, cli.WithSeed(domain.Seed{ProjectType: "essential"}))

	view := run(t, chat)
	require.True(t, view.Finished, out.String())
	assert.Equal(t, view.SessionID, chat.SessionID())
	assert.Equal(t, []string{"Básico"}, view.Record.Functionalities)
	assert.Equal(t, domain.AnswerYes, view.Record.HasDomain)

	msg, err := handoff.Decode(view.HandoffURL)
	require.NoError(t, err)
	assert.Contains(t, msg, "Ana Souza")

	text := out.String()
	assert.Contains(t, text, "/restart")
	assert.Contains(t, text, "unknown option")
	assert.Contains(t, text, "[ ]", "checklists show their boxes")
	assert.Contains(t, text, view.HandoffURL)
	assert.NotContains(t, text, "\nAna Souza\n", "visitor turns are not echoed")
}

func TestChat_ChecklistAndRestart(t *testing.T) {
	var out bytes.Buffer
	in := script(
		"Ana",
		"Lojistas",
		"Criação do Zero",
		"1", // toggle on
		"/explode",
		"/restart",
	)
	chat := cli.NewChat(newRunner(t), in, &out, cli.WithSeed(domain.Seed{ProjectType: "Site Profissional"}))

	view := run(t, chat)
	assert.False(t, view.Finished)
	assert.Equal(t, wizard.StepStartContext, view.StepID)

	text := out.String()
	assert.Contains(t, text, "[x]", "toggled entries are marked")
	assert.Contains(t, text, "unknown control")
	assert.Contains(t, text, "--- recomeçando ---")
}

func TestChat_QuitAndResume(t *testing.T) {
	r := newRunner(t)

	var out bytes.Buffer
	first := cli.NewChat(r, script("Ana", "/quit"), &out)
	view := run(t, first)
	assert.Contains(t, out.String(), "salva")
	id := first.SessionID()
	require.NotEmpty(t, id)
	assert.Equal(t, wizard.StepSelectPackage, view.StepID)

	out.Reset()
	second := cli.NewChat(r, script(), &out, cli.WithSessionID(id))
	resumed := run(t, second)
	assert.Equal(t, id, resumed.SessionID)
	assert.Equal(t, view.StepID, resumed.StepID)
	assert.Contains(t, out.String(), "Retomando")
	assert.Contains(t, out.String(), "> ", "the prompt is shown again")
}

func TestChat_ResumeMissingStartsFresh(t *testing.T) {
	var out bytes.Buffer
	chat := cli.NewChat(newRunner(t), script(), &out, cli.WithSessionID("gone"))
	view := run(t, chat)
	assert.NotEqual(t, "gone", view.SessionID)
	assert.Equal(t, wizard.StepStart, view.StepID)
}

func TestChat_RendererIsUsed(t *testing.T) {
	var out bytes.Buffer
	upper := func(s string) (string, error) { return strings.ToUpper(s), nil }
	chat := cli.NewChat(newRunner(t), script(), &out, cli.WithRenderer(upper))
	view := run(t, chat)

	live, ok := view.LiveTurn()
	require.True(t, ok)
	assert.Contains(t, out.String(), strings.ToUpper(live.Text))
}

func TestChat_ContextCancel(t *testing.T) {
	var out bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	blocked, w := io.Pipe()
	t.Cleanup(func() { _ = w.Close() })
	chat := cli.NewChat(newRunner(t), blocked, &out)

	done := make(chan error, 1)
	go func() {
		_, err := chat.Run(ctx)
		done <- err
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.NoError(t, cli.HandleExecutionError(err))
	case <-time.After(2 * time.Second):
		t.Fatal("chat did not stop on cancel")
	}
}

func TestLogCompletion(t *testing.T) {
	var out bytes.Buffer
	cli.LogCompletion(&out, domain.View{Finished: true}, nil, nil)
	assert.Contains(t, out.String(), "concluído")

	out.Reset()
	cli.LogCompletion(&out, domain.View{SessionID: "abc", StepID: "get_name"}, nil, nil)
	assert.Contains(t, out.String(), "--session abc")

	out.Reset()
	cli.LogCompletion(&out, domain.View{StepID: "get_name"}, context.Canceled, nil)
	assert.Contains(t, out.String(), "Interrompido em 'get_name'")
}
