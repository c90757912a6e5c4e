package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/phdev/briefing/pkg/domain"
	"github.com/phdev/briefing/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	hooks := m.Hooks()
	ctx := context.Background()
	hooks.OnStepEnter(ctx, &domain.StepEvent{StepID: "start", Mode: domain.ModeTextInput})
	hooks.OnStepEnter(ctx, &domain.StepEvent{StepID: "start", Mode: domain.ModeTextInput})
	hooks.OnAnswer(ctx, &domain.AnswerEvent{Field: domain.FieldName})
	hooks.OnValidationFailed(ctx, &domain.ValidationEvent{StepID: "start", Tag: domain.ValidateName})
	hooks.OnControl(ctx, &domain.ControlEvent{Control: domain.ControlFinish})
	hooks.OnHandoff(ctx, &domain.HandoffEvent{ProjectType: "Site Profissional"})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StepEntries.WithLabelValues("start", string(domain.ModeTextInput))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Answers.WithLabelValues("name")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationFailures.WithLabelValues("start", "name", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Controls.WithLabelValues("finish")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Handoffs.WithLabelValues("Site Profissional")))

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err, "duplicate registration")
}

func TestRegisterSessionGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, observability.RegisterSessionGauge(reg, func() float64 { return 3 }))

	expected := `
# HELP briefing_sessions Number of sessions currently stored.
# TYPE briefing_sessions gauge
briefing_sessions 3
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "briefing_sessions"))
}

func TestLoggingHooks_OmitHandoffURL(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	hooks := observability.LoggingHooks(logger).Merge(domain.LifecycleHooks{})
	hooks.OnHandoff(context.Background(), &domain.HandoffEvent{
		EventBase:   domain.EventBase{SessionID: "s1"},
		ProjectType: "Site Profissional",
		URL:         "https://wa.me/5511999999999?text=secret",
	})

	out := buf.String()
	assert.Contains(t, out, "handoff")
	assert.Contains(t, out, "session_id=s1")
	assert.NotContains(t, out, "secret")
}
