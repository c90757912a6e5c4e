package observability

import (
	"context"
	"strconv"

	"github.com/phdev/briefing/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "briefing"

// Metrics holds the Prometheus collectors fed by the engine's lifecycle
// hooks.
type Metrics struct {
	StepEntries        *prometheus.CounterVec
	Answers            *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	Controls           *prometheus.CounterVec
	Handoffs           *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		StepEntries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "step_entries_total",
				Help:      "Total number of times a step was entered.",
			},
			[]string{"step_id", "mode"},
		),
		Answers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "answers_total",
				Help:      "Total number of values written into the answer record.",
			},
			[]string{"field"},
		),
		ValidationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "validation_failures_total",
				Help:      "Answers rejected or corrected by a validator.",
			},
			[]string{"step_id", "tag", "corrected"},
		),
		Controls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "controls_total",
				Help:      "Restart, review, finish and correction actions.",
			},
			[]string{"control"},
		),
		Handoffs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "handoffs_total",
				Help:      "Completed briefings handed off to the messaging app.",
			},
			[]string{"project_type"},
		),
	}

	for _, c := range []prometheus.Collector{m.StepEntries, m.Answers, m.ValidationFailures, m.Controls, m.Handoffs} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			m.StepEntries.WithLabelValues(string(e.StepID), string(e.Mode)).Inc()
		},
		OnAnswer: func(_ context.Context, e *domain.AnswerEvent) {
			m.Answers.WithLabelValues(string(e.Field)).Inc()
		},
		OnValidationFailed: func(_ context.Context, e *domain.ValidationEvent) {
			m.ValidationFailures.WithLabelValues(string(e.StepID), string(e.Tag), strconv.FormatBool(e.Corrected)).Inc()
		},
		OnControl: func(_ context.Context, e *domain.ControlEvent) {
			m.Controls.WithLabelValues(string(e.Control)).Inc()
		},
		OnHandoff: func(_ context.Context, e *domain.HandoffEvent) {
			m.Handoffs.WithLabelValues(e.ProjectType).Inc()
		},
	}
}

// RegisterSessionGauge exposes the number of stored sessions, computed by
// count on every scrape.
func RegisterSessionGauge(reg prometheus.Registerer, count func() float64) error {
	return reg.Register(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "sessions",
			Help:      "Number of sessions currently stored.",
		},
		count,
	))
}
