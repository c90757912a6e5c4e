package observability

import (
	"context"
	"log/slog"

	"github.com/phdev/briefing/pkg/domain"
)

// LoggingHooks returns lifecycle hooks that write one structured record per
// event. Handoff URLs are not logged; they carry the visitor's answers.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step_enter", "session_id", e.SessionID, "step_id", e.StepID, "mode", e.Mode)
		},
		OnAnswer: func(ctx context.Context, e *domain.AnswerEvent) {
			logger.DebugContext(ctx, "answer", "session_id", e.SessionID, "step_id", e.StepID, "field", e.Field)
		},
		OnValidationFailed: func(ctx context.Context, e *domain.ValidationEvent) {
			logger.InfoContext(ctx, "validation_failed",
				"session_id", e.SessionID,
				"step_id", e.StepID,
				"tag", e.Tag,
				"corrected", e.Corrected,
			)
		},
		OnControl: func(ctx context.Context, e *domain.ControlEvent) {
			logger.InfoContext(ctx, "control", "session_id", e.SessionID, "control", e.Control, "from", e.From)
		},
		OnHandoff: func(ctx context.Context, e *domain.HandoffEvent) {
			logger.InfoContext(ctx, "handoff", "session_id", e.SessionID, "project_type", e.ProjectType)
		},
	}
}
