package ports

import (
	"context"

	"github.com/phdev/briefing/pkg/domain"
)

// Conversation is the surface front ends drive a briefing through.
// Every call returns the view after the operation, with due timed
// transitions already applied.
type Conversation interface {
	// Start opens a session, optionally seeded with a package.
	Start(ctx context.Context, seed domain.Seed) (domain.View, error)

	// View returns the current view without advancing the conversation.
	View(ctx context.Context, id string) (domain.View, error)

	SubmitText(ctx context.Context, id, text string) (domain.View, error)
	SelectOption(ctx context.Context, id, value string) (domain.View, error)
	Toggle(ctx context.Context, id, value string) (domain.View, error)
	Confirm(ctx context.Context, id string) (domain.View, error)
	Control(ctx context.Context, id string, c domain.Control) (domain.View, error)

	// Subscribe streams views as the session changes, timers included.
	Subscribe(ctx context.Context, id string) (<-chan domain.View, func(), error)

	Delete(ctx context.Context, id string) error
}
