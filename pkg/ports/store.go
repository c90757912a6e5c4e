package ports

import (
	"context"

	"github.com/phdev/briefing/pkg/domain"
)

// StateStore defines the interface for persisting conversation sessions.
// It lets a visitor close the tab and resume the briefing later, and lets
// several replicas serve the same session.
type StateStore interface {
	// Save persists the session under the given ID.
	Save(ctx context.Context, sessionID string, s *domain.Session) error

	// Load retrieves the session for a given ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of the stored sessions.
	List(ctx context.Context) ([]string, error)
}
