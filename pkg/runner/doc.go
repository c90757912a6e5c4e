/*
Package runner drives live briefing sessions.

The conversation engine is pure: it turns a session into a new session and
records delays as a pending transition. The Runner is the side that makes
time pass. It persists every session through a session.Manager, arms one
scheduler task per session for the pending transition, and pushes a fresh
domain.View to subscribers whenever a session changes.

# Usage

	r := runner.New(engine, session.NewManager(memory.NewStore()))
	defer r.Close()

	view, err := r.Start(ctx, domain.Seed{})
	views, cancel, err := r.Subscribe(ctx, view.SessionID)
	defer cancel()

	view, err = r.SubmitText(ctx, view.SessionID, "Ana")

Restart and review bump the session epoch. A task armed for an older epoch
is cancelled when the new one is armed, and if it already fired it is
discarded when it finds the epoch changed.
*/
package runner
