package ports

import (
	"context"
	"testing"
	"time"

	"github.com/phdev/briefing/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	now := time.Date(2025, time.March, 7, 12, 0, 0, 0, time.UTC)
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	sample := func(id string) *domain.Session {
		s := domain.NewSession(id, domain.Seed{ProjectType: "Site Profissional"}, now)
		s.CurrentStepID = "select_features"
		s.Phase = domain.PhaseAwaitingInput
		s.Epoch = 3
		s.Draft.Name = "Ana"
		s.Draft.Functionalities = []string{"Modo Escuro", "SEO Básico"}
		s.Scratch = []string{"Chat Widget"}
		s.Pending = &domain.PendingTransition{Kind: domain.PendingReveal, StepID: "define_timeline", DueAt: now.Add(time.Second)}
		s.AppendTurn(domain.Turn{
			Author:  domain.AuthorBot,
			Kind:    domain.TurnMessage,
			StepID:  "select_features",
			Mode:    domain.ModeMultiChoice,
			Text:    "⚙️ FUNCIONALIDADES",
			Options: []domain.Option{{Label: "🌙 Modo Escuro", Value: "Modo Escuro"}},
		})
		return s
	}

	t.Run("Save and Load", func(t *testing.T) {
		s := sample(sessionID)

		err := store.Save(ctx, sessionID, s)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, s.CurrentStepID, loaded.CurrentStepID)
		assert.Equal(t, s.Phase, loaded.Phase)
		assert.Equal(t, s.Epoch, loaded.Epoch)
		assert.Equal(t, s.Draft, loaded.Draft)
		assert.Equal(t, s.Scratch, loaded.Scratch)
		assert.Equal(t, s.Transcript, loaded.Transcript)
		require.NotNil(t, loaded.Pending)
		assert.True(t, s.Pending.DueAt.Equal(loaded.Pending.DueAt))
		assert.Equal(t, "Site Profissional", loaded.Seed.ProjectType)
	})

	t.Run("Stored copy is isolated", func(t *testing.T) {
		s := sample(sessionID)
		require.NoError(t, store.Save(ctx, sessionID, s))

		s.Draft.Functionalities[0] = "mutated"
		s.Transcript[0].Text = "mutated"

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "Modo Escuro", loaded.Draft.Functionalities[0])
		assert.Equal(t, "⚙️ FUNCIONALIDADES", loaded.Transcript[0].Text)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, sample(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, sample(id1))
		_ = store.Save(ctx, id2, sample(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
