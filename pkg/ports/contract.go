package ports

import (
	"context"
	"testing"
	"time"

	"github.com/livingtrust/livingtrust/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunWizardStoreContract runs a suite of tests to verify that a WizardStore implementation
// adheres to the defined interface contract.
func RunWizardStoreContract(t *testing.T, store WizardStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewWizardState(sessionID)
		state.Phase = domain.PhaseStep3
		state.Draft.TrustName = "Smith Family Trust"
		state.Draft.Beneficiaries = "Alice\nBob"
		state.Notice = "Please add at least one Beneficiary to continue."

		require.NoError(t, store.Save(ctx, sessionID, state), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, domain.PhaseStep3, loaded.Phase)
		assert.Equal(t, state.Draft, loaded.Draft)
		assert.Equal(t, state.Notice, loaded.Notice)
	})

	t.Run("Save Isolates Caller", func(t *testing.T) {
		state := domain.NewWizardState(sessionID)
		require.NoError(t, store.Save(ctx, sessionID, state))
		state.Draft.TrustName = "mutated after save"

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Empty(t, loaded.Draft.TrustName)
	})

	t.Run("Submission Survives", func(t *testing.T) {
		state := domain.NewWizardState(sessionID)
		state.Phase = domain.PhaseSubmitted
		state.Submission = &domain.Trust{ID: "trust-1", Status: domain.TrustStatusDraft}
		require.NoError(t, store.Save(ctx, sessionID, state))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		require.NotNil(t, loaded.Submission)
		assert.Equal(t, "trust-1", loaded.Submission.ID)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.NewWizardState(sessionID)))
		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewWizardState(id1))
		_ = store.Save(ctx, id2, domain.NewWizardState(id2))
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
