package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	base := &WizardState{
		SessionID: "sess-1",
		Phase:     PhaseStep1,
		Draft:     NewDraft(),
	}

	t.Run("Initial Load (Old is Nil)", func(t *testing.T) {
		d := Diff(nil, base)
		require.NotNil(t, d)
		require.NotNil(t, d.Phase)
		assert.Equal(t, PhaseStep1, *d.Phase)
		assert.Len(t, d.Draft, len(Fields))
		assert.Equal(t, "revocable", d.Draft["trustType"])
		assert.Nil(t, d.Notice)
	})

	t.Run("No Changes", func(t *testing.T) {
		assert.Nil(t, Diff(base, base.Snapshot()))
	})

	t.Run("Field Edit", func(t *testing.T) {
		next := base.Snapshot()
		next.Draft.TrustName = "Smith Family Trust"
		d := Diff(base, next)
		require.NotNil(t, d)
		assert.Nil(t, d.Phase)
		assert.Equal(t, map[string]string{"trustName": "Smith Family Trust"}, d.Draft)
	})

	t.Run("Notice Cleared", func(t *testing.T) {
		blocked := base.Snapshot()
		blocked.Notice = "Please enter a Trust Name to continue."
		next := blocked.Snapshot()
		next.Notice = ""
		next.Phase = PhaseStep2

		d := Diff(blocked, next)
		require.NotNil(t, d)
		require.NotNil(t, d.Notice)
		assert.Empty(t, *d.Notice)
		assert.Equal(t, PhaseStep2, *d.Phase)
	})

	t.Run("Submission Acknowledged", func(t *testing.T) {
		confirming := base.Snapshot()
		confirming.Phase = PhaseConfirming
		done := confirming.Snapshot()
		done.Phase = PhaseSubmitted
		done.Submission = &Trust{ID: "t-1", Status: TrustStatusDraft}

		d := Diff(confirming, done)
		require.NotNil(t, d)
		assert.Equal(t, "t-1", d.Submission.ID)
	})
}

func TestDiff_JSONOmitsUnchanged(t *testing.T) {
	old := NewWizardState("s")
	next := old.Snapshot()
	next.Draft.GrantorName = "Jane"

	raw, err := json.Marshal(Diff(old, next))
	require.NoError(t, err)
	assert.JSONEq(t, `{"session_id":"s","draft":{"grantorName":"Jane"}}`, string(raw))
}
