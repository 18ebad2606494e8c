package livingtrust_test

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/livingtrust/livingtrust"
	"github.com/livingtrust/livingtrust/pkg/adapters/memory"
	"github.com/livingtrust/livingtrust/pkg/domain"
	"github.com/livingtrust/livingtrust/pkg/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Defaults(t *testing.T) {
	ctx := context.Background()
	eng := livingtrust.New()

	assert.Len(t, eng.Steps(), domain.StepCount)

	st, err := eng.Start(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "owner-1", st.OwnerID)

	ids, err := eng.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{st.SessionID}, ids)
}

func TestEngine_FullSession(t *testing.T) {
	ctx := context.Background()
	trusts := memory.NewTrustRepository()
	var entered []domain.Phase
	var mu sync.Mutex

	eng := livingtrust.New(
		livingtrust.WithGateway(gateway.NewLocal(trusts)),
		livingtrust.WithLifecycleHooks(domain.LifecycleHooks{
			OnStepEnter: func(_ context.Context, ev *domain.WizardEvent) {
				mu.Lock()
				defer mu.Unlock()
				entered = append(entered, ev.Phase)
			},
		}),
	)

	st, err := eng.Start(ctx, "")
	require.NoError(t, err)
	id := st.SessionID

	_, err = eng.Next(ctx, id)
	require.ErrorIs(t, err, domain.ErrValidationBlocked)

	for f, v := range map[domain.Field]string{
		domain.FieldTrustName:     "Smith Family Trust",
		domain.FieldGrantorName:   "John Smith",
		domain.FieldBeneficiaries: "Jane Smith",
	} {
		_, err = eng.Update(ctx, id, f, v)
		require.NoError(t, err)
	}
	for i := 0; i < domain.StepCount; i++ {
		st, err = eng.Next(ctx, id)
		require.NoError(t, err)
	}
	require.Equal(t, domain.PhaseConfirming, st.Phase)

	st, err = eng.Cancel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseStep5, st.Phase)

	_, err = eng.Next(ctx, id)
	require.NoError(t, err)
	st, err = eng.Respond(ctx, id, "yes")
	require.NoError(t, err)
	require.Equal(t, domain.PhaseSubmitted, st.Phase)

	saved, err := trusts.FindByIdempotencyKey(ctx, st.OwnerID, id)
	require.NoError(t, err)
	assert.Equal(t, st.Submission.ID, saved.ID)

	again, err := eng.Confirm(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, again.Submission.ID)

	all, err := trusts.List(ctx, domain.TrustFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1, "one trust per session")

	mu.Lock()
	assert.Contains(t, entered, domain.PhaseSubmitted)
	mu.Unlock()

	require.NoError(t, eng.Discard(ctx, id))
	_, err = eng.Load(ctx, id)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEngine_Observer(t *testing.T) {
	ctx := context.Background()
	var phases []domain.Phase
	eng := livingtrust.New(livingtrust.WithObserver(func(_ context.Context, _, new *domain.WizardState) {
		phases = append(phases, new.Phase)
	}))

	st, err := eng.Start(ctx, "")
	require.NoError(t, err)
	_, err = eng.Update(ctx, st.SessionID, domain.FieldTrustName, "T")
	require.NoError(t, err)
	_, err = eng.Next(ctx, st.SessionID)
	require.NoError(t, err)

	assert.Equal(t, []domain.Phase{domain.PhaseStep1, domain.PhaseStep1, domain.PhaseStep2}, phases)
}

func TestEngine_Run(t *testing.T) {
	eng := livingtrust.New()
	in := strings.NewReader("Smith Family Trust\n\nJohn Smith\n\nJane Smith\n\n\n\ny\n")
	var out bytes.Buffer

	res, err := eng.Run(context.Background(), in, &out)
	require.NoError(t, err, out.String())
	require.NotNil(t, res.Trust)
	assert.Equal(t, "Smith Family Trust", res.Trust.TrustName)
	assert.Equal(t, domain.TrustStatusDraft, res.Trust.Status)
	assert.Contains(t, out.String(), "Create Your Living Trust?")

	ids, err := eng.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, strings.TrimSpace(livingtrust.Version))
}
