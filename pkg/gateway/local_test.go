package gateway_test

import (
	"context"
	"testing"

	"github.com/livingtrust/livingtrust/internal/testutils"
	"github.com/livingtrust/livingtrust/pkg/adapters/memory"
	"github.com/livingtrust/livingtrust/pkg/domain"
	"github.com/livingtrust/livingtrust/pkg/gateway"
	"github.com/livingtrust/livingtrust/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_Submit(t *testing.T) {
	ctx := context.Background()
	clock := testutils.FixedClock()
	repo := memory.NewTrustRepository()
	gw := gateway.NewLocal(repo,
		gateway.WithClock(clock),
		gateway.WithIDGenerator(func() string { return "trust-1" }),
	)

	draft := testutils.CompleteDraft()

	tr, err := gw.Submit(ctx, ports.GatewayRequest{Draft: draft, IdempotencyKey: "sess-1", OwnerID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "trust-1", tr.ID)
	assert.Equal(t, domain.TrustStatusDraft, tr.Status)
	assert.Equal(t, clock(), tr.CreatedAt)
	assert.Equal(t, clock(), tr.UpdatedAt)
	assert.Equal(t, draft, tr.TrustDraft)
	assert.Equal(t, "u1", tr.OwnerID)
}

func TestLocal_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTrustRepository()
	gw := gateway.NewLocal(repo)
	req := ports.GatewayRequest{Draft: domain.NewDraft(), IdempotencyKey: "sess-1"}

	first, err := gw.Submit(ctx, req)
	require.NoError(t, err)
	second, err := gw.Submit(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	third, err := gw.Submit(ctx, ports.GatewayRequest{Draft: domain.NewDraft()})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID, "requests without a key are never merged")

	all, err := repo.List(ctx, domain.TrustFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestLocal_IdempotencyKeyScopedToOwner(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTrustRepository()
	gw := gateway.NewLocal(repo)

	alice := domain.NewDraft()
	alice.TrustName = "Alice Trust"
	first, err := gw.Submit(ctx, ports.GatewayRequest{Draft: alice, IdempotencyKey: "k", OwnerID: "alice"})
	require.NoError(t, err)

	bob := domain.NewDraft()
	bob.TrustName = "Bob Trust"
	second, err := gw.Submit(ctx, ports.GatewayRequest{Draft: bob, IdempotencyKey: "k", OwnerID: "bob"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "Bob Trust", second.TrustName)
	assert.Equal(t, "bob", second.OwnerID)

	anon, err := gw.Submit(ctx, ports.GatewayRequest{Draft: domain.NewDraft(), IdempotencyKey: "k"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, anon.ID)
	assert.Empty(t, anon.OwnerID)
}
