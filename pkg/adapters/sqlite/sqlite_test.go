package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/livingtrust/livingtrust/internal/testutils"
	"github.com/livingtrust/livingtrust/pkg/adapters/sqlite"
	"github.com/livingtrust/livingtrust/pkg/domain"
	"github.com/livingtrust/livingtrust/pkg/gateway"
	"github.com/livingtrust/livingtrust/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestTrustRepo_Contract(t *testing.T) {
	ports.RunTrustRepositoryContract(t, sqlite.NewTrustRepo(openTestDB(t)))
}

func TestDocumentRepo_Contract(t *testing.T) {
	ports.RunDocumentRepositoryContract(t, sqlite.NewDocumentRepo(openTestDB(t)))
}

func TestUserRepo_Contract(t *testing.T) {
	ports.RunUserRepositoryContract(t, sqlite.NewUserRepo(openTestDB(t)))
}

func TestOpenDB_InMemory(t *testing.T) {
	db, err := sqlite.OpenDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	repo := sqlite.NewUserRepo(db)
	require.NoError(t, repo.Create(context.Background(), &domain.User{ID: "u", Email: "a@b.c"}))
	_, err = repo.GetByEmail(context.Background(), "A@B.C")
	assert.NoError(t, err, "emails compare case-insensitively")
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, sqlite.Migrate(db))
	require.NoError(t, sqlite.Migrate(db))
}

func TestTrustRepo_WithGateway(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewTrustRepo(openTestDB(t))
	gw := gateway.NewLocal(repo)

	req := ports.GatewayRequest{Draft: testutils.CompleteDraft(), IdempotencyKey: "session-1"}
	a, err := gw.Submit(ctx, req)
	require.NoError(t, err)
	b, err := gw.Submit(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)

	got, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, req.Draft, got.TrustDraft, "multi-line fields survive the round trip")

	// Trusts without a key do not collide on the NULL index.
	_, err = gw.Submit(ctx, ports.GatewayRequest{Draft: domain.NewDraft()})
	require.NoError(t, err)
	_, err = gw.Submit(ctx, ports.GatewayRequest{Draft: domain.NewDraft()})
	require.NoError(t, err)
}
