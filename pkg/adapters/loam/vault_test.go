package loam_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/loam"
	"github.com/livingtrust/livingtrust/internal/testutils"
	vault "github.com/livingtrust/livingtrust/pkg/adapters/loam"
	"github.com/livingtrust/livingtrust/pkg/domain"
	"github.com/livingtrust/livingtrust/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVault(t *testing.T) (string, *vault.Vault) {
	t.Helper()
	dir, repo := testutils.SetupTestRepo(t)
	return dir, vault.New(loam.NewTypedRepository[vault.DocumentMetadata](repo))
}

func TestVault_Contract(t *testing.T) {
	_, v := newVault(t)
	ports.RunDocumentRepositoryContract(t, v)
}

func TestVault_TombstoneKeepsFile(t *testing.T) {
	ctx := context.Background()
	dir, v := newVault(t)

	doc := &domain.Document{
		ID:         "will",
		Name:       "Last Will.md",
		Type:       "text/markdown",
		Content:    "# Last Will\n\nI leave everything to my cat.",
		Size:       42,
		OwnerID:    "u1",
		UploadedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, v.Create(ctx, doc))

	got, err := v.Get(ctx, "will")
	require.NoError(t, err)
	assert.Equal(t, doc.Content, got.Content)
	assert.Equal(t, "u1", got.OwnerID)

	require.NoError(t, v.Delete(ctx, "will"))

	_, err = v.Get(ctx, "will")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := v.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = os.Stat(filepath.Join(dir, "will.md"))
	assert.NoError(t, err, "tombstone stays on disk")

	err = v.Create(ctx, doc)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists, "tombstoned ids are not reused")
}

func TestOpen(t *testing.T) {
	v, err := vault.Open(t.TempDir())
	require.NoError(t, err)
	list, err := v.List(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, list)
}
