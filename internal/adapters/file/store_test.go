package file_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/livingtrust/livingtrust/internal/adapters/file"
	"github.com/livingtrust/livingtrust/pkg/domain"
	"github.com/livingtrust/livingtrust/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.WizardStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	ports.RunWizardStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_RejectsTraversal(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"", "../escape", "a/b", ".hidden"} {
		err := store.Save(ctx, id, domain.NewWizardState(id))
		assert.ErrorIs(t, err, file.ErrInvalidSessionID, id)
	}
}

func TestFileStore_NoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Save(ctx, "s1", domain.NewWizardState("s1")))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "s1.json", entries[0].Name())

	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(dir, "s1.json"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "nope"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
