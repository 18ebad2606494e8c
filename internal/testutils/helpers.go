package testutils

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/livingtrust/livingtrust/pkg/domain"
	"github.com/stretchr/testify/require"
)

// SetupTestRepo creates a temporary directory and initializes a Loam repository in it,
// without versioning unless opts say otherwise.
func SetupTestRepo(t *testing.T, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	opts = append([]loam.Option{loam.WithVersioning(false)}, opts...)
	repo, err := loam.Init(absPath, opts...)
	require.NoError(t, err, "Failed to init loam repo")

	return absPath, repo
}

// CompleteDraft returns a draft with every field filled.
func CompleteDraft() domain.TrustDraft {
	return domain.TrustDraft{
		TrustName:        "Smith Family Trust",
		TrustType:        domain.TrustRevocable,
		GrantorName:      "John Smith",
		GrantorAddress:   "1 Main St\nSpringfield",
		Beneficiaries:    "Jane Smith (Daughter)\nJim Smith (Son)",
		SuccessorTrustee: "Mary Smith",
		Assets:           "House at 1 Main St",
		Notes:            "Review yearly",
	}
}

// FixedClock returns a clock stuck at a fixed UTC instant.
func FixedClock() func() time.Time {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}
