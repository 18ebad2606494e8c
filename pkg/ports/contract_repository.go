package ports

import (
	"context"
	"testing"
	"time"

	"github.com/livingtrust/livingtrust/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunTrustRepositoryContract verifies a TrustRepository implementation.
// The repository must be empty when the suite starts.
func RunTrustRepositoryContract(t *testing.T, repo TrustRepository) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	newTrust := func(id, owner, key string) *domain.Trust {
		tr := &domain.Trust{
			ID:             id,
			TrustDraft:     domain.NewDraft(),
			Status:         domain.TrustStatusDraft,
			OwnerID:        owner,
			IdempotencyKey: key,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		tr.TrustName = "Trust " + id
		tr.GrantorName = "Grantor " + id
		tr.Beneficiaries = "Alice"
		return tr
	}

	t.Run("Create and Get", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, newTrust("t1", "u1", "k1")))

		got, err := repo.Get(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, "Trust t1", got.TrustName)
		assert.Equal(t, domain.TrustRevocable, got.TrustType)
		assert.Equal(t, domain.TrustStatusDraft, got.Status)
		assert.True(t, now.Equal(got.CreatedAt))
	})

	t.Run("Duplicate ID", func(t *testing.T) {
		err := repo.Create(ctx, newTrust("t1", "u1", ""))
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	})

	t.Run("Idempotency Key", func(t *testing.T) {
		got, err := repo.FindByIdempotencyKey(ctx, "u1", "k1")
		require.NoError(t, err)
		assert.Equal(t, "t1", got.ID)

		_, err = repo.FindByIdempotencyKey(ctx, "u1", "unknown")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		err = repo.Create(ctx, newTrust("t-dup", "u1", "k1"))
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	})

	t.Run("Idempotency Key Scoped To Owner", func(t *testing.T) {
		_, err := repo.FindByIdempotencyKey(ctx, "u2", "k1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = repo.FindByIdempotencyKey(ctx, "", "k1")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		require.NoError(t, repo.Create(ctx, newTrust("t-u2", "u2", "k1")))
		got, err := repo.FindByIdempotencyKey(ctx, "u2", "k1")
		require.NoError(t, err)
		assert.Equal(t, "t-u2", got.ID)

		mine, err := repo.FindByIdempotencyKey(ctx, "u1", "k1")
		require.NoError(t, err)
		assert.Equal(t, "t1", mine.ID)

		require.NoError(t, repo.Delete(ctx, "t-u2"))
		_, err = repo.FindByIdempotencyKey(ctx, "u2", "k1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("List With Filter", func(t *testing.T) {
		other := newTrust("t2", "u2", "")
		other.Status = domain.TrustStatusFinal
		require.NoError(t, repo.Create(ctx, other))

		all, err := repo.List(ctx, domain.TrustFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		mine, err := repo.List(ctx, domain.TrustFilter{OwnerID: "u2"})
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, "t2", mine[0].ID)

		final, err := repo.List(ctx, domain.TrustFilter{Status: domain.TrustStatusFinal})
		require.NoError(t, err)
		require.Len(t, final, 1)
		assert.Equal(t, "t2", final[0].ID)
	})

	t.Run("Update", func(t *testing.T) {
		got, err := repo.Get(ctx, "t1")
		require.NoError(t, err)
		got.Status = domain.TrustStatusReview
		got.Notes = "reviewed"
		got.UpdatedAt = now.Add(time.Hour)
		require.NoError(t, repo.Update(ctx, got))

		again, err := repo.Get(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, domain.TrustStatusReview, again.Status)
		assert.Equal(t, "reviewed", again.Notes)

		err = repo.Update(ctx, newTrust("missing", "", ""))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "t2"))
		_, err := repo.Get(ctx, "t2")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, "t2"), domain.ErrNotFound)
	})
}

// RunDocumentRepositoryContract verifies a DocumentRepository implementation.
// The repository must be empty when the suite starts.
func RunDocumentRepositoryContract(t *testing.T, repo DocumentRepository) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("Create and Get", func(t *testing.T) {
		doc := &domain.Document{
			ID:         "d1",
			Name:       "trust.pdf",
			Type:       "application/pdf",
			URL:        "https://example.com/trust.pdf",
			Size:       2048,
			OwnerID:    "u1",
			UploadedAt: now,
		}
		require.NoError(t, repo.Create(ctx, doc))

		got, err := repo.Get(ctx, "d1")
		require.NoError(t, err)
		assert.Equal(t, "trust.pdf", got.Name)
		assert.Equal(t, int64(2048), got.Size)
		assert.Equal(t, "u1", got.OwnerID)
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, &domain.Document{ID: "d2", Name: "notes.txt", Content: "hello", OwnerID: "u2", UploadedAt: now}))

		all, err := repo.List(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 2)

		mine, err := repo.List(ctx, "u2")
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, "hello", mine[0].Content)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := repo.Get(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "d1"))
		_, err := repo.Get(ctx, "d1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, "d1"), domain.ErrNotFound)

		all, err := repo.List(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

// RunUserRepositoryContract verifies a UserRepository implementation.
// The repository must be empty when the suite starts.
func RunUserRepositoryContract(t *testing.T, repo UserRepository) {
	ctx := context.Background()
	u := &domain.User{
		ID:           "u1",
		Email:        "jane@example.com",
		Name:         "Jane",
		PasswordHash: "$2a$10$hash",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}

	t.Run("Create and Get", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, u))

		byID, err := repo.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, u.Email, byID.Email)
		assert.Equal(t, u.PasswordHash, byID.PasswordHash)

		byEmail, err := repo.GetByEmail(ctx, "jane@example.com")
		require.NoError(t, err)
		assert.Equal(t, "u1", byEmail.ID)
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		err := repo.Create(ctx, &domain.User{ID: "u2", Email: "jane@example.com", Name: "Other"})
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	})

	t.Run("Update", func(t *testing.T) {
		changed := *u
		changed.Name = "Jane Doe"
		changed.Email = "jane.doe@example.com"
		require.NoError(t, repo.Update(ctx, &changed))

		got, err := repo.GetByEmail(ctx, "jane.doe@example.com")
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", got.Name)

		_, err = repo.GetByEmail(ctx, "jane@example.com")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		assert.ErrorIs(t, repo.Update(ctx, &domain.User{ID: "ghost"}), domain.ErrNotFound)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
