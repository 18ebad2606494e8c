package ports

import (
	"context"

	"github.com/livingtrust/livingtrust/pkg/domain"
)

// TrustRepository stores trust records.
// Get, Update and Delete return domain.ErrNotFound for unknown IDs.
type TrustRepository interface {
	Create(ctx context.Context, t *domain.Trust) error
	Get(ctx context.Context, id string) (*domain.Trust, error)
	List(ctx context.Context, filter domain.TrustFilter) ([]*domain.Trust, error)
	Update(ctx context.Context, t *domain.Trust) error
	Delete(ctx context.Context, id string) error

	// FindByIdempotencyKey returns the trust ownerID created under key, or
	// domain.ErrNotFound. Keys are scoped to their owner.
	FindByIdempotencyKey(ctx context.Context, ownerID, key string) (*domain.Trust, error)
}

// DocumentRepository stores uploaded or linked documents.
type DocumentRepository interface {
	Create(ctx context.Context, d *domain.Document) error
	Get(ctx context.Context, id string) (*domain.Document, error)
	// List returns documents owned by ownerID, or all documents when ownerID is empty.
	List(ctx context.Context, ownerID string) ([]*domain.Document, error)
	Delete(ctx context.Context, id string) error
}

// UserRepository stores accounts. Emails are unique; Create returns
// domain.ErrAlreadyExists on a duplicate.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
}
