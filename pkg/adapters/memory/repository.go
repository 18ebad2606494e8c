package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/livingtrust/livingtrust/pkg/domain"
)

// TrustRepository implements ports.TrustRepository in memory.
type TrustRepository struct {
	mu    sync.RWMutex
	data  map[string]domain.Trust
	byKey map[string]string // owner + idempotency key -> trust ID
}

func NewTrustRepository() *TrustRepository {
	return &TrustRepository{
		data:  make(map[string]domain.Trust),
		byKey: make(map[string]string),
	}
}

func (r *TrustRepository) Create(_ context.Context, t *domain.Trust) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[t.ID]; ok {
		return domain.ErrAlreadyExists
	}
	if t.IdempotencyKey != "" {
		k := scopedKey(t.OwnerID, t.IdempotencyKey)
		if _, ok := r.byKey[k]; ok {
			return domain.ErrAlreadyExists
		}
		r.byKey[k] = t.ID
	}
	r.data[t.ID] = *t
	return nil
}

func (r *TrustRepository) Get(_ context.Context, id string) (*domain.Trust, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (r *TrustRepository) List(_ context.Context, filter domain.TrustFilter) ([]*domain.Trust, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Trust, 0, len(r.data))
	for _, t := range r.data {
		if filter.Match(&t) {
			t := t
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *TrustRepository) Update(_ context.Context, t *domain.Trust) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.data[t.ID]
	if !ok {
		return domain.ErrNotFound
	}
	// The idempotency key is fixed at creation.
	updated := *t
	updated.IdempotencyKey = old.IdempotencyKey
	r.data[t.ID] = updated
	return nil
}

func (r *TrustRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.data, id)
	if t.IdempotencyKey != "" {
		delete(r.byKey, scopedKey(t.OwnerID, t.IdempotencyKey))
	}
	return nil
}

func (r *TrustRepository) FindByIdempotencyKey(ctx context.Context, ownerID, key string) (*domain.Trust, error) {
	r.mu.RLock()
	id, ok := r.byKey[scopedKey(ownerID, key)]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.Get(ctx, id)
}

func scopedKey(ownerID, key string) string {
	return ownerID + "\x00" + key
}

// DocumentRepository implements ports.DocumentRepository in memory.
type DocumentRepository struct {
	mu   sync.RWMutex
	data map[string]domain.Document
}

func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{data: make(map[string]domain.Document)}
}

func (r *DocumentRepository) Create(_ context.Context, d *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[d.ID]; ok {
		return domain.ErrAlreadyExists
	}
	r.data[d.ID] = *d
	return nil
}

func (r *DocumentRepository) Get(_ context.Context, id string) (*domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

func (r *DocumentRepository) List(_ context.Context, ownerID string) ([]*domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Document, 0, len(r.data))
	for _, d := range r.data {
		if ownerID != "" && d.OwnerID != ownerID {
			continue
		}
		d := d
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	return out, nil
}

func (r *DocumentRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.data, id)
	return nil
}

// UserRepository implements ports.UserRepository in memory.
// Emails are compared case-insensitively.
type UserRepository struct {
	mu      sync.RWMutex
	data    map[string]domain.User
	byEmail map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		data:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepository) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(u.Email)
	if _, ok := r.byEmail[key]; ok {
		return domain.ErrAlreadyExists
	}
	if _, ok := r.data[u.ID]; ok {
		return domain.ErrAlreadyExists
	}
	r.data[u.ID] = *u
	r.byEmail[key] = u.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[strings.ToLower(email)]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) Update(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.data[u.ID]
	if !ok {
		return domain.ErrNotFound
	}
	newKey := strings.ToLower(u.Email)
	if owner, taken := r.byEmail[newKey]; taken && owner != u.ID {
		return domain.ErrAlreadyExists
	}
	delete(r.byEmail, strings.ToLower(old.Email))
	r.byEmail[newKey] = u.ID
	r.data[u.ID] = *u
	return nil
}
