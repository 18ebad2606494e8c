// Package loam stores documents as markdown files with YAML frontmatter
// in a Loam vault.
package loam

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/loam"
	"github.com/livingtrust/livingtrust/pkg/domain"
)

// Vault implements ports.DocumentRepository on top of a Loam repository.
type Vault struct {
	Repo *loam.TypedRepository[DocumentMetadata]

	// Loam has no conditional write; Create checks then saves under mu.
	mu sync.Mutex
}

// New wraps an initialized typed repository.
func New(repo *loam.TypedRepository[DocumentMetadata]) *Vault {
	return &Vault{Repo: repo}
}

// Open initializes a vault rooted at dir, without git versioning.
func Open(dir string) (*Vault, error) {
	repo, err := loam.Init(dir, loam.WithVersioning(false))
	if err != nil {
		return nil, fmt.Errorf("loam init failed for %s: %w", dir, err)
	}
	return New(loam.NewTypedRepository[DocumentMetadata](repo)), nil
}

func (v *Vault) Create(ctx context.Context, d *domain.Document) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	// A tombstone still occupies its id.
	if _, err := v.Repo.Get(ctx, d.ID); err == nil {
		return fmt.Errorf("document %s: %w", d.ID, domain.ErrAlreadyExists)
	}
	return v.save(ctx, d, false)
}

func (v *Vault) Get(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := v.Repo.Get(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}
	if doc.Data.Deleted {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return toDocument(doc), nil
}

// List returns the live documents of ownerID (all owners when empty), oldest first.
func (v *Vault) List(ctx context.Context, ownerID string) ([]*domain.Document, error) {
	docs, err := v.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}
	out := make([]*domain.Document, 0, len(docs))
	for _, doc := range docs {
		if doc.Data.Deleted {
			continue
		}
		if ownerID != "" && doc.Data.OwnerID != ownerID {
			continue
		}
		out = append(out, toDocument(doc))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UploadedAt.Before(out[j].UploadedAt)
	})
	return out, nil
}

// Delete writes a tombstone: the frontmatter is kept, the content is dropped.
func (v *Vault) Delete(ctx context.Context, id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	d, err := v.Get(ctx, id)
	if err != nil {
		return err
	}
	d.Content = ""
	return v.save(ctx, d, true)
}

func (v *Vault) save(ctx context.Context, d *domain.Document, deleted bool) error {
	err := v.Repo.Save(ctx, &loam.DocumentModel[DocumentMetadata]{
		ID:      d.ID,
		Content: d.Content,
		Data: DocumentMetadata{
			ID:         d.ID,
			Name:       d.Name,
			Type:       d.Type,
			URL:        d.URL,
			Size:       d.Size,
			OwnerID:    d.OwnerID,
			UploadedAt: d.UploadedAt.UTC(),
			Deleted:    deleted,
		},
	})
	if err != nil {
		return fmt.Errorf("loam save failed for %s: %w", d.ID, err)
	}
	return nil
}

func toDocument(doc *loam.DocumentModel[DocumentMetadata]) *domain.Document {
	id := doc.Data.ID
	if id == "" {
		id = trimExtension(doc.ID)
	}
	return &domain.Document{
		ID:         id,
		Name:       doc.Data.Name,
		Type:       doc.Data.Type,
		URL:        doc.Data.URL,
		Content:    strings.TrimRight(doc.Content, "\n"),
		Size:       doc.Data.Size,
		OwnerID:    doc.Data.OwnerID,
		UploadedAt: doc.Data.UploadedAt,
	}
}

func isNotFound(err error) bool {
	if errors.Is(err, fs.ErrNotExist) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}

func trimExtension(id string) string {
	if i := strings.LastIndex(id, "."); i > 0 && !strings.Contains(id[i:], "/") {
		return id[:i]
	}
	return id
}
