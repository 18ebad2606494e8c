package sqlite

import (
	"context"
	"fmt"

	"github.com/livingtrust/livingtrust/pkg/domain"
)

// DocumentRepo implements ports.DocumentRepository.
type DocumentRepo struct {
	db DBTX
}

func NewDocumentRepo(conn DBTX) *DocumentRepo {
	return &DocumentRepo{db: conn}
}

func (r *DocumentRepo) Create(ctx context.Context, d *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO documents (id, name, type, url, content, size, owner_id, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.Type, d.URL, d.Content, d.Size, d.OwnerID, formatTime(d.UploadedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("document %s: %w", d.ID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("inserting document: %w", err)
	}
	return nil
}

func (r *DocumentRepo) Get(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, type, url, content, size, owner_id, uploaded_at
		FROM documents WHERE id = ?`, id)
	d, err := scanDocument(row)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return d, nil
}

func (r *DocumentRepo) List(ctx context.Context, ownerID string) ([]*domain.Document, error) {
	query := `SELECT id, name, type, url, content, size, owner_id, uploaded_at FROM documents`
	var args []any
	if ownerID != "" {
		query += ` WHERE owner_id = ?`
		args = append(args, ownerID)
	}
	query += ` ORDER BY uploaded_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	out := []*domain.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return requireAffected(res, "document", id)
}

func scanDocument(s scanner) (*domain.Document, error) {
	var d domain.Document
	var uploaded string
	if err := s.Scan(&d.ID, &d.Name, &d.Type, &d.URL, &d.Content, &d.Size, &d.OwnerID, &uploaded); err != nil {
		return nil, err
	}
	d.UploadedAt = parseTime(uploaded)
	return &d, nil
}
