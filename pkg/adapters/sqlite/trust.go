package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/livingtrust/livingtrust/pkg/domain"
)

const trustColumns = `id, trust_name, trust_type, grantor_name, grantor_address, beneficiaries,
	successor_trustee, assets, notes, status, owner_id, idempotency_key, created_at, updated_at`

// TrustRepo implements ports.TrustRepository.
type TrustRepo struct {
	db DBTX
}

func NewTrustRepo(conn DBTX) *TrustRepo {
	return &TrustRepo{db: conn}
}

func (r *TrustRepo) Create(ctx context.Context, t *domain.Trust) error {
	query := `INSERT INTO trusts (` + trustColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.TrustName, string(t.TrustType), t.GrantorName, t.GrantorAddress, t.Beneficiaries,
		t.SuccessorTrustee, t.Assets, t.Notes, string(t.Status), t.OwnerID, nullString(t.IdempotencyKey),
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("trust %s: %w", t.ID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("inserting trust: %w", err)
	}
	return nil
}

func (r *TrustRepo) Get(ctx context.Context, id string) (*domain.Trust, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+trustColumns+` FROM trusts WHERE id = ?`, id)
	t, err := scanTrust(row)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("trust %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scanning trust: %w", err)
	}
	return t, nil
}

func (r *TrustRepo) FindByIdempotencyKey(ctx context.Context, ownerID, key string) (*domain.Trust, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+trustColumns+` FROM trusts WHERE owner_id = ? AND idempotency_key = ?`, ownerID, key)
	t, err := scanTrust(row)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("idempotency key: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scanning trust: %w", err)
	}
	return t, nil
}

func (r *TrustRepo) List(ctx context.Context, filter domain.TrustFilter) ([]*domain.Trust, error) {
	var where []string
	var args []any
	if filter.OwnerID != "" {
		where = append(where, "owner_id = ?")
		args = append(args, filter.OwnerID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	query := `SELECT ` + trustColumns + ` FROM trusts`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing trusts: %w", err)
	}
	defer rows.Close()

	out := []*domain.Trust{}
	for rows.Next() {
		t, err := scanTrust(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning trust: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update rewrites every mutable column. The idempotency key and creation time are fixed.
func (r *TrustRepo) Update(ctx context.Context, t *domain.Trust) error {
	res, err := r.db.ExecContext(ctx, `UPDATE trusts SET trust_name = ?, trust_type = ?, grantor_name = ?,
		grantor_address = ?, beneficiaries = ?, successor_trustee = ?, assets = ?, notes = ?,
		status = ?, owner_id = ?, updated_at = ? WHERE id = ?`,
		t.TrustName, string(t.TrustType), t.GrantorName, t.GrantorAddress, t.Beneficiaries,
		t.SuccessorTrustee, t.Assets, t.Notes, string(t.Status), t.OwnerID, formatTime(t.UpdatedAt), t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating trust: %w", err)
	}
	return requireAffected(res, "trust", t.ID)
}

func (r *TrustRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trusts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting trust: %w", err)
	}
	return requireAffected(res, "trust", id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrust(s scanner) (*domain.Trust, error) {
	var t domain.Trust
	var trustType, status, created, updated string
	var key sql.NullString
	err := s.Scan(&t.ID, &t.TrustName, &trustType, &t.GrantorName, &t.GrantorAddress, &t.Beneficiaries,
		&t.SuccessorTrustee, &t.Assets, &t.Notes, &status, &t.OwnerID, &key, &created, &updated)
	if err != nil {
		return nil, err
	}
	t.TrustType = domain.TrustType(trustType)
	t.Status = domain.TrustStatus(status)
	t.IdempotencyKey = key.String
	t.CreatedAt = parseTime(created)
	t.UpdatedAt = parseTime(updated)
	return &t, nil
}

func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}
