package sqlite

import (
	"context"
	"fmt"

	"github.com/livingtrust/livingtrust/pkg/domain"
)

// UserRepo implements ports.UserRepository. Emails are unique regardless of case.
type UserRepo struct {
	db DBTX
}

func NewUserRepo(conn DBTX) *UserRepo {
	return &UserRepo{db: conn}
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO users (id, email, name, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)`, u.ID, u.Email, u.Name, u.PasswordHash, formatTime(u.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", u.Email, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.get(ctx, `id = ?`, id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.get(ctx, `email = ?`, email)
}

func (r *UserRepo) get(ctx context.Context, where string, arg string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, email, name, password_hash, created_at FROM users WHERE `+where, arg)
	var u domain.User
	var created string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &created); err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	u.CreatedAt = parseTime(created)
	return &u, nil
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET email = ?, name = ?, password_hash = ? WHERE id = ?`,
		u.Email, u.Name, u.PasswordHash, u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", u.Email, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("updating user: %w", err)
	}
	return requireAffected(res, "user", u.ID)
}
