package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-desk/internal/domain"
)

// ErrDuplicate is returned when a create collides with an existing key.
var ErrDuplicate = errors.New("repository: duplicate key")

// UserRepository is the credential store. Accounts are keyed by role and
// email, so the same address may hold one account per dashboard.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, role domain.Role, email string) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (id, email, name, role, password_hash, contact_number, pin_code, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (role, email) DO NOTHING`

	cmd, err := r.pool.Exec(ctx, query,
		user.ID,
		normalizeEmail(user.Email),
		user.Name,
		user.Role,
		user.PasswordHash,
		user.ContactNumber,
		user.PinCode,
		user.CreatedAt,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDuplicate
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT id, email, name, role, password_hash, contact_number, pin_code, created_at
        FROM users WHERE id=$1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, role domain.Role, email string) (*domain.User, error) {
	const query = `
        SELECT id, email, name, role, password_hash, contact_number, pin_code, created_at
        FROM users WHERE role=$1 AND email=$2`
	return scanUser(r.pool.QueryRow(ctx, query, role, normalizeEmail(email)))
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.PasswordHash,
		&user.ContactNumber,
		&user.PinCode,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
