package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-desk/internal/domain"
)

type sqliteUserRepository struct {
	db *sql.DB
}

// NewSQLiteUserRepository returns a credential store on the embedded schema.
func NewSQLiteUserRepository(db *sql.DB) UserRepository {
	return &sqliteUserRepository{db: db}
}

const userColumns = `id, email, name, role, password_hash, contact_number, pin_code, created_at`

func (r *sqliteUserRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (` + userColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT DO NOTHING`
	res, err := r.db.ExecContext(ctx, query,
		user.ID,
		normalizeEmail(user.Email),
		user.Name,
		string(user.Role),
		user.PasswordHash,
		user.ContactNumber,
		user.PinCode,
		user.CreatedAt.UnixNano(),
	)
	if err != nil {
		return err
	}
	return requireRow(res, ErrDuplicate)
}

func (r *sqliteUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE id=?`, id)
}

func (r *sqliteUserRepository) GetByEmail(ctx context.Context, role domain.Role, email string) (*domain.User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE role=? AND email=?`, string(role), normalizeEmail(email))
}

func (r *sqliteUserRepository) one(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var (
		user    domain.User
		created int64
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.PasswordHash,
		&user.ContactNumber,
		&user.PinCode,
		&created,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pgx.ErrNoRows
	}
	if err != nil {
		return nil, err
	}
	user.CreatedAt = time.Unix(0, created)
	return &user, nil
}
