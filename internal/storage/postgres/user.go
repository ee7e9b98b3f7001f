package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ikram-javatech/product-order-service/internal/domain/user"
)

const (
	getUserByUsernameSQL = `SELECT id, username, password_hash, roles
		FROM users WHERE username = $1`

	insertUserSQL = `INSERT INTO users (username, password_hash, roles)
		VALUES ($1, $2, $3) RETURNING id`
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByUsername returns the account with the given username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	var u user.User
	err := r.pool.QueryRow(ctx, getUserByUsernameSQL, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Roles)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get user %q", username)
	}
	return &u, nil
}

// Create persists a new account, filling in u.ID.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	err := r.pool.QueryRow(ctx, insertUserSQL, u.Username, u.PasswordHash, u.Roles).
		Scan(&u.ID)
	if err != nil {
		return errors.Wrapf(err, "create user %q", u.Username)
	}
	return nil
}
