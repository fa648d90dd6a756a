package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/storefront-api/internal/domain"
)

// UserRepository reads accounts from the user store.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByLogin(ctx context.Context, login string) (*domain.User, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, username, email, display_name, first_name, last_name, password_hash, roles, registered_at`

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

// GetByLogin matches either the username or the e-mail address.
func (r *userRepository) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users
        WHERE username=$1 OR LOWER(email)=LOWER($1)
        ORDER BY (username=$1) DESC
        LIMIT 1`
	return r.fetchSingle(ctx, query, strings.TrimSpace(login))
}

func (r *userRepository) Exists(ctx context.Context, id int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM users WHERE id=$1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.DisplayName,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.Roles,
		&user.RegisteredAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
