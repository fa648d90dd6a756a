package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/storefront-api/internal/auth"
)

// SettingsRepository persists named configuration values.
type SettingsRepository interface {
	Get(ctx context.Context, name string) (string, error)
	PutIfAbsent(ctx context.Context, name, value string) (string, error)
	All(ctx context.Context) (map[string]string, error)
}

type settingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository constructs repository.
func NewSettingsRepository(pool *pgxpool.Pool) SettingsRepository {
	return &settingsRepository{pool: pool}
}

func (r *settingsRepository) Get(ctx context.Context, name string) (string, error) {
	const query = `SELECT value FROM settings WHERE name=$1`
	var value string
	if err := r.pool.QueryRow(ctx, query, name).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", auth.ErrSettingNotFound
		}
		return "", err
	}
	return value, nil
}

// PutIfAbsent inserts value unless a row already exists; the first writer
// wins and every caller reads back the same stored value.
func (r *settingsRepository) PutIfAbsent(ctx context.Context, name, value string) (string, error) {
	const insert = `
        INSERT INTO settings (name, value)
        VALUES ($1, $2)
        ON CONFLICT (name) DO NOTHING`
	if _, err := r.pool.Exec(ctx, insert, name, value); err != nil {
		return "", err
	}
	return r.Get(ctx, name)
}

func (r *settingsRepository) All(ctx context.Context) (map[string]string, error) {
	const query = `SELECT name, value FROM settings WHERE name <> $1`
	rows, err := r.pool.Query(ctx, query, auth.SecretSettingName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		values[name] = value
	}
	return values, rows.Err()
}
