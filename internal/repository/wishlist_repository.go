package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/storefront-api/internal/domain"
)

// WishlistMetaKey is the user_meta key holding the wishlist blob.
const WishlistMetaKey = "_storefront_wishlist"

// WishlistRepository loads and stores the per-user wishlist blob.
type WishlistRepository interface {
	Get(ctx context.Context, userID int64) (domain.Wishlist, error)
	Save(ctx context.Context, userID int64, items domain.Wishlist) error
}

type wishlistRepository struct {
	pool *pgxpool.Pool
}

// NewWishlistRepository constructs repository.
func NewWishlistRepository(pool *pgxpool.Pool) WishlistRepository {
	return &wishlistRepository{pool: pool}
}

func (r *wishlistRepository) Get(ctx context.Context, userID int64) (domain.Wishlist, error) {
	const query = `SELECT meta_value FROM user_meta WHERE user_id=$1 AND meta_key=$2`
	var raw []byte
	if err := r.pool.QueryRow(ctx, query, userID, WishlistMetaKey).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Wishlist{}, nil
		}
		return nil, err
	}
	var items domain.Wishlist
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode wishlist for user %d: %w", userID, err)
	}
	return items, nil
}

func (r *wishlistRepository) Save(ctx context.Context, userID int64, items domain.Wishlist) error {
	if items == nil {
		items = domain.Wishlist{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO user_meta (user_id, meta_key, meta_value)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, meta_key) DO UPDATE SET meta_value=EXCLUDED.meta_value, updated_at=NOW()`
	_, err = r.pool.Exec(ctx, query, userID, WishlistMetaKey, raw)
	return err
}
