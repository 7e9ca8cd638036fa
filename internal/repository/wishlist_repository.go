package repository

import (
	"context"
	"fmt"

	"shopfront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type wishlistRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewWishlistRepository creates a new PostgreSQL-backed wishlist repository.
func NewWishlistRepository(pool *pgxpool.Pool, logger zerolog.Logger) WishlistRepository {
	return &wishlistRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "wishlist").Logger(),
	}
}

// GetByUserID retrieves the user's wishlist with product details.
func (r *wishlistRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Wishlist, error) {
	w, err := getOne[model.Wishlist](ctx, r.pool,
		`SELECT id, user_id, created_at, updated_at FROM wishlists WHERE user_id = $1`, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query wishlist")
		return nil, fmt.Errorf("failed to query wishlist: %w", err)
	}
	if w == nil {
		return nil, nil
	}

	itemsQuery := `
		SELECT wi.product_id, p.name, p.image, p.price, wi.added_at
		FROM wishlist_items wi
		JOIN products p ON p.id = wi.product_id
		WHERE wi.wishlist_id = $1
		ORDER BY wi.added_at DESC
	`

	w.Items, err = getMany[model.WishlistItem](ctx, r.pool, itemsQuery, w.ID)
	if err != nil {
		r.logger.Error().Err(err).Str("wishlist_id", w.ID.String()).Msg("failed to query wishlist items")
		return nil, fmt.Errorf("failed to query wishlist items: %w", err)
	}
	return w, nil
}

// AddItem creates the wishlist if needed and adds the product once.
func (r *wishlistRepository) AddItem(ctx context.Context, tx pgx.Tx, userID, productID uuid.UUID) error {
	upsert := `
		INSERT INTO wishlists (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = NOW()
		RETURNING id
	`

	var wishlistID uuid.UUID
	if err := tx.QueryRow(ctx, upsert, userID).Scan(&wishlistID); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to ensure wishlist")
		return fmt.Errorf("failed to ensure wishlist: %w", err)
	}

	insert := `
		INSERT INTO wishlist_items (wishlist_id, product_id) VALUES ($1, $2)
		ON CONFLICT (wishlist_id, product_id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, insert, wishlistID, productID); err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to add wishlist item")
		return fmt.Errorf("failed to add wishlist item: %w", err)
	}
	return nil
}

func (r *wishlistRepository) Contains(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM wishlist_items wi
			JOIN wishlists w ON w.id = wi.wishlist_id
			WHERE w.user_id = $1 AND wi.product_id = $2
		)
	`

	var found bool
	if err := r.pool.QueryRow(ctx, query, userID, productID).Scan(&found); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to check wishlist")
		return false, fmt.Errorf("failed to check wishlist: %w", err)
	}
	return found, nil
}

func (r *wishlistRepository) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	query := `
		DELETE FROM wishlist_items wi
		USING wishlists w
		WHERE w.id = wi.wishlist_id AND w.user_id = $1 AND wi.product_id = $2
	`

	tag, err := r.pool.Exec(ctx, query, userID, productID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to remove wishlist item")
		return false, fmt.Errorf("failed to remove wishlist item: %w", err)
	}
	return affected(tag), nil
}

func (r *wishlistRepository) Delete(ctx context.Context, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM wishlists WHERE user_id = $1`, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to delete wishlist")
		return false, fmt.Errorf("failed to delete wishlist: %w", err)
	}
	return affected(tag), nil
}

// RemoveProduct drops a product from every wishlist and deletes wishlists left empty.
func (r *wishlistRepository) RemoveProduct(ctx context.Context, tx pgx.Tx, productID uuid.UUID) error {
	rows, err := tx.Query(ctx, `DELETE FROM wishlist_items WHERE product_id = $1 RETURNING wishlist_id`, productID)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to remove product from wishlists")
		return fmt.Errorf("failed to remove product from wishlists: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return fmt.Errorf("failed to collect affected wishlists: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	prune := `
		DELETE FROM wishlists w
		WHERE w.id = ANY($1)
		  AND NOT EXISTS (SELECT 1 FROM wishlist_items wi WHERE wi.wishlist_id = w.id)
	`
	if _, err := tx.Exec(ctx, prune, ids); err != nil {
		r.logger.Error().Err(err).Msg("failed to delete empty wishlists")
		return fmt.Errorf("failed to delete empty wishlists: %w", err)
	}
	return nil
}
