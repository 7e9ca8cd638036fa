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

const cartColumns = `id, user_id, subtotal, total, created_at, updated_at`

type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// GetByUserID retrieves the user's cart with its items.
func (r *cartRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	return r.getByUser(ctx, r.pool, userID, false)
}

// GetByUserIDForUpdate retrieves and locks the user's cart.
func (r *cartRepository) GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Cart, error) {
	return r.getByUser(ctx, tx, userID, true)
}

func (r *cartRepository) getByUser(ctx context.Context, q Querier, userID uuid.UUID, lock bool) (*model.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE user_id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	cart, err := getOne[model.Cart](ctx, q, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	if cart == nil {
		return nil, nil
	}

	itemsQuery := `
		SELECT ci.product_id, p.name, p.image, ci.quantity, ci.price, ci.total
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.added_at, ci.product_id
	`

	cart.Items, err = getMany[model.CartItem](ctx, q, itemsQuery, cart.ID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cart.ID.String()).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	return cart, nil
}

// Create inserts an empty cart.
func (r *cartRepository) Create(ctx context.Context, tx pgx.Tx, cart *model.Cart) error {
	query := `
		INSERT INTO carts (user_id)
		VALUES ($1)
		RETURNING id, subtotal, total, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query, cart.UserID).
		Scan(&cart.ID, &cart.Subtotal, &cart.Total, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		err = translateError(err)
		r.logger.Error().Err(err).Str("user_id", cart.UserID.String()).Msg("failed to create cart")
		return fmt.Errorf("failed to create cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []model.CartItem{}
	}
	return nil
}

// UpsertItem inserts or replaces a cart line.
func (r *cartRepository) UpsertItem(ctx context.Context, tx pgx.Tx, cartID uuid.UUID, item *model.CartItem) error {
	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity, price, total)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, price = EXCLUDED.price, total = EXCLUDED.total
	`

	_, err := tx.Exec(ctx, query, cartID, item.ProductID, item.Quantity, item.Price, item.Total)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("cart_id", cartID.String()).
			Str("product_id", item.ProductID.String()).
			Msg("failed to save cart item")
		return fmt.Errorf("failed to save cart item: %w", err)
	}
	return nil
}

// RemoveItems deletes the given product lines from a cart.
func (r *cartRepository) RemoveItems(ctx context.Context, tx pgx.Tx, cartID uuid.UUID, productIDs []uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = ANY($2)`

	if _, err := tx.Exec(ctx, query, cartID, productIDs); err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to remove cart items")
		return fmt.Errorf("failed to remove cart items: %w", err)
	}
	return nil
}

// UpdateTotals stores the cart's subtotal and total.
func (r *cartRepository) UpdateTotals(ctx context.Context, tx pgx.Tx, cart *model.Cart) error {
	query := `
		UPDATE carts SET subtotal = $2, total = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	if err := tx.QueryRow(ctx, query, cart.ID, cart.Subtotal, cart.Total).Scan(&cart.UpdatedAt); err != nil {
		r.logger.Error().Err(err).Str("cart_id", cart.ID.String()).Msg("failed to update cart totals")
		return fmt.Errorf("failed to update cart totals: %w", err)
	}
	return nil
}

// Delete removes a cart and its items.
func (r *cartRepository) Delete(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID); err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to delete cart")
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

// RemoveProduct drops a product from every cart and repairs the affected carts.
func (r *cartRepository) RemoveProduct(ctx context.Context, tx pgx.Tx, productID uuid.UUID) error {
	rows, err := tx.Query(ctx, `DELETE FROM cart_items WHERE product_id = $1 RETURNING cart_id`, productID)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to remove product from carts")
		return fmt.Errorf("failed to remove product from carts: %w", err)
	}
	cartIDs, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return fmt.Errorf("failed to collect affected carts: %w", err)
	}
	if len(cartIDs) == 0 {
		return nil
	}

	recompute := `
		UPDATE carts c
		SET subtotal = t.sum, total = t.sum, updated_at = NOW()
		FROM (
			SELECT c2.id, COALESCE(SUM(ci.total), 0) AS sum
			FROM carts c2
			LEFT JOIN cart_items ci ON ci.cart_id = c2.id
			WHERE c2.id = ANY($1)
			GROUP BY c2.id
		) t
		WHERE c.id = t.id
	`
	if _, err := tx.Exec(ctx, recompute, cartIDs); err != nil {
		r.logger.Error().Err(err).Msg("failed to recompute cart totals")
		return fmt.Errorf("failed to recompute cart totals: %w", err)
	}

	prune := `
		DELETE FROM carts c
		WHERE c.id = ANY($1)
		  AND NOT EXISTS (SELECT 1 FROM cart_items ci WHERE ci.cart_id = c.id)
	`
	if _, err := tx.Exec(ctx, prune, cartIDs); err != nil {
		r.logger.Error().Err(err).Msg("failed to delete empty carts")
		return fmt.Errorf("failed to delete empty carts: %w", err)
	}

	r.logger.Debug().
		Str("product_id", productID.String()).
		Int("carts", len(cartIDs)).
		Msg("product removed from carts")
	return nil
}
