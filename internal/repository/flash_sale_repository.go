package repository

import (
	"context"
	"fmt"
	"time"

	"shopfront/internal/model"
	"shopfront/internal/query"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const flashSaleSelect = `
	SELECT f.id, f.title, f.description, f.image, f.discount_type, f.discount_value, f.start_date,
	       f.end_date, f.is_active, f.featured, f.display_order,
	       ARRAY(SELECT fp.product_id FROM flash_sale_products fp WHERE fp.flash_sale_id = f.id ORDER BY fp.product_id) AS product_ids,
	       f.created_at, f.updated_at
	FROM flash_sales f`

// FlashSaleQuerySpec whitelists the flash sale list parameters.
var FlashSaleQuerySpec = query.Spec{
	Columns: map[string]query.Column{
		"id":           {Expr: "f.id", Kind: query.UUID},
		"title":        {Expr: "f.title"},
		"discountType": {Expr: "f.discount_type"},
		"isActive":     {Expr: "f.is_active", Kind: query.Bool},
		"featured":     {Expr: "f.featured", Kind: query.Bool},
		"startDate":    {Expr: "f.start_date", Kind: query.Time},
		"endDate":      {Expr: "f.end_date", Kind: query.Time},
		"displayOrder": {Expr: "f.display_order", Kind: query.Int},
		"createdAt":    {Expr: "f.created_at", Kind: query.Time},
	},
	Searchable:  []string{"f.title", "f.description"},
	DefaultSort: "displayOrder",
}

type flashSaleRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewFlashSaleRepository creates a new PostgreSQL-backed flash sale repository.
func NewFlashSaleRepository(pool *pgxpool.Pool, logger zerolog.Logger) FlashSaleRepository {
	return &flashSaleRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "flash_sale").Logger(),
	}
}

func (r *flashSaleRepository) Create(ctx context.Context, tx pgx.Tx, f *model.FlashSale) error {
	query := `
		INSERT INTO flash_sales (title, description, image, discount_type, discount_value,
			start_date, end_date, is_active, featured, display_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		f.Title, f.Description, f.Image, f.DiscountType, f.DiscountValue,
		f.StartDate, f.EndDate, f.IsActive, f.Featured, f.DisplayOrder,
	).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("title", f.Title).Msg("failed to create flash sale")
		return fmt.Errorf("failed to create flash sale: %w", err)
	}
	return r.linkProducts(ctx, tx, f)
}

// linkProducts replaces the product links of a sale.
func (r *flashSaleRepository) linkProducts(ctx context.Context, tx pgx.Tx, f *model.FlashSale) error {
	if _, err := tx.Exec(ctx, `DELETE FROM flash_sale_products WHERE flash_sale_id = $1`, f.ID); err != nil {
		r.logger.Error().Err(err).Str("flash_sale_id", f.ID.String()).Msg("failed to clear flash sale products")
		return fmt.Errorf("failed to clear flash sale products: %w", err)
	}
	if len(f.ProductIDs) == 0 {
		return nil
	}

	query := `
		INSERT INTO flash_sale_products (flash_sale_id, product_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT DO NOTHING
	`
	if _, err := tx.Exec(ctx, query, f.ID, f.ProductIDs); err != nil {
		r.logger.Error().Err(err).Str("flash_sale_id", f.ID.String()).Msg("failed to link flash sale products")
		return fmt.Errorf("failed to link flash sale products: %w", err)
	}
	return nil
}

func (r *flashSaleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.FlashSale, error) {
	f, err := getOne[model.FlashSale](ctx, r.pool, flashSaleSelect+` WHERE f.id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("flash_sale_id", id.String()).Msg("failed to query flash sale")
		return nil, fmt.Errorf("failed to query flash sale: %w", err)
	}
	return f, nil
}

func (r *flashSaleRepository) Update(ctx context.Context, tx pgx.Tx, f *model.FlashSale) error {
	query := `
		UPDATE flash_sales
		SET title = $2, description = $3, image = $4, discount_type = $5, discount_value = $6,
		    start_date = $7, end_date = $8, is_active = $9, featured = $10, display_order = $11,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := tx.QueryRow(ctx, query,
		f.ID, f.Title, f.Description, f.Image, f.DiscountType, f.DiscountValue,
		f.StartDate, f.EndDate, f.IsActive, f.Featured, f.DisplayOrder,
	).Scan(&f.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("flash_sale_id", f.ID.String()).Msg("failed to update flash sale")
		return fmt.Errorf("failed to update flash sale: %w", err)
	}
	return r.linkProducts(ctx, tx, f)
}

func (r *flashSaleRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM flash_sales WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("flash_sale_id", id.String()).Msg("failed to delete flash sale")
		return false, fmt.Errorf("failed to delete flash sale: %w", err)
	}
	return affected(tag), nil
}

// ListRunning returns the active sales whose window contains now.
func (r *flashSaleRepository) ListRunning(ctx context.Context, now time.Time, featuredOnly bool) ([]model.FlashSale, error) {
	query := flashSaleSelect + `
		WHERE f.is_active AND f.start_date <= $1 AND f.end_date >= $1 AND (NOT $2 OR f.featured)
		ORDER BY f.display_order, f.start_date
	`

	sales, err := getMany[model.FlashSale](ctx, r.pool, query, now, featuredOnly)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list running flash sales")
		return nil, fmt.Errorf("failed to list running flash sales: %w", err)
	}
	return sales, nil
}

func (r *flashSaleRepository) List(ctx context.Context, q *query.Query) (*model.Page[model.FlashSale], error) {
	page, err := listPage[model.FlashSale](ctx, r.pool, q, flashSaleSelect, "flash_sales f")
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list flash sales")
		return nil, fmt.Errorf("failed to list flash sales: %w", err)
	}
	return page, nil
}

func (r *flashSaleRepository) RemoveProduct(ctx context.Context, tx pgx.Tx, productID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM flash_sale_products WHERE product_id = $1`, productID); err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to unlink product from flash sales")
		return fmt.Errorf("failed to unlink product from flash sales: %w", err)
	}
	return nil
}
