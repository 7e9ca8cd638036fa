package repository

import (
	"context"
	"fmt"

	"shopfront/internal/model"
	"shopfront/internal/query"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `id, name, sku, description, image, images, price, discount, quantity,
	is_available, is_featured, brand, category_id, tags, delivery_time, courier_charge,
	rating_average, rating_count, created_at, updated_at`

// ProductQuerySpec whitelists the product list parameters.
var ProductQuerySpec = query.Spec{
	Columns: map[string]query.Column{
		"id":            {Expr: "id", Kind: query.UUID},
		"name":          {Expr: "name"},
		"sku":           {Expr: "sku"},
		"brand":         {Expr: "brand"},
		"price":         {Expr: "price", Kind: query.Number},
		"discount":      {Expr: "discount", Kind: query.Number},
		"quantity":      {Expr: "quantity", Kind: query.Int},
		"isAvailable":   {Expr: "is_available", Kind: query.Bool},
		"isFeatured":    {Expr: "is_featured", Kind: query.Bool},
		"categoryId":    {Expr: "category_id", Kind: query.UUID},
		"tags":          {Expr: "tags", Kind: query.TextArray},
		"ratingAverage": {Expr: "rating_average", Kind: query.Number},
		"ratingCount":   {Expr: "rating_count", Kind: query.Int},
		"createdAt":     {Expr: "created_at", Kind: query.Time},
	},
	Searchable:  []string{"name", "description", "brand", "sku"},
	DefaultSort: "-createdAt",
}

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// Create inserts a new product and fills in the generated fields.
func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (name, sku, description, image, images, price, discount, quantity,
			is_available, is_featured, brand, category_id, tags, delivery_time, courier_charge)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, rating_average, rating_count, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		p.Name, p.SKU, p.Description, p.Image, p.Images, p.Price, p.Discount, p.Quantity,
		p.IsAvailable, p.IsFeatured, p.Brand, p.CategoryID, p.Tags, p.DeliveryTime, p.CourierCharge,
	).Scan(&p.ID, &p.RatingAverage, &p.RatingCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		err = translateError(err)
		r.logger.Error().Err(err).Str("name", p.Name).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	r.logger.Debug().Str("product_id", p.ID.String()).Msg("product created successfully")
	return nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := getOne[model.Product](ctx, r.pool, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	if p == nil {
		r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
	}
	return p, nil
}

// GetByIDs retrieves multiple products by their IDs.
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	products, err := getMany[model.Product](ctx, r.pool,
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1) ORDER BY name`, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}
	return products, nil
}

// ValidateProductsExist checks if all provided product IDs exist in the database.
func (r *productRepository) ValidateProductsExist(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		SELECT want.id FROM unnest($1::uuid[]) AS want(id)
		WHERE NOT EXISTS (SELECT 1 FROM products p WHERE p.id = want.id)
		LIMIT 1
	`

	var missing uuid.UUID
	err := r.pool.QueryRow(ctx, query, ids).Scan(&missing)
	if err == pgx.ErrNoRows {
		return nil
	}
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to validate products")
		return fmt.Errorf("failed to validate products: %w", err)
	}
	return model.NotFound(fmt.Sprintf("Product not found: %s", missing))
}

// Update saves every editable product field.
func (r *productRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
		UPDATE products
		SET name = $2, sku = $3, description = $4, image = $5, images = $6, price = $7,
		    discount = $8, quantity = $9, is_available = $10, is_featured = $11, brand = $12,
		    category_id = $13, tags = $14, delivery_time = $15, courier_charge = $16,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		p.ID, p.Name, p.SKU, p.Description, p.Image, p.Images, p.Price, p.Discount, p.Quantity,
		p.IsAvailable, p.IsFeatured, p.Brand, p.CategoryID, p.Tags, p.DeliveryTime, p.CourierCharge,
	).Scan(&p.UpdatedAt)
	if err != nil {
		err = translateError(err)
		r.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

// AppendImages adds image URLs to a product. The first image also becomes
// the cover when the product has none.
func (r *productRepository) AppendImages(ctx context.Context, id uuid.UUID, urls []string) (*model.Product, error) {
	query := `
		UPDATE products
		SET images = images || $2::text[], image = COALESCE(image, ($2::text[])[1]), updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	p, err := getOne[model.Product](ctx, r.pool, query, id, urls)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to append product images")
		return nil, fmt.Errorf("failed to append product images: %w", err)
	}
	return p, nil
}

// List returns one page of products.
func (r *productRepository) List(ctx context.Context, q *query.Query) (*model.Page[model.Product], error) {
	page, err := listPage[model.Product](ctx, r.pool, q, `SELECT `+productColumns+` FROM products`, "products")
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return page, nil
}

// All returns the whole catalogue ordered by name.
func (r *productRepository) All(ctx context.Context) ([]model.Product, error) {
	products, err := getMany[model.Product](ctx, r.pool, `SELECT `+productColumns+` FROM products ORDER BY name`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	return products, nil
}

// DecrementStock takes qty units if at least qty are in stock.
func (r *productRepository) DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, qty int) (bool, error) {
	query := `
		UPDATE products
		SET quantity = quantity - $2, updated_at = NOW()
		WHERE id = $1 AND quantity >= $2
	`

	tag, err := tx.Exec(ctx, query, id, qty)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Int("quantity", qty).Msg("failed to decrement stock")
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}
	return affected(tag), nil
}

// IncrementStock returns qty units to stock.
func (r *productRepository) IncrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, qty int) error {
	query := `UPDATE products SET quantity = quantity + $2, updated_at = NOW() WHERE id = $1`

	if _, err := tx.Exec(ctx, query, id, qty); err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Int("quantity", qty).Msg("failed to restore stock")
		return fmt.Errorf("failed to restore stock: %w", err)
	}
	return nil
}

// Delete removes a product and returns it, or nil when it did not exist.
func (r *productRepository) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Product, error) {
	p, err := getOne[model.Product](ctx, tx, `DELETE FROM products WHERE id = $1 RETURNING `+productColumns, id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}
	return p, nil
}
