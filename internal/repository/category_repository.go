package repository

import (
	"context"
	"fmt"

	"shopfront/internal/model"
	"shopfront/internal/query"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const categoryColumns = `id, title, description, image, created_at, updated_at`

// CategoryQuerySpec whitelists the category list parameters.
var CategoryQuerySpec = query.Spec{
	Columns: map[string]query.Column{
		"id":        {Expr: "id", Kind: query.UUID},
		"title":     {Expr: "title"},
		"createdAt": {Expr: "created_at", Kind: query.Time},
	},
	Searchable:  []string{"title", "description"},
	DefaultSort: "title",
}

type categoryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(pool *pgxpool.Pool, logger zerolog.Logger) CategoryRepository {
	return &categoryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "category").Logger(),
	}
}

func (r *categoryRepository) Create(ctx context.Context, c *model.Category) error {
	query := `
		INSERT INTO categories (title, description, image)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, c.Title, c.Description, c.Image).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		err = translateError(err)
		r.logger.Error().Err(err).Str("title", c.Title).Msg("failed to create category")
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	c, err := getOne[model.Category](ctx, r.pool, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("category_id", id.String()).Msg("failed to query category")
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return c, nil
}

func (r *categoryRepository) Update(ctx context.Context, c *model.Category) error {
	query := `
		UPDATE categories
		SET title = $2, description = $3, image = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query, c.ID, c.Title, c.Description, c.Image).Scan(&c.UpdatedAt)
	if err != nil {
		err = translateError(err)
		r.logger.Error().Err(err).Str("category_id", c.ID.String()).Msg("failed to update category")
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("category_id", id.String()).Msg("failed to delete category")
		return false, fmt.Errorf("failed to delete category: %w", err)
	}
	return affected(tag), nil
}

func (r *categoryRepository) List(ctx context.Context, q *query.Query) (*model.Page[model.Category], error) {
	page, err := listPage[model.Category](ctx, r.pool, q, `SELECT `+categoryColumns+` FROM categories`, "categories")
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list categories")
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return page, nil
}
