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

const (
	reviewSelect = `
		SELECT r.id, r.user_id, r.product_id, r.rating, r.review_text, r.is_published,
		       r.helpful_count, u.name AS user_name, r.created_at, r.updated_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id`
	reviewFrom = `reviews r JOIN users u ON u.id = r.user_id`
)

// ReviewQuerySpec whitelists the review list parameters.
var ReviewQuerySpec = query.Spec{
	Columns: map[string]query.Column{
		"id":           {Expr: "r.id", Kind: query.UUID},
		"userId":       {Expr: "r.user_id", Kind: query.UUID},
		"productId":    {Expr: "r.product_id", Kind: query.UUID},
		"rating":       {Expr: "r.rating", Kind: query.Int},
		"isPublished":  {Expr: "r.is_published", Kind: query.Bool},
		"helpfulCount": {Expr: "r.helpful_count", Kind: query.Int},
		"createdAt":    {Expr: "r.created_at", Kind: query.Time},
	},
	Searchable:  []string{"r.review_text", "u.name"},
	DefaultSort: "-createdAt",
}

type reviewRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool *pgxpool.Pool, logger zerolog.Logger) ReviewRepository {
	return &reviewRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "review").Logger(),
	}
}

func (r *reviewRepository) Create(ctx context.Context, tx pgx.Tx, rv *model.Review) error {
	query := `
		INSERT INTO reviews (user_id, product_id, rating, review_text, is_published)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, helpful_count, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query, rv.UserID, rv.ProductID, rv.Rating, rv.ReviewText, rv.IsPublished).
		Scan(&rv.ID, &rv.HelpfulCount, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		err = translateError(err)
		r.logger.Error().Err(err).Str("product_id", rv.ProductID.String()).Msg("failed to create review")
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	return r.get(ctx, r.pool, id, "")
}

func (r *reviewRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Review, error) {
	return r.get(ctx, tx, id, " FOR UPDATE OF r")
}

func (r *reviewRepository) get(ctx context.Context, q Querier, id uuid.UUID, suffix string) (*model.Review, error) {
	rv, err := getOne[model.Review](ctx, q, reviewSelect+` WHERE r.id = $1`+suffix, id)
	if err != nil {
		r.logger.Error().Err(err).Str("review_id", id.String()).Msg("failed to query review")
		return nil, fmt.Errorf("failed to query review: %w", err)
	}
	return rv, nil
}

func (r *reviewRepository) Update(ctx context.Context, tx pgx.Tx, rv *model.Review) error {
	query := `
		UPDATE reviews SET rating = $2, review_text = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	if err := tx.QueryRow(ctx, query, rv.ID, rv.Rating, rv.ReviewText).Scan(&rv.UpdatedAt); err != nil {
		r.logger.Error().Err(err).Str("review_id", rv.ID.String()).Msg("failed to update review")
		return fmt.Errorf("failed to update review: %w", err)
	}
	return nil
}

func (r *reviewRepository) SetPublished(ctx context.Context, tx pgx.Tx, id uuid.UUID, published bool) error {
	query := `UPDATE reviews SET is_published = $2, updated_at = NOW() WHERE id = $1`

	if _, err := tx.Exec(ctx, query, id, published); err != nil {
		r.logger.Error().Err(err).Str("review_id", id.String()).Msg("failed to change review visibility")
		return fmt.Errorf("failed to change review visibility: %w", err)
	}
	return nil
}

// IncrementHelpful adds one helpful vote and returns the updated review.
func (r *reviewRepository) IncrementHelpful(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	query := `
		WITH updated AS (
			UPDATE reviews SET helpful_count = helpful_count + 1, updated_at = NOW()
			WHERE id = $1
			RETURNING *
		)
		SELECT r.id, r.user_id, r.product_id, r.rating, r.review_text, r.is_published,
		       r.helpful_count, u.name AS user_name, r.created_at, r.updated_at
		FROM updated r
		JOIN users u ON u.id = r.user_id
	`

	rv, err := getOne[model.Review](ctx, r.pool, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("review_id", id.String()).Msg("failed to mark review helpful")
		return nil, fmt.Errorf("failed to mark review helpful: %w", err)
	}
	return rv, nil
}

func (r *reviewRepository) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id); err != nil {
		r.logger.Error().Err(err).Str("review_id", id.String()).Msg("failed to delete review")
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}

func (r *reviewRepository) DeleteByProduct(ctx context.Context, tx pgx.Tx, productID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM reviews WHERE product_id = $1`, productID); err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to delete product reviews")
		return fmt.Errorf("failed to delete product reviews: %w", err)
	}
	return nil
}

func (r *reviewRepository) List(ctx context.Context, q *query.Query) (*model.Page[model.Review], error) {
	page, err := listPage[model.Review](ctx, r.pool, q, reviewSelect, reviewFrom)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list reviews")
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return page, nil
}

// RecomputeProductRating rebuilds the product rating from its published reviews.
func (r *reviewRepository) RecomputeProductRating(ctx context.Context, tx pgx.Tx, productID uuid.UUID) error {
	query := `
		UPDATE products p
		SET rating_average = COALESCE(s.average, 0), rating_count = s.count, updated_at = NOW()
		FROM (
			SELECT ROUND(AVG(rating)::numeric, 2) AS average, COUNT(*) AS count
			FROM reviews
			WHERE product_id = $1 AND is_published
		) s
		WHERE p.id = $1
	`

	if _, err := tx.Exec(ctx, query, productID); err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to recompute product rating")
		return fmt.Errorf("failed to recompute product rating: %w", err)
	}
	return nil
}
