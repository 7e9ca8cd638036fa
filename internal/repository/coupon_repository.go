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
	"github.com/shopspring/decimal"
)

const couponColumns = `id, code, discount_type, discount_value, valid_from, valid_until, max_uses,
	current_uses, min_order_amount, is_active, description, created_at, updated_at`

// CouponQuerySpec whitelists the coupon list parameters.
var CouponQuerySpec = query.Spec{
	Columns: map[string]query.Column{
		"id":            {Expr: "id", Kind: query.UUID},
		"code":          {Expr: "code"},
		"discountType":  {Expr: "discount_type"},
		"discountValue": {Expr: "discount_value", Kind: query.Number},
		"validFrom":     {Expr: "valid_from", Kind: query.Time},
		"validUntil":    {Expr: "valid_until", Kind: query.Time},
		"currentUses":   {Expr: "current_uses", Kind: query.Int},
		"isActive":      {Expr: "is_active", Kind: query.Bool},
		"createdAt":     {Expr: "created_at", Kind: query.Time},
	},
	Searchable:  []string{"code", "description"},
	DefaultSort: "-createdAt",
}

type couponRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCouponRepository creates a new PostgreSQL-backed coupon repository.
func NewCouponRepository(pool *pgxpool.Pool, logger zerolog.Logger) CouponRepository {
	return &couponRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "coupon").Logger(),
	}
}

func (r *couponRepository) Create(ctx context.Context, c *model.Coupon) error {
	query := `
		INSERT INTO coupons (code, discount_type, discount_value, valid_from, valid_until,
			max_uses, min_order_amount, is_active, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, current_uses, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		c.Code, c.DiscountType, c.DiscountValue, c.ValidFrom, c.ValidUntil,
		c.MaxUses, c.MinOrderAmount, c.IsActive, c.Description,
	).Scan(&c.ID, &c.CurrentUses, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		err = translateError(err)
		r.logger.Error().Err(err).Str("code", c.Code).Msg("failed to create coupon")
		return fmt.Errorf("failed to create coupon: %w", err)
	}
	return nil
}

func (r *couponRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	c, err := getOne[model.Coupon](ctx, r.pool, `SELECT `+couponColumns+` FROM coupons WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_id", id.String()).Msg("failed to query coupon")
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}
	return c, nil
}

// GetByCode retrieves a coupon by its (uppercase) code.
func (r *couponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	c, err := getOne[model.Coupon](ctx, r.pool, `SELECT `+couponColumns+` FROM coupons WHERE code = $1`, code)
	if err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to query coupon")
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}
	return c, nil
}

// GetByCodeForUpdate retrieves and locks a coupon inside tx.
func (r *couponRepository) GetByCodeForUpdate(ctx context.Context, tx pgx.Tx, code string) (*model.Coupon, error) {
	c, err := getOne[model.Coupon](ctx, tx, `SELECT `+couponColumns+` FROM coupons WHERE code = $1 FOR UPDATE`, code)
	if err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to lock coupon")
		return nil, fmt.Errorf("failed to lock coupon: %w", err)
	}
	return c, nil
}

func (r *couponRepository) Update(ctx context.Context, c *model.Coupon) error {
	query := `
		UPDATE coupons
		SET code = $2, discount_type = $3, discount_value = $4, valid_from = $5, valid_until = $6,
		    max_uses = $7, min_order_amount = $8, is_active = $9, description = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING current_uses, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		c.ID, c.Code, c.DiscountType, c.DiscountValue, c.ValidFrom, c.ValidUntil,
		c.MaxUses, c.MinOrderAmount, c.IsActive, c.Description,
	).Scan(&c.CurrentUses, &c.UpdatedAt)
	if err != nil {
		err = translateError(err)
		r.logger.Error().Err(err).Str("coupon_id", c.ID.String()).Msg("failed to update coupon")
		return fmt.Errorf("failed to update coupon: %w", err)
	}
	return nil
}

func (r *couponRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_id", id.String()).Msg("failed to delete coupon")
		return false, fmt.Errorf("failed to delete coupon: %w", err)
	}
	return affected(tag), nil
}

func (r *couponRepository) List(ctx context.Context, q *query.Query) (*model.Page[model.Coupon], error) {
	page, err := listPage[model.Coupon](ctx, r.pool, q, `SELECT `+couponColumns+` FROM coupons`, "coupons")
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list coupons")
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	return page, nil
}

// Redeem consumes one use of a coupon and records the redemption.
func (r *couponRepository) Redeem(ctx context.Context, tx pgx.Tx, couponID, orderID, userID uuid.UUID, amount decimal.Decimal) (bool, error) {
	consume := `
		UPDATE coupons
		SET current_uses = current_uses + 1, updated_at = NOW()
		WHERE id = $1 AND is_active AND (max_uses IS NULL OR current_uses < max_uses)
	`

	tag, err := tx.Exec(ctx, consume, couponID)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_id", couponID.String()).Msg("failed to consume coupon")
		return false, fmt.Errorf("failed to consume coupon: %w", err)
	}
	if !affected(tag) {
		return false, nil
	}

	record := `
		INSERT INTO coupon_redemptions (coupon_id, order_id, user_id, amount)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.Exec(ctx, record, couponID, orderID, userID, amount); err != nil {
		err = translateError(err)
		r.logger.Error().Err(err).Str("coupon_id", couponID.String()).Msg("failed to record redemption")
		return false, fmt.Errorf("failed to record redemption: %w", err)
	}
	return true, nil
}

// BulkInsert copies coupons into a staging table and merges the codes that
// are not taken yet.
func (r *couponRepository) BulkInsert(ctx context.Context, coupons []model.Coupon) (int64, error) {
	if len(coupons) == 0 {
		return 0, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	staging := `
		CREATE TEMP TABLE coupon_import (LIKE coupons INCLUDING DEFAULTS) ON COMMIT DROP
	`
	if _, err := tx.Exec(ctx, staging); err != nil {
		r.logger.Error().Err(err).Msg("failed to create coupon staging table")
		return 0, fmt.Errorf("failed to create coupon staging table: %w", err)
	}

	columns := []string{
		"code", "discount_type", "discount_value", "valid_from", "valid_until",
		"max_uses", "min_order_amount", "is_active", "description",
	}
	copied, err := tx.CopyFrom(ctx, pgx.Identifier{"coupon_import"}, columns,
		pgx.CopyFromSlice(len(coupons), func(i int) ([]any, error) {
			c := coupons[i]
			return []any{
				c.Code, string(c.DiscountType), c.DiscountValue, c.ValidFrom, c.ValidUntil,
				c.MaxUses, c.MinOrderAmount, c.IsActive, c.Description,
			}, nil
		}))
	if err != nil {
		r.logger.Error().Err(err).Int("rows", len(coupons)).Msg("failed to copy coupons")
		return 0, fmt.Errorf("failed to copy coupons: %w", err)
	}

	merge := `
		INSERT INTO coupons (code, discount_type, discount_value, valid_from, valid_until,
			max_uses, min_order_amount, is_active, description)
		SELECT code, discount_type, discount_value, valid_from, valid_until,
			max_uses, min_order_amount, is_active, description
		FROM coupon_import
		ON CONFLICT (code) DO NOTHING
	`
	tag, err := tx.Exec(ctx, merge)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to merge coupons")
		return 0, fmt.Errorf("failed to merge coupons: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit coupon import: %w", err)
	}

	r.logger.Info().
		Int64("copied", copied).
		Int64("inserted", tag.RowsAffected()).
		Msg("coupons imported")
	return tag.RowsAffected(), nil
}
