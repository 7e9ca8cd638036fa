package repository

import (
	"context"
	"fmt"
	"time"

	"shopfront/db"
	"shopfront/internal/config"
	"shopfront/internal/model"
	"shopfront/internal/query"

	"github.com/go-faster/errors"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// NewPool creates a new PostgreSQL connection pool with the provided configuration.
// NUMERIC columns are mapped to shopspring/decimal. It verifies connectivity by
// pinging the database.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	logger.Info().
		Str("host", poolConfig.ConnConfig.Host).
		Uint16("port", poolConfig.ConnConfig.Port).
		Str("database", poolConfig.ConnConfig.Database).
		Int32("max_connections", poolConfig.MaxConns).
		Msg("creating database connection pool")

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	start := time.Now()
	if _, err := pool.Exec(ctx, db.Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	logger.Info().Dur("duration", time.Since(start)).Msg("database schema applied")
	return nil
}

// Querier is satisfied by *pgxpool.Pool and pgx.Tx, so read helpers work
// inside and outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Transactor starts database transactions for services that own them.
type Transactor interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

type transactor struct {
	pool *pgxpool.Pool
}

// NewTransactor returns a Transactor over pool.
func NewTransactor(pool *pgxpool.Pool) Transactor {
	return &transactor{pool: pool}
}

// BeginTx starts a new database transaction.
func (t *transactor) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

const uniqueViolation = "23505"

// constraintFields names the request field behind each unique constraint.
var constraintFields = map[string]string{
	"users_email_key":                 "email",
	"users_phone_key":                 "phone",
	"categories_title_key":            "title",
	"products_name_key":               "name",
	"products_sku_key":                "sku",
	"carts_user_id_key":               "userId",
	"wishlists_user_id_key":           "userId",
	"coupons_code_key":                "code",
	"coupon_redemptions_order_id_key": "orderId",
	"orders_order_id_key":             "orderId",
	"payment_methods_method_name_key": "methodName",
	"transactions_transaction_id_key": "transactionId",
	"reviews_user_product_key":        "productId",
	"addresses_one_default_per_user":  "isDefault",
}

// translateError converts a unique violation into *model.ConflictError and
// returns every other error unchanged.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	field, ok := constraintFields[pgErr.ConstraintName]
	if !ok {
		field = pgErr.ConstraintName
	}
	return &model.ConflictError{Field: field, Constraint: pgErr.ConstraintName, Err: err}
}

// getOne runs a single row query and scans it by column name. A missing row
// yields nil, nil.
func getOne[T any](ctx context.Context, q Querier, sql string, args ...any) (*T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	item, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByNameLax[T])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return item, nil
}

// getMany runs a query and scans every row by column name.
func getMany[T any](ctx context.Context, q Querier, sql string, args ...any) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// listPage runs the paged select and the matching count for a list query.
// base is a SELECT without WHERE; from is the FROM target used for counting.
func listPage[T any](ctx context.Context, q Querier, lq *query.Query, base, from string) (*model.Page[T], error) {
	items, err := getMany[T](ctx, q, lq.SelectSQL(base), lq.Args()...)
	if err != nil {
		return nil, err
	}
	var total int64
	if err := q.QueryRow(ctx, lq.CountSQL(from), lq.Args()...).Scan(&total); err != nil {
		return nil, err
	}
	return &model.Page[T]{Items: items, Meta: lq.Meta(total), Fields: lq.Fields}, nil
}

// affected reports whether a write touched any row.
func affected(tag pgconn.CommandTag) bool {
	return tag.RowsAffected() > 0
}
