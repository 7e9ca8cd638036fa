package service

import (
	"context"
	"fmt"
	"net/url"

	"shopfront/internal/model"
	"shopfront/internal/query"
	"shopfront/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// inTx runs fn inside a transaction and commits when fn returns nil.
func inTx(ctx context.Context, tr repository.Transactor, logger zerolog.Logger, fn func(tx pgx.Tx) error) (err error) {
	tx, err := tr.BeginTx(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to begin transaction")
		return err
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// list parses params against spec and runs the repository list query.
func list[T any](
	ctx context.Context,
	spec query.Spec,
	params url.Values,
	run func(context.Context, *query.Query) (*model.Page[T], error),
	conds ...query.Condition,
) (*model.Page[T], error) {
	q, err := query.Build(spec, params, conds...)
	if err != nil {
		return nil, err
	}
	return run(ctx, q)
}
