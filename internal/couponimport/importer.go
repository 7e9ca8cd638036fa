package couponimport

import (
	"context"
	"fmt"

	"shopfront/internal/model"

	"github.com/go-faster/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds how many files are read at once.
const DefaultConcurrency = 4

// Importer loads coupon files concurrently and stores the result.
type Importer struct {
	loader      Loader
	store       Store
	concurrency int
	logger      zerolog.Logger
}

// NewImporter creates a coupon importer.
func NewImporter(loader Loader, store Store, logger zerolog.Logger) *Importer {
	return &Importer{
		loader:      loader,
		store:       store,
		concurrency: DefaultConcurrency,
		logger:      logger.With().Str("component", "coupon-importer").Logger(),
	}
}

// Run imports every file. Any unreadable file fails the whole import before
// anything is written. Codes repeated across files keep their first occurrence
// in file order.
func (i *Importer) Run(ctx context.Context, files []string) (*model.CouponImportResult, error) {
	if len(files) == 0 {
		return nil, model.BadRequest(model.ErrCodeBadRequest, "No coupon import files configured")
	}

	i.logger.Info().
		Int("file_count", len(files)).
		Msg("starting coupon import")

	batches := make([]*Batch, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.concurrency)
	for idx, name := range files {
		g.Go(func() error {
			batch, err := i.loader.Load(gctx, name)
			if err != nil {
				return errors.Wrapf(err, "load %s", name)
			}
			batches[idx] = batch
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		i.logger.Error().Err(err).Msg("coupon import failed")
		return nil, fmt.Errorf("failed to load coupon files: %w", err)
	}

	result := &model.CouponImportResult{Files: len(files)}
	seen := make(map[string]struct{})
	var coupons []model.Coupon
	for _, batch := range batches {
		result.Invalid += batch.Invalid
		for _, c := range batch.Coupons {
			result.Parsed++
			if _, dup := seen[c.Code]; dup {
				continue
			}
			seen[c.Code] = struct{}{}
			coupons = append(coupons, c)
		}
	}

	inserted, err := i.store.BulkInsert(ctx, coupons)
	if err != nil {
		return nil, fmt.Errorf("failed to store coupons: %w", err)
	}
	result.Inserted = inserted
	result.Skipped = int64(result.Parsed) - inserted

	i.logger.Info().
		Int("parsed", result.Parsed).
		Int("invalid", result.Invalid).
		Int64("inserted", result.Inserted).
		Int64("skipped", result.Skipped).
		Msg("coupon import completed")

	return result, nil
}
