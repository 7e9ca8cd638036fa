package couponimport

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// fileLoader reads coupon files from the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based coupon loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "coupon-loader").Logger(),
	}
}

// Load reads a gzipped coupon file from disk.
func (l *fileLoader) Load(ctx context.Context, filePath string) (*Batch, error) {
	l.logger.Info().Str("file", filePath).Msg("loading coupon file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open coupon file")
		return nil, fmt.Errorf("failed to open coupon file %s: %w", filePath, err)
	}
	defer file.Close()

	batch, err := parse(ctx, file, filePath, l.logger)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("error reading coupon file")
		return nil, err
	}

	l.logger.Info().
		Str("file", filePath).
		Int("coupons_loaded", len(batch.Coupons)).
		Int("invalid", batch.Invalid).
		Msg("coupon file loaded successfully")

	return batch, nil
}
