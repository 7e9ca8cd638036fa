package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"shopfront/internal/config"
	"shopfront/internal/couponimport"
	"shopfront/internal/repository"
	"shopfront/internal/storage"

	"github.com/go-faster/errors"
	"github.com/rs/zerolog"
)

func main() {
	migrate := flag.Bool("migrate", false, "apply the database schema before importing")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [file.gz ...]\n\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "Imports gzip CSV coupon files. Without arguments the files listed in")
		fmt.Fprintln(flag.CommandLine.Output(), "SHOP_COUPONS_IMPORT_FILES are used. With S3 enabled, names are looked up")
		fmt.Fprintln(flag.CommandLine.Output(), "under the coupon prefix first and read from local disk otherwise.")
		fmt.Fprintln(flag.CommandLine.Output())
		flag.PrintDefaults()
	}
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, flag.Args(), *migrate); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, files []string, migrate bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger).With().Str("cmd", "coupon-import").Logger()

	if len(files) == 0 {
		files = cfg.Coupons.ImportFiles
	}
	if len(files) == 0 {
		return errors.New("no coupon files given and none configured")
	}

	pool, err := repository.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if migrate {
		if err := repository.Migrate(ctx, pool, logger); err != nil {
			return err
		}
	}

	loader, err := newLoader(ctx, cfg.S3, logger)
	if err != nil {
		return err
	}

	importer := couponimport.NewImporter(loader, repository.NewCouponRepository(pool, logger), logger)
	result, err := importer.Run(ctx, files)
	if err != nil {
		return errors.Wrap(err, "import coupons")
	}

	logger.Info().
		Int("files", result.Files).
		Int("parsed", result.Parsed).
		Int("invalid", result.Invalid).
		Int64("inserted", result.Inserted).
		Int64("skipped", result.Skipped).
		Msg("coupon import completed")

	return nil
}

// newLoader reads from S3 under the coupon prefix when enabled, and from the
// local file system otherwise or when the object is missing.
func newLoader(ctx context.Context, cfg config.S3Config, logger zerolog.Logger) (couponimport.Loader, error) {
	var s3Loader couponimport.Loader
	if cfg.Enabled {
		client, err := storage.NewS3Client(ctx, cfg.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		s3Loader = couponimport.NewS3Loader(client, cfg.Bucket, logger)
	}
	return couponimport.NewFallbackLoader(s3Loader, couponimport.NewFileLoader(logger), cfg.CouponPrefix, logger), nil
}
