package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"shopfront/internal/auth"
	"shopfront/internal/config"
	"shopfront/internal/couponimport"
	"shopfront/internal/handler"
	"shopfront/internal/mail"
	"shopfront/internal/notify"
	"shopfront/internal/repository"
	"shopfront/internal/router"
	"shopfront/internal/service"
	"shopfront/internal/storage"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting shopfront API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := repository.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.RunMigrations {
		if err := repository.Migrate(ctx, pool, logger); err != nil {
			return err
		}
	}

	// Initialize repositories
	tx := repository.NewTransactor(pool)
	userRepo := repository.NewUserRepository(pool, logger)
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	couponRepo := repository.NewCouponRepository(pool, logger)
	reviewRepo := repository.NewReviewRepository(pool, logger)
	wishlistRepo := repository.NewWishlistRepository(pool, logger)
	addressRepo := repository.NewAddressRepository(pool, logger)
	contactRepo := repository.NewContactRepository(pool, logger)
	carouselRepo := repository.NewCarouselRepository(pool, logger)
	methodRepo := repository.NewPaymentMethodRepository(pool, logger)
	txnRepo := repository.NewTransactionRepository(pool, logger)
	flashSaleRepo := repository.NewFlashSaleRepository(pool, logger)

	// Object storage backs product images and, when enabled, coupon files
	var (
		store     storage.Store
		s3Coupons couponimport.Loader
	)
	if cfg.S3.Enabled {
		client, err := storage.NewS3Client(ctx, cfg.S3.Region)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		store = storage.NewS3Store(client, cfg.S3, logger)
		s3Coupons = couponimport.NewS3Loader(client, cfg.S3.Bucket, logger)
	} else {
		store = storage.NewDisabledStore()
		logger.Info().Msg("S3 disabled, image uploads unavailable and coupon files read from local disk")
	}
	couponLoader := couponimport.NewFallbackLoader(s3Coupons, couponimport.NewFileLoader(logger), cfg.S3.CouponPrefix, logger)
	importer := couponimport.NewImporter(couponLoader, couponRepo, logger)

	var mailer mail.Sender
	if cfg.Mail.Enabled {
		mailer = mail.NewSMTPSender(cfg.Mail, logger)
	} else {
		mailer = mail.NewLogSender(logger)
	}

	// Order events are pushed to connected admin dashboards
	hub := notify.NewHub(cfg.CORS.Origins, logger)
	go hub.Run(ctx)

	// Initialize services
	tokens := auth.NewTokenManager(cfg.JWT)
	authService := service.NewAuthService(userRepo, tokens, mailer, cfg.ClientURL, logger)
	if err := authService.SeedSuperAdmin(ctx, cfg.SuperAdmin); err != nil {
		return fmt.Errorf("failed to seed super admin: %w", err)
	}

	userService := service.NewUserService(userRepo, logger)
	categoryService := service.NewCategoryService(categoryRepo, logger)
	productService := service.NewProductService(tx, service.ProductDeps{
		Products:   productRepo,
		Categories: categoryRepo,
		Carts:      cartRepo,
		Orders:     orderRepo,
		Wishlists:  wishlistRepo,
		Reviews:    reviewRepo,
		FlashSales: flashSaleRepo,
	}, store, logger)
	cartService := service.NewCartService(tx, cartRepo, productRepo, logger)
	orderService := service.NewOrderService(tx, orderRepo, cartRepo, addressRepo, productRepo, couponRepo, hub, logger)
	couponService := service.NewCouponService(couponRepo, importer, cfg.Coupons.ImportFiles, logger)
	reviewService := service.NewReviewService(tx, reviewRepo, productRepo, logger)
	wishlistService := service.NewWishlistService(tx, wishlistRepo, productRepo, logger)
	addressService := service.NewAddressService(tx, addressRepo, logger)
	transactionService := service.NewTransactionService(tx, txnRepo, orderRepo, methodRepo, logger)
	flashSaleService := service.NewFlashSaleService(tx, flashSaleRepo, productRepo, logger)

	// Initialize HTTP handlers and router
	mux := router.New(router.Handlers{
		Auth:          handler.NewAuthHandler(authService, logger),
		User:          handler.NewUserHandler(userService, logger),
		Category:      handler.NewCategoryHandler(categoryService, logger),
		Product:       handler.NewProductHandler(productService, logger),
		Cart:          handler.NewCartHandler(cartService, logger),
		Order:         handler.NewOrderHandler(orderService, logger),
		Coupon:        handler.NewCouponHandler(couponService, logger),
		Review:        handler.NewReviewHandler(reviewService, logger),
		Wishlist:      handler.NewWishlistHandler(wishlistService, logger),
		Address:       handler.NewAddressHandler(addressService, logger),
		Contact:       handler.NewContactHandler(service.NewContactService(contactRepo, logger), logger),
		Carousel:      handler.NewCarouselHandler(service.NewCarouselService(carouselRepo, logger), logger),
		PaymentMethod: handler.NewPaymentMethodHandler(service.NewPaymentMethodService(methodRepo, logger), logger),
		Transaction:   handler.NewTransactionHandler(transactionService, logger),
		FlashSale:     handler.NewFlashSaleHandler(flashSaleService, logger),
		OrderFeed:     hub,
		Authenticator: authService,
	}, pool, cfg, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      otelhttp.NewHandler(mux, "shopfront"),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return serve(server, cfg.Server, cancel, logger)
}

// serve runs the server until it fails or a shutdown signal arrives.
// stop cancels the application context once connections have drained.
func serve(server *http.Server, cfg config.ServerConfig, stop context.CancelFunc, logger zerolog.Logger) error {
	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", server.Addr).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()

		// Websocket connections are hijacked, so Shutdown does not wait for them
		defer stop()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// S3 client satisfies both storage and coupon loader interfaces.
var (
	_ storage.ObjectAPI         = (*s3.Client)(nil)
	_ couponimport.ObjectGetter = (*s3.Client)(nil)
)
