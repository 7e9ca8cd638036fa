package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	adminEmail    = "admin@shopfront.test"
	adminPassword = "admin-secret"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, connects and applies the schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	logger := zerolog.Nop()
	pool, err := repository.NewPool(ctx, config.DatabaseConfig{
		URL:             connStr,
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 5 * time.Minute,
	}, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := repository.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// testConfig is the configuration the test server runs with.
func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			AccessSecret:     "integration-access",
			RefreshSecret:    "integration-refresh",
			AccessExpiresIn:  time.Hour,
			RefreshExpiresIn: 24 * time.Hour,
		},
		CORS:      config.CORSConfig{Origins: []string{"*"}},
		RateLimit: config.RateLimitConfig{Max: 1000, Window: time.Minute},
		SuperAdmin: config.SuperAdminConfig{
			Name:     "Integration Admin",
			Email:    adminEmail,
			Password: adminPassword,
		},
		ClientURL: "http://localhost:3000",
	}
}

// TestServer is the fully wired API backed by the test database.
type TestServer struct {
	Handler http.Handler
	Hub     *notify.Hub
}

// SetupTestServer wires every repository, service and handler the way
// cmd/api does, with S3 disabled and mail written to the log.
func SetupTestServer(t *testing.T, testDB *TestDB) *TestServer {
	t.Helper()

	logger := zerolog.Nop()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := testConfig()
	pool := testDB.Pool

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
	methodRepo := repository.NewPaymentMethodRepository(pool, logger)
	flashSaleRepo := repository.NewFlashSaleRepository(pool, logger)

	hub := notify.NewHub(cfg.CORS.Origins, logger)
	go hub.Run(ctx)

	authService := service.NewAuthService(userRepo, auth.NewTokenManager(cfg.JWT), mail.NewLogSender(logger), cfg.ClientURL, logger)
	if err := authService.SeedSuperAdmin(ctx, cfg.SuperAdmin); err != nil {
		t.Fatalf("failed to seed super admin: %v", err)
	}

	importer := couponimport.NewImporter(
		couponimport.NewFallbackLoader(nil, couponimport.NewFileLoader(logger), "", logger),
		couponRepo, logger)

	productService := service.NewProductService(tx, service.ProductDeps{
		Products:   productRepo,
		Categories: categoryRepo,
		Carts:      cartRepo,
		Orders:     orderRepo,
		Wishlists:  wishlistRepo,
		Reviews:    reviewRepo,
		FlashSales: flashSaleRepo,
	}, storage.NewDisabledStore(), logger)

	h := router.Handlers{
		Auth:          handler.NewAuthHandler(authService, logger),
		User:          handler.NewUserHandler(service.NewUserService(userRepo, logger), logger),
		Category:      handler.NewCategoryHandler(service.NewCategoryService(categoryRepo, logger), logger),
		Product:       handler.NewProductHandler(productService, logger),
		Cart:          handler.NewCartHandler(service.NewCartService(tx, cartRepo, productRepo, logger), logger),
		Order:         handler.NewOrderHandler(service.NewOrderService(tx, orderRepo, cartRepo, addressRepo, productRepo, couponRepo, hub, logger), logger),
		Coupon:        handler.NewCouponHandler(service.NewCouponService(couponRepo, importer, nil, logger), logger),
		Review:        handler.NewReviewHandler(service.NewReviewService(tx, reviewRepo, productRepo, logger), logger),
		Wishlist:      handler.NewWishlistHandler(service.NewWishlistService(tx, wishlistRepo, productRepo, logger), logger),
		Address:       handler.NewAddressHandler(service.NewAddressService(tx, addressRepo, logger), logger),
		Contact:       handler.NewContactHandler(service.NewContactService(repository.NewContactRepository(pool, logger), logger), logger),
		Carousel:      handler.NewCarouselHandler(service.NewCarouselService(repository.NewCarouselRepository(pool, logger), logger), logger),
		PaymentMethod: handler.NewPaymentMethodHandler(service.NewPaymentMethodService(methodRepo, logger), logger),
		Transaction: handler.NewTransactionHandler(service.NewTransactionService(
			tx, repository.NewTransactionRepository(pool, logger), orderRepo, methodRepo, logger), logger),
		FlashSale:     handler.NewFlashSaleHandler(service.NewFlashSaleService(tx, flashSaleRepo, productRepo, logger), logger),
		OrderFeed:     hub,
		Authenticator: authService,
	}

	return &TestServer{
		Handler: router.New(h, pool, cfg, logger),
		Hub:     hub,
	}
}

// apiResponse is the JSON envelope every endpoint replies with.
type apiResponse struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message"`
	Data         json.RawMessage `json:"data"`
	ErrorSources []struct {
		Path    string `json:"path"`
		Message string `json:"message"`
	} `json:"errorSources"`
}

// Do sends a JSON request as the holder of token and decodes the envelope.
func (s *TestServer) Do(t *testing.T, method, path, token string, body any) (int, apiResponse) {
	t.Helper()

	var reader bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&reader).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, router.Prefix+path, &reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler.ServeHTTP(w, req)

	var res apiResponse
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("failed to decode %s %s response: %v", method, path, err)
	}
	return w.Code, res
}

// DataInto decodes the envelope data into v.
func (r apiResponse) DataInto(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Data, v); err != nil {
		t.Fatalf("failed to decode response data: %v", err)
	}
}

// Login returns an access token for the given credentials.
func (s *TestServer) Login(t *testing.T, email, password string) string {
	t.Helper()

	status, res := s.Do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if status != http.StatusOK {
		t.Fatalf("login as %s failed: %d %s", email, status, res.Message)
	}
	var out struct {
		AccessToken string `json:"accessToken"`
	}
	res.DataInto(t, &out)
	return out.AccessToken
}

// SignUp registers a customer and returns an access token.
func (s *TestServer) SignUp(t *testing.T, name string) string {
	t.Helper()

	email := fmt.Sprintf("%s-%d@shopfront.test", name, time.Now().UnixNano())
	status, res := s.Do(t, http.MethodPost, "/auth/sign-up", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "customer-secret",
	})
	if status != http.StatusCreated {
		t.Fatalf("sign up failed: %d %s", status, res.Message)
	}
	return s.Login(t, email, "customer-secret")
}

// CleanupDB removes all shop data, keeping the seeded admin.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		TRUNCATE transactions, payment_methods, reviews, flash_sale_products, flash_sales,
			coupon_redemptions, order_items, orders, cart_items, carts, wishlist_items, wishlists,
			addresses, coupons, products, categories, contacts, carousels CASCADE;
		DELETE FROM users WHERE role <> 'super-admin';`)
	if err != nil {
		t.Fatalf("failed to clean database: %v", err)
	}
}
