package router

import (
	"context"
	"net/http"
	"time"

	"shopfront/internal/config"
	"shopfront/internal/handler"
	"shopfront/internal/middleware"
	"shopfront/internal/model"

	"github.com/rs/zerolog"
)

// Prefix is the base path of every API route.
const Prefix = "/api/v1"

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers groups the HTTP handlers served by the API.
type Handlers struct {
	Auth          *handler.AuthHandler
	User          *handler.UserHandler
	Category      *handler.CategoryHandler
	Product       *handler.ProductHandler
	Cart          *handler.CartHandler
	Order         *handler.OrderHandler
	Coupon        *handler.CouponHandler
	Review        *handler.ReviewHandler
	Wishlist      *handler.WishlistHandler
	Address       *handler.AddressHandler
	Contact       *handler.ContentHandler[model.Contact, model.ContactInput]
	Carousel      *handler.ContentHandler[model.Carousel, model.CarouselInput]
	PaymentMethod *handler.ContentHandler[model.PaymentMethod, model.PaymentMethodInput]
	Transaction   *handler.TransactionHandler
	FlashSale     *handler.FlashSaleHandler
	OrderFeed     http.Handler
	Authenticator middleware.Authenticator
}

// New creates the HTTP router with all routes and middleware configured.
func New(h Handlers, db Pinger, cfg *config.Config, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	authLogger := logger.With().Str("middleware", "auth").Logger()
	authenticated := middleware.Authenticate(h.Authenticator, authLogger)
	// Browsers cannot set headers on websocket handshakes.
	feedAuthenticated := middleware.Authenticate(h.Authenticator, authLogger, middleware.WithQueryToken())
	adminOnly := middleware.RequireRole(model.RoleAdmin, model.RoleSuperAdmin)
	limiter := middleware.NewRateLimiter(cfg.RateLimit.Max, cfg.RateLimit.Window,
		logger.With().Str("middleware", "rate-limit").Logger())

	public := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, fn)
	}
	user := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, authenticated(fn))
	}
	admin := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, authenticated(adminOnly(fn)))
	}
	limited := func(pattern string, fn http.Handler) {
		mux.Handle(pattern, limiter.Middleware(fn))
	}

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := db.Ping(ctx); err != nil {
			logger.Error().Err(err).Msg("health check failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status": "unhealthy"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "healthy"}`))
	})

	// Auth
	limited("POST "+Prefix+"/auth/sign-up", http.HandlerFunc(h.Auth.SignUp))
	limited("POST "+Prefix+"/auth/login", http.HandlerFunc(h.Auth.Login))
	limited("POST "+Prefix+"/auth/refresh-token", http.HandlerFunc(h.Auth.RefreshToken))
	limited("POST "+Prefix+"/auth/change-password", authenticated(http.HandlerFunc(h.Auth.ChangePassword)))
	limited("POST "+Prefix+"/auth/request-password-reset", http.HandlerFunc(h.Auth.RequestPasswordReset))
	limited("POST "+Prefix+"/auth/reset-password", http.HandlerFunc(h.Auth.ResetPassword))

	// Users
	user("GET "+Prefix+"/users/me", h.User.Me)
	user("PATCH "+Prefix+"/users/update", h.User.UpdateProfile)
	admin("GET "+Prefix+"/users/all-users", h.User.List)
	admin("PATCH "+Prefix+"/users/update-status/{userId}", h.User.UpdateStatus)

	// Categories
	public("GET "+Prefix+"/categories", h.Category.List)
	public("GET "+Prefix+"/categories/{id}", h.Category.GetByID)
	admin("POST "+Prefix+"/categories", h.Category.Create)
	admin("PATCH "+Prefix+"/categories/{id}", h.Category.Update)
	admin("DELETE "+Prefix+"/categories/{id}", h.Category.Delete)

	// Products
	public("GET "+Prefix+"/products", h.Product.List)
	public("GET "+Prefix+"/products/{id}", h.Product.GetByID)
	public("GET "+Prefix+"/products/tag/{tag}", h.Product.ListByTag)
	public("GET "+Prefix+"/products/category/{categoryId}", h.Product.ListByCategory)
	admin("GET "+Prefix+"/products/export", h.Product.Export)
	admin("POST "+Prefix+"/products", h.Product.Create)
	admin("PATCH "+Prefix+"/products/{id}", h.Product.Update)
	admin("DELETE "+Prefix+"/products/{id}", h.Product.Delete)
	admin("POST "+Prefix+"/products/{id}/images", h.Product.UploadImages)

	// Carts
	user("GET "+Prefix+"/carts", h.Cart.Get)
	user("POST "+Prefix+"/carts/add", h.Cart.AddItem)
	user("PATCH "+Prefix+"/carts/{productId}", h.Cart.UpdateItem)
	user("DELETE "+Prefix+"/carts/{productId}", h.Cart.RemoveItem)
	user("DELETE "+Prefix+"/carts", h.Cart.Clear)

	// Orders
	user("POST "+Prefix+"/orders", h.Order.Create)
	user("GET "+Prefix+"/orders", h.Order.ListMine)
	admin("GET "+Prefix+"/orders/all", h.Order.ListAll)
	mux.Handle("GET "+Prefix+"/orders/feed", feedAuthenticated(adminOnly(h.OrderFeed)))
	user("GET "+Prefix+"/orders/{orderId}", h.Order.Get)
	admin("PATCH "+Prefix+"/orders/{orderId}/status", h.Order.UpdateStatus)
	user("PATCH "+Prefix+"/orders/{orderId}/cancel", h.Order.Cancel)

	// Coupons
	admin("POST "+Prefix+"/coupons", h.Coupon.Create)
	admin("GET "+Prefix+"/coupons", h.Coupon.List)
	public("GET "+Prefix+"/coupons/{code}", h.Coupon.GetByCode)
	public("POST "+Prefix+"/coupons/validate", h.Coupon.Validate)
	user("POST "+Prefix+"/coupons/apply", h.Coupon.Apply)
	admin("POST "+Prefix+"/coupons/import", h.Coupon.Import)
	admin("PATCH "+Prefix+"/coupons/{couponId}", h.Coupon.Update)
	admin("DELETE "+Prefix+"/coupons/{couponId}", h.Coupon.Delete)

	// Reviews
	user("POST "+Prefix+"/reviews", h.Review.Create)
	user("GET "+Prefix+"/reviews/my", h.Review.ListMine)
	public("GET "+Prefix+"/reviews/product/{productId}", h.Review.ListByProduct)
	user("PATCH "+Prefix+"/reviews/{reviewId}", h.Review.Update)
	admin("PATCH "+Prefix+"/reviews/{reviewId}/publish", h.Review.Publish)
	admin("PATCH "+Prefix+"/reviews/{reviewId}/unpublish", h.Review.Unpublish)
	public("PATCH "+Prefix+"/reviews/{reviewId}/helpful", h.Review.MarkHelpful)
	user("DELETE "+Prefix+"/reviews/{reviewId}", h.Review.Delete)

	// Wishlists
	user("GET "+Prefix+"/wishlists", h.Wishlist.Get)
	user("POST "+Prefix+"/wishlists/add", h.Wishlist.Add)
	user("GET "+Prefix+"/wishlists/check/{productId}", h.Wishlist.Check)
	user("DELETE "+Prefix+"/wishlists/{productId}", h.Wishlist.Remove)
	user("DELETE "+Prefix+"/wishlists", h.Wishlist.Clear)

	// Addresses
	user("POST "+Prefix+"/addresses", h.Address.Create)
	user("GET "+Prefix+"/addresses", h.Address.List)
	user("GET "+Prefix+"/addresses/{addressId}", h.Address.Get)
	user("PATCH "+Prefix+"/addresses/{addressId}", h.Address.Update)
	user("PATCH "+Prefix+"/addresses/{addressId}/set-default", h.Address.SetDefault)
	user("DELETE "+Prefix+"/addresses/{addressId}", h.Address.Delete)

	// Contacts
	public("GET "+Prefix+"/contacts", h.Contact.ListActive)
	admin("GET "+Prefix+"/contacts/admin/all", h.Contact.List)
	admin("POST "+Prefix+"/contacts", h.Contact.Create)
	admin("GET "+Prefix+"/contacts/{id}", h.Contact.GetByID)
	admin("PATCH "+Prefix+"/contacts/{id}", h.Contact.Update)
	admin("DELETE "+Prefix+"/contacts/{id}", h.Contact.Delete)

	// Payment methods
	public("GET "+Prefix+"/payment-methods", h.PaymentMethod.ListActive)
	admin("GET "+Prefix+"/payment-methods/admin/all", h.PaymentMethod.List)
	admin("POST "+Prefix+"/payment-methods", h.PaymentMethod.Create)
	admin("GET "+Prefix+"/payment-methods/{id}", h.PaymentMethod.GetByID)
	admin("PATCH "+Prefix+"/payment-methods/{id}", h.PaymentMethod.Update)
	admin("DELETE "+Prefix+"/payment-methods/{id}", h.PaymentMethod.Delete)

	// Transactions
	user("POST "+Prefix+"/transactions", h.Transaction.Create)
	user("GET "+Prefix+"/transactions/history/user", h.Transaction.ListMine)
	admin("GET "+Prefix+"/transactions/history/all", h.Transaction.ListAll)
	user("GET "+Prefix+"/transactions/order/{orderId}", h.Transaction.ListByOrder)
	admin("GET "+Prefix+"/transactions/{id}", h.Transaction.GetByID)
	admin("PATCH "+Prefix+"/transactions/{id}/status", h.Transaction.UpdateStatus)

	// Carousels
	public("GET "+Prefix+"/carousels/active", h.Carousel.ListActive)
	admin("GET "+Prefix+"/carousels", h.Carousel.List)
	admin("POST "+Prefix+"/carousels", h.Carousel.Create)
	admin("GET "+Prefix+"/carousels/{id}", h.Carousel.GetByID)
	admin("PATCH "+Prefix+"/carousels/{id}", h.Carousel.Update)
	admin("DELETE "+Prefix+"/carousels/{id}", h.Carousel.Delete)

	// Flash sales
	public("GET "+Prefix+"/flash-sales/active", h.FlashSale.Active)
	public("GET "+Prefix+"/flash-sales/featured", h.FlashSale.Featured)
	public("GET "+Prefix+"/flash-sales", h.FlashSale.List)
	public("GET "+Prefix+"/flash-sales/{id}", h.FlashSale.GetByID)
	admin("POST "+Prefix+"/flash-sales", h.FlashSale.Create)
	admin("PATCH "+Prefix+"/flash-sales/{id}", h.FlashSale.Update)
	admin("DELETE "+Prefix+"/flash-sales/{id}", h.FlashSale.Delete)

	// Apply middleware in order: Recovery -> RequestID -> Logging -> CORS
	var root http.Handler = mux
	root = middleware.CORS(cfg.CORS.Origins)(root)
	root = middleware.Logging(logger)(root)
	root = middleware.RequestID(root)
	root = middleware.Recovery(logger)(root)

	return root
}
