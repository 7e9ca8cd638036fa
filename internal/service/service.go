package service

import (
	"context"
	"io"
	"net/url"

	"shopfront/internal/config"
	"shopfront/internal/model"

	"github.com/google/uuid"
)

// List methods take the raw query string of the request and return a page
// built by the query package. Methods taking an actor apply ownership rules
// for that user.

// AuthService defines account and token operations.
type AuthService interface {
	SignUp(ctx context.Context, req *model.SignUpRequest) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*model.TokenPair, error)
	ChangePassword(ctx context.Context, actor *model.User, req *model.ChangePasswordRequest) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error

	// Authenticate resolves an access token to an active user.
	Authenticate(ctx context.Context, accessToken string) (*model.User, error)

	// SeedSuperAdmin creates the configured super-admin when no super-admin exists.
	SeedSuperAdmin(ctx context.Context, cfg config.SuperAdminConfig) error
}

// UserService defines operations on user profiles.
type UserService interface {
	GetMe(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, actor *model.User, req *model.UpdateProfileRequest) (*model.User, error)
	List(ctx context.Context, params url.Values) (*model.Page[model.User], error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.UserStatus) (*model.User, error)
}

// CategoryService defines operations for category management.
type CategoryService interface {
	Create(ctx context.Context, in *model.CategoryInput) (*model.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	Update(ctx context.Context, id uuid.UUID, in *model.CategoryInput) (*model.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params url.Values) (*model.Page[model.Category], error)
}

// ImageUpload is one file of a multipart image upload.
type ImageUpload struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// ProductService defines operations for product management.
type ProductService interface {
	Create(ctx context.Context, in *model.ProductInput) (*model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	Update(ctx context.Context, id uuid.UUID, in *model.ProductInput) (*model.Product, error)

	// Delete removes the product and every reference to it from carts,
	// open orders, wishlists, reviews and flash sales.
	Delete(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context, params url.Values) (*model.Page[model.Product], error)
	ListByTag(ctx context.Context, tag string, params url.Values) (*model.Page[model.Product], error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID, params url.Values) (*model.Page[model.Product], error)
	UploadImages(ctx context.Context, id uuid.UUID, files []ImageUpload) (*model.Product, error)

	// Export writes the whole catalogue as a spreadsheet.
	Export(ctx context.Context, w io.Writer) error
}

// CartService defines operations on the current user's cart.
type CartService interface {
	Get(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, req *model.AddToCartRequest) (*model.Cart, error)
	UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*model.Cart, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*model.Cart, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// OrderService defines operations for order management.
type OrderService interface {
	// CreateOrder checks out the selected cart lines of the user.
	CreateOrder(ctx context.Context, userID uuid.UUID, req *model.CreateOrderRequest) (*model.Order, error)

	ListMine(ctx context.Context, userID uuid.UUID, params url.Values) (*model.Page[model.Order], error)
	ListAll(ctx context.Context, params url.Values) (*model.Page[model.Order], error)

	// Get returns the order for ref. Non-admin actors only see their own orders.
	Get(ctx context.Context, actor *model.User, ref string) (*model.Order, error)

	UpdateStatus(ctx context.Context, ref string, status model.OrderStatus) (*model.Order, error)
	Cancel(ctx context.Context, userID uuid.UUID, ref string) (*model.Order, error)
}

// CouponService defines operations for coupon management.
type CouponService interface {
	Create(ctx context.Context, in *model.CouponInput) (*model.Coupon, error)
	List(ctx context.Context, params url.Values) (*model.Page[model.Coupon], error)
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)

	// Validate checks every coupon rule against an order total without consuming a use.
	Validate(ctx context.Context, req *model.ValidateCouponRequest) (*model.CouponQuote, error)

	Update(ctx context.Context, id uuid.UUID, in *model.CouponInput) (*model.Coupon, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Import(ctx context.Context) (*model.CouponImportResult, error)
}

// ReviewService defines operations for product reviews.
type ReviewService interface {
	Create(ctx context.Context, userID uuid.UUID, req *model.CreateReviewRequest) (*model.Review, error)
	Update(ctx context.Context, userID, id uuid.UUID, req *model.UpdateReviewRequest) (*model.Review, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, params url.Values) (*model.Page[model.Review], error)
	ListMine(ctx context.Context, userID uuid.UUID, params url.Values) (*model.Page[model.Review], error)
	SetPublished(ctx context.Context, id uuid.UUID, published bool) (*model.Review, error)
	MarkHelpful(ctx context.Context, id uuid.UUID) (*model.Review, error)
	Delete(ctx context.Context, actor *model.User, id uuid.UUID) error
}

// WishlistService defines operations on the current user's wishlist.
type WishlistService interface {
	Get(ctx context.Context, userID uuid.UUID) (*model.Wishlist, error)
	Add(ctx context.Context, userID, productID uuid.UUID) (*model.Wishlist, error)
	Contains(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) (*model.Wishlist, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// AddressService defines operations on the current user's addresses.
type AddressService interface {
	Create(ctx context.Context, userID uuid.UUID, in *model.AddressInput) (*model.Address, error)
	List(ctx context.Context, userID uuid.UUID) ([]model.Address, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*model.Address, error)
	Update(ctx context.Context, userID, id uuid.UUID, in *model.AddressInput) (*model.Address, error)
	SetDefault(ctx context.Context, userID, id uuid.UUID) (*model.Address, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// ContactService defines operations for storefront contact entries.
type ContactService interface {
	Create(ctx context.Context, in *model.ContactInput) (*model.Contact, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Contact, error)
	Update(ctx context.Context, id uuid.UUID, in *model.ContactInput) (*model.Contact, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListActive(ctx context.Context) ([]model.Contact, error)
	List(ctx context.Context, params url.Values) (*model.Page[model.Contact], error)
}

// CarouselService defines operations for homepage banners.
type CarouselService interface {
	Create(ctx context.Context, in *model.CarouselInput) (*model.Carousel, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Carousel, error)
	Update(ctx context.Context, id uuid.UUID, in *model.CarouselInput) (*model.Carousel, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListActive(ctx context.Context) ([]model.Carousel, error)
	List(ctx context.Context, params url.Values) (*model.Page[model.Carousel], error)
}

// PaymentMethodService defines operations for manual payment channels.
type PaymentMethodService interface {
	Create(ctx context.Context, in *model.PaymentMethodInput) (*model.PaymentMethod, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.PaymentMethod, error)
	Update(ctx context.Context, id uuid.UUID, in *model.PaymentMethodInput) (*model.PaymentMethod, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListActive(ctx context.Context) ([]model.PaymentMethod, error)
	List(ctx context.Context, params url.Values) (*model.Page[model.PaymentMethod], error)
}

// TransactionService defines operations on reported payments.
type TransactionService interface {
	Create(ctx context.Context, userID uuid.UUID, req *model.CreateTransactionRequest) (*model.Transaction, error)
	ListMine(ctx context.Context, userID uuid.UUID, params url.Values) (*model.Page[model.Transaction], error)
	ListAll(ctx context.Context, params url.Values) (*model.Page[model.Transaction], error)
	ListByOrder(ctx context.Context, actor *model.User, orderRef string) ([]model.Transaction, error)
	// GetByRef accepts the row UUID or the public TXN- id.
	GetByRef(ctx context.Context, ref string) (*model.Transaction, error)

	// UpdateStatus records the admin review and moves the order's payment status with it.
	UpdateStatus(ctx context.Context, ref string, req *model.UpdateTransactionStatusRequest) (*model.Transaction, error)
}

// FlashSaleService defines operations for flash sales.
type FlashSaleService interface {
	Create(ctx context.Context, in *model.FlashSaleInput) (*model.FlashSale, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.FlashSale, error)
	Update(ctx context.Context, id uuid.UUID, in *model.FlashSaleInput) (*model.FlashSale, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListRunning(ctx context.Context, featuredOnly bool) ([]model.FlashSale, error)
	List(ctx context.Context, params url.Values) (*model.Page[model.FlashSale], error)
}
