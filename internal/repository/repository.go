package repository

import (
	"context"
	"time"

	"shopfront/internal/model"
	"shopfront/internal/query"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Lookups return nil, nil when the row does not exist. Methods taking a
// pgx.Tx run inside the caller's transaction; *ForUpdate variants lock the
// returned rows until it ends.

// UserRepository defines the interface for user data access operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByPhone(ctx context.Context, phone string) (*model.User, error)
	GetByResetTokenHash(ctx context.Context, hash string) (*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string, changedAt time.Time) error
	SetResetToken(ctx context.Context, id uuid.UUID, hash string, expiresAt time.Time) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.UserStatus) (*model.User, error)
	ExistsWithRole(ctx context.Context, role model.Role) (bool, error)
	List(ctx context.Context, q *query.Query) (*model.Page[model.User], error)
}

// CategoryRepository defines the interface for category data access operations.
type CategoryRepository interface {
	Create(ctx context.Context, c *model.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	Update(ctx context.Context, c *model.Category) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, q *query.Query) (*model.Page[model.Category], error)
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)

	// ValidateProductsExist returns an error naming the first id that does not exist.
	ValidateProductsExist(ctx context.Context, ids []uuid.UUID) error

	Update(ctx context.Context, p *model.Product) error
	AppendImages(ctx context.Context, id uuid.UUID, urls []string) (*model.Product, error)
	List(ctx context.Context, q *query.Query) (*model.Page[model.Product], error)
	All(ctx context.Context) ([]model.Product, error)

	// DecrementStock takes qty units if at least qty are in stock and
	// reports whether it did.
	DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, qty int) (bool, error)
	IncrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, qty int) error
	Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Product, error)
}

// CartRepository defines the interface for cart data access operations.
type CartRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
	GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Cart, error)
	Create(ctx context.Context, tx pgx.Tx, cart *model.Cart) error
	UpsertItem(ctx context.Context, tx pgx.Tx, cartID uuid.UUID, item *model.CartItem) error
	RemoveItems(ctx context.Context, tx pgx.Tx, cartID uuid.UUID, productIDs []uuid.UUID) error
	UpdateTotals(ctx context.Context, tx pgx.Tx, cart *model.Cart) error
	Delete(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error

	// RemoveProduct drops productID from every cart, recomputes the
	// affected totals and deletes carts left empty.
	RemoveProduct(ctx context.Context, tx pgx.Tx, productID uuid.UUID) error
}

// AddressRepository defines the interface for address data access operations.
// Every lookup is scoped to the owning user.
type AddressRepository interface {
	Create(ctx context.Context, tx pgx.Tx, a *model.Address) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*model.Address, error)
	GetByIDTx(ctx context.Context, tx pgx.Tx, id, userID uuid.UUID) (*model.Address, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Address, error)

	// LockByUser locks and returns every address of userID.
	LockByUser(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]model.Address, error)
	ClearDefault(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error
	Update(ctx context.Context, tx pgx.Tx, a *model.Address) error
	Delete(ctx context.Context, tx pgx.Tx, id, userID uuid.UUID) error
}

// CouponRepository defines the interface for coupon data access operations.
type CouponRepository interface {
	Create(ctx context.Context, c *model.Coupon) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error)
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	GetByCodeForUpdate(ctx context.Context, tx pgx.Tx, code string) (*model.Coupon, error)
	Update(ctx context.Context, c *model.Coupon) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, q *query.Query) (*model.Page[model.Coupon], error)

	// Redeem consumes one use of the coupon for orderID and reports false
	// when the coupon is inactive or exhausted.
	Redeem(ctx context.Context, tx pgx.Tx, couponID, orderID, userID uuid.UUID, amount decimal.Decimal) (bool, error)

	// BulkInsert inserts coupons whose code is not taken yet and returns the
	// number inserted.
	BulkInsert(ctx context.Context, coupons []model.Coupon) (int64, error)
}

// OrderRepository defines the interface for order data access operations.
// A ref is either the internal UUID or the public ORD- order number.
type OrderRepository interface {
	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	GetByRef(ctx context.Context, ref string) (*model.Order, error)
	GetByRefForUpdate(ctx context.Context, tx pgx.Tx, ref string) (*model.Order, error)
	List(ctx context.Context, q *query.Query) (*model.Page[model.Order], error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus) error
	UpdatePayment(ctx context.Context, tx pgx.Tx, id uuid.UUID, method *string, status model.PaymentStatus) error

	// ListOpenWithProduct locks the pending and processing orders that contain productID.
	ListOpenWithProduct(ctx context.Context, tx pgx.Tx, productID uuid.UUID) ([]model.Order, error)
	RemoveProductItems(ctx context.Context, tx pgx.Tx, orderID, productID uuid.UUID) error
	UpdateTotals(ctx context.Context, tx pgx.Tx, order *model.Order) error
	Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// PaymentMethodRepository defines the interface for payment method data access operations.
type PaymentMethodRepository interface {
	Create(ctx context.Context, m *model.PaymentMethod) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.PaymentMethod, error)
	Update(ctx context.Context, m *model.PaymentMethod) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ListActive(ctx context.Context) ([]model.PaymentMethod, error)
	List(ctx context.Context, q *query.Query) (*model.Page[model.PaymentMethod], error)
}

// TransactionRepository defines the interface for payment transaction data access operations.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, t *model.Transaction) error
	// GetByRef accepts the row UUID or the public TXN- id.
	GetByRef(ctx context.Context, ref string) (*model.Transaction, error)
	GetByRefForUpdate(ctx context.Context, tx pgx.Tx, ref string) (*model.Transaction, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Transaction, error)
	List(ctx context.Context, q *query.Query) (*model.Page[model.Transaction], error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, t *model.Transaction) error
}

// ReviewRepository defines the interface for review data access operations.
type ReviewRepository interface {
	Create(ctx context.Context, tx pgx.Tx, r *model.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Review, error)
	Update(ctx context.Context, tx pgx.Tx, r *model.Review) error
	SetPublished(ctx context.Context, tx pgx.Tx, id uuid.UUID, published bool) error
	IncrementHelpful(ctx context.Context, id uuid.UUID) (*model.Review, error)
	Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	DeleteByProduct(ctx context.Context, tx pgx.Tx, productID uuid.UUID) error
	List(ctx context.Context, q *query.Query) (*model.Page[model.Review], error)

	// RecomputeProductRating sets the product's rating average and count
	// from its published reviews.
	RecomputeProductRating(ctx context.Context, tx pgx.Tx, productID uuid.UUID) error
}

// WishlistRepository defines the interface for wishlist data access operations.
type WishlistRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Wishlist, error)
	AddItem(ctx context.Context, tx pgx.Tx, userID, productID uuid.UUID) error
	Contains(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	Delete(ctx context.Context, userID uuid.UUID) (bool, error)

	// RemoveProduct drops productID from every wishlist and deletes wishlists left empty.
	RemoveProduct(ctx context.Context, tx pgx.Tx, productID uuid.UUID) error
}

// ContactRepository defines the interface for contact data access operations.
type ContactRepository interface {
	Create(ctx context.Context, c *model.Contact) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Contact, error)
	Update(ctx context.Context, c *model.Contact) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ListActive(ctx context.Context) ([]model.Contact, error)
	List(ctx context.Context, q *query.Query) (*model.Page[model.Contact], error)
}

// CarouselRepository defines the interface for banner data access operations.
type CarouselRepository interface {
	Create(ctx context.Context, c *model.Carousel) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Carousel, error)
	Update(ctx context.Context, c *model.Carousel) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ListActive(ctx context.Context) ([]model.Carousel, error)
	List(ctx context.Context, q *query.Query) (*model.Page[model.Carousel], error)
}

// FlashSaleRepository defines the interface for flash sale data access operations.
type FlashSaleRepository interface {
	Create(ctx context.Context, tx pgx.Tx, f *model.FlashSale) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.FlashSale, error)
	Update(ctx context.Context, tx pgx.Tx, f *model.FlashSale) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ListRunning(ctx context.Context, now time.Time, featuredOnly bool) ([]model.FlashSale, error)
	List(ctx context.Context, q *query.Query) (*model.Page[model.FlashSale], error)
	RemoveProduct(ctx context.Context, tx pgx.Tx, productID uuid.UUID) error
}
