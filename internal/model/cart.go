package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is a user's shopping cart. A user has at most one.
type Cart struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	UserID    uuid.UUID       `json:"userId" db:"user_id"`
	Items     []CartItem      `json:"items" db:"-"`
	Subtotal  decimal.Decimal `json:"subtotal" db:"subtotal"`
	Total     decimal.Decimal `json:"total" db:"total"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// CartItem is one product line in a cart.
type CartItem struct {
	ProductID uuid.UUID       `json:"productId" db:"product_id"`
	Name      string          `json:"name" db:"name"`
	Image     *string         `json:"image,omitempty" db:"image"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Total     decimal.Decimal `json:"total" db:"total"`
}

// Recalculate recomputes every line total and the cart totals from scratch.
func (c *Cart) Recalculate() {
	subtotal := decimal.Zero
	for i := range c.Items {
		c.Items[i].Total = c.Items[i].Price.Mul(decimal.NewFromInt(int64(c.Items[i].Quantity))).Round(2)
		subtotal = subtotal.Add(c.Items[i].Total)
	}
	c.Subtotal = subtotal
	c.Total = subtotal
}

// Item returns the line for productID, if present.
func (c *Cart) Item(productID uuid.UUID) (*CartItem, bool) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i], true
		}
	}
	return nil, false
}

// AddToCartRequest is the payload for POST /carts/add.
type AddToCartRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// Validate checks the add-to-cart payload.
func (r *AddToCartRequest) Validate() error {
	v := &validator{}
	v.check(r.ProductID != uuid.Nil, "productId", "Product ID is required")
	v.check(r.Quantity > 0, "quantity", "Quantity must be greater than 0")
	return v.err()
}

// UpdateCartItemRequest is the payload for PATCH /carts/{productId}.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// Wishlist is a user's saved products.
type Wishlist struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	UserID    uuid.UUID      `json:"userId" db:"user_id"`
	Items     []WishlistItem `json:"items" db:"-"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time      `json:"updatedAt" db:"updated_at"`
}

// WishlistItem is one saved product.
type WishlistItem struct {
	ProductID uuid.UUID       `json:"productId" db:"product_id"`
	Name      string          `json:"name" db:"name"`
	Image     *string         `json:"image,omitempty" db:"image"`
	Price     decimal.Decimal `json:"price" db:"price"`
	AddedAt   time.Time       `json:"addedAt" db:"added_at"`
}

// AddToWishlistRequest is the payload for POST /wishlists/add.
type AddToWishlistRequest struct {
	ProductID uuid.UUID `json:"productId"`
}
