package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalogue entry.
type Product struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	SKU           *string         `json:"sku,omitempty" db:"sku"`
	Description   *string         `json:"description,omitempty" db:"description"`
	Image         *string         `json:"image,omitempty" db:"image"`
	Images        []string        `json:"images" db:"images"`
	Price         decimal.Decimal `json:"price" db:"price"`
	Discount      decimal.Decimal `json:"discount" db:"discount"`
	Quantity      int             `json:"quantity" db:"quantity"`
	IsAvailable   bool            `json:"isAvailable" db:"is_available"`
	IsFeatured    bool            `json:"isFeatured" db:"is_featured"`
	Brand         *string         `json:"brand,omitempty" db:"brand"`
	CategoryID    *uuid.UUID      `json:"categoryId,omitempty" db:"category_id"`
	Tags          []string        `json:"tags" db:"tags"`
	DeliveryTime  *string         `json:"deliveryTime,omitempty" db:"delivery_time"`
	CourierCharge decimal.Decimal `json:"courierCharge" db:"courier_charge"`
	RatingAverage decimal.Decimal `json:"ratingAverage" db:"rating_average"`
	RatingCount   int             `json:"ratingCount" db:"rating_count"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// EffectivePrice is the unit price after the product discount, never below zero.
func (p *Product) EffectivePrice() decimal.Decimal {
	price := p.Price.Sub(p.Discount)
	if price.IsNegative() {
		return decimal.Zero
	}
	return price.Round(2)
}

// ProductInput carries product fields for create and partial update.
type ProductInput struct {
	Name          *string          `json:"name,omitempty"`
	SKU           *string          `json:"sku,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Image         *string          `json:"image,omitempty"`
	Images        []string         `json:"images,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	Discount      *decimal.Decimal `json:"discount,omitempty"`
	Quantity      *int             `json:"quantity,omitempty"`
	IsAvailable   *bool            `json:"isAvailable,omitempty"`
	IsFeatured    *bool            `json:"isFeatured,omitempty"`
	Brand         *string          `json:"brand,omitempty"`
	CategoryID    *uuid.UUID       `json:"categoryId,omitempty"`
	Tags          []string         `json:"tags,omitempty"`
	DeliveryTime  *string          `json:"deliveryTime,omitempty"`
	CourierCharge *decimal.Decimal `json:"courierCharge,omitempty"`
}

// Validate checks the input; create requires name, price and quantity.
func (in *ProductInput) Validate(create bool) error {
	v := &validator{}
	if create {
		v.check(in.Name != nil, "name", "Name is required")
		v.check(in.Price != nil, "price", "Price is required")
	}
	if in.Name != nil {
		v.check(strings.TrimSpace(*in.Name) != "", "name", "Name cannot be empty")
	}
	if in.SKU != nil {
		v.check(strings.TrimSpace(*in.SKU) != "", "sku", "SKU cannot be empty")
	}
	if in.Price != nil {
		v.check(!in.Price.IsNegative(), "price", "Price cannot be negative")
	}
	if in.Discount != nil {
		v.check(!in.Discount.IsNegative(), "discount", "Discount cannot be negative")
		if in.Price != nil {
			v.check(in.Discount.LessThanOrEqual(*in.Price), "discount", "Discount cannot exceed price")
		}
	}
	if in.Quantity != nil {
		v.check(*in.Quantity >= 0, "quantity", "Quantity cannot be negative")
	}
	if in.CourierCharge != nil {
		v.check(!in.CourierCharge.IsNegative(), "courierCharge", "Courier charge cannot be negative")
	}
	return v.err()
}

// ApplyTo copies the provided fields onto p.
func (in *ProductInput) ApplyTo(p *Product) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.SKU != nil {
		sku := strings.TrimSpace(*in.SKU)
		p.SKU = &sku
	}
	if in.Description != nil {
		p.Description = in.Description
	}
	if in.Image != nil {
		p.Image = in.Image
	}
	if in.Images != nil {
		p.Images = in.Images
	}
	if in.Price != nil {
		p.Price = in.Price.Round(2)
	}
	if in.Discount != nil {
		p.Discount = in.Discount.Round(2)
	}
	if in.Quantity != nil {
		p.Quantity = *in.Quantity
	}
	if in.IsAvailable != nil {
		p.IsAvailable = *in.IsAvailable
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
	if in.Brand != nil {
		p.Brand = in.Brand
	}
	if in.CategoryID != nil {
		p.CategoryID = in.CategoryID
	}
	if in.Tags != nil {
		p.Tags = in.Tags
	}
	if in.DeliveryTime != nil {
		p.DeliveryTime = in.DeliveryTime
	}
	if in.CourierCharge != nil {
		p.CourierCharge = in.CourierCharge.Round(2)
	}
}

// NewProduct builds a product from a validated create input.
func NewProduct(in *ProductInput) *Product {
	p := &Product{
		IsAvailable: true,
		Images:      []string{},
		Tags:        []string{},
	}
	in.ApplyTo(p)
	return p
}

// Category groups products.
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description,omitempty" db:"description"`
	Image       *string   `json:"image,omitempty" db:"image"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// CategoryInput carries category fields for create and partial update.
type CategoryInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
}

// Validate checks the input; create requires a title.
func (in *CategoryInput) Validate(create bool) error {
	v := &validator{}
	if create {
		v.check(in.Title != nil, "title", "Title is required")
	}
	if in.Title != nil {
		v.check(strings.TrimSpace(*in.Title) != "", "title", "Title cannot be empty")
	}
	return v.err()
}

// ApplyTo copies the provided fields onto c.
func (in *CategoryInput) ApplyTo(c *Category) {
	if in.Title != nil {
		c.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		c.Description = in.Description
	}
	if in.Image != nil {
		c.Image = in.Image
	}
}
