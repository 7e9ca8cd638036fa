package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContactType is the channel of a storefront contact entry.
type ContactType string

const (
	ContactWhatsApp ContactType = "WhatsApp"
	ContactImo      ContactType = "Imo"
	ContactViber    ContactType = "Viber"
	ContactTelegram ContactType = "Telegram"
	ContactPhone    ContactType = "Phone"
	ContactEmail    ContactType = "Email"
)

// Valid reports whether t is a known contact type.
func (t ContactType) Valid() bool {
	switch t {
	case ContactWhatsApp, ContactImo, ContactViber, ContactTelegram, ContactPhone, ContactEmail:
		return true
	}
	return false
}

// Contact is a support channel shown on the storefront.
type Contact struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	Label        string      `json:"label" db:"label"`
	ContactType  ContactType `json:"contactType" db:"contact_type"`
	ContactValue string      `json:"contactValue" db:"contact_value"`
	IsActive     bool        `json:"isActive" db:"is_active"`
	DisplayOrder int         `json:"displayOrder" db:"display_order"`
	CreatedAt    time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time   `json:"updatedAt" db:"updated_at"`
}

// ContactInput carries contact fields for create and partial update.
type ContactInput struct {
	Label        *string      `json:"label,omitempty"`
	ContactType  *ContactType `json:"contactType,omitempty"`
	ContactValue *string      `json:"contactValue,omitempty"`
	IsActive     *bool        `json:"isActive,omitempty"`
	DisplayOrder *int         `json:"displayOrder,omitempty"`
}

// Validate checks the input.
func (in *ContactInput) Validate(create bool) error {
	v := &validator{}
	if create {
		v.check(in.Label != nil, "label", "Label is required")
		v.check(in.ContactType != nil, "contactType", "Contact type is required")
		v.check(in.ContactValue != nil, "contactValue", "Contact value is required")
	}
	if in.Label != nil {
		v.check(strings.TrimSpace(*in.Label) != "", "label", "Label cannot be empty")
	}
	if in.ContactType != nil {
		v.check(in.ContactType.Valid(), "contactType",
			"Contact type must be one of WhatsApp, Imo, Viber, Telegram, Phone, Email")
	}
	if in.ContactValue != nil {
		v.check(strings.TrimSpace(*in.ContactValue) != "", "contactValue", "Contact value cannot be empty")
	}
	return v.err()
}

// ApplyTo copies the provided fields onto c.
func (in *ContactInput) ApplyTo(c *Contact) {
	if in.Label != nil {
		c.Label = strings.TrimSpace(*in.Label)
	}
	if in.ContactType != nil {
		c.ContactType = *in.ContactType
	}
	if in.ContactValue != nil {
		c.ContactValue = strings.TrimSpace(*in.ContactValue)
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if in.DisplayOrder != nil {
		c.DisplayOrder = *in.DisplayOrder
	}
}

// Carousel is a homepage banner.
type Carousel struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Image        string    `json:"image" db:"image"`
	Title        *string   `json:"title,omitempty" db:"title"`
	Description  *string   `json:"description,omitempty" db:"description"`
	IsActive     bool      `json:"isActive" db:"is_active"`
	DisplayOrder int       `json:"displayOrder" db:"display_order"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// CarouselInput carries banner fields for create and partial update.
type CarouselInput struct {
	Image        *string `json:"image,omitempty"`
	Title        *string `json:"title,omitempty"`
	Description  *string `json:"description,omitempty"`
	IsActive     *bool   `json:"isActive,omitempty"`
	DisplayOrder *int    `json:"displayOrder,omitempty"`
}

// Validate checks the input.
func (in *CarouselInput) Validate(create bool) error {
	v := &validator{}
	if create {
		v.check(in.Image != nil, "image", "Image is required")
	}
	if in.Image != nil {
		v.check(strings.TrimSpace(*in.Image) != "", "image", "Image cannot be empty")
	}
	return v.err()
}

// ApplyTo copies the provided fields onto c.
func (in *CarouselInput) ApplyTo(c *Carousel) {
	if in.Image != nil {
		c.Image = strings.TrimSpace(*in.Image)
	}
	if in.Title != nil {
		c.Title = in.Title
	}
	if in.Description != nil {
		c.Description = in.Description
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if in.DisplayOrder != nil {
		c.DisplayOrder = *in.DisplayOrder
	}
}

// FlashSale is a time boxed promotion over a set of products.
type FlashSale struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Title         string          `json:"title" db:"title"`
	Description   *string         `json:"description,omitempty" db:"description"`
	Image         string          `json:"image" db:"image"`
	DiscountType  DiscountType    `json:"discountType" db:"discount_type"`
	DiscountValue decimal.Decimal `json:"discountValue" db:"discount_value"`
	StartDate     time.Time       `json:"startDate" db:"start_date"`
	EndDate       time.Time       `json:"endDate" db:"end_date"`
	IsActive      bool            `json:"isActive" db:"is_active"`
	Featured      bool            `json:"featured" db:"featured"`
	DisplayOrder  int             `json:"displayOrder" db:"display_order"`
	ProductIDs    []uuid.UUID     `json:"productIds" db:"product_ids"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// Running reports whether the sale is active at now. Both bounds are inclusive.
func (f *FlashSale) Running(now time.Time) bool {
	return f.IsActive && !now.Before(f.StartDate) && !now.After(f.EndDate)
}

// FlashSaleInput carries flash sale fields for create and partial update.
type FlashSaleInput struct {
	Title         *string          `json:"title,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Image         *string          `json:"image,omitempty"`
	DiscountType  *DiscountType    `json:"discountType,omitempty"`
	DiscountValue *decimal.Decimal `json:"discountValue,omitempty"`
	StartDate     *time.Time       `json:"startDate,omitempty"`
	EndDate       *time.Time       `json:"endDate,omitempty"`
	IsActive      *bool            `json:"isActive,omitempty"`
	Featured      *bool            `json:"featured,omitempty"`
	DisplayOrder  *int             `json:"displayOrder,omitempty"`
	ProductIDs    []uuid.UUID      `json:"productIds,omitempty"`
}

// Validate checks the individual fields.
func (in *FlashSaleInput) Validate(create bool) error {
	v := &validator{}
	if create {
		v.check(in.Title != nil, "title", "Title is required")
		v.check(in.Image != nil, "image", "Image is required")
		v.check(in.DiscountType != nil, "discountType", "Discount type is required")
		v.check(in.DiscountValue != nil, "discountValue", "Discount value is required")
		v.check(in.StartDate != nil, "startDate", "Start date is required")
		v.check(in.EndDate != nil, "endDate", "End date is required")
	}
	if in.Title != nil {
		v.check(strings.TrimSpace(*in.Title) != "", "title", "Title cannot be empty")
	}
	if in.DiscountType != nil {
		v.check(in.DiscountType.Valid(), "discountType", "Discount type must be percentage or fixed")
	}
	if in.DiscountValue != nil {
		v.check(in.DiscountValue.IsPositive(), "discountValue", "Discount value must be greater than 0")
	}
	return v.err()
}

// ApplyTo copies the provided fields onto f.
func (in *FlashSaleInput) ApplyTo(f *FlashSale) {
	if in.Title != nil {
		f.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		f.Description = in.Description
	}
	if in.Image != nil {
		f.Image = *in.Image
	}
	if in.DiscountType != nil {
		f.DiscountType = *in.DiscountType
	}
	if in.DiscountValue != nil {
		f.DiscountValue = in.DiscountValue.Round(2)
	}
	if in.StartDate != nil {
		f.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		f.EndDate = *in.EndDate
	}
	if in.IsActive != nil {
		f.IsActive = *in.IsActive
	}
	if in.Featured != nil {
		f.Featured = *in.Featured
	}
	if in.DisplayOrder != nil {
		f.DisplayOrder = *in.DisplayOrder
	}
	if in.ProductIDs != nil {
		f.ProductIDs = in.ProductIDs
	}
}

// ValidateFlashSale checks rules spanning several fields of a complete sale.
func ValidateFlashSale(f *FlashSale) error {
	v := &validator{}
	v.check(f.EndDate.After(f.StartDate), "endDate", "End date must be after start date")
	if f.DiscountType == DiscountPercentage {
		v.check(f.DiscountValue.LessThanOrEqual(hundred), "discountValue", "Percentage discount cannot exceed 100")
	}
	return v.err()
}
