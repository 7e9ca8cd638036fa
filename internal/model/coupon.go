package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType selects how a discount value is interpreted.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Valid reports whether t is a known discount type.
func (t DiscountType) Valid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

var hundred = decimal.NewFromInt(100)

// Coupon is a discount code. Code is stored uppercase.
type Coupon struct {
	ID             uuid.UUID        `json:"id" db:"id"`
	Code           string           `json:"code" db:"code"`
	DiscountType   DiscountType     `json:"discountType" db:"discount_type"`
	DiscountValue  decimal.Decimal  `json:"discountValue" db:"discount_value"`
	ValidFrom      time.Time        `json:"validFrom" db:"valid_from"`
	ValidUntil     time.Time        `json:"validUntil" db:"valid_until"`
	MaxUses        *int             `json:"maxUses,omitempty" db:"max_uses"`
	CurrentUses    int              `json:"currentUses" db:"current_uses"`
	MinOrderAmount *decimal.Decimal `json:"minOrderAmount,omitempty" db:"min_order_amount"`
	IsActive       bool             `json:"isActive" db:"is_active"`
	Description    *string          `json:"description,omitempty" db:"description"`
	CreatedAt      time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time        `json:"updatedAt" db:"updated_at"`
}

// CouponViolation names the first rule a coupon fails for an order amount.
type CouponViolation int

const (
	CouponOK CouponViolation = iota
	CouponInactive
	CouponNotYetValid
	CouponExpired
	CouponExhausted
	CouponBelowMinimum
)

// Check evaluates the coupon rules in order and returns the first violation.
func (c *Coupon) Check(now time.Time, amount decimal.Decimal) CouponViolation {
	switch {
	case !c.IsActive:
		return CouponInactive
	case now.Before(c.ValidFrom):
		return CouponNotYetValid
	case now.After(c.ValidUntil):
		return CouponExpired
	case c.MaxUses != nil && c.CurrentUses >= *c.MaxUses:
		return CouponExhausted
	case c.MinOrderAmount != nil && amount.LessThan(*c.MinOrderAmount):
		return CouponBelowMinimum
	}
	return CouponOK
}

// Discount returns the discount for amount, rounded to cents and never above amount.
func (c *Coupon) Discount(amount decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch c.DiscountType {
	case DiscountPercentage:
		d = amount.Mul(c.DiscountValue).Div(hundred)
	case DiscountFixed:
		d = c.DiscountValue
	}
	if d.GreaterThan(amount) {
		d = amount
	}
	return d.Round(2)
}

// NormaliseCouponCode trims and uppercases a user supplied code.
func NormaliseCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CouponInput carries coupon fields for create and partial update.
type CouponInput struct {
	Code           *string          `json:"code,omitempty"`
	DiscountType   *DiscountType    `json:"discountType,omitempty"`
	DiscountValue  *decimal.Decimal `json:"discountValue,omitempty"`
	ValidFrom      *time.Time       `json:"validFrom,omitempty"`
	ValidUntil     *time.Time       `json:"validUntil,omitempty"`
	MaxUses        *int             `json:"maxUses,omitempty"`
	MinOrderAmount *decimal.Decimal `json:"minOrderAmount,omitempty"`
	IsActive       *bool            `json:"isActive,omitempty"`
	Description    *string          `json:"description,omitempty"`
}

// Validate checks the input fields on their own; cross-field rules are checked by ValidateCoupon.
func (in *CouponInput) Validate(create bool) error {
	v := &validator{}
	if create {
		v.check(in.Code != nil, "code", "Code is required")
		v.check(in.DiscountType != nil, "discountType", "Discount type is required")
		v.check(in.DiscountValue != nil, "discountValue", "Discount value is required")
		v.check(in.ValidFrom != nil, "validFrom", "Valid from date is required")
		v.check(in.ValidUntil != nil, "validUntil", "Valid until date is required")
	}
	if in.Code != nil {
		v.check(NormaliseCouponCode(*in.Code) != "", "code", "Code cannot be empty")
	}
	if in.DiscountType != nil {
		v.check(in.DiscountType.Valid(), "discountType", "Discount type must be percentage or fixed")
	}
	if in.MaxUses != nil {
		v.check(*in.MaxUses > 0, "maxUses", "Max uses must be greater than 0")
	}
	if in.MinOrderAmount != nil {
		v.check(!in.MinOrderAmount.IsNegative(), "minOrderAmount", "Minimum order amount cannot be negative")
	}
	return v.err()
}

// ApplyTo copies the provided fields onto c.
func (in *CouponInput) ApplyTo(c *Coupon) {
	if in.Code != nil {
		c.Code = NormaliseCouponCode(*in.Code)
	}
	if in.DiscountType != nil {
		c.DiscountType = *in.DiscountType
	}
	if in.DiscountValue != nil {
		c.DiscountValue = in.DiscountValue.Round(2)
	}
	if in.ValidFrom != nil {
		c.ValidFrom = *in.ValidFrom
	}
	if in.ValidUntil != nil {
		c.ValidUntil = *in.ValidUntil
	}
	if in.MaxUses != nil {
		c.MaxUses = in.MaxUses
	}
	if in.MinOrderAmount != nil {
		c.MinOrderAmount = in.MinOrderAmount
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if in.Description != nil {
		c.Description = in.Description
	}
}

// ValidateCoupon checks the rules that span several fields of a complete coupon.
func ValidateCoupon(c *Coupon) error {
	v := &validator{}
	v.check(c.DiscountValue.IsPositive(), "discountValue", "Discount value must be greater than 0")
	if c.DiscountType == DiscountPercentage {
		v.check(c.DiscountValue.LessThanOrEqual(hundred), "discountValue", "Percentage discount cannot exceed 100")
	}
	v.check(c.ValidUntil.After(c.ValidFrom), "validUntil", "Valid until must be after valid from")
	if c.MaxUses != nil {
		v.check(c.CurrentUses <= *c.MaxUses, "maxUses", "Max uses cannot be below current uses")
	}
	return v.err()
}

// ValidateCouponRequest is the payload for POST /coupons/validate and /coupons/apply.
type ValidateCouponRequest struct {
	Code       string          `json:"code"`
	OrderTotal decimal.Decimal `json:"orderTotal"`
}

// Validate checks the payload.
func (r *ValidateCouponRequest) Validate() error {
	v := &validator{}
	v.check(NormaliseCouponCode(r.Code) != "", "code", "Code is required")
	v.check(!r.OrderTotal.IsNegative(), "orderTotal", "Order total cannot be negative")
	return v.err()
}

// CouponQuote is the outcome of validating a coupon against an order total.
type CouponQuote struct {
	Coupon         *Coupon         `json:"coupon"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	FinalAmount    decimal.Decimal `json:"finalAmount"`
}

// CouponImportResult summarises a bulk coupon import.
type CouponImportResult struct {
	Files    int   `json:"files"`
	Parsed   int   `json:"parsed"`
	Invalid  int   `json:"invalid"`
	Inserted int64 `json:"inserted"`
	Skipped  int64 `json:"skipped"`
}
