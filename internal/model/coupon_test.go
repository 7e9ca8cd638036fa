package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoupon_Check(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	maxUses := 5
	minOrder := decimal.NewFromInt(100)

	base := func() Coupon {
		return Coupon{
			Code:          "SAVE10",
			DiscountType:  DiscountPercentage,
			DiscountValue: decimal.NewFromInt(10),
			ValidFrom:     now.Add(-time.Hour),
			ValidUntil:    now.Add(time.Hour),
			IsActive:      true,
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Coupon)
		amount int64
		want   CouponViolation
	}{
		{name: "Valid", mutate: func(c *Coupon) {}, amount: 50, want: CouponOK},
		{name: "Inactive", mutate: func(c *Coupon) { c.IsActive = false }, amount: 50, want: CouponInactive},
		{name: "Not yet valid", mutate: func(c *Coupon) { c.ValidFrom = now.Add(time.Minute) }, amount: 50, want: CouponNotYetValid},
		{name: "Expired", mutate: func(c *Coupon) { c.ValidUntil = now.Add(-time.Minute) }, amount: 50, want: CouponExpired},
		{name: "Window bounds inclusive", mutate: func(c *Coupon) { c.ValidFrom, c.ValidUntil = now, now }, amount: 50, want: CouponOK},
		{
			name: "Usage exhausted",
			mutate: func(c *Coupon) {
				c.MaxUses = &maxUses
				c.CurrentUses = 5
			},
			amount: 50,
			want:   CouponExhausted,
		},
		{name: "Below minimum", mutate: func(c *Coupon) { c.MinOrderAmount = &minOrder }, amount: 99, want: CouponBelowMinimum},
		{name: "At minimum", mutate: func(c *Coupon) { c.MinOrderAmount = &minOrder }, amount: 100, want: CouponOK},
		{
			name: "Inactive reported before expiry",
			mutate: func(c *Coupon) {
				c.IsActive = false
				c.ValidUntil = now.Add(-time.Minute)
			},
			amount: 50,
			want:   CouponInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			assert.Equal(t, tt.want, c.Check(now, decimal.NewFromInt(tt.amount)))
		})
	}
}

func TestCoupon_Discount(t *testing.T) {
	tests := []struct {
		name   string
		typ    DiscountType
		value  string
		amount string
		want   string
	}{
		{"Percentage", DiscountPercentage, "10", "200", "20"},
		{"Percentage rounds to cents", DiscountPercentage, "15", "33.33", "5"},
		{"Fixed", DiscountFixed, "25", "200", "25"},
		{"Fixed capped at amount", DiscountFixed, "500", "200", "200"},
		{"Full percentage", DiscountPercentage, "100", "80", "80"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Coupon{DiscountType: tt.typ, DiscountValue: decimal.RequireFromString(tt.value)}
			got := c.Discount(decimal.RequireFromString(tt.amount))
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestValidateCoupon(t *testing.T) {
	now := time.Now()
	c := &Coupon{
		DiscountType:  DiscountPercentage,
		DiscountValue: decimal.NewFromInt(101),
		ValidFrom:     now,
		ValidUntil:    now.Add(-time.Hour),
	}

	err := ValidateCoupon(c)

	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Len(t, domainErr.Sources, 2)
	assert.Equal(t, "discountValue", domainErr.Sources[0].Path)
	assert.Equal(t, "validUntil", domainErr.Sources[1].Path)

	c.DiscountValue = decimal.NewFromInt(100)
	c.ValidUntil = now.Add(time.Hour)
	assert.NoError(t, ValidateCoupon(c))
}

func TestCouponInput_ApplyTo_UppercasesCode(t *testing.T) {
	code := "  save10 "
	in := CouponInput{Code: &code}
	var c Coupon

	in.ApplyTo(&c)

	assert.Equal(t, "SAVE10", c.Code)
}
