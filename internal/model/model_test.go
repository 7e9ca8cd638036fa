package model

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_EffectivePrice(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		discount string
		want     string
	}{
		{"No discount", "99.99", "0", "99.99"},
		{"Discounted", "100", "15.5", "84.5"},
		{"Never negative", "10", "20", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Product{Price: decimal.RequireFromString(tt.price), Discount: decimal.RequireFromString(tt.discount)}
			assert.True(t, decimal.RequireFromString(tt.want).Equal(p.EffectivePrice()))
		})
	}
}

func TestNewProduct_Defaults(t *testing.T) {
	name := " Widget "
	price := decimal.NewFromInt(10)

	p := NewProduct(&ProductInput{Name: &name, Price: &price})

	assert.Equal(t, "Widget", p.Name)
	assert.True(t, p.IsAvailable)
	assert.NotNil(t, p.Images)
	assert.NotNil(t, p.Tags)
}

func TestProductInput_Validate(t *testing.T) {
	price := decimal.NewFromInt(10)
	discount := decimal.NewFromInt(11)
	qty := -1

	err := (&ProductInput{Price: &price, Discount: &discount, Quantity: &qty}).Validate(true)

	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, http.StatusBadRequest, domainErr.Status)
	paths := make([]string, 0, len(domainErr.Sources))
	for _, s := range domainErr.Sources {
		paths = append(paths, s.Path)
	}
	assert.ElementsMatch(t, []string{"name", "discount", "quantity"}, paths)
}

func TestCart_Recalculate(t *testing.T) {
	c := &Cart{
		Items: []CartItem{
			{ProductID: uuid.New(), Price: decimal.RequireFromString("12.50"), Quantity: 2},
			{ProductID: uuid.New(), Price: decimal.RequireFromString("0.99"), Quantity: 3},
		},
	}

	c.Recalculate()

	assert.True(t, decimal.NewFromInt(25).Equal(c.Items[0].Total))
	assert.True(t, decimal.RequireFromString("2.97").Equal(c.Items[1].Total))
	assert.True(t, decimal.RequireFromString("27.97").Equal(c.Subtotal))
	assert.True(t, c.Subtotal.Equal(c.Total))

	item, ok := c.Item(c.Items[1].ProductID)
	require.True(t, ok)
	assert.Equal(t, 3, item.Quantity)
	_, ok = c.Item(uuid.New())
	assert.False(t, ok)
}

func TestAddressInput_Validate(t *testing.T) {
	empty := " "
	err := (&AddressInput{Street: &empty}).Validate(true)

	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Len(t, domainErr.Sources, 4)

	assert.NoError(t, (&AddressInput{}).Validate(false))
}

func TestTransactionStatus_OrderPaymentStatus(t *testing.T) {
	assert.Equal(t, PaymentCompleted, TransactionCompleted.OrderPaymentStatus())
	assert.Equal(t, PaymentFailed, TransactionFailed.OrderPaymentStatus())
	assert.Equal(t, PaymentPending, TransactionCancelled.OrderPaymentStatus())
	assert.Equal(t, PaymentPending, TransactionPending.OrderPaymentStatus())
}

func TestFlashSale_Running(t *testing.T) {
	now := time.Now()
	f := FlashSale{IsActive: true, StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour)}

	assert.True(t, f.Running(now))
	assert.False(t, f.Running(now.Add(2*time.Hour)))
	f.IsActive = false
	assert.False(t, f.Running(now))
}

func TestSignUpRequest_Validate(t *testing.T) {
	ok := SignUpRequest{Name: "Ann", Email: "ann@example.com", Password: "secret1"}
	assert.NoError(t, ok.Validate())

	bad := SignUpRequest{Email: "Ann <ann@example.com>", Password: "123"}
	var domainErr *DomainError
	require.ErrorAs(t, bad.Validate(), &domainErr)
	assert.Len(t, domainErr.Sources, 3)
}

func TestConflictError(t *testing.T) {
	err := &ConflictError{Field: "email", Constraint: "users_email_key"}
	assert.Equal(t, "email already exists", err.Error())
}
