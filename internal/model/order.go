package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// orderTransitions lists the statuses reachable from each status.
// Delivered and cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from s to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentStatus is the payment state of an order.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// DefaultPaymentMethod is used when an order does not name one.
const DefaultPaymentMethod = "cash"

var cashOnDelivery = map[string]bool{
	"cash":             true,
	"cod":              true,
	"cash on delivery": true,
	"cash_on_delivery": true,
}

// IsCashOnDelivery reports whether method is one of the cash on delivery spellings.
func IsCashOnDelivery(method string) bool {
	return cashOnDelivery[strings.ToLower(strings.TrimSpace(method))]
}

// Order is a placed order with a snapshot of its items and addresses.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	OrderID         string          `json:"orderId" db:"order_id"`
	UserID          uuid.UUID       `json:"userId" db:"user_id"`
	Items           []OrderItem     `json:"items" db:"-"`
	ShippingAddress PostalAddress   `json:"shippingAddress" db:"shipping_address"`
	BillingAddress  PostalAddress   `json:"billingAddress" db:"billing_address"`
	OrderStatus     OrderStatus     `json:"orderStatus" db:"order_status"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus" db:"payment_status"`
	PaymentMethod   string          `json:"paymentMethod" db:"payment_method"`
	TransactionID   *string         `json:"transactionId,omitempty" db:"transaction_id"`
	Subtotal        decimal.Decimal `json:"subtotal" db:"subtotal"`
	Tax             decimal.Decimal `json:"tax" db:"tax"`
	ShippingCost    decimal.Decimal `json:"shippingCost" db:"shipping_cost"`
	DiscountCode    *string         `json:"discountCode,omitempty" db:"discount_code"`
	DiscountAmount  decimal.Decimal `json:"discountAmount" db:"discount_amount"`
	Total           decimal.Decimal `json:"total" db:"total"`
	Notes           *string         `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem is a purchased line. ProductID is nil once the product is deleted.
type OrderItem struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	OrderID   uuid.UUID       `json:"-" db:"order_id"`
	ProductID *uuid.UUID      `json:"productId" db:"product_id"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Total     decimal.Decimal `json:"total" db:"total"`
}

var (
	taxRate               = decimal.RequireFromString("0.05")
	freeShippingThreshold = decimal.NewFromInt(5000)
	flatShippingCost      = decimal.NewFromInt(100)
)

// Pricing holds the computed money fields of an order.
type Pricing struct {
	Subtotal       decimal.Decimal
	Tax            decimal.Decimal
	ShippingCost   decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
}

// PriceOrder applies tax and shipping to subtotal and subtracts discount.
// Tax is 5% of the subtotal; shipping is free above 5000 and 100 otherwise.
func PriceOrder(subtotal, discount decimal.Decimal) Pricing {
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(taxRate).Round(2)
	shipping := flatShippingCost
	if subtotal.GreaterThan(freeShippingThreshold) {
		shipping = decimal.Zero
	}
	total := subtotal.Add(tax).Add(shipping).Sub(discount).Round(2)
	return Pricing{
		Subtotal:       subtotal,
		Tax:            tax,
		ShippingCost:   shipping,
		DiscountAmount: discount.Round(2),
		Total:          total,
	}
}

// Reprice recomputes the order's subtotal and total from its items, keeping the
// recorded tax rate, shipping and discount rules.
func (o *Order) Reprice() {
	subtotal := decimal.Zero
	for i := range o.Items {
		o.Items[i].Total = o.Items[i].Price.Mul(decimal.NewFromInt(int64(o.Items[i].Quantity))).Round(2)
		subtotal = subtotal.Add(o.Items[i].Total)
	}
	discount := o.DiscountAmount
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	p := PriceOrder(subtotal, discount)
	o.Subtotal = p.Subtotal
	o.Tax = p.Tax
	o.ShippingCost = p.ShippingCost
	o.DiscountAmount = p.DiscountAmount
	o.Total = p.Total
}

// CreateOrderRequest is the checkout payload.
type CreateOrderRequest struct {
	ShippingAddressID uuid.UUID   `json:"shippingAddressId"`
	SelectedItems     []uuid.UUID `json:"selectedItems"`
	DiscountCode      string      `json:"discountCode,omitempty"`
	PaymentMethod     string      `json:"paymentMethod,omitempty"`
	TransactionID     string      `json:"transactionId,omitempty"`
	Notes             string      `json:"notes,omitempty"`
}

// Validate checks the payload shape. Cart and coupon rules are checked by the service.
func (r *CreateOrderRequest) Validate() error {
	v := &validator{}
	v.check(r.ShippingAddressID != uuid.Nil, "shippingAddressId", "Shipping address is required")
	v.check(len(r.SelectedItems) > 0, "selectedItems", "At least one item must be selected")
	if err := v.err(); err != nil {
		return err
	}
	if strings.TrimSpace(r.PaymentMethod) != "" && !IsCashOnDelivery(r.PaymentMethod) &&
		strings.TrimSpace(r.TransactionID) == "" {
		return BadRequest(ErrCodeBadRequest, "Transaction ID is required for non-cash on delivery payments")
	}
	return nil
}

// UpdateOrderStatusRequest is the admin status change payload.
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status"`
}

// OrderEventType names an order feed event.
type OrderEventType string

const (
	OrderEventCreated       OrderEventType = "order.created"
	OrderEventStatusChanged OrderEventType = "order.status_changed"
	OrderEventCancelled     OrderEventType = "order.cancelled"
)

// OrderEvent is pushed to admin websocket clients.
type OrderEvent struct {
	Type       OrderEventType  `json:"type"`
	OrderID    string          `json:"orderId"`
	UserID     uuid.UUID       `json:"userId"`
	Status     OrderStatus     `json:"status"`
	Total      decimal.Decimal `json:"total"`
	OccurredAt time.Time       `json:"occurredAt"`
}
