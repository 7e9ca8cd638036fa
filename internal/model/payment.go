package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType classifies a mobile payment account.
type AccountType string

const (
	AccountPersonal AccountType = "Personal"
	AccountAgent    AccountType = "Agent"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	return t == AccountPersonal || t == AccountAgent
}

// PaymentMethod is a manual payment channel customers pay into.
type PaymentMethod struct {
	ID            uuid.UUID    `json:"id" db:"id"`
	MethodName    string       `json:"methodName" db:"method_name"`
	Description   *string      `json:"description,omitempty" db:"description"`
	AccountNumber *string      `json:"accountNumber,omitempty" db:"account_number"`
	AccountName   *string      `json:"accountName,omitempty" db:"account_name"`
	AccountType   *AccountType `json:"accountType,omitempty" db:"account_type"`
	Instructions  *string      `json:"instructions,omitempty" db:"instructions"`
	IsActive      bool         `json:"isActive" db:"is_active"`
	DisplayOrder  int          `json:"displayOrder" db:"display_order"`
	CreatedAt     time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time    `json:"updatedAt" db:"updated_at"`
}

// PaymentMethodInput carries payment method fields for create and partial update.
type PaymentMethodInput struct {
	MethodName    *string      `json:"methodName,omitempty"`
	Description   *string      `json:"description,omitempty"`
	AccountNumber *string      `json:"accountNumber,omitempty"`
	AccountName   *string      `json:"accountName,omitempty"`
	AccountType   *AccountType `json:"accountType,omitempty"`
	Instructions  *string      `json:"instructions,omitempty"`
	IsActive      *bool        `json:"isActive,omitempty"`
	DisplayOrder  *int         `json:"displayOrder,omitempty"`
}

// Validate checks the input.
func (in *PaymentMethodInput) Validate(create bool) error {
	v := &validator{}
	if create {
		v.check(in.MethodName != nil, "methodName", "Method name is required")
	}
	if in.MethodName != nil {
		v.check(strings.TrimSpace(*in.MethodName) != "", "methodName", "Method name cannot be empty")
	}
	if in.AccountType != nil {
		v.check(in.AccountType.Valid(), "accountType", "Account type must be Personal or Agent")
	}
	return v.err()
}

// ApplyTo copies the provided fields onto m.
func (in *PaymentMethodInput) ApplyTo(m *PaymentMethod) {
	if in.MethodName != nil {
		m.MethodName = strings.TrimSpace(*in.MethodName)
	}
	if in.Description != nil {
		m.Description = in.Description
	}
	if in.AccountNumber != nil {
		m.AccountNumber = in.AccountNumber
	}
	if in.AccountName != nil {
		m.AccountName = in.AccountName
	}
	if in.AccountType != nil {
		m.AccountType = in.AccountType
	}
	if in.Instructions != nil {
		m.Instructions = in.Instructions
	}
	if in.IsActive != nil {
		m.IsActive = *in.IsActive
	}
	if in.DisplayOrder != nil {
		m.DisplayOrder = *in.DisplayOrder
	}
}

// TransactionStatus is the review state of a manual payment.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
	TransactionCancelled TransactionStatus = "cancelled"
)

// Valid reports whether s is a known transaction status.
func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionPending, TransactionCompleted, TransactionFailed, TransactionCancelled:
		return true
	}
	return false
}

// OrderPaymentStatus is the order payment status implied by a transaction status.
func (s TransactionStatus) OrderPaymentStatus() PaymentStatus {
	switch s {
	case TransactionCompleted:
		return PaymentCompleted
	case TransactionFailed:
		return PaymentFailed
	default:
		return PaymentPending
	}
}

// Transaction records a customer's claim to have paid an order.
type Transaction struct {
	ID                        uuid.UUID         `json:"id" db:"id"`
	TransactionID             string            `json:"transactionId" db:"transaction_id"`
	OrderID                   uuid.UUID         `json:"orderId" db:"order_id"`
	UserID                    uuid.UUID         `json:"userId" db:"user_id"`
	PaymentMethodID           uuid.UUID         `json:"paymentMethodId" db:"payment_method_id"`
	Amount                    decimal.Decimal   `json:"amount" db:"amount"`
	TransactionStatus         TransactionStatus `json:"transactionStatus" db:"transaction_status"`
	UserProvidedTransactionID string            `json:"userProvidedTransactionId" db:"user_provided_transaction_id"`
	AdminNotes                *string           `json:"adminNotes,omitempty" db:"admin_notes"`
	CreatedAt                 time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt                 time.Time         `json:"updatedAt" db:"updated_at"`
}

// CreateTransactionRequest is the payload a customer submits after paying.
// OrderID is the ORD- number returned at checkout or the order's UUID.
type CreateTransactionRequest struct {
	OrderID                   string    `json:"orderId"`
	PaymentMethodID           uuid.UUID `json:"paymentMethodId"`
	UserProvidedTransactionID string    `json:"userProvidedTransactionId"`
}

// Validate checks the payload.
func (r *CreateTransactionRequest) Validate() error {
	v := &validator{}
	v.check(strings.TrimSpace(r.OrderID) != "", "orderId", "Order ID is required")
	v.check(r.PaymentMethodID != uuid.Nil, "paymentMethodId", "Payment method ID is required")
	v.check(strings.TrimSpace(r.UserProvidedTransactionID) != "", "userProvidedTransactionId",
		"Transaction ID is required")
	return v.err()
}

// UpdateTransactionStatusRequest is the admin review payload.
type UpdateTransactionStatusRequest struct {
	Status     TransactionStatus `json:"status"`
	AdminNotes *string           `json:"adminNotes,omitempty"`
}

// Validate checks the payload.
func (r *UpdateTransactionStatusRequest) Validate() error {
	v := &validator{}
	v.check(r.Status.Valid(), "status", "Status must be pending, completed, failed or cancelled")
	return v.err()
}
