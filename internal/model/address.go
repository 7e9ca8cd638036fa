package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Address is a user's saved postal address.
type Address struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"userId" db:"user_id"`
	Street      string    `json:"street" db:"street"`
	City        string    `json:"city" db:"city"`
	PostalCode  string    `json:"postalCode" db:"postal_code"`
	Country     string    `json:"country" db:"country"`
	PhoneNumber *string   `json:"phoneNumber,omitempty" db:"phone_number"`
	Label       *string   `json:"label,omitempty" db:"label"`
	IsDefault   bool      `json:"isDefault" db:"is_default"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Snapshot copies the postal fields for embedding in an order.
func (a *Address) Snapshot() PostalAddress {
	return PostalAddress{
		Street:     a.Street,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// PostalAddress is an address frozen into an order.
type PostalAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// AddressInput carries address fields for create and partial update.
type AddressInput struct {
	Street      *string `json:"street,omitempty"`
	City        *string `json:"city,omitempty"`
	PostalCode  *string `json:"postalCode,omitempty"`
	Country     *string `json:"country,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Label       *string `json:"label,omitempty"`
	IsDefault   *bool   `json:"isDefault,omitempty"`
}

// Validate checks the input; create requires the postal fields.
func (in *AddressInput) Validate(create bool) error {
	v := &validator{}
	fields := []struct {
		value *string
		path  string
		name  string
	}{
		{in.Street, "street", "Street"},
		{in.City, "city", "City"},
		{in.PostalCode, "postalCode", "Postal code"},
		{in.Country, "country", "Country"},
	}
	for _, f := range fields {
		if create {
			v.check(f.value != nil, f.path, f.name+" is required")
		}
		if f.value != nil {
			v.check(strings.TrimSpace(*f.value) != "", f.path, f.name+" cannot be empty")
		}
	}
	return v.err()
}

// ApplyTo copies the provided fields onto a. IsDefault is handled by the service.
func (in *AddressInput) ApplyTo(a *Address) {
	if in.Street != nil {
		a.Street = strings.TrimSpace(*in.Street)
	}
	if in.City != nil {
		a.City = strings.TrimSpace(*in.City)
	}
	if in.PostalCode != nil {
		a.PostalCode = strings.TrimSpace(*in.PostalCode)
	}
	if in.Country != nil {
		a.Country = strings.TrimSpace(*in.Country)
	}
	if in.PhoneNumber != nil {
		a.PhoneNumber = in.PhoneNumber
	}
	if in.Label != nil {
		a.Label = in.Label
	}
}
