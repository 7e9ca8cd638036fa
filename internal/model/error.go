package model

import (
	"fmt"
	"net/http"
)

// ErrorSource points at the request field or resource an error refers to.
type ErrorSource struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ErrorResponse is the uniform error envelope returned by every endpoint.
type ErrorResponse struct {
	Success      bool          `json:"success"`
	Message      string        `json:"message"`
	ErrorSources []ErrorSource `json:"errorSources"`
}

// Standard error codes for API responses
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeInvalidCoupon      = "INVALID_COUPON"
	ErrCodeInsufficientStock  = "INSUFFICIENT_STOCK"
	ErrCodeInvalidTransition  = "INVALID_STATUS_TRANSITION"
	ErrCodeCancellationDenied = "CANCELLATION_DENIED"
	ErrCodeUnavailable        = "SERVICE_UNAVAILABLE"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// DomainError is a business rule violation carrying the HTTP status it maps to.
type DomainError struct {
	Code    string
	Status  int
	Message string
	Sources []ErrorSource
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(status int, code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Status:  status,
		Message: message,
	}
}

// BadRequest returns a 400 domain error.
func BadRequest(code, message string) *DomainError {
	return NewDomainError(http.StatusBadRequest, code, message)
}

// NotFound returns a 404 domain error.
func NotFound(message string) *DomainError {
	return NewDomainError(http.StatusNotFound, ErrCodeNotFound, message)
}

// Forbidden returns a 403 domain error.
func Forbidden(message string) *DomainError {
	return NewDomainError(http.StatusForbidden, ErrCodeForbidden, message)
}

// Unauthorised returns a 401 domain error.
func Unauthorised(message string) *DomainError {
	return NewDomainError(http.StatusUnauthorized, ErrCodeUnauthorised, message)
}

// Conflict returns a 409 domain error naming the conflicting field.
func Conflict(field, message string) *DomainError {
	e := NewDomainError(http.StatusConflict, ErrCodeConflict, message)
	if field != "" {
		e.Sources = []ErrorSource{{Path: field, Message: message}}
	}
	return e
}

// ValidationError returns a 400 error listing every invalid field.
func ValidationError(sources ...ErrorSource) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidation,
		Status:  http.StatusBadRequest,
		Message: "Validation Error",
		Sources: sources,
	}
}

// ConflictError reports a uniqueness violation detected by the database.
type ConflictError struct {
	Field      string
	Constraint string
	Err        error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// Common domain errors
var (
	ErrUnauthorised = Unauthorised("You are not authorized!")
	ErrForbidden    = Forbidden("You are not authorized!")
)

// validator accumulates field errors for request validation.
type validator struct {
	sources []ErrorSource
}

func (v *validator) check(ok bool, path, message string) {
	if !ok {
		v.sources = append(v.sources, ErrorSource{Path: path, Message: message})
	}
}

func (v *validator) err() error {
	if len(v.sources) == 0 {
		return nil
	}
	return ValidationError(v.sources...)
}
