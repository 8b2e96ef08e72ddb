package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON          = "INVALID_JSON"
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeInvalidTransition    = "INVALID_TRANSITION"
	ErrCodeCustomerInfoRequired = "CUSTOMER_INFO_REQUIRED"
	ErrCodeNegativeStock        = "NEGATIVE_STOCK"
	ErrCodeForeignKey           = "FOREIGN_KEY"
	ErrCodeCannotDelete         = "CANNOT_DELETE"
	ErrCodeOrderLocked          = "ORDER_LOCKED"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeUnauthorised         = "UNAUTHORIZED"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// DomainError is a business rule violation. Two domain errors are considered
// equal by errors.Is when their codes match, so a detailed error built with
// NewValidationError still matches ErrValidation.
type DomainError struct {
	Code    string
	Message string
	Field   string
}

func (e *DomainError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Is reports whether target is a domain error with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error attached to a form field.
func NewValidationError(field, message string) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: message,
		Field:   field,
	}
}

// NewCannotDeleteError creates a CANNOT_DELETE error with a specific reason.
func NewCannotDeleteError(reason string) *DomainError {
	return NewDomainError(ErrCodeCannotDelete, "cannot delete: "+reason)
}

// Common domain errors
var (
	ErrValidation           = NewDomainError(ErrCodeValidation, "Validation failed")
	ErrInvalidTransition    = NewDomainError(ErrCodeInvalidTransition, "Invalid order status transition")
	ErrCustomerInfoRequired = NewDomainError(ErrCodeCustomerInfoRequired, "Customer name and phone number are required to finish an order")
	ErrNegativeStock        = NewDomainError(ErrCodeNegativeStock, "Stock cannot drop below zero")
	ErrForeignKey           = NewDomainError(ErrCodeForeignKey, "Entity is referenced elsewhere; archive it instead")
	ErrCannotDelete         = NewDomainError(ErrCodeCannotDelete, "Entity cannot be deleted")
	ErrOrderLocked          = NewDomainError(ErrCodeOrderLocked, "Finished orders cannot be edited")
	ErrNotFound             = NewDomainError(ErrCodeNotFound, "Entity not found")
)
