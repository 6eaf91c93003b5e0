package errors

import (
	"errors"
	"fmt"
)

var (
	ErrPaymentLinkNotFound  = errors.New("payment link not found")
	ErrUnknownPaymentStatus = errors.New("unknown payment status")
	ErrActiveLinkExists     = errors.New("order already has an active payment link")
	ErrLinkNotProduced      = errors.New("payment gateway did not produce a link")
	ErrLinkClosed           = errors.New("payment link is already closed")
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderNotPending      = errors.New("order is not pending")
	ErrSellerNotFound       = errors.New("seller not found")
	ErrSellerInactive       = errors.New("seller is inactive")
	ErrSellerHasOrders      = errors.New("seller has orders and cannot be deleted")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidSignature     = errors.New("invalid webhook signature")
)

// ValidationError is a user-facing input error on a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
