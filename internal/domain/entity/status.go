package entity

import (
	"strings"

	domainerrors "github.com/Brunohvg/bibpay/internal/domain/errors"
)

// PaymentStatus is the financial status reported by the gateway.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusPaid       PaymentStatus = "paid"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusCanceled   PaymentStatus = "canceled"
	PaymentStatusRefunded   PaymentStatus = "refunded"
	PaymentStatusChargeback PaymentStatus = "chargeback"
	PaymentStatusOverpaid   PaymentStatus = "overpaid"
	PaymentStatusUnderpaid  PaymentStatus = "underpaid"
)

// LinkStatus is the lifecycle status of a payment link.
type LinkStatus string

const (
	LinkStatusActive   LinkStatus = "active"
	LinkStatusUsed     LinkStatus = "used"
	LinkStatusExpired  LinkStatus = "expired"
	LinkStatusInactive LinkStatus = "inactive"
	LinkStatusCanceled LinkStatus = "canceled"
)

// OrderStatus is the commercial status of an order.
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusPaid     OrderStatus = "paid"
	OrderStatusFailed   OrderStatus = "failed"
	OrderStatusCanceled OrderStatus = "canceled"
)

// Transition is what one payment status implies for the link and the order.
// An empty Link or Order means the status leaves it unchanged.
type Transition struct {
	Payment PaymentStatus
	Link    LinkStatus
	Order   OrderStatus
}

// transitions is the only place where gateway statuses are mapped.
var transitions = map[PaymentStatus]Transition{
	PaymentStatusPending:    {Payment: PaymentStatusPending},
	PaymentStatusProcessing: {Payment: PaymentStatusProcessing},
	PaymentStatusPaid:       {Payment: PaymentStatusPaid, Link: LinkStatusUsed, Order: OrderStatusPaid},
	PaymentStatusOverpaid:   {Payment: PaymentStatusOverpaid, Link: LinkStatusUsed, Order: OrderStatusPaid},
	PaymentStatusUnderpaid:  {Payment: PaymentStatusUnderpaid, Link: LinkStatusUsed, Order: OrderStatusPaid},
	PaymentStatusFailed:     {Payment: PaymentStatusFailed, Link: LinkStatusCanceled, Order: OrderStatusCanceled},
	PaymentStatusCanceled:   {Payment: PaymentStatusCanceled, Link: LinkStatusCanceled, Order: OrderStatusCanceled},
	PaymentStatusRefunded:   {Payment: PaymentStatusRefunded, Order: OrderStatusCanceled},
	PaymentStatusChargeback: {Payment: PaymentStatusChargeback, Order: OrderStatusCanceled},
}

// ParsePaymentStatus validates a gateway status string. Unknown values are rejected.
func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	status := PaymentStatus(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := transitions[status]; !ok {
		return "", domainerrors.ErrUnknownPaymentStatus
	}
	return status, nil
}

// ResolveTransition returns the derived link and order statuses for status.
func ResolveTransition(status PaymentStatus) (Transition, bool) {
	t, ok := transitions[status]
	return t, ok
}

// IsTerminal reports whether no further transition is expected.
func (s PaymentStatus) IsTerminal() bool {
	return s != PaymentStatusPending && s != PaymentStatusProcessing && s.Valid()
}

// IsApproved reports whether money was captured.
func (s PaymentStatus) IsApproved() bool {
	return s == PaymentStatusPaid || s == PaymentStatusOverpaid || s == PaymentStatusUnderpaid
}

// IsRefused covers every negative terminal status.
func (s PaymentStatus) IsRefused() bool {
	switch s {
	case PaymentStatusFailed, PaymentStatusCanceled, PaymentStatusRefunded, PaymentStatusChargeback:
		return true
	}
	return false
}

// Regresses reports whether moving from s to next would reopen a terminal payment.
func (s PaymentStatus) Regresses(next PaymentStatus) bool {
	return s.IsTerminal() && !next.IsTerminal()
}

func (s PaymentStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo enforces the forward-only link lifecycle. Nothing returns to
// active. A closed link can still become used when money was captured on it.
func (s LinkStatus) CanTransitionTo(next LinkStatus, captured bool) bool {
	if s == next || next == LinkStatusActive {
		return false
	}
	switch s {
	case LinkStatusActive:
		return true
	case LinkStatusCanceled, LinkStatusExpired, LinkStatusInactive:
		return next == LinkStatusUsed && captured
	default:
		return false
	}
}

func (s LinkStatus) Valid() bool {
	switch s {
	case LinkStatusActive, LinkStatusUsed, LinkStatusExpired, LinkStatusInactive, LinkStatusCanceled:
		return true
	}
	return false
}

// ParseOrderStatus validates an order status string.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case OrderStatusPending, OrderStatusPaid, OrderStatusFailed, OrderStatusCanceled:
		return status, nil
	}
	return "", domainerrors.NewValidationError("status", "unknown order status")
}
