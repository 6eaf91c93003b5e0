package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Brunohvg/bibpay/internal/domain/entity"
	"github.com/Brunohvg/bibpay/internal/domain/model"
)

// PaymentUpdate is one normalized gateway event for a link.
type PaymentUpdate struct {
	Status     entity.PaymentStatus
	Amount     decimal.Decimal
	PaidAt     *time.Time
	OccurredAt time.Time
}

// Outcome describes what Apply did.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeChanged   Outcome = "changed"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeStale     Outcome = "stale"
)

// ReconcileResult is the state after Apply committed.
type ReconcileResult struct {
	Payment        *model.Payment
	Link           *model.PaymentLink
	Order          *model.Order
	Outcome        Outcome
	PreviousStatus entity.PaymentStatus
}

// StatusChanged reports whether the payment status moved.
func (r *ReconcileResult) StatusChanged() bool {
	return r.Outcome == OutcomeCreated || (r.Outcome == OutcomeChanged && r.PreviousStatus != r.Payment.Status)
}

// ReconciliationRepository applies a payment update to payment, link and order atomically.
type ReconciliationRepository interface {
	Apply(ctx context.Context, linkID int64, update PaymentUpdate) (*ReconcileResult, error)
}
