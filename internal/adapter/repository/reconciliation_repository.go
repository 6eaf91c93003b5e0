package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Brunohvg/bibpay/internal/domain/entity"
	domainerrors "github.com/Brunohvg/bibpay/internal/domain/errors"
	"github.com/Brunohvg/bibpay/internal/domain/model"
	domainRepo "github.com/Brunohvg/bibpay/internal/domain/repository"
)

// reconciliationRepository applies gateway events to payment, link and order in one transaction
type reconciliationRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewReconciliationRepository creates a new reconciliation repository instance
func NewReconciliationRepository(db *gorm.DB, logger *zap.Logger) domainRepo.ReconciliationRepository {
	return &reconciliationRepository{
		db:     db,
		logger: logger,
	}
}

// Apply runs the reconciliation transaction. A unique violation on the payment
// means a concurrent delivery created it first; the single retry then finds
// the existing row and behaves like a redelivery.
func (r *reconciliationRepository) Apply(ctx context.Context, linkID int64, update domainRepo.PaymentUpdate) (*domainRepo.ReconcileResult, error) {
	result, err := r.apply(ctx, linkID, update)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		r.logger.Info("Payment created concurrently, retrying reconciliation",
			zap.Int64("link_id", linkID),
			zap.String("status", string(update.Status)))
		result, err = r.apply(ctx, linkID, update)
	}
	if err != nil {
		if !errors.Is(err, domainerrors.ErrPaymentLinkNotFound) {
			r.logger.Error("Reconciliation failed",
				zap.Int64("link_id", linkID),
				zap.String("status", string(update.Status)),
				zap.Error(err))
		}
		return nil, err
	}

	r.logger.Info("Reconciliation committed",
		zap.Int64("link_id", linkID),
		zap.Int64("payment_id", result.Payment.ID),
		zap.String("outcome", string(result.Outcome)),
		zap.String("previous_status", string(result.PreviousStatus)),
		zap.String("payment_status", string(result.Payment.Status)),
		zap.String("link_status", string(result.Link.Status)),
		zap.String("order_status", string(result.Order.Status)))

	return result, nil
}

func (r *reconciliationRepository) apply(ctx context.Context, linkID int64, update domainRepo.PaymentUpdate) (*domainRepo.ReconcileResult, error) {
	result := &domainRepo.ReconcileResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the link row; every delivery for the same link serializes here
		var link model.PaymentLink
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&link, linkID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrPaymentLinkNotFound
			}
			return fmt.Errorf("failed to lock payment link: %w", err)
		}

		// Soft-deleted orders still receive money
		var order model.Order
		err = tx.Unscoped().Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, link.OrderID).Error
		if err != nil {
			return fmt.Errorf("failed to lock order %d: %w", link.OrderID, err)
		}

		payment, outcome, previous, err := r.upsertPayment(tx, &link, update)
		if err != nil {
			return err
		}

		result.Payment = payment
		result.Link = &link
		result.Order = &order
		result.Outcome = outcome
		result.PreviousStatus = previous

		if outcome == domainRepo.OutcomeStale || outcome == domainRepo.OutcomeUnchanged {
			return nil
		}

		transition, ok := entity.ResolveTransition(payment.Status)
		if !ok {
			return domainerrors.ErrUnknownPaymentStatus
		}

		if transition.Link != "" && link.Status.CanTransitionTo(transition.Link, payment.Status.IsApproved()) {
			if err := tx.Model(&link).Updates(map[string]interface{}{
				"status":    transition.Link,
				"is_active": false,
			}).Error; err != nil {
				return fmt.Errorf("failed to update payment link status: %w", err)
			}
			link.Status = transition.Link
			link.IsActive = false
		}

		if transition.Order != "" && order.Status != transition.Order {
			if err := tx.Unscoped().Model(&order).Update("status", transition.Order).Error; err != nil {
				return fmt.Errorf("failed to update order status: %w", err)
			}
			order.Status = transition.Order
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// upsertPayment gets or creates the link's payment and applies update to it in place.
func (r *reconciliationRepository) upsertPayment(tx *gorm.DB, link *model.PaymentLink, update domainRepo.PaymentUpdate) (*model.Payment, domainRepo.Outcome, entity.PaymentStatus, error) {
	occurredAt := update.OccurredAt

	var payment model.Payment
	err := tx.Where("payment_link_id = ?", link.ID).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		payment = model.Payment{
			PaymentLinkID: link.ID,
			Status:        update.Status,
			Amount:        update.Amount,
			PaymentDate:   paymentDate(update),
			LastEventAt:   &occurredAt,
		}
		if err := tx.Omit("PaymentLink").Create(&payment).Error; err != nil {
			return nil, "", "", fmt.Errorf("failed to create payment: %w", err)
		}
		return &payment, domainRepo.OutcomeCreated, "", nil
	}
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to get payment: %w", err)
	}

	previous := payment.Status

	if isStale(&payment, update) {
		r.logger.Warn("Ignoring stale payment event",
			zap.Int64("payment_id", payment.ID),
			zap.String("current_status", string(payment.Status)),
			zap.String("event_status", string(update.Status)),
			zap.Time("event_occurred_at", update.OccurredAt))
		return &payment, domainRepo.OutcomeStale, previous, nil
	}

	amount := payment.Amount
	if !update.Amount.IsZero() {
		amount = update.Amount
	}
	paidAt := payment.PaymentDate
	if d := paymentDate(update); d != nil {
		paidAt = d
	}

	if payment.Status == update.Status && payment.Amount.Equal(amount) && sameTime(payment.PaymentDate, paidAt) {
		return &payment, domainRepo.OutcomeUnchanged, previous, nil
	}

	err = tx.Model(&payment).Updates(map[string]interface{}{
		"status":        update.Status,
		"amount":        amount,
		"payment_date":  paidAt,
		"last_event_at": &occurredAt,
	}).Error
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to update payment: %w", err)
	}

	payment.Status = update.Status
	payment.Amount = amount
	payment.PaymentDate = paidAt
	payment.LastEventAt = &occurredAt

	return &payment, domainRepo.OutcomeChanged, previous, nil
}

// isStale rejects events older than the last applied one and events that
// would reopen a terminal payment.
func isStale(payment *model.Payment, update domainRepo.PaymentUpdate) bool {
	if payment.LastEventAt != nil && update.OccurredAt.Before(*payment.LastEventAt) {
		return true
	}
	return payment.Status.Regresses(update.Status)
}

func paymentDate(update domainRepo.PaymentUpdate) *time.Time {
	if !update.Status.IsApproved() {
		return nil
	}
	if update.PaidAt != nil {
		return update.PaidAt
	}
	t := update.OccurredAt
	return &t
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
