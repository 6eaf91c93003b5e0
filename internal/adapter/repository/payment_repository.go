package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Brunohvg/bibpay/internal/domain/model"
	domainRepo "github.com/Brunohvg/bibpay/internal/domain/repository"
)

type paymentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository instance
func NewPaymentRepository(db *gorm.DB, logger *zap.Logger) domainRepo.PaymentRepository {
	return &paymentRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID returns nil, nil when the payment does not exist
func (r *paymentRepository) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).First(&payment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get payment", zap.Int64("payment_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

// GetByLinkID returns nil, nil when no event has arrived for the link yet
func (r *paymentRepository) GetByLinkID(ctx context.Context, linkID int64) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).Where("payment_link_id = ?", linkID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get payment by link", zap.Int64("link_id", linkID), zap.Error(err))
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (r *paymentRepository) ListByOrder(ctx context.Context, orderID int64) ([]*model.Payment, error) {
	var payments []*model.Payment
	err := r.db.WithContext(ctx).
		Joins("JOIN payment_links ON payment_links.id = payments.payment_link_id").
		Where("payment_links.order_id = ?", orderID).
		Order("payments.created_at DESC").
		Find(&payments).Error
	if err != nil {
		r.logger.Error("Failed to list payments", zap.Int64("order_id", orderID), zap.Error(err))
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}
