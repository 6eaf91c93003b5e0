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

type paymentLinkRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPaymentLinkRepository creates a new payment link repository instance
func NewPaymentLinkRepository(db *gorm.DB, logger *zap.Logger) domainRepo.PaymentLinkRepository {
	return &paymentLinkRepository{
		db:     db,
		logger: logger,
	}
}

func (r *paymentLinkRepository) Create(ctx context.Context, link *model.PaymentLink) error {
	link.Status = entity.LinkStatusActive
	link.IsActive = true

	err := r.db.WithContext(ctx).Omit("Order", "Payment").Create(link).Error
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Either the external id is reused or the partial index caught a second active link.
		if active, checkErr := r.HasActiveForOrder(ctx, link.OrderID); checkErr == nil && active {
			r.logger.Warn("Rejected second active payment link",
				zap.Int64("order_id", link.OrderID),
				zap.String("external_id", link.ExternalID))
			return domainerrors.ErrActiveLinkExists
		}
	}

	r.logger.Error("Failed to create payment link",
		zap.Int64("order_id", link.OrderID),
		zap.String("external_id", link.ExternalID),
		zap.Error(err))
	return fmt.Errorf("failed to create payment link: %w", err)
}

// Cancel locks the link and closes it. Canceled links are returned unchanged.
func (r *paymentLinkRepository) Cancel(ctx context.Context, id int64) (*model.PaymentLink, error) {
	var link model.PaymentLink

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&link, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrPaymentLinkNotFound
			}
			return fmt.Errorf("failed to lock payment link: %w", err)
		}

		if link.Status == entity.LinkStatusCanceled {
			return nil
		}
		if !link.Status.CanTransitionTo(entity.LinkStatusCanceled, false) {
			return domainerrors.ErrLinkClosed
		}

		link.Status = entity.LinkStatusCanceled
		link.IsActive = false
		return tx.Model(&link).Updates(map[string]interface{}{
			"status":    link.Status,
			"is_active": false,
		}).Error
	})
	if err != nil {
		if !errors.Is(err, domainerrors.ErrPaymentLinkNotFound) && !errors.Is(err, domainerrors.ErrLinkClosed) {
			r.logger.Error("Failed to cancel payment link", zap.Int64("link_id", id), zap.Error(err))
		}
		return nil, err
	}

	return &link, nil
}

// GetByID returns nil, nil when the link does not exist
func (r *paymentLinkRepository) GetByID(ctx context.Context, id int64) (*model.PaymentLink, error) {
	var link model.PaymentLink
	err := r.db.WithContext(ctx).Preload("Payment").First(&link, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get payment link", zap.Int64("link_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get payment link: %w", err)
	}
	return &link, nil
}

// GetByExternalID returns nil, nil when no link carries externalID
func (r *paymentLinkRepository) GetByExternalID(ctx context.Context, externalID string) (*model.PaymentLink, error) {
	var link model.PaymentLink
	err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get payment link by external id",
			zap.String("external_id", externalID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get payment link: %w", err)
	}
	return &link, nil
}

// GetLatestForOrder returns nil, nil when the order has no links
func (r *paymentLinkRepository) GetLatestForOrder(ctx context.Context, orderID int64) (*model.PaymentLink, error) {
	var link model.PaymentLink
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC, id DESC").
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get latest payment link", zap.Int64("order_id", orderID), zap.Error(err))
		return nil, fmt.Errorf("failed to get latest payment link: %w", err)
	}
	return &link, nil
}

func (r *paymentLinkRepository) HasActiveForOrder(ctx context.Context, orderID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.PaymentLink{}).
		Where("order_id = ? AND status = ?", orderID, entity.LinkStatusActive).
		Count(&count).Error
	if err != nil {
		r.logger.Error("Failed to check active payment link", zap.Int64("order_id", orderID), zap.Error(err))
		return false, fmt.Errorf("failed to check active payment link: %w", err)
	}
	return count > 0, nil
}

func (r *paymentLinkRepository) ListByOrder(ctx context.Context, orderID int64) ([]*model.PaymentLink, error) {
	var links []*model.PaymentLink
	err := r.db.WithContext(ctx).
		Preload("Payment").
		Where("order_id = ?", orderID).
		Order("created_at DESC, id DESC").
		Find(&links).Error
	if err != nil {
		r.logger.Error("Failed to list payment links", zap.Int64("order_id", orderID), zap.Error(err))
		return nil, fmt.Errorf("failed to list payment links: %w", err)
	}
	return links, nil
}

func (r *paymentLinkRepository) ListActive(ctx context.Context) ([]*model.PaymentLink, error) {
	var links []*model.PaymentLink
	err := r.db.WithContext(ctx).
		Preload("Order").
		Where("status = ?", entity.LinkStatusActive).
		Order("created_at ASC, id ASC").
		Find(&links).Error
	if err != nil {
		r.logger.Error("Failed to list active payment links", zap.Error(err))
		return nil, fmt.Errorf("failed to list active payment links: %w", err)
	}
	return links, nil
}

func (r *paymentLinkRepository) ExpireStale(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.PaymentLink{}).
		Where("status = ? AND created_at < ?", entity.LinkStatusActive, before).
		Updates(map[string]interface{}{
			"status":    entity.LinkStatusExpired,
			"is_active": false,
		})
	if result.Error != nil {
		r.logger.Error("Failed to expire payment links", zap.Time("before", before), zap.Error(result.Error))
		return 0, fmt.Errorf("failed to expire payment links: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		r.logger.Info("Expired stale payment links",
			zap.Int64("count", result.RowsAffected),
			zap.Time("before", before))
	}
	return result.RowsAffected, nil
}
