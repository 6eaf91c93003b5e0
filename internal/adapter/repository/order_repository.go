package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Brunohvg/bibpay/internal/domain/entity"
	domainerrors "github.com/Brunohvg/bibpay/internal/domain/errors"
	"github.com/Brunohvg/bibpay/internal/domain/model"
	domainRepo "github.com/Brunohvg/bibpay/internal/domain/repository"
)

type orderRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository instance
func NewOrderRepository(db *gorm.DB, logger *zap.Logger) domainRepo.OrderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	if err := r.db.WithContext(ctx).Omit("Seller", "PaymentLinks").Create(order).Error; err != nil {
		r.logger.Error("Failed to create order",
			zap.Int64("seller_id", order.SellerID),
			zap.Error(err))
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *orderRepository) Update(ctx context.Context, order *model.Order) error {
	if err := r.db.WithContext(ctx).Omit("Seller", "PaymentLinks").Save(order).Error; err != nil {
		r.logger.Error("Failed to update order",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
		return fmt.Errorf("failed to update order: %w", err)
	}
	return nil
}

// GetByID returns nil, nil when the order does not exist
func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Seller").
		Preload("PaymentLinks", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC, id DESC")
		}).
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get order", zap.Int64("order_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filter domainRepo.OrderFilter) ([]*model.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Order{})

	if filter.SellerID > 0 {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DateStart != nil {
		query = query.Where("created_at >= ?", *filter.DateStart)
	}
	if filter.DateEnd != nil {
		query = query.Where("created_at < ?", *filter.DateEnd)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.logger.Error("Failed to count orders", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	filter.PaginationParams.Validate()

	var orders []*model.Order
	err := query.
		Preload("Seller").
		Order("created_at DESC, id DESC").
		Limit(filter.Limit).
		Offset(filter.CalculateOffset()).
		Find(&orders).Error
	if err != nil {
		r.logger.Error("Failed to list orders", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, total, nil
}

// UpdateStatus is the admin override; reconciliation writes statuses in its own transaction
func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status entity.OrderStatus) error {
	result := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		r.logger.Error("Failed to update order status",
			zap.Int64("order_id", id),
			zap.String("status", string(status)),
			zap.Error(result.Error))
		return fmt.Errorf("failed to update order status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrOrderNotFound
	}
	return nil
}

// Delete soft-deletes the order
func (r *orderRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&model.Order{}, id)
	if result.Error != nil {
		r.logger.Error("Failed to delete order", zap.Int64("order_id", id), zap.Error(result.Error))
		return fmt.Errorf("failed to delete order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrOrderNotFound
	}
	return nil
}
