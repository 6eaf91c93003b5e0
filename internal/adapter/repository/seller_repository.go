package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	domainerrors "github.com/Brunohvg/bibpay/internal/domain/errors"
	"github.com/Brunohvg/bibpay/internal/domain/model"
	domainRepo "github.com/Brunohvg/bibpay/internal/domain/repository"
)

type sellerRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSellerRepository creates a new seller repository instance
func NewSellerRepository(db *gorm.DB, logger *zap.Logger) domainRepo.SellerRepository {
	return &sellerRepository{
		db:     db,
		logger: logger,
	}
}

func (r *sellerRepository) Create(ctx context.Context, seller *model.Seller) error {
	if err := r.db.WithContext(ctx).Create(seller).Error; err != nil {
		r.logger.Error("Failed to create seller", zap.String("name", seller.Name), zap.Error(err))
		return fmt.Errorf("failed to create seller: %w", err)
	}
	return nil
}

func (r *sellerRepository) Update(ctx context.Context, seller *model.Seller) error {
	result := r.db.WithContext(ctx).Save(seller)
	if result.Error != nil {
		r.logger.Error("Failed to update seller", zap.Int64("seller_id", seller.ID), zap.Error(result.Error))
		return fmt.Errorf("failed to update seller: %w", result.Error)
	}
	return nil
}

// GetByID returns nil, nil when the seller does not exist
func (r *sellerRepository) GetByID(ctx context.Context, id int64) (*model.Seller, error) {
	var seller model.Seller
	err := r.db.WithContext(ctx).First(&seller, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get seller", zap.Int64("seller_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get seller: %w", err)
	}
	return &seller, nil
}

func (r *sellerRepository) List(ctx context.Context, activeOnly bool) ([]*model.Seller, error) {
	var sellers []*model.Seller

	query := r.db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Find(&sellers).Error; err != nil {
		r.logger.Error("Failed to list sellers", zap.Error(err))
		return nil, fmt.Errorf("failed to list sellers: %w", err)
	}
	return sellers, nil
}

func (r *sellerRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&model.Seller{}, id)
	if result.Error != nil {
		r.logger.Error("Failed to delete seller", zap.Int64("seller_id", id), zap.Error(result.Error))
		return fmt.Errorf("failed to delete seller: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrSellerNotFound
	}
	return nil
}

func (r *sellerRepository) CountOrders(ctx context.Context, sellerID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Unscoped().
		Model(&model.Order{}).
		Where("seller_id = ?", sellerID).
		Count(&count).Error
	if err != nil {
		r.logger.Error("Failed to count seller orders", zap.Int64("seller_id", sellerID), zap.Error(err))
		return 0, fmt.Errorf("failed to count seller orders: %w", err)
	}
	return count, nil
}
