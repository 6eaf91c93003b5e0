package repository

import (
	"context"

	"github.com/Brunohvg/bibpay/internal/domain/model"
)

// SellerRepository defines the interface for seller persistence
type SellerRepository interface {
	Create(ctx context.Context, seller *model.Seller) error
	Update(ctx context.Context, seller *model.Seller) error
	GetByID(ctx context.Context, id int64) (*model.Seller, error)
	List(ctx context.Context, activeOnly bool) ([]*model.Seller, error)
	Delete(ctx context.Context, id int64) error

	// CountOrders counts the seller's orders, soft-deleted ones included
	CountOrders(ctx context.Context, sellerID int64) (int64, error)
}
