package repository

import (
	"context"
	"time"

	"github.com/Brunohvg/bibpay/internal/domain/entity"
	"github.com/Brunohvg/bibpay/internal/domain/model"
)

// OrderFilter narrows ListOrders. Zero values mean no filter.
type OrderFilter struct {
	SellerID  int64
	Status    entity.OrderStatus
	DateStart *time.Time
	DateEnd   *time.Time
	entity.PaginationParams
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	// Update saves every column; the total is recomputed by the model hook
	Update(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*model.Order, int64, error)
	UpdateStatus(ctx context.Context, id int64, status entity.OrderStatus) error
	Delete(ctx context.Context, id int64) error
}
