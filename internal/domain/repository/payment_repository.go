package repository

import (
	"context"

	"github.com/Brunohvg/bibpay/internal/domain/model"
)

// PaymentRepository is read-only; payments are written by the reconciler only.
type PaymentRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Payment, error)
	GetByLinkID(ctx context.Context, linkID int64) (*model.Payment, error)
	ListByOrder(ctx context.Context, orderID int64) ([]*model.Payment, error)
}
