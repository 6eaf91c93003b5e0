package repository

import (
	"context"
	"time"

	"github.com/Brunohvg/bibpay/internal/domain/model"
)

// PaymentLinkRepository defines the interface for payment link persistence
type PaymentLinkRepository interface {
	// Create stores the link as active. A second active link for the same
	// order fails with ErrActiveLinkExists.
	Create(ctx context.Context, link *model.PaymentLink) error

	// Cancel is idempotent: canceling a canceled link succeeds without changes
	Cancel(ctx context.Context, id int64) (*model.PaymentLink, error)

	GetByID(ctx context.Context, id int64) (*model.PaymentLink, error)
	GetByExternalID(ctx context.Context, externalID string) (*model.PaymentLink, error)
	GetLatestForOrder(ctx context.Context, orderID int64) (*model.PaymentLink, error)
	HasActiveForOrder(ctx context.Context, orderID int64) (bool, error)
	ListByOrder(ctx context.Context, orderID int64) ([]*model.PaymentLink, error)
	ListActive(ctx context.Context) ([]*model.PaymentLink, error)

	// ExpireStale marks active links created before the cutoff as expired
	ExpireStale(ctx context.Context, before time.Time) (int64, error)
}
