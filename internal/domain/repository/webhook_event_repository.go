package repository

import (
	"context"

	"github.com/Brunohvg/bibpay/internal/domain/model"
)

// WebhookEventRepository records inbound gateway deliveries
type WebhookEventRepository interface {
	// SaveEvent stores the delivery unless its DeliveryID is known.
	// It reports whether a new row was written.
	SaveEvent(ctx context.Context, event *model.WebhookEvent) (bool, error)
	GetByDeliveryID(ctx context.Context, deliveryID string) (*model.WebhookEvent, error)
	MarkProcessed(ctx context.Context, deliveryID string) error
	MarkIgnored(ctx context.Context, deliveryID string) error
	MarkFailed(ctx context.Context, deliveryID string, errorMsg string) error
	// GetFailedEvents returns failed deliveries with fewer than maxRetries attempts
	GetFailedEvents(ctx context.Context, maxRetries int, limit int) ([]*model.WebhookEvent, error)
}
