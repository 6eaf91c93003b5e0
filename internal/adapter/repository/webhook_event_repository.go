package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Brunohvg/bibpay/internal/domain/model"
	domainRepo "github.com/Brunohvg/bibpay/internal/domain/repository"
)

type webhookEventRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewWebhookEventRepository creates a new webhook event repository
func NewWebhookEventRepository(db *gorm.DB, logger *zap.Logger) domainRepo.WebhookEventRepository {
	return &webhookEventRepository{
		db:     db,
		logger: logger,
	}
}

// SaveEvent saves a new webhook event. Redeliveries hit ON CONFLICT and write nothing.
func (r *webhookEventRepository) SaveEvent(ctx context.Context, event *model.WebhookEvent) (bool, error) {
	if event.ProcessingStatus == "" {
		event.ProcessingStatus = model.WebhookStatusPending
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "delivery_id"}},
			DoNothing: true,
		}).
		Create(event)

	if result.Error != nil {
		r.logger.Error("Failed to save webhook event",
			zap.String("delivery_id", event.DeliveryID),
			zap.String("event_type", event.EventType),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to save webhook event: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// GetByDeliveryID returns nil, nil for unknown deliveries
func (r *webhookEventRepository) GetByDeliveryID(ctx context.Context, deliveryID string) (*model.WebhookEvent, error) {
	var event model.WebhookEvent

	err := r.db.WithContext(ctx).
		Where("delivery_id = ?", deliveryID).
		First(&event).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get webhook event",
			zap.String("delivery_id", deliveryID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get webhook event: %w", err)
	}

	return &event, nil
}

func (r *webhookEventRepository) MarkProcessed(ctx context.Context, deliveryID string) error {
	return r.mark(ctx, deliveryID, model.WebhookStatusCompleted)
}

func (r *webhookEventRepository) MarkIgnored(ctx context.Context, deliveryID string) error {
	return r.mark(ctx, deliveryID, model.WebhookStatusIgnored)
}

func (r *webhookEventRepository) mark(ctx context.Context, deliveryID string, status model.WebhookStatus) error {
	now := time.Now()

	result := r.db.WithContext(ctx).
		Model(&model.WebhookEvent{}).
		Where("delivery_id = ?", deliveryID).
		Updates(map[string]interface{}{
			"processing_status": status,
			"processed_at":      &now,
			"last_error":        nil,
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark webhook event",
			zap.String("delivery_id", deliveryID),
			zap.String("processing_status", string(status)),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark webhook event as %s: %w", status, result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("webhook event not found: %s", deliveryID)
	}

	return nil
}

// MarkFailed records the error and bumps the retry counter
func (r *webhookEventRepository) MarkFailed(ctx context.Context, deliveryID string, errorMsg string) error {
	result := r.db.WithContext(ctx).
		Model(&model.WebhookEvent{}).
		Where("delivery_id = ?", deliveryID).
		Updates(map[string]interface{}{
			"processing_status": model.WebhookStatusFailed,
			"retry_count":       gorm.Expr("retry_count + 1"),
			"last_error":        &errorMsg,
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark webhook event as failed",
			zap.String("delivery_id", deliveryID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark webhook event as failed: %w", result.Error)
	}

	return nil
}

func (r *webhookEventRepository) GetFailedEvents(ctx context.Context, maxRetries int, limit int) ([]*model.WebhookEvent, error) {
	var events []*model.WebhookEvent

	query := r.db.WithContext(ctx).
		Where("processing_status = ?", model.WebhookStatusFailed).
		Order("created_at ASC")

	if maxRetries > 0 {
		query = query.Where("retry_count < ?", maxRetries)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&events).Error; err != nil {
		r.logger.Error("Failed to get failed webhook events", zap.Error(err))
		return nil, fmt.Errorf("failed to get failed webhook events: %w", err)
	}

	return events, nil
}
