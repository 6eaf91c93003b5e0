package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Brunohvg/bibpay/internal/domain/model"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	err := db.AutoMigrate(
		&model.Seller{},
		&model.Order{},
		&model.PaymentLink{},
		&model.Payment{},
		&model.WebhookEvent{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createCustomIndexes creates custom indexes that GORM doesn't handle automatically.
// Partial indexes are supported by both postgres and sqlite.
func createCustomIndexes(db *gorm.DB) error {
	// At most one active payment link per order
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS one_active_link_per_order ON payment_links (order_id) WHERE status = 'active'`).Error; err != nil {
		return err
	}

	// Failed webhook deliveries are scanned by the replay command
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_webhook_events_failed ON webhook_events (created_at) WHERE processing_status = 'failed'`).Error; err != nil {
		return err
	}

	return nil
}
