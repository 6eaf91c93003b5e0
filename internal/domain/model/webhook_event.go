package model

import (
	"database/sql/driver"
	"time"

	"gorm.io/datatypes"
)

// WebhookStatus represents the processing status of a webhook
type WebhookStatus string

const (
	WebhookStatusPending   WebhookStatus = "pending"
	WebhookStatusCompleted WebhookStatus = "completed"
	WebhookStatusIgnored   WebhookStatus = "ignored"
	WebhookStatusFailed    WebhookStatus = "failed"
)

// Scan implements sql.Scanner interface
func (w *WebhookStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*w = WebhookStatus(v)
	case []byte:
		*w = WebhookStatus(v)
	default:
		*w = WebhookStatusPending
	}
	return nil
}

// Value implements driver.Valuer interface
func (w WebhookStatus) Value() (driver.Value, error) {
	return string(w), nil
}

// WebhookEvent is the delivery log of inbound gateway events. The normalized
// fields are enough to replay an event without the original signature.
type WebhookEvent struct {
	ID               int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	DeliveryID       string         `gorm:"size:255;not null;uniqueIndex" json:"delivery_id"`
	Provider         string         `gorm:"size:20;not null" json:"provider"`
	EventType        string         `gorm:"size:100;not null;index" json:"event_type"`
	ExternalLinkID   *string        `gorm:"size:100;index" json:"external_link_id,omitempty"`
	EventStatus      *string        `gorm:"size:50" json:"event_status,omitempty"`
	AmountMinor      int64          `gorm:"not null;default:0" json:"amount_minor"`
	PaidAt           *time.Time     `json:"paid_at,omitempty"`
	OccurredAt       time.Time      `gorm:"not null" json:"occurred_at"`
	ProcessingStatus WebhookStatus  `gorm:"size:20;not null;default:'pending';index" json:"processing_status"`
	Payload          datatypes.JSON `json:"payload"`
	RetryCount       int            `gorm:"not null;default:0" json:"retry_count"`
	LastError        *string        `json:"last_error,omitempty"`
	ProcessedAt      *time.Time     `json:"processed_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (WebhookEvent) TableName() string {
	return "webhook_events"
}
