package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Brunohvg/bibpay/internal/domain/entity"
)

// PaymentLink is one hosted checkout link generated for an order.
// Amount is the order total at creation time and never follows later edits.
type PaymentLink struct {
	ID         int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    int64             `gorm:"not null;index" json:"order_id"`
	ExternalID string            `gorm:"size:100;not null;uniqueIndex" json:"external_id"`
	Provider   string            `gorm:"size:20;not null" json:"provider"`
	URL        string            `gorm:"size:500;not null" json:"url"`
	Amount     decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status     entity.LinkStatus `gorm:"size:20;not null;default:'active';index" json:"status"`
	IsActive   bool              `gorm:"not null" json:"is_active"`
	CreatedAt  time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`

	// Relations
	Order   *Order   `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	Payment *Payment `gorm:"foreignKey:PaymentLinkID" json:"payment,omitempty"`
}

// TableName specifies the table name for GORM
func (PaymentLink) TableName() string {
	return "payment_links"
}
