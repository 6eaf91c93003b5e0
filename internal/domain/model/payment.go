package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Brunohvg/bibpay/internal/domain/entity"
)

// Payment is the financial outcome of one payment link. Amount is what the
// gateway reported as captured, which may differ from the link amount.
type Payment struct {
	ID            int64                `gorm:"primaryKey;autoIncrement" json:"id"`
	PaymentLinkID int64                `gorm:"not null;uniqueIndex" json:"payment_link_id"`
	Status        entity.PaymentStatus `gorm:"size:20;not null;index" json:"status"`
	PaymentDate   *time.Time           `json:"payment_date,omitempty"`
	Amount        decimal.Decimal      `gorm:"type:decimal(10,2);not null;default:0" json:"amount"`
	LastEventAt   *time.Time           `json:"last_event_at,omitempty"`
	CreatedAt     time.Time            `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`

	// Relations
	PaymentLink *PaymentLink `gorm:"foreignKey:PaymentLinkID" json:"payment_link,omitempty"`
}

// TableName specifies the table name for GORM
func (Payment) TableName() string {
	return "payments"
}
