package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Brunohvg/bibpay/internal/domain/entity"
)

// Order is a commercial order. Total is always Value + ValueFreight.
type Order struct {
	ID           int64              `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string             `gorm:"size:255;not null" json:"name"`
	Value        decimal.Decimal    `gorm:"type:decimal(10,2);not null" json:"value"`
	ValueFreight decimal.Decimal    `gorm:"type:decimal(10,2);not null;default:0" json:"value_freight"`
	Total        decimal.Decimal    `gorm:"type:decimal(10,2);not null" json:"total"`
	Status       entity.OrderStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Installments int                `gorm:"not null;default:1" json:"installments"`
	SellerID     int64              `gorm:"not null;index" json:"seller_id"`
	CreatedAt    time.Time          `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	DeletedAt    gorm.DeletedAt     `gorm:"index" json:"-"`

	// Relations
	Seller       *Seller       `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
	PaymentLinks []PaymentLink `gorm:"foreignKey:OrderID" json:"payment_links,omitempty"`
}

// TableName specifies the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// SetAmounts sets value and freight and recomputes the total.
func (o *Order) SetAmounts(value, freight decimal.Decimal) {
	o.Value = value
	o.ValueFreight = freight
	o.Total = value.Add(freight)
}

// BeforeSave keeps Total consistent no matter how the amounts were assigned.
func (o *Order) BeforeSave(tx *gorm.DB) error {
	o.Total = o.Value.Add(o.ValueFreight)
	return nil
}
