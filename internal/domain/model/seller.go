package model

import (
	"time"

	"gorm.io/gorm"
)

// Seller owns orders and receives payment notifications on Phone.
type Seller struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Phone     string         `gorm:"size:20" json:"phone"`
	IsActive  bool           `gorm:"not null;index" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM
func (Seller) TableName() string {
	return "sellers"
}
