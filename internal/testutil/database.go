// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Brunohvg/bibpay/internal/domain/entity"
	"github.com/Brunohvg/bibpay/internal/domain/model"
	"github.com/Brunohvg/bibpay/internal/infrastructure/database"
)

// NewTestDB returns a migrated in-memory SQLite database private to t.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := database.Open(sqlite.Open(dsn), zap.NewNop(), false)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db, zap.NewNop()))

	t.Cleanup(func() {
		_ = database.Close(db, zap.NewNop())
	})
	return db
}

// CreateSeller inserts an active seller.
func CreateSeller(t *testing.T, db *gorm.DB, name string) *model.Seller {
	t.Helper()

	seller := &model.Seller{Name: name, Phone: "31999990000", IsActive: true}
	require.NoError(t, db.Create(seller).Error)
	return seller
}

// CreateOrder inserts a pending order with the given amounts.
func CreateOrder(t *testing.T, db *gorm.DB, sellerID int64, value, freight string) *model.Order {
	t.Helper()

	order := &model.Order{
		Name:         "Cliente Teste",
		Status:       entity.OrderStatusPending,
		Installments: 1,
		SellerID:     sellerID,
	}
	order.SetAmounts(decimal.RequireFromString(value), decimal.RequireFromString(freight))
	require.NoError(t, db.Create(order).Error)
	return order
}

// CreateLink inserts an active payment link snapshotting the order total.
func CreateLink(t *testing.T, db *gorm.DB, order *model.Order, externalID string) *model.PaymentLink {
	t.Helper()

	link := &model.PaymentLink{
		OrderID:    order.ID,
		ExternalID: externalID,
		Provider:   "pagarme",
		URL:        "https://pay.example.com/" + externalID,
		Amount:     order.Total,
		Status:     entity.LinkStatusActive,
		IsActive:   true,
	}
	require.NoError(t, db.Create(link).Error)
	return link
}

// CreatePayment inserts a payment for link.
func CreatePayment(t *testing.T, db *gorm.DB, link *model.PaymentLink, status entity.PaymentStatus, amount string, at time.Time) *model.Payment {
	t.Helper()

	payment := &model.Payment{
		PaymentLinkID: link.ID,
		Status:        status,
		Amount:        decimal.RequireFromString(amount),
		LastEventAt:   &at,
	}
	if status.IsApproved() {
		payment.PaymentDate = &at
	}
	require.NoError(t, db.Create(payment).Error)
	return payment
}
