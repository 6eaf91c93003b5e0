package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Brunohvg/bibpay/internal/domain/entity"
)

// DashboardRepository runs the aggregate queries behind the dashboard.
type DashboardRepository interface {
	// PaymentTotals groups payments created in [start, end) by status
	PaymentTotals(ctx context.Context, start, end time.Time) ([]entity.StatusTotal, error)
	// PaidTotal sums approved payments dated in [start, end)
	PaidTotal(ctx context.Context, start, end time.Time) (decimal.Decimal, error)
	LinkCounts(ctx context.Context, start, end time.Time) (entity.LinkCounts, error)
	// OpenValue sums active links created since start that have no approved payment
	OpenValue(ctx context.Context, start time.Time) (decimal.Decimal, error)
	ActiveSellers(ctx context.Context) (int64, error)
	SellerStats(ctx context.Context) ([]entity.SellerStats, error)
}
