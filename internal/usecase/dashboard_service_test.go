package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Brunohvg/bibpay/internal/domain/entity"
	domainerrors "github.com/Brunohvg/bibpay/internal/domain/errors"
	"github.com/Brunohvg/bibpay/internal/usecase"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDashboardService_Summary(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 12, 30, 12, 0, 0, 0, time.UTC)
	start := now.Add(-30 * 24 * time.Hour)
	week := 7 * 24 * time.Hour

	repo := new(MockDashboardRepository)
	repo.On("PaymentTotals", ctx, start, now).Return([]entity.StatusTotal{
		{Status: entity.PaymentStatusPaid, Count: 3, Total: dec("300")},
		{Status: entity.PaymentStatusUnderpaid, Count: 1, Total: dec("90")},
		{Status: entity.PaymentStatusCanceled, Count: 2, Total: dec("50")},
		{Status: entity.PaymentStatusRefunded, Count: 1, Total: dec("25")},
	}, nil)
	repo.On("PaidTotal", ctx, start, now).Return(dec("390"), nil)
	repo.On("PaidTotal", ctx, now.Add(-week), now).Return(dec("150"), nil)
	repo.On("PaidTotal", ctx, now.Add(-2*week), now.Add(-week)).Return(dec("100"), nil)
	repo.On("LinkCounts", ctx, start, now).Return(entity.LinkCounts{Created: 8, Active: 2, Used: 4, Canceled: 2}, nil)
	repo.On("OpenValue", ctx, start).Return(dec("70"), nil)
	repo.On("ActiveSellers", ctx).Return(int64(3), nil)

	service := usecase.NewDashboardService(repo, zap.NewNop())
	summary, err := service.Summary(ctx, now)
	require.NoError(t, err)

	assert.True(t, dec("390").Equal(summary.TotalReceived))
	assert.True(t, dec("75").Equal(summary.TotalCanceled))
	assert.True(t, dec("70").Equal(summary.OpenValue))
	assert.Equal(t, int64(3), summary.PaymentCounts[entity.PaymentStatusPaid])
	assert.Equal(t, int64(0), summary.PaymentCounts[entity.PaymentStatusPending])
	assert.True(t, dec("50").Equal(summary.ConversionRate), summary.ConversionRate.String())
	assert.True(t, dec("97.5").Equal(summary.AverageTicket), summary.AverageTicket.String())
	assert.True(t, dec("50").Equal(summary.WeeklyGrowth), summary.WeeklyGrowth.String())
	assert.Equal(t, int64(3), summary.ActiveSellers)
	repo.AssertExpectations(t)
}

func TestDashboardService_EmptyPeriod(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 12, 30, 12, 0, 0, 0, time.UTC)

	repo := new(MockDashboardRepository)
	repo.On("PaymentTotals", ctx, mock.Anything, mock.Anything).Return([]entity.StatusTotal{}, nil)
	repo.On("PaidTotal", ctx, mock.Anything, mock.Anything).Return(decimal.Zero, nil)
	repo.On("LinkCounts", ctx, mock.Anything, mock.Anything).Return(entity.LinkCounts{}, nil)
	repo.On("OpenValue", ctx, mock.Anything).Return(decimal.Zero, nil)
	repo.On("ActiveSellers", ctx).Return(int64(0), nil)

	service := usecase.NewDashboardService(repo, zap.NewNop())
	summary, err := service.Summary(ctx, now)
	require.NoError(t, err)
	assert.True(t, summary.ConversionRate.IsZero())
	assert.True(t, summary.AverageTicket.IsZero())
	assert.True(t, summary.WeeklyGrowth.IsZero())
	assert.Len(t, summary.PaymentCounts, len(entity.AllPaymentStatuses()))
}

func TestDashboardService_PaymentStatistics(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	repo := new(MockDashboardRepository)
	repo.On("PaymentTotals", ctx, start, end).Return([]entity.StatusTotal{
		{Status: entity.PaymentStatusOverpaid, Count: 1, Total: dec("120")},
		{Status: entity.PaymentStatusChargeback, Count: 1, Total: dec("40")},
	}, nil)

	service := usecase.NewDashboardService(repo, zap.NewNop())
	stats, err := service.PaymentStatistics(ctx, start, end)
	require.NoError(t, err)
	assert.Len(t, stats.ByStatus, 9)
	assert.True(t, dec("120").Equal(stats.Received))
	assert.True(t, dec("40").Equal(stats.Canceled))
	assert.True(t, stats.ByStatus[entity.PaymentStatusPending].Total.IsZero())

	_, err = service.PaymentStatistics(ctx, end, start)
	var verr *domainerrors.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestDashboardService_SellerStats(t *testing.T) {
	repo := new(MockDashboardRepository)
	repo.On("SellerStats", mock.Anything).Return(nil, nil)

	stats, err := usecase.NewDashboardService(repo, zap.NewNop()).SellerStats(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, stats)
	assert.Empty(t, stats)
}
