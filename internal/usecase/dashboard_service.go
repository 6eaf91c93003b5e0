package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Brunohvg/bibpay/internal/domain/entity"
	domainerrors "github.com/Brunohvg/bibpay/internal/domain/errors"
	domainRepo "github.com/Brunohvg/bibpay/internal/domain/repository"
)

const (
	summaryWindow = 30 * 24 * time.Hour
	week          = 7 * 24 * time.Hour
)

var hundred = decimal.NewFromInt(100)

// DashboardService computes the financial metrics shown on the dashboard
type DashboardService struct {
	dashboardRepo domainRepo.DashboardRepository
	logger        *zap.Logger
}

// NewDashboardService creates a new dashboard service instance
func NewDashboardService(dashboardRepo domainRepo.DashboardRepository, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		dashboardRepo: dashboardRepo,
		logger:        logger,
	}
}

// Summary covers the 30 days ending at now
func (s *DashboardService) Summary(ctx context.Context, now time.Time) (*entity.DashboardSummary, error) {
	start := now.Add(-summaryWindow)

	stats, err := s.PaymentStatistics(ctx, start, now)
	if err != nil {
		return nil, err
	}
	received, err := s.dashboardRepo.PaidTotal(ctx, start, now)
	if err != nil {
		return nil, err
	}
	links, err := s.dashboardRepo.LinkCounts(ctx, start, now)
	if err != nil {
		return nil, err
	}
	open, err := s.dashboardRepo.OpenValue(ctx, start)
	if err != nil {
		return nil, err
	}
	sellers, err := s.dashboardRepo.ActiveSellers(ctx)
	if err != nil {
		return nil, err
	}
	thisWeek, err := s.dashboardRepo.PaidTotal(ctx, now.Add(-week), now)
	if err != nil {
		return nil, err
	}
	lastWeek, err := s.dashboardRepo.PaidTotal(ctx, now.Add(-2*week), now.Add(-week))
	if err != nil {
		return nil, err
	}

	counts := make(map[entity.PaymentStatus]int64, len(stats.ByStatus))
	var paid int64
	for status, total := range stats.ByStatus {
		counts[status] = total.Count
		if status.IsApproved() {
			paid += total.Count
		}
	}

	summary := &entity.DashboardSummary{
		PeriodStart:    start,
		PeriodEnd:      now,
		TotalReceived:  received,
		TotalCanceled:  stats.Canceled,
		OpenValue:      open,
		PaymentCounts:  counts,
		Links:          links,
		ConversionRate: decimal.Zero,
		AverageTicket:  decimal.Zero,
		ActiveSellers:  sellers,
		ThisWeek:       thisWeek,
		LastWeek:       lastWeek,
		WeeklyGrowth:   growth(thisWeek, lastWeek),
	}
	if links.Created > 0 {
		summary.ConversionRate = decimal.NewFromInt(paid).Mul(hundred).Div(decimal.NewFromInt(links.Created)).Round(0)
	}
	if paid > 0 {
		summary.AverageTicket = received.Div(decimal.NewFromInt(paid)).Round(2)
	}

	return summary, nil
}

// PaymentStatistics reports every status, zero-filled, for payments created in [start, end)
func (s *DashboardService) PaymentStatistics(ctx context.Context, start, end time.Time) (*entity.PaymentStatistics, error) {
	if !end.After(start) {
		return nil, domainerrors.NewValidationError("end", "end must be after start")
	}

	rows, err := s.dashboardRepo.PaymentTotals(ctx, start, end)
	if err != nil {
		return nil, err
	}

	stats := &entity.PaymentStatistics{
		Start:    start,
		End:      end,
		ByStatus: make(map[entity.PaymentStatus]entity.StatusTotal),
		Received: decimal.Zero,
		Canceled: decimal.Zero,
	}
	for _, status := range entity.AllPaymentStatuses() {
		stats.ByStatus[status] = entity.StatusTotal{Status: status, Total: decimal.Zero}
	}
	for _, row := range rows {
		if !row.Status.Valid() {
			s.logger.Warn("Skipping payments with unknown status", zap.String("status", string(row.Status)))
			continue
		}
		stats.ByStatus[row.Status] = row
		switch {
		case row.Status.IsApproved():
			stats.Received = stats.Received.Add(row.Total)
		case row.Status.IsRefused():
			stats.Canceled = stats.Canceled.Add(row.Total)
		}
	}

	return stats, nil
}

func (s *DashboardService) SellerStats(ctx context.Context) ([]entity.SellerStats, error) {
	stats, err := s.dashboardRepo.SellerStats(ctx)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []entity.SellerStats{}
	}
	return stats, nil
}

// growth is the week-over-week change in percent. Without a previous week it
// is 100 when anything was received and 0 otherwise.
func growth(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsPositive() {
		return current.Sub(previous).Div(previous).Mul(hundred).Round(0)
	}
	if current.IsPositive() {
		return hundred
	}
	return decimal.Zero
}
