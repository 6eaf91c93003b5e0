package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Brunohvg/bibpay/internal/domain/entity"
	"github.com/Brunohvg/bibpay/internal/domain/model"
	domainRepo "github.com/Brunohvg/bibpay/internal/domain/repository"
)

var approvedStatuses = []entity.PaymentStatus{
	entity.PaymentStatusPaid,
	entity.PaymentStatusOverpaid,
	entity.PaymentStatusUnderpaid,
}

type sumRow struct {
	Total decimal.Decimal
}

type dashboardRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewDashboardRepository creates a new dashboard repository instance
func NewDashboardRepository(db *gorm.DB, logger *zap.Logger) domainRepo.DashboardRepository {
	return &dashboardRepository{
		db:     db,
		logger: logger,
	}
}

func (r *dashboardRepository) PaymentTotals(ctx context.Context, start, end time.Time) ([]entity.StatusTotal, error) {
	var rows []entity.StatusTotal

	err := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Where("created_at >= ? AND created_at < ?", start, end).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		r.logger.Error("Failed to aggregate payments", zap.Error(err))
		return nil, fmt.Errorf("failed to aggregate payments: %w", err)
	}

	return rows, nil
}

func (r *dashboardRepository) PaidTotal(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	var row sumRow

	err := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("status IN ? AND payment_date >= ? AND payment_date < ?", approvedStatuses, start, end).
		Scan(&row).Error
	if err != nil {
		r.logger.Error("Failed to sum paid payments", zap.Error(err))
		return decimal.Zero, fmt.Errorf("failed to sum paid payments: %w", err)
	}

	return row.Total, nil
}

func (r *dashboardRepository) LinkCounts(ctx context.Context, start, end time.Time) (entity.LinkCounts, error) {
	var rows []struct {
		Status entity.LinkStatus
		Count  int64
	}

	err := r.db.WithContext(ctx).
		Model(&model.PaymentLink{}).
		Select("status, COUNT(*) AS count").
		Where("created_at >= ? AND created_at < ?", start, end).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		r.logger.Error("Failed to count payment links", zap.Error(err))
		return entity.LinkCounts{}, fmt.Errorf("failed to count payment links: %w", err)
	}

	var counts entity.LinkCounts
	for _, row := range rows {
		counts.Created += row.Count
		switch row.Status {
		case entity.LinkStatusActive:
			counts.Active = row.Count
		case entity.LinkStatusUsed:
			counts.Used = row.Count
		case entity.LinkStatusExpired:
			counts.Expired = row.Count
		case entity.LinkStatusInactive:
			counts.Inactive = row.Count
		case entity.LinkStatusCanceled:
			counts.Canceled = row.Count
		}
	}
	return counts, nil
}

func (r *dashboardRepository) OpenValue(ctx context.Context, start time.Time) (decimal.Decimal, error) {
	var row sumRow

	err := r.db.WithContext(ctx).
		Table("payment_links").
		Select("COALESCE(SUM(payment_links.amount), 0) AS total").
		Joins("LEFT JOIN payments ON payments.payment_link_id = payment_links.id AND payments.status IN ?", approvedStatuses).
		Where("payment_links.status = ? AND payment_links.created_at >= ? AND payments.id IS NULL", entity.LinkStatusActive, start).
		Scan(&row).Error
	if err != nil {
		r.logger.Error("Failed to sum open payment links", zap.Error(err))
		return decimal.Zero, fmt.Errorf("failed to sum open payment links: %w", err)
	}

	return row.Total, nil
}

func (r *dashboardRepository) ActiveSellers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Seller{}).
		Where("is_active = ?", true).
		Count(&count).Error
	if err != nil {
		r.logger.Error("Failed to count active sellers", zap.Error(err))
		return 0, fmt.Errorf("failed to count active sellers: %w", err)
	}
	return count, nil
}

// SellerStats counts live orders per seller and status. Sellers without orders get zeros.
func (r *dashboardRepository) SellerStats(ctx context.Context) ([]entity.SellerStats, error) {
	var stats []entity.SellerStats

	err := r.db.WithContext(ctx).
		Table("sellers").
		Select(`sellers.id AS seller_id, sellers.name AS name,
			SUM(CASE WHEN orders.status = ? THEN 1 ELSE 0 END) AS paid,
			SUM(CASE WHEN orders.status = ? THEN 1 ELSE 0 END) AS pending,
			SUM(CASE WHEN orders.status = ? THEN 1 ELSE 0 END) AS canceled,
			SUM(CASE WHEN orders.status = ? THEN 1 ELSE 0 END) AS failed,
			COALESCE(SUM(CASE WHEN orders.status = ? THEN orders.total ELSE 0 END), 0) AS paid_total`,
			entity.OrderStatusPaid,
			entity.OrderStatusPending,
			entity.OrderStatusCanceled,
			entity.OrderStatusFailed,
			entity.OrderStatusPaid).
		Joins("LEFT JOIN orders ON orders.seller_id = sellers.id AND orders.deleted_at IS NULL").
		Where("sellers.deleted_at IS NULL").
		Group("sellers.id, sellers.name").
		Order("sellers.name ASC").
		Scan(&stats).Error
	if err != nil {
		r.logger.Error("Failed to aggregate seller statistics", zap.Error(err))
		return nil, fmt.Errorf("failed to aggregate seller statistics: %w", err)
	}

	return stats, nil
}
