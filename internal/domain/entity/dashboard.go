package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusTotal is the number and sum of payments in one status.
type StatusTotal struct {
	Status PaymentStatus   `json:"status"`
	Count  int64           `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

// PaymentStatistics aggregates payments over a period. Every known status is present.
type PaymentStatistics struct {
	Start    time.Time                     `json:"start"`
	End      time.Time                     `json:"end"`
	ByStatus map[PaymentStatus]StatusTotal `json:"by_status"`
	Received decimal.Decimal               `json:"received"`
	Canceled decimal.Decimal               `json:"canceled"`
}

// LinkCounts counts payment links created in a period.
type LinkCounts struct {
	Created  int64 `json:"created"`
	Active   int64 `json:"active"`
	Used     int64 `json:"used"`
	Expired  int64 `json:"expired"`
	Inactive int64 `json:"inactive"`
	Canceled int64 `json:"canceled"`
}

// DashboardSummary is the headline view of the last 30 days.
type DashboardSummary struct {
	PeriodStart    time.Time               `json:"period_start"`
	PeriodEnd      time.Time               `json:"period_end"`
	TotalReceived  decimal.Decimal         `json:"total_received"`
	TotalCanceled  decimal.Decimal         `json:"total_canceled"`
	OpenValue      decimal.Decimal         `json:"open_value"`
	PaymentCounts  map[PaymentStatus]int64 `json:"payment_counts"`
	Links          LinkCounts              `json:"links"`
	ConversionRate decimal.Decimal         `json:"conversion_rate"`
	AverageTicket  decimal.Decimal         `json:"average_ticket"`
	ActiveSellers  int64                   `json:"active_sellers"`
	ThisWeek       decimal.Decimal         `json:"this_week"`
	LastWeek       decimal.Decimal         `json:"last_week"`
	WeeklyGrowth   decimal.Decimal         `json:"weekly_growth"`
}

// SellerStats counts a seller's orders per status.
type SellerStats struct {
	SellerID  int64           `json:"seller_id"`
	Name      string          `json:"name"`
	Paid      int64           `json:"paid"`
	Pending   int64           `json:"pending"`
	Canceled  int64           `json:"canceled"`
	Failed    int64           `json:"failed"`
	PaidTotal decimal.Decimal `json:"paid_total"`
}

// AllPaymentStatuses lists every payment status in display order.
func AllPaymentStatuses() []PaymentStatus {
	return []PaymentStatus{
		PaymentStatusPending,
		PaymentStatusProcessing,
		PaymentStatusPaid,
		PaymentStatusOverpaid,
		PaymentStatusUnderpaid,
		PaymentStatusFailed,
		PaymentStatusCanceled,
		PaymentStatusRefunded,
		PaymentStatusChargeback,
	}
}
