package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/Brunohvg/bibpay/internal/domain/errors"
)

func TestResolveTransition(t *testing.T) {
	tests := []struct {
		external string
		payment  PaymentStatus
		link     LinkStatus
		order    OrderStatus
	}{
		{"pending", PaymentStatusPending, "", ""},
		{"processing", PaymentStatusProcessing, "", ""},
		{"paid", PaymentStatusPaid, LinkStatusUsed, OrderStatusPaid},
		{"overpaid", PaymentStatusOverpaid, LinkStatusUsed, OrderStatusPaid},
		{"underpaid", PaymentStatusUnderpaid, LinkStatusUsed, OrderStatusPaid},
		{"failed", PaymentStatusFailed, LinkStatusCanceled, OrderStatusCanceled},
		{"canceled", PaymentStatusCanceled, LinkStatusCanceled, OrderStatusCanceled},
		{"refunded", PaymentStatusRefunded, "", OrderStatusCanceled},
		{"chargeback", PaymentStatusChargeback, "", OrderStatusCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.external, func(t *testing.T) {
			status, err := ParsePaymentStatus(tt.external)
			require.NoError(t, err)

			tr, ok := ResolveTransition(status)
			require.True(t, ok)
			assert.Equal(t, tt.payment, tr.Payment)
			assert.Equal(t, tt.link, tr.Link)
			assert.Equal(t, tt.order, tr.Order)
		})
	}
}

func TestParsePaymentStatus(t *testing.T) {
	status, err := ParsePaymentStatus("  PAID ")
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPaid, status)

	for _, raw := range []string{"", "approved", "cancelled", "paid!"} {
		_, err := ParsePaymentStatus(raw)
		assert.ErrorIs(t, err, domainerrors.ErrUnknownPaymentStatus, raw)
	}
}

func TestPaymentStatusClassification(t *testing.T) {
	assert.False(t, PaymentStatusPending.IsTerminal())
	assert.False(t, PaymentStatusProcessing.IsTerminal())
	assert.True(t, PaymentStatusPaid.IsTerminal())
	assert.True(t, PaymentStatusChargeback.IsTerminal())

	assert.True(t, PaymentStatusUnderpaid.IsApproved())
	assert.False(t, PaymentStatusRefunded.IsApproved())
	assert.True(t, PaymentStatusRefunded.IsRefused())
	assert.False(t, PaymentStatusPaid.IsRefused())

	assert.True(t, PaymentStatusPaid.Regresses(PaymentStatusPending))
	assert.False(t, PaymentStatusPaid.Regresses(PaymentStatusRefunded))
	assert.False(t, PaymentStatusPending.Regresses(PaymentStatusProcessing))
}

func TestLinkStatusForwardOnly(t *testing.T) {
	assert.True(t, LinkStatusActive.CanTransitionTo(LinkStatusUsed, true))
	assert.True(t, LinkStatusActive.CanTransitionTo(LinkStatusCanceled, false))
	assert.True(t, LinkStatusActive.CanTransitionTo(LinkStatusExpired, false))

	assert.False(t, LinkStatusUsed.CanTransitionTo(LinkStatusActive, false))
	assert.False(t, LinkStatusUsed.CanTransitionTo(LinkStatusCanceled, false))
	assert.False(t, LinkStatusCanceled.CanTransitionTo(LinkStatusActive, false))
	assert.False(t, LinkStatusActive.CanTransitionTo(LinkStatusActive, false))

	assert.True(t, LinkStatusExpired.CanTransitionTo(LinkStatusUsed, true))
	assert.False(t, LinkStatusExpired.CanTransitionTo(LinkStatusUsed, false))
	assert.False(t, LinkStatusCanceled.CanTransitionTo(LinkStatusExpired, false))
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("Paid")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPaid, status)

	_, err = ParseOrderStatus("shipped")
	var verr *domainerrors.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"100", "100"},
		{"100.5", "100.5"},
		{"1.234,56", "1234.56"},
		{"R$ 1.234,56", "1234.56"},
		{"10,00", "10"},
		{"1.234.567", "1234567"},
		{"0", "0"},
		{"9.999", "9.999"},
		{"12.345", "12.345"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseMoney(tt.raw)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Round(2).Equal(got), "got %s", got)
		})
	}

	for _, raw := range []string{"", "abc", "-1", "R$"} {
		_, err := ParseMoney(raw)
		assert.ErrorIs(t, err, domainerrors.ErrInvalidAmount, raw)
	}
}

func TestMinorUnits(t *testing.T) {
	assert.True(t, decimal.RequireFromString("110.00").Equal(FromMinorUnits(11000)))
	assert.True(t, decimal.RequireFromString("0.99").Equal(FromMinorUnits(99)))
	assert.Equal(t, int64(11000), ToMinorUnits(decimal.RequireFromString("110")))
	assert.Equal(t, int64(1235), ToMinorUnits(decimal.RequireFromString("12.345")))
}

func TestFormatMoney(t *testing.T) {
	tests := map[string]string{
		"0":         "0,00",
		"5.5":       "5,50",
		"999.99":    "999,99",
		"1234.56":   "1.234,56",
		"1234567.8": "1.234.567,80",
		"-1000":     "-1.000,00",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatMoney(decimal.RequireFromString(in)), in)
	}
}
