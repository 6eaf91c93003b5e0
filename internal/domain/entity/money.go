package entity

import (
	"strings"

	"github.com/shopspring/decimal"

	domainerrors "github.com/Brunohvg/bibpay/internal/domain/errors"
)

var hundred = decimal.NewFromInt(100)

// ParseMoney parses a non-negative amount. Both "1234.56" and the Brazilian
// "R$ 1.234,56" forms are accepted; the result is rounded to cents.
func ParseMoney(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, domainerrors.ErrInvalidAmount
	}

	switch {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, domainerrors.ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, domainerrors.ErrInvalidAmount
	}
	return d.Round(2), nil
}

// FromMinorUnits converts cents to a decimal amount.
func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// ToMinorUnits converts an amount to cents, rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FormatMoney renders an amount the Brazilian way, e.g. "1.234,56".
func FormatMoney(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "," + frac
}
