package aurora

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	cent = decimal.New(1, -2)
	unit = decimal.New(1, 0)
)

// FormatNumber formats an amount with a precision adapted to its magnitude:
// 2 decimals from 1, up to 4 below 1 and up to 8 below 0.01, so that small
// crypto amounts remain readable.
func FormatNumber(v decimal.Decimal) string {
	abs := v.Abs()
	switch {
	case v.IsZero() || abs.GreaterThanOrEqual(unit):
		return group(v.StringFixed(2))
	case abs.LessThan(cent):
		return group(trim(v.StringFixed(8), 2))
	default:
		return group(trim(v.StringFixed(4), 2))
	}
}

// FormatQuantity formats a quantity with only the necessary decimals.
func FormatQuantity(v decimal.Decimal) string {
	abs := v.Abs()
	switch {
	case v.IsZero() || abs.GreaterThanOrEqual(unit):
		return group(trim(v.StringFixed(2), 0))
	case abs.LessThan(cent):
		return group(trim(v.StringFixed(8), 0))
	default:
		return group(trim(v.StringFixed(4), 0))
	}
}

// trim removes trailing zeros of the fractional part, keeping at least min digits.
func trim(s string, min int) string {
	intPart, frac, ok := strings.Cut(s, ".")
	if !ok {
		return s
	}
	for len(frac) > min && strings.HasSuffix(frac, "0") {
		frac = frac[:len(frac)-1]
	}
	if frac == "" {
		return intPart
	}
	return intPart + "." + frac
}

// group inserts thousands separators in the integer part.
func group(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return sign + b.String()
}
