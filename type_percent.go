package aurora

import (
	"math"
	"strconv"
)

// Percent is a percentage as sent by the backend: 12.5 means 12.5%.
type Percent float64

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

// String formats the percentage the way the dashboard does: two decimals
// below 0.1%, one otherwise, and "0.0" for undefined values.
func (p Percent) String() string {
	return FormatPercentage(float64(p)) + "%"
}

func (p Percent) SignedString() string {
	if p == 0 || math.IsNaN(float64(p)) {
		return "-"
	}
	if p > 0 {
		return "+" + p.String()
	}
	return p.String()
}

// FormatPercentage formats a percentage value without its sign.
func FormatPercentage(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0.0"
	}
	if math.Abs(v) < 0.1 && v != 0 {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}
