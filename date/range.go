package date

import "fmt"

// Range represents a range of dates, boundaries included. Zero bounds are open.
type Range struct{ From, To Date }

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool {
	return (r.From.IsZero() || !date.Before(r.From)) && (r.To.IsZero() || !date.After(r.To))
}

// Validate reports an inverted range.
func (r Range) Validate() error {
	if !r.From.IsZero() && !r.To.IsZero() && r.From.After(r.To) {
		return fmt.Errorf("invalid range: %s is after %s", r.From, r.To)
	}
	return nil
}
