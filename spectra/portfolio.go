package spectra

import (
	"context"
	"net/url"
	"strings"

	"github.com/etnz/aurora"
)

// Summary returns the portfolio valuation in currency, the backend base
// currency when empty.
func (c *Client) Summary(ctx context.Context, currency string) (*aurora.Summary, error) {
	currency = strings.ToUpper(currency)
	var q url.Values
	if currency != "" && currency != aurora.BaseCurrency {
		q = url.Values{"base_currency": {currency}}
	}
	var s aurora.Summary
	if err := c.Get(ctx, PathPortfolioSummary, q, &s); err != nil {
		return nil, err
	}
	s.Currency = currency
	if s.Currency == "" {
		s.Currency = aurora.BaseCurrency
	}
	return &s, nil
}

// Holdings returns the positions matching search.
func (c *Client) Holdings(ctx context.Context, search aurora.PortfolioSearch) (*aurora.Holdings, error) {
	var h aurora.Holdings
	if err := c.Get(ctx, PathPortfolioHoldings, search.Values(), &h); err != nil {
		return nil, err
	}
	if h.Summary.Currency == "" {
		h.Summary.Currency = aurora.BaseCurrency
	}
	return &h, nil
}

// Allocation returns the portfolio allocation grouped by g. It is computed
// from the holdings summary, as the dashboard pie chart does.
func (c *Client) Allocation(ctx context.Context, g aurora.Grouping) ([]aurora.Allocation, error) {
	h, err := c.Holdings(ctx, aurora.PortfolioSearch{})
	if err != nil {
		return nil, err
	}
	return h.Summary.Allocations(g), nil
}
