package dashboard

import (
	"context"
	"strings"

	"github.com/etnz/aurora"
	"github.com/etnz/aurora/query"
)

// Summary returns the portfolio valuation in currency, USD by default.
func (d *Dashboard) Summary(ctx context.Context, currency string) (*aurora.Summary, error) {
	currency = strings.ToUpper(currency)
	if currency == "" {
		currency = aurora.BaseCurrency
	}
	key := portfolioKey.With("summary", currency)
	s, err := query.Fetch(ctx, d.cache, key, summaryPolicy, func(ctx context.Context) (*aurora.Summary, error) {
		return d.api.Summary(ctx, currency)
	})
	if err != nil {
		return nil, err
	}
	s.Currency = currency
	return s, nil
}

// Holdings returns the positions matching search.
func (d *Dashboard) Holdings(ctx context.Context, search aurora.PortfolioSearch) (*aurora.Holdings, error) {
	key := portfolioKey.With("holdings", search.Values().Encode())
	h, err := query.Fetch(ctx, d.cache, key, holdingsPolicy, func(ctx context.Context) (*aurora.Holdings, error) {
		return d.api.Holdings(ctx, search)
	})
	if err != nil {
		return nil, err
	}
	h.Summary.Currency = aurora.BaseCurrency
	return h, nil
}

// Allocation returns the allocation grouped by g, computed from the
// unfiltered holdings.
func (d *Dashboard) Allocation(ctx context.Context, g aurora.Grouping) ([]aurora.Allocation, error) {
	if g == "" {
		g = aurora.ByType
	}
	key := portfolioKey.With("allocation", string(g))
	return query.Fetch(ctx, d.cache, key, allocationPolicy, func(ctx context.Context) ([]aurora.Allocation, error) {
		h, err := d.api.Holdings(ctx, aurora.PortfolioSearch{})
		if err != nil {
			return nil, err
		}
		return h.Summary.Allocations(g), nil
	})
}
