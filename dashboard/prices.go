package dashboard

import (
	"context"

	"github.com/etnz/aurora"
	"github.com/etnz/aurora/date"
	"github.com/etnz/aurora/query"
)

// LatestPrices returns the most recent price of every asset.
func (d *Dashboard) LatestPrices(ctx context.Context) ([]aurora.LatestPrice, error) {
	return query.Fetch(ctx, d.cache, pricesKey.With("latest"), latestPricePolicy, d.api.LatestPrices)
}

// Prices returns the price history of an asset within r.
func (d *Dashboard) Prices(ctx context.Context, assetID string, r date.Range) (*aurora.PriceSeries, error) {
	if assetID == "" {
		return nil, errEmptyID
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	key := pricesKey.With("history", assetID, r.From.String(), r.To.String())
	return query.Fetch(ctx, d.cache, key, historicalPolicy, func(ctx context.Context) (*aurora.PriceSeries, error) {
		return d.api.Prices(ctx, assetID, r)
	})
}

// SyncPrices asks the backend to refresh prices and drops every cached
// valuation.
func (d *Dashboard) SyncPrices(ctx context.Context, assetIDs ...string) (aurora.SyncResult, error) {
	res, err := d.api.SyncPrices(ctx, assetIDs...)
	if err != nil {
		return nil, err
	}
	d.cache.Invalidate(pricesKey)
	d.cache.Invalidate(portfolioKey)
	return res, nil
}
