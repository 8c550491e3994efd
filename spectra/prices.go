package spectra

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/etnz/aurora"
	"github.com/etnz/aurora/date"
)

// LatestPrices returns the most recent price of every asset.
func (c *Client) LatestPrices(ctx context.Context) ([]aurora.LatestPrice, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, PathLatestPrices, nil, &raw); err != nil {
		return nil, err
	}
	var prices []aurora.LatestPrice
	var envelope struct {
		Prices *[]aurora.LatestPrice `json:"prices"`
	}
	envelope.Prices = &prices
	if err := decodeList(raw, &prices, &envelope); err != nil {
		return nil, err
	}
	return prices, nil
}

// Prices returns the price history of an asset within r.
func (c *Client) Prices(ctx context.Context, assetID string, r date.Range) (*aurora.PriceSeries, error) {
	q := url.Values{}
	if !r.From.IsZero() {
		q.Set("start_date", r.From.String())
	}
	if !r.To.IsZero() {
		q.Set("end_date", r.To.String())
	}
	var raw json.RawMessage
	if err := c.Get(ctx, PathAssetPrices(assetID), q, &raw); err != nil {
		return nil, err
	}
	series := aurora.PriceSeries{AssetID: assetID}
	if err := decodeList(raw, &series.Data, &series); err != nil {
		return nil, err
	}
	return &series, nil
}

// SyncPrices asks the backend to fetch fresh prices, for all assets when
// assetIDs is empty.
func (c *Client) SyncPrices(ctx context.Context, assetIDs ...string) (aurora.SyncResult, error) {
	var body any
	if len(assetIDs) > 0 {
		body = map[string][]string{"asset_ids": assetIDs}
	}
	res := aurora.SyncResult{}
	if err := c.Post(ctx, PathSyncPrices, body, &res); err != nil {
		return nil, err
	}
	return res, nil
}
