package dashboard

import (
	"context"
	"strings"

	"github.com/etnz/aurora"
	"github.com/etnz/aurora/query"
)

// Assets returns the assets matching search.
func (d *Dashboard) Assets(ctx context.Context, search aurora.AssetSearch) (*aurora.AssetList, error) {
	key := assetLists.With(search.Values().Encode())
	return query.Fetch(ctx, d.cache, key, assetsPolicy, func(ctx context.Context) (*aurora.AssetList, error) {
		return d.api.Assets(ctx, search)
	})
}

// Asset returns an asset by id.
func (d *Dashboard) Asset(ctx context.Context, id string) (*aurora.Asset, error) {
	if id == "" {
		return nil, errEmptyID
	}
	return query.Fetch(ctx, d.cache, assetDetails.With(id), assetsPolicy, func(ctx context.Context) (*aurora.Asset, error) {
		return d.api.Asset(ctx, id)
	})
}

// SearchAssets returns up to SearchLimit assets matching q. Queries shorter
// than MinSearchLength return nothing without calling the backend.
func (d *Dashboard) SearchAssets(ctx context.Context, q string) ([]aurora.Asset, error) {
	q = strings.TrimSpace(q)
	if len([]rune(q)) < MinSearchLength {
		return nil, nil
	}
	search := aurora.AssetSearch{Search: q, Limit: SearchLimit}
	key := assetLists.With(search.Values().Encode())
	list, err := query.Fetch(ctx, d.cache, key, searchPolicy, func(ctx context.Context) (*aurora.AssetList, error) {
		return d.api.Assets(ctx, search)
	})
	if err != nil {
		return nil, err
	}
	return list.Assets, nil
}

// CreateAsset validates and registers a new asset.
func (d *Dashboard) CreateAsset(ctx context.Context, a aurora.AssetCreate) (*aurora.Asset, error) {
	a.Currency = strings.ToUpper(a.Currency)
	a.Ticker = strings.ToUpper(strings.TrimSpace(a.Ticker))
	if err := aurora.Validate(a); err != nil {
		return nil, err
	}
	res, err := d.api.CreateAsset(ctx, a)
	if err != nil {
		return nil, err
	}
	d.cache.Invalidate(assetLists)
	d.cache.Invalidate(discoveryKey)
	d.cache.Invalidate(portfolioKey)
	if err := query.Set(d.cache, assetDetails.With(res.ID), res); err != nil {
		return nil, err
	}
	return res, nil
}

// UpdateAsset validates and applies a partial update.
func (d *Dashboard) UpdateAsset(ctx context.Context, id string, u aurora.AssetUpdate) (*aurora.Asset, error) {
	if id == "" {
		return nil, errEmptyID
	}
	if err := aurora.Validate(u); err != nil {
		return nil, err
	}
	res, err := d.api.UpdateAsset(ctx, id, u)
	if err != nil {
		return nil, err
	}
	if err := query.Set(d.cache, assetDetails.With(id), res); err != nil {
		return nil, err
	}
	d.cache.Invalidate(assetLists)
	d.cache.Invalidate(discoveryKey)
	d.cache.Invalidate(portfolioKey)
	return res, nil
}

// DeleteAsset removes an asset.
func (d *Dashboard) DeleteAsset(ctx context.Context, id string) error {
	if id == "" {
		return errEmptyID
	}
	if err := d.api.DeleteAsset(ctx, id); err != nil {
		return err
	}
	d.cache.Remove(assetDetails.With(id))
	d.cache.Invalidate(assetLists)
	d.cache.Invalidate(discoveryKey)
	d.cache.Invalidate(portfolioKey)
	return nil
}
