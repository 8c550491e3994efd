package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/aurora"
	"github.com/etnz/aurora/query"
)

// DiscoverType is the asset type of the popular assets offered by discovery.
const DiscoverType = aurora.AssetCrypto

// PopularAssets returns the popular assets of type t, all types if empty.
func (d *Dashboard) PopularAssets(ctx context.Context, t aurora.AssetType) ([]aurora.AssetResult, error) {
	key := discoveryKey.With("popular", string(t))
	return query.Fetch(ctx, d.cache, key, popularPolicy, func(ctx context.Context) ([]aurora.AssetResult, error) {
		return d.api.PopularAssets(ctx, t, 0)
	})
}

// DiscoverAssets searches q among the registered assets and the external
// sources, completed with the popular DiscoverType assets matching q.
// Queries shorter than MinSearchLength only list the popular assets.
func (d *Dashboard) DiscoverAssets(ctx context.Context, q string) ([]aurora.AssetResult, error) {
	q = strings.TrimSpace(q)
	var found []aurora.AssetResult
	if len([]rune(q)) >= MinSearchLength {
		var err error
		found, err = query.Fetch(ctx, d.cache, discoveryKey.With("search", q), discoverPolicy, func(ctx context.Context) ([]aurora.AssetResult, error) {
			return d.api.SearchExternal(ctx, q, 0)
		})
		if err != nil {
			return nil, err
		}
	}
	popular, err := d.PopularAssets(ctx, DiscoverType)
	if err != nil {
		return nil, err
	}
	return aurora.MergeResults(q, found, popular), nil
}

var errNotAdoptable = errors.New("neither a registered nor an external asset")

// AdoptAsset returns the asset behind a discovery result, registering it
// first when it is only known to an external source.
func (d *Dashboard) AdoptAsset(ctx context.Context, r aurora.AssetResult) (*aurora.Asset, error) {
	switch {
	case r.Registered():
		return d.Asset(ctx, r.ID)
	case r.External():
		return d.CreateAsset(ctx, r.Create())
	default:
		return nil, fmt.Errorf("cannot adopt %s: %w", r.Ticker, errNotAdoptable)
	}
}
