package spectra

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/etnz/aurora"
)

// Assets returns the assets matching search.
func (c *Client) Assets(ctx context.Context, search aurora.AssetSearch) (*aurora.AssetList, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, PathAssets, search.Values(), &raw); err != nil {
		return nil, err
	}
	var list aurora.AssetList
	if err := decodeList(raw, &list.Assets, &list); err != nil {
		return nil, err
	}
	if list.Total == 0 {
		list.Total = len(list.Assets)
	}
	return &list, nil
}

// Asset returns an asset by id.
func (c *Client) Asset(ctx context.Context, id string) (*aurora.Asset, error) {
	var a aurora.Asset
	if err := c.Get(ctx, PathAsset(id), nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAsset registers a new asset.
func (c *Client) CreateAsset(ctx context.Context, a aurora.AssetCreate) (*aurora.Asset, error) {
	var res aurora.Asset
	if err := c.Post(ctx, PathAssets, a, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateAsset applies a partial update to an asset.
func (c *Client) UpdateAsset(ctx context.Context, id string, u aurora.AssetUpdate) (*aurora.Asset, error) {
	var res aurora.Asset
	if err := c.Put(ctx, PathAsset(id), u, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// DeleteAsset removes an asset.
func (c *Client) DeleteAsset(ctx context.Context, id string) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: PathAsset(id)}, nil)
}

// decodeList decodes a list response that is either a bare JSON array into
// items, or an envelope object into envelope.
func decodeList(raw json.RawMessage, items, envelope any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	target := envelope
	if raw[0] == '[' {
		target = items
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return &Error{Status: http.StatusOK, Message: "invalid JSON response", Err: err}
	}
	return nil
}

// Discovery limits of the dashboard.
const (
	SearchResultsLimit = 20
	PopularLimit       = 50
)

// SearchExternal searches query among the registered assets and the external
// data sources. limit defaults to SearchResultsLimit.
func (c *Client) SearchExternal(ctx context.Context, query string, limit int) ([]aurora.AssetResult, error) {
	if limit <= 0 {
		limit = SearchResultsLimit
	}
	q := url.Values{"query": {query}, "limit": {strconv.Itoa(limit)}}
	return c.results(ctx, PathAssetSearch, q)
}

// PopularAssets returns the most popular assets of type t, all types if t is
// empty. limit defaults to PopularLimit.
func (c *Client) PopularAssets(ctx context.Context, t aurora.AssetType, limit int) ([]aurora.AssetResult, error) {
	if limit <= 0 {
		limit = PopularLimit
	}
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if t != "" {
		q.Set("asset_type", string(t))
	}
	return c.results(ctx, PathAssetPopular, q)
}

// results reads a list of discovery results. Anything but a JSON array is an
// empty list.
func (c *Client) results(ctx context.Context, path string, q url.Values) ([]aurora.AssetResult, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, path, q, &raw); err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return []aurora.AssetResult{}, nil
	}
	var res []aurora.AssetResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, &Error{Status: http.StatusOK, Message: "invalid JSON response", Err: err}
	}
	return res, nil
}
