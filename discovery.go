package aurora

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Known sources of discovered assets.
const (
	SourceManual    = "manual"
	SourceCoinGecko = "coingecko"
	SourceYFinance  = "yfinance"
)

// DefaultSyncFrequencyHours is how often the backend refreshes the prices of
// an asset adopted from an external source.
const DefaultSyncFrequencyHours = 12

// AssetResult is an asset found by the discovery search. It is either
// already registered (its ID is a UUID) or known only to an external data
// source (it has an ExternalID).
type AssetResult struct {
	ID             string           `json:"id,omitempty"`
	Ticker         string           `json:"ticker"`
	Name           string           `json:"name"`
	Type           AssetType        `json:"asset_type"`
	Classification Classification   `json:"classification"`
	Currency       string           `json:"currency"`
	Source         string           `json:"source"`
	ExternalID     string           `json:"external_id,omitempty"`
	IsPopular      bool             `json:"is_popular"`
	PopularityRank int              `json:"popularity_rank,omitempty"`
	CurrentPrice   *decimal.Decimal `json:"current_price_usd,omitempty"`
	Change24h      *float64         `json:"price_change_24h,omitempty"`
	Volume24h      *decimal.Decimal `json:"volume_24h,omitempty"`
	MarketCap      *decimal.Decimal `json:"market_cap,omitempty"`
}

// Registered reports whether the result is an asset of the backend.
func (r AssetResult) Registered() bool {
	_, err := uuid.Parse(r.ID)
	return r.ID != "" && err == nil
}

// External reports whether the result must be created before it can be used.
func (r AssetResult) External() bool { return r.ExternalID != "" && !r.Registered() }

// Create returns the payload registering an external result.
func (r AssetResult) Create() AssetCreate {
	return AssetCreate{
		Ticker:             strings.ToUpper(r.Ticker),
		Name:               r.Name,
		Type:               r.Type,
		Classification:     r.Classification,
		Currency:           strings.ToUpper(r.Currency),
		Source:             r.Source,
		ExternalID:         r.ExternalID,
		IsPopular:          r.IsPopular,
		PopularityRank:     r.PopularityRank,
		SyncFrequencyHours: DefaultSyncFrequencyHours,
	}
}

// Price formats the last price in USD, "N/A" when unknown.
func (r AssetResult) Price() string {
	if r.CurrentPrice == nil || r.CurrentPrice.IsZero() {
		return "N/A"
	}
	return M(*r.CurrentPrice, BaseCurrency).String()
}

// Change formats the 24h price change, "N/A" when unknown.
func (r AssetResult) Change() string {
	if r.Change24h == nil {
		return "N/A"
	}
	return Percent(*r.Change24h).SignedString()
}

// Matches reports whether the ticker or the name contains query, ignoring case.
func (r AssetResult) Matches(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(r.Ticker), q) || strings.Contains(strings.ToLower(r.Name), q)
}

// MergeResults lists the registered results first, then the popular ones
// matching query, dropping later results with an already listed ticker.
func MergeResults(query string, existing, popular []AssetResult) []AssetResult {
	seen := make(map[string]bool)
	var res []AssetResult
	add := func(r AssetResult) {
		k := strings.ToLower(r.Ticker)
		if seen[k] {
			return
		}
		seen[k] = true
		res = append(res, r)
	}
	for _, r := range existing {
		add(r)
	}
	for _, r := range popular {
		if query == "" || r.Matches(query) {
			add(r)
		}
	}
	return res
}
