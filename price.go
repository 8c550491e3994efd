package aurora

import (
	"github.com/etnz/aurora/date"
	"github.com/shopspring/decimal"
)

// Price is one recorded price point of an asset.
type Price struct {
	ID        string          `json:"id"`
	AssetID   string          `json:"asset_id"`
	Date      date.Date       `json:"date"`
	Price     decimal.Decimal `json:"price_usd"`
	Source    string          `json:"source"`
	RawData   map[string]any  `json:"raw_data,omitempty"`
	CreatedAt date.Timestamp  `json:"created_at"`
}

// LatestPrice is the most recent known price of an asset.
type LatestPrice struct {
	AssetID string          `json:"asset_id"`
	Price   decimal.Decimal `json:"price_usd"`
	Date    date.Date       `json:"date"`
	Source  string          `json:"source"`
}

// PriceSeries is the price history of an asset.
type PriceSeries struct {
	AssetID string  `json:"asset_id"`
	Data    []Price `json:"data"`
}

// SyncResult is the backend acknowledgement of a price synchronization.
// Its content is backend defined and kept as is.
type SyncResult map[string]any
