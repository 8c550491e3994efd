package aurora

import (
	"net/url"
	"strconv"

	"github.com/etnz/aurora/date"
)

// AssetType is the kind of financial instrument.
type AssetType string

const (
	AssetETF       AssetType = "ETF"
	AssetStock     AssetType = "STOCK"
	AssetCrypto    AssetType = "CRYPTO"
	AssetBond      AssetType = "BOND"
	AssetCash      AssetType = "CASH"
	AssetCommodity AssetType = "COMMODITY"
	AssetOther     AssetType = "OTHER"
)

// AssetTypes lists all known asset types, in display order.
var AssetTypes = []AssetType{AssetETF, AssetStock, AssetCrypto, AssetBond, AssetCash, AssetCommodity, AssetOther}

// Classification is the allocation bucket an asset belongs to.
type Classification string

const (
	ClassFixedIncome Classification = "renta_fija"
	ClassEquity      Classification = "renta_variable"
	ClassCrypto      Classification = "crypto"
	ClassAlternative Classification = "alternative"
	ClassCash        Classification = "cash"
)

// Classifications lists all known classifications.
var Classifications = []Classification{ClassFixedIncome, ClassEquity, ClassCrypto, ClassAlternative, ClassCash}

// Label returns a human name for the classification.
func (c Classification) Label() string {
	switch c {
	case ClassFixedIncome:
		return "Fixed income"
	case ClassEquity:
		return "Equity"
	case ClassCrypto:
		return "Crypto"
	case ClassAlternative:
		return "Alternative"
	case ClassCash:
		return "Cash"
	default:
		return string(c)
	}
}

// Asset is a financial asset known to the backend.
type Asset struct {
	ID             string          `json:"id"`
	Ticker         string          `json:"ticker"`
	Name           string          `json:"name"`
	Type           AssetType       `json:"asset_type"`
	Classification Classification  `json:"classification"`
	Currency       string          `json:"currency"`
	Notes          string          `json:"notes,omitempty"`
	ExtraData      map[string]any  `json:"extra_data,omitempty"`
	CreatedAt      date.Timestamp  `json:"created_at"`
	UpdatedAt      *date.Timestamp `json:"updated_at,omitempty"`
}

// AssetCreate is the payload to register a new asset.
type AssetCreate struct {
	Ticker         string         `json:"ticker" validate:"required,max=20"`
	Name           string         `json:"name" validate:"required,max=255"`
	Type           AssetType      `json:"asset_type" validate:"required,asset_type"`
	Classification Classification `json:"classification" validate:"required,classification"`
	Currency       string         `json:"currency" validate:"required,len=3"`
	Notes          string         `json:"notes,omitempty"`
	ExtraData      map[string]any `json:"extra_data,omitempty"`
	AccountID      string         `json:"account_id,omitempty" validate:"omitempty,uuid"`

	// Set when the asset is adopted from an external data source.
	Source             string `json:"source,omitempty"`
	ExternalID         string `json:"external_id,omitempty"`
	IsPopular          bool   `json:"is_popular,omitempty"`
	PopularityRank     int    `json:"popularity_rank,omitempty"`
	SyncFrequencyHours int    `json:"sync_frequency_hours,omitempty" validate:"gte=0"`
}

// AssetUpdate is a partial update of an asset, nil fields are left untouched.
type AssetUpdate struct {
	Ticker         *string         `json:"ticker,omitempty" validate:"omitempty,min=1,max=20"`
	Name           *string         `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Type           *AssetType      `json:"asset_type,omitempty" validate:"omitempty,asset_type"`
	Classification *Classification `json:"classification,omitempty" validate:"omitempty,classification"`
	Currency       *string         `json:"currency,omitempty" validate:"omitempty,len=3"`
	Notes          *string         `json:"notes,omitempty"`
}

// AssetSearch filters the asset list.
type AssetSearch struct {
	Search         string
	Type           AssetType
	Classification Classification
	Limit          int
}

// Values encodes the non-empty filters as query parameters.
func (s AssetSearch) Values() url.Values {
	v := url.Values{}
	if s.Search != "" {
		v.Set("search", s.Search)
	}
	if s.Type != "" {
		v.Set("asset_type", string(s.Type))
	}
	if s.Classification != "" {
		v.Set("classification", string(s.Classification))
	}
	if s.Limit > 0 {
		v.Set("limit", strconv.Itoa(s.Limit))
	}
	return v
}

// AssetList is the paginated asset list envelope.
type AssetList struct {
	Assets []Asset `json:"assets"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}
