package aurora

import (
	"net/url"
	"strconv"

	"github.com/etnz/aurora/date"
	"github.com/shopspring/decimal"
)

// BaseCurrency is the currency the backend reports values in unless asked otherwise.
const BaseCurrency = "USD"

// Allocation is the weight of a group of assets in the portfolio.
type Allocation struct {
	// Group is the asset type or the classification, depending on the grouping.
	Group         string          `json:"-"`
	AssetType     string          `json:"asset_type,omitempty"`
	Class         string          `json:"classification,omitempty"`
	Value         decimal.Decimal `json:"value_usd"`
	AllocationPct Percent         `json:"allocation_pct"`
	Count         int             `json:"count"`
}

// Name returns the allocation group name, whatever the grouping.
func (a Allocation) Name() string {
	switch {
	case a.Group != "":
		return a.Group
	case a.AssetType != "":
		return a.AssetType
	default:
		return Classification(a.Class).Label()
	}
}

// Summary is the portfolio valuation computed by the backend.
type Summary struct {
	TotalValue                 decimal.Decimal `json:"total_value_usd"`
	TotalInvested              decimal.Decimal `json:"total_invested_usd"`
	TotalPnL                   decimal.Decimal `json:"total_pnl_usd"`
	TotalPnLPct                Percent         `json:"total_pnl_pct"`
	HoldingsCount              int             `json:"holdings_count"`
	TransactionsCount          int             `json:"transactions_count"`
	AllocationByType           []Allocation    `json:"allocation_by_type"`
	AllocationByClassification []Allocation    `json:"allocation_by_classification"`
	LastUpdated                *date.Timestamp `json:"last_updated,omitempty"`

	// Currency is the reporting currency requested, not sent by the backend.
	Currency string `json:"-"`
}

// Holding is the position held on a single asset.
type Holding struct {
	Asset          Asset           `json:"asset"`
	TotalQuantity  decimal.Decimal `json:"total_quantity"`
	AvgPrice       decimal.Decimal `json:"avg_price_usd"`
	CurrentPrice   decimal.Decimal `json:"current_price_usd"`
	CurrentValue   decimal.Decimal `json:"current_value_usd"`
	InvestedAmount decimal.Decimal `json:"invested_amount_usd"`
	UnrealizedPnL  decimal.Decimal `json:"unrealized_pnl_usd"`
	UnrealizedPct  Percent         `json:"unrealized_pnl_pct"`
	AllocationPct  Percent         `json:"allocation_pct"`
}

// Holdings is the full position report.
type Holdings struct {
	Holdings []Holding `json:"holdings"`
	Summary  Summary   `json:"summary"`
}

// Grouping selects how allocations are grouped.
type Grouping string

const (
	ByType           Grouping = "type"
	ByClassification Grouping = "classification"
)

// Allocations returns the allocations of the summary for the grouping.
func (s Summary) Allocations(g Grouping) []Allocation {
	src := s.AllocationByType
	if g == ByClassification {
		src = s.AllocationByClassification
	}
	res := make([]Allocation, len(src))
	for i, a := range src {
		a.Group = a.Name()
		res[i] = a
	}
	return res
}

// PortfolioSearch filters the holdings report.
type PortfolioSearch struct {
	Type             AssetType
	Classification   Classification
	MinAllocationPct float64
	OnlyActive       *bool
}

// Values encodes the non-empty filters as query parameters.
func (s PortfolioSearch) Values() url.Values {
	v := url.Values{}
	if s.Type != "" {
		v.Set("asset_type", string(s.Type))
	}
	if s.Classification != "" {
		v.Set("classification", string(s.Classification))
	}
	if s.MinAllocationPct > 0 {
		v.Set("min_allocation_pct", strconv.FormatFloat(s.MinAllocationPct, 'f', -1, 64))
	}
	if s.OnlyActive != nil {
		v.Set("only_active", strconv.FormatBool(*s.OnlyActive))
	}
	return v
}
