package renderer

import (
	"github.com/etnz/aurora"
	"github.com/etnz/aurora/session"
)

// SummaryOptions selects the optional sections of the summary.
type SummaryOptions struct {
	SkipAllocation bool
	Recent         []aurora.Transaction // rendered when not empty
}

type summaryView struct {
	*aurora.Summary
	ByType  []aurora.Allocation
	ByClass []aurora.Allocation
	Recent  []aurora.Transaction
}

// RenderSummary renders the portfolio summary, the dashboard home page.
func RenderSummary(s *aurora.Summary, opts SummaryOptions) string {
	partials := map[string]string{
		"summary_totals":     "summary_totals.md",
		"summary_allocation": "summary_allocation.md",
		"summary_recent":     "summary_recent.md",
	}
	if opts.SkipAllocation {
		partials["summary_allocation"] = ""
	}
	if len(opts.Recent) == 0 {
		partials["summary_recent"] = ""
	}
	v := summaryView{
		Summary: s,
		ByType:  s.Allocations(aurora.ByType),
		ByClass: s.Allocations(aurora.ByClassification),
		Recent:  opts.Recent,
	}
	return renderTemplate("summary", "summary.md", partials, v)
}

// RenderHoldings renders the positions table.
func RenderHoldings(h *aurora.Holdings) string {
	return renderTemplate("holdings", "holdings.md", nil, h)
}

type allocationView struct {
	Grouping    aurora.Grouping
	Currency    string
	Allocations []aurora.Allocation
}

// RenderAllocation renders the allocation grouped by g.
func RenderAllocation(g aurora.Grouping, allocations []aurora.Allocation) string {
	return renderTemplate("allocation", "allocation.md", nil, allocationView{
		Grouping:    g,
		Currency:    aurora.BaseCurrency,
		Allocations: allocations,
	})
}

// RenderAssets renders a list of assets.
func RenderAssets(assets []aurora.Asset) string {
	return renderTemplate("assets", "assets.md", nil, assets)
}

// RenderAsset renders an asset and its transactions.
func RenderAsset(a *aurora.Asset, txs []aurora.Transaction) string {
	partials := map[string]string{"asset_transactions": "asset_transactions.md"}
	if len(txs) == 0 {
		partials["asset_transactions"] = ""
	}
	return renderTemplate("asset", "asset.md", partials, struct {
		*aurora.Asset
		Transactions []aurora.Transaction
	}{a, txs})
}

// RenderDiscovery renders the results of an asset discovery.
func RenderDiscovery(results []aurora.AssetResult) string {
	return renderTemplate("discovery", "discovery.md", nil, results)
}

// RenderTransactions renders a list of transactions.
func RenderTransactions(txs []aurora.Transaction) string {
	return renderTemplate("transactions", "transactions.md", nil, txs)
}

// RenderTransaction renders a single transaction.
func RenderTransaction(t *aurora.Transaction) string {
	return renderTemplate("transaction", "transaction.md", nil, t)
}

// RenderLatestPrices renders the last known prices, with the asset tickers
// when known.
func RenderLatestPrices(prices []aurora.LatestPrice, assets []aurora.Asset) string {
	tickers := make(map[string]string, len(assets))
	for _, a := range assets {
		tickers[a.ID] = a.Ticker
	}
	type row struct {
		aurora.LatestPrice
		Ticker string
	}
	rows := make([]row, len(prices))
	for i, p := range prices {
		rows[i] = row{LatestPrice: p, Ticker: tickers[p.AssetID]}
	}
	return renderTemplate("prices", "prices.md", nil, rows)
}

// RenderPriceSeries renders the price history of an asset.
func RenderPriceSeries(s *aurora.PriceSeries) string {
	return renderTemplate("history", "history.md", nil, s)
}

type healthView struct {
	*aurora.HealthCheck
	Detailed *aurora.DetailedHealthCheck
}

// RenderHealth renders the backend health, detailed may be nil.
func RenderHealth(h *aurora.HealthCheck, detailed *aurora.DetailedHealthCheck) string {
	partials := map[string]string{"health_checks": "health_checks.md"}
	if detailed == nil {
		partials["health_checks"] = ""
	}
	return renderTemplate("health", "health.md", partials, healthView{h, detailed})
}

type userView struct {
	session.State
	Token  session.TokenInfo
	Server string
}

// RenderUser renders the signed in user, or the anonymous state.
func RenderUser(st session.State, server string) string {
	v := userView{State: st, Server: server}
	if st.Authenticated {
		v.Token, _ = session.Inspect(st.Token)
	}
	return renderTemplate("user", "user.md", nil, v)
}
