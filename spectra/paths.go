package spectra

import "net/url"

// API paths.
const (
	PathHealth         = "/health"
	PathHealthDetailed = "/health/detailed"

	PathPortfolioSummary    = "/portfolio/summary"
	PathPortfolioHoldings   = "/portfolio/holdings"
	PathPortfolioAllocation = "/portfolio/allocation"

	PathAssets       = "/assets"
	PathTransactions = "/transactions"

	PathAssetSearch  = "/api/v1/assets/search"
	PathAssetPopular = "/api/v1/assets/popular"

	PathSyncPrices   = "/api/v1/sync/prices"
	PathLatestPrices = "/api/v1/prices/latest"

	PathUsers = "/api/v1/users"
)

func PathAsset(id string) string       { return PathAssets + "/" + url.PathEscape(id) }
func PathTransaction(id string) string { return PathTransactions + "/" + url.PathEscape(id) }
func PathAssetPrices(id string) string { return "/api/v1/prices/" + url.PathEscape(id) }
func PathUser(id string) string        { return PathUsers + "/" + url.PathEscape(id) }
