// Package dashboard reads and mutates the portfolio through the API client,
// caching reads with the stale times of the Aurora dashboard.
//
// Mutations validate their payload first and invalidate every cached read
// they may affect.
package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/etnz/aurora"
	"github.com/etnz/aurora/date"
	"github.com/etnz/aurora/query"
)

// Backend is the part of the API client the dashboard needs.
type Backend interface {
	Summary(ctx context.Context, currency string) (*aurora.Summary, error)
	Holdings(ctx context.Context, search aurora.PortfolioSearch) (*aurora.Holdings, error)

	Assets(ctx context.Context, search aurora.AssetSearch) (*aurora.AssetList, error)
	SearchExternal(ctx context.Context, query string, limit int) ([]aurora.AssetResult, error)
	PopularAssets(ctx context.Context, t aurora.AssetType, limit int) ([]aurora.AssetResult, error)
	Asset(ctx context.Context, id string) (*aurora.Asset, error)
	CreateAsset(ctx context.Context, a aurora.AssetCreate) (*aurora.Asset, error)
	UpdateAsset(ctx context.Context, id string, u aurora.AssetUpdate) (*aurora.Asset, error)
	DeleteAsset(ctx context.Context, id string) error

	Transactions(ctx context.Context, search aurora.TransactionSearch) (*aurora.TransactionList, error)
	Transaction(ctx context.Context, id string) (*aurora.Transaction, error)
	CreateTransaction(ctx context.Context, t aurora.TransactionCreate) (*aurora.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, u aurora.TransactionUpdate) (*aurora.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	LatestPrices(ctx context.Context) ([]aurora.LatestPrice, error)
	Prices(ctx context.Context, assetID string, r date.Range) (*aurora.PriceSeries, error)
	SyncPrices(ctx context.Context, assetIDs ...string) (aurora.SyncResult, error)
}

// RetryBackoff is the wait before retrying a failed read, doubled after
// each retry.
const RetryBackoff = 500 * time.Millisecond

// Cache policies.
var (
	summaryPolicy     = query.Policy{StaleTime: 2 * time.Minute, Retries: query.DefaultRetries, Backoff: RetryBackoff}
	holdingsPolicy    = query.Policy{StaleTime: 3 * time.Minute, Retries: query.DefaultRetries, Backoff: RetryBackoff}
	allocationPolicy  = query.Policy{StaleTime: 5 * time.Minute, Retries: query.DefaultRetries, Backoff: RetryBackoff}
	assetsPolicy      = query.Policy{StaleTime: 10 * time.Minute, Retries: query.DefaultRetries, Backoff: RetryBackoff}
	searchPolicy      = query.Policy{StaleTime: 5 * time.Minute, Retries: 1, Backoff: RetryBackoff}
	transactionPolicy = query.Policy{StaleTime: 5 * time.Minute, Retries: query.DefaultRetries, Backoff: RetryBackoff}
	historicalPolicy  = query.Policy{StaleTime: 10 * time.Minute, Retries: query.DefaultRetries, Backoff: RetryBackoff}
	recentPolicy      = query.Policy{StaleTime: 2 * time.Minute, Retries: query.DefaultRetries, Backoff: RetryBackoff}
	latestPricePolicy = query.Policy{StaleTime: 5 * time.Minute, Retries: query.DefaultRetries, Backoff: RetryBackoff}
	discoverPolicy    = query.Policy{StaleTime: 5 * time.Minute, Retries: 1, Backoff: RetryBackoff}
	popularPolicy     = query.Policy{StaleTime: 15 * time.Minute, Retries: query.DefaultRetries, Backoff: RetryBackoff}
)

// Cache keys.
var (
	portfolioKey    = query.K("portfolio")
	assetsKey       = query.K("assets")
	assetLists      = assetsKey.With("list")
	assetDetails    = assetsKey.With("detail")
	discoveryKey    = assetsKey.With("discovery")
	transactionsKey = query.K("transactions")
	txLists         = transactionsKey.With("list")
	txDetails       = transactionsKey.With("detail")
	pricesKey       = query.K("prices")
)

// MinSearchLength is the shortest asset search query sent to the backend.
const MinSearchLength = 2

// SearchLimit caps the asset search results.
const SearchLimit = 10

// RecentLimit is the default number of recent transactions.
const RecentLimit = 5

// Dashboard serves cached portfolio data.
type Dashboard struct {
	api   Backend
	cache *query.Cache
}

// New returns a Dashboard reading through api, caching in cache.
func New(api Backend, cache *query.Cache) *Dashboard {
	if cache == nil {
		cache = query.New()
	}
	return &Dashboard{api: api, cache: cache}
}

// Cache returns the underlying cache.
func (d *Dashboard) Cache() *query.Cache { return d.cache }

// Refresh drops every cached portfolio report.
func (d *Dashboard) Refresh() { d.cache.Invalidate(portfolioKey) }

// Forget drops everything, used when the user signs out.
func (d *Dashboard) Forget() error { return d.cache.Clear() }

var errEmptyID = errors.New("empty id")
