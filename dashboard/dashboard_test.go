package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/etnz/aurora"
	"github.com/etnz/aurora/date"
	"github.com/etnz/aurora/query"
	"github.com/etnz/aurora/spectra"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

// fakeAPI is an in-memory Backend counting its calls.
type fakeAPI struct {
	mu       sync.Mutex
	calls    map[string]int
	assets   map[string]aurora.Asset
	searches []aurora.AssetSearch
	created  []aurora.AssetCreate
	txs      []aurora.Transaction
	txSearch []aurora.TransactionSearch
	fail     error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		calls: make(map[string]int),
		assets: map[string]aurora.Asset{
			"a1": {ID: "a1", Ticker: "VWCE", Type: aurora.AssetETF, Classification: aurora.ClassEquity, Currency: "EUR"},
		},
		txs: []aurora.Transaction{
			{ID: "t1", AssetID: "a1", Type: aurora.Buy, Quantity: decimal.NewFromInt(2), Currency: "EUR"},
		},
	}
}

func (f *fakeAPI) called(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	return f.fail
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) Summary(ctx context.Context, currency string) (*aurora.Summary, error) {
	if err := f.called("Summary"); err != nil {
		return nil, err
	}
	return &aurora.Summary{TotalValue: decimal.NewFromInt(1000), HoldingsCount: len(f.assets), Currency: currency}, nil
}

func (f *fakeAPI) Holdings(ctx context.Context, search aurora.PortfolioSearch) (*aurora.Holdings, error) {
	if err := f.called("Holdings"); err != nil {
		return nil, err
	}
	return &aurora.Holdings{Summary: aurora.Summary{
		AllocationByType:           []aurora.Allocation{{AssetType: "ETF", AllocationPct: 100, Count: 1}},
		AllocationByClassification: []aurora.Allocation{{Class: "renta_variable", AllocationPct: 100, Count: 1}},
	}}, nil
}

func (f *fakeAPI) Assets(ctx context.Context, search aurora.AssetSearch) (*aurora.AssetList, error) {
	if err := f.called("Assets"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, search)
	list := &aurora.AssetList{}
	for _, a := range f.assets {
		list.Assets = append(list.Assets, a)
	}
	list.Total = len(list.Assets)
	return list, nil
}

func (f *fakeAPI) Asset(ctx context.Context, id string) (*aurora.Asset, error) {
	if err := f.called("Asset"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assets[id]
	if !ok {
		return nil, &spectra.Error{Status: 404, Message: "Asset not found"}
	}
	return &a, nil
}

func (f *fakeAPI) CreateAsset(ctx context.Context, in aurora.AssetCreate) (*aurora.Asset, error) {
	if err := f.called("CreateAsset"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	a := aurora.Asset{ID: "a2", Ticker: in.Ticker, Name: in.Name, Type: in.Type, Classification: in.Classification, Currency: in.Currency}
	f.assets[a.ID] = a
	return &a, nil
}

func (f *fakeAPI) SearchExternal(ctx context.Context, q string, limit int) ([]aurora.AssetResult, error) {
	if err := f.called("SearchExternal"); err != nil {
		return nil, err
	}
	return []aurora.AssetResult{
		{ID: "bitcoin", Ticker: "BTC", Name: "Bitcoin", Type: aurora.AssetCrypto, Classification: aurora.ClassCrypto, Currency: "USD", Source: aurora.SourceCoinGecko, ExternalID: "bitcoin"},
	}, nil
}

func (f *fakeAPI) PopularAssets(ctx context.Context, t aurora.AssetType, limit int) ([]aurora.AssetResult, error) {
	if err := f.called("PopularAssets"); err != nil {
		return nil, err
	}
	return []aurora.AssetResult{
		{ID: "bitcoin", Ticker: "btc", Name: "Bitcoin", Type: t, ExternalID: "bitcoin", IsPopular: true, PopularityRank: 1},
		{ID: "ethereum", Ticker: "ETH", Name: "Ethereum", Type: t, ExternalID: "ethereum", IsPopular: true, PopularityRank: 2},
		{ID: "wrapped-bitcoin", Ticker: "WBTC", Name: "Wrapped Bitcoin", Type: t, ExternalID: "wrapped-bitcoin", IsPopular: true, PopularityRank: 14},
	}, nil
}

func (f *fakeAPI) UpdateAsset(ctx context.Context, id string, u aurora.AssetUpdate) (*aurora.Asset, error) {
	if err := f.called("UpdateAsset"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.assets[id]
	if u.Name != nil {
		a.Name = *u.Name
	}
	f.assets[id] = a
	return &a, nil
}

func (f *fakeAPI) DeleteAsset(ctx context.Context, id string) error {
	if err := f.called("DeleteAsset"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.assets, id)
	return nil
}

func (f *fakeAPI) Transactions(ctx context.Context, search aurora.TransactionSearch) (*aurora.TransactionList, error) {
	if err := f.called("Transactions"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txSearch = append(f.txSearch, search)
	return &aurora.TransactionList{Transactions: f.txs, Total: len(f.txs)}, nil
}

func (f *fakeAPI) Transaction(ctx context.Context, id string) (*aurora.Transaction, error) {
	if err := f.called("Transaction"); err != nil {
		return nil, err
	}
	for _, t := range f.txs {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, &spectra.Error{Status: 404, Message: "Transaction not found"}
}

func (f *fakeAPI) CreateTransaction(ctx context.Context, in aurora.TransactionCreate) (*aurora.Transaction, error) {
	if err := f.called("CreateTransaction"); err != nil {
		return nil, err
	}
	t := aurora.Transaction{ID: "t2", AssetID: in.AssetID, Type: in.Type, Quantity: in.Quantity, TotalAmount: in.TotalAmount, Currency: in.Currency}
	f.mu.Lock()
	f.txs = append(f.txs, t)
	f.mu.Unlock()
	return &t, nil
}

func (f *fakeAPI) UpdateTransaction(ctx context.Context, id string, u aurora.TransactionUpdate) (*aurora.Transaction, error) {
	if err := f.called("UpdateTransaction"); err != nil {
		return nil, err
	}
	return &aurora.Transaction{ID: id, Notes: *u.Notes}, nil
}

func (f *fakeAPI) DeleteTransaction(ctx context.Context, id string) error {
	return f.called("DeleteTransaction")
}

func (f *fakeAPI) LatestPrices(ctx context.Context) ([]aurora.LatestPrice, error) {
	if err := f.called("LatestPrices"); err != nil {
		return nil, err
	}
	return []aurora.LatestPrice{{AssetID: "a1", Price: decimal.NewFromInt(100)}}, nil
}

func (f *fakeAPI) Prices(ctx context.Context, assetID string, r date.Range) (*aurora.PriceSeries, error) {
	if err := f.called("Prices"); err != nil {
		return nil, err
	}
	return &aurora.PriceSeries{AssetID: assetID}, nil
}

func (f *fakeAPI) SyncPrices(ctx context.Context, assetIDs ...string) (aurora.SyncResult, error) {
	if err := f.called("SyncPrices"); err != nil {
		return nil, err
	}
	return aurora.SyncResult{"updated": len(assetIDs)}, nil
}

func newTestDashboard() (*Dashboard, *fakeAPI) {
	api := newFakeAPI()
	return New(api, query.New()), api
}

func TestSummaryIsCached(t *testing.T) {
	ctx := context.Background()
	d, api := newTestDashboard()

	for range 3 {
		s, err := d.Summary(ctx, "")
		if err != nil {
			t.Fatalf("Summary() error: %v", err)
		}
		if s.Currency != "USD" || !s.TotalValue.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("Summary() = %+v", s)
		}
	}
	if _, err := d.Summary(ctx, "eur"); err != nil {
		t.Fatal(err)
	}
	if n := api.count("Summary"); n != 2 {
		t.Errorf("Summary calls = %d, want one per currency", n)
	}
	d.Refresh()
	d.Summary(ctx, "USD")
	if n := api.count("Summary"); n != 3 {
		t.Errorf("Summary calls after Refresh() = %d, want 3", n)
	}
}

func TestAllocation(t *testing.T) {
	ctx := context.Background()
	d, api := newTestDashboard()

	byType, err := d.Allocation(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	byClass, err := d.Allocation(ctx, aurora.ByClassification)
	if err != nil {
		t.Fatal(err)
	}
	if len(byType) != 1 || byType[0].Name() != "ETF" {
		t.Errorf("Allocation(type) = %+v", byType)
	}
	if len(byClass) != 1 || byClass[0].Name() != "Equity" {
		t.Errorf("Allocation(classification) = %+v", byClass)
	}
	if n := api.count("Holdings"); n != 2 {
		t.Errorf("Holdings calls = %d, want 2", n)
	}
}

func TestSearchAssets(t *testing.T) {
	ctx := context.Background()
	d, api := newTestDashboard()

	for _, q := range []string{"", "v", " v "} {
		got, err := d.SearchAssets(ctx, q)
		if err != nil || got != nil {
			t.Errorf("SearchAssets(%q) = %v, %v; want nothing", q, got, err)
		}
	}
	if n := api.count("Assets"); n != 0 {
		t.Fatalf("short searches called the backend %d times", n)
	}
	got, err := d.SearchAssets(ctx, "vw")
	if err != nil || len(got) != 1 {
		t.Fatalf("SearchAssets(vw) = %v, %v", got, err)
	}
	want := []aurora.AssetSearch{{Search: "vw", Limit: SearchLimit}}
	if diff := cmp.Diff(want, api.searches); diff != "" {
		t.Errorf("search sent (-want +got):\n%s", diff)
	}
}

func TestCreateAssetValidates(t *testing.T) {
	d, api := newTestDashboard()

	_, err := d.CreateAsset(context.Background(), aurora.AssetCreate{Ticker: "VWCE", Currency: "EURO"})
	var fields aurora.FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("CreateAsset() error = %v, want FieldErrors", err)
	}
	for _, f := range []string{"name", "asset_type", "classification", "currency"} {
		if _, ok := fields[f]; !ok {
			t.Errorf("CreateAsset() errors %v miss %q", fields, f)
		}
	}
	if n := api.count("CreateAsset"); n != 0 {
		t.Errorf("an invalid asset reached the backend")
	}
}

func TestCreateAssetInvalidates(t *testing.T) {
	ctx := context.Background()
	d, api := newTestDashboard()
	d.Assets(ctx, aurora.AssetSearch{})
	d.Summary(ctx, "")

	a, err := d.CreateAsset(ctx, aurora.AssetCreate{
		Ticker:         "btc",
		Name:           "Bitcoin",
		Type:           aurora.AssetCrypto,
		Classification: aurora.ClassCrypto,
		Currency:       "usd",
	})
	if err != nil {
		t.Fatalf("CreateAsset() error: %v", err)
	}
	if a.Ticker != "BTC" || a.Currency != "USD" {
		t.Errorf("CreateAsset() did not normalize: %+v", a)
	}
	if _, err := d.Asset(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if n := api.count("Asset"); n != 0 {
		t.Errorf("created asset detail was not cached, %d calls", n)
	}
	list, _ := d.Assets(ctx, aurora.AssetSearch{})
	if len(list.Assets) != 2 || api.count("Assets") != 2 {
		t.Errorf("asset list not refreshed: %d assets, %d calls", len(list.Assets), api.count("Assets"))
	}
	d.Summary(ctx, "")
	if n := api.count("Summary"); n != 2 {
		t.Errorf("summary not refreshed after a new asset, %d calls", n)
	}
}

func TestUpdateAndDeleteAsset(t *testing.T) {
	ctx := context.Background()
	d, api := newTestDashboard()
	d.Asset(ctx, "a1")

	name := "Vanguard FTSE All-World"
	if _, err := d.UpdateAsset(ctx, "a1", aurora.AssetUpdate{Name: &name}); err != nil {
		t.Fatal(err)
	}
	a, _ := d.Asset(ctx, "a1")
	if a.Name != name || api.count("Asset") != 1 {
		t.Errorf("Asset() after update = %+v with %d calls", a, api.count("Asset"))
	}
	if err := d.DeleteAsset(ctx, "a1"); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Asset(ctx, "a1"); !spectra.IsNotFound(err) {
		t.Errorf("Asset() after delete error = %v, want not found", err)
	}
	if _, err := d.Asset(ctx, ""); err == nil {
		t.Errorf("Asset(\"\") succeeded")
	}
}

func TestNotFoundIsNotRetried(t *testing.T) {
	d, api := newTestDashboard()
	if _, err := d.Asset(context.Background(), "missing"); !spectra.IsNotFound(err) {
		t.Fatalf("Asset(missing) error = %v", err)
	}
	if n := api.count("Asset"); n != 1 {
		t.Errorf("Asset calls = %d, want a 404 not to be retried", n)
	}
}

func TestServerErrorIsRetried(t *testing.T) {
	d, api := newTestDashboard()
	api.fail = &spectra.Error{Status: 503, Message: "unavailable"}
	start := time.Now()
	if _, err := d.Summary(context.Background(), ""); spectra.StatusOf(err) != 503 {
		t.Fatalf("Summary() error = %v", err)
	}
	if n := api.count("Summary"); n != 1+query.DefaultRetries {
		t.Errorf("Summary calls = %d, want %d", n, 1+query.DefaultRetries)
	}
	// RetryBackoff then twice as much
	if elapsed, want := time.Since(start), 3*RetryBackoff; elapsed < want {
		t.Errorf("retries took %v, want at least %v of backoff", elapsed, want)
	}
}

func TestTransactions(t *testing.T) {
	ctx := context.Background()
	d, api := newTestDashboard()

	recent, err := d.RecentTransactions(ctx, 0)
	if err != nil || len(recent) != 1 {
		t.Fatalf("RecentTransactions() = %v, %v", recent, err)
	}
	if _, err := d.AssetTransactions(ctx, "a1"); err != nil {
		t.Fatal(err)
	}
	want := []aurora.TransactionSearch{{Limit: RecentLimit}, {AssetID: "a1"}}
	if diff := cmp.Diff(want, api.txSearch); diff != "" {
		t.Errorf("searches (-want +got):\n%s", diff)
	}

	_, err = d.CreateTransaction(ctx, aurora.TransactionCreate{
		AssetID:      "a1",
		Date:         date.New(2025, 1, 15),
		Type:         aurora.Sell,
		Quantity:     decimal.NewFromInt(1),
		PricePerUnit: decimal.RequireFromString("99.5"),
		Currency:     "eur",
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error: %v", err)
	}
	recent, _ = d.RecentTransactions(ctx, 0)
	if len(recent) != 2 {
		t.Errorf("recent transactions not refreshed: %d", len(recent))
	}
	tx, err := d.Transaction(ctx, "t2")
	if err != nil || !tx.TotalAmount.Equal(decimal.RequireFromString("99.5")) {
		t.Errorf("Transaction(t2) = %+v, %v", tx, err)
	}
	if n := api.count("Transaction"); n != 0 {
		t.Errorf("created transaction detail was not cached")
	}

	notes := "rebalancing"
	if _, err := d.UpdateTransaction(ctx, "t2", aurora.TransactionUpdate{Notes: &notes}); err != nil {
		t.Fatal(err)
	}
	if err := d.DeleteTransaction(ctx, "t2"); err != nil {
		t.Fatal(err)
	}
	if _, ok := query.Get[*aurora.Transaction](d.Cache(), txDetails.With("t2")); ok {
		t.Errorf("deleted transaction still cached")
	}
}

func TestCreateTransactionValidates(t *testing.T) {
	d, api := newTestDashboard()
	_, err := d.CreateTransaction(context.Background(), aurora.TransactionCreate{
		AssetID:  "a1",
		Date:     date.Today().Add(2),
		Type:     aurora.Buy,
		Quantity: decimal.NewFromInt(1),
		Currency: "EUR",
	})
	var fields aurora.FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("CreateTransaction() error = %v, want FieldErrors", err)
	}
	for _, f := range []string{"date", "price_per_unit", "total_amount"} {
		if _, ok := fields[f]; !ok {
			t.Errorf("errors %v miss %q", fields, f)
		}
	}
	if api.count("CreateTransaction") != 0 {
		t.Errorf("an invalid transaction reached the backend")
	}
}

func TestSyncPricesInvalidates(t *testing.T) {
	ctx := context.Background()
	d, api := newTestDashboard()
	d.LatestPrices(ctx)
	d.Summary(ctx, "")
	if _, err := d.Prices(ctx, "a1", date.Range{From: date.New(2025, 3, 1), To: date.New(2025, 1, 1)}); err == nil {
		t.Errorf("Prices() with an inverted range succeeded")
	}

	if _, err := d.SyncPrices(ctx); err != nil {
		t.Fatal(err)
	}
	d.LatestPrices(ctx)
	d.Summary(ctx, "")
	if api.count("LatestPrices") != 2 || api.count("Summary") != 2 {
		t.Errorf("SyncPrices() did not invalidate: %v", api.calls)
	}
}

func TestDiscoverAssets(t *testing.T) {
	ctx := context.Background()
	d, api := newTestDashboard()
	tickers := func(rs []aurora.AssetResult) []string {
		var res []string
		for _, r := range rs {
			res = append(res, r.Ticker)
		}
		return res
	}

	got, err := d.DiscoverAssets(ctx, " bi ")
	if err != nil {
		t.Fatalf("DiscoverAssets() error: %v", err)
	}
	if diff := cmp.Diff([]string{"BTC", "WBTC"}, tickers(got)); diff != "" {
		t.Errorf("DiscoverAssets(bi) mismatch (-want +got):\n%s", diff)
	}
	if got[0].Source != aurora.SourceCoinGecko {
		t.Errorf("DiscoverAssets() listed %+v first, want the search result", got[0])
	}

	d.DiscoverAssets(ctx, "bi")
	got, _ = d.DiscoverAssets(ctx, "u")
	if diff := cmp.Diff([]string{"ETH"}, tickers(got)); diff != "" {
		t.Errorf("DiscoverAssets(u) mismatch (-want +got):\n%s", diff)
	}
	if n := api.count("SearchExternal"); n != 1 {
		t.Errorf("SearchExternal calls = %d, want 1: cached, and skipped for short queries", n)
	}
	if n := api.count("PopularAssets"); n != 1 {
		t.Errorf("PopularAssets calls = %d, want 1", n)
	}
}

func TestAdoptAsset(t *testing.T) {
	ctx := context.Background()
	d, api := newTestDashboard()
	const id = "5c7e1d2a-3b4f-4a6e-9d8c-7b6a5f4e3d2c"
	api.assets[id] = aurora.Asset{ID: id, Ticker: "ETH"}

	found, _ := d.DiscoverAssets(ctx, "bitcoin")
	a, err := d.AdoptAsset(ctx, found[0])
	if err != nil {
		t.Fatalf("AdoptAsset(external) error: %v", err)
	}
	if a.Ticker != "BTC" || len(api.created) != 1 {
		t.Fatalf("AdoptAsset(external) = %+v, created %v", a, api.created)
	}
	if c := api.created[0]; c.ExternalID != "bitcoin" || c.Source != aurora.SourceCoinGecko || c.SyncFrequencyHours != aurora.DefaultSyncFrequencyHours {
		t.Errorf("created asset = %+v", c)
	}
	// the search results no longer describe the registered assets
	d.DiscoverAssets(ctx, "bitcoin")
	if n := api.count("SearchExternal"); n != 2 {
		t.Errorf("SearchExternal calls = %d, want a refetch after adoption", n)
	}

	a, err = d.AdoptAsset(ctx, aurora.AssetResult{ID: id, Ticker: "ETH", ExternalID: "ethereum"})
	if err != nil || a.ID != id {
		t.Errorf("AdoptAsset(registered) = %+v, %v", a, err)
	}
	if len(api.created) != 1 {
		t.Errorf("a registered asset was created again")
	}

	if _, err := d.AdoptAsset(ctx, aurora.AssetResult{Ticker: "HOUSE", Source: aurora.SourceManual}); !errors.Is(err, errNotAdoptable) {
		t.Errorf("AdoptAsset(manual) error = %v", err)
	}
}
