package renderer

import (
	"strings"
	"testing"

	"github.com/etnz/aurora"
	"github.com/etnz/aurora/date"
	"github.com/etnz/aurora/session"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// doc is a parsed markdown document.
type doc struct {
	headings []string
	tables   [][][]string // rows of cells, header included
}

func parse(t *testing.T, md string) doc {
	t.Helper()
	if strings.Contains(md, "error ") && strings.Contains(md, "template") {
		t.Fatalf("rendering failed: %s", md)
	}
	src := []byte(md)
	p := goldmark.New(goldmark.WithExtensions(extension.Table)).Parser()
	root := p.Parse(text.NewReader(src))

	var d doc
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			d.headings = append(d.headings, plain(n, src))
			return ast.WalkSkipChildren, nil
		case *east.Table:
			var rows [][]string
			for r := n.FirstChild(); r != nil; r = r.NextSibling() {
				var cells []string
				for c := r.FirstChild(); c != nil; c = c.NextSibling() {
					cells = append(cells, plain(c, src))
				}
				rows = append(rows, cells)
			}
			d.tables = append(d.tables, rows)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return d
}

// plain returns the text content of n.
func plain(n ast.Node, src []byte) string {
	var b strings.Builder
	ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			switch c := c.(type) {
			case *ast.Text:
				b.Write(c.Segment.Value(src))
			case *ast.String:
				b.Write(c.Value)
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// row returns the first row of table whose first cell is key.
func (d doc) row(table int, key string) []string {
	if table >= len(d.tables) {
		return nil
	}
	for _, r := range d.tables[table] {
		if len(r) > 0 && r[0] == key {
			return r
		}
	}
	return nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRenderSummary(t *testing.T) {
	s := &aurora.Summary{
		TotalValue:        dec("1234.5"),
		TotalInvested:     dec("1000"),
		TotalPnL:          dec("234.5"),
		TotalPnLPct:       23.45,
		HoldingsCount:     2,
		TransactionsCount: 5,
		Currency:          "USD",
		AllocationByType: []aurora.Allocation{
			{AssetType: "ETF", Value: dec("1000"), AllocationPct: 81, Count: 1},
			{AssetType: "CRYPTO", Value: dec("234.5"), AllocationPct: 19, Count: 1},
		},
		AllocationByClassification: []aurora.Allocation{
			{Class: "renta_variable", Value: dec("1234.5"), AllocationPct: 100, Count: 2},
		},
	}
	recent := []aurora.Transaction{{
		ID: "t1", AssetID: "a1", Date: date.New(2025, 3, 1), Type: aurora.Buy,
		Quantity: dec("2"), TotalAmount: dec("100"), Currency: "USD",
		Asset: &aurora.Asset{Ticker: "VWCE"},
	}}

	d := parse(t, RenderSummary(s, SummaryOptions{Recent: recent}))
	wantHeadings := []string{"Portfolio Summary", "Allocation by Type", "Allocation by Classification", "Recent Transactions"}
	if strings.Join(d.headings, ",") != strings.Join(wantHeadings, ",") {
		t.Errorf("headings = %q, want %q", d.headings, wantHeadings)
	}
	if len(d.tables) != 4 {
		t.Fatalf("got %d tables, want 4", len(d.tables))
	}
	if r := d.row(0, "Total Value"); len(r) != 2 || !strings.Contains(r[1], "1,234.50") {
		t.Errorf("total row = %q", r)
	}
	if r := d.row(0, "Holdings"); len(r) != 2 || r[1] != "2" {
		t.Errorf("holdings row = %q", r)
	}
	if r := d.row(1, "CRYPTO"); len(r) != 4 || r[3] != "1" {
		t.Errorf("crypto allocation row = %q", r)
	}
	if r := d.row(2, "Equity"); r == nil {
		t.Errorf("classification table misses Equity: %q", d.tables[2])
	}
	if r := d.row(3, "2025-03-01"); len(r) != 5 || r[1] != "VWCE" || r[2] != "BUY" {
		t.Errorf("recent row = %q", r)
	}

	d = parse(t, RenderSummary(s, SummaryOptions{SkipAllocation: true}))
	if len(d.headings) != 1 || len(d.tables) != 1 {
		t.Errorf("summary without options = %q headings, %d tables", d.headings, len(d.tables))
	}
}

func TestRenderHoldings(t *testing.T) {
	h := &aurora.Holdings{
		Holdings: []aurora.Holding{{
			Asset:         aurora.Asset{Ticker: "VWCE", Name: "All | World"},
			TotalQuantity: dec("12.5"),
			CurrentValue:  dec("1500"),
			UnrealizedPnL: dec("-20"),
			AllocationPct: 100,
		}},
		Summary: aurora.Summary{TotalValue: dec("1500"), Currency: "USD"},
	}
	d := parse(t, RenderHoldings(h))
	if len(d.tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(d.tables))
	}
	r := d.row(0, "VWCE")
	if len(r) != 9 {
		t.Fatalf("holding row = %q, want 9 cells", r)
	}
	if !strings.Contains(r[1], "World") {
		t.Errorf("name cell = %q, want the pipe escaped", r[1])
	}

	empty := RenderHoldings(&aurora.Holdings{})
	if !strings.Contains(empty, "No holdings") {
		t.Errorf("empty holdings = %q", empty)
	}
}

func TestRenderAllocation(t *testing.T) {
	a := []aurora.Allocation{{Class: "renta_fija", Value: dec("10"), AllocationPct: 100, Count: 1}}
	d := parse(t, RenderAllocation(aurora.ByClassification, a))
	if len(d.headings) != 1 || d.headings[0] != "Allocation by Classification" {
		t.Errorf("headings = %q", d.headings)
	}
	if r := d.row(0, "Fixed income"); r == nil {
		t.Errorf("allocation table = %q", d.tables)
	}
}

func TestRenderDiscovery(t *testing.T) {
	price := dec("64250.5")
	change := 1.5
	results := []aurora.AssetResult{
		{ID: "0b8c4f4e-9a51-4d4f-8f0e-6f1b8d2f1c3a", Ticker: "BTC", Name: "Bitcoin", Type: aurora.AssetCrypto, Currency: "usd", Source: aurora.SourceCoinGecko, CurrentPrice: &price, Change24h: &change},
		{ID: "ethereum", Ticker: "eth", Name: "Ethereum", Type: aurora.AssetCrypto, Currency: "USD", Source: aurora.SourceCoinGecko, ExternalID: "ethereum"},
	}
	d := parse(t, RenderDiscovery(results))
	if r := d.row(0, "BTC"); len(r) != 8 || r[3] != "USD" || r[4] != "$64,250.50" || r[5] != "+1.5%" || r[7] != "registered" {
		t.Errorf("BTC row = %q", r)
	}
	if r := d.row(0, "ETH"); len(r) != 8 || r[4] != "N/A" || r[7] != "to add" {
		t.Errorf("ETH row = %q", r)
	}
	if got := RenderDiscovery(nil); !strings.Contains(got, "_No assets found._") {
		t.Errorf("empty discovery = %q", got)
	}
}

func TestRenderAssetsAndTransactions(t *testing.T) {
	assets := []aurora.Asset{
		{ID: "a1", Ticker: "VWCE", Name: "Vanguard FTSE All-World", Type: aurora.AssetETF, Classification: aurora.ClassEquity, Currency: "EUR"},
		{ID: "a2", Ticker: "BTC", Type: aurora.AssetCrypto, Classification: aurora.ClassCrypto, Currency: "USD"},
	}
	d := parse(t, RenderAssets(assets))
	if r := d.row(0, "BTC"); len(r) != 6 || r[1] != "-" || r[3] != "Crypto" {
		t.Errorf("BTC row = %q", r)
	}

	txs := []aurora.Transaction{
		{ID: "t1", AssetID: "a1", Date: date.New(2025, 1, 2), Type: aurora.Buy, Quantity: dec("3"), PricePerUnit: dec("100"), TotalAmount: dec("300"), Commission: dec("1"), Currency: "EUR"},
		{ID: "t2", AssetID: "a1", Date: date.New(2025, 2, 3), Type: aurora.Sell, Quantity: dec("1"), PricePerUnit: dec("110"), TotalAmount: dec("110"), Currency: "EUR"},
	}
	d = parse(t, RenderTransactions(txs))
	if len(d.tables) != 1 || len(d.tables[0]) != 3 {
		t.Fatalf("transactions tables = %q", d.tables)
	}
	if r := d.row(0, "2025-01-02"); len(r) != 8 || !strings.HasPrefix(r[6], "-") {
		t.Errorf("buy row = %q, want a negative amount", r)
	}
	if r := d.row(0, "2025-02-03"); len(r) != 8 || !strings.HasPrefix(r[6], "+") {
		t.Errorf("sell row = %q, want a positive amount", r)
	}

	d = parse(t, RenderAsset(&assets[0], txs))
	if len(d.headings) != 2 || d.headings[0] != "VWCE: Vanguard FTSE All-World" {
		t.Errorf("asset headings = %q", d.headings)
	}
	d = parse(t, RenderAsset(&assets[1], nil))
	if len(d.headings) != 1 {
		t.Errorf("asset without transactions headings = %q", d.headings)
	}

	d = parse(t, RenderTransaction(&txs[0]))
	if len(d.headings) != 1 || d.headings[0] != "BUY a1 on 2025-01-02" {
		t.Errorf("transaction heading = %q", d.headings)
	}
}

func TestRenderPrices(t *testing.T) {
	prices := []aurora.LatestPrice{
		{AssetID: "a1", Price: dec("101.25"), Date: date.New(2025, 3, 1), Source: "yahoo"},
		{AssetID: "zz", Price: dec("1")},
	}
	d := parse(t, RenderLatestPrices(prices, []aurora.Asset{{ID: "a1", Ticker: "VWCE"}}))
	if r := d.row(0, "VWCE"); len(r) != 4 || r[2] != "2025-03-01" || r[3] != "yahoo" {
		t.Errorf("VWCE row = %q", r)
	}
	if r := d.row(0, "zz"); len(r) != 4 || r[2] != "-" {
		t.Errorf("unknown asset row = %q", r)
	}

	d = parse(t, RenderPriceSeries(&aurora.PriceSeries{AssetID: "a1", Data: []aurora.Price{{Date: date.New(2025, 3, 1), Price: dec("3")}}}))
	if len(d.tables) != 1 || len(d.tables[0]) != 2 {
		t.Errorf("history tables = %q", d.tables)
	}
}

func TestRenderHealth(t *testing.T) {
	h := &aurora.HealthCheck{Status: "healthy", Service: "spectra", Version: "1.2.0"}
	detailed := &aurora.DetailedHealthCheck{Checks: map[string]aurora.CheckStatus{
		"database": {Status: "healthy"},
		"prices":   {Status: "unhealthy", Error: "timeout"},
	}}
	d := parse(t, RenderHealth(h, detailed))
	if len(d.tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(d.tables))
	}
	if r := d.row(1, "prices"); len(r) != 3 || r[2] != "timeout" {
		t.Errorf("prices check = %q", r)
	}
	if d := parse(t, RenderHealth(h, nil)); len(d.tables) != 1 {
		t.Errorf("health without details has %d tables", len(d.tables))
	}
}

func TestRenderUser(t *testing.T) {
	st := session.State{Authenticated: true, Token: "opaque", User: &aurora.User{ID: "u1", Username: "alice", Email: "alice@example.com"}}
	d := parse(t, RenderUser(st, "http://localhost:8000"))
	if len(d.headings) != 1 || d.headings[0] != "Signed in as alice" {
		t.Errorf("headings = %q", d.headings)
	}
	if r := d.row(0, "Token"); len(r) != 2 || r[1] != "opaque token" {
		t.Errorf("token row = %q", r)
	}

	anon := RenderUser(session.State{}, "http://localhost:8000")
	if !strings.Contains(anon, "Not signed in") {
		t.Errorf("anonymous user = %q", anon)
	}
}
