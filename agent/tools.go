package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/etnz/aurora"
	"github.com/etnz/aurora/date"
	"github.com/etnz/aurora/renderer"
	"google.golang.org/genai"
)

// Portfolio is the read access to the portfolio the analyst needs.
type Portfolio interface {
	Summary(ctx context.Context, currency string) (*aurora.Summary, error)
	Holdings(ctx context.Context, search aurora.PortfolioSearch) (*aurora.Holdings, error)
	Allocation(ctx context.Context, g aurora.Grouping) ([]aurora.Allocation, error)
	Assets(ctx context.Context, search aurora.AssetSearch) (*aurora.AssetList, error)
	Transactions(ctx context.Context, search aurora.TransactionSearch) (*aurora.TransactionList, error)
	LatestPrices(ctx context.Context) ([]aurora.LatestPrice, error)
	Prices(ctx context.Context, assetID string, r date.Range) (*aurora.PriceSeries, error)
}

func str(description string, enum ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: description, Enum: enum}
}

func object(props map[string]*genai.Schema, required ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required}
}

var markdownTable = &genai.Schema{Type: genai.TypeString, Description: "A markdown document with tables."}

// Tools returns the functions reading p.
func Tools(p Portfolio) []Function {
	return []Function{
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Summary",
				Description: "Summary returns the portfolio totals: value, invested amount, profit and loss, and the allocation by type and by classification.",
				Parameters: object(map[string]*genai.Schema{
					"currency": str("The ISO 4217 reporting currency, USD by default."),
				}),
				Response: markdownTable,
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				cur, err := stringArg(args, "currency", false)
				if err != nil {
					return "", err
				}
				s, err := p.Summary(ctx, strings.ToUpper(cur))
				if err != nil {
					return "", err
				}
				return renderer.RenderSummary(s, renderer.SummaryOptions{}), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Holdings",
				Description: "Holdings lists the positions: quantity, average and current price, value, unrealized profit and weight of each asset held.",
				Parameters: object(map[string]*genai.Schema{
					"asset_type":     str("Only the assets of this type.", types()...),
					"classification": str("Only the assets of this classification.", classes()...),
				}),
				Response: markdownTable,
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				var search aurora.PortfolioSearch
				t, err := stringArg(args, "asset_type", false)
				if err != nil {
					return "", err
				}
				c, err := stringArg(args, "classification", false)
				if err != nil {
					return "", err
				}
				search.Type, search.Classification = aurora.AssetType(t), aurora.Classification(c)
				h, err := p.Holdings(ctx, search)
				if err != nil {
					return "", err
				}
				return renderer.RenderHoldings(h), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Allocation",
				Description: "Allocation returns the weight of each asset type, or of each classification, in the portfolio.",
				Parameters: object(map[string]*genai.Schema{
					"grouping": str("How to group assets.", string(aurora.ByType), string(aurora.ByClassification)),
				}, "grouping"),
				Response: markdownTable,
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				g, err := stringArg(args, "grouping", true)
				if err != nil {
					return "", err
				}
				grouping := aurora.Grouping(g)
				if grouping != aurora.ByType && grouping != aurora.ByClassification {
					return "", fmt.Errorf("unknown grouping %q", g)
				}
				a, err := p.Allocation(ctx, grouping)
				if err != nil {
					return "", err
				}
				return renderer.RenderAllocation(grouping, a), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Assets",
				Description: "Assets lists the assets known to the portfolio with their ticker, name, type, classification, currency and ID.",
				Parameters: object(map[string]*genai.Schema{
					"search": str("Only the assets whose ticker or name contains this text."),
				}),
				Response: markdownTable,
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				q, err := stringArg(args, "search", false)
				if err != nil {
					return "", err
				}
				l, err := p.Assets(ctx, aurora.AssetSearch{Search: q})
				if err != nil {
					return "", err
				}
				return renderer.RenderAssets(l.Assets), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Transactions",
				Description: "Transactions lists the buy and sell transactions, most recent first.",
				Parameters: object(map[string]*genai.Schema{
					"asset_id": str("Only the transactions of this asset ID."),
					"from":     str("Only the transactions on or after this date."),
					"to":       str("Only the transactions on or before this date."),
					"limit":    {Type: genai.TypeInteger, Description: "The maximum number of transactions."},
				}),
				Response: markdownTable,
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				var search aurora.TransactionSearch
				var err error
				if search.AssetID, err = stringArg(args, "asset_id", false); err != nil {
					return "", err
				}
				if search.Range, err = rangeArgs(args); err != nil {
					return "", err
				}
				if search.Limit, err = intArg(args, "limit"); err != nil {
					return "", err
				}
				l, err := p.Transactions(ctx, search)
				if err != nil {
					return "", err
				}
				return renderer.RenderTransactions(l.Transactions), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "LatestPrices",
				Description: "LatestPrices returns the last known price of every asset.",
				Response:    markdownTable,
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				prices, err := p.LatestPrices(ctx)
				if err != nil {
					return "", err
				}
				l, err := p.Assets(ctx, aurora.AssetSearch{})
				if err != nil {
					return "", err
				}
				return renderer.RenderLatestPrices(prices, l.Assets), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "PriceHistory",
				Description: "PriceHistory returns the recorded prices of an asset.",
				Parameters: object(map[string]*genai.Schema{
					"asset_id": str("The asset ID."),
					"from":     str("The first date."),
					"to":       str("The last date."),
				}, "asset_id"),
				Response: markdownTable,
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				id, err := stringArg(args, "asset_id", true)
				if err != nil {
					return "", err
				}
				r, err := rangeArgs(args)
				if err != nil {
					return "", err
				}
				s, err := p.Prices(ctx, id, r)
				if err != nil {
					return "", err
				}
				return renderer.RenderPriceSeries(s), nil
			},
		},
	}
}

// rangeArgs reads the optional "from" and "to" date arguments.
func rangeArgs(args map[string]any) (r date.Range, err error) {
	for name, d := range map[string]*date.Date{"from": &r.From, "to": &r.To} {
		s, err := stringArg(args, name, false)
		if err != nil {
			return r, err
		}
		if s == "" {
			continue
		}
		if *d, err = date.Parse(s); err != nil {
			return r, fmt.Errorf("argument %q: %w", name, err)
		}
	}
	return r, r.Validate()
}

func types() []string {
	res := make([]string, len(aurora.AssetTypes))
	for i, t := range aurora.AssetTypes {
		res[i] = string(t)
	}
	return res
}

func classes() []string {
	res := make([]string, len(aurora.Classifications))
	for i, c := range aurora.Classifications {
		res[i] = string(c)
	}
	return res
}
