package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/aurora"
	"github.com/etnz/aurora/renderer"
	"github.com/google/subcommands"
)

const assetsRoute = "/assets"

func assetsCmd() *group {
	return &group{
		name:     "assets",
		synopsis: "manage the assets of the portfolio",
		commands: []subcommands.Command{
			&assetListCmd{}, &assetShowCmd{}, &assetSearchCmd{}, &assetDiscoverCmd{},
			&assetAddCmd{}, &assetUpdateCmd{}, &assetDeleteCmd{},
		},
	}
}

// oneArg returns the single positional argument of f.
func oneArg(f *flag.FlagSet, what string) (string, bool) {
	if f.NArg() != 1 {
		fmt.Fprintf(stderr, "Error: expected exactly one %s argument.\n", what)
		return "", false
	}
	return f.Arg(0), true
}

type assetListCmd struct {
	assetType string
	class     string
	search    string
	limit     int
}

func (*assetListCmd) Name() string     { return "list" }
func (*assetListCmd) Synopsis() string { return "list the assets" }
func (*assetListCmd) Usage() string {
	return `aurora assets list [-type <type>] [-class <classification>] [-search <text>] [-limit <n>]
`
}

func (c *assetListCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.assetType, "type", "", "Only this asset type")
	f.StringVar(&c.class, "class", "", "Only this classification")
	f.StringVar(&c.search, "search", "", "Only the assets whose ticker or name contains this text")
	f.IntVar(&c.limit, "limit", 0, "Maximum number of assets")
}

func (c *assetListCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, status := open(ctx, assetsRoute)
	if e == nil {
		return status
	}
	l, err := e.dash.Assets(ctx, aurora.AssetSearch{
		Search:         c.search,
		Type:           aurora.AssetType(strings.ToUpper(c.assetType)),
		Classification: aurora.Classification(c.class),
		Limit:          c.limit,
	})
	if err != nil {
		return fail("listing assets", err)
	}
	printMarkdown(renderer.RenderAssets(l.Assets))
	return subcommands.ExitSuccess
}

type assetShowCmd struct{}

func (*assetShowCmd) Name() string     { return "show" }
func (*assetShowCmd) Synopsis() string { return "show an asset and its transactions" }
func (*assetShowCmd) Usage() string {
	return `aurora assets show <id|ticker>
`
}

func (*assetShowCmd) SetFlags(*flag.FlagSet) {}

func (*assetShowCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ref, ok := oneArg(f, "asset")
	if !ok {
		return subcommands.ExitUsageError
	}
	e, status := open(ctx, assetsRoute)
	if e == nil {
		return status
	}
	a, err := resolveAsset(ctx, e.dash, ref)
	if err != nil {
		return fail("reading asset", err)
	}
	txs, err := e.dash.AssetTransactions(ctx, a.ID)
	if err != nil {
		return fail("reading asset transactions", err)
	}
	printMarkdown(renderer.RenderAsset(a, txs))
	return subcommands.ExitSuccess
}

type assetSearchCmd struct{}

func (*assetSearchCmd) Name() string     { return "search" }
func (*assetSearchCmd) Synopsis() string { return "search assets by ticker or name" }
func (*assetSearchCmd) Usage() string {
	return `aurora assets search <text>

  Searches at least 2 characters, and returns the first 10 matches.
`
}

func (*assetSearchCmd) SetFlags(*flag.FlagSet) {}

func (*assetSearchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	q := strings.Join(f.Args(), " ")
	e, status := open(ctx, assetsRoute)
	if e == nil {
		return status
	}
	assets, err := e.dash.SearchAssets(ctx, q)
	if err != nil {
		return fail("searching assets", err)
	}
	printMarkdown(renderer.RenderAssets(assets))
	return subcommands.ExitSuccess
}

type assetAddCmd struct {
	a aurora.AssetCreate
}

func (*assetAddCmd) Name() string     { return "add" }
func (*assetAddCmd) Synopsis() string { return "register a new asset" }
func (*assetAddCmd) Usage() string {
	return `aurora assets add -ticker <ticker> -name <name> -type <type> -class <classification> -currency <code> [-notes <text>]
`
}

func (c *assetAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.a.Ticker, "ticker", "", "Ticker symbol (required)")
	f.StringVar(&c.a.Name, "name", "", "Asset name (required)")
	f.StringVar((*string)(&c.a.Type), "type", "", "Asset type: ETF, STOCK, CRYPTO, BOND, CASH, COMMODITY or OTHER (required)")
	f.StringVar((*string)(&c.a.Classification), "class", "", "Classification: renta_fija, renta_variable, crypto, alternative or cash (required)")
	f.StringVar(&c.a.Currency, "currency", "", "Currency, 3-letter code (required)")
	f.StringVar(&c.a.Notes, "notes", "", "Free notes")
}

func (c *assetAddCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, status := open(ctx, assetsRoute)
	if e == nil {
		return status
	}
	c.a.Type = aurora.AssetType(strings.ToUpper(string(c.a.Type)))
	a, err := e.dash.CreateAsset(ctx, c.a)
	if err != nil {
		return fail("adding asset", err)
	}
	printMarkdown(renderer.RenderAsset(a, nil))
	return subcommands.ExitSuccess
}

type assetUpdateCmd struct {
	ticker, name, assetType, class, currency, notes string
}

func (*assetUpdateCmd) Name() string     { return "update" }
func (*assetUpdateCmd) Synopsis() string { return "update an asset" }
func (*assetUpdateCmd) Usage() string {
	return `aurora assets update [-ticker <ticker>] [-name <name>] [-type <type>] [-class <classification>] [-currency <code>] [-notes <text>] <id|ticker>

  Only the given flags are updated.
`
}

func (c *assetUpdateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "ticker", "", "New ticker symbol")
	f.StringVar(&c.name, "name", "", "New name")
	f.StringVar(&c.assetType, "type", "", "New asset type")
	f.StringVar(&c.class, "class", "", "New classification")
	f.StringVar(&c.currency, "currency", "", "New currency")
	f.StringVar(&c.notes, "notes", "", "New notes")
}

func (c *assetUpdateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ref, ok := oneArg(f, "asset")
	if !ok {
		return subcommands.ExitUsageError
	}
	var u aurora.AssetUpdate
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "ticker":
			t := strings.ToUpper(c.ticker)
			u.Ticker = &t
		case "name":
			u.Name = &c.name
		case "type":
			t := aurora.AssetType(strings.ToUpper(c.assetType))
			u.Type = &t
		case "class":
			cl := aurora.Classification(c.class)
			u.Classification = &cl
		case "currency":
			cur := strings.ToUpper(c.currency)
			u.Currency = &cur
		case "notes":
			u.Notes = &c.notes
		}
	})
	if u == (aurora.AssetUpdate{}) {
		fmt.Fprintln(stderr, "Error: nothing to update.")
		return subcommands.ExitUsageError
	}

	e, status := open(ctx, assetsRoute)
	if e == nil {
		return status
	}
	a, err := resolveAsset(ctx, e.dash, ref)
	if err != nil {
		return fail("reading asset", err)
	}
	if a, err = e.dash.UpdateAsset(ctx, a.ID, u); err != nil {
		return fail("updating asset", err)
	}
	printMarkdown(renderer.RenderAsset(a, nil))
	return subcommands.ExitSuccess
}

type assetDeleteCmd struct{}

func (*assetDeleteCmd) Name() string     { return "delete" }
func (*assetDeleteCmd) Synopsis() string { return "delete an asset" }
func (*assetDeleteCmd) Usage() string {
	return `aurora assets delete <id|ticker>
`
}

func (*assetDeleteCmd) SetFlags(*flag.FlagSet) {}

func (*assetDeleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ref, ok := oneArg(f, "asset")
	if !ok {
		return subcommands.ExitUsageError
	}
	e, status := open(ctx, assetsRoute)
	if e == nil {
		return status
	}
	a, err := resolveAsset(ctx, e.dash, ref)
	if err != nil {
		return fail("reading asset", err)
	}
	if err := e.dash.DeleteAsset(ctx, a.ID); err != nil {
		return fail("deleting asset", err)
	}
	fmt.Fprintf(stdout, "Deleted asset %s.\n", a.Ticker)
	return subcommands.ExitSuccess
}
