package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/etnz/aurora"
	"github.com/etnz/aurora/date"
	"github.com/etnz/aurora/renderer"
	"github.com/google/subcommands"
)

const pricesRoute = "/assets/prices"

func pricesCmd() *group {
	return &group{
		name:     "prices",
		synopsis: "read and synchronize asset prices",
		commands: []subcommands.Command{
			&pricesLatestCmd{}, &pricesHistoryCmd{}, &pricesSyncCmd{},
		},
	}
}

type pricesLatestCmd struct{}

func (*pricesLatestCmd) Name() string     { return "latest" }
func (*pricesLatestCmd) Synopsis() string { return "show the last known price of every asset" }
func (*pricesLatestCmd) Usage() string {
	return `aurora prices latest
`
}

func (*pricesLatestCmd) SetFlags(*flag.FlagSet) {}

func (*pricesLatestCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, status := open(ctx, pricesRoute)
	if e == nil {
		return status
	}
	prices, err := e.dash.LatestPrices(ctx)
	if err != nil {
		return fail("reading prices", err)
	}
	l, err := e.dash.Assets(ctx, aurora.AssetSearch{})
	if err != nil {
		return fail("listing assets", err)
	}
	printMarkdown(renderer.RenderLatestPrices(prices, l.Assets))
	return subcommands.ExitSuccess
}

type pricesHistoryCmd struct {
	from date.Date
	to   date.Date
}

func (*pricesHistoryCmd) Name() string     { return "history" }
func (*pricesHistoryCmd) Synopsis() string { return "show the price history of an asset" }
func (*pricesHistoryCmd) Usage() string {
	return `aurora prices history [-from <date>] [-to <date>] <id|ticker>
`
}

func (c *pricesHistoryCmd) SetFlags(f *flag.FlagSet) {
	f.Var(dateValue{&c.from}, "from", "First date")
	f.Var(dateValue{&c.to}, "to", "Last date")
}

func (c *pricesHistoryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ref, ok := oneArg(f, "asset")
	if !ok {
		return subcommands.ExitUsageError
	}
	r := date.Range{From: c.from, To: c.to}
	if err := r.Validate(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	e, status := open(ctx, pricesRoute)
	if e == nil {
		return status
	}
	a, err := resolveAsset(ctx, e.dash, ref)
	if err != nil {
		return fail("reading asset", err)
	}
	s, err := e.dash.Prices(ctx, a.ID, r)
	if err != nil {
		return fail("reading prices", err)
	}
	printMarkdown(renderer.RenderPriceSeries(s))
	return subcommands.ExitSuccess
}

type pricesSyncCmd struct{}

func (*pricesSyncCmd) Name() string     { return "sync" }
func (*pricesSyncCmd) Synopsis() string { return "ask the backend to fetch new prices" }
func (*pricesSyncCmd) Usage() string {
	return `aurora prices sync [<id|ticker>...]

  Synchronizes the prices of the given assets, or of all assets.
`
}

func (*pricesSyncCmd) SetFlags(*flag.FlagSet) {}

func (*pricesSyncCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, status := open(ctx, pricesRoute)
	if e == nil {
		return status
	}
	ids := make([]string, 0, f.NArg())
	for _, ref := range f.Args() {
		a, err := resolveAsset(ctx, e.dash, ref)
		if err != nil {
			return fail("reading asset", err)
		}
		ids = append(ids, a.ID)
	}
	res, err := e.dash.SyncPrices(ctx, ids...)
	if err != nil {
		return fail("synchronizing prices", err)
	}
	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fail("reading the synchronization result", err)
	}
	printMarkdown(fmt.Sprintf("# Price Synchronization\n\n```json\n%s\n```\n", out))
	return subcommands.ExitSuccess
}
