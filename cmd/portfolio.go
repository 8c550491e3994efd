package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/aurora"
	"github.com/etnz/aurora/dashboard"
	"github.com/etnz/aurora/renderer"
	"github.com/google/subcommands"
)

const dashboardRoute = "/dashboard"

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	currency     string
	recent       int
	noAllocation bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the portfolio summary" }
func (*summaryCmd) Usage() string {
	return `aurora summary [-currency <code>] [-recent <n>] [-no-allocation]

  Displays the portfolio value, invested amount, profit and loss, the
  allocation by type and classification, and the most recent transactions.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", aurora.BaseCurrency, "Reporting currency, 3-letter code")
	f.IntVar(&c.recent, "recent", dashboard.RecentLimit, "Number of recent transactions to show, 0 for none")
	f.BoolVar(&c.noAllocation, "no-allocation", false, "Do not show the allocation tables")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if len(c.currency) != 3 {
		fmt.Fprintf(stderr, "Error: invalid currency %q, want a 3-letter code.\n", c.currency)
		return subcommands.ExitUsageError
	}
	e, status := open(ctx, dashboardRoute)
	if e == nil {
		return status
	}

	s, err := e.dash.Summary(ctx, strings.ToUpper(c.currency))
	if err != nil {
		return fail("reading summary", err)
	}
	opts := renderer.SummaryOptions{SkipAllocation: c.noAllocation}
	if c.recent > 0 {
		if opts.Recent, err = e.dash.RecentTransactions(ctx, c.recent); err != nil {
			return fail("reading recent transactions", err)
		}
	}
	printMarkdown(renderer.RenderSummary(s, opts))
	return subcommands.ExitSuccess
}

type holdingsCmd struct {
	assetType string
	class     string
	minWeight float64
	active    bool
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "display the positions held" }
func (*holdingsCmd) Usage() string {
	return `aurora holdings [-type <type>] [-class <classification>] [-min-weight <pct>] [-active]

  Displays the quantity, prices, value and unrealized profit of every asset.
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.assetType, "type", "", "Only this asset type (ETF, STOCK, CRYPTO...)")
	f.StringVar(&c.class, "class", "", "Only this classification (renta_fija, renta_variable, crypto...)")
	f.Float64Var(&c.minWeight, "min-weight", 0, "Only the positions weighting at least this percentage")
	f.BoolVar(&c.active, "active", false, "Only the positions with a non zero quantity")
}

func (c *holdingsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, status := open(ctx, dashboardRoute)
	if e == nil {
		return status
	}
	search := aurora.PortfolioSearch{
		Type:             aurora.AssetType(strings.ToUpper(c.assetType)),
		Classification:   aurora.Classification(c.class),
		MinAllocationPct: c.minWeight,
	}
	if c.active {
		search.OnlyActive = &c.active
	}
	h, err := e.dash.Holdings(ctx, search)
	if err != nil {
		return fail("reading holdings", err)
	}
	printMarkdown(renderer.RenderHoldings(h))
	return subcommands.ExitSuccess
}

type allocationCmd struct {
	by string
}

func (*allocationCmd) Name() string     { return "allocation" }
func (*allocationCmd) Synopsis() string { return "display the portfolio allocation" }
func (*allocationCmd) Usage() string {
	return `aurora allocation [-by type|classification]

  Displays the weight of each asset type or classification.
`
}

func (c *allocationCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.by, "by", string(aurora.ByType), "Grouping: type or classification")
}

func (c *allocationCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	g := aurora.Grouping(c.by)
	if g != aurora.ByType && g != aurora.ByClassification {
		fmt.Fprintf(stderr, "Error: invalid grouping %q, want type or classification.\n", c.by)
		return subcommands.ExitUsageError
	}
	e, status := open(ctx, dashboardRoute)
	if e == nil {
		return status
	}
	a, err := e.dash.Allocation(ctx, g)
	if err != nil {
		return fail("reading allocation", err)
	}
	printMarkdown(renderer.RenderAllocation(g, a))
	return subcommands.ExitSuccess
}

type refreshCmd struct {
	all bool
}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "drop cached data" }
func (*refreshCmd) Usage() string {
	return `aurora refresh [-all]

  Drops the cached portfolio reports, or the whole cache with -all, so that
  the next commands read fresh data.
`
}

func (c *refreshCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.all, "all", false, "Empty the whole cache")
}

func (c *refreshCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, status := open(ctx, "")
	if e == nil {
		return status
	}
	if !c.all {
		e.dash.Refresh()
		fmt.Fprintln(stdout, "Portfolio reports will be refreshed.")
		return subcommands.ExitSuccess
	}
	if err := e.dash.Forget(); err != nil {
		return fail("emptying the cache", err)
	}
	fmt.Fprintln(stdout, "Cache emptied.")
	return subcommands.ExitSuccess
}
