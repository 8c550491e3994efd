package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/aurora"
	"github.com/etnz/aurora/date"
	"github.com/etnz/aurora/renderer"
	"github.com/google/subcommands"
)

const transactionsRoute = "/transactions"

func txCmd() *group {
	return &group{
		name:     "tx",
		synopsis: "manage the buy and sell transactions",
		commands: []subcommands.Command{
			&txListCmd{}, &txShowCmd{}, &txAddCmd{}, &txDeleteCmd{},
		},
	}
}

type txListCmd struct {
	asset  string
	from   date.Date
	to     date.Date
	txType string
	limit  int
}

func (*txListCmd) Name() string     { return "list" }
func (*txListCmd) Synopsis() string { return "list the transactions" }
func (*txListCmd) Usage() string {
	return `aurora tx list [-asset <id|ticker>] [-from <date>] [-to <date>] [-type BUY|SELL] [-limit <n>]

  Lists the transactions, most recent first. See 'aurora topic dates' for the
  date formats.
`
}

func (c *txListCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asset, "asset", "", "Only the transactions of this asset")
	f.Var(dateValue{&c.from}, "from", "Only the transactions on or after this date")
	f.Var(dateValue{&c.to}, "to", "Only the transactions on or before this date")
	f.StringVar(&c.txType, "type", "", "Only BUY or SELL transactions")
	f.IntVar(&c.limit, "limit", 0, "Maximum number of transactions")
}

func (c *txListCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	search := aurora.TransactionSearch{
		Range: date.Range{From: c.from, To: c.to},
		Type:  aurora.TransactionType(strings.ToUpper(c.txType)),
		Limit: c.limit,
	}
	if err := search.Range.Validate(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	e, status := open(ctx, transactionsRoute)
	if e == nil {
		return status
	}
	if c.asset != "" {
		a, err := resolveAsset(ctx, e.dash, c.asset)
		if err != nil {
			return fail("reading asset", err)
		}
		search.AssetID = a.ID
	}
	l, err := e.dash.Transactions(ctx, search)
	if err != nil {
		return fail("listing transactions", err)
	}
	printMarkdown(renderer.RenderTransactions(l.Transactions))
	return subcommands.ExitSuccess
}

type txShowCmd struct{}

func (*txShowCmd) Name() string     { return "show" }
func (*txShowCmd) Synopsis() string { return "show a transaction" }
func (*txShowCmd) Usage() string {
	return `aurora tx show <id>
`
}

func (*txShowCmd) SetFlags(*flag.FlagSet) {}

func (*txShowCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, ok := oneArg(f, "transaction")
	if !ok {
		return subcommands.ExitUsageError
	}
	e, status := open(ctx, transactionsRoute)
	if e == nil {
		return status
	}
	t, err := e.dash.Transaction(ctx, id)
	if err != nil {
		return fail("reading transaction", err)
	}
	printMarkdown(renderer.RenderTransaction(t))
	return subcommands.ExitSuccess
}

type txAddCmd struct {
	asset string
	t     aurora.TransactionCreate
}

func (*txAddCmd) Name() string     { return "add" }
func (*txAddCmd) Synopsis() string { return "record a transaction" }
func (*txAddCmd) Usage() string {
	return `aurora tx add -asset <id|ticker> -type BUY|SELL -qty <quantity> -price <unit price> [-total <amount>] [-commission <amount>] [-d <date>] [-currency <code>] [-notes <text>]

  Records a transaction. The total defaults to quantity times price, the
  currency to the asset currency and the date to today.
`
}

func (c *txAddCmd) SetFlags(f *flag.FlagSet) {
	c.t.Date = date.Today()
	c.t.Type = aurora.Buy
	f.StringVar(&c.asset, "asset", "", "Asset ID or ticker (required)")
	f.StringVar((*string)(&c.t.Type), "type", string(aurora.Buy), "BUY or SELL")
	f.Var(decimalValue{&c.t.Quantity}, "qty", "Quantity (required)")
	f.Var(decimalValue{&c.t.PricePerUnit}, "price", "Price per unit (required)")
	f.Var(decimalValue{&c.t.TotalAmount}, "total", "Total amount, quantity times price if not set")
	f.Var(decimalValue{&c.t.Commission}, "commission", "Commission paid")
	f.Var(dateValue{&c.t.Date}, "d", "Transaction date")
	f.StringVar(&c.t.Currency, "currency", "", "Currency, the asset currency if not set")
	f.StringVar(&c.t.Notes, "notes", "", "Free notes")
}

func (c *txAddCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.asset == "" {
		fmt.Fprintln(stderr, "Error: -asset is required.")
		return subcommands.ExitUsageError
	}
	e, status := open(ctx, transactionsRoute)
	if e == nil {
		return status
	}
	a, err := resolveAsset(ctx, e.dash, c.asset)
	if err != nil {
		return fail("reading asset", err)
	}
	c.t.AssetID = a.ID
	c.t.Type = aurora.TransactionType(strings.ToUpper(string(c.t.Type)))
	if c.t.Currency == "" {
		c.t.Currency = a.Currency
	}
	c.t.Currency = strings.ToUpper(c.t.Currency)

	t, err := e.dash.CreateTransaction(ctx, c.t)
	if err != nil {
		return fail("recording transaction", err)
	}
	if t.Asset == nil {
		t.Asset = a
	}
	printMarkdown(renderer.RenderTransaction(t))
	return subcommands.ExitSuccess
}

type txDeleteCmd struct{}

func (*txDeleteCmd) Name() string     { return "delete" }
func (*txDeleteCmd) Synopsis() string { return "delete a transaction" }
func (*txDeleteCmd) Usage() string {
	return `aurora tx delete <id>
`
}

func (*txDeleteCmd) SetFlags(*flag.FlagSet) {}

func (*txDeleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, ok := oneArg(f, "transaction")
	if !ok {
		return subcommands.ExitUsageError
	}
	e, status := open(ctx, transactionsRoute)
	if e == nil {
		return status
	}
	if err := e.dash.DeleteTransaction(ctx, id); err != nil {
		return fail("deleting transaction", err)
	}
	fmt.Fprintf(stdout, "Deleted transaction %s.\n", id)
	return subcommands.ExitSuccess
}

