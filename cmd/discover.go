package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/aurora/renderer"
	"github.com/google/subcommands"
)

type assetDiscoverCmd struct {
	add string
}

func (*assetDiscoverCmd) Name() string { return "discover" }
func (*assetDiscoverCmd) Synopsis() string {
	return "find assets in the external data sources, and add them"
}
func (*assetDiscoverCmd) Usage() string {
	return `aurora assets discover [-add <ticker>] [<text>]

  Searches the text among the registered assets and the external data
  sources (CoinGecko, Yahoo Finance), completed with the popular crypto
  currencies. Without text, lists the popular crypto currencies.

  With -add, the result with this ticker is registered if it is not already,
  and printed.
`
}

func (c *assetDiscoverCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.add, "add", "", "Register the result with this ticker")
}

func (c *assetDiscoverCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	text := strings.Join(f.Args(), " ")
	e, status := open(ctx, assetsRoute)
	if e == nil {
		return status
	}
	results, err := e.dash.DiscoverAssets(ctx, text)
	if err != nil {
		return fail("discovering assets", err)
	}
	if c.add == "" {
		printMarkdown(renderer.RenderDiscovery(results))
		return subcommands.ExitSuccess
	}

	for _, r := range results {
		if !strings.EqualFold(r.Ticker, c.add) {
			continue
		}
		a, err := e.dash.AdoptAsset(ctx, r)
		if err != nil {
			return fail("adding asset", err)
		}
		printMarkdown(renderer.RenderAsset(a, nil))
		return subcommands.ExitSuccess
	}
	fmt.Fprintf(stderr, "Error: no result with ticker %q, run %q to list them.\n", c.add, strings.TrimSpace("aurora assets discover "+text))
	return subcommands.ExitFailure
}
