package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/aurora"
	"github.com/etnz/aurora/renderer"
	"github.com/etnz/aurora/spectra"
	"github.com/google/subcommands"
)

type healthCmd struct {
	detailed bool
}

func (*healthCmd) Name() string     { return "health" }
func (*healthCmd) Synopsis() string { return "check the backend health" }
func (*healthCmd) Usage() string {
	return `aurora health [-detailed]

  Reports the backend status, and the status of its dependencies with
  -detailed. Fails when the backend is not healthy.
`
}

func (c *healthCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.detailed, "detailed", false, "Also report the status of each backend dependency")
}

func (c *healthCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, status := open(ctx, "")
	if e == nil {
		return status
	}
	h, err := e.client.Health(ctx)
	if err != nil {
		return fail("checking health", err)
	}
	var detailed *aurora.DetailedHealthCheck
	if c.detailed {
		if detailed, err = e.client.DetailedHealth(ctx); err != nil {
			return fail("checking dependencies", err)
		}
	}
	printMarkdown(renderer.RenderHealth(h, detailed))
	if !h.Healthy() {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type apiCmd struct {
	query     string
	anonymous bool
}

func (*apiCmd) Name() string     { return "api" }
func (*apiCmd) Synopsis() string { return "send a raw request to the backend" }
func (*apiCmd) Usage() string {
	return `aurora api [-q <jsonpath>] [-anonymous] get|post|put|delete <path> [<json body>]

  Sends a request with the session token, refreshing it if needed, and
  prints the JSON response. -q selects a part of the response, for instance
  '$.holdings[*].asset.ticker'.
`
}

func (c *apiCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.query, "q", "", "JSONPath expression applied to the response")
	f.BoolVar(&c.anonymous, "anonymous", false, "Send the request without the session token")
}

func (c *apiCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 2 || f.NArg() > 3 {
		fmt.Fprintln(stderr, "Error: expected a method, a path and an optional body.")
		return subcommands.ExitUsageError
	}
	req, err := c.request(f.Args())
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return subcommands.ExitUsageError
	}

	e, status := open(ctx, "")
	if e == nil {
		return status
	}
	var out any
	if err := e.client.Do(ctx, req, &out); err != nil {
		return fail("calling "+req.Path, err)
	}
	if c.query != "" {
		if out, err = jsonpath.Get(c.query, out); err != nil {
			fmt.Fprintf(stderr, "Error applying %q: %v\n", c.query, err)
			return subcommands.ExitFailure
		}
	}

	if s, ok := out.(string); ok {
		fmt.Fprintln(stdout, s)
		return subcommands.ExitSuccess
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fail("encoding the response", err)
	}
	fmt.Fprintln(stdout, string(b))
	return subcommands.ExitSuccess
}

// request builds the request described by the method, path and body arguments.
func (c *apiCmd) request(args []string) (spectra.Request, error) {
	req := spectra.Request{Method: strings.ToUpper(args[0]), Anonymous: c.anonymous}
	switch req.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return req, fmt.Errorf("unsupported method %q", args[0])
	}

	u, err := url.Parse(args[1])
	if err != nil || u.IsAbs() {
		return req, fmt.Errorf("invalid path %q, want /api/v1/...", args[1])
	}
	req.Path = "/" + strings.TrimPrefix(u.Path, "/")
	if u.RawQuery != "" {
		req.Query = u.Query()
	}

	if len(args) == 3 {
		if !json.Valid([]byte(args[2])) {
			return req, fmt.Errorf("body is not valid JSON")
		}
		req.Body = json.RawMessage(args[2])
	}
	return req, nil
}

type configCmd struct{}

func (*configCmd) Name() string     { return "config" }
func (*configCmd) Synopsis() string { return "print the resolved configuration" }
func (*configCmd) Usage() string {
	return `aurora config

  Prints the configuration resolved from the global flags, the environment
  and the .env file. See 'aurora topic config'.
`
}

func (*configCmd) SetFlags(*flag.FlagSet) {}

func (*configCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	store := *tokenStore
	if s, err := openTokenStore(store); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return subcommands.ExitFailure
	} else if fs, ok := s.(*spectra.FileStore); ok {
		store = "file: " + fs.Path()
	}

	var b strings.Builder
	b.WriteString("| Setting | Value |\n|:---|:---|\n")
	row := func(k, v string) {
		if v == "" {
			v = "-"
		}
		fmt.Fprintf(&b, "| %s | %s |\n", k, v)
	}
	row("API URL", strings.TrimRight(*apiURL, "/"))
	row("Token store", store)
	row("Cache directory", *cacheDir)
	row("Metrics file", *metricsFile)
	row("Verbose", strconv.FormatBool(*Verbose))
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
