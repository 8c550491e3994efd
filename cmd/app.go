// Package cmd implements the aurora command line client.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/etnz/aurora/dashboard"
	"github.com/etnz/aurora/query"
	"github.com/etnz/aurora/session"
	"github.com/etnz/aurora/spectra"
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// Environment variables, read as defaults for the global flags and passed to
// extensions.
const (
	EnvAPIURL      = "AURORA_API_URL"
	EnvTokenStore  = "AURORA_TOKEN_STORE"
	EnvCacheDir    = "AURORA_CACHE_DIR"
	EnvVerbose     = "AURORA_VERBOSE"
	EnvMetricsFile = "AURORA_METRICS_FILE"
)

// commands returns the subcommands by group.
func commands() []struct {
	group string
	cmds  []subcommands.Command
} {
	return []struct {
		group string
		cmds  []subcommands.Command
	}{
		{"session", []subcommands.Command{&loginCmd{}, &logoutCmd{}, &registerCmd{}, &whoamiCmd{}, &statusCmd{}}},
		{"portfolio", []subcommands.Command{&summaryCmd{}, &holdingsCmd{}, &allocationCmd{}, &refreshCmd{}}},
		{"assets", []subcommands.Command{assetsCmd(), txCmd(), pricesCmd()}},
		{"analysis", []subcommands.Command{&assistCmd{}}},
		{"backend", []subcommands.Command{&healthCmd{}, &apiCmd{}, &configCmd{}}},
		{"help", []subcommands.Command{&topicCmd{}}},
	}
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, g := range commands() {
		for _, cmd := range g.cmds {
			c.Register(cmd, g.group)
		}
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	apiURL      = flag.String("api-url", getenv(EnvAPIURL, spectra.DefaultBaseURL), "Spectra API base URL")
	tokenStore  = flag.String("token-store", getenv(EnvTokenStore, "file"), "Where session tokens are kept: memory, file, file:<path> or redis://host:port/db[#profile]")
	cacheDir    = flag.String("cache-dir", getenv(EnvCacheDir, ""), "Folder to keep cached queries in between commands, memory only if empty")
	metricsFile = flag.String("metrics-file", getenv(EnvMetricsFile, ""), "File to write the request metrics to on exit, in the Prometheus text format")
	// Verbose enables debug logs.
	Verbose = flag.Bool("v", getenvBool(EnvVerbose), "Verbose output")
)

// Standard streams, replaced in tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// loadDotEnv reads the .env file of the current directory, if any.
var loadDotEnv = sync.OnceValue(func() error { return godotenv.Load() })

// getenv returns the value of key from the environment or the .env file.
func getenv(key, def string) string {
	_ = loadDotEnv()
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getenvBool(key string) bool {
	v, err := strconv.ParseBool(getenv(key, "false"))
	return err == nil && v
}

// registry collects the metrics of the command being run, it is renewed by
// every connection.
var registry = prometheus.NewRegistry()

// Finish writes the metrics file, if any. The main package calls it once the
// command has run.
func Finish() error {
	if *metricsFile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(*metricsFile, registry); err != nil {
		return fmt.Errorf("cannot write metrics to %q: %w", *metricsFile, err)
	}
	return nil
}

func newLogger() logr.Logger {
	if *Verbose {
		stdr.SetVerbosity(2)
	}
	return stdr.New(log.New(stderr, "", log.LstdFlags))
}

// openTokenStore returns the token store described by spec.
func openTokenStore(spec string) (spectra.TokenStore, error) {
	switch {
	case spec == "memory":
		return spectra.NewMemoryStore(), nil
	case spec == "file" || spec == "":
		path, err := spectra.DefaultSessionFile()
		if err != nil {
			return nil, err
		}
		return spectra.NewFileStore(path), nil
	case strings.HasPrefix(spec, "file:"):
		return spectra.NewFileStore(strings.TrimPrefix(spec, "file:")), nil
	case strings.HasPrefix(spec, "redis://"), strings.HasPrefix(spec, "rediss://"):
		u, profile, _ := strings.Cut(spec, "#")
		opt, err := redis.ParseURL(u)
		if err != nil {
			return nil, fmt.Errorf("invalid redis token store: %w", err)
		}
		return spectra.NewRedisStore(redis.NewClient(opt), profile), nil
	default:
		return nil, fmt.Errorf("unknown token store %q", spec)
	}
}

// env is what a command needs to talk to the backend.
type env struct {
	log     logr.Logger
	client  *spectra.Client
	session *session.Session
	dash    *dashboard.Dashboard
}

// open connects to the backend and guards route.
//
// For a protected route an anonymous user is asked to sign in. For a public
// route (login, register) a signed in user is told so. In both cases open
// returns a nil env and the status to exit with. An empty route is not
// guarded and the session is not checked.
func open(ctx context.Context, route string) (*env, subcommands.ExitStatus) {
	e, err := connect(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return nil, subcommands.ExitFailure
	}
	if route == "" {
		return e, subcommands.ExitSuccess
	}

	st, err := e.session.Check(ctx)
	if err != nil {
		e.log.Error(err, "cannot clear the rejected session")
	}
	switch session.DefaultGuard().Decide(route, st.Authenticated) {
	case session.LoginRoute:
		fmt.Fprintf(stderr, "You are not signed in to %s, run 'aurora login' first.\n", e.client.BaseURL())
		return nil, subcommands.ExitFailure
	case session.HomeRoute:
		fmt.Fprintf(stdout, "Already signed in as %s, run 'aurora logout' first to change user.\n", st.User.Username)
		return nil, subcommands.ExitSuccess
	}
	return e, subcommands.ExitSuccess
}

// connect builds the client stack from the global flags.
func connect(ctx context.Context) (*env, error) {
	logger := newLogger()
	store, err := openTokenStore(*tokenStore)
	if err != nil {
		return nil, err
	}
	registry = prometheus.NewRegistry()
	client, err := spectra.New(ctx, *apiURL,
		spectra.WithTokenStore(store),
		spectra.WithLogger(logger.WithName("spectra")),
		spectra.WithMetrics(registry),
	)
	if err != nil {
		return nil, err
	}

	opts := []query.Option{query.WithLogger(logger.WithName("query"))}
	if *cacheDir != "" {
		opts = append(opts, query.WithDir(*cacheDir))
	}
	return &env{
		log:     logger,
		client:  client,
		session: session.New(client, logger.WithName("session")),
		dash:    dashboard.New(client, query.New(opts...)),
	}, nil
}

// fail reports err, with the field errors of a rejected payload, and returns
// the matching exit status.
func fail(what string, err error) subcommands.ExitStatus {
	fmt.Fprintf(stderr, "Error %s: %v\n", what, err)

	var apiErr *spectra.Error
	if errors.As(err, &apiErr) {
		fields := apiErr.FieldErrors()
		for _, field := range slices.Sorted(maps.Keys(fields)) {
			fmt.Fprintf(stderr, "  %s: %s\n", field, fields[field])
		}
	}
	if spectra.IsUnauthorized(err) {
		fmt.Fprintln(stderr, "Your session has expired, run 'aurora login' again.")
	}
	return subcommands.ExitFailure
}
