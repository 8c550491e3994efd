package cmd

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/aurora"
	"github.com/etnz/aurora/renderer"
	"github.com/etnz/aurora/session"
	"github.com/google/subcommands"
	"golang.org/x/term"
)

// readPassword reads a password from the terminal without echo, or a line
// from stdin when it is not a terminal.
func readPassword() (string, error) {
	fmt.Fprint(stderr, "Password: ")
	defer fmt.Fprintln(stderr)
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		return string(b), err
	}
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

type loginCmd struct {
	username string
	password string
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "sign in to the backend" }
func (*loginCmd) Usage() string {
	return `aurora login -u <username> [-p <password>]

  Signs in and keeps the session tokens in the token store. The password is
  read from the terminal when -p is not given.
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "u", "", "Username (required)")
	f.StringVar(&c.password, "p", "", "Password, read from the terminal if empty")
}

func (c *loginCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.username == "" {
		fmt.Fprintln(stderr, "Error: -u is required.")
		return subcommands.ExitUsageError
	}
	e, status := open(ctx, session.LoginRoute)
	if e == nil {
		return status
	}

	password := c.password
	if password == "" {
		var err error
		if password, err = readPassword(); err != nil {
			return fail("reading password", err)
		}
	}

	ok, err := e.session.Login(ctx, aurora.Credentials{Username: c.username, Password: password})
	if err != nil {
		return fail("signing in", err)
	}
	if !ok {
		fmt.Fprintln(stderr, "Error signing in: the session was not accepted by the backend.")
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Signed in as %s.\n", e.session.State().User.Username)
	return subcommands.ExitSuccess
}

type logoutCmd struct{}

func (*logoutCmd) Name() string     { return "logout" }
func (*logoutCmd) Synopsis() string { return "sign out and forget the cached data" }
func (*logoutCmd) Usage() string {
	return `aurora logout

  Removes the session tokens from the token store and empties the cache.
`
}

func (*logoutCmd) SetFlags(*flag.FlagSet) {}

func (*logoutCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, status := open(ctx, "")
	if e == nil {
		return status
	}
	if err := errors.Join(e.session.Logout(ctx), e.dash.Forget()); err != nil {
		return fail("signing out", err)
	}
	fmt.Fprintln(stdout, "Signed out.")
	return subcommands.ExitSuccess
}

type registerCmd struct {
	username string
	email    string
	password string
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "create a new account" }
func (*registerCmd) Usage() string {
	return `aurora register -u <username> -email <email> [-p <password>]

  Creates an account on the backend. Sign in with 'aurora login' afterwards.
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "u", "", "Username, at least 3 characters (required)")
	f.StringVar(&c.email, "email", "", "Email address (required)")
	f.StringVar(&c.password, "p", "", "Password, at least 8 characters, read from the terminal if empty")
}

func (c *registerCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, status := open(ctx, "/register")
	if e == nil {
		return status
	}
	user := aurora.UserCreate{Username: c.username, Email: c.email, Password: c.password}
	if user.Password == "" {
		var err error
		if user.Password, err = readPassword(); err != nil {
			return fail("reading password", err)
		}
	}
	if err := aurora.Validate(user); err != nil {
		return fail("registering", err)
	}
	u, err := e.client.Register(ctx, user)
	if err != nil {
		return fail("registering", err)
	}
	fmt.Fprintf(stdout, "Account %s created, run 'aurora login -u %s' to sign in.\n", u.Username, u.Username)
	return subcommands.ExitSuccess
}

type whoamiCmd struct{}

func (*whoamiCmd) Name() string     { return "whoami" }
func (*whoamiCmd) Synopsis() string { return "show the signed in user" }
func (*whoamiCmd) Usage() string {
	return `aurora whoami

  Shows the signed in user and what is known of the session token.
`
}

func (*whoamiCmd) SetFlags(*flag.FlagSet) {}

func (*whoamiCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, status := open(ctx, "/settings")
	if e == nil {
		return status
	}
	printMarkdown(renderer.RenderUser(e.session.State(), e.client.BaseURL()))
	return subcommands.ExitSuccess
}

type statusCmd struct{}

func (*statusCmd) Name() string     { return "status" }
func (*statusCmd) Synopsis() string { return "check the session" }
func (*statusCmd) Usage() string {
	return `aurora status

  Checks the session against the backend. A rejected session is signed out.
  Never fails because of the session state.
`
}

func (*statusCmd) SetFlags(*flag.FlagSet) {}

func (*statusCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, status := open(ctx, "")
	if e == nil {
		return status
	}
	st, err := e.session.Check(ctx)
	if err != nil {
		e.log.Error(err, "cannot clear the rejected session")
	}
	printMarkdown(renderer.RenderUser(st, e.client.BaseURL()))
	return subcommands.ExitSuccess
}
