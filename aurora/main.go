// Command aurora is the command line client of the Spectra portfolio tracker.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"

	"github.com/etnz/aurora/cmd"
	"github.com/google/subcommands"
)

func main() {
	// Serves the shell completion requests, and exits, when invoked by the shell.
	cmd.Completion().Complete("aurora")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	commander.Register(commander.CommandsCommand(), "help")
	cmd.Register(commander)

	flag.Parse()

	// Unknown commands are looked up as aurora-<name> extensions.
	if name := flag.Arg(0); name != "" && !registered(commander, name) {
		if found, code := cmd.RunExtension(name, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	status := commander.Execute(ctx)
	stop()

	if err := cmd.Finish(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if status == subcommands.ExitSuccess {
			status = subcommands.ExitFailure
		}
	}
	os.Exit(int(status))
}

func registered(c *subcommands.Commander, name string) bool {
	found := false
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		if cmd.Name() == name {
			found = true
		}
	})
	return found
}
