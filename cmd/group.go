package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"
)

// group is a command made of subcommands, such as "assets list".
type group struct {
	name     string
	synopsis string
	commands []subcommands.Command
}

func (g *group) Name() string     { return g.name }
func (g *group) Synopsis() string { return g.synopsis }
func (g *group) Usage() string {
	var b strings.Builder
	fmt.Fprintf(&b, "aurora %s <command> [flags] [args]\n\n  %s.\n\nCommands:\n", g.name, g.synopsis)
	for _, c := range g.commands {
		fmt.Fprintf(&b, "  %-10s %s\n", c.Name(), c.Synopsis())
	}
	return b.String()
}

func (g *group) SetFlags(*flag.FlagSet) {}

func (g *group) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	cdr := subcommands.NewCommander(f, "aurora "+g.name)
	cdr.Output = stdout
	cdr.Error = stderr
	for _, c := range g.commands {
		cdr.Register(c, "")
	}
	return cdr.Execute(ctx, args...)
}
