package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/aurora/docs"
	"github.com/google/subcommands"
)

type topicCmd struct {
	list bool
}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "read the user documentation" }
func (*topicCmd) Usage() string {
	return `aurora topic [-list] [<topic>...]

  Prints the named topics one after the other, '*' stands for all of them.
  Without a topic, prints the documentation index.
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.list, "list", false, "Only list the topic names and descriptions")
}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.list {
		topics, err := docs.List()
		if err != nil {
			return fail("listing topics", err)
		}
		var md strings.Builder
		md.WriteString("| Topic | Description |\n|:---|:---|\n")
		for _, t := range topics {
			fmt.Fprintf(&md, "| %s | %s |\n", t.Name, t.Description)
		}
		printMarkdown(md.String())
		return subcommands.ExitSuccess
	}

	names := f.Args()
	if len(names) == 0 {
		names = []string{docs.Index}
	}
	md, err := docs.GetTopics(names...)
	if err != nil {
		return fail("reading the documentation", err)
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}
