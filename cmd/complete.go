package cmd

import (
	"flag"

	"github.com/etnz/aurora/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion returns the shell completion of the aurora command line.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flags(flag.CommandLine.VisitAll),
	}
	for _, g := range commands() {
		for _, c := range g.cmds {
			root.Sub[c.Name()] = completion(c)
		}
	}
	for _, name := range []string{"help", "flags", "commands"} {
		root.Sub[name] = &complete.Command{}
	}
	return root
}

func completion(c subcommands.Command) *complete.Command {
	if g, ok := c.(*group); ok {
		res := &complete.Command{Sub: map[string]*complete.Command{}}
		for _, sub := range g.commands {
			res.Sub[sub.Name()] = completion(sub)
		}
		return res
	}

	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	res := &complete.Command{Flags: flags(f.VisitAll)}
	if _, ok := c.(*topicCmd); ok {
		res.Args = topicPredictor{}
	}
	return res
}

// flags predicts the flags visited by visit.
func flags(visit func(func(*flag.Flag))) map[string]complete.Predictor {
	res := map[string]complete.Predictor{}
	visit(func(fl *flag.Flag) {
		if b, ok := fl.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			res[fl.Name] = predict.Nothing
			return
		}
		res[fl.Name] = predict.Something
	})
	return res
}

// topicPredictor predicts the documentation topics.
type topicPredictor struct{}

func (topicPredictor) Predict(prefix string) []string {
	topics, err := docs.GetAllTopics()
	if err != nil {
		return nil
	}
	return topics
}
