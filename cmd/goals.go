package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/opcoes"
	"github.com/etnz/opcoes/renderer"
	"github.com/google/subcommands"
)

type goalsCmd struct {
	date string
}

func (*goalsCmd) Name() string     { return "goals" }
func (*goalsCmd) Synopsis() string { return "progress of the result goals" }
func (*goalsCmd) Usage() string {
	return `opc goals [-d <YYYY-MM-DD>]

  Compares monthly goals to the average monthly result of the year, and
  annual goals to the total result of their year.
`
}

func (c *goalsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Reference day. Defaults to today.")
}

func (c *goalsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	today, err := parseToday(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	snap, err := a.snapshot(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading book: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.GoalsMarkdown(snap.Progress(today)))
	return subcommands.ExitSuccess
}

type addGoalCmd struct {
	kind   string
	target string
	year   int
}

func (*addGoalCmd) Name() string     { return "add-goal" }
func (*addGoalCmd) Synopsis() string { return "set a monthly or annual result goal" }
func (*addGoalCmd) Usage() string {
	return `opc add-goal [-type monthly|annual] -target <reais> [-y <year>]
`
}

func (c *addGoalCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "type", "monthly", "Goal horizon: monthly or annual.")
	f.StringVar(&c.target, "target", "", "Target result in reais.")
	f.IntVar(&c.year, "y", 0, "Year of the goal. Defaults to the current year.")
}

func (c *addGoalCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	kind, err := opcoes.ParseGoalKind(c.kind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.target == "" {
		fmt.Fprintln(os.Stderr, "Error: -target is required.")
		return subcommands.ExitUsageError
	}
	target, err := parseAmount(c.target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	g := opcoes.Goal{Kind: kind, Target: target, Year: c.year}
	if g.Year == 0 {
		g.Year = opcoes.Today().Year()
	}
	if err := g.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	g.User = a.cfg.User
	if g, err = a.store.InsertGoal(ctx, g); err != nil {
		fmt.Fprintf(os.Stderr, "Error adding goal: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Added goal %s: %s of %s\n", g.ID, g.Title(), g.Target)
	return subcommands.ExitSuccess
}

type rmGoalCmd struct{}

func (*rmGoalCmd) Name() string     { return "rm-goal" }
func (*rmGoalCmd) Synopsis() string { return "delete a goal" }
func (*rmGoalCmd) Usage() string {
	return `opc rm-goal <goal-id>
`
}
func (*rmGoalCmd) SetFlags(*flag.FlagSet) {}

func (*rmGoalCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, ok := oneArg(f, "goal")
	if !ok {
		return subcommands.ExitUsageError
	}
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	snap, err := a.snapshot(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading book: %v\n", err)
		return subcommands.ExitFailure
	}
	g, err := resolve("goal", snap.Goals, goalID, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := a.store.DeleteGoal(ctx, a.cfg.User, g.ID); err != nil {
		fmt.Fprintf(os.Stderr, "Error deleting goal: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Deleted goal %s: %s\n", g.ID, g.Title())
	return subcommands.ExitSuccess
}
