package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/opcoes"
	"github.com/etnz/opcoes/quote"
	"github.com/etnz/opcoes/renderer"
	"github.com/google/subcommands"
)

// fetchQuote replaces the quote of p with the current price of its underlying.
func (a *app) fetchQuote(ctx context.Context, p *opcoes.Position) error {
	client := quote.New(a.cfg.Quote.BaseURL, a.cfg.Quote.Token, a.cfg.QuoteTimeout(), a.log)
	price, err := client.Latest(ctx, p.Underlying)
	if err != nil {
		return err
	}
	p.Quote = price
	return nil
}

// warnCoverage tells on stderr when the collateral left does not cover p.
func warnCoverage(snap *opcoes.Snapshot, p opcoes.Position) {
	if cov := snap.Coverage(p); !cov.Covered() {
		fmt.Fprintf(os.Stderr, "Warning: %s %s is not covered: %s\n", p.Direction.Label(), p.Ticker, cov.Label())
	}
}

type addCmd struct {
	positionFlags
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record a new options position" }
func (*addCmd) Usage() string {
	return `opc add -ticker <code> -underlying <share> -type call|put -op buy|sell -strike <price> -qty <n> -premium <price> -exp <YYYY-MM-DD> (-quote <price> | -fetch)

  Records an opened position. Amounts accept "38,50" or "38.50".
  With -fetch the quote is the current price of the underlying.
`
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	set := visited(f)
	if err := c.required(set); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	var p opcoes.Position
	if err := c.apply(&p, set); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	p.User = a.cfg.User
	if c.fetch {
		if err := a.fetchQuote(ctx, &p); err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching quote of %s: %v\n", p.Underlying, err)
			return subcommands.ExitFailure
		}
	}
	if err := p.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	snap, err := a.snapshot(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading book: %v\n", err)
		return subcommands.ExitFailure
	}
	warnCoverage(snap, p)

	p, err = a.store.InsertPosition(ctx, p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding position: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Added position %s: %s\n", p.ID, p)
	return subcommands.ExitSuccess
}

type editCmd struct {
	positionFlags
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "change fields of a position" }
func (*editCmd) Usage() string {
	return `opc edit [-ticker <code>] [-underlying <share>] [-type call|put] [-op buy|sell] [-strike <price>] [-quote <price> | -fetch] [-qty <n>] [-premium <price>] [-exp <YYYY-MM-DD>] <position-id>

  Changes only the fields given on the command line. Any unique prefix of the id is accepted.
`
}

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, ok := oneArg(f, "position")
	if !ok {
		return subcommands.ExitUsageError
	}
	set := visited(f)
	if len(set) == 0 {
		fmt.Fprintln(os.Stderr, "Error: nothing to change.")
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
	p, err := resolve("position", snap.Positions, positionID, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := c.apply(&p, set); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.fetch {
		if err := a.fetchQuote(ctx, &p); err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching quote of %s: %v\n", p.Underlying, err)
			return subcommands.ExitFailure
		}
	}
	if err := p.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if snap.Status(p) == opcoes.Open {
		warnCoverage(snap, p)
	}

	if err := a.store.UpdatePosition(ctx, p); err != nil {
		fmt.Fprintf(os.Stderr, "Error updating position: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Updated position %s: %s\n", p.ID, p)
	return subcommands.ExitSuccess
}

type rmCmd struct{}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "delete a position and its closing" }
func (*rmCmd) Usage() string {
	return `opc rm <position-id>

  Deletes the position. Its closing, if any, is deleted too.
`
}
func (*rmCmd) SetFlags(*flag.FlagSet) {}

func (*rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, ok := oneArg(f, "position")
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
	p, err := resolve("position", snap.Positions, positionID, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := a.store.DeletePosition(ctx, a.cfg.User, p.ID); err != nil {
		fmt.Fprintf(os.Stderr, "Error deleting position: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Deleted position %s: %s\n", p.ID, p)
	return subcommands.ExitSuccess
}

type listCmd struct{}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list open and closed positions" }
func (*listCmd) Usage() string {
	return `opc list

  Lists open positions, closest expiration first, with their risk and
  collateral coverage, then closed positions, most recent first.
`
}
func (*listCmd) SetFlags(*flag.FlagSet) {}

func (*listCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	printMarkdown(renderer.PositionsMarkdown(snap))
	return subcommands.ExitSuccess
}

type previewCmd struct {
	positionFlags
}

func (*previewCmd) Name() string     { return "preview" }
func (*previewCmd) Synopsis() string { return "simulate a position before recording it" }
func (*previewCmd) Usage() string {
	return `opc preview -ticker <code> -underlying <share> -type call|put -op buy|sell -strike <price> -qty <n> -premium <price> -exp <YYYY-MM-DD> (-quote <price> | -fetch)

  Shows the valuation, risk and collateral coverage of a position without recording it.
`
}

func (c *previewCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	set := visited(f)
	if err := c.required(set); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	var p opcoes.Position
	if err := c.apply(&p, set); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if c.fetch {
		if err := a.fetchQuote(ctx, &p); err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching quote of %s: %v\n", p.Underlying, err)
			return subcommands.ExitFailure
		}
	}
	if err := p.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	snap, err := a.snapshot(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading book: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.PreviewMarkdown(p, snap.Coverage(p)))
	return subcommands.ExitSuccess
}
