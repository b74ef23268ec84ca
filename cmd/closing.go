package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/opcoes"
	"github.com/google/subcommands"
)

// closingFlags are the flags describing how a position was closed.
type closingFlags struct {
	premium  string
	quantity string
	date     string
}

func (c *closingFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.premium, "premium", "", "Premium per option paid or received to close.")
	f.StringVar(&c.quantity, "qty", "", "Number of options closed. Defaults to the position quantity.")
	f.StringVar(&c.date, "d", "", "Closing date (YYYY-MM-DD). Defaults to today.")
}

// apply sets on cl every field whose flag is in set.
func (c *closingFlags) apply(cl *opcoes.Closing, set map[string]bool) error {
	var err error
	if set["premium"] {
		if cl.Premium, err = parseAmount(c.premium); err != nil {
			return fmt.Errorf("premium: %w", err)
		}
	}
	if set["qty"] {
		if cl.Quantity, err = parseShares(c.quantity); err != nil {
			return err
		}
	}
	if set["d"] {
		if cl.Date, err = opcoes.ParseClosingDate(c.date); err != nil {
			return err
		}
	}
	return nil
}

// closedPosition resolves id among the closed positions of snap.
func closedPosition(snap *opcoes.Snapshot, id string) (opcoes.ClosedPosition, error) {
	return resolve("closed position", snap.Closed(), func(c opcoes.ClosedPosition) string { return c.ID }, id)
}

type closeCmd struct {
	closingFlags
}

func (*closeCmd) Name() string     { return "close" }
func (*closeCmd) Synopsis() string { return "close an open position" }
func (*closeCmd) Usage() string {
	return `opc close -premium <price> [-qty <n>] [-d <YYYY-MM-DD>] <position-id>

  Records the closing of a position and prints its realized result.
  A position can only be closed once; use edit-close to correct it.
`
}

func (c *closeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, ok := oneArg(f, "position")
	if !ok {
		return subcommands.ExitUsageError
	}
	set := visited(f)
	if !set["premium"] {
		fmt.Fprintln(os.Stderr, "Error: -premium is required.")
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
	p, err := resolve("open position", snap.Open(), positionID, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	cl := opcoes.Closing{User: a.cfg.User, Position: p.ID, Quantity: p.Quantity, Date: opcoes.Today()}
	if err := c.apply(&cl, set); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if err := cl.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if cl, err = a.store.ClosePosition(ctx, cl); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing position: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Closed position %s on %s, result %s\n", p.ID, cl.Date.Local(), opcoes.RealizedResult(p, cl).SignedString())
	return subcommands.ExitSuccess
}

type editCloseCmd struct {
	closingFlags
}

func (*editCloseCmd) Name() string     { return "edit-close" }
func (*editCloseCmd) Synopsis() string { return "change the closing of a position" }
func (*editCloseCmd) Usage() string {
	return `opc edit-close [-premium <price>] [-qty <n>] [-d <YYYY-MM-DD>] <position-id>

  Changes only the closing fields given on the command line.
`
}

func (c *editCloseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	cp, err := closedPosition(snap, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	cl := cp.Closing
	if err := c.apply(&cl, set); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if err := cl.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if err := a.store.UpdateClosing(ctx, cl); err != nil {
		fmt.Fprintf(os.Stderr, "Error updating closing: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Updated closing of %s, result %s\n", cp.ID, opcoes.RealizedResult(cp.Position, cl).SignedString())
	return subcommands.ExitSuccess
}

type reopenCmd struct{}

func (*reopenCmd) Name() string     { return "reopen" }
func (*reopenCmd) Synopsis() string { return "delete the closing of a position" }
func (*reopenCmd) Usage() string {
	return `opc reopen <position-id>

  Deletes the closing of the position, which becomes open again.
`
}
func (*reopenCmd) SetFlags(*flag.FlagSet) {}

func (*reopenCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	cp, err := closedPosition(snap, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := a.store.DeleteClosing(ctx, a.cfg.User, cp.Closing.ID); err != nil {
		fmt.Fprintf(os.Stderr, "Error reopening position: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Reopened position %s\n", cp.ID)
	return subcommands.ExitSuccess
}
