package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/etnz/opcoes"
	"github.com/etnz/opcoes/config"
	"github.com/etnz/opcoes/store"
	"github.com/google/subcommands"
)

type migrateCmd struct {
	driver string
	to     string
}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "copy the book to another store" }
func (*migrateCmd) Usage() string {
	return `opc migrate -to-driver <jsonl|sqlite|postgres> -to <path or dsn>

  Copies the positions, closings, collateral and goals of the user from the
  configured store to another one, then checks that both books are the same.
  Records already present in the destination are skipped, so an interrupted
  migration can be run again.
`
}

func (c *migrateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.driver, "to-driver", "", "Destination store driver: jsonl, sqlite or postgres.")
	f.StringVar(&c.to, "to", "", "Destination path (jsonl, sqlite) or DSN (postgres).")
}

func (c *migrateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.driver == "" || c.to == "" {
		fmt.Fprintln(os.Stderr, "Error: -to-driver and -to flags are required.")
		return subcommands.ExitUsageError
	}

	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	target := *a.cfg
	target.Store.Driver = c.driver
	if c.driver == config.DriverPostgres {
		target.Store.DSN = c.to
	} else {
		target.Store.Path = c.to
	}
	if err := target.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid destination: %v\n", err)
		return subcommands.ExitUsageError
	}
	if target.Store == a.cfg.Store {
		fmt.Fprintln(os.Stderr, "Error: the destination is the configured store.")
		return subcommands.ExitUsageError
	}

	dst, err := openStore(ctx, &target, a.log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening destination: %v\n", err)
		return subcommands.ExitFailure
	}
	defer dst.Close()

	src, err := a.snapshot(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading book: %v\n", err)
		return subcommands.ExitFailure
	}
	copied, skipped, err := copyBook(ctx, src, dst)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error copying book: %v\n", err)
		return subcommands.ExitFailure
	}

	got, err := dst.Snapshot(ctx, a.cfg.User)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading destination: %v\n", err)
		return subcommands.ExitFailure
	}
	if diffs := compareBooks(src, got); len(diffs) > 0 {
		for _, d := range diffs {
			fmt.Fprintf(os.Stderr, "Mismatch: %s\n", d)
		}
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Copied %d records to %s (%d already there).\n", copied, c.driver, skipped)
	return subcommands.ExitSuccess
}

// copyBook inserts every record of book into dst, parents first. Closings of
// unknown positions are not copied.
func copyBook(ctx context.Context, book *opcoes.Snapshot, dst store.Store) (copied, skipped int, err error) {
	count := func(err error) error {
		switch {
		case err == nil:
			copied++
		case errors.Is(err, store.ErrExists), errors.Is(err, store.ErrAlreadyClosed):
			skipped++
		default:
			return err
		}
		return nil
	}

	for _, p := range book.Positions {
		_, err := dst.InsertPosition(ctx, p)
		if err := count(err); err != nil {
			return copied, skipped, fmt.Errorf("position %s: %w", p.ID, err)
		}
	}
	for _, c := range book.Closings {
		if _, ok := book.Position(c.Position); !ok {
			continue
		}
		_, err := dst.ClosePosition(ctx, c)
		if err := count(err); err != nil {
			return copied, skipped, fmt.Errorf("closing %s: %w", c.ID, err)
		}
	}
	for _, c := range book.Collaterals {
		_, err := dst.InsertCollateral(ctx, c)
		if err := count(err); err != nil {
			return copied, skipped, fmt.Errorf("collateral %s: %w", c.ID, err)
		}
	}
	for _, g := range book.Goals {
		_, err := dst.InsertGoal(ctx, g)
		if err := count(err); err != nil {
			return copied, skipped, fmt.Errorf("goal %s: %w", g.ID, err)
		}
	}
	return copied, skipped, nil
}

// compareBooks reports the records of want missing from got, and the
// differences between the realized results and collateral of both books.
func compareBooks(want, got *opcoes.Snapshot) []string {
	var diffs []string
	missing := func(what string, want, got []string) {
		for _, id := range want {
			if !slices.Contains(got, id) {
				diffs = append(diffs, fmt.Sprintf("%s %s is missing", what, id))
			}
		}
	}
	missing("position", ids(want.Positions, positionID), ids(got.Positions, positionID))
	missing("collateral", ids(want.Collaterals, collateralID), ids(got.Collaterals, collateralID))
	missing("goal", ids(want.Goals, goalID), ids(got.Goals, goalID))

	wantClosed, gotClosed := want.Aggregate(opcoes.Monthly).Total(), got.Aggregate(opcoes.Monthly).Total()
	if !wantClosed.Equal(gotClosed) {
		diffs = append(diffs, fmt.Sprintf("realized result is %s, want %s", gotClosed, wantClosed))
	}
	wantFree, gotFree := want.Allocation().FreeAmount(), got.Allocation().FreeAmount()
	if !wantFree.Equal(gotFree) {
		diffs = append(diffs, fmt.Sprintf("free collateral is %s, want %s", gotFree, wantFree))
	}
	return diffs
}

func ids[T any](records []T, id func(T) string) []string {
	res := make([]string, len(records))
	for i, r := range records {
		res[i] = id(r)
	}
	return res
}
