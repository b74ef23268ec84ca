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

type collateralCmd struct{}

func (*collateralCmd) Name() string     { return "collateral" }
func (*collateralCmd) Synopsis() string { return "list collateral and how much of it is pledged" }
func (*collateralCmd) Usage() string {
	return `opc collateral

  Lists shares and fixed income pledged as collateral. Open positions are
  allocated to them oldest first.
`
}
func (*collateralCmd) SetFlags(*flag.FlagSet) {}

func (*collateralCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	printMarkdown(renderer.CollateralMarkdown(snap.Allocation()))
	return subcommands.ExitSuccess
}

// insertCollateral validates and stores c.
func insertCollateral(ctx context.Context, c opcoes.Collateral) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	c.User = a.cfg.User
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c, err = a.store.InsertCollateral(ctx, c); err != nil {
		fmt.Fprintf(os.Stderr, "Error adding collateral: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Added collateral %s: %s\n", c.ID, c.Name())
	return subcommands.ExitSuccess
}

type addStockCmd struct {
	ticker   string
	quantity string
}

func (*addStockCmd) Name() string     { return "add-stock" }
func (*addStockCmd) Synopsis() string { return "pledge shares as collateral" }
func (*addStockCmd) Usage() string {
	return `opc add-stock -ticker <share> -qty <n>

  Pledges shares covering sold calls on the same underlying.
`
}

func (c *addStockCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "ticker", "", "Share code, e.g. PETR4.")
	f.StringVar(&c.quantity, "qty", "", "Number of shares.")
}

func (c *addStockCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ticker == "" || c.quantity == "" {
		fmt.Fprintln(os.Stderr, "Error: -ticker and -qty are required.")
		return subcommands.ExitUsageError
	}
	qty, err := parseShares(c.quantity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return insertCollateral(ctx, opcoes.Collateral{Kind: opcoes.Equity, Ticker: c.ticker, Quantity: qty})
}

type addFixedCmd struct {
	instrument string
	amount     string
}

func (*addFixedCmd) Name() string     { return "add-fixed" }
func (*addFixedCmd) Synopsis() string { return "pledge fixed income as collateral" }
func (*addFixedCmd) Usage() string {
	return `opc add-fixed [-instrument tesouro_selic|caixa] -amount <reais>

  Pledges fixed income covering sold puts.
`
}

func (c *addFixedCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.instrument, "instrument", "tesouro_selic", "Fixed income instrument: tesouro_selic or caixa.")
	f.StringVar(&c.amount, "amount", "", "Amount in reais.")
}

func (c *addFixedCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.amount == "" {
		fmt.Fprintln(os.Stderr, "Error: -amount is required.")
		return subcommands.ExitUsageError
	}
	instrument, err := opcoes.ParseFixedIncomeKind(c.instrument)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	amount, err := parseAmount(c.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return insertCollateral(ctx, opcoes.Collateral{Kind: opcoes.FixedIncome, Instrument: instrument, Amount: amount})
}

type editCollateralCmd struct {
	ticker     string
	quantity   string
	instrument string
	amount     string
}

func (*editCollateralCmd) Name() string     { return "edit-collateral" }
func (*editCollateralCmd) Synopsis() string { return "change a collateral" }
func (*editCollateralCmd) Usage() string {
	return `opc edit-collateral [-ticker <share>] [-qty <n>] [-instrument tesouro_selic|caixa] [-amount <reais>] <collateral-id>

  Changes only the fields given on the command line. -ticker and -qty apply to
  shares, -instrument and -amount to fixed income.
`
}

func (c *editCollateralCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "ticker", "", "Share code.")
	f.StringVar(&c.quantity, "qty", "", "Number of shares.")
	f.StringVar(&c.instrument, "instrument", "", "Fixed income instrument: tesouro_selic or caixa.")
	f.StringVar(&c.amount, "amount", "", "Amount in reais.")
}

func (c *editCollateralCmd) apply(col *opcoes.Collateral, set map[string]bool) error {
	var err error
	switch col.Kind {
	case opcoes.Equity:
		if set["instrument"] || set["amount"] {
			return fmt.Errorf("collateral %s holds shares, -instrument and -amount do not apply", col.ID)
		}
		if set["ticker"] {
			col.Ticker = c.ticker
		}
		if set["qty"] {
			if col.Quantity, err = parseShares(c.quantity); err != nil {
				return err
			}
		}
	case opcoes.FixedIncome:
		if set["ticker"] || set["qty"] {
			return fmt.Errorf("collateral %s is fixed income, -ticker and -qty do not apply", col.ID)
		}
		if set["instrument"] {
			if col.Instrument, err = opcoes.ParseFixedIncomeKind(c.instrument); err != nil {
				return err
			}
		}
		if set["amount"] {
			if col.Amount, err = parseAmount(c.amount); err != nil {
				return err
			}
		}
	}
	*col = col.Normalize()
	return nil
}

func (c *editCollateralCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, ok := oneArg(f, "collateral")
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
	col, err := resolve("collateral", snap.Collaterals, collateralID, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := c.apply(&col, set); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if err := col.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if err := a.store.UpdateCollateral(ctx, col); err != nil {
		fmt.Fprintf(os.Stderr, "Error updating collateral: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Updated collateral %s: %s\n", col.ID, col.Name())
	return subcommands.ExitSuccess
}

type rmCollateralCmd struct{}

func (*rmCollateralCmd) Name() string     { return "rm-collateral" }
func (*rmCollateralCmd) Synopsis() string { return "delete a collateral" }
func (*rmCollateralCmd) Usage() string {
	return `opc rm-collateral <collateral-id>
`
}
func (*rmCollateralCmd) SetFlags(*flag.FlagSet) {}

func (*rmCollateralCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, ok := oneArg(f, "collateral")
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
	col, err := resolve("collateral", snap.Collaterals, collateralID, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := a.store.DeleteCollateral(ctx, a.cfg.User, col.ID); err != nil {
		fmt.Fprintf(os.Stderr, "Error deleting collateral: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Deleted collateral %s: %s\n", col.ID, col.Name())
	return subcommands.ExitSuccess
}
