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

// parseToday parses the -d flag of reports, empty meaning today.
func parseToday(s string) (opcoes.Date, error) {
	if s == "" {
		return opcoes.Today(), nil
	}
	return opcoes.ParseDate(s)
}

type profitsCmd struct {
	period    string
	year      int
	ascending bool
}

func (*profitsCmd) Name() string     { return "profits" }
func (*profitsCmd) Synopsis() string { return "realized results per month or year" }
func (*profitsCmd) Usage() string {
	return `opc profits [-period month|year] [-y <year>] [-asc]

  Sums the realized results of closed positions per period of their closing date.
  Periods without closings are not listed.
`
}

func (c *profitsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "period", "month", "Bucketing period: month or year.")
	f.IntVar(&c.year, "y", 0, "Only report periods of this year.")
	f.BoolVar(&c.ascending, "asc", false, "Oldest period first.")
}

func (c *profitsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	period, err := opcoes.ParsePeriod(c.period)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing period: %v\n", err)
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
	bs := snap.Aggregate(period)
	if c.year > 0 {
		bs = bs.Within(opcoes.Yearly.Range(opcoes.NewDate(c.year, 1, 1)))
	}
	printMarkdown(renderer.ProfitsMarkdown(bs, c.ascending))
	return subcommands.ExitSuccess
}

type dashboardCmd struct {
	date      string
	alertDays int
}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "summary of the book and expiration alerts" }
func (*dashboardCmd) Usage() string {
	return `opc dashboard [-d <YYYY-MM-DD>] [-alert-days <n>]

  Summarizes open positions, the result of the month and positions expiring soon.
`
}

func (c *dashboardCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Reference day. Defaults to today.")
	f.IntVar(&c.alertDays, "alert-days", -1, "Days ahead an expiration raises an alert. Defaults to the configuration.")
}

func (c *dashboardCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	days := a.cfg.Alerts.Days
	if c.alertDays >= 0 {
		days = c.alertDays
	}
	snap, err := a.snapshot(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading book: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.DashboardMarkdown(opcoes.NewDashboard(snap, today, days)))
	return subcommands.ExitSuccess
}
