// Package cmd implements the CLI application to manage an options book.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/opcoes"
	"github.com/etnz/opcoes/config"
	"github.com/etnz/opcoes/logger"
	"github.com/etnz/opcoes/store"
	"github.com/etnz/opcoes/store/jsonl"
	"github.com/etnz/opcoes/store/postgres"
	"github.com/etnz/opcoes/store/sqlite"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&addCmd{}, "positions")
	c.Register(&editCmd{}, "positions")
	c.Register(&rmCmd{}, "positions")
	c.Register(&listCmd{}, "positions")
	c.Register(&previewCmd{}, "positions")

	c.Register(&closeCmd{}, "closings")
	c.Register(&editCloseCmd{}, "closings")
	c.Register(&reopenCmd{}, "closings")

	c.Register(&collateralCmd{}, "collateral")
	c.Register(&addStockCmd{}, "collateral")
	c.Register(&addFixedCmd{}, "collateral")
	c.Register(&editCollateralCmd{}, "collateral")
	c.Register(&rmCollateralCmd{}, "collateral")

	c.Register(&profitsCmd{}, "reports")
	c.Register(&dashboardCmd{}, "reports")
	c.Register(&goalsCmd{}, "reports")
	c.Register(&addGoalCmd{}, "reports")
	c.Register(&rmGoalCmd{}, "reports")

	c.Register(&serveCmd{}, "server")
	c.Register(&migrateCmd{}, "server")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "opcoes.toml", "Path to the TOML configuration file. A missing file means defaults.")
var userFlag = flag.String("user", "", "User owning the book. Overrides the configuration.")

// stdout receives the reports.
var stdout io.Writer = os.Stdout

// app is what every command works with: the configuration, a logger and the opened store.
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	store store.Store
}

// loadConfig reads the configuration file and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if *userFlag != "" {
		cfg.User = *userFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openApp loads the configuration and opens the configured store.
// Callers must Close it.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log, store: st}, nil
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverJSONL:
		s, err := jsonl.Open(cfg.Store.Path, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.Store.Path, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverPostgres:
		s, err := postgres.Open(ctx, postgres.Config{
			DSN:           cfg.Store.DSN,
			MaxConns:      cfg.Store.PoolMaxConns,
			MinConns:      cfg.Store.PoolMinConns,
			RunMigrations: cfg.Store.RunMigrations,
		}, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("closing store")
	}
}

// snapshot loads the book of the configured user.
func (a *app) snapshot(ctx context.Context) (*opcoes.Snapshot, error) {
	snap, err := a.store.Snapshot(ctx, a.cfg.User)
	if err != nil {
		return nil, err
	}
	for _, c := range snap.Orphans() {
		a.log.Warn().Str("closing", c.ID).Str("position", c.Position).Msg("closing of an unknown position is ignored")
	}
	return snap, nil
}

// printMarkdown renders md for the terminal. The raw markdown is printed if rendering fails.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(140))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Fprint(stdout, out)
			return
		}
	}
	fmt.Fprint(stdout, md)
}

// resolve finds the record whose ID starts with prefix. An exact match always wins.
func resolve[T any](what string, records []T, id func(T) string, prefix string) (T, error) {
	var zero T
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return zero, fmt.Errorf("missing %s id", what)
	}
	var found []T
	for _, r := range records {
		switch {
		case id(r) == prefix:
			return r, nil
		case strings.HasPrefix(id(r), prefix):
			found = append(found, r)
		}
	}
	switch len(found) {
	case 0:
		return zero, fmt.Errorf("%s %q: %w", what, prefix, store.ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return zero, fmt.Errorf("%s id %q is ambiguous, %d records match", what, prefix, len(found))
	}
}

func positionID(p opcoes.Position) string     { return p.ID }
func collateralID(c opcoes.Collateral) string { return c.ID }
func goalID(g opcoes.Goal) string             { return g.ID }

// oneArg returns the single positional argument of f.
func oneArg(f *flag.FlagSet, what string) (string, bool) {
	if f.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expecting exactly one %s id, got %d arguments\n", what, f.NArg())
		return "", false
	}
	return f.Arg(0), true
}
