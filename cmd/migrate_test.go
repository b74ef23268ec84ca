package cmd

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/etnz/opcoes"
	"github.com/etnz/opcoes/store"
	"github.com/etnz/opcoes/store/sqlite"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

func TestCopyBook(t *testing.T) {
	ctx := context.Background()
	src := store.NewMemory(nil)
	p, _ := src.InsertPosition(ctx, opcoes.Position{
		User: "tester", Ticker: "PETRO300", Underlying: "PETR4", Type: opcoes.Put, Direction: opcoes.Sell,
		Strike: opcoes.R(30), Quote: opcoes.R(31), Quantity: opcoes.Q(100), Premium: opcoes.R(1),
		Expiration: opcoes.NewDate(2024, 3, 15),
	})
	src.ClosePosition(ctx, opcoes.Closing{User: "tester", Position: p.ID, Premium: opcoes.R(0.5), Quantity: opcoes.Q(100), Date: opcoes.NewDate(2024, 3, 1)})
	src.InsertCollateral(ctx, opcoes.Collateral{User: "tester", Kind: opcoes.FixedIncome, Instrument: opcoes.Caixa, Amount: opcoes.R(3000)})
	src.InsertGoal(ctx, opcoes.Goal{User: "tester", Kind: opcoes.MonthlyGoal, Year: 2024, Target: opcoes.R(100)})
	book, _ := src.Snapshot(ctx, "tester")
	book.Closings = append(book.Closings, opcoes.Closing{ID: "orphan", User: "tester", Position: "gone"})

	dst := store.NewMemory(nil)
	copied, skipped, err := copyBook(ctx, book, dst)
	if err != nil || copied != 4 || skipped != 0 {
		t.Fatalf("copyBook() = %d, %d, %v, want 4 copied", copied, skipped, err)
	}
	got, _ := dst.Snapshot(ctx, "tester")
	if diffs := compareBooks(book, got); len(diffs) != 0 {
		t.Errorf("compareBooks() = %q, want none", diffs)
	}

	copied, skipped, err = copyBook(ctx, book, dst)
	if err != nil || copied != 0 || skipped != 4 {
		t.Errorf("copyBook() again = %d, %d, %v, want everything skipped", copied, skipped, err)
	}

	diffs := compareBooks(book, &opcoes.Snapshot{})
	if len(diffs) < 3 || diffs[0] != "position "+p.ID+" is missing" {
		t.Errorf("compareBooks(empty) = %q, want the missing records reported", diffs)
	}
}

func TestMigrate(t *testing.T) {
	path := newBook(t)
	mustRun(t, &addCmd{}, soldCall...)
	mustRun(t, &addStockCmd{}, "-ticker", "PETR4", "-qty", "100")

	if got := run(t, &migrateCmd{}, "-to-driver", "sqlite"); got != subcommands.ExitUsageError {
		t.Errorf("migrate without -to = %v, want a usage error", got)
	}
	if got := run(t, &migrateCmd{}, "-to-driver", "jsonl", "-to", path); got != subcommands.ExitUsageError {
		t.Errorf("migrate onto itself = %v, want a usage error", got)
	}

	db := filepath.Join(t.TempDir(), "book.db")
	mustRun(t, &migrateCmd{}, "-to-driver", "sqlite", "-to", db)

	s, err := sqlite.Open(context.Background(), db, zerolog.Nop())
	if err != nil {
		t.Fatalf("sqlite.Open() error: %v", err)
	}
	defer s.Close()
	snap, err := s.Snapshot(context.Background(), "tester")
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Positions) != 1 || len(snap.Collaterals) != 1 {
		t.Errorf("migrated book = %+v, want the position and the shares", snap)
	}
}
