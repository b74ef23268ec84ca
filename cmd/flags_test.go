package cmd

import (
	"errors"
	"flag"
	"strings"
	"testing"
	"time"

	"github.com/etnz/opcoes"
	"github.com/etnz/opcoes/store"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  opcoes.Money
	}{
		{"38,50", opcoes.R(38.5)},
		{"38.50", opcoes.R(38.5)},
		{"1.234,56", opcoes.R(1234.56)},
		{"R$ 2.000,00", opcoes.R(2000)},
		{"0,85", opcoes.R(0.85)},
		{"12", opcoes.R(12)},
	}
	for _, test := range tests {
		got, err := parseAmount(test.input)
		if err != nil {
			t.Errorf("parseAmount(%q) error: %v", test.input, err)
			continue
		}
		if !got.Equal(test.want) {
			t.Errorf("parseAmount(%q) = %v, want %v", test.input, got, test.want)
		}
	}
	for _, input := range []string{"", "abc", "1,2,3"} {
		if _, err := parseAmount(input); err == nil {
			t.Errorf("parseAmount(%q) expected an error", input)
		}
	}
}

func TestParseShares(t *testing.T) {
	got, err := parseShares("1.000")
	if err != nil || !got.Equal(opcoes.Q(1000)) {
		t.Errorf("parseShares(1.000) = %v, %v, want 1000", got, err)
	}
	if _, err := parseShares("cem"); err == nil {
		t.Errorf("parseShares(cem) expected an error")
	}
}

func parseFlags(t *testing.T, p *positionFlags, args ...string) map[string]bool {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	p.SetFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse(%q) error: %v", args, err)
	}
	return visited(fs)
}

func TestPositionFlags_Apply(t *testing.T) {
	var p positionFlags
	set := parseFlags(t, &p,
		"-ticker", "petrc380", "-underlying", " petr4", "-type", "call", "-op", "venda",
		"-strike", "38,50", "-quote", "36.12", "-qty", "100", "-premium", "0,85", "-exp", "2024-03-15")

	if err := p.required(set); err != nil {
		t.Fatalf("required() = %v", err)
	}
	var pos opcoes.Position
	if err := p.apply(&pos, set); err != nil {
		t.Fatalf("apply() error: %v", err)
	}
	if pos.Ticker != "PETRC380" || pos.Underlying != "PETR4" {
		t.Errorf("tickers = %q %q, want normalized", pos.Ticker, pos.Underlying)
	}
	if pos.Type != opcoes.Call || pos.Direction != opcoes.Sell {
		t.Errorf("position = %v %v, want SELL CALL", pos.Direction, pos.Type)
	}
	if !pos.Strike.Equal(opcoes.R(38.5)) || !pos.Quote.Equal(opcoes.R(36.12)) || !pos.Premium.Equal(opcoes.R(0.85)) {
		t.Errorf("amounts = %v %v %v", pos.Strike, pos.Quote, pos.Premium)
	}
	if pos.Expiration != opcoes.NewDate(2024, time.March, 15) {
		t.Errorf("expiration = %v, want 2024-03-15", pos.Expiration)
	}
	if err := pos.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestPositionFlags_ApplyOnlyVisited(t *testing.T) {
	var p positionFlags
	set := parseFlags(t, &p, "-strike", "40")

	pos := opcoes.Position{Ticker: "PETRC380", Strike: opcoes.R(38), Premium: opcoes.R(1)}
	if err := p.apply(&pos, set); err != nil {
		t.Fatalf("apply() error: %v", err)
	}
	if !pos.Strike.Equal(opcoes.R(40)) || !pos.Premium.Equal(opcoes.R(1)) || pos.Ticker != "PETRC380" {
		t.Errorf("apply(-strike 40) = %+v, want only the strike changed", pos)
	}
}

func TestPositionFlags_Required(t *testing.T) {
	var p positionFlags
	set := parseFlags(t, &p, "-ticker", "PETRC380", "-fetch")

	err := p.required(set)
	if err == nil {
		t.Fatalf("required() expected an error")
	}
	for _, name := range []string{"-underlying", "-premium", "-exp"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("required() = %v, want %s reported", err, name)
		}
	}
	if strings.Contains(err.Error(), "-quote") {
		t.Errorf("required() = %v, -fetch replaces -quote", err)
	}
}

func TestPositionFlags_Invalid(t *testing.T) {
	for _, args := range [][]string{
		{"-type", "straddle"},
		{"-op", "hold"},
		{"-strike", "abc"},
		{"-exp", "2024-13-45"},
	} {
		var p positionFlags
		set := parseFlags(t, &p, args...)
		var pos opcoes.Position
		if err := p.apply(&pos, set); err == nil {
			t.Errorf("apply(%q) expected an error", args)
		}
	}
}

func TestResolve(t *testing.T) {
	records := []opcoes.Goal{{ID: "a1b2"}, {ID: "a1c3"}, {ID: "a1"}}

	tests := []struct {
		prefix  string
		want    string
		wantErr bool
	}{
		{prefix: "a1b", want: "a1b2"},
		{prefix: "a1c3", want: "a1c3"},
		{prefix: "a1", want: "a1"}, // exact match wins over prefixes
		{prefix: "a", wantErr: true},
		{prefix: "zz", wantErr: true},
		{prefix: " ", wantErr: true},
	}
	for _, test := range tests {
		got, err := resolve("goal", records, goalID, test.prefix)
		if test.wantErr {
			if err == nil {
				t.Errorf("resolve(%q) = %v, want an error", test.prefix, got.ID)
			}
			continue
		}
		if err != nil || got.ID != test.want {
			t.Errorf("resolve(%q) = %q, %v, want %q", test.prefix, got.ID, err, test.want)
		}
	}

	if _, err := resolve("goal", records, goalID, "zz"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("resolve(zz) = %v, want ErrNotFound", err)
	}
}
