package cmd

import (
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/opcoes"
	"github.com/shopspring/decimal"
)

// parseAmount reads an amount typed either way: "1.234,56" with a decimal
// comma, or "1234.56" with a decimal point when there is no comma.
func parseAmount(s string) (opcoes.Money, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return opcoes.Money{}, fmt.Errorf("invalid amount %q", s)
	}
	return opcoes.R(v), nil
}

// parseShares reads a number of shares or contracts, "." grouping thousands.
func parseShares(s string) (opcoes.Quantity, error) {
	v, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ".", ""))
	if err != nil {
		return opcoes.Quantity{}, fmt.Errorf("invalid quantity %q", s)
	}
	return opcoes.Q(v), nil
}

// visited returns the names of the flags set on the command line.
func visited(f *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	f.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return set
}

// positionFlags are the flags describing a position, shared by add, edit and preview.
type positionFlags struct {
	ticker     string
	underlying string
	typ        string
	op         string
	strike     string
	quote      string
	quantity   string
	premium    string
	expiration string
	fetch      bool
}

func (p *positionFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.ticker, "ticker", "", "Option code, e.g. PETRC380.")
	f.StringVar(&p.underlying, "underlying", "", "Underlying share code, e.g. PETR4.")
	f.StringVar(&p.typ, "type", "", "Option type: call or put.")
	f.StringVar(&p.op, "op", "", "Operation: buy (compra) or sell (venda).")
	f.StringVar(&p.strike, "strike", "", "Strike price.")
	f.StringVar(&p.quote, "quote", "", "Price of the underlying when the position was opened.")
	f.StringVar(&p.quantity, "qty", "", "Number of options.")
	f.StringVar(&p.premium, "premium", "", "Premium per option.")
	f.StringVar(&p.expiration, "exp", "", "Expiration date (YYYY-MM-DD).")
	f.BoolVar(&p.fetch, "fetch", false, "Fetch the current price of the underlying as the quote.")
}

// apply sets on pos every field whose flag is in set.
func (p *positionFlags) apply(pos *opcoes.Position, set map[string]bool) error {
	var err error
	if set["ticker"] {
		pos.Ticker = p.ticker
	}
	if set["underlying"] {
		pos.Underlying = p.underlying
	}
	if set["type"] {
		if pos.Type, err = opcoes.ParseInstrumentType(p.typ); err != nil {
			return err
		}
	}
	if set["op"] {
		if pos.Direction, err = opcoes.ParseDirection(p.op); err != nil {
			return err
		}
	}
	if set["strike"] {
		if pos.Strike, err = parseAmount(p.strike); err != nil {
			return fmt.Errorf("strike: %w", err)
		}
	}
	if set["quote"] {
		if pos.Quote, err = parseAmount(p.quote); err != nil {
			return fmt.Errorf("quote: %w", err)
		}
	}
	if set["qty"] {
		if pos.Quantity, err = parseShares(p.quantity); err != nil {
			return err
		}
	}
	if set["premium"] {
		if pos.Premium, err = parseAmount(p.premium); err != nil {
			return fmt.Errorf("premium: %w", err)
		}
	}
	if set["exp"] {
		if pos.Expiration, err = opcoes.ParseDate(p.expiration); err != nil {
			return err
		}
	}
	*pos = pos.Normalize()
	return nil
}

// required reports the position flags missing from set.
func (p *positionFlags) required(set map[string]bool) error {
	var missing []string
	for _, name := range []string{"ticker", "underlying", "type", "op", "strike", "qty", "premium", "exp"} {
		if !set[name] {
			missing = append(missing, "-"+name)
		}
	}
	if !set["quote"] && !p.fetch {
		missing = append(missing, "-quote (or -fetch)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}
	return nil
}
