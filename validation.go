package opcoes

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid record")

// stockTickerRE matches B3 share codes such as PETR4 or TAEE11.
var stockTickerRE = regexp.MustCompile(`^[A-Z]{4}\d{1,2}$`)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate reports every inconsistency of a position, joined.
// The computations of this package never call it: they accept any input.
func (p Position) Validate() error {
	var errs []error
	if p.Ticker == "" {
		errs = append(errs, invalid("position ticker is missing"))
	}
	if p.Underlying == "" {
		errs = append(errs, invalid("position underlying is missing"))
	}
	if !p.Quantity.IsPositive() {
		errs = append(errs, invalid("position quantity must be positive, got %s", p.Quantity))
	}
	if p.Strike.IsNegative() {
		errs = append(errs, invalid("position strike cannot be negative, got %s", p.Strike))
	}
	if p.Quote.IsNegative() {
		errs = append(errs, invalid("position quote cannot be negative, got %s", p.Quote))
	}
	if p.Premium.IsNegative() {
		errs = append(errs, invalid("position premium cannot be negative, got %s", p.Premium))
	}
	if p.Expiration.IsZero() {
		errs = append(errs, invalid("position expiration is missing"))
	}
	return errors.Join(errs...)
}

// Validate reports every inconsistency of a closing, joined.
// Closings happen on trading days, so weekend dates are rejected.
func (c Closing) Validate() error {
	var errs []error
	if c.Position == "" {
		errs = append(errs, invalid("closing position is missing"))
	}
	if c.Premium.IsNegative() {
		errs = append(errs, invalid("closing premium cannot be negative, got %s", c.Premium))
	}
	if c.Quantity.IsNegative() {
		errs = append(errs, invalid("closing quantity cannot be negative, got %s", c.Quantity))
	}
	switch {
	case c.Date.IsZero():
		errs = append(errs, invalid("closing date is missing"))
	case c.Date.Weekday() == time.Saturday || c.Date.Weekday() == time.Sunday:
		errs = append(errs, invalid("closing date %s is not a business day", c.Date))
	}
	return errors.Join(errs...)
}

// Validate reports every inconsistency of a collateral, joined.
func (c Collateral) Validate() error {
	var errs []error
	switch c.Kind {
	case Equity:
		if !stockTickerRE.MatchString(c.Ticker) {
			errs = append(errs, invalid("collateral ticker %q is not a share code (e.g. PETR4)", c.Ticker))
		}
		if c.Quantity.IsNegative() {
			errs = append(errs, invalid("collateral quantity cannot be negative, got %s", c.Quantity))
		}
	case FixedIncome:
		if c.Amount.IsNegative() {
			errs = append(errs, invalid("collateral amount cannot be negative, got %s", c.Amount))
		}
	default:
		errs = append(errs, invalid("unknown collateral kind %s", c.Kind))
	}
	return errors.Join(errs...)
}

// Validate reports every inconsistency of a goal, joined.
func (g Goal) Validate() error {
	var errs []error
	if !g.Target.IsPositive() {
		errs = append(errs, invalid("goal target must be positive, got %s", g.Target))
	}
	if g.Kind == AnnualGoal && g.Year <= 0 {
		errs = append(errs, invalid("annual goal year is missing"))
	}
	return errors.Join(errs...)
}
