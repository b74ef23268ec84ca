package opcoes

import "github.com/shopspring/decimal"

// ExerciseFeeRate is the brokerage and exchange cost added to the exercise
// value when estimating the capital a sold put ties up.
var ExerciseFeeRate = decimal.RequireFromString("0.0025")

// InitialValue is the amount exchanged when the position was opened.
func (p Position) InitialValue() Money { return p.Premium.Mul(p.Quantity) }

// FinalValue is the amount exchanged when the position was closed.
func (c Closing) FinalValue() Money { return c.Premium.Mul(c.Quantity) }

// RealizedResult is the profit (positive) or loss (negative) of a closed position.
//
// A seller collected the initial value and paid the final one to close; a
// buyer did the opposite.
func RealizedResult(p Position, c Closing) Money {
	initial, final := p.InitialValue(), c.FinalValue()
	if p.Direction == Sell {
		return initial.Sub(final)
	}
	return final.Sub(initial)
}

// ResultPercent is the realized result relative to the opening premium.
// ok is false when the opening premium is zero.
func ResultPercent(p Position, c Closing) (pct Percent, ok bool) {
	if p.Premium.IsZero() {
		return 0, false
	}
	diff := c.Premium.Sub(p.Premium)
	if p.Direction == Sell {
		diff = diff.Neg()
	}
	return diff.Ratio(p.Premium)
}

// MaxResult is the best case for a seller (the whole premium is kept) and the
// worst case for a buyer (the whole premium is lost).
func (p Position) MaxResult() Money {
	v := p.InitialValue()
	if p.Direction == Buy {
		return v.Neg()
	}
	return v
}

// MaxResultLabel names what MaxResult represents.
func (p Position) MaxResultLabel() string {
	if p.Direction == Buy {
		return "Perda máxima"
	}
	return "Ganho máximo"
}

// Divergence is the distance between strike and the underlying quote,
// oriented so that a positive value means the option is out of the money.
// ok is false unless both strike and quote are positive.
func (p Position) Divergence() (pct Percent, ok bool) {
	if !p.Strike.IsPositive() || !p.Quote.IsPositive() {
		return 0, false
	}
	diff := p.Strike.Sub(p.Quote)
	if p.Type == Put {
		diff = diff.Neg()
	}
	return diff.Ratio(p.Quote)
}

// AbsDivergence is the unsigned distance between strike and quote, as listed
// next to open positions.
func (p Position) AbsDivergence() (Percent, bool) {
	if !p.Strike.IsPositive() || !p.Quote.IsPositive() {
		return 0, false
	}
	return p.Strike.Sub(p.Quote).Abs().Ratio(p.Quote)
}

// ExerciseValue is the cash exchanged if the option is exercised.
func (p Position) ExerciseValue() Money { return p.Strike.Mul(p.Quantity) }

// ExerciseShares is the number of shares delivered if the option is exercised.
func (p Position) ExerciseShares() Quantity { return p.Quantity }

// SettlesInCash reports whether the exercise is paid in cash by the holder of
// the position (bought call, sold put). Otherwise shares are delivered.
func (p Position) SettlesInCash() bool { return RegimeOf(p.Direction, p.Type) == FixedIncomeBacked }

// CollateralYield is MaxResult relative to the exercise value.
// ok is false unless quantity, strike and premium are all positive.
func (p Position) CollateralYield() (Percent, bool) {
	if !p.Quantity.IsPositive() || !p.Strike.IsPositive() || !p.Premium.IsPositive() {
		return 0, false
	}
	return p.MaxResult().Ratio(p.ExerciseValue())
}

// Notional is the exercise value increased by the exercise fees.
func (p Position) Notional() Money {
	return p.ExerciseValue().Mul(Quantity{value: decimal.NewFromInt(1).Add(ExerciseFeeRate)})
}

// MaxProfitability is the maximum gain of a sold option relative to its notional.
// ok is false for bought options and when the notional is zero.
func (p Position) MaxProfitability() (Percent, bool) {
	if p.Direction != Sell {
		return 0, false
	}
	return p.MaxResult().Ratio(p.Notional())
}

// PremiumSpread is the difference between the opening and closing premium per unit.
func PremiumSpread(p Position, c Closing) Money { return p.Premium.Sub(c.Premium) }
