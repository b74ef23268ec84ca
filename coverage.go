package opcoes

import (
	"fmt"
	"strings"
)

// Regime is the kind of collateral an open position requires.
type Regime int

const (
	// EquityBacked positions require shares of the underlying (sold calls, bought puts).
	EquityBacked Regime = iota
	// FixedIncomeBacked positions require cash or treasury value (bought calls, sold puts).
	FixedIncomeBacked
)

func (r Regime) String() string {
	if r == FixedIncomeBacked {
		return "fixed-income"
	}
	return "equity"
}

// RegimeOf returns the collateral regime of a direction and instrument type.
func RegimeOf(dir Direction, typ InstrumentType) Regime {
	if (dir == Sell && typ == Call) || (dir == Buy && typ == Put) {
		return EquityBacked
	}
	return FixedIncomeBacked
}

// Regime returns the collateral regime of p.
func (p Position) Regime() Regime { return RegimeOf(p.Direction, p.Type) }

// EquityHolding is an equity collateral with the part of it pledged to open positions.
type EquityHolding struct {
	Collateral
	Pledged Quantity
	Free    Quantity // negative when the requirement exceeds every record of the ticker
}

// Status describes the holding the way the collateral list shows it.
func (h EquityHolding) Status() string {
	if h.Pledged.IsPositive() {
		return fmt.Sprintf("Em garantia (%s)", h.Pledged)
	}
	return "Livre"
}

// FixedIncomeHolding is a fixed-income collateral with the part of it pledged to open positions.
type FixedIncomeHolding struct {
	Collateral
	Pledged Money
	Free    Money // negative on the last record when the pool is exhausted
}

// Allocation is the split of every collateral between pledged and free.
type Allocation struct {
	Equities    []EquityHolding
	FixedIncome []FixedIncomeHolding
}

// Allocate pledges collaterals to the requirements of the open positions.
//
// Equity requirements are summed per underlying, fixed-income requirements
// (strike x quantity) are pooled. Each requirement is consumed greedily over
// the matching collaterals in the given order, every record absorbing up to
// its own size. What is left is charged to the last matching record, whose
// free part becomes negative.
//
// Positions are all assumed open: callers pass only open positions.
func Allocate(open []Position, collaterals []Collateral, order CollateralOrder) Allocation {
	shares := make(map[string]Quantity)
	amount := R(0)
	for _, p := range open {
		switch p.Regime() {
		case EquityBacked:
			u := strings.ToUpper(p.Underlying)
			if u == "" {
				continue
			}
			shares[u] = shares[u].Add(p.Quantity)
		case FixedIncomeBacked:
			amount = amount.Add(p.ExerciseValue())
		}
	}

	var a Allocation
	lastEquity := make(map[string]int)
	lastFixed := -1
	for _, c := range sortCollaterals(collaterals, order) {
		switch c.Kind {
		case Equity:
			t := strings.ToUpper(c.Ticker)
			need := shares[t]
			pledged := need.Min(c.Quantity.Max(Q(0)))
			shares[t] = need.Sub(pledged)
			lastEquity[t] = len(a.Equities)
			a.Equities = append(a.Equities, EquityHolding{Collateral: c, Pledged: pledged})
		case FixedIncome:
			pledged := c.Amount.Max(R(0))
			if amount.LessThan(pledged) {
				pledged = amount
			}
			amount = amount.Sub(pledged)
			lastFixed = len(a.FixedIncome)
			a.FixedIncome = append(a.FixedIncome, FixedIncomeHolding{Collateral: c, Pledged: pledged})
		}
	}

	// excess requirements go to the last record
	for t, i := range lastEquity {
		if left := shares[t]; left.IsPositive() {
			a.Equities[i].Pledged = a.Equities[i].Pledged.Add(left)
		}
	}
	if lastFixed >= 0 && amount.IsPositive() {
		a.FixedIncome[lastFixed].Pledged = a.FixedIncome[lastFixed].Pledged.Add(amount)
	}

	for i := range a.Equities {
		h := &a.Equities[i]
		h.Free = h.Quantity.Sub(h.Pledged)
	}
	for i := range a.FixedIncome {
		h := &a.FixedIncome[i]
		h.Free = h.Amount.Sub(h.Pledged)
	}
	return a
}

// FreeShares sums the free quantity of every equity collateral of ticker.
func (a Allocation) FreeShares(ticker string) Quantity {
	ticker = strings.ToUpper(ticker)
	free := Q(0)
	for _, h := range a.Equities {
		if strings.ToUpper(h.Ticker) == ticker {
			free = free.Add(h.Free)
		}
	}
	return free
}

// FreeAmount sums the free amount of every fixed-income collateral.
func (a Allocation) FreeAmount() Money {
	free := R(0)
	for _, h := range a.FixedIncome {
		free = free.Add(h.Free)
	}
	return free
}

// TotalAmount sums the amount of every fixed-income collateral.
func (a Allocation) TotalAmount() Money {
	total := R(0)
	for _, h := range a.FixedIncome {
		total = total.Add(h.Amount)
	}
	return total
}

// Coverage tells whether the free collateral suffices for a position.
type Coverage struct {
	Regime Regime

	// equity-backed
	RequiredShares    Quantity
	FreeShares        Quantity
	ShortfallQuantity Quantity

	// fixed-income-backed
	RequiredAmount  Money
	FreeAmount      Money
	ShortfallAmount Money
}

// Covered reports whether there is no shortfall.
func (c Coverage) Covered() bool {
	return !c.ShortfallQuantity.IsPositive() && !c.ShortfallAmount.IsPositive()
}

// Label is "Coberto" when covered, otherwise it names the shortfall.
func (c Coverage) Label() string {
	switch {
	case c.Covered():
		return "Coberto"
	case c.Regime == EquityBacked:
		return fmt.Sprintf("Alavancado em %s ações", c.ShortfallQuantity)
	default:
		return fmt.Sprintf("Alavancado em %s", c.ShortfallAmount)
	}
}

// Evaluate checks p against the free collateral of a.
// a must not already include the requirement of p itself.
func Evaluate(p Position, a Allocation) Coverage {
	c := Coverage{Regime: p.Regime(), ShortfallQuantity: Q(0), ShortfallAmount: R(0)}
	switch c.Regime {
	case EquityBacked:
		c.RequiredShares = p.Quantity
		c.FreeShares = a.FreeShares(p.Underlying)
		if short := p.Quantity.Sub(c.FreeShares); short.IsPositive() {
			c.ShortfallQuantity = short
		}
	case FixedIncomeBacked:
		c.RequiredAmount = p.ExerciseValue()
		c.FreeAmount = a.FreeAmount()
		if short := c.RequiredAmount.Sub(c.FreeAmount); short.IsPositive() {
			c.ShortfallAmount = short
		}
	}
	return c
}
