package opcoes

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// CollateralKind distinguishes pledged shares from pledged cash.
type CollateralKind int

const (
	Equity CollateralKind = iota
	FixedIncome
)

func (k CollateralKind) String() string {
	switch k {
	case Equity:
		return "equity"
	case FixedIncome:
		return "fixed-income"
	default:
		return fmt.Sprintf("CollateralKind(%d)", int(k))
	}
}

// Label returns the Portuguese name of the kind.
func (k CollateralKind) Label() string {
	if k == FixedIncome {
		return "Renda fixa"
	}
	return "Ação"
}

func ParseCollateralKind(s string) (CollateralKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "equity", "stock", "acao", "ação":
		return Equity, nil
	case "fixed-income", "fixed_income", "renda_fixa", "renda-fixa":
		return FixedIncome, nil
	default:
		return Equity, fmt.Errorf("unknown collateral kind %q", s)
	}
}

func (k CollateralKind) MarshalJSON() ([]byte, error) { return json.Marshal(k.String()) }
func (k *CollateralKind) UnmarshalJSON(data []byte) (err error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*k, err = ParseCollateralKind(s)
	return err
}

// FixedIncomeKind is the instrument holding a fixed-income collateral.
type FixedIncomeKind int

const (
	TesouroSelic FixedIncomeKind = iota
	Caixa
)

func (k FixedIncomeKind) String() string {
	switch k {
	case TesouroSelic:
		return "tesouro_selic"
	case Caixa:
		return "caixa"
	default:
		return fmt.Sprintf("FixedIncomeKind(%d)", int(k))
	}
}

// Label returns the display name of the instrument.
func (k FixedIncomeKind) Label() string {
	if k == Caixa {
		return "Caixa"
	}
	return "Tesouro Selic"
}

func ParseFixedIncomeKind(s string) (FixedIncomeKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tesouro_selic", "tesouro-selic", "selic", "tesouro":
		return TesouroSelic, nil
	case "caixa", "cash":
		return Caixa, nil
	default:
		return TesouroSelic, fmt.Errorf("unknown fixed income instrument %q", s)
	}
}

func (k FixedIncomeKind) MarshalJSON() ([]byte, error) { return json.Marshal(k.String()) }
func (k *FixedIncomeKind) UnmarshalJSON(data []byte) (err error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*k, err = ParseFixedIncomeKind(s)
	return err
}

// Collateral is an asset pledged to cover open positions.
// Ticker and Quantity are set for Equity, Instrument and Amount for FixedIncome.
type Collateral struct {
	ID         string          `json:"id"`
	User       string          `json:"user,omitempty"`
	Kind       CollateralKind  `json:"type"`
	Ticker     string          `json:"ticker,omitempty"`
	Quantity   Quantity        `json:"quantity"`
	Instrument FixedIncomeKind `json:"instrument"`
	Amount     Money           `json:"amount"`
	Created    time.Time       `json:"created"`
}

// Normalize returns a copy of c with the ticker trimmed and upper cased.
func (c Collateral) Normalize() Collateral {
	c.Ticker = strings.ToUpper(strings.TrimSpace(c.Ticker))
	return c
}

// Name is the ticker for equities and the instrument for fixed income.
func (c Collateral) Name() string {
	if c.Kind == FixedIncome {
		return c.Instrument.Label()
	}
	return c.Ticker
}

// CollateralOrder compares two collaterals to decide which one absorbs
// requirements first.
type CollateralOrder func(a, b Collateral) int

// ByCreation allocates the oldest collateral first. Ties are broken by ID so
// the order is total.
func ByCreation(a, b Collateral) int {
	if c := a.Created.Compare(b.Created); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// sortCollaterals returns a sorted copy of cs.
func sortCollaterals(cs []Collateral, order CollateralOrder) []Collateral {
	cs = slices.Clone(cs)
	if order != nil {
		slices.SortStableFunc(cs, order)
	}
	return cs
}
