package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/opcoes"
	"github.com/shopspring/decimal"
)

// Column values of the hosted tables (ops_registry, ops_completed,
// garantias, goal). Reading goes through the opcoes parsers, which accept
// both these values and the canonical names.

// OperationValue is the ops_operacao value of d.
func OperationValue(d opcoes.Direction) string { return strings.ToLower(d.Label()) }

// TypeValue is the ops_tipo value of t.
func TypeValue(t opcoes.InstrumentType) string { return strings.ToLower(t.String()) }

// CollateralValue is the garantias.tipo value of k.
func CollateralValue(k opcoes.CollateralKind) string {
	if k == opcoes.FixedIncome {
		return "renda_fixa"
	}
	return "acao"
}

// GoalValue is the goal_tipo value of k.
func GoalValue(k opcoes.GoalKind) string {
	if k == opcoes.AnnualGoal {
		return "anual"
	}
	return "mensal"
}

// DateValue is the text of a date column, empty for the zero date.
func DateValue(d opcoes.Date) string { return d.String() }

// Number parses a numeric column read as text. NULL columns are read as "".
func Number(column, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("column %s: %w", column, err)
	}
	return d, nil
}

// Day parses a date column read as text. Empty text is the zero date.
func Day(column, s string) (opcoes.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return opcoes.Date{}, nil
	}
	d, err := opcoes.ParseClosingDate(s)
	if err != nil {
		return d, fmt.Errorf("column %s: %w", column, err)
	}
	return d, nil
}

// Timestamp parses a creation time stored as RFC 3339 text.
func Timestamp(column, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return t, fmt.Errorf("column %s: %w", column, err)
	}
	return t, nil
}

// Row decodes the text columns shared by the SQL stores.
type Row struct {
	errs []error
}

func (r *Row) Money(column, s string) opcoes.Money {
	d, err := Number(column, s)
	r.add(err)
	return opcoes.R(d)
}

func (r *Row) Quantity(column, s string) opcoes.Quantity {
	d, err := Number(column, s)
	r.add(err)
	return opcoes.Q(d)
}

func (r *Row) Date(column, s string) opcoes.Date {
	d, err := Day(column, s)
	r.add(err)
	return d
}

func (r *Row) Time(column, s string) time.Time {
	t, err := Timestamp(column, s)
	r.add(err)
	return t
}

func (r *Row) Type(column, s string) opcoes.InstrumentType {
	t, err := opcoes.ParseInstrumentType(s)
	r.check(column, err)
	return t
}

func (r *Row) Direction(column, s string) opcoes.Direction {
	d, err := opcoes.ParseDirection(s)
	r.check(column, err)
	return d
}

func (r *Row) CollateralKind(column, s string) opcoes.CollateralKind {
	k, err := opcoes.ParseCollateralKind(s)
	r.check(column, err)
	return k
}

func (r *Row) Instrument(column, s string) opcoes.FixedIncomeKind {
	k, err := opcoes.ParseFixedIncomeKind(s)
	r.check(column, err)
	return k
}

func (r *Row) GoalKind(column, s string) opcoes.GoalKind {
	k, err := opcoes.ParseGoalKind(s)
	r.check(column, err)
	return k
}

func (r *Row) check(column string, err error) {
	if err != nil {
		r.add(fmt.Errorf("column %s: %w", column, err))
	}
}

func (r *Row) add(err error) {
	if err != nil {
		r.errs = append(r.errs, err)
	}
}

// Err joins every decoding error.
func (r *Row) Err() error { return errors.Join(r.errs...) }
