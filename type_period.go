package opcoes

import (
	"fmt"
	"strings"
)

// Period is the granularity used to bucket realized results.
type Period int

const (
	Monthly Period = iota
	Yearly
)

func (p Period) String() string {
	switch p {
	case Monthly:
		return "monthly"
	case Yearly:
		return "yearly"
	default:
		return "periodic"
	}
}

// Name returns the singular noun for the period (e.g., "month", "year").
func (p Period) Name() string {
	switch p {
	case Monthly:
		return "month"
	case Yearly:
		return "year"
	default:
		return "period"
	}
}

// Key returns the bucket key of d: "YYYY-MM" for months, "YYYY" for years.
func (p Period) Key(d Date) string {
	switch p {
	case Monthly:
		return fmt.Sprintf("%04d-%02d", d.Year(), int(d.Month()))
	case Yearly:
		return fmt.Sprintf("%04d", d.Year())
	default:
		panic("unknown period")
	}
}

// Range returns a Range for the given period containing the date d.
func (p Period) Range(d Date) Range {
	return Range{From: d.StartOf(p), To: d.EndOf(p)}
}

func ParsePeriod(p string) (Period, error) {
	p = strings.ToLower(strings.TrimSpace(p))
	switch p {
	case "monthly", "month", "mes", "mês", "mensal":
		return Monthly, nil
	case "yearly", "year", "ano", "anual":
		return Yearly, nil
	default:
		return Monthly, fmt.Errorf("unknown period %s", p)
	}
}
