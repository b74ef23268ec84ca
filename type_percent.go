package opcoes

import (
	"fmt"
	"strings"
)

// NotApplicable is displayed in place of a percentage that cannot be computed.
const NotApplicable = "—"

type Percent float64

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return strings.Replace(fmt.Sprintf("%.2f%%", p), ".", ",", 1)
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" || res == "-0.00%" {
		return "-"
	}
	return strings.Replace(res, ".", ",", 1)
}

// FormatPercent renders p, or NotApplicable when ok is false.
func FormatPercent(p Percent, ok bool) string {
	if !ok {
		return NotApplicable
	}
	return p.String()
}
