package opcoes

import "fmt"

// RiskLevel is an ordinal risk band.
type RiskLevel int

const (
	VeryLow RiskLevel = iota
	Low
	Medium
	High
	VeryHigh
)

func (r RiskLevel) String() string {
	switch r {
	case VeryLow:
		return "very-low"
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	case VeryHigh:
		return "very-high"
	default:
		return fmt.Sprintf("RiskLevel(%d)", int(r))
	}
}

// Label returns the Portuguese name of the band.
func (r RiskLevel) Label() string {
	switch r {
	case VeryLow:
		return "baixíssimo"
	case Low:
		return "baixo"
	case Medium:
		return "médio"
	case High:
		return "alto"
	case VeryHigh:
		return "altíssimo"
	default:
		return r.String()
	}
}

// Classify maps a divergence to a risk band.
//
// A bought option risks little when it is already in the money (negative
// divergence) and more as the strike drifts away. A sold option is the
// mirror image. Boundary values belong to the band of the "<=" comparison.
// The thresholds are the dashboard's rule of thumb, not a pricing model.
func Classify(dir Direction, typ InstrumentType, divergence Percent) RiskLevel {
	d := float64(divergence)
	switch {
	case dir == Buy:
		switch {
		case d < 0:
			return VeryLow
		case d <= 4:
			return Low
		case d <= 6:
			return Medium
		default:
			return High
		}
	case typ == Put:
		switch {
		case d < 0:
			return VeryHigh
		case d <= 4:
			return High
		case d <= 6:
			return Medium
		default:
			return Low
		}
	default: // sold call
		switch {
		case d < 0:
			return VeryHigh
		case d > 6:
			return Low
		case d > 3:
			return Medium
		default:
			return High
		}
	}
}

// Risk is the risk assessment of a position.
type Risk struct {
	Level      RiskLevel
	Divergence Percent
	Gauge      int // 0-100 filling of the risk meter
}

// gauge returns how full the risk meter is drawn for a band.
func gauge(dir Direction, level RiskLevel) int {
	if dir == Buy {
		switch level {
		case VeryLow:
			return 10
		case Low:
			return 50
		case Medium:
			return 70
		default:
			return 90
		}
	}
	switch level {
	case Low:
		return 20
	case Medium:
		return 50
	case High:
		return 70
	default:
		return 90
	}
}

// Risk classifies the position. ok is false when the divergence is undefined.
func (p Position) Risk() (r Risk, ok bool) {
	div, ok := p.Divergence()
	if !ok {
		return Risk{}, false
	}
	level := Classify(p.Direction, p.Type, div)
	return Risk{Level: level, Divergence: div, Gauge: gauge(p.Direction, level)}, true
}
