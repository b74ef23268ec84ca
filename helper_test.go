package opcoes

import (
	"testing"
	"time"
)

// BR is a helper for test to create reais from const
func BR(v float64) Money { return R(v) }

// at returns a creation timestamp n minutes after a fixed origin.
func at(n int) time.Time {
	return time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Minute)
}

// option is a helper for test to create a position with the fields that matter.
func option(id string, dir Direction, typ InstrumentType, underlying string, qty int, strike, premium float64) Position {
	return Position{
		ID:         id,
		Ticker:     underlying[:4] + "X" + id,
		Underlying: underlying,
		Type:       typ,
		Direction:  dir,
		Strike:     BR(strike),
		Quote:      BR(strike),
		Quantity:   Q(qty),
		Premium:    BR(premium),
		Expiration: NewDate(2024, time.December, 20),
		Created:    at(len(id)),
	}
}

// closing is a helper for test to close a position at a premium on a day.
func closing(id string, p Position, premium float64, day string) Closing {
	return Closing{
		ID:       id,
		Position: p.ID,
		Premium:  BR(premium),
		Quantity: p.Quantity,
		Date:     MustParseDate(day),
	}
}

// inLocation runs the test with time.Local set to loc.
func inLocation(t *testing.T, loc *time.Location) {
	t.Helper()
	old := time.Local
	time.Local = loc
	t.Cleanup(func() { time.Local = old })
}
