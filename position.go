package opcoes

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// InstrumentType is the kind of option contract.
type InstrumentType int

const (
	Call InstrumentType = iota
	Put
)

func (t InstrumentType) String() string {
	switch t {
	case Call:
		return "CALL"
	case Put:
		return "PUT"
	default:
		return fmt.Sprintf("InstrumentType(%d)", int(t))
	}
}

// ParseInstrumentType is case insensitive.
func ParseInstrumentType(s string) (InstrumentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call":
		return Call, nil
	case "put":
		return Put, nil
	default:
		return Call, fmt.Errorf("unknown instrument type %q, want call or put", s)
	}
}

func (t InstrumentType) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }
func (t *InstrumentType) UnmarshalJSON(data []byte) (err error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t, err = ParseInstrumentType(s)
	return err
}

// Direction tells whether the position was bought (long) or sold (short).
type Direction int

const (
	Buy Direction = iota
	Sell
)

func (d Direction) String() string {
	switch d {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Label returns the Portuguese name of the direction.
func (d Direction) Label() string {
	if d == Sell {
		return "Venda"
	}
	return "Compra"
}

// ParseDirection accepts English and Portuguese names, case insensitive.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy", "compra":
		return Buy, nil
	case "sell", "venda":
		return Sell, nil
	default:
		return Buy, fmt.Errorf("unknown direction %q, want buy or sell", s)
	}
}

func (d Direction) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }
func (d *Direction) UnmarshalJSON(data []byte) (err error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d, err = ParseDirection(s)
	return err
}

// Status of a position. It is never stored: a position is closed exactly when
// a closing references it.
type Status int

const (
	Open Status = iota
	Closed
)

func (s Status) String() string {
	if s == Closed {
		return "CLOSED"
	}
	return "OPEN"
}

// Position is an opened options trade.
type Position struct {
	ID         string         `json:"id"`
	User       string         `json:"user,omitempty"`
	Ticker     string         `json:"ticker"`     // option contract code, e.g. PETRK300
	Underlying string         `json:"underlying"` // equity code, e.g. PETR4
	Type       InstrumentType `json:"type"`
	Direction  Direction      `json:"direction"`
	Strike     Money          `json:"strike"`
	Quote      Money          `json:"quote"` // underlying price at entry
	Quantity   Quantity       `json:"quantity"`
	Premium    Money          `json:"premium"` // per unit, at opening
	Expiration Date           `json:"expiration"`
	Created    time.Time      `json:"created"`
}

// Closing records how a position was terminated.
type Closing struct {
	ID       string    `json:"id"`
	User     string    `json:"user,omitempty"`
	Position string    `json:"position"` // the closed Position.ID
	Premium  Money     `json:"premium"`  // per unit, at closing
	Quantity Quantity  `json:"quantity"`
	Date     Date      `json:"date"`
	Created  time.Time `json:"created"`
}

// ClosedPosition pairs a position with its closing.
type ClosedPosition struct {
	Position
	Closing Closing
}

// Result is the realized result of the closed position.
func (c ClosedPosition) Result() Money { return RealizedResult(c.Position, c.Closing) }

// ResultPercent is the realized result relative to the opening premium.
func (c ClosedPosition) ResultPercent() (Percent, bool) {
	return ResultPercent(c.Position, c.Closing)
}

// Normalize returns a copy of p with tickers trimmed and upper cased.
func (p Position) Normalize() Position {
	p.Ticker = strings.ToUpper(strings.TrimSpace(p.Ticker))
	p.Underlying = strings.ToUpper(strings.TrimSpace(p.Underlying))
	return p
}

func (p Position) String() string {
	return fmt.Sprintf("%s %s %s %s x%s @%s", p.Direction, p.Type, p.Ticker, p.Underlying, p.Quantity, p.Premium)
}
