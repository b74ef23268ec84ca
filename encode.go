package opcoes

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// RecordKind discriminates the lines of a book file.
type RecordKind string

const (
	KindPosition   RecordKind = "position"
	KindClosing    RecordKind = "closing"
	KindCollateral RecordKind = "collateral"
	KindGoal       RecordKind = "goal"
)

// DecodeBook decodes a snapshot from a stream of JSONL records.
// Every line carries a "kind" field telling which record it holds.
func DecodeBook(r io.Reader) (*Snapshot, error) {
	s := &Snapshot{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for n := 1; scanner.Scan(); n++ {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}

		var identifier struct {
			Kind RecordKind `json:"kind"`
		}
		if err := json.Unmarshal(line, &identifier); err != nil {
			return nil, fmt.Errorf("line %d: could not identify record %q: %w", n, string(line), err)
		}

		var err error
		switch identifier.Kind {
		case KindPosition:
			var p Position
			err = json.Unmarshal(line, &p)
			s.Positions = append(s.Positions, p)
		case KindClosing:
			var c Closing
			err = json.Unmarshal(line, &c)
			s.Closings = append(s.Closings, c)
		case KindCollateral:
			var c Collateral
			err = json.Unmarshal(line, &c)
			s.Collaterals = append(s.Collaterals, c)
		case KindGoal:
			var g Goal
			err = json.Unmarshal(line, &g)
			s.Goals = append(s.Goals, g)
		default:
			err = fmt.Errorf("unknown record kind: %q", identifier.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	return s, nil
}

// EncodeBook writes every record of s as JSONL: positions, closings,
// collaterals then goals, each group in creation order.
func EncodeBook(w io.Writer, s *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	write := func(kind RecordKind, v any) error {
		head, err := json.Marshal(struct {
			Kind RecordKind `json:"kind"`
		}{kind})
		if err != nil {
			return err
		}
		body, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("could not encode %s: %w", kind, err)
		}
		// merge {"kind":..} with the record fields
		line := append(head[:len(head)-1], ',')
		line = append(line, body[1:]...)
		var raw json.RawMessage = line
		return enc.Encode(raw)
	}

	for _, p := range byCreated(s.Positions, func(p Position) time.Time { return p.Created }) {
		if err := write(KindPosition, p); err != nil {
			return err
		}
	}
	for _, c := range byCreated(s.Closings, func(c Closing) time.Time { return c.Created }) {
		if err := write(KindClosing, c); err != nil {
			return err
		}
	}
	for _, c := range byCreated(s.Collaterals, func(c Collateral) time.Time { return c.Created }) {
		if err := write(KindCollateral, c); err != nil {
			return err
		}
	}
	for _, g := range byCreated(s.Goals, func(g Goal) time.Time { return g.Created }) {
		if err := write(KindGoal, g); err != nil {
			return err
		}
	}
	return nil
}

// byCreated returns a copy of records stably sorted by creation time.
func byCreated[T any](records []T, created func(T) time.Time) []T {
	records = slices.Clone(records)
	slices.SortStableFunc(records, func(a, b T) int { return created(a).Compare(created(b)) })
	return records
}
