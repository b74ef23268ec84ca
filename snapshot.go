package opcoes

import "slices"

// Snapshot is a fully materialized copy of a user's book: every position,
// closing, collateral and goal. Every computation in this package reads a
// snapshot and holds no state of its own.
type Snapshot struct {
	Positions   []Position
	Closings    []Closing
	Collaterals []Collateral
	Goals       []Goal
}

// Position returns the position with the given id.
func (s *Snapshot) Position(id string) (Position, bool) {
	for _, p := range s.Positions {
		if p.ID == id {
			return p, true
		}
	}
	return Position{}, false
}

// ClosingOf returns the closing of the position with the given id.
func (s *Snapshot) ClosingOf(positionID string) (Closing, bool) {
	for _, c := range s.Closings {
		if c.Position == positionID {
			return c, true
		}
	}
	return Closing{}, false
}

// Closing returns the closing with the given id.
func (s *Snapshot) Closing(id string) (Closing, bool) {
	for _, c := range s.Closings {
		if c.ID == id {
			return c, true
		}
	}
	return Closing{}, false
}

// Collateral returns the collateral with the given id.
func (s *Snapshot) Collateral(id string) (Collateral, bool) {
	for _, c := range s.Collaterals {
		if c.ID == id {
			return c, true
		}
	}
	return Collateral{}, false
}

// Goal returns the goal with the given id.
func (s *Snapshot) Goal(id string) (Goal, bool) {
	for _, g := range s.Goals {
		if g.ID == id {
			return g, true
		}
	}
	return Goal{}, false
}

// effective returns the closings in book order, keeping only the first one
// of each position. Later closings of the same position are ignored
// everywhere.
func (s *Snapshot) effective() []Closing {
	seen := make(map[string]bool, len(s.Closings))
	res := make([]Closing, 0, len(s.Closings))
	for _, c := range s.Closings {
		if !seen[c.Position] {
			seen[c.Position] = true
			res = append(res, c)
		}
	}
	return res
}

// closed indexes the effective closings by position id.
func (s *Snapshot) closed() map[string]Closing {
	m := make(map[string]Closing, len(s.Closings))
	for _, c := range s.effective() {
		m[c.Position] = c
	}
	return m
}

// Status derives the status of p: it is closed exactly when a closing references it.
func (s *Snapshot) Status(p Position) Status {
	if _, ok := s.ClosingOf(p.ID); ok {
		return Closed
	}
	return Open
}

// Open returns the open positions in book order.
func (s *Snapshot) Open() []Position {
	closed := s.closed()
	var open []Position
	for _, p := range s.Positions {
		if _, ok := closed[p.ID]; !ok {
			open = append(open, p)
		}
	}
	return open
}

// Closed returns the closed positions in book order.
func (s *Snapshot) Closed() []ClosedPosition {
	closed := s.closed()
	var res []ClosedPosition
	for _, p := range s.Positions {
		if c, ok := closed[p.ID]; ok {
			res = append(res, ClosedPosition{Position: p, Closing: c})
		}
	}
	return res
}

// Orphans returns the closings whose position is not in the snapshot.
func (s *Snapshot) Orphans() []Closing {
	ids := make(map[string]bool, len(s.Positions))
	for _, p := range s.Positions {
		ids[p.ID] = true
	}
	var res []Closing
	for _, c := range s.Closings {
		if !ids[c.Position] {
			res = append(res, c)
		}
	}
	return res
}

// OpenByExpiration returns the open positions, closest expiration first.
func (s *Snapshot) OpenByExpiration() []Position {
	open := s.Open()
	slices.SortStableFunc(open, func(a, b Position) int {
		if c := a.Expiration.Compare(b.Expiration); c != 0 {
			return c
		}
		return a.Created.Compare(b.Created)
	})
	return open
}

// ClosedByDate returns the closed positions, most recent closing first.
func (s *Snapshot) ClosedByDate() []ClosedPosition {
	closed := s.Closed()
	slices.SortStableFunc(closed, func(a, b ClosedPosition) int {
		if c := b.Closing.Date.Compare(a.Closing.Date); c != 0 {
			return c
		}
		return b.Closing.Created.Compare(a.Closing.Created)
	})
	return closed
}

// Allocation pledges the collaterals, oldest first, to every open position
// except the ones listed in exclude.
func (s *Snapshot) Allocation(exclude ...string) Allocation {
	var open []Position
	for _, p := range s.Open() {
		if !slices.Contains(exclude, p.ID) {
			open = append(open, p)
		}
	}
	return Allocate(open, s.Collaterals, ByCreation)
}

// Coverage evaluates p against the collateral left free by the other open
// positions. p may be a candidate that is not in the snapshot yet.
func (s *Snapshot) Coverage(p Position) Coverage {
	if p.ID == "" {
		return Evaluate(p, s.Allocation())
	}
	return Evaluate(p, s.Allocation(p.ID))
}

// Underlyings returns the distinct underlyings of the open positions, sorted.
func (s *Snapshot) Underlyings() []string {
	var res []string
	for _, p := range s.Open() {
		if p.Underlying != "" && !slices.Contains(res, p.Underlying) {
			res = append(res, p.Underlying)
		}
	}
	slices.Sort(res)
	return res
}
