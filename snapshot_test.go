package opcoes

import (
	"testing"
	"time"
)

func TestSnapshot_DerivedStatus(t *testing.T) {
	p1 := option("p1", Sell, Call, "PETR4", 100, 38, 1)
	p2 := option("p2", Sell, Put, "PETR4", 100, 30, 1)
	s := &Snapshot{
		Positions: []Position{p1, p2},
		Closings: []Closing{
			closing("c1", p1, 0.5, "2024-03-05"),
			{ID: "c9", Position: "gone", Date: NewDate(2024, time.March, 6)},
		},
	}

	if s.Status(p1) != Closed || s.Status(p2) != Open {
		t.Errorf("Status() = %v, %v, want CLOSED, OPEN", s.Status(p1), s.Status(p2))
	}
	if open := s.Open(); len(open) != 1 || open[0].ID != "p2" {
		t.Errorf("Open() = %v, want [p2]", open)
	}
	if closed := s.Closed(); len(closed) != 1 || closed[0].Closing.ID != "c1" {
		t.Errorf("Closed() = %v, want p1 closed by c1", closed)
	}
	if orphans := s.Orphans(); len(orphans) != 1 || orphans[0].ID != "c9" {
		t.Errorf("Orphans() = %v, want [c9]", orphans)
	}

	// reopening is deleting the closing
	s.Closings = s.Closings[1:]
	if s.Status(p1) != Open {
		t.Errorf("Status(p1) after deleting its closing = %v, want OPEN", s.Status(p1))
	}
}

func TestSnapshot_Ordering(t *testing.T) {
	late := option("late", Sell, Put, "PETR4", 100, 30, 1)
	late.Expiration = NewDate(2024, time.May, 17)
	soon := option("soon", Sell, Put, "PETR4", 100, 30, 1)
	soon.Expiration = NewDate(2024, time.March, 15)
	a := option("a", Buy, Call, "VALE3", 100, 70, 1)
	b := option("b", Buy, Call, "VALE3", 100, 70, 1)

	s := &Snapshot{
		Positions: []Position{late, a, soon, b},
		Closings: []Closing{
			closing("ca", a, 1, "2024-02-01"),
			closing("cb", b, 1, "2024-04-01"),
		},
	}

	open := s.OpenByExpiration()
	if len(open) != 2 || open[0].ID != "soon" || open[1].ID != "late" {
		t.Errorf("OpenByExpiration() = %v, want soon then late", open)
	}
	closed := s.ClosedByDate()
	if len(closed) != 2 || closed[0].ID != "b" || closed[1].ID != "a" {
		t.Errorf("ClosedByDate() = %v, want b then a", closed)
	}
	if got := s.Underlyings(); len(got) != 1 || got[0] != "PETR4" {
		t.Errorf("Underlyings() = %v, want [PETR4]", got)
	}
}
