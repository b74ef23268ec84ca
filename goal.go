package opcoes

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// GoalKind is the horizon of a result goal.
type GoalKind int

const (
	// MonthlyGoal is compared to the average monthly result of the current year.
	MonthlyGoal GoalKind = iota
	// AnnualGoal is compared to the total result of its year.
	AnnualGoal
)

func (k GoalKind) String() string {
	if k == AnnualGoal {
		return "annual"
	}
	return "monthly"
}

func ParseGoalKind(s string) (GoalKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monthly", "month", "mensal":
		return MonthlyGoal, nil
	case "annual", "yearly", "year", "anual":
		return AnnualGoal, nil
	default:
		return MonthlyGoal, fmt.Errorf("unknown goal kind %q, want monthly or annual", s)
	}
}

func (k GoalKind) MarshalJSON() ([]byte, error) { return json.Marshal(k.String()) }
func (k *GoalKind) UnmarshalJSON(data []byte) (err error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*k, err = ParseGoalKind(s)
	return err
}

// Goal is a target realized result.
type Goal struct {
	ID      string    `json:"id"`
	User    string    `json:"user,omitempty"`
	Kind    GoalKind  `json:"type"`
	Target  Money     `json:"target"`
	Year    int       `json:"year"`
	Created time.Time `json:"created"`
}

// Title names the goal.
func (g Goal) Title() string {
	if g.Kind == AnnualGoal {
		return fmt.Sprintf("Meta %d", g.Year)
	}
	return "Meta mensal"
}

// GoalBand ranks the progress of a goal.
type GoalBand int

const (
	GoalBehind GoalBand = iota
	GoalOnTrack
	GoalReached
)

func (b GoalBand) String() string {
	switch b {
	case GoalReached:
		return "reached"
	case GoalOnTrack:
		return "on-track"
	default:
		return "behind"
	}
}

// GoalProgress is how far the realized results are from a goal.
type GoalProgress struct {
	Goal      Goal
	Current   Money   // monthly average or annual total
	Percent   Percent // capped at 100
	Remaining Money   // never negative
	Band      GoalBand
}

// Progress measures the goal against the closed positions on day today.
//
// A monthly goal uses the results closed during today's year divided by the
// number of months elapsed, the current one included. An annual goal uses the
// total of the results closed during its year.
func (g Goal) Progress(closed []ClosedPosition, today Date) GoalProgress {
	year := g.Year
	if g.Kind == MonthlyGoal {
		year = today.Year()
	}
	current := R(0)
	for _, c := range closed {
		if c.Closing.Date.Year() == year {
			current = current.Add(c.Result())
		}
	}
	if g.Kind == MonthlyGoal {
		current = current.Div(Q(int(today.Month())))
	}

	gp := GoalProgress{Goal: g, Current: current, Remaining: g.Target.Sub(current).Max(R(0))}
	if pct, ok := current.Ratio(g.Target); ok {
		gp.Percent = min(pct, 100)
	}
	switch {
	case gp.Percent >= 100:
		gp.Band = GoalReached
	case gp.Percent >= 51:
		gp.Band = GoalOnTrack
	default:
		gp.Band = GoalBehind
	}
	return gp
}

// Progress measures every goal of the snapshot.
func (s *Snapshot) Progress(today Date) []GoalProgress {
	closed := s.Closed()
	res := make([]GoalProgress, 0, len(s.Goals))
	for _, g := range s.Goals {
		res = append(res, g.Progress(closed, today))
	}
	return res
}
