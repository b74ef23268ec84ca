package opcoes

import (
	"testing"
	"time"
)

func TestGoal_Progress(t *testing.T) {
	p1 := option("p1", Sell, Put, "PETR4", 1000, 30, 1.5)
	p2 := option("p2", Sell, Put, "PETR4", 1000, 30, 1.5)
	p3 := option("p3", Sell, Put, "PETR4", 1000, 30, 1.5)
	s := &Snapshot{
		Positions: []Position{p1, p2, p3},
		Closings: []Closing{
			closing("c1", p1, 0.5, "2024-01-15"), // +1000
			closing("c2", p2, 0.5, "2024-03-20"), // +1000
			closing("c3", p3, 0, "2023-06-12"),   // +1500
		},
	}
	today := NewDate(2024, time.April, 15)

	tests := []struct {
		name          string
		goal          Goal
		wantCurrent   Money
		wantPercent   Percent
		wantRemaining Money
		wantBand      GoalBand
	}{
		{
			name:          "monthly average over the four elapsed months",
			goal:          Goal{Kind: MonthlyGoal, Target: BR(1000), Year: 2024},
			wantCurrent:   BR(500),
			wantPercent:   50,
			wantRemaining: BR(500),
			wantBand:      GoalBehind,
		},
		{
			name:          "monthly goal on track",
			goal:          Goal{Kind: MonthlyGoal, Target: BR(800), Year: 2024},
			wantCurrent:   BR(500),
			wantPercent:   62.5,
			wantRemaining: BR(300),
			wantBand:      GoalOnTrack,
		},
		{
			name:          "annual goal of a past year is capped",
			goal:          Goal{Kind: AnnualGoal, Target: BR(1000), Year: 2023},
			wantCurrent:   BR(1500),
			wantPercent:   100,
			wantRemaining: BR(0),
			wantBand:      GoalReached,
		},
		{
			name:          "annual goal without results",
			goal:          Goal{Kind: AnnualGoal, Target: BR(1000), Year: 2025},
			wantCurrent:   BR(0),
			wantPercent:   0,
			wantRemaining: BR(1000),
			wantBand:      GoalBehind,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := test.goal.Progress(s.Closed(), today)
			if !got.Current.Equal(test.wantCurrent) {
				t.Errorf("Current = %v, want %v", got.Current, test.wantCurrent)
			}
			if !got.Percent.Equal(test.wantPercent) {
				t.Errorf("Percent = %v, want %v", got.Percent, test.wantPercent)
			}
			if !got.Remaining.Equal(test.wantRemaining) {
				t.Errorf("Remaining = %v, want %v", got.Remaining, test.wantRemaining)
			}
			if got.Band != test.wantBand {
				t.Errorf("Band = %v, want %v", got.Band, test.wantBand)
			}
		})
	}
}

func TestGoal_Title(t *testing.T) {
	if got := (Goal{Kind: AnnualGoal, Year: 2025}).Title(); got != "Meta 2025" {
		t.Errorf("Title() = %q, want %q", got, "Meta 2025")
	}
	if got := (Goal{Kind: MonthlyGoal, Year: 2025}).Title(); got != "Meta mensal" {
		t.Errorf("Title() = %q, want %q", got, "Meta mensal")
	}
}
