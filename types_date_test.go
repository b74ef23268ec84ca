package opcoes

import (
	"encoding/json"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := NewDate(2025, 7, 31)
	d2 := NewDate(2025, 7, 31)

	if d1.time() != d2.time() {
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    string
		expected Date
		err      bool
	}{
		{"2025-01-15", NewDate(2025, time.January, 15), false},
		{"2025-7-1", NewDate(2025, time.July, 1), false},
		{"05/03/2024", NewDate(2024, time.March, 5), false},
		{"5/3/2024", NewDate(2024, time.March, 5), false},
		{"invalid-date", Date{}, true},
		{"", Date{}, true},
	}
	for _, test := range tests {
		got, err := ParseDate(test.input)
		if (err != nil) != test.err {
			t.Errorf("ParseDate(%q) error = %v, want error %v", test.input, err, test.err)
			continue
		}
		if got != test.expected {
			t.Errorf("ParseDate(%q) = %v, want %v", test.input, got, test.expected)
		}
	}
}

func TestParseClosingDate(t *testing.T) {
	// UTC-3, like São Paulo: a naive UTC reading of a plain date would move it a day back.
	inLocation(t, time.FixedZone("BRT", -3*3600))

	tests := []struct {
		input    string
		expected Date
	}{
		{"2024-03-05", NewDate(2024, time.March, 5)},
		{"2024-01-31", NewDate(2024, time.January, 31)},
		{"2024-03-01T01:00:00Z", NewDate(2024, time.February, 29)},
		{"2024-03-01T12:00:00-03:00", NewDate(2024, time.March, 1)},
		{"2024-03-01T23:30:00", NewDate(2024, time.March, 1)},
		{"2024-03-01 02:00:00+00", NewDate(2024, time.February, 29)},
	}
	for _, test := range tests {
		got, err := ParseClosingDate(test.input)
		if err != nil {
			t.Errorf("ParseClosingDate(%q) unexpected error: %v", test.input, err)
			continue
		}
		if got != test.expected {
			t.Errorf("ParseClosingDate(%q) = %v, want %v", test.input, got, test.expected)
		}
	}

	if _, err := ParseClosingDate("05/03/2024"); err == nil {
		t.Errorf("ParseClosingDate(%q) expected an error", "05/03/2024")
	}
}

func TestDate_StartEndOf(t *testing.T) {
	d := NewDate(2024, time.February, 14)
	if got, want := d.StartOf(Monthly), NewDate(2024, time.February, 1); got != want {
		t.Errorf("StartOf(Monthly) = %v, want %v", got, want)
	}
	if got, want := d.EndOf(Monthly), NewDate(2024, time.February, 29); got != want {
		t.Errorf("EndOf(Monthly) = %v, want %v", got, want)
	}
	if got, want := d.StartOf(Yearly), NewDate(2024, time.January, 1); got != want {
		t.Errorf("StartOf(Yearly) = %v, want %v", got, want)
	}
	if got, want := d.EndOf(Yearly), NewDate(2024, time.December, 31); got != want {
		t.Errorf("EndOf(Yearly) = %v, want %v", got, want)
	}
}

func TestDate_DaysUntil(t *testing.T) {
	d := NewDate(2024, time.March, 11)
	if got := d.DaysUntil(NewDate(2024, time.March, 15)); got != 4 {
		t.Errorf("DaysUntil = %d, want 4", got)
	}
	if got := d.DaysUntil(NewDate(2024, time.March, 10)); got != -1 {
		t.Errorf("DaysUntil = %d, want -1", got)
	}
}

func TestDate_JSON(t *testing.T) {
	d := NewDate(2024, time.March, 5)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `"2024-03-05"` {
		t.Errorf("Marshal = %s, want %q", data, "2024-03-05")
	}
	var got Date
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got != d {
		t.Errorf("Unmarshal = %v, want %v", got, d)
	}
	if got.Local() != "05/03/2024" {
		t.Errorf("Local() = %q, want %q", got.Local(), "05/03/2024")
	}
}
