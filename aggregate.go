package opcoes

import (
	"fmt"
	"slices"
	"strings"
)

var monthNames = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// MonthName returns the Portuguese name of the month of d.
func MonthName(d Date) string { return monthNames[d.Month()-1] }

// Bucket holds the realized results of a single period.
type Bucket struct {
	Key     string // "YYYY-MM" or "YYYY"
	Period  Period
	Start   Date // first day of the period
	Total   Money
	Members []ClosedPosition // in closing order
}

// Name is the human readable name of the period ("março de 2024" or "2024").
func (b Bucket) Name() string {
	if b.Period == Monthly {
		return fmt.Sprintf("%s de %d", MonthName(b.Start), b.Start.Year())
	}
	return b.Key
}

// ShortName is the compact label used on chart axes ("mar. 2024").
func (b Bucket) ShortName() string {
	if b.Period == Monthly {
		return fmt.Sprintf("%s. %d", MonthName(b.Start)[:3], b.Start.Year())
	}
	return b.Key
}

// Gain is the total when positive, zero otherwise.
func (b Bucket) Gain() Money { return b.Total.Max(R(0)) }

// Loss is the magnitude of the total when negative, zero otherwise.
func (b Bucket) Loss() Money { return b.Total.Neg().Max(R(0)) }

// Range is the span of days covered by the bucket.
func (b Bucket) Range() Range { return b.Period.Range(b.Start) }

// Buckets is a sparse set of periods: a period without closings has no bucket.
type Buckets struct {
	period Period
	byKey  map[string]*Bucket
}

// Aggregate buckets the realized results of the closings by the period of
// their closing date.
//
// Closings referencing a position that is not in positions are skipped.
func Aggregate(positions []Position, closings []Closing, period Period) Buckets {
	index := make(map[string]Position, len(positions))
	for _, p := range positions {
		index[p.ID] = p
	}
	bs := Buckets{period: period, byKey: make(map[string]*Bucket)}
	for _, c := range closings {
		p, ok := index[c.Position]
		if !ok {
			continue
		}
		key := period.Key(c.Date)
		b, exists := bs.byKey[key]
		if !exists {
			b = &Bucket{Key: key, Period: period, Start: c.Date.StartOf(period), Total: R(0)}
			bs.byKey[key] = b
		}
		b.Total = b.Total.Add(RealizedResult(p, c))
		b.Members = append(b.Members, ClosedPosition{Position: p, Closing: c})
	}
	return bs
}

// Aggregate buckets the closed positions of the snapshot, counting each
// position once like Closed does.
func (s *Snapshot) Aggregate(period Period) Buckets {
	return Aggregate(s.Positions, s.effective(), period)
}

// Period returns the bucketing period.
func (bs Buckets) Period() Period { return bs.period }

// Len returns the number of non empty periods.
func (bs Buckets) Len() int { return len(bs.byKey) }

// Get returns the bucket of the given key.
func (bs Buckets) Get(key string) (Bucket, bool) {
	b, ok := bs.byKey[key]
	if !ok {
		return Bucket{}, false
	}
	return *b, true
}

// Ascending returns the buckets oldest period first, as chart series expect.
func (bs Buckets) Ascending() []Bucket {
	res := make([]Bucket, 0, len(bs.byKey))
	for _, b := range bs.byKey {
		res = append(res, *b)
	}
	slices.SortFunc(res, func(a, b Bucket) int { return strings.Compare(a.Key, b.Key) })
	return res
}

// Descending returns the buckets most recent period first, as lists show them.
func (bs Buckets) Descending() []Bucket {
	res := bs.Ascending()
	slices.Reverse(res)
	return res
}

// Total sums every bucket.
func (bs Buckets) Total() Money {
	total := R(0)
	for _, b := range bs.byKey {
		total = total.Add(b.Total)
	}
	return total
}

// Within returns the buckets whose period starts inside r.
func (bs Buckets) Within(r Range) Buckets {
	res := Buckets{period: bs.period, byKey: make(map[string]*Bucket)}
	for k, b := range bs.byKey {
		if r.Contains(b.Start) {
			res.byKey[k] = b
		}
	}
	return res
}
