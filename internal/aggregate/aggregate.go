// Package aggregate sums normalized harm records by canonical event and
// collection era and produces ranked, truncated tables.
//
// Summaries are commutative and associative under Merge, so partial
// summaries built on independent partitions can be combined in any order.
// Ranking is fully deterministic: descending by the requested measure, then
// for combined measures by the first component descending, the second
// component descending, and finally ascending event name. Equal-valued
// groups therefore always come out in alphabetical order regardless of
// input record order.
package aggregate

import (
	"github.com/couchcryptid/storm-harm-report/internal/domain"
)

// Key identifies an aggregation group.
type Key struct {
	Event domain.CanonicalEvent
	Era   domain.CollectionEra
}

// Totals holds summed measures for one group. Damage sums only cover
// records where the value was present; the *Present counters track how many
// records contributed, so callers can tell an absent-only group from a
// recorded zero.
type Totals struct {
	Fatalities      int
	Injuries        int
	PropertyUSD     float64
	CropUSD         float64
	PropertyPresent int
	CropPresent     int
	Records         int
}

func (t *Totals) add(rec domain.NormalizedRecord) {
	t.Fatalities += rec.Fatalities
	t.Injuries += rec.Injuries
	if rec.PropertyDamageUSD != nil {
		t.PropertyUSD += *rec.PropertyDamageUSD
		t.PropertyPresent++
	}
	if rec.CropDamageUSD != nil {
		t.CropUSD += *rec.CropDamageUSD
		t.CropPresent++
	}
	t.Records++
}

func (t *Totals) merge(other Totals) {
	t.Fatalities += other.Fatalities
	t.Injuries += other.Injuries
	t.PropertyUSD += other.PropertyUSD
	t.CropUSD += other.CropUSD
	t.PropertyPresent += other.PropertyPresent
	t.CropPresent += other.CropPresent
	t.Records += other.Records
}

// Summary accumulates per-(event, era) totals. The zero value is not usable;
// call NewSummary.
type Summary struct {
	groups map[Key]*Totals
}

// NewSummary creates an empty Summary.
func NewSummary() *Summary {
	return &Summary{groups: make(map[Key]*Totals)}
}

// FromRecords builds a Summary over a finite record sequence.
func FromRecords(records []domain.NormalizedRecord) *Summary {
	s := NewSummary()
	for _, rec := range records {
		s.Add(rec)
	}
	return s
}

// Add folds one normalized record into the summary.
func (s *Summary) Add(rec domain.NormalizedRecord) {
	key := Key{Event: rec.Event, Era: rec.Era}
	t, ok := s.groups[key]
	if !ok {
		t = &Totals{}
		s.groups[key] = t
	}
	t.add(rec)
}

// Merge folds another summary into this one by key-wise addition.
func (s *Summary) Merge(other *Summary) {
	for key, ot := range other.groups {
		t, ok := s.groups[key]
		if !ok {
			t = &Totals{}
			s.groups[key] = t
		}
		t.merge(*ot)
	}
}

// Groups returns the number of populated (event, era) groups.
func (s *Summary) Groups() int { return len(s.groups) }

// Records returns the total number of records folded in.
func (s *Summary) Records() int {
	total := 0
	for _, t := range s.groups {
		total += t.Records
	}
	return total
}
