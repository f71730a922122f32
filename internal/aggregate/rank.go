package aggregate

import (
	"sort"

	"github.com/couchcryptid/storm-harm-report/internal/domain"
)

// Measure selects which summed value a ranking is built on.
type Measure string

const (
	MeasureFatalities Measure = "fatalities"
	MeasureInjuries   Measure = "injuries"
	MeasureProperty   Measure = "property_usd"
	MeasureCrop       Measure = "crop_usd"

	// MeasureCasualties is fatalities + injuries; components rank in that
	// order on ties.
	MeasureCasualties Measure = "casualties"
	// MeasureDamage is property + crop USD; components rank in that order
	// on ties.
	MeasureDamage Measure = "damage_usd"
)

// Measures lists every supported ranking measure.
func Measures() []Measure {
	return []Measure{
		MeasureFatalities, MeasureInjuries,
		MeasureProperty, MeasureCrop,
		MeasureCasualties, MeasureDamage,
	}
}

// Row is one ranked output line. Era is EraUnknown for all-era rankings.
// Parts holds the component sums for combined measures, in ranking order.
type Row struct {
	Rank  int                   `json:"rank"`
	Event domain.CanonicalEvent `json:"event"`
	Era   domain.CollectionEra  `json:"era,omitempty"`
	Value float64               `json:"value"`
	Parts []float64             `json:"parts,omitempty"`
}

// TopByEra ranks the groups of a single era by the given measure and
// truncates to at most n rows. Eras with fewer populated groups return fewer
// rows; there is no padding.
func (s *Summary) TopByEra(era domain.CollectionEra, measure Measure, n int) []Row {
	rows := make([]Row, 0)
	for key, t := range s.groups {
		if key.Era != era {
			continue
		}
		if row, ok := makeRow(key.Event, era, *t, measure); ok {
			rows = append(rows, row)
		}
	}
	return rank(rows, measure, n)
}

// TopAllEras merges every era's totals per event, ranks by the given
// measure, and truncates to at most n rows.
func (s *Summary) TopAllEras(measure Measure, n int) []Row {
	byEvent := make(map[domain.CanonicalEvent]*Totals)
	for key, t := range s.groups {
		et, ok := byEvent[key.Event]
		if !ok {
			et = &Totals{}
			byEvent[key.Event] = et
		}
		et.merge(*t)
	}

	rows := make([]Row, 0, len(byEvent))
	for event, t := range byEvent {
		if row, ok := makeRow(event, domain.EraUnknown, *t, measure); ok {
			rows = append(rows, row)
		}
	}
	return rank(rows, measure, n)
}

// makeRow extracts the measure value for one group. The boolean is false
// when the group has nothing to contribute: damage measures exclude groups
// where every record's value was absent, so an unknowable total never shows
// up as $0.
func makeRow(event domain.CanonicalEvent, era domain.CollectionEra, t Totals, measure Measure) (Row, bool) {
	row := Row{Event: event, Era: era}
	switch measure {
	case MeasureFatalities:
		row.Value = float64(t.Fatalities)
	case MeasureInjuries:
		row.Value = float64(t.Injuries)
	case MeasureProperty:
		if t.PropertyPresent == 0 {
			return Row{}, false
		}
		row.Value = t.PropertyUSD
	case MeasureCrop:
		if t.CropPresent == 0 {
			return Row{}, false
		}
		row.Value = t.CropUSD
	case MeasureCasualties:
		row.Value = float64(t.Fatalities + t.Injuries)
		row.Parts = []float64{float64(t.Fatalities), float64(t.Injuries)}
	case MeasureDamage:
		if t.PropertyPresent == 0 && t.CropPresent == 0 {
			return Row{}, false
		}
		row.Value = t.PropertyUSD + t.CropUSD
		row.Parts = []float64{t.PropertyUSD, t.CropUSD}
	default:
		return Row{}, false
	}
	return row, true
}

// rank sorts rows by the deterministic ordering contract and truncates to n.
// n <= 0 means no truncation.
func rank(rows []Row, measure Measure, n int) []Row {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Value != b.Value {
			return a.Value > b.Value
		}
		for k := range a.Parts {
			if a.Parts[k] != b.Parts[k] {
				return a.Parts[k] > b.Parts[k]
			}
		}
		return a.Event < b.Event
	})

	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}
