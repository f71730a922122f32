package domain

import (
	"errors"
	"fmt"
)

// CollectionEra identifies one of the three periods during which the Storm
// Events database systematically recorded different event types.
type CollectionEra int

const (
	EraUnknown CollectionEra = iota

	// Era1 (1950-1954): tornado reports only.
	Era1
	// Era2 (1955-1995): tornado, thunderstorm wind, and hail reports.
	Era2
	// Era3 (1996-present): all 48 event types of NWS Directive 10-1605.
	Era3
)

// datasetEpoch is the first year covered by the Storm Events database.
// Earlier years cannot occur in well-formed input.
const datasetEpoch = 1950

// ErrYearOutOfRange is returned for years no collection era covers.
var ErrYearOutOfRange = errors.New("year out of collection range")

// EraOf maps a calendar year to its collection era. Years before the dataset
// epoch are rejected rather than defaulted: an out-of-range year means the
// upstream date parse went wrong, and assigning an arbitrary era would
// silently corrupt the per-era tables.
func EraOf(year int) (CollectionEra, error) {
	switch {
	case year < datasetEpoch:
		return EraUnknown, fmt.Errorf("year %d predates the %d dataset epoch: %w", year, datasetEpoch, ErrYearOutOfRange)
	case year < 1955:
		return Era1, nil
	case year < 1996:
		return Era2, nil
	default:
		return Era3, nil
	}
}

// String returns the short era identifier used in logs and report keys.
func (e CollectionEra) String() string {
	switch e {
	case Era1:
		return "era1"
	case Era2:
		return "era2"
	case Era3:
		return "era3"
	default:
		return "unknown"
	}
}

// YearRange returns the human-readable span of the era for report headers.
func (e CollectionEra) YearRange() string {
	switch e {
	case Era1:
		return "1950-1954"
	case Era2:
		return "1955-1995"
	case Era3:
		return "1996-present"
	default:
		return "unknown"
	}
}

// Eras lists the valid collection eras in chronological order.
func Eras() []CollectionEra {
	return []CollectionEra{Era1, Era2, Era3}
}
