package domain

import "time"

// RawRecord holds the eight logical fields the harm analysis uses from a
// Storm Events database row, plus the county name needed to key known
// data-entry corrections.
type RawRecord struct {
	BeginDate        time.Time `json:"begin_date"`
	County           string    `json:"county,omitempty"`
	EventLabel       string    `json:"event_label"`
	Fatalities       int       `json:"fatalities"`
	Injuries         int       `json:"injuries"`
	PropertyDamage   float64   `json:"property_damage"`
	PropertyExponent string    `json:"property_exponent"`
	CropDamage       float64   `json:"crop_damage"`
	CropExponent     string    `json:"crop_exponent"`
}

// HasHarm reports whether the record carries any human or economic harm.
// Records without harm carry no signal for the analysis and are discarded
// before classification.
func (r RawRecord) HasHarm() bool {
	return r.Fatalities != 0 || r.Injuries != 0 || r.PropertyDamage != 0 || r.CropDamage != 0
}

// CanonicalEvent is one of the fixed severe-weather category names used for
// cross-era comparison. The full set lives in vocabulary.yaml; see
// CanonicalEvents for the closed list.
type CanonicalEvent string

// Categories referenced directly by code. The remaining canonical names only
// appear in the vocabulary data asset and in report output.
const (
	EventTornado CanonicalEvent = "tornado"
	EventHail    CanonicalEvent = "hail"
	EventFlood   CanonicalEvent = "flood"

	// EventOther collects real but unclassifiable noise terms.
	EventOther CanonicalEvent = "other"
	// EventSummary collects date-range administrative summary rows, which
	// are not weather events at all.
	EventSummary CanonicalEvent = "summary"
)

// CanonicalEvents is the closed, ordered set of canonical categories: the 48
// event types of NWS Directive 10-1605 plus the two catch-alls.
var CanonicalEvents = []CanonicalEvent{
	"astronomical low tide",
	"avalanche",
	"blizzard",
	"coastal flood",
	"cold/wind chill",
	"debris flow",
	"dense fog",
	"dense smoke",
	"drought",
	"dust devil",
	"dust storm",
	"excessive heat",
	"extreme cold/wind chill",
	"flash flood",
	"flood",
	"freezing fog",
	"frost/freeze",
	"funnel cloud",
	"hail",
	"heat",
	"heavy rain",
	"heavy snow",
	"high surf",
	"high wind",
	"hurricane (typhoon)",
	"ice storm",
	"lake-effect snow",
	"lakeshore flood",
	"lightning",
	"marine hail",
	"marine high wind",
	"marine strong wind",
	"marine thunderstorm wind",
	"rip current",
	"seiche",
	"sleet",
	"storm surge/tide",
	"strong wind",
	"thunderstorm wind",
	"tornado",
	"tropical depression",
	"tropical storm",
	"tsunami",
	"volcanic ash",
	"waterspout",
	"wildfire",
	"winter storm",
	"winter weather",
	EventOther,
	EventSummary,
}

// NormalizedRecord is a retained record after era, multiplier, and event
// resolution, ready for aggregation. Damage fields are nil when no multiplier
// could be resolved; nil is "unknown", never zero.
type NormalizedRecord struct {
	ID                string         `json:"id"`
	Event             CanonicalEvent `json:"event"`
	Era               CollectionEra  `json:"era"`
	Year              int            `json:"year"`
	Fatalities        int            `json:"fatalities"`
	Injuries          int            `json:"injuries"`
	PropertyDamageUSD *float64       `json:"property_damage_usd,omitempty"`
	CropDamageUSD     *float64       `json:"crop_damage_usd,omitempty"`
	ProcessedAt       time.Time      `json:"processed_at"`
}

// Casualties is the combined human-harm measure (fatalities + injuries).
func (n NormalizedRecord) Casualties() int {
	return n.Fatalities + n.Injuries
}
