package pipeline

import (
	"log/slog"
	"sort"

	"github.com/couchcryptid/storm-harm-report/internal/aggregate"
	"github.com/couchcryptid/storm-harm-report/internal/domain"
)

// Result is the outcome of a completed run.
type Result struct {
	Summary *aggregate.Summary
	Audit   Audit
}

// Audit accounts for every record the run read, including the ones the
// aggregation never sees. Unclassified labels silently remove harm totals
// from every ranked table, so the loss is surfaced here instead of hidden.
type Audit struct {
	RecordsRead     int                       `json:"records_read"`
	RecordsRetained int                       `json:"records_retained"`
	Dropped         map[domain.DropReason]int `json:"dropped"`

	// Damage amounts discarded because the exponent code had no resolvable
	// multiplier. The records themselves stay in casualty tables.
	PropertyDamageDiscarded int `json:"property_damage_discarded"`
	CropDamageDiscarded     int `json:"crop_damage_discarded"`

	// UnmappedLabels counts occurrences per distinct normalized label.
	// Nil when the label audit is disabled.
	UnmappedLabels map[string]int `json:"unmapped_labels,omitempty"`
}

func newAudit(auditLabels bool) *Audit {
	a := &Audit{Dropped: make(map[domain.DropReason]int)}
	if auditLabels {
		a.UnmappedLabels = make(map[string]int)
	}
	return a
}

func (a *Audit) merge(pt *partial) {
	a.RecordsRead += pt.recordsRead
	a.RecordsRetained += len(pt.records)
	for reason, n := range pt.dropped {
		a.Dropped[reason] += n
	}
	a.PropertyDamageDiscarded += pt.propertyDiscarded
	a.CropDamageDiscarded += pt.cropDiscarded
	for label, n := range pt.unmapped {
		if a.UnmappedLabels != nil {
			a.UnmappedLabels[label] += n
		}
	}
}

// Log writes the run accounting at the appropriate levels: info for the
// routine numbers, warn when classification lost data.
func (a *Audit) Log(logger *slog.Logger) {
	logger.Info("run accounting",
		"records_read", a.RecordsRead,
		"records_retained", a.RecordsRetained,
		"dropped_no_harm", a.Dropped[domain.DropNoHarm],
		"dropped_unclassified", a.Dropped[domain.DropUnclassified],
		"dropped_malformed_date", a.Dropped[domain.DropBadDate],
		"property_damage_discarded", a.PropertyDamageDiscarded,
		"crop_damage_discarded", a.CropDamageDiscarded,
	)

	if len(a.UnmappedLabels) > 0 {
		labels := make([]string, 0, len(a.UnmappedLabels))
		for label := range a.UnmappedLabels {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		logger.Warn("event labels excluded from all ranked tables",
			"distinct_labels", len(labels),
			"labels", labels,
		)
	}
}

// partial is one worker's share of a batch.
type partial struct {
	summary           *aggregate.Summary
	records           []domain.NormalizedRecord
	recordsRead       int
	dropped           map[domain.DropReason]int
	propertyDiscarded int
	cropDiscarded     int
	unmapped          map[string]int // nil when the label audit is off
}

func newPartial(auditLabels bool) *partial {
	pt := &partial{
		summary: aggregate.NewSummary(),
		dropped: make(map[domain.DropReason]int),
	}
	if auditLabels {
		pt.unmapped = make(map[string]int)
	}
	return pt
}
