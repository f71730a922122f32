package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DropReason explains why a raw record was excluded from aggregation.
type DropReason string

const (
	// DropNone marks a retained record.
	DropNone DropReason = ""
	// DropNoHarm marks records with no nonzero harm measure.
	DropNoHarm DropReason = "no_harm"
	// DropUnclassified marks records whose event label matched no category.
	DropUnclassified DropReason = "unclassified_label"
	// DropBadDate marks records whose begin date yields no valid era.
	DropBadDate DropReason = "malformed_date"
)

// Normalizer turns raw Storm Events rows into normalized records.
type Normalizer struct {
	classifier *Classifier
}

// NewNormalizer creates a Normalizer using the given classifier.
func NewNormalizer(c *Classifier) *Normalizer {
	return &Normalizer{classifier: c}
}

// Normalize applies the full per-record transform. The step order is part of
// the contract: the harm filter runs before classification so drop counts
// and aggregate totals stay comparable across vocabulary revisions.
//
// Retained records come back with DropNone and a nil error. Dropped records
// come back with the reason; the error is non-nil only for malformed dates,
// where a diagnostic is worth logging. One bad record never aborts a batch.
func (n *Normalizer) Normalize(raw RawRecord) (NormalizedRecord, DropReason, error) {
	if !raw.HasHarm() {
		return NormalizedRecord{}, DropNoHarm, nil
	}

	if raw.BeginDate.IsZero() {
		return NormalizedRecord{}, DropBadDate, fmt.Errorf("record %q has no begin date", raw.EventLabel)
	}
	year := raw.BeginDate.Year()
	era, err := EraOf(year)
	if err != nil {
		return NormalizedRecord{}, DropBadDate, fmt.Errorf("record %q: %w", raw.EventLabel, err)
	}

	raw = correctKnownOutliers(raw)

	event, ok := n.classifier.Classify(raw.EventLabel)
	if !ok {
		return NormalizedRecord{}, DropUnclassified, nil
	}

	return NormalizedRecord{
		ID:                recordID(raw, event),
		Event:             event,
		Era:               era,
		Year:              year,
		Fatalities:        raw.Fatalities,
		Injuries:          raw.Injuries,
		PropertyDamageUSD: damageUSD(raw.PropertyDamage, raw.PropertyExponent),
		CropDamageUSD:     damageUSD(raw.CropDamage, raw.CropExponent),
		ProcessedAt:       clock.Now(),
	}, DropNone, nil
}

// recordID produces a deterministic ID from the raw record's key fields.
// Re-normalizing the same source row always yields the same ID, which keeps
// downstream consumers idempotent under replays.
func recordID(raw RawRecord, event CanonicalEvent) string {
	input := fmt.Sprintf("%s|%s|%s|%d|%d|%g|%s|%g|%s",
		raw.BeginDate.Format("2006-01-02"),
		NormalizeLabel(raw.EventLabel),
		raw.County,
		raw.Fatalities,
		raw.Injuries,
		raw.PropertyDamage,
		raw.PropertyExponent,
		raw.CropDamage,
		raw.CropExponent,
	)
	hash := sha256.Sum256([]byte(input))
	return string(event) + "-" + hex.EncodeToString(hash[:8])
}
