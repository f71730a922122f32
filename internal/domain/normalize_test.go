package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	c, err := NewClassifier()
	require.NoError(t, err)
	return NewNormalizer(c)
}

func TestNormalize(t *testing.T) {
	fixedTime := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixedTime))
	defer SetClock(nil)

	n := newTestNormalizer(t)

	t.Run("tornado with casualties", func(t *testing.T) {
		rec, reason, err := n.Normalize(RawRecord{
			BeginDate:  time.Date(1953, time.June, 8, 0, 0, 0, 0, time.UTC),
			EventLabel: "TORNADO",
			Fatalities: 5,
			Injuries:   20,
		})

		require.NoError(t, err)
		require.Equal(t, DropNone, reason)
		assert.Equal(t, EventTornado, rec.Event)
		assert.Equal(t, Era1, rec.Era)
		assert.Equal(t, 1953, rec.Year)
		assert.Equal(t, 5, rec.Fatalities)
		assert.Equal(t, 20, rec.Injuries)
		assert.Equal(t, 25, rec.Casualties())
		assert.Nil(t, rec.PropertyDamageUSD)
		assert.Nil(t, rec.CropDamageUSD)
		assert.Equal(t, fixedTime, rec.ProcessedAt)
		assert.Contains(t, rec.ID, "tornado-")
	})

	t.Run("hail with property damage", func(t *testing.T) {
		rec, reason, err := n.Normalize(RawRecord{
			BeginDate:        time.Date(1996, time.May, 1, 0, 0, 0, 0, time.UTC),
			EventLabel:       "HAIL 075",
			PropertyDamage:   10,
			PropertyExponent: "K",
		})

		require.NoError(t, err)
		require.Equal(t, DropNone, reason)
		assert.Equal(t, EventHail, rec.Event)
		assert.Equal(t, Era3, rec.Era)
		require.NotNil(t, rec.PropertyDamageUSD)
		assert.Equal(t, 10_000.0, *rec.PropertyDamageUSD)
		assert.Nil(t, rec.CropDamageUSD)
	})

	t.Run("no harm dropped before classification", func(t *testing.T) {
		// The label is unmapped, but the harm filter must win: the drop
		// reason is no_harm, not unclassified_label.
		_, reason, err := n.Normalize(RawRecord{
			BeginDate:  time.Date(1996, time.May, 1, 0, 0, 0, 0, time.UTC),
			EventLabel: "zzz-unmapped",
		})

		require.NoError(t, err)
		assert.Equal(t, DropNoHarm, reason)
	})

	t.Run("unmapped label dropped", func(t *testing.T) {
		_, reason, err := n.Normalize(RawRecord{
			BeginDate:  time.Date(1996, time.May, 1, 0, 0, 0, 0, time.UTC),
			EventLabel: "zzz-unmapped",
			Injuries:   2,
		})

		require.NoError(t, err)
		assert.Equal(t, DropUnclassified, reason)
	})

	t.Run("zero begin date dropped loudly", func(t *testing.T) {
		_, reason, err := n.Normalize(RawRecord{
			EventLabel: "TORNADO",
			Fatalities: 1,
		})

		require.Error(t, err)
		assert.Equal(t, DropBadDate, reason)
	})

	t.Run("pre-epoch year dropped loudly", func(t *testing.T) {
		_, reason, err := n.Normalize(RawRecord{
			BeginDate:  time.Date(1949, time.June, 8, 0, 0, 0, 0, time.UTC),
			EventLabel: "TORNADO",
			Fatalities: 1,
		})

		require.ErrorIs(t, err, ErrYearOutOfRange)
		assert.Equal(t, DropBadDate, reason)
	})

	t.Run("unresolvable exponent leaves damage absent", func(t *testing.T) {
		rec, reason, err := n.Normalize(RawRecord{
			BeginDate:        time.Date(1996, time.May, 1, 0, 0, 0, 0, time.UTC),
			EventLabel:       "FLOOD",
			PropertyDamage:   25,
			PropertyExponent: "?",
			CropDamage:       3,
			CropExponent:     "0",
		})

		require.NoError(t, err)
		require.Equal(t, DropNone, reason)
		assert.Nil(t, rec.PropertyDamageUSD)
		assert.Nil(t, rec.CropDamageUSD)
	})

	t.Run("napa outlier corrected to millions", func(t *testing.T) {
		rec, reason, err := n.Normalize(RawRecord{
			BeginDate:        time.Date(2006, time.January, 1, 0, 0, 0, 0, time.UTC),
			County:           "NAPA",
			EventLabel:       "FLOOD",
			PropertyDamage:   115,
			PropertyExponent: "B",
		})

		require.NoError(t, err)
		require.Equal(t, DropNone, reason)
		require.NotNil(t, rec.PropertyDamageUSD)
		assert.Equal(t, 115e6, *rec.PropertyDamageUSD)
	})

	t.Run("deterministic and idempotent", func(t *testing.T) {
		raw := RawRecord{
			BeginDate:        time.Date(1996, time.May, 1, 0, 0, 0, 0, time.UTC),
			County:           "TRAVIS",
			EventLabel:       "HAIL 075",
			Injuries:         1,
			PropertyDamage:   10,
			PropertyExponent: "K",
		}

		first, reason1, err1 := n.Normalize(raw)
		second, reason2, err2 := n.Normalize(raw)

		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, reason1, reason2)
		assert.Empty(t, cmp.Diff(first, second))
	})
}

func TestRecordID(t *testing.T) {
	raw := RawRecord{
		BeginDate:  time.Date(1996, time.May, 1, 0, 0, 0, 0, time.UTC),
		EventLabel: "HAIL 075",
		Injuries:   1,
	}

	t.Run("label case does not change the ID", func(t *testing.T) {
		upper := raw
		upper.EventLabel = "hail 075"
		assert.Equal(t, recordID(raw, EventHail), recordID(upper, EventHail))
	})

	t.Run("field changes change the ID", func(t *testing.T) {
		other := raw
		other.Injuries = 2
		assert.NotEqual(t, recordID(raw, EventHail), recordID(other, EventHail))
	})
}
