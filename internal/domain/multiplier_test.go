package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveMultiplier(t *testing.T) {
	tests := []struct {
		code     string
		expected float64
		ok       bool
	}{
		{"H", 1e2, true},
		{"h", 1e2, true},
		{"K", 1e3, true},
		{"k", 1e3, true},
		{"M", 1e6, true},
		{"m", 1e6, true},
		{"B", 1e9, true},
		{"b", 1e9, true},
		{"1", 1e1, true},
		{"2", 1e2, true},
		{"3", 1e3, true},
		{"5", 1e5, true},
		{"7", 1e7, true},
		{"9", 1e9, true},
		{"", 0, false},
		{" ", 0, false},
		{"0", 0, false},
		{"NA", 0, false},
		{"na", 0, false},
		{"?", 0, false},
		{"-", 0, false},
		{"+", 0, false},
		{"X", 0, false},
		{"KM", 0, false},
		{"10", 0, false},
	}

	for _, tt := range tests {
		name := tt.code
		if name == "" {
			name = "blank"
		}
		t.Run(name, func(t *testing.T) {
			mult, ok := ResolveMultiplier(tt.code)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, mult)
			}
		})
	}
}

func TestDamageUSD(t *testing.T) {
	t.Run("resolvable code scales amount", func(t *testing.T) {
		usd := damageUSD(10, "K")
		if assert.NotNil(t, usd) {
			assert.Equal(t, 10_000.0, *usd)
		}
	})

	t.Run("zero amount with resolvable code is a present zero", func(t *testing.T) {
		usd := damageUSD(0, "K")
		if assert.NotNil(t, usd) {
			assert.Equal(t, 0.0, *usd)
		}
	})

	t.Run("unresolvable code is absent, not zero", func(t *testing.T) {
		assert.Nil(t, damageUSD(25, ""))
		assert.Nil(t, damageUSD(25, "0"))
		assert.Nil(t, damageUSD(25, "?"))
	})
}

func outlierRecord() RawRecord {
	return RawRecord{
		BeginDate:        time.Date(2006, time.January, 1, 0, 0, 0, 0, time.UTC),
		County:           "NAPA",
		EventLabel:       "FLOOD",
		PropertyDamage:   115,
		PropertyExponent: "B",
	}
}

func TestCorrectKnownOutliers(t *testing.T) {
	t.Run("napa 2006 exponent rewritten to M", func(t *testing.T) {
		got := correctKnownOutliers(outlierRecord())
		assert.Equal(t, "M", got.PropertyExponent)

		mult, ok := ResolveMultiplier(got.PropertyExponent)
		assert.True(t, ok)
		assert.Equal(t, 1e6, mult)
	})

	t.Run("amount rounds to the keyed value", func(t *testing.T) {
		rec := outlierRecord()
		rec.PropertyDamage = 115.32
		got := correctKnownOutliers(rec)
		assert.Equal(t, "M", got.PropertyExponent)
	})

	t.Run("different county untouched", func(t *testing.T) {
		rec := outlierRecord()
		rec.County = "SONOMA"
		got := correctKnownOutliers(rec)
		assert.Equal(t, "B", got.PropertyExponent)
	})

	t.Run("different date untouched", func(t *testing.T) {
		rec := outlierRecord()
		rec.BeginDate = time.Date(2006, time.January, 2, 0, 0, 0, 0, time.UTC)
		got := correctKnownOutliers(rec)
		assert.Equal(t, "B", got.PropertyExponent)
	})

	t.Run("different amount untouched", func(t *testing.T) {
		rec := outlierRecord()
		rec.PropertyDamage = 116
		got := correctKnownOutliers(rec)
		assert.Equal(t, "B", got.PropertyExponent)
	})

	t.Run("different code untouched", func(t *testing.T) {
		rec := outlierRecord()
		rec.PropertyExponent = "M"
		got := correctKnownOutliers(rec)
		assert.Equal(t, "M", got.PropertyExponent)
	})
}
