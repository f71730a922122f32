package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEraOf(t *testing.T) {
	tests := []struct {
		name     string
		year     int
		expected CollectionEra
	}{
		{"dataset epoch", 1950, Era1},
		{"mid era1", 1953, Era1},
		{"last era1 year", 1954, Era1},
		{"first era2 year", 1955, Era2},
		{"mid era2", 1975, Era2},
		{"last era2 year", 1995, Era2},
		{"first era3 year", 1996, Era3},
		{"recent year", 2011, Era3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			era, err := EraOf(tt.year)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, era)
		})
	}

	t.Run("pre-epoch years rejected", func(t *testing.T) {
		for _, year := range []int{1949, 1900, 0, -5} {
			_, err := EraOf(year)
			require.ErrorIs(t, err, ErrYearOutOfRange, "year %d", year)
		}
	})
}

func TestCollectionEraString(t *testing.T) {
	assert.Equal(t, "era1", Era1.String())
	assert.Equal(t, "era2", Era2.String())
	assert.Equal(t, "era3", Era3.String())
	assert.Equal(t, "unknown", EraUnknown.String())

	assert.Equal(t, "1950-1954", Era1.YearRange())
	assert.Equal(t, "1955-1995", Era2.YearRange())
	assert.Equal(t, "1996-present", Era3.YearRange())
}

func TestEras(t *testing.T) {
	assert.Equal(t, []CollectionEra{Era1, Era2, Era3}, Eras())
}
