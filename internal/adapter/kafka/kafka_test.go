package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-harm-report/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	prop := 10_000.0
	rec := domain.NormalizedRecord{
		ID:                "hail-abc123",
		Event:             domain.EventHail,
		Era:               domain.Era3,
		Year:              1996,
		Injuries:          2,
		PropertyDamageUSD: &prop,
		ProcessedAt:       now,
	}

	msg, err := serializeToMessage(rec)
	require.NoError(t, err)

	assert.Equal(t, []byte("hail-abc123"), msg.Key)
	assert.Contains(t, string(msg.Value), `"event":"hail"`)
	assert.Contains(t, string(msg.Value), `"property_damage_usd":10000`)

	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "event", msg.Headers[0].Key)
	assert.Equal(t, []byte("hail"), msg.Headers[0].Value)
	assert.Equal(t, "era", msg.Headers[1].Key)
	assert.Equal(t, []byte("era3"), msg.Headers[1].Value)
	assert.Equal(t, "processed_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)
}

func TestSerializeToMessageOmitsAbsentDamage(t *testing.T) {
	rec := domain.NormalizedRecord{
		ID:    "tornado-def456",
		Event: domain.EventTornado,
		Era:   domain.Era1,
	}

	msg, err := serializeToMessage(rec)
	require.NoError(t, err)

	// Absent damage must not serialize as zero.
	assert.NotContains(t, string(msg.Value), "property_damage_usd")
	assert.NotContains(t, string(msg.Value), "crop_damage_usd")
}
