package report

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-harm-report/internal/aggregate"
	"github.com/couchcryptid/storm-harm-report/internal/domain"
)

func usd(v float64) *float64 { return &v }

func testSummary() *aggregate.Summary {
	return aggregate.FromRecords([]domain.NormalizedRecord{
		{ID: "tornado-1", Event: domain.EventTornado, Era: domain.Era1, Year: 1953, Fatalities: 5},
		{ID: "hail-1", Event: domain.EventHail, Era: domain.Era3, Year: 1996, Injuries: 1, PropertyDamageUSD: usd(10_000)},
		{ID: "flood-1", Event: domain.EventFlood, Era: domain.Era3, Year: 2006, PropertyDamageUSD: usd(20_000), CropDamageUSD: usd(5_000)},
		// Harm but no resolvable damage: must stay out of the damage tables.
		{ID: "avalanche-1", Event: domain.CanonicalEvent("avalanche"), Era: domain.Era3, Year: 2001, Injuries: 2},
	})
}

func newTestWriter(t *testing.T) (*Writer, string) {
	t.Helper()
	dir := t.TempDir()
	w := NewWriter(dir, 10, slog.Default())
	w.clock = clockwork.NewFakeClockAt(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	return w, dir
}

func readReport(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestWriteAll(t *testing.T) {
	w, dir := newTestWriter(t)
	require.NoError(t, w.WriteAll(testSummary()))

	for _, name := range []string{
		"fatalities_by_era.tsv",
		"injuries_by_era.tsv",
		"property_damage_by_era.tsv",
		"crop_damage_by_era.tsv",
		"casualties_all_eras.tsv",
		"damage_all_eras.tsv",
		"summary.txt",
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestFatalitiesByEra(t *testing.T) {
	w, dir := newTestWriter(t)
	require.NoError(t, w.WriteAll(testSummary()))

	got := readReport(t, dir, "fatalities_by_era.tsv")
	lines := strings.Split(strings.TrimSpace(got), "\n")

	assert.Equal(t, "era\trank\tevent\tfatalities", lines[0])
	assert.Equal(t, "era1\t1\ttornado\t5", lines[1])
	// Era3 rows restart ranking at 1.
	assert.Contains(t, got, "era3\t1\t")
}

func TestDamageAllErasExcludesAbsentOnlyGroups(t *testing.T) {
	w, dir := newTestWriter(t)
	require.NoError(t, w.WriteAll(testSummary()))

	got := readReport(t, dir, "damage_all_eras.tsv")
	lines := strings.Split(strings.TrimSpace(got), "\n")

	require.Len(t, lines, 3)
	assert.Equal(t, "rank\tevent\tdamage_usd\tproperty_usd\tcrop_usd", lines[0])
	assert.Equal(t, "1\tflood\t25000\t20000\t5000", lines[1])
	assert.Equal(t, "2\thail\t10000\t10000\t0", lines[2])
	assert.NotContains(t, got, "avalanche")
}

func TestCasualtiesAllEras(t *testing.T) {
	w, dir := newTestWriter(t)
	require.NoError(t, w.WriteAll(testSummary()))

	got := readReport(t, dir, "casualties_all_eras.tsv")
	lines := strings.Split(strings.TrimSpace(got), "\n")

	assert.Equal(t, "rank\tevent\tcasualties\tfatalities\tinjuries", lines[0])
	assert.Equal(t, "1\ttornado\t5\t5\t0", lines[1])
	assert.Equal(t, "2\tavalanche\t2\t0\t2", lines[2])
}

func TestSummaryText(t *testing.T) {
	w, dir := newTestWriter(t)
	require.NoError(t, w.WriteAll(testSummary()))

	got := readReport(t, dir, "summary.txt")

	assert.Contains(t, got, "generated_at: 2026-03-02T09:00:00Z")
	assert.Contains(t, got, "Most fatalities, era1 (1950-1954)")
	assert.Contains(t, got, "Most economic damage, all eras")
	// US digit grouping on dollar amounts.
	assert.Contains(t, got, "$25,000")
}

func TestWriteAllTruncates(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, 1, slog.Default())
	require.NoError(t, w.WriteAll(testSummary()))

	got := readReport(t, dir, "casualties_all_eras.tsv")
	lines := strings.Split(strings.TrimSpace(got), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "tornado")
}
