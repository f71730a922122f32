// Command genfixture runs the real normalization pipeline over a Storm
// Events CSV with a fixed clock and writes the normalized records and run
// audit as JSON fixtures. Because record IDs are deterministic and the clock
// is pinned, regenerated fixtures only change when the code or vocabulary
// does.
//
// Usage:
//
//	go run ./cmd/genfixture \
//	  -input testdata/storm_sample.csv \
//	  -records-out testdata/normalized_records.json \
//	  -audit-out testdata/audit.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/storm-harm-report/internal/adapter/csvfile"
	"github.com/couchcryptid/storm-harm-report/internal/domain"
	"github.com/couchcryptid/storm-harm-report/internal/observability"
	"github.com/couchcryptid/storm-harm-report/internal/pipeline"
)

// fixtureTime pins ProcessedAt for reproducible fixtures.
var fixtureTime = time.Date(2026, time.January, 15, 6, 0, 0, 0, time.UTC)

// collector captures the normalized records the pipeline would publish.
type collector struct {
	records []domain.NormalizedRecord
}

func (c *collector) LoadBatch(_ context.Context, records []domain.NormalizedRecord) error {
	c.records = append(c.records, records...)
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	input := flag.String("input", "", "Storm Events CSV to normalize (plain or .bz2)")
	recordsOut := flag.String("records-out", "", "output path for the normalized records JSON fixture")
	auditOut := flag.String("audit-out", "", "output path for the run audit JSON fixture")
	flag.Parse()

	if *input == "" || *recordsOut == "" || *auditOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -input, -records-out, -audit-out")
	}

	domain.SetClock(clockwork.NewFakeClockAt(fixtureTime))
	defer domain.SetClock(nil)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	classifier, err := domain.NewClassifier()
	if err != nil {
		return fmt.Errorf("load vocabulary: %w", err)
	}

	reader, err := csvfile.Open(*input, logger)
	if err != nil {
		return err
	}
	defer reader.Close()

	sink := &collector{}
	p := pipeline.New(reader, domain.NewNormalizer(classifier), sink, logger,
		observability.NewMetricsForTesting(), pipeline.Options{
			// One worker keeps fixture record order identical to input order.
			Workers:             1,
			AuditUnmappedLabels: true,
		})

	result, err := p.Run(context.Background())
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	if err := writeJSON(*recordsOut, sink.records); err != nil {
		return fmt.Errorf("writing records fixture: %w", err)
	}
	log.Printf("wrote records fixture: %s (%d records)", *recordsOut, len(sink.records))

	if err := writeJSON(*auditOut, result.Audit); err != nil {
		return fmt.Errorf("writing audit fixture: %w", err)
	}
	log.Printf("wrote audit fixture: %s", *auditOut)

	printStats(result, sink.records)
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(result *pipeline.Result, records []domain.NormalizedRecord) {
	eraCounts := map[domain.CollectionEra]int{}
	eventCounts := map[domain.CanonicalEvent]int{}
	var withProperty, withCrop, casualties int
	for i := range records {
		rec := &records[i]
		eraCounts[rec.Era]++
		eventCounts[rec.Event]++
		if rec.PropertyDamageUSD != nil {
			withProperty++
		}
		if rec.CropDamageUSD != nil {
			withCrop++
		}
		casualties += rec.Casualties()
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Read: %d  Retained: %d\n", result.Audit.RecordsRead, result.Audit.RecordsRetained)
	fmt.Printf("Dropped: no_harm=%d unclassified=%d malformed_date=%d\n",
		result.Audit.Dropped[domain.DropNoHarm],
		result.Audit.Dropped[domain.DropUnclassified],
		result.Audit.Dropped[domain.DropBadDate])
	fmt.Printf("Damage discarded: property=%d crop=%d\n",
		result.Audit.PropertyDamageDiscarded, result.Audit.CropDamageDiscarded)
	fmt.Printf("By era: era1=%d era2=%d era3=%d\n",
		eraCounts[domain.Era1], eraCounts[domain.Era2], eraCounts[domain.Era3])
	fmt.Printf("With property damage: %d  With crop damage: %d\n", withProperty, withCrop)
	fmt.Printf("Total casualties: %d  Distinct events: %d  Groups: %d\n",
		casualties, len(eventCounts), result.Summary.Groups())

	if len(result.Audit.UnmappedLabels) > 0 {
		fmt.Printf("Distinct unmapped labels: %d\n", len(result.Audit.UnmappedLabels))
	}

	printFirstRecord(records)
}

func printFirstRecord(records []domain.NormalizedRecord) {
	if len(records) == 0 {
		return
	}
	rec := &records[0]
	fmt.Printf("\nFirst normalized record:\n")
	fmt.Printf("  ID: %s\n", rec.ID)
	fmt.Printf("  Event: %s  Era: %s  Year: %d\n", rec.Event, rec.Era, rec.Year)
	fmt.Printf("  Fatalities: %d  Injuries: %d\n", rec.Fatalities, rec.Injuries)
	if rec.PropertyDamageUSD != nil {
		fmt.Printf("  PropertyDamageUSD: %g\n", *rec.PropertyDamageUSD)
	}
	if rec.CropDamageUSD != nil {
		fmt.Printf("  CropDamageUSD: %g\n", *rec.CropDamageUSD)
	}
	fmt.Printf("  ProcessedAt: %s\n", rec.ProcessedAt.Format(time.RFC3339))
}
