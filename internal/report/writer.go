// Package report renders the ranked harm tables to disk: one tab-separated
// file per cut for machine consumption plus a human-readable summary.
package report

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/couchcryptid/storm-harm-report/internal/aggregate"
	"github.com/couchcryptid/storm-harm-report/internal/domain"
)

// Writer renders ranked tables from a completed summary into a directory.
type Writer struct {
	dir     string
	topN    int
	logger  *slog.Logger
	clock   clockwork.Clock
	printer *message.Printer
}

// NewWriter creates a report writer targeting dir, truncating every ranked
// table to topN rows.
func NewWriter(dir string, topN int, logger *slog.Logger) *Writer {
	return &Writer{
		dir:     dir,
		topN:    topN,
		logger:  logger,
		clock:   clockwork.NewRealClock(),
		printer: message.NewPrinter(language.AmericanEnglish),
	}
}

// WriteAll renders every report cut. Per-era tables cover the single
// measures; the combined casualty and damage measures are reported across
// all eras, where merged totals are meaningful.
func (w *Writer) WriteAll(summary *aggregate.Summary) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	perEra := []struct {
		file    string
		measure aggregate.Measure
	}{
		{"fatalities_by_era.tsv", aggregate.MeasureFatalities},
		{"injuries_by_era.tsv", aggregate.MeasureInjuries},
		{"property_damage_by_era.tsv", aggregate.MeasureProperty},
		{"crop_damage_by_era.tsv", aggregate.MeasureCrop},
	}
	for _, cut := range perEra {
		if err := w.writePerEra(summary, cut.file, cut.measure); err != nil {
			return err
		}
	}

	if err := w.writeAllEras(summary, "casualties_all_eras.tsv",
		aggregate.MeasureCasualties, []string{"fatalities", "injuries"}); err != nil {
		return err
	}
	if err := w.writeAllEras(summary, "damage_all_eras.tsv",
		aggregate.MeasureDamage, []string{"property_usd", "crop_usd"}); err != nil {
		return err
	}

	return w.writeSummaryText(summary)
}

func (w *Writer) writePerEra(summary *aggregate.Summary, file string, measure aggregate.Measure) error {
	rows := make([][]string, 0)
	for _, era := range domain.Eras() {
		for _, row := range summary.TopByEra(era, measure, w.topN) {
			rows = append(rows, []string{
				era.String(),
				strconv.Itoa(row.Rank),
				string(row.Event),
				formatValue(row.Value),
			})
		}
	}
	return w.writeTSV(file, []string{"era", "rank", "event", string(measure)}, rows)
}

func (w *Writer) writeAllEras(summary *aggregate.Summary, file string, measure aggregate.Measure, parts []string) error {
	rows := make([][]string, 0)
	for _, row := range summary.TopAllEras(measure, w.topN) {
		line := []string{
			strconv.Itoa(row.Rank),
			string(row.Event),
			formatValue(row.Value),
		}
		for _, part := range row.Parts {
			line = append(line, formatValue(part))
		}
		rows = append(rows, line)
	}

	header := append([]string{"rank", "event", string(measure)}, parts...)
	return w.writeTSV(file, header, rows)
}

func (w *Writer) writeTSV(name string, header []string, rows [][]string) error {
	f, err := os.Create(filepath.Join(w.dir, name))
	if err != nil {
		return fmt.Errorf("create report %s: %w", name, err)
	}

	cw := csv.NewWriter(f)
	cw.Comma = '\t'
	if err := cw.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write report %s: %w", name, err)
	}
	if err := cw.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write report %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report %s: %w", name, err)
	}

	w.logger.Info("report written", "file", name, "rows", len(rows))
	return nil
}

// writeSummaryText renders summary.txt, the at-a-glance version of the
// tables for humans. Dollar amounts get US digit grouping.
func (w *Writer) writeSummaryText(summary *aggregate.Summary) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Storm harm summary\n")
	fmt.Fprintf(&b, "generated_at: %s\n", w.clock.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "records: %d  groups: %d  top_n: %d\n", summary.Records(), summary.Groups(), w.topN)

	for _, era := range domain.Eras() {
		fmt.Fprintf(&b, "\nMost fatalities, %s (%s)\n", era, era.YearRange())
		rows := summary.TopByEra(era, aggregate.MeasureFatalities, w.topN)
		if len(rows) == 0 {
			b.WriteString("  (no records)\n")
		}
		for _, row := range rows {
			w.printer.Fprintf(&b, "  %2d. %-24s %d\n", row.Rank, row.Event, int64(row.Value))
		}
	}

	fmt.Fprintf(&b, "\nMost casualties, all eras\n")
	for _, row := range summary.TopAllEras(aggregate.MeasureCasualties, w.topN) {
		w.printer.Fprintf(&b, "  %2d. %-24s %d (%d fatalities, %d injuries)\n",
			row.Rank, row.Event, int64(row.Value), int64(row.Parts[0]), int64(row.Parts[1]))
	}

	fmt.Fprintf(&b, "\nMost economic damage, all eras\n")
	for _, row := range summary.TopAllEras(aggregate.MeasureDamage, w.topN) {
		w.printer.Fprintf(&b, "  %2d. %-24s $%.0f ($%.0f property, $%.0f crop)\n",
			row.Rank, row.Event, row.Value, row.Parts[0], row.Parts[1])
	}

	path := filepath.Join(w.dir, "summary.txt")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write summary text: %w", err)
	}

	w.logger.Info("report written", "file", "summary.txt")
	return nil
}

// formatValue prints counts without a decimal point and dollar totals with
// only the precision they carry.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
