// Package csvfile extracts raw records from the NOAA Storm Events bulk CSV.
// It implements pipeline.BatchExtractor over a plain or bzip2-compressed
// file, resolving the logical columns from the header row so column order
// changes between dataset revisions do not matter.
package csvfile

import (
	"compress/bzip2"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/storm-harm-report/internal/domain"
)

// Columns the analysis consumes, by Storm Events header name.
var requiredColumns = []string{
	"BGN_DATE", "COUNTYNAME", "EVTYPE",
	"FATALITIES", "INJURIES",
	"PROPDMG", "PROPDMGEXP", "CROPDMG", "CROPDMGEXP",
}

// Reader streams RawRecords from a Storm Events CSV file.
type Reader struct {
	file   *os.File
	csv    *csv.Reader
	cols   map[string]int
	logger *slog.Logger
	rows   int
}

// Open prepares a Reader for the given path. Files ending in .bz2 are
// decompressed on the fly. The header row is consumed immediately so column
// resolution errors surface before the pipeline starts.
func Open(path string, logger *slog.Logger) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open storm data: %w", err)
	}

	var src io.Reader = f
	if strings.HasSuffix(path, ".bz2") {
		src = bzip2.NewReader(f)
	}

	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1 // historical rows are occasionally ragged
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read storm data header: %w", err)
	}

	cols, err := resolveColumns(header)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &Reader{file: f, csv: cr, cols: cols, logger: logger}, nil
}

// ExtractBatch reads up to batchSize data rows. The final partial batch is
// returned with a nil error; the next call returns io.EOF.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := make([]domain.RawRecord, 0, batchSize)
	for len(batch) < batchSize {
		row, err := r.csv.Read()
		if err == io.EOF {
			if len(batch) == 0 {
				return nil, io.EOF
			}
			return batch, nil
		}
		if err != nil {
			// A single mangled row is logged and skipped, not fatal. Anything
			// other than a parse error comes from the underlying reader and
			// repeats on every call, so it aborts the extract instead.
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, fmt.Errorf("read storm data: %w", err)
			}
			r.logger.Warn("skipping malformed csv row", "error", err, "line", parseErr.Line)
			continue
		}
		r.rows++
		batch = append(batch, r.toRawRecord(row))
	}
	return batch, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// Rows returns the number of data rows decoded so far.
func (r *Reader) Rows() int { return r.rows }

func (r *Reader) toRawRecord(row []string) domain.RawRecord {
	return domain.RawRecord{
		BeginDate:        parseBeginDate(r.field(row, "BGN_DATE")),
		County:           r.field(row, "COUNTYNAME"),
		EventLabel:       r.field(row, "EVTYPE"),
		Fatalities:       parseCount(r.field(row, "FATALITIES")),
		Injuries:         parseCount(r.field(row, "INJURIES")),
		PropertyDamage:   parseFloatOrZero(r.field(row, "PROPDMG")),
		PropertyExponent: r.field(row, "PROPDMGEXP"),
		CropDamage:       parseFloatOrZero(r.field(row, "CROPDMG")),
		CropExponent:     r.field(row, "CROPDMGEXP"),
	}
}

func (r *Reader) field(row []string, name string) string {
	idx := r.cols[name]
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func resolveColumns(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToUpper(strings.TrimSpace(name))] = i
	}

	cols := make(map[string]int, len(requiredColumns))
	for _, name := range requiredColumns {
		idx, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("storm data header missing column %s", name)
		}
		cols[name] = idx
	}
	return cols, nil
}

// parseBeginDate parses the "m/d/yyyy h:mm:ss" begin date, of which only the
// date portion carries meaning. Malformed dates yield the zero time; the
// normalizer rejects such records with a diagnostic.
func parseBeginDate(s string) time.Time {
	datePart, _, _ := strings.Cut(strings.TrimSpace(s), " ")
	if datePart == "" {
		return time.Time{}
	}
	t, err := time.Parse("1/2/2006", datePart)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseCount parses a non-negative integer recorded as a decimal string
// ("5", "5.00"), returning 0 on failure or negative input.
func parseCount(s string) int {
	v := parseFloatOrZero(s)
	if v < 0 {
		return 0
	}
	return int(v)
}

// parseFloatOrZero parses a string as float64, returning 0 on failure.
func parseFloatOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
