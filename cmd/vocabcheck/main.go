// Command vocabcheck validates the embedded event vocabulary: every category
// must name a canonical event, labels must be normalized and disjoint, and
// the full canonical set must be covered. With -csv it additionally audits
// classification coverage against a real Storm Events extract, reporting
// which raw labels would be dropped.
//
// Usage:
//
//	go run ./cmd/vocabcheck [-csv data/storm_data.csv.bz2] [-top 25]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/couchcryptid/storm-harm-report/internal/adapter/csvfile"
	"github.com/couchcryptid/storm-harm-report/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	csvPath := flag.String("csv", "", "optional Storm Events CSV to audit classification coverage against")
	topUnmapped := flag.Int("top", 25, "number of unmapped labels to list in the coverage audit")
	flag.Parse()

	if code := run(*csvPath, *topUnmapped); code != 0 {
		os.Exit(code)
	}
}

func run(csvPath string, topUnmapped int) int {
	fmt.Println("=== Event Vocabulary Validation ===")
	fmt.Println()

	classifier, err := domain.NewClassifier()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load vocabulary: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateCanonicalCoverage(classifier),
		validateCanonicalNames(),
	}
	if csvPath != "" {
		p, err := auditCSVCoverage(classifier, csvPath, topUnmapped)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: coverage audit: %v\n", err)
			return 1
		}
		phases = append(phases, p)
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Vocabulary: %d categories, %d distinct labels\n", classifier.Categories(), classifier.Labels())

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Canonical Coverage ──
// Construction already rejects unknown categories, duplicate labels, and
// empty synonym lists, so a loaded classifier with one category per
// canonical event means the mapping is complete and disjoint.

func validateCanonicalCoverage(c *domain.Classifier) *phase {
	p := &phase{name: "Phase 1: Canonical Coverage"}

	if c.Categories() != len(domain.CanonicalEvents) {
		p.errorf("vocabulary has %d categories, canonical set has %d", c.Categories(), len(domain.CanonicalEvents))
	}

	// Every canonical event name should classify to itself so that clean
	// modern-era labels never miss.
	for _, event := range domain.CanonicalEvents {
		got, ok := c.Classify(string(event))
		if !ok {
			p.errorf("canonical name %q is not in its own category's labels", event)
		} else if got != event {
			p.errorf("canonical name %q classifies to %q", event, got)
		}
	}
	return p
}

// ── Phase 2: Canonical Names ──
// Canonical event names are used as report keys and Kafka headers; they must
// already be in normalized form.

func validateCanonicalNames() *phase {
	p := &phase{name: "Phase 2: Canonical Names"}
	seen := map[domain.CanonicalEvent]bool{}
	for _, event := range domain.CanonicalEvents {
		if string(event) == "" {
			p.errorf("empty canonical event name")
			continue
		}
		if normalized := domain.NormalizeLabel(string(event)); normalized != string(event) {
			p.errorf("canonical name %q is not normalized (want %q)", event, normalized)
		}
		if seen[event] {
			p.errorf("duplicate canonical event %q", event)
		}
		seen[event] = true
	}
	return p
}

// ── Phase 3: CSV Coverage Audit ──
// Classifies every EVTYPE in the given extract and reports the loss an
// analysis run would incur. Unmapped labels are informational, not errors:
// the file documents known typos, and new ones accumulate as NOAA revises
// the dataset.

func auditCSVCoverage(c *domain.Classifier, path string, topN int) (*phase, error) {
	p := &phase{name: "Phase 3: CSV Coverage Audit"}

	reader, err := csvfile.Open(path, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var mapped, unmappedRows int
	unmapped := map[string]int{}
	ctx := context.Background()

	for {
		batch, err := reader.ExtractBatch(ctx, 10_000)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		for _, raw := range batch {
			if _, ok := c.Classify(raw.EventLabel); ok {
				mapped++
				continue
			}
			unmappedRows++
			unmapped[domain.NormalizeLabel(raw.EventLabel)]++
		}
	}

	total := mapped + unmappedRows
	fmt.Printf("  Coverage: %d/%d rows mapped (%d distinct unmapped labels)\n",
		mapped, total, len(unmapped))
	printTopUnmapped(unmapped, topN)

	if total == 0 {
		p.errorf("no data rows in %s", path)
	}
	return p, nil
}

type labelCount struct {
	label string
	count int
}

func printTopUnmapped(unmapped map[string]int, topN int) {
	if len(unmapped) == 0 {
		return
	}
	counts := make([]labelCount, 0, len(unmapped))
	for label, n := range unmapped {
		counts = append(counts, labelCount{label, n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].label < counts[j].label
	})
	if topN > len(counts) {
		topN = len(counts)
	}

	fmt.Printf("  Top unmapped labels:\n")
	for _, lc := range counts[:topN] {
		fmt.Printf("    %6d  %s\n", lc.count, lc.label)
	}
}
