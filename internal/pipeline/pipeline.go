// Package pipeline orchestrates the batch harm analysis: extract raw
// records, normalize them in parallel, merge per-worker summaries, and
// optionally publish the normalized records downstream.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/storm-harm-report/internal/aggregate"
	"github.com/couchcryptid/storm-harm-report/internal/domain"
	"github.com/couchcryptid/storm-harm-report/internal/observability"
)

// BatchExtractor reads up to batchSize raw records from the source. A final
// partial batch comes back with a nil error; the call after that returns
// io.EOF.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawRecord, error)
}

// BatchLoader publishes normalized records to a downstream sink.
type BatchLoader interface {
	LoadBatch(ctx context.Context, records []domain.NormalizedRecord) error
}

// Options tunes a pipeline run.
type Options struct {
	// BatchSize is the number of raw records per extract cycle.
	BatchSize int
	// Workers bounds the normalization fan-out; 0 means one per CPU.
	Workers int
	// AuditUnmappedLabels enables the per-label side list of classification
	// misses. Counts are tracked either way.
	AuditUnmappedLabels bool
}

// Pipeline runs the extract-normalize-aggregate loop over a finite source.
type Pipeline struct {
	extractor  BatchExtractor
	normalizer *domain.Normalizer
	loader     BatchLoader // nil disables publication
	logger     *slog.Logger
	metrics    *observability.Metrics
	opts       Options

	done   atomic.Bool
	mu     sync.Mutex
	result *Result
}

// New creates a Pipeline. Pass a nil loader to skip publication.
func New(e BatchExtractor, n *domain.Normalizer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10_000
	}
	return &Pipeline{
		extractor:  e,
		normalizer: n,
		loader:     l,
		logger:     logger,
		metrics:    metrics,
		opts:       opts,
	}
}

// CheckReadiness returns nil once the run has completed, so the HTTP
// readiness probe flips only when the summary exists.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.done.Load() {
		return errors.New("harm summary not yet computed")
	}
	return nil
}

// Result returns the outcome of the completed run, or false while the
// pipeline is still working.
func (p *Pipeline) Result() (*Result, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.result == nil {
		return nil, false
	}
	return p.result, true
}

// Run drains the extractor and returns the merged summary and audit.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	p.logger.Info("pipeline started", "batch_size", p.opts.BatchSize, "workers", p.opts.Workers)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	summary := aggregate.NewSummary()
	audit := newAudit(p.opts.AuditUnmappedLabels)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil, ctx.Err()
		default:
		}

		batch, err := p.extractor.ExtractBatch(ctx, p.opts.BatchSize)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("extract batch: %w", err)
		}
		if len(batch) == 0 {
			continue
		}

		if err := p.processBatch(ctx, batch, summary, audit); err != nil {
			return nil, err
		}
	}

	result := &Result{Summary: summary, Audit: *audit}
	p.mu.Lock()
	p.result = result
	p.mu.Unlock()
	p.done.Store(true)

	p.logger.Info("pipeline finished",
		"records_read", audit.RecordsRead,
		"records_retained", audit.RecordsRetained,
		"groups", summary.Groups(),
	)
	return result, nil
}

// processBatch fans the batch out across workers, merges the partial
// results, and publishes retained records when a loader is configured.
func (p *Pipeline) processBatch(ctx context.Context, batch []domain.RawRecord, summary *aggregate.Summary, audit *Audit) error {
	start := time.Now()
	p.metrics.RecordsRead.Add(float64(len(batch)))
	p.metrics.BatchSize.Observe(float64(len(batch)))

	parts := partition(batch, p.opts.Workers)
	partials := make([]*partial, len(parts))

	g, gctx := errgroup.WithContext(ctx)
	for i, part := range parts {
		g.Go(func() error {
			partials[i] = p.normalizePartition(gctx, part)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var retained []domain.NormalizedRecord
	for _, pt := range partials {
		summary.Merge(pt.summary)
		audit.merge(pt)
		retained = append(retained, pt.records...)
	}
	p.observePartials(partials)

	if p.loader != nil && len(retained) > 0 {
		if err := p.loader.LoadBatch(ctx, retained); err != nil {
			return fmt.Errorf("load batch: %w", err)
		}
		p.metrics.RecordsPublished.Add(float64(len(retained)))
	}

	p.metrics.BatchDuration.Observe(time.Since(start).Seconds())
	return nil
}

// normalizePartition runs the pure per-record transform over one partition.
// Per-record failures are counted and logged, never fatal.
func (p *Pipeline) normalizePartition(_ context.Context, part []domain.RawRecord) *partial {
	pt := newPartial(p.opts.AuditUnmappedLabels)

	for _, raw := range part {
		pt.recordsRead++
		rec, reason, err := p.normalizer.Normalize(raw)
		if err != nil {
			p.logger.Warn("record rejected", "error", err, "label", raw.EventLabel)
		}
		if reason != domain.DropNone {
			pt.dropped[reason]++
			if reason == domain.DropUnclassified && pt.unmapped != nil {
				pt.unmapped[domain.NormalizeLabel(raw.EventLabel)]++
			}
			continue
		}

		if raw.PropertyDamage != 0 && rec.PropertyDamageUSD == nil {
			pt.propertyDiscarded++
		}
		if raw.CropDamage != 0 && rec.CropDamageUSD == nil {
			pt.cropDiscarded++
		}

		pt.summary.Add(rec)
		pt.records = append(pt.records, rec)
	}
	return pt
}

func (p *Pipeline) observePartials(partials []*partial) {
	for _, pt := range partials {
		p.metrics.RecordsRetained.Add(float64(len(pt.records)))
		for reason, n := range pt.dropped {
			p.metrics.RecordsDropped.WithLabelValues(string(reason)).Add(float64(n))
		}
		p.metrics.DamageDiscarded.WithLabelValues("property").Add(float64(pt.propertyDiscarded))
		p.metrics.DamageDiscarded.WithLabelValues("crop").Add(float64(pt.cropDiscarded))
	}
}

// partition splits a batch into at most n contiguous, near-equal parts.
func partition(batch []domain.RawRecord, n int) [][]domain.RawRecord {
	if n > len(batch) {
		n = len(batch)
	}
	parts := make([][]domain.RawRecord, 0, n)
	size := (len(batch) + n - 1) / n
	for start := 0; start < len(batch); start += size {
		end := start + size
		if end > len(batch) {
			end = len(batch)
		}
		parts = append(parts, batch[start:end])
	}
	return parts
}
