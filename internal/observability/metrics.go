package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the harm
// report pipeline. The drop and unresolved-damage counters are the
// data-quality audit surface: silent record loss must always be countable.
type Metrics struct {
	RecordsRead     prometheus.Counter
	RecordsRetained prometheus.Counter
	RecordsDropped  *prometheus.CounterVec // label: reason={no_harm,unclassified_label,malformed_date}
	DamageDiscarded *prometheus.CounterVec // label: field={property,crop}

	RecordsPublished prometheus.Counter

	BatchSize     prometheus.Histogram
	BatchDuration prometheus.Histogram

	PipelineRunning prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RecordsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_harm",
			Name:      "records_read_total",
			Help:      "Total raw records extracted from the source file.",
		}),
		RecordsRetained: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_harm",
			Name:      "records_retained_total",
			Help:      "Total records that survived normalization.",
		}),
		RecordsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_harm",
			Name:      "records_dropped_total",
			Help:      "Records excluded from aggregation, by drop reason.",
		}, []string{"reason"}),
		DamageDiscarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_harm",
			Name:      "damage_values_discarded_total",
			Help:      "Nonzero damage amounts discarded for lack of a resolvable exponent code.",
		}, []string{"field"}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_harm",
			Name:      "records_published_total",
			Help:      "Normalized records published to the sink topic.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storm_harm",
			Name:      "batch_size",
			Help:      "Number of raw records per extracted batch.",
			Buckets:   []float64{100, 500, 1000, 2500, 5000, 10000, 25000, 50000},
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storm_harm",
			Name:      "batch_duration_seconds",
			Help:      "Duration of one extract-normalize-merge cycle.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "storm_harm",
			Name:      "pipeline_running",
			Help:      "1 while the batch pipeline is active, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.RecordsRead,
		m.RecordsRetained,
		m.RecordsDropped,
		m.DamageDiscarded,
		m.RecordsPublished,
		m.BatchSize,
		m.BatchDuration,
		m.PipelineRunning,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RecordsRead:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "storm_harm", Name: "records_read_total"}),
		RecordsRetained:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "storm_harm", Name: "records_retained_total"}),
		RecordsDropped:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "storm_harm", Name: "records_dropped_total"}, []string{"reason"}),
		DamageDiscarded:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "storm_harm", Name: "damage_values_discarded_total"}, []string{"field"}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "storm_harm", Name: "records_published_total"}),
		BatchSize:        prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "storm_harm", Name: "batch_size"}),
		BatchDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "storm_harm", Name: "batch_duration_seconds"}),
		PipelineRunning:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "storm_harm", Name: "pipeline_running"}),
	}
}
