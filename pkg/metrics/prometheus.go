package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cacheOps       *prometheus.CounterVec
	rateLimit      *prometheus.CounterVec
	computeSeconds *prometheus.HistogramVec
	datasetRecords prometheus.Gauge
	datasetSymbols prometheus.Gauge
	errorsTotal    *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cacheOps: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockinsight_cache_ops_total",
				Help: "Cache operations by outcome (hit, miss, error)",
			},
			[]string{"op", "outcome"},
		),
		rateLimit: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockinsight_rate_limit_decisions_total",
				Help: "Rate limiter admit/reject decisions per tier",
			},
			[]string{"tier", "outcome"},
		),
		computeSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockinsight_indicator_compute_seconds",
				Help:    "Indicator computation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"indicator"},
		),
		datasetRecords: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "stockinsight_dataset_records",
				Help: "Number of OHLCV rows loaded",
			},
		),
		datasetSymbols: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "stockinsight_dataset_symbols",
				Help: "Number of distinct symbols loaded",
			},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockinsight_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordCacheOp records a cache operation outcome.
func (r *Recorder) RecordCacheOp(op, outcome string) {
	r.cacheOps.WithLabelValues(op, outcome).Inc()
}

// RecordRateLimit records a rate limiter decision.
func (r *Recorder) RecordRateLimit(tier, outcome string) {
	r.rateLimit.WithLabelValues(tier, outcome).Inc()
}

// RecordCompute records indicator computation latency in seconds.
func (r *Recorder) RecordCompute(indicator string, seconds float64) {
	r.computeSeconds.WithLabelValues(indicator).Observe(seconds)
}

// RecordDataset records the loaded dataset size.
func (r *Recorder) RecordDataset(records, symbols int) {
	r.datasetRecords.Set(float64(records))
	r.datasetSymbols.Set(float64(symbols))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
