package diag

import (
	"time"

	"github.com/katalvlaran/anchorset/matrix"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all prometheus metrics for anchor selection and
// implements Sink.
type Metrics struct {
	// Input quality
	MissingMeasurements *prometheus.CounterVec
	MatricesBuilt       prometheus.Counter
	MatrixOrder         prometheus.Histogram

	// Reduction progress
	RoundsCompleted  prometheus.Counter
	RoundHyperVolume prometheus.Histogram

	// Run outcome
	Runs            *prometheus.CounterVec
	RunDuration     *prometheus.HistogramVec
	LastHyperVolume prometheus.Gauge
	Survivors       prometheus.Gauge
}

var _ Sink = (*Metrics)(nil)

// NewMetrics creates and registers all anchor selection metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MissingMeasurements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "anchorset_missing_measurements_total",
				Help: "Latency lookups that found no measurement",
			},
			[]string{"side"},
		),

		MatricesBuilt: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "anchorset_matrices_built_total",
				Help: "Latency matrices built successfully",
			},
		),

		MatrixOrder: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "anchorset_matrix_order",
				Help:    "Number of candidate nodes per built latency matrix",
				Buckets: prometheus.ExponentialBuckets(2, 2, 10),
			},
		),

		RoundsCompleted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "anchorset_rounds_completed_total",
				Help: "Reduction rounds that removed a node",
			},
		),

		RoundHyperVolume: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "anchorset_round_hypervolume",
				Help:    "Best hypervolume found per reduction round",
				Buckets: prometheus.ExponentialBuckets(1e-6, 10, 12),
			},
		),

		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "anchorset_runs_total",
				Help: "Anchor selection runs by result",
			},
			[]string{"result"},
		),

		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "anchorset_run_duration_seconds",
				Help:    "Time spent per anchor selection run in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		),

		LastHyperVolume: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "anchorset_last_hypervolume",
				Help: "Hypervolume achieved by the most recent successful run",
			},
		),

		Survivors: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "anchorset_last_survivors",
				Help: "Anchor count kept by the most recent successful run",
			},
		),
	}

	reg.MustRegister(
		m.MissingMeasurements,
		m.MatricesBuilt,
		m.MatrixOrder,
		m.RoundsCompleted,
		m.RoundHyperVolume,
		m.Runs,
		m.RunDuration,
		m.LastHyperVolume,
		m.Survivors,
	)

	return m
}

func (m *Metrics) MissingMeasurement(_, _ string, row bool) {
	side := "column"
	if row {
		side = "row"
	}
	m.MissingMeasurements.WithLabelValues(side).Inc()
}

func (m *Metrics) MatrixBuilt(_ []string, mat matrix.Matrix) {
	m.MatricesBuilt.Inc()
	if mat != nil {
		m.MatrixOrder.Observe(float64(mat.Rows()))
	}
}

func (m *Metrics) RoundCompleted(_ int, _ string, hv float64, _ int) {
	m.RoundsCompleted.Inc()
	m.RoundHyperVolume.Observe(hv)
}

func (m *Metrics) RunCompleted(_ string, survivors, _ int, hv float64, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Runs.WithLabelValues(result).Inc()
	m.RunDuration.WithLabelValues(result).Observe(elapsed.Seconds())
	if err == nil {
		m.LastHyperVolume.Set(hv)
		m.Survivors.Set(float64(survivors))
	}
}
