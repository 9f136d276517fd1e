// Package metrics counts generated bursts and exports them in the Prometheus
// text format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the generator counters on a private registry
type Metrics struct {
	registry *prometheus.Registry

	bursts            prometheus.Counter
	samples           prometheus.Counter
	errors            *prometheus.CounterVec
	burstDuration     prometheus.Histogram
	papr              prometheus.Gauge
	occupiedBandwidth prometheus.Gauge
}

// New creates the metric set
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		bursts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dsssgen_bursts_total",
				Help: "Number of bursts generated",
			},
		),
		samples: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dsssgen_samples_total",
				Help: "Number of complex samples written",
			},
		),
		errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dsssgen_errors_total",
				Help: "Number of failures by pipeline stage",
			},
			[]string{"stage"},
		),
		burstDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dsssgen_burst_duration_seconds",
				Help:    "Time to assemble and stream one burst",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
			},
		),
		papr: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "dsssgen_burst_papr_db",
				Help: "Peak-to-average power ratio of the last analyzed burst",
			},
		),
		occupiedBandwidth: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "dsssgen_burst_occupied_bandwidth",
				Help: "99% occupied bandwidth of the last analyzed burst, fraction of the sample rate",
			},
		),
	}
}

// ObserveBurst records one generated burst
func (m *Metrics) ObserveBurst(samples int, elapsed time.Duration) {
	m.bursts.Inc()
	m.samples.Add(float64(samples))
	m.burstDuration.Observe(elapsed.Seconds())
}

// ObserveSpectrum records the spectrum measurements of a burst
func (m *Metrics) ObserveSpectrum(paprDB, occupiedBandwidth float64) {
	m.papr.Set(paprDB)
	m.occupiedBandwidth.Set(occupiedBandwidth)
}

// ObserveError counts a failure in the named stage
func (m *Metrics) ObserveError(stage string) {
	m.errors.WithLabelValues(stage).Inc()
}

// Registry returns the registry holding the metrics
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the metrics for the node exporter textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
