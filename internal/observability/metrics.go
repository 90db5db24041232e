package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "vpconvert"

// Conversion outcomes used as the outcome label.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Metrics holds the Prometheus collectors of the conversion service.
type Metrics struct {
	JobsConsumed        prometheus.Counter
	InvalidJobs         prometheus.Counter
	Conversions         *prometheus.CounterVec // labels: outcome={ok,failed}
	ConversionDuration  prometheus.Histogram
	QuantitiesConverted prometheus.Counter
	ResultsPublished    prometheus.Counter
	PipelineRunning     prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		JobsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_consumed_total",
			Help:      "Total job messages read from the jobs topic.",
		}),
		InvalidJobs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_jobs_total",
			Help:      "Job messages that could not be decoded.",
		}),
		Conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Conversions by outcome.",
		}, []string{"outcome"}),
		ConversionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "conversion_duration_seconds",
			Help:      "Time to load, convert and store one file.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		QuantitiesConverted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quantities_converted_total",
			Help:      "Quantities written to converted files.",
		}),
		ResultsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_published_total",
			Help:      "Result messages written to the results topic.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.JobsConsumed,
		m.InvalidJobs,
		m.Conversions,
		m.ConversionDuration,
		m.QuantitiesConverted,
		m.ResultsPublished,
		m.PipelineRunning,
	}
}

// NewMetrics creates all service metrics and registers them with the
// default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsWithRegistry registers the metrics with reg.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered metrics, so tests can build as
// many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
