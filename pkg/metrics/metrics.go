// Package metrics exposes Prometheus instrumentation for a running Fortuna
// accumulator: pool 0 fill level, reseed counts and bytes emitted.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus collectors a Fortuna service reports.
type Metrics struct {
	ReseedsTotal    prometheus.Counter
	BytesEmitted    prometheus.Counter
	EventsIngested  *prometheus.CounterVec
	Pool0FillBytes  prometheus.Gauge
	NotSeededErrors prometheus.Counter
}

// New registers and returns a Metrics set against reg. Callers typically
// pass prometheus.NewRegistry() in tests to avoid colliding with the global
// default registry across test cases.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		ReseedsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fortuna_reseeds_total",
			Help: "Number of times the generator has been reseeded from pooled entropy.",
		}),
		BytesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fortuna_bytes_emitted_total",
			Help: "Total bytes returned by RandomData across all requests.",
		}),
		EventsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fortuna_events_ingested_total",
			Help: "Entropy events accepted by AddEvent, labeled by source id.",
		}, []string{"source"}),
		Pool0FillBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fortuna_pool0_fill_bytes",
			Help: "Bytes absorbed by pool 0 since its last harvest.",
		}),
		NotSeededErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fortuna_not_seeded_errors_total",
			Help: "Number of RandomData calls rejected with ErrNotSeeded.",
		}),
	}

	reg.MustRegister(
		m.ReseedsTotal,
		m.BytesEmitted,
		m.EventsIngested,
		m.Pool0FillBytes,
		m.NotSeededErrors,
	)
	return m
}
