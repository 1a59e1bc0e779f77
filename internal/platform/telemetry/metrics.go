package telemetry

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "quotekeeper"

// NewRegistry returns a registry preloaded with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return registry
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// SyncMetrics implements ports.SyncRecorder on Prometheus collectors.
type SyncMetrics struct {
	runs    *prometheus.CounterVec
	skipped prometheus.Counter
	quotes  prometheus.Gauge
}

// NewSyncMetrics creates the sync collectors and registers them with reg.
func NewSyncMetrics(reg prometheus.Registerer) (*SyncMetrics, error) {
	m := &SyncMetrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_runs_total",
				Help:      "Completed remote sync runs by result",
			},
			[]string{"result"},
		),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_skipped_total",
			Help:      "Sync ticks skipped because the previous run was still in flight",
		}),
		quotes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "quotes",
			Help:      "Quotes in the collection after the last sync run",
		}),
	}

	for _, c := range []prometheus.Collector{m.runs, m.skipped, m.quotes} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering sync metrics: %w", err)
		}
	}

	return m, nil
}

// RunFinished implements ports.SyncRecorder.
func (m *SyncMetrics) RunFinished(result string) {
	m.runs.WithLabelValues(result).Inc()
}

// TickSkipped implements ports.SyncRecorder.
func (m *SyncMetrics) TickSkipped() {
	m.skipped.Inc()
}

// QuotesStored implements ports.SyncRecorder.
func (m *SyncMetrics) QuotesStored(n int) {
	m.quotes.Set(float64(n))
}
