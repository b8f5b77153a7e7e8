package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the gateway's Prometheus instruments. Each instance
// owns its registry so tests can build as many as they want without
// duplicate-registration panics.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal      *prometheus.CounterVec
	WakesIssued        *prometheus.CounterVec
	WakesThrottled     prometheus.Counter
	WakeFailures       prometheus.Counter
	ProbeChecks        *prometheus.CounterVec
	RefreshPasses      prometheus.Counter
	RegisteredServices prometheus.Gauge
}

// New builds a metrics set backed by a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rouse",
			Name:      "requests_total",
			Help:      "Gateway requests by routing outcome.",
		}, []string{"outcome"}),
		WakesIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rouse",
			Name:      "wakes_issued_total",
			Help:      "Wake signals sent, by service.",
		}, []string{"service"}),
		WakesThrottled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "rouse",
			Name:      "wakes_throttled_total",
			Help:      "Wake requests dropped by the per-MAC cooldown.",
		}),
		WakeFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "rouse",
			Name:      "wake_failures_total",
			Help:      "Wake signals that could not be sent.",
		}),
		ProbeChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rouse",
			Name:      "probe_checks_total",
			Help:      "Host probe attempts, by result.",
		}, []string{"result"}),
		RefreshPasses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "rouse",
			Name:      "registry_refresh_passes_total",
			Help:      "Reconciliation passes that actually ran.",
		}),
		RegisteredServices: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "rouse",
			Name:      "registered_services",
			Help:      "Services currently in the registry.",
		}),
	}
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
