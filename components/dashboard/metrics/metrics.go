package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dashboard"

// Telemetry counts dashboard events and times store writes. It satisfies
// dashboard.Telemetry and commands.Telemetry.
type Telemetry struct {
	gatherer prometheus.Gatherer

	events      *prometheus.CounterVec
	writes      *prometheus.CounterVec
	writeTime   prometheus.Histogram
	dragOutcome *prometheus.CounterVec
}

// New registers the collectors against reg. A nil reg uses a private registry.
func New(reg *prometheus.Registry) *Telemetry {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Telemetry{
		gatherer: reg,
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Total number of dashboard events by name.",
		}, []string{"event"}),
		writes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_writes_total",
			Help:      "Total number of settings writes by result.",
		}, []string{"result"}),
		writeTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_write_seconds",
			Help:      "Latency distribution for settings writes.",
			Buckets: []float64{
				0.0005, 0.001, 0.002, 0.005,
				0.01, 0.02, 0.05,
				0.1, 0.2, 0.5, 1,
			},
		}),
		dragOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drag_sessions_total",
			Help:      "Finished drag sessions by outcome.",
		}, []string{"outcome"}),
	}
}

// Record implements dashboard.Telemetry.
func (t *Telemetry) Record(_ context.Context, event string, payload map[string]any) {
	t.events.WithLabelValues(event).Inc()
	switch event {
	case "dashboard.store.write":
		result := "error"
		if ok, _ := payload["ok"].(bool); ok {
			result = "ok"
		}
		t.writes.WithLabelValues(result).Inc()
		if seconds, ok := payload["duration"].(float64); ok {
			t.writeTime.Observe(seconds)
		}
	case "dashboard.drag.end":
		if outcome, ok := payload["outcome"].(string); ok && outcome != "" {
			t.dragOutcome.WithLabelValues(outcome).Inc()
		}
	case "dashboard.drag.cancel":
		t.dragOutcome.WithLabelValues("cancelled").Inc()
	}
}

// Handler serves the registry in the Prometheus text format.
func (t *Telemetry) Handler() http.Handler {
	return promhttp.HandlerFor(t.gatherer, promhttp.HandlerOpts{})
}
