// Package metrics exposes the engine's Prometheus instruments as
// lifecycle hooks, plus an HTTP handler serving the scrape endpoint.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rigmate/rigmate/pkg/dialog"
)

// Collector owns a private registry so two collectors never collide on
// metric names, which matters in tests and embedded use.
type Collector struct {
	registry     *prometheus.Registry
	nodeVisits   *prometheus.CounterVec
	nodeDuration *prometheus.HistogramVec
	toolCalls    *prometheus.CounterVec
	toolDuration *prometheus.HistogramVec
	turns        *prometheus.CounterVec
}

// New creates a collector with all instruments registered.
func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		nodeVisits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rigmate",
			Name:      "node_visits_total",
			Help:      "Graph nodes executed, by node ID.",
		}, []string{"node"}),
		nodeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rigmate",
			Name:      "node_duration_seconds",
			Help:      "Wall time spent in each graph node.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"node"}),
		toolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rigmate",
			Name:      "tool_calls_total",
			Help:      "Tool executions, by tool name and outcome.",
		}, []string{"tool", "outcome"}),
		toolDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rigmate",
			Name:      "tool_duration_seconds",
			Help:      "Wall time spent executing each tool.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		turns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rigmate",
			Name:      "turns_total",
			Help:      "Conversation turns processed, by outcome.",
		}, []string{"outcome"}),
	}
}

// Hooks returns lifecycle hooks feeding the collector. Safe for
// concurrent use; prometheus instruments are goroutine-safe.
func (c *Collector) Hooks() dialog.LifecycleHooks {
	return dialog.LifecycleHooks{
		OnNodeEnter: func(ev dialog.NodeEvent) {
			c.nodeVisits.WithLabelValues(ev.NodeID).Inc()
		},
		OnNodeLeave: func(ev dialog.NodeEvent) {
			c.nodeDuration.WithLabelValues(ev.NodeID).Observe(ev.Duration.Seconds())
		},
		OnToolReturn: func(ev dialog.ToolEvent) {
			c.toolCalls.WithLabelValues(ev.ToolName, outcome(ev.IsError)).Inc()
			c.toolDuration.WithLabelValues(ev.ToolName).Observe(ev.Duration.Seconds())
		},
	}
}

// ObserveTurn records one finished conversation turn.
func (c *Collector) ObserveTurn(err error) {
	c.turns.WithLabelValues(outcome(err != nil)).Inc()
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests and embedding.
func (c *Collector) Gatherer() prometheus.Gatherer {
	return c.registry
}

func outcome(failed bool) string {
	if failed {
		return "error"
	}
	return "ok"
}
