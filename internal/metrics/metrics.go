// Package metrics exposes Prometheus collectors for diagnosis runs.
//
// Collectors live on a private registry per Metrics value so tests and
// concurrent pipelines never share counters. The CLI writes the registry to
// a textfile for node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/reqgraph/internal/status"
)

const namespace = "reqgraph"

// Metrics holds the collectors for one registry.
type Metrics struct {
	registry *prometheus.Registry

	// QueriesTotal counts evaluated queries by outcome ("ok", "error").
	QueriesTotal *prometheus.CounterVec

	// RowsReturned observes result-set sizes after restriction.
	RowsReturned prometheus.Histogram

	// RowsDropped counts rows removed by partition restriction.
	RowsDropped prometheus.Counter

	// EdgeStatuses counts classified edges by status.
	EdgeStatuses *prometheus.CounterVec

	// UnresolvedTotal counts missing edges left without a route.
	UnresolvedTotal prometheus.Counter

	// IssuesTotal counts reported issues by code.
	IssuesTotal *prometheus.CounterVec

	// StageDuration tracks pipeline stage latency.
	StageDuration *prometheus.HistogramVec
}

// New creates Metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		QueriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Evaluated requirement queries by outcome",
		}, []string{"outcome"}),
		RowsReturned: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_rows",
			Help:      "Result rows per evaluated query",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1 to 512
		}),
		RowsDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Result rows dropped for naming individuals outside the evaluated partition",
		}),
		EdgeStatuses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "edge_status_total",
			Help:      "Classified query-graph edges by status",
		}, []string{"status"}),
		UnresolvedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unresolved_requirements_total",
			Help:      "Missing edges the solver could not route to an anchor",
		}),
		IssuesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issues_total",
			Help:      "Reported issues by code",
		}, []string{"code"}),
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8), // 0.1ms to ~1.6s
		}, []string{"stage"}),
	}
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveStage records how long a pipeline stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// CountEdges adds one observation per edge status.
func (m *Metrics) CountEdges(statuses []status.Edge) {
	for _, s := range statuses {
		m.EdgeStatuses.WithLabelValues(string(s)).Inc()
	}
}

// WriteTextfile writes the registry in the Prometheus text format, atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
