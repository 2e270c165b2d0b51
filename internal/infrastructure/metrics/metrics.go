// Package metrics exposes Prometheus instrumentation for the deck service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "deck"

var (
	// ActiveStreams tracks open SSE generation streams.
	ActiveStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_streams",
		Help:      "Number of generation streams currently open.",
	})

	// UnitsCompleted counts terminal generation units by kind and outcome.
	UnitsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "units_completed_total",
		Help:      "Generation units that reached a terminal state.",
	}, []string{"kind", "outcome"})

	// UnitRetries counts unit restarts after transient failures.
	UnitRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unit_retries_total",
		Help:      "Unit restarts triggered by retryable failures.",
	}, []string{"error_kind"})

	// StreamEvents counts wire events written to clients by type.
	StreamEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stream_events_total",
		Help:      "SSE events written, by wire event type.",
	}, []string{"type"})

	// GenerationDuration observes wall time of whole deck generations.
	GenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "generation_duration_seconds",
		Help:      "End-to-end deck generation duration.",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
	})

	// ExportJobs counts processed export jobs by outcome.
	ExportJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "export_jobs_total",
		Help:      "Export jobs processed by background workers.",
	}, []string{"outcome"})

	// ExportQueueDepth tracks queued export jobs awaiting a worker.
	ExportQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "export_queue_depth",
		Help:      "Export jobs currently queued.",
	})

	// ShapesClassified counts classifier decisions by resulting shape kind.
	ShapesClassified = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shapes_classified_total",
		Help:      "Elements classified, by resulting shape kind.",
	}, []string{"kind"})
)
