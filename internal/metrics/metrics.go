// Package metrics declares the Prometheus instruments of the store.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mesh-intelligence/showstore/pkg/types"
)

var (
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "showstore_operation_duration_seconds",
			Help:    "Duration of store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "route"},
	)

	OperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showstore_operation_errors_total",
			Help: "Store operations that returned an error",
		},
		[]string{"operation", "route", "error_type"},
	)

	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showstore_batches_total",
			Help: "Batches applied, by outcome",
		},
		[]string{"outcome"},
	)

	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "showstore_batch_operations",
			Help:    "Operations per applied batch",
			Buckets: prometheus.ExponentialBuckets(1, 4, 6),
		},
	)

	MigrationsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showstore_migration_steps_total",
			Help: "Schema upgrade steps applied, by target version",
		},
		[]string{"version"},
	)

	SchemaVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "showstore_schema_version",
			Help: "Schema version of the open database",
		},
	)

	SearchFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "showstore_search_failures_total",
			Help: "Full-text searches that failed in the engine and returned no rows",
		},
	)

	NotificationsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "showstore_notifications_total",
			Help: "Change notifications published",
		},
	)
)

// RecordOperation records one store operation.
func RecordOperation(operation, route string, duration time.Duration, err error) {
	OperationDuration.WithLabelValues(operation, route).Observe(duration.Seconds())
	if err != nil {
		OperationErrors.WithLabelValues(operation, route, ErrorType(err)).Inc()
	}
}

// RecordBatch records the outcome of a batch of n operations.
func RecordBatch(n int, err error) {
	outcome := "committed"
	if err != nil {
		outcome = "rolled_back"
	}
	BatchesTotal.WithLabelValues(outcome).Inc()
	BatchSize.Observe(float64(n))
}

// RecordMigration records one applied upgrade step.
func RecordMigration(version int) {
	MigrationsApplied.WithLabelValues(strconv.Itoa(version)).Inc()
}

// ErrorType maps an error to a bounded label value.
func ErrorType(err error) string {
	switch {
	case errors.Is(err, types.ErrUnknownPath):
		return "unknown_path"
	case errors.Is(err, types.ErrNotFound):
		return "not_found"
	case errors.Is(err, types.ErrConflict):
		return "conflict"
	case errors.Is(err, types.ErrInvalidData):
		return "invalid_data"
	case errors.Is(err, types.ErrAmbiguousColumn),
		errors.Is(err, types.ErrUnknownColumn),
		errors.Is(err, types.ErrUnsafeFragment):
		return "selection"
	case errors.Is(err, types.ErrUnsupportedOperation):
		return "unsupported"
	case errors.Is(err, types.ErrDetached):
		return "detached"
	case errors.Is(err, types.ErrEngine):
		return "engine"
	}
	return "other"
}
