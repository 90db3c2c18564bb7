package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	importRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_import_records_total",
			Help: "Snapshot import records processed, by entity and outcome",
		},
		[]string{"entity", "outcome"},
	)

	importDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "snapshot_import_duration_seconds",
			Help:    "Duration of snapshot imports",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	exportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "snapshot_export_duration_seconds",
			Help:    "Duration of snapshot exports",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	resetOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_reset_operations_total",
			Help: "Event reset operations, by status",
		},
		[]string{"status"},
	)

	geocodeLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocode_lookups_total",
			Help: "Geocoder lookups during import, by outcome",
		},
		[]string{"outcome"},
	)
)

// RecordImportRecord counts one processed import record.
// Outcome is "imported" or "skipped".
func RecordImportRecord(entity, outcome string) {
	importRecords.WithLabelValues(entity, outcome).Inc()
}

// ObserveImportDuration records the wall time of one import run.
func ObserveImportDuration(d time.Duration) {
	importDuration.Observe(d.Seconds())
}

// ObserveExportDuration records the wall time of one export run.
func ObserveExportDuration(d time.Duration) {
	exportDuration.Observe(d.Seconds())
}

// RecordReset counts one reset operation. Status is "ok" or "error".
func RecordReset(status string) {
	resetOperations.WithLabelValues(status).Inc()
}

// RecordGeocode counts one geocoder lookup.
// Outcome is "hit", "miss" or "error".
func RecordGeocode(outcome string) {
	geocodeLookups.WithLabelValues(outcome).Inc()
}
