// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Batch error kinds used as the "kind" label of BatchErrors.
const (
	ErrorKindMissingAsset = "missing_asset"
	ErrorKindCorruptAsset = "corrupt_asset"
	ErrorKindMetadata     = "inconsistent_metadata"
	ErrorKindOutOfRange   = "out_of_range"
	ErrorKindCanceled     = "canceled"
	ErrorKindOther        = "other"
)

var (
	// Pipeline Metrics
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gradeprep_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
		},
		[]string{"stage"}, // "load", "index", "filter", "split", "summarize", "persist"
	)

	MetadataRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gradeprep_metadata_rows_total",
			Help: "Metadata rows seen by the filter, by outcome",
		},
		[]string{"outcome"}, // "retained", "dropped"
	)

	OrphanTiles = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gradeprep_orphan_identifiers_total",
			Help: "Identifiers with tile files but no metadata row",
		},
	)

	InconsistentLabels = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gradeprep_inconsistent_labels_total",
			Help: "Rows whose gleason_score disagrees with isup_grade",
		},
	)

	SplitRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gradeprep_split_rows",
			Help: "Rows per partition and provider after the last split",
		},
		[]string{"split", "provider"},
	)

	// Loader Metrics
	BatchesLoaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gradeprep_batches_loaded_total",
			Help: "Batches assembled by the tile loader",
		},
		[]string{"split"},
	)

	BatchLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gradeprep_batch_load_duration_seconds",
			Help:    "Time to read, decode and assemble one batch",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"split"},
	)

	TilesDecoded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gradeprep_tiles_decoded_total",
			Help: "Tile images decoded by the loader",
		},
		[]string{"split"},
	)

	BatchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gradeprep_batch_errors_total",
			Help: "Batch loads that failed, by error kind",
		},
		[]string{"split", "kind"},
	)

	EpochsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gradeprep_epochs_completed_total",
			Help: "Full passes over a sequence",
		},
		[]string{"split"},
	)

	// Manifest Metrics
	ManifestOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gradeprep_manifest_operations_total",
			Help: "Manifest store operations by type and result",
		},
		[]string{"operation", "result"}, // result: "success", "error", "not_found"
	)

	// HTTP Metrics (inspection server)
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gradeprep_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gradeprep_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

// ObserveStage records the duration of a pipeline stage that started at start.
func ObserveStage(stage string, start time.Time) time.Duration {
	elapsed := time.Since(start)
	StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
	return elapsed
}

// RecordFilter records filter outcome counts.
func RecordFilter(retained, dropped, orphans int) {
	MetadataRows.WithLabelValues("retained").Add(float64(retained))
	MetadataRows.WithLabelValues("dropped").Add(float64(dropped))
	OrphanTiles.Add(float64(orphans))
}

// RecordSplit sets the per-provider partition gauges.
func RecordSplit(split string, perProvider map[string]int) {
	for provider, n := range perProvider {
		SplitRows.WithLabelValues(split, provider).Set(float64(n))
	}
}

// RecordBatch records one batch load attempt. kind is empty on success.
func RecordBatch(split string, tiles int, elapsed time.Duration, kind string) {
	if kind != "" {
		BatchErrors.WithLabelValues(split, kind).Inc()
		return
	}
	BatchesLoaded.WithLabelValues(split).Inc()
	BatchLoadDuration.WithLabelValues(split).Observe(elapsed.Seconds())
	TilesDecoded.WithLabelValues(split).Add(float64(tiles))
}

// RecordManifestOp records a manifest store operation.
func RecordManifestOp(operation, result string) {
	ManifestOperations.WithLabelValues(operation, result).Inc()
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, route string, status int, elapsed time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
