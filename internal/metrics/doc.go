// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

/*
Package metrics provides Prometheus instrumentation for the preparation
pipeline and the tile loader.

Metrics are registered on the default registry through promauto and exposed
by the serve command at /metrics:

	curl http://127.0.0.1:9464/metrics

# Available Metrics

Pipeline:
  - gradeprep_stage_duration_seconds{stage}: load, index, filter, split, summarize, persist
  - gradeprep_metadata_rows_total{outcome}: retained or dropped by the tile filter
  - gradeprep_orphan_identifiers_total: tile sets with no metadata row
  - gradeprep_inconsistent_labels_total: gleason/isup disagreements
  - gradeprep_split_rows{split,provider}: partition sizes after the last split

Loader:
  - gradeprep_batches_loaded_total{split}
  - gradeprep_batch_load_duration_seconds{split}
  - gradeprep_tiles_decoded_total{split}
  - gradeprep_batch_errors_total{split,kind}
  - gradeprep_epochs_completed_total{split}

Manifest store:
  - gradeprep_manifest_operations_total{operation,result}: save, load, list, delete, gc

Inspection server:
  - gradeprep_http_requests_total{method,route,status}
  - gradeprep_http_request_duration_seconds{route}
*/
package metrics
