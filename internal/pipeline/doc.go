// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

// Package pipeline wires the preparation stages together.
//
// Prepare loads the metadata table, indexes the tile directory, filters
// rows without a complete tile set, optionally checks label consistency,
// splits by provider, summarizes the partitions and persists a manifest.
// Every stage logs its elapsed time and output size and records a stage
// duration metric.
//
// Sequences turns a prepared result into loader sequences and Iterate walks
// them for a number of epochs.
package pipeline
