// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

// Package catalog computes grade distributions of the train and validation
// partitions with an in-memory DuckDB database.
package catalog
