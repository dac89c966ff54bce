// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

// Package tensor provides the dense float32 arrays that batches are
// assembled into, plus one-hot label encoding.
package tensor
