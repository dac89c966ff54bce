// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

// Package tiles matches metadata rows against tile files on disk.
//
// Each sample is stored as Count files named <image_id>_<index>.<ext>.
// BuildIndex lists the tile directory once; Filter then keeps exactly the
// rows whose full tile set exists and reports the rest, together with
// orphan tile sets that have no metadata row.
package tiles
