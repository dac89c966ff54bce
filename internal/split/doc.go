// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

// Package split performs the provider-stratified train/validation split.
//
// Each provider contributes round(n*fraction) rows to validation, clamped
// so that every provider appears in both partitions. Splitting runs after
// tile filtering, on the retained rows only.
package split
