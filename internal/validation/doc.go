// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide (it caches struct
// metadata). Field names in errors are taken from koanf tags so messages
// match the keys users write in config.yaml:
//
//	split.validation_fraction must be less than 1
//
// Custom tags:
//   - perfectsquare: tile counts arranged on a square grid
//   - fileext: tile file extensions without the leading dot
package validation
