// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package dataset

import (
	"errors"
	"fmt"
)

// ErrEmptyTable is returned when a metadata table has no rows.
var ErrEmptyTable = errors.New("metadata table is empty")

// ErrInconsistentMetadata is returned when a row is malformed, duplicated or
// carries a label that cannot be resolved.
var ErrInconsistentMetadata = errors.New("inconsistent metadata")

// RowError identifies one offending metadata row.
type RowError struct {
	// Line is the 1-based line in the source file (header is line 1), or 0
	// when the row did not come from a file.
	Line    int
	ImageID string
	Reason  string
}

// Error implements error.
func (e *RowError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d (image_id %q): %s", ErrInconsistentMetadata, e.Line, e.ImageID, e.Reason)
	}
	return fmt.Sprintf("%s: image_id %q: %s", ErrInconsistentMetadata, e.ImageID, e.Reason)
}

// Unwrap returns ErrInconsistentMetadata.
func (e *RowError) Unwrap() error {
	return ErrInconsistentMetadata
}
