// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package split

import (
	"errors"
	"fmt"
)

// ErrDegenerateSplit is returned when a provider has too few rows to be
// represented in both partitions.
var ErrDegenerateSplit = errors.New("degenerate split")

// SplitDegeneracyError names the provider that cannot be split.
type SplitDegeneracyError struct {
	Provider string
	Rows     int
}

func (e *SplitDegeneracyError) Error() string {
	return fmt.Sprintf("%s: provider %q has %d row(s), need at least 2", ErrDegenerateSplit, e.Provider, e.Rows)
}

// Unwrap returns ErrDegenerateSplit.
func (e *SplitDegeneracyError) Unwrap() error {
	return ErrDegenerateSplit
}
