// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package tensor

import "fmt"

// OneHot returns a vector of length classes with a 1 at position label.
func OneHot(label, classes int) ([]float32, error) {
	if classes <= 0 {
		return nil, fmt.Errorf("%w: %d classes", ErrInvalidShape, classes)
	}
	if label < 0 || label >= classes {
		return nil, fmt.Errorf("%w: label %d out of [0,%d)", ErrInvalidIndex, label, classes)
	}
	v := make([]float32, classes)
	v[label] = 1
	return v, nil
}

// Argmax returns the position of the largest value, the first one on ties,
// or -1 for an empty slice.
func Argmax(values []float32) int {
	if len(values) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}
