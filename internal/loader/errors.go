// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/gradeprep/internal/dataset"
	"github.com/tomtom215/gradeprep/internal/metrics"
)

var (
	// ErrIndexOutOfRange is returned for a batch index outside [0, Len()).
	ErrIndexOutOfRange = errors.New("batch index out of range")

	// ErrMissingAsset is returned when a tile file cannot be opened.
	ErrMissingAsset = errors.New("missing asset")

	// ErrCorruptAsset is returned when a tile file cannot be decoded.
	ErrCorruptAsset = errors.New("corrupt asset")
)

// MissingAssetError names the sample and tile file that could not be read.
type MissingAssetError struct {
	ImageID string
	File    string
	Err     error
}

func (e *MissingAssetError) Error() string {
	return fmt.Sprintf("%s: sample %q tile %q: %v", ErrMissingAsset, e.ImageID, e.File, e.Err)
}

// Unwrap returns ErrMissingAsset and the underlying filesystem error.
func (e *MissingAssetError) Unwrap() []error {
	return []error{ErrMissingAsset, e.Err}
}

// errorKind maps a batch error to its metrics label.
func errorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingAsset):
		return metrics.ErrorKindMissingAsset
	case errors.Is(err, ErrCorruptAsset):
		return metrics.ErrorKindCorruptAsset
	case errors.Is(err, dataset.ErrInconsistentMetadata):
		return metrics.ErrorKindMetadata
	case errors.Is(err, ErrIndexOutOfRange):
		return metrics.ErrorKindOutOfRange
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.ErrorKindCanceled
	default:
		return metrics.ErrorKindOther
	}
}
