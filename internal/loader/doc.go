// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

// Package loader turns a metadata table and a tile directory into lazily
// loaded batches of normalized image tensors and one-hot labels.
//
// Sequence is the contract a training loop consumes: Len full batches per
// epoch, random access by index, and an end-of-epoch hook. TileSequence is
// the filesystem-backed implementation. Supported tile formats are PNG,
// JPEG and GIF from the standard library and TIFF, WebP and BMP from
// golang.org/x/image.
package loader
