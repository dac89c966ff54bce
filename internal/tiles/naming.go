// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package tiles

import (
	"fmt"
	"strconv"
	"strings"
)

// Naming is the <image_id>_<index>.<ext> convention for tile files.
// Indexes run over [Start, Start+Count).
type Naming struct {
	Count     int
	Start     int
	Extension string
}

// Validate checks that the convention can name at least one tile.
func (n Naming) Validate() error {
	if n.Count < 1 {
		return fmt.Errorf("tile count must be at least 1, got %d", n.Count)
	}
	if n.Start < 0 {
		return fmt.Errorf("tile index start must be non-negative, got %d", n.Start)
	}
	if n.Extension == "" || strings.ContainsAny(n.Extension, "./\\") {
		return fmt.Errorf("invalid tile extension %q", n.Extension)
	}
	return nil
}

// FileName returns the file name of tile idx of a sample.
func (n Naming) FileName(imageID string, idx int) string {
	return imageID + "_" + strconv.Itoa(idx) + "." + n.Extension
}

// FileNames returns every expected tile file name of a sample, in index order.
func (n Naming) FileNames(imageID string) []string {
	names := make([]string, n.Count)
	for i := range names {
		names[i] = n.FileName(imageID, n.Start+i)
	}
	return names
}

// Parse splits a tile file name into identifier and index. The index is the
// suffix after the last underscore, so identifiers may contain underscores.
// The extension must match exactly, so every parsed name is one FileName
// would produce.
func (n Naming) Parse(name string) (imageID string, idx int, ok bool) {
	dot := strings.LastIndexByte(name, '.')
	if dot < 0 || name[dot+1:] != n.Extension {
		return "", 0, false
	}
	stem := name[:dot]

	us := strings.LastIndexByte(stem, '_')
	if us <= 0 || us == len(stem)-1 {
		return "", 0, false
	}
	suffix := stem[us+1:]
	idx, err := strconv.Atoi(suffix)
	// Only canonical forms ("7", not "07" or "+7") match FileName output.
	if err != nil || idx < 0 || strconv.Itoa(idx) != suffix {
		return "", 0, false
	}
	return stem[:us], idx, true
}

// InRange reports whether idx is one of the expected tile indexes.
func (n Naming) InRange(idx int) bool {
	return idx >= n.Start && idx < n.Start+n.Count
}
