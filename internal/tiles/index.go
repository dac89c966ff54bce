// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package tiles

import (
	"fmt"
	"io/fs"
	"sort"
)

// Index records which tile files exist per sample identifier. It is built
// with a single directory listing instead of one glob per metadata row.
type Index struct {
	naming  Naming
	tiles   map[string]map[int]struct{}
	files   int
	ignored int
}

// BuildIndex lists the root of fsys and indexes every file that matches the
// naming convention. Subdirectories and non-matching names are skipped.
func BuildIndex(fsys fs.FS, naming Naming) (*Index, error) {
	if err := naming.Validate(); err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("list tile directory: %w", err)
	}

	ix := &Index{
		naming: naming,
		tiles:  make(map[string]map[int]struct{}),
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id, idx, ok := naming.Parse(entry.Name())
		if !ok {
			ix.ignored++
			continue
		}
		set, exists := ix.tiles[id]
		if !exists {
			set = make(map[int]struct{}, naming.Count)
			ix.tiles[id] = set
		}
		set[idx] = struct{}{}
		ix.files++
	}

	return ix, nil
}

// Naming returns the convention the index was built with.
func (ix *Index) Naming() Naming {
	return ix.naming
}

// Has reports whether tile idx of a sample exists.
func (ix *Index) Has(imageID string, idx int) bool {
	_, ok := ix.tiles[imageID][idx]
	return ok
}

// Missing returns the expected tile file names of a sample that do not exist.
func (ix *Index) Missing(imageID string) []string {
	var missing []string
	for i := 0; i < ix.naming.Count; i++ {
		idx := ix.naming.Start + i
		if !ix.Has(imageID, idx) {
			missing = append(missing, ix.naming.FileName(imageID, idx))
		}
	}
	return missing
}

// Complete reports whether every expected tile of a sample exists.
func (ix *Index) Complete(imageID string) bool {
	set := ix.tiles[imageID]
	if len(set) < ix.naming.Count {
		return false
	}
	for i := 0; i < ix.naming.Count; i++ {
		if _, ok := set[ix.naming.Start+i]; !ok {
			return false
		}
	}
	return true
}

// IDs returns every identifier with at least one tile, sorted.
func (ix *Index) IDs() []string {
	ids := make([]string, 0, len(ix.tiles))
	for id := range ix.tiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Files returns the number of indexed tile files.
func (ix *Index) Files() int {
	return ix.files
}

// Ignored returns the number of directory entries that did not match the convention.
func (ix *Index) Ignored() int {
	return ix.ignored
}
