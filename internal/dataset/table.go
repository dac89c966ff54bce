// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package dataset

import (
	"sort"
)

// Row is one metadata record: a biopsy sample, the provider that supplied
// it and its two label columns.
type Row struct {
	ImageID      string `csv:"image_id" json:"image_id"`
	Provider     string `csv:"data_provider" json:"data_provider"`
	ISUPGrade    int    `csv:"isup_grade" json:"isup_grade"`
	GleasonScore string `csv:"gleason_score" json:"gleason_score"`
}

// Table is an ordered set of rows. Tables are never mutated after
// construction; every narrowing operation returns a new Table.
type Table struct {
	rows  []Row
	index map[string]int
}

// NewTable builds a table from rows. The slice is copied. When an image_id
// repeats, Lookup resolves to its first occurrence.
func NewTable(rows []Row) Table {
	copied := make([]Row, len(rows))
	copy(copied, rows)

	index := make(map[string]int, len(copied))
	for i, r := range copied {
		if _, seen := index[r.ImageID]; !seen {
			index[r.ImageID] = i
		}
	}
	return Table{rows: copied, index: index}
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.rows)
}

// Row returns the i-th row.
func (t Table) Row(i int) Row {
	return t.rows[i]
}

// Rows returns a copy of the rows.
func (t Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// IDs returns the image identifiers in table order.
func (t Table) IDs() []string {
	ids := make([]string, len(t.rows))
	for i, r := range t.rows {
		ids[i] = r.ImageID
	}
	return ids
}

// Lookup returns the row for an image identifier.
func (t Table) Lookup(imageID string) (Row, bool) {
	i, ok := t.index[imageID]
	if !ok {
		return Row{}, false
	}
	return t.rows[i], true
}

// Where returns the rows for which keep returns true.
func (t Table) Where(keep func(Row) bool) Table {
	out := make([]Row, 0, len(t.rows))
	for _, r := range t.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return NewTable(out)
}

// Select returns the rows at the given positions, in the given order.
func (t Table) Select(positions []int) Table {
	out := make([]Row, len(positions))
	for i, p := range positions {
		out[i] = t.rows[p]
	}
	return NewTable(out)
}

// Providers returns the distinct provider labels in sorted order.
func (t Table) Providers() []string {
	seen := make(map[string]struct{})
	for _, r := range t.rows {
		seen[r.Provider] = struct{}{}
	}
	providers := make([]string, 0, len(seen))
	for p := range seen {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	return providers
}

// ByProvider partitions the table by provider, preserving row order.
func (t Table) ByProvider() map[string]Table {
	groups := make(map[string][]Row)
	for _, r := range t.rows {
		groups[r.Provider] = append(groups[r.Provider], r)
	}
	out := make(map[string]Table, len(groups))
	for p, rows := range groups {
		out[p] = NewTable(rows)
	}
	return out
}

// ProviderCounts returns the row count per provider.
func (t Table) ProviderCounts() map[string]int {
	counts := make(map[string]int)
	for _, r := range t.rows {
		counts[r.Provider]++
	}
	return counts
}

// Concat appends tables in order.
func Concat(tables ...Table) Table {
	n := 0
	for _, t := range tables {
		n += t.Len()
	}
	rows := make([]Row, 0, n)
	for _, t := range tables {
		rows = append(rows, t.rows...)
	}
	return NewTable(rows)
}
