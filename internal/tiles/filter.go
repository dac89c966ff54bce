// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package tiles

import (
	"fmt"
	"strings"

	"github.com/tomtom215/gradeprep/internal/dataset"
	"github.com/tomtom215/gradeprep/internal/logging"
)

// Policy decides how integrity issues are handled.
type Policy string

const (
	// PolicyReject fails the run when any issue is found.
	PolicyReject Policy = "reject"
	// PolicyDrop removes affected rows and reports them.
	PolicyDrop Policy = "drop"
)

// ParsePolicy converts a configuration string to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyReject, PolicyDrop:
		return Policy(s), nil
	default:
		return "", fmt.Errorf("unknown integrity policy %q", s)
	}
}

// Dropped is a metadata row removed because tiles are missing.
type Dropped struct {
	ImageID  string   `json:"image_id"`
	Provider string   `json:"data_provider"`
	Missing  []string `json:"missing"`
}

// FilterResult is the outcome of Filter. Retained and Dropped always
// partition the input: Retained.Len() + len(Dropped) == Total.
type FilterResult struct {
	Retained dataset.Table
	Dropped  []Dropped

	// Orphans are identifiers that have tile files but no metadata row.
	Orphans []string

	Total int
}

// Issues converts dropped rows and orphans to integrity issues.
func (r *FilterResult) Issues() []dataset.Issue {
	issues := make([]dataset.Issue, 0, len(r.Dropped)+len(r.Orphans))
	for _, d := range r.Dropped {
		issues = append(issues, dataset.Issue{
			ImageID: d.ImageID,
			Kind:    dataset.IssueMissingTiles,
			Detail:  fmt.Sprintf("%d missing: %s", len(d.Missing), strings.Join(d.Missing, ", ")),
		})
	}
	for _, id := range r.Orphans {
		issues = append(issues, dataset.Issue{ImageID: id, Kind: dataset.IssueOrphanTiles})
	}
	return issues
}

// DroppedIDs returns the identifiers of dropped rows.
func (r *FilterResult) DroppedIDs() []string {
	ids := make([]string, len(r.Dropped))
	for i, d := range r.Dropped {
		ids[i] = d.ImageID
	}
	return ids
}

// Filter returns a new table holding only the rows whose full tile set is
// present in ix. The input table is not modified.
//
// Under PolicyReject any dropped row or orphan tile set fails the call with
// a *dataset.IntegrityError; the result is still returned for reporting.
func Filter(table dataset.Table, ix *Index, policy Policy) (*FilterResult, error) {
	result := &FilterResult{Total: table.Len()}

	known := make(map[string]struct{}, table.Len())
	keep := make([]int, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		row := table.Row(i)
		known[row.ImageID] = struct{}{}
		if ix.Complete(row.ImageID) {
			keep = append(keep, i)
			continue
		}
		result.Dropped = append(result.Dropped, Dropped{
			ImageID:  row.ImageID,
			Provider: row.Provider,
			Missing:  ix.Missing(row.ImageID),
		})
	}
	result.Retained = table.Select(keep)

	for _, id := range ix.IDs() {
		if _, ok := known[id]; !ok {
			result.Orphans = append(result.Orphans, id)
		}
	}

	if policy == PolicyReject && (len(result.Dropped) > 0 || len(result.Orphans) > 0) {
		return result, &dataset.IntegrityError{Issues: result.Issues()}
	}
	return result, nil
}

// Log reports the filter outcome. Counts are logged at warn level when any
// row was dropped or any orphan found; identifiers are logged at debug level.
func (r *FilterResult) Log() {
	event := logging.Info()
	if len(r.Dropped) > 0 || len(r.Orphans) > 0 {
		event = logging.Warn()
	}
	event.
		Int("total", r.Total).
		Int("retained", r.Retained.Len()).
		Int("dropped", len(r.Dropped)).
		Int("orphans", len(r.Orphans)).
		Msg("Tile filter applied")

	for _, d := range r.Dropped {
		logging.Debug().
			Str("image_id", d.ImageID).
			Str("provider", d.Provider).
			Int("missing_tiles", len(d.Missing)).
			Msg("Dropped row with missing tiles")
	}
	for _, id := range r.Orphans {
		logging.Debug().Str("image_id", id).Msg("Tiles without metadata row")
	}
}
