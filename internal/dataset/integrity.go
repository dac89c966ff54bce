// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDataIntegrity is returned when metadata and on-disk assets disagree and
// the integrity policy rejects the run.
var ErrDataIntegrity = errors.New("data integrity violation")

// Issue kinds.
const (
	IssueMissingTiles  = "missing_tiles"
	IssueOrphanTiles   = "orphan_tiles"
	IssueLabelMismatch = "label_mismatch"
)

// maxListedIssues bounds how many identifiers are spelled out in Error().
const maxListedIssues = 20

// Issue is one integrity finding for a single identifier.
type Issue struct {
	ImageID string `json:"image_id"`
	Kind    string `json:"kind"`
	Detail  string `json:"detail,omitempty"`
}

// IntegrityError carries every offending identifier of a rejected run.
type IntegrityError struct {
	Issues []Issue
}

// Error summarizes the issues by kind and lists the first identifiers.
func (e *IntegrityError) Error() string {
	counts := make(map[string]int)
	for _, is := range e.Issues {
		counts[is.Kind]++
	}

	var b strings.Builder
	b.WriteString(ErrDataIntegrity.Error())
	b.WriteString(":")
	for _, kind := range []string{IssueMissingTiles, IssueOrphanTiles, IssueLabelMismatch} {
		if counts[kind] > 0 {
			fmt.Fprintf(&b, " %s=%d", kind, counts[kind])
		}
	}

	ids := make([]string, 0, maxListedIssues)
	for i, is := range e.Issues {
		if i == maxListedIssues {
			ids = append(ids, fmt.Sprintf("and %d more", len(e.Issues)-maxListedIssues))
			break
		}
		ids = append(ids, is.ImageID)
	}
	if len(ids) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(ids, ", "))
		b.WriteString(")")
	}
	return b.String()
}

// Unwrap returns ErrDataIntegrity.
func (e *IntegrityError) Unwrap() error {
	return ErrDataIntegrity
}

// IDs returns the offending identifiers of one kind.
func (e *IntegrityError) IDs(kind string) []string {
	var out []string
	for _, is := range e.Issues {
		if is.Kind == kind {
			out = append(out, is.ImageID)
		}
	}
	return out
}
