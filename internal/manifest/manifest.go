// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package manifest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/gradeprep/internal/split"
)

// ErrNotFound is returned when no manifest matches the request.
var ErrNotFound = errors.New("manifest not found")

// Manifest records the inputs and outcome of one preparation run so a
// split can be inspected or reproduced later.
type Manifest struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`

	MetadataPath       string  `json:"metadata_path"`
	ImageDir           string  `json:"image_dir"`
	TileCount          int     `json:"tile_count"`
	IntegrityPolicy    string  `json:"integrity_policy"`
	Seed               uint64  `json:"seed"`
	ValidationFraction float64 `json:"validation_fraction"`
	Shuffle            bool    `json:"shuffle"`

	Train      []string        `json:"train"`
	Validation []string        `json:"validation"`
	Dropped    []string        `json:"dropped,omitempty"`
	Orphans    []string        `json:"orphans,omitempty"`
	Strata     []split.Stratum `json:"strata"`
}

// Summary is the listing view of a manifest without identifier lists.
type Summary struct {
	RunID          string    `json:"run_id"`
	CreatedAt      time.Time `json:"created_at"`
	Seed           uint64    `json:"seed"`
	TrainRows      int       `json:"train_rows"`
	ValidationRows int       `json:"validation_rows"`
	DroppedRows    int       `json:"dropped_rows"`
	OrphanTileSets int       `json:"orphan_tile_sets"`
}

// Summary returns the listing view of m.
func (m *Manifest) Summary() Summary {
	return Summary{
		RunID:          m.RunID,
		CreatedAt:      m.CreatedAt,
		Seed:           m.Seed,
		TrainRows:      len(m.Train),
		ValidationRows: len(m.Validation),
		DroppedRows:    len(m.Dropped),
		OrphanTileSets: len(m.Orphans),
	}
}

// NewRunID returns a time-ordered run identifier.
func NewRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Store persists manifests.
type Store interface {
	Save(ctx context.Context, m *Manifest) error
	Load(ctx context.Context, runID string) (*Manifest, error)
	// Latest returns the most recently created manifest.
	Latest(ctx context.Context) (*Manifest, error)
	// List returns every manifest, newest first.
	List(ctx context.Context) ([]*Manifest, error)
	Delete(ctx context.Context, runID string) error
	Close() error
}

func validate(m *Manifest) error {
	if m == nil {
		return fmt.Errorf("nil manifest")
	}
	if _, err := uuid.Parse(m.RunID); err != nil {
		return fmt.Errorf("invalid run id %q: %w", m.RunID, err)
	}
	return nil
}

// sortNewestFirst orders by creation time, then run id, descending.
func sortNewestFirst(ms []*Manifest) {
	sort.Slice(ms, func(i, j int) bool {
		if !ms[i].CreatedAt.Equal(ms[j].CreatedAt) {
			return ms[i].CreatedAt.After(ms[j].CreatedAt)
		}
		return ms[i].RunID > ms[j].RunID
	})
}

func clone(m *Manifest) *Manifest {
	c := *m
	c.Train = append([]string(nil), m.Train...)
	c.Validation = append([]string(nil), m.Validation...)
	c.Dropped = append([]string(nil), m.Dropped...)
	c.Orphans = append([]string(nil), m.Orphans...)
	c.Strata = append([]split.Stratum(nil), m.Strata...)
	return &c
}
