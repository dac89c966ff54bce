// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/tomtom215/gradeprep/internal/catalog"
	"github.com/tomtom215/gradeprep/internal/config"
	"github.com/tomtom215/gradeprep/internal/dataset"
	"github.com/tomtom215/gradeprep/internal/logging"
	"github.com/tomtom215/gradeprep/internal/manifest"
	"github.com/tomtom215/gradeprep/internal/metrics"
	"github.com/tomtom215/gradeprep/internal/split"
	"github.com/tomtom215/gradeprep/internal/tiles"
)

// Stage names used in logs, metrics and RunStats.
const (
	StageLoad      = "load"
	StageIndex     = "index"
	StageFilter    = "filter"
	StageLabels    = "labels"
	StageSplit     = "split"
	StageSummarize = "summarize"
	StagePersist   = "persist"
)

// Partition names.
const (
	PartitionTrain      = "train"
	PartitionValidation = "validation"
)

// Pipeline prepares a dataset for training from a validated configuration.
type Pipeline struct {
	cfg    *config.Config
	images fs.FS
	masks  fs.FS
	store  manifest.Store
	now    func() time.Time
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithImageFS reads tiles from fsys instead of the configured image directory.
func WithImageFS(fsys fs.FS) Option {
	return func(p *Pipeline) { p.images = fsys }
}

// WithStore persists a manifest of every prepared run to store.
func WithStore(store manifest.Store) Option {
	return func(p *Pipeline) { p.store = store }
}

// WithClock replaces time.Now for manifest timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a pipeline.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", config.ErrConfiguration)
	}
	if len(cfg.Dataset.Delimiter) != 1 {
		return nil, fmt.Errorf("%w: delimiter must be a single character", config.ErrConfiguration)
	}

	p := &Pipeline{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	if p.images == nil {
		p.images = os.DirFS(cfg.Dataset.ImageDir)
	}
	if p.masks == nil && cfg.Dataset.MaskDir != "" {
		p.masks = os.DirFS(cfg.Dataset.MaskDir)
	}
	return p, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() *config.Config {
	return p.cfg
}

// Naming returns the tile naming convention from the configuration.
func (p *Pipeline) Naming() tiles.Naming {
	return tiles.Naming{
		Count:     p.cfg.Dataset.TileCount,
		Start:     p.cfg.Dataset.TileIndexStart,
		Extension: p.cfg.Dataset.TileExtension,
	}
}

// Result is the outcome of Prepare.
type Result struct {
	RunID      string
	Metadata   dataset.Table
	Filter     *tiles.FilterResult
	Mismatches []dataset.Mismatch
	Split      *split.Result
	Summary    *catalog.Summary
	// Manifest is nil when no store is configured.
	Manifest *manifest.Manifest
	Stats    RunStats
}

// Train returns the training partition.
func (r *Result) Train() dataset.Table {
	return r.Split.Train
}

// Validation returns the validation partition.
func (r *Result) Validation() dataset.Table {
	return r.Split.Validation
}

// Prepare runs load, index, filter, the optional label check, split,
// summarize and persist, in that order. Filtering happens before splitting
// so every provider's retained rows are divided.
func (p *Pipeline) Prepare(ctx context.Context) (*Result, error) {
	res := &Result{RunID: manifest.NewRunID()}
	res.Stats.Start = p.now()
	log := logging.With().Str("run_id", res.RunID).Logger()

	// load
	start := time.Now()
	table, err := dataset.Load(p.cfg.Dataset.MetadataPath, rune(p.cfg.Dataset.Delimiter[0]))
	if err != nil {
		if errors.Is(err, dataset.ErrEmptyTable) || errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", config.ErrConfiguration, err)
		}
		return nil, fmt.Errorf("load metadata: %w", err)
	}
	res.Metadata = table
	res.Stats.MetadataRows = table.Len()
	p.finish(&res.Stats, StageLoad, start, table.Len())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// index
	start = time.Now()
	naming := p.Naming()
	ix, err := tiles.BuildIndex(p.images, naming)
	if err != nil {
		return nil, fmt.Errorf("%w: tile index: %w", config.ErrConfiguration, err)
	}
	p.finish(&res.Stats, StageIndex, start, ix.Files())

	// filter
	start = time.Now()
	policy, err := tiles.ParsePolicy(p.cfg.Dataset.IntegrityPolicy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrConfiguration, err)
	}
	filtered, err := tiles.Filter(table, ix, policy)
	filtered.Log()
	metrics.RecordFilter(filtered.Retained.Len(), len(filtered.Dropped), len(filtered.Orphans))
	if err != nil {
		return nil, err
	}
	res.Filter = filtered
	res.Stats.Retained = filtered.Retained.Len()
	res.Stats.Dropped = len(filtered.Dropped)
	res.Stats.Orphans = len(filtered.Orphans)
	p.finish(&res.Stats, StageFilter, start, filtered.Retained.Len())

	retained := filtered.Retained
	if p.cfg.Dataset.CheckGleasonConsistency {
		start = time.Now()
		retained, err = p.checkLabels(retained, policy, res)
		if err != nil {
			return nil, err
		}
		p.finish(&res.Stats, StageLabels, start, retained.Len())
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// split
	start = time.Now()
	parts, err := split.Split(retained, split.Options{
		ValidationFraction: p.cfg.Split.ValidationFraction,
		Seed:               p.cfg.Split.Seed,
		Shuffle:            p.cfg.Split.Shuffle,
	})
	if err != nil {
		if errors.Is(err, dataset.ErrEmptyTable) {
			return nil, fmt.Errorf("%w: no rows left after filtering: %w", config.ErrConfiguration, err)
		}
		return nil, fmt.Errorf("split: %w", err)
	}
	res.Split = parts
	res.Stats.TrainRows = parts.Train.Len()
	res.Stats.ValidationRows = parts.Validation.Len()
	metrics.RecordSplit(PartitionTrain, parts.TrainCounts())
	metrics.RecordSplit(PartitionValidation, parts.ValidationCounts())
	for _, s := range parts.Strata {
		log.Info().
			Str("provider", s.Provider).
			Int("train", s.Train).
			Int("validation", s.Validation).
			Msg("Provider split")
	}
	p.finish(&res.Stats, StageSplit, start, parts.Train.Len()+parts.Validation.Len())

	// summarize
	start = time.Now()
	summary, err := catalog.Summarize(ctx, map[string]dataset.Table{
		PartitionTrain:      parts.Train,
		PartitionValidation: parts.Validation,
	})
	if err != nil {
		return nil, fmt.Errorf("summarize partitions: %w", err)
	}
	res.Summary = summary
	summary.Log()
	p.finish(&res.Stats, StageSummarize, start, len(summary.Grades))

	// persist
	if p.store != nil {
		start = time.Now()
		m := p.manifest(res)
		if err := p.store.Save(ctx, m); err != nil {
			return nil, fmt.Errorf("save manifest: %w", err)
		}
		res.Manifest = m
		p.finish(&res.Stats, StagePersist, start, 1)
	}

	res.Stats.End = p.now()
	log.Info().
		Int("metadata_rows", res.Stats.MetadataRows).
		Int("retained", res.Stats.Retained).
		Int("dropped", res.Stats.Dropped).
		Int("orphans", res.Stats.Orphans).
		Int("train", res.Stats.TrainRows).
		Int("validation", res.Stats.ValidationRows).
		Dur("elapsed", res.Stats.Duration()).
		Msg("Dataset prepared")
	return res, nil
}

// checkLabels applies the integrity policy to rows whose gleason_score and
// isup_grade disagree.
func (p *Pipeline) checkLabels(t dataset.Table, policy tiles.Policy, res *Result) (dataset.Table, error) {
	mismatches := dataset.CheckGleasonConsistency(t)
	res.Mismatches = mismatches
	res.Stats.LabelMismatches = len(mismatches)
	if len(mismatches) == 0 {
		return t, nil
	}
	metrics.InconsistentLabels.Add(float64(len(mismatches)))

	bad := make(map[string]struct{}, len(mismatches))
	issues := make([]dataset.Issue, 0, len(mismatches))
	for _, m := range mismatches {
		bad[m.ImageID] = struct{}{}
		issues = append(issues, dataset.Issue{
			ImageID: m.ImageID,
			Kind:    dataset.IssueLabelMismatch,
			Detail:  m.Err().Error(),
		})
		logging.Debug().
			Str("image_id", m.ImageID).
			Str("gleason_score", m.GleasonScore).
			Int("isup_grade", m.ISUPGrade).
			Int("expected", m.Expected).
			Msg("Label mismatch")
	}

	if policy == tiles.PolicyReject {
		return dataset.Table{}, &dataset.IntegrityError{Issues: issues}
	}

	logging.Warn().Int("dropped", len(mismatches)).Msg("Dropped rows with inconsistent labels")
	return t.Where(func(r dataset.Row) bool {
		_, drop := bad[r.ImageID]
		return !drop
	}), nil
}

func (p *Pipeline) manifest(res *Result) *manifest.Manifest {
	dropped := res.Filter.DroppedIDs()
	for _, m := range res.Mismatches {
		dropped = append(dropped, m.ImageID)
	}
	return &manifest.Manifest{
		RunID:              res.RunID,
		CreatedAt:          p.now().UTC(),
		MetadataPath:       p.cfg.Dataset.MetadataPath,
		ImageDir:           p.cfg.Dataset.ImageDir,
		TileCount:          p.cfg.Dataset.TileCount,
		IntegrityPolicy:    p.cfg.Dataset.IntegrityPolicy,
		Seed:               p.cfg.Split.Seed,
		ValidationFraction: p.cfg.Split.ValidationFraction,
		Shuffle:            p.cfg.Split.Shuffle,
		Train:              res.Split.Train.IDs(),
		Validation:         res.Split.Validation.IDs(),
		Dropped:            dropped,
		Orphans:            res.Filter.Orphans,
		Strata:             res.Split.Strata,
	}
}

func (p *Pipeline) finish(stats *RunStats, stage string, start time.Time, rows int) {
	d := metrics.ObserveStage(stage, start)
	stats.Stages = append(stats.Stages, StageTiming{Stage: stage, Duration: d, Rows: rows})
	logging.Info().
		Str("stage", stage).
		Int("rows", rows).
		Dur("elapsed", d).
		Msg("Stage complete")
}
