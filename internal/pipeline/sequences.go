// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/gradeprep/internal/config"
	"github.com/tomtom215/gradeprep/internal/dataset"
	"github.com/tomtom215/gradeprep/internal/loader"
	"github.com/tomtom215/gradeprep/internal/logging"
	"github.com/tomtom215/gradeprep/internal/metrics"
)

// Sequences builds the shuffling training sequence and the fixed-order
// validation sequence for a prepared result.
func (p *Pipeline) Sequences(res *Result) (train, validation *loader.TileSequence, err error) {
	label, err := dataset.LabelFuncFor(p.cfg.Dataset.LabelSource)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", config.ErrConfiguration, err)
	}

	base := loader.Options{
		Tile: loader.Shape{
			Height:   p.cfg.Loader.TileHeight,
			Width:    p.cfg.Loader.TileWidth,
			Channels: p.cfg.Loader.Channels,
		},
		BatchSize: p.cfg.Loader.BatchSize,
		Images:    p.images,
		Masks:     p.masks,
		Layout:    loader.Layout(p.cfg.Loader.Layout),
		Naming:    p.Naming(),
		Classes:   p.cfg.Dataset.NumClasses,
		Label:     label,
		Seed:      p.cfg.Split.Seed,
	}

	trainOpts := base
	trainOpts.Table = res.Train()
	trainOpts.Training = true
	trainOpts.Name = PartitionTrain
	train, err = loader.NewTileSequence(trainOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("training sequence: %w", err)
	}

	valOpts := base
	valOpts.Table = res.Validation()
	valOpts.Name = PartitionValidation
	validation, err = loader.NewTileSequence(valOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("validation sequence: %w", err)
	}

	logging.Info().
		Int("train_batches", train.Len()).
		Int("validation_batches", validation.Len()).
		Int("batch_size", p.cfg.Loader.BatchSize).
		Ints("sample_shape", train.SampleShape()).
		Msg("Sequences ready")
	return train, validation, nil
}

// IterateStats reports a dry run over a sequence.
type IterateStats struct {
	Name    string        `json:"name"`
	Epochs  int           `json:"epochs"`
	Batches int           `json:"batches"`
	Samples int           `json:"samples"`
	Elapsed time.Duration `json:"elapsed"`
}

type named interface {
	Name() string
}

// Iterate loads every batch of seq for the given number of epochs and calls
// OnEpochEnd after each one, exercising the data path without a model.
func Iterate(ctx context.Context, seq loader.Sequence, epochs int) (*IterateStats, error) {
	stats := &IterateStats{Name: "sequence"}
	if n, ok := seq.(named); ok {
		stats.Name = n.Name()
	}
	start := time.Now()

	for epoch := 0; epoch < epochs; epoch++ {
		epochStart := time.Now()
		for i := 0; i < seq.Len(); i++ {
			batch, err := seq.Batch(ctx, i)
			if err != nil {
				return stats, fmt.Errorf("%s epoch %d batch %d: %w", stats.Name, epoch+1, i, err)
			}
			stats.Batches++
			stats.Samples += len(batch.IDs)
		}
		seq.OnEpochEnd()
		stats.Epochs++
		metrics.EpochsCompleted.WithLabelValues(stats.Name).Inc()

		logging.Info().
			Str("sequence", stats.Name).
			Int("epoch", epoch+1).
			Int("batches", seq.Len()).
			Dur("elapsed", time.Since(epochStart)).
			Msg("Epoch complete")
	}

	stats.Elapsed = time.Since(start)
	return stats, nil
}
