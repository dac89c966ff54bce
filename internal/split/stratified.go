// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package split

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/tomtom215/gradeprep/internal/dataset"
)

// Options configures Split.
type Options struct {
	// ValidationFraction is the share of each provider's rows sent to
	// validation, in (0, 1).
	ValidationFraction float64
	Seed               uint64
	// Shuffle shuffles each recombined partition after stratification.
	Shuffle bool
}

// Stratum reports how one provider was divided.
type Stratum struct {
	Provider   string `json:"provider"`
	Total      int    `json:"total"`
	Train      int    `json:"train"`
	Validation int    `json:"validation"`
}

// Result holds the two disjoint partitions.
type Result struct {
	Train      dataset.Table
	Validation dataset.Table
	Strata     []Stratum
}

// TrainCounts returns the training row count per provider.
func (r *Result) TrainCounts() map[string]int {
	out := make(map[string]int, len(r.Strata))
	for _, s := range r.Strata {
		out[s.Provider] = s.Train
	}
	return out
}

// ValidationCounts returns the validation row count per provider.
func (r *Result) ValidationCounts() map[string]int {
	out := make(map[string]int, len(r.Strata))
	for _, s := range r.Strata {
		out[s.Provider] = s.Validation
	}
	return out
}

// Split partitions table into training and validation sets, stratified by
// provider. Providers are visited in sorted order and all shuffling draws
// from a single PCG source seeded with opts.Seed, so equal inputs and seeds
// give identical partitions.
//
// Every provider is checked before any row is assigned: a provider with
// fewer than two rows fails with *SplitDegeneracyError.
func Split(table dataset.Table, opts Options) (*Result, error) {
	if opts.ValidationFraction <= 0 || opts.ValidationFraction >= 1 || math.IsNaN(opts.ValidationFraction) {
		return nil, fmt.Errorf("validation fraction must be in (0,1), got %v", opts.ValidationFraction)
	}
	if table.Len() == 0 {
		return nil, dataset.ErrEmptyTable
	}

	providers := table.Providers()
	groups := table.ByProvider()

	var degenerate []error
	for _, p := range providers {
		if n := groups[p].Len(); n < 2 {
			degenerate = append(degenerate, &SplitDegeneracyError{Provider: p, Rows: n})
		}
	}
	if len(degenerate) > 0 {
		return nil, errors.Join(degenerate...)
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))

	var trainRows, valRows []dataset.Row
	strata := make([]Stratum, 0, len(providers))
	for _, p := range providers {
		rows := groups[p].Rows()
		rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })

		nVal := validationCount(len(rows), opts.ValidationFraction)
		valRows = append(valRows, rows[:nVal]...)
		trainRows = append(trainRows, rows[nVal:]...)
		strata = append(strata, Stratum{
			Provider:   p,
			Total:      len(rows),
			Train:      len(rows) - nVal,
			Validation: nVal,
		})
	}

	if opts.Shuffle {
		rng.Shuffle(len(trainRows), func(i, j int) { trainRows[i], trainRows[j] = trainRows[j], trainRows[i] })
		rng.Shuffle(len(valRows), func(i, j int) { valRows[i], valRows[j] = valRows[j], valRows[i] })
	}

	return &Result{
		Train:      dataset.NewTable(trainRows),
		Validation: dataset.NewTable(valRows),
		Strata:     strata,
	}, nil
}

// validationCount rounds n*fraction and clamps it so both sides get a row.
func validationCount(n int, fraction float64) int {
	nVal := int(math.Round(float64(n) * fraction))
	if nVal < 1 {
		nVal = 1
	}
	if nVal > n-1 {
		nVal = n - 1
	}
	return nVal
}
