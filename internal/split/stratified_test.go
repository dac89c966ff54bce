// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package split

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"testing"

	"github.com/tomtom215/gradeprep/internal/dataset"
)

func makeTable(perProvider map[string]int) dataset.Table {
	providers := make([]string, 0, len(perProvider))
	for p := range perProvider {
		providers = append(providers, p)
	}
	sort.Strings(providers)

	var rows []dataset.Row
	for _, p := range providers {
		for i := 0; i < perProvider[p]; i++ {
			rows = append(rows, dataset.Row{
				ImageID:   fmt.Sprintf("%s-%03d", p, i),
				Provider:  p,
				ISUPGrade: i % 6,
			})
		}
	}
	return dataset.NewTable(rows)
}

func TestSplitDeterministic(t *testing.T) {
	t.Parallel()

	table := makeTable(map[string]int{"karolinska": 37, "radboud": 41})
	opts := Options{ValidationFraction: 0.2, Seed: 42, Shuffle: true}

	a, err := Split(table, opts)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	b, err := Split(table, opts)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if !reflect.DeepEqual(a.Train.IDs(), b.Train.IDs()) || !reflect.DeepEqual(a.Validation.IDs(), b.Validation.IDs()) {
		t.Error("same seed produced different partitions")
	}

	c, err := Split(table, Options{ValidationFraction: 0.2, Seed: 7, Shuffle: true})
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if reflect.DeepEqual(a.Validation.IDs(), c.Validation.IDs()) {
		t.Error("different seeds produced identical validation partitions")
	}
}

func TestSplitPartitionInvariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		counts   map[string]int
		fraction float64
	}{
		{"balanced", map[string]int{"karolinska": 50, "radboud": 50}, 0.2},
		{"skewed", map[string]int{"karolinska": 3, "radboud": 97}, 0.1},
		{"minimum strata", map[string]int{"a": 2, "b": 2, "c": 2}, 0.5},
		{"large fraction", map[string]int{"a": 10, "b": 4}, 0.95},
		{"tiny fraction", map[string]int{"a": 10, "b": 4}, 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			table := makeTable(tt.counts)
			res, err := Split(table, Options{ValidationFraction: tt.fraction, Seed: 1})
			if err != nil {
				t.Fatalf("Split() error = %v", err)
			}

			seen := make(map[string]int)
			for _, id := range res.Train.IDs() {
				seen[id]++
			}
			for _, id := range res.Validation.IDs() {
				seen[id]++
			}
			if len(seen) != table.Len() {
				t.Errorf("union has %d ids, want %d", len(seen), table.Len())
			}
			for id, n := range seen {
				if n != 1 {
					t.Errorf("%s appears %d times", id, n)
				}
			}

			train := res.Train.ProviderCounts()
			val := res.Validation.ProviderCounts()
			for p, n := range tt.counts {
				if train[p] < 1 || val[p] < 1 {
					t.Errorf("provider %s missing from a partition: train=%d val=%d", p, train[p], val[p])
				}
				if train[p]+val[p] != n {
					t.Errorf("provider %s: %d+%d != %d", p, train[p], val[p], n)
				}
			}
			if !reflect.DeepEqual(res.TrainCounts(), train) || !reflect.DeepEqual(res.ValidationCounts(), val) {
				t.Error("Strata disagree with partition contents")
			}
		})
	}
}

func TestSplitGoldenCounts(t *testing.T) {
	t.Parallel()

	table := makeTable(map[string]int{"karolinska": 5, "radboud": 5})
	res, err := Split(table, Options{ValidationFraction: 0.2, Seed: 42, Shuffle: true})
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if res.Train.Len() != 8 || res.Validation.Len() != 2 {
		t.Fatalf("train=%d val=%d, want 8 and 2", res.Train.Len(), res.Validation.Len())
	}
	want := map[string]int{"karolinska": 1, "radboud": 1}
	if got := res.Validation.ProviderCounts(); !reflect.DeepEqual(got, want) {
		t.Errorf("validation per provider = %v, want %v", got, want)
	}
}

func TestSplitDegenerate(t *testing.T) {
	t.Parallel()

	table := makeTable(map[string]int{"karolinska": 10, "radboud": 1})
	_, err := Split(table, Options{ValidationFraction: 0.2, Seed: 42})
	if !errors.Is(err, ErrDegenerateSplit) {
		t.Fatalf("Split() error = %v, want ErrDegenerateSplit", err)
	}
	var de *SplitDegeneracyError
	if !errors.As(err, &de) {
		t.Fatal("error is not *SplitDegeneracyError")
	}
	if de.Provider != "radboud" || de.Rows != 1 {
		t.Errorf("got provider %q rows %d", de.Provider, de.Rows)
	}
}

func TestSplitErrors(t *testing.T) {
	t.Parallel()

	if _, err := Split(dataset.NewTable(nil), Options{ValidationFraction: 0.2}); !errors.Is(err, dataset.ErrEmptyTable) {
		t.Errorf("empty table error = %v", err)
	}
	table := makeTable(map[string]int{"a": 4})
	for _, f := range []float64{0, 1, -0.5, 1.5} {
		if _, err := Split(table, Options{ValidationFraction: f}); err == nil {
			t.Errorf("fraction %v: expected error", f)
		}
	}
}

func TestSplitDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	table := makeTable(map[string]int{"a": 6, "b": 6})
	before := table.IDs()
	if _, err := Split(table, Options{ValidationFraction: 0.3, Seed: 9, Shuffle: true}); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(before, table.IDs()) {
		t.Error("Split() reordered its input")
	}
}

func TestValidationCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n        int
		fraction float64
		want     int
	}{
		{5, 0.2, 1},
		{10, 0.2, 2},
		{2, 0.01, 1},
		{2, 0.99, 1},
		{7, 0.5, 4},
		{100, 0.15, 15},
	}
	for _, tt := range tests {
		if got := validationCount(tt.n, tt.fraction); got != tt.want {
			t.Errorf("validationCount(%d, %v) = %d, want %d", tt.n, tt.fraction, got, tt.want)
		}
	}
}
