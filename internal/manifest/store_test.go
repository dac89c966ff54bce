// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package manifest

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/gradeprep/internal/split"
)

func setupBadger(t *testing.T) *BadgerStore {
	t.Helper()
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewBadgerStore(db)
}

func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"badger": setupBadger(t),
		"memory": NewInMemoryStore(),
	}
}

func sample(created time.Time) *Manifest {
	return &Manifest{
		RunID:              NewRunID(),
		CreatedAt:          created,
		MetadataPath:       "data/train.csv",
		ImageDir:           "data/tiles",
		TileCount:          16,
		IntegrityPolicy:    "drop",
		Seed:               42,
		ValidationFraction: 0.2,
		Shuffle:            true,
		Train:              []string{"a", "b", "c", "d"},
		Validation:         []string{"e"},
		Dropped:            []string{"x"},
		Strata: []split.Stratum{
			{Provider: "karolinska", Total: 3, Train: 2, Validation: 1},
			{Provider: "radboud", Total: 2, Train: 2, Validation: 0},
		},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			m := sample(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
			if err := store.Save(ctx, m); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, err := store.Load(ctx, m.RunID)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if !reflect.DeepEqual(got, m) {
				t.Errorf("Load() = %+v, want %+v", got, m)
			}
			if got.Summary().TrainRows != 4 || got.Summary().DroppedRows != 1 {
				t.Errorf("Summary() = %+v", got.Summary())
			}
		})
	}
}

func TestStoreLatestAndList(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := store.Latest(ctx); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Latest() on empty store error = %v", err)
			}

			base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
			older := sample(base)
			newer := sample(base.Add(time.Hour))
			middle := sample(base.Add(time.Minute))
			for _, m := range []*Manifest{older, newer, middle} {
				if err := store.Save(ctx, m); err != nil {
					t.Fatalf("Save() error = %v", err)
				}
			}

			latest, err := store.Latest(ctx)
			if err != nil {
				t.Fatalf("Latest() error = %v", err)
			}
			if latest.RunID != newer.RunID {
				t.Errorf("Latest() = %s, want %s", latest.RunID, newer.RunID)
			}

			list, err := store.List(ctx)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			var ids []string
			for _, m := range list {
				ids = append(ids, m.RunID)
			}
			want := []string{newer.RunID, middle.RunID, older.RunID}
			if !reflect.DeepEqual(ids, want) {
				t.Errorf("List() order = %v, want %v", ids, want)
			}
		})
	}
}

func TestStoreDelete(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			m := sample(time.Now().UTC())
			if err := store.Save(ctx, m); err != nil {
				t.Fatal(err)
			}
			if err := store.Delete(ctx, m.RunID); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if _, err := store.Load(ctx, m.RunID); !errors.Is(err, ErrNotFound) {
				t.Errorf("Load() after delete error = %v", err)
			}
			if err := store.Delete(ctx, m.RunID); !errors.Is(err, ErrNotFound) {
				t.Errorf("second Delete() error = %v", err)
			}
		})
	}
}

func TestStoreRejectsInvalid(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Save(ctx, nil); err == nil {
				t.Error("Save(nil) expected error")
			}
			if err := store.Save(ctx, &Manifest{RunID: "not-a-uuid"}); err == nil {
				t.Error("Save() with bad run id expected error")
			}
		})
	}
}

func TestInMemoryStoreCopies(t *testing.T) {
	t.Parallel()

	store := NewInMemoryStore()
	ctx := context.Background()
	m := sample(time.Now().UTC())
	if err := store.Save(ctx, m); err != nil {
		t.Fatal(err)
	}
	m.Train[0] = "mutated"

	got, err := store.Load(ctx, m.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Train[0] != "a" {
		t.Error("store shares slices with the caller")
	}
}

func TestOpenBadgerStore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := OpenBadgerStore(dir)
	if err != nil {
		t.Fatalf("OpenBadgerStore() error = %v", err)
	}
	m := sample(time.Now().UTC())
	if err := store.Save(context.Background(), m); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := OpenBadgerStore(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.Load(context.Background(), m.RunID); err != nil {
		t.Errorf("Load() after reopen error = %v", err)
	}
}

func TestBadgerStoreCollectGarbage(t *testing.T) {
	t.Parallel()

	n, err := setupBadger(t).CollectGarbage(0.5)
	if err != nil || n != 0 {
		t.Errorf("in-memory CollectGarbage() = %d, %v; want 0, nil", n, err)
	}

	store, err := OpenBadgerStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if err := store.Save(context.Background(), sample(time.Now().UTC())); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CollectGarbage(0.5); err != nil {
		t.Errorf("CollectGarbage() error = %v", err)
	}
	if _, err := store.CollectGarbage(1.5); err == nil {
		t.Error("CollectGarbage(1.5) should reject the discard ratio")
	}
}
