// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package manifest

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/gradeprep/internal/metrics"
)

const keyPrefix = "manifest:run:"

// BadgerStore implements Store on BadgerDB.
type BadgerStore struct {
	db    *badger.DB
	owned bool
}

// OpenBadgerStore opens (or creates) a BadgerDB at path. The store owns the
// database and closes it on Close.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open manifest store: %w", err)
	}
	return &BadgerStore{db: db, owned: true}, nil
}

// NewBadgerStore wraps an open database. Close leaves db open.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func key(runID string) []byte {
	return []byte(keyPrefix + runID)
}

// Save writes m, replacing any manifest with the same run id.
func (s *BadgerStore) Save(_ context.Context, m *Manifest) (err error) {
	defer func() { record("save", err) }()

	if err := validate(m); err != nil {
		return err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(m.RunID), data)
	})
}

// Load returns the manifest for runID or ErrNotFound.
func (s *BadgerStore) Load(_ context.Context, runID string) (m *Manifest, err error) {
	defer func() { record("load", err) }()

	var out Manifest
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(runID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &out)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	return &out, nil
}

// List returns every stored manifest, newest first.
func (s *BadgerStore) List(_ context.Context) (ms []*Manifest, err error) {
	defer func() { record("list", err) }()

	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var m Manifest
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &m)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			ms = append(ms, &m)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list manifests: %w", err)
	}
	sortNewestFirst(ms)
	return ms, nil
}

// Latest returns the newest manifest or ErrNotFound when the store is empty.
func (s *BadgerStore) Latest(ctx context.Context) (*Manifest, error) {
	ms, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(ms) == 0 {
		return nil, ErrNotFound
	}
	return ms[0], nil
}

// Delete removes a manifest. Deleting an unknown run id returns ErrNotFound.
func (s *BadgerStore) Delete(_ context.Context, runID string) (err error) {
	defer func() { record("delete", err) }()

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key(runID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrNotFound, runID)
			}
			return err
		}
		return txn.Delete(key(runID))
	})
}

// CollectGarbage runs value log garbage collection until no file is
// rewritten and returns the number of rewrites. In-memory databases have no
// value log and report zero.
func (s *BadgerStore) CollectGarbage(discardRatio float64) (rewrites int, err error) {
	defer func() { record("gc", err) }()
	for {
		gcErr := s.db.RunValueLogGC(discardRatio)
		switch {
		case gcErr == nil:
			rewrites++
		case errors.Is(gcErr, badger.ErrNoRewrite), errors.Is(gcErr, badger.ErrGCInMemoryMode):
			return rewrites, nil
		default:
			return rewrites, fmt.Errorf("manifest value log gc: %w", gcErr)
		}
	}
}

// Close closes the database when the store opened it.
func (s *BadgerStore) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}

func record(op string, err error) {
	result := "success"
	switch {
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
	}
	metrics.RecordManifestOp(op, result)
}
