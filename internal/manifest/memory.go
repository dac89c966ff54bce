// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package manifest

import (
	"context"
	"fmt"
	"sync"
)

// InMemoryStore implements Store in process memory. It is used when
// persistence is disabled and in tests.
type InMemoryStore struct {
	mu        sync.RWMutex
	manifests map[string]*Manifest
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{manifests: make(map[string]*Manifest)}
}

// Save stores a copy of m.
func (s *InMemoryStore) Save(_ context.Context, m *Manifest) error {
	if err := validate(m); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifests[m.RunID] = clone(m)
	return nil
}

// Load returns a copy of the manifest for runID.
func (s *InMemoryStore) Load(_ context.Context, runID string) (*Manifest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.manifests[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	return clone(m), nil
}

// List returns copies of every manifest, newest first.
func (s *InMemoryStore) List(_ context.Context) ([]*Manifest, error) {
	s.mu.RLock()
	ms := make([]*Manifest, 0, len(s.manifests))
	for _, m := range s.manifests {
		ms = append(ms, clone(m))
	}
	s.mu.RUnlock()
	sortNewestFirst(ms)
	return ms, nil
}

// Latest returns the newest manifest.
func (s *InMemoryStore) Latest(ctx context.Context) (*Manifest, error) {
	ms, _ := s.List(ctx)
	if len(ms) == 0 {
		return nil, ErrNotFound
	}
	return ms[0], nil
}

// Delete removes a manifest.
func (s *InMemoryStore) Delete(_ context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.manifests[runID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	delete(s.manifests, runID)
	return nil
}

// Close is a no-op.
func (s *InMemoryStore) Close() error {
	return nil
}
