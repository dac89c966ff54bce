// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/gradeprep/internal/logging"
)

// DefaultDiscardRatio is the value log discard ratio used when none is given.
const DefaultDiscardRatio = 0.5

// GarbageCollector is implemented by *manifest.BadgerStore.
type GarbageCollector interface {
	CollectGarbage(discardRatio float64) (int, error)
}

// ValueLogGCService periodically compacts the manifest store's value log.
type ValueLogGCService struct {
	store        GarbageCollector
	interval     time.Duration
	discardRatio float64
}

// NewValueLogGCService runs store.CollectGarbage every interval. A ratio
// outside (0, 1) selects DefaultDiscardRatio.
func NewValueLogGCService(store GarbageCollector, interval time.Duration, discardRatio float64) *ValueLogGCService {
	if discardRatio <= 0 || discardRatio >= 1 {
		discardRatio = DefaultDiscardRatio
	}
	return &ValueLogGCService{store: store, interval: interval, discardRatio: discardRatio}
}

// Serve implements suture.Service. A failed pass returns the error so the
// supervisor restarts the service with backoff.
func (s *ValueLogGCService) Serve(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("gc interval must be positive, got %v", s.interval)
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := s.store.CollectGarbage(s.discardRatio)
			if err != nil {
				return err
			}
			if n > 0 {
				logging.Debug().Int("rewrites", n).Msg("Manifest value log compacted")
			}
		}
	}
}

// String names the service in supervisor events.
func (s *ValueLogGCService) String() string {
	return "manifest-gc"
}
