// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package api

import (
	"time"

	"github.com/tomtom215/gradeprep/internal/manifest"
)

// Version is reported by the health endpoint.
var Version = "dev"

// Handler serves the inspection API.
type Handler struct {
	store     manifest.Store
	startTime time.Time
}

// NewHandler creates a handler reading manifests from store.
func NewHandler(store manifest.Store) *Handler {
	return &Handler{store: store, startTime: time.Now()}
}
