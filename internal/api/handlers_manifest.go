// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tomtom215/gradeprep/internal/manifest"
)

// ListManifests returns manifest summaries, newest first. The optional
// limit query parameter caps the count; 0 means no cap.
func (h *Handler) ListManifests(w http.ResponseWriter, r *http.Request) {
	limit, err := getIntParam(r, "limit", 0)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, CodeValidation, err.Error(), nil)
		return
	}

	ms, err := h.store.List(r.Context())
	if err != nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeStoreUnavailable, "Manifest store unavailable", err)
		return
	}
	if limit > 0 && len(ms) > limit {
		ms = ms[:limit]
	}

	summaries := make([]manifest.Summary, len(ms))
	for i, m := range ms {
		summaries[i] = m.Summary()
	}
	respondData(w, summaries, len(summaries))
}

// LatestManifest returns the newest manifest in full.
func (h *Handler) LatestManifest(w http.ResponseWriter, r *http.Request) {
	m, err := h.store.Latest(r.Context())
	h.respondManifest(w, r, m, err)
}

// GetManifest returns one manifest by run id.
func (h *Handler) GetManifest(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	if _, err := uuid.Parse(runID); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "runID must be a UUID", nil)
		return
	}
	m, err := h.store.Load(r.Context(), runID)
	h.respondManifest(w, r, m, err)
}

func (h *Handler) respondManifest(w http.ResponseWriter, r *http.Request, m *manifest.Manifest, err error) {
	switch {
	case errors.Is(err, manifest.ErrNotFound):
		respondError(w, r, http.StatusNotFound, CodeNotFound, "Manifest not found", nil)
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, CodeStore, "Failed to read manifest", err)
	default:
		respondData(w, m, 1)
	}
}
