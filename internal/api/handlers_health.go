// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the body of GET /healthz.
type HealthStatus struct {
	Status         string  `json:"status"`
	Version        string  `json:"version"`
	StoreReachable bool    `json:"store_reachable"`
	Manifests      int     `json:"manifests"`
	Uptime         float64 `json:"uptime_seconds"`
}

// Health reports liveness and whether the manifest store can be read.
// A store failure degrades the status but still answers 200.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{
		Status:  "healthy",
		Version: Version,
		Uptime:  time.Since(h.startTime).Seconds(),
	}

	ms, err := h.store.List(r.Context())
	if err != nil {
		health.Status = "degraded"
	} else {
		health.StoreReachable = true
		health.Manifests = len(ms)
	}

	respondData(w, health, 0)
}
