// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

/*
Package api serves a read-only HTTP view of stored split manifests and the
Prometheus metrics of the process.

# Routes

	GET /healthz                      liveness and manifest store reachability
	GET /metrics                      Prometheus exposition (promhttp)
	GET /api/v1/manifests             manifest summaries, newest first (?limit=N)
	GET /api/v1/manifests/latest      newest manifest in full
	GET /api/v1/manifests/{runID}     one manifest in full

Every JSON body uses the APIResponse envelope:

	{"status": "success", "data": {...}, "metadata": {"timestamp": "..."}}
	{"status": "error", "data": null, "error": {"code": "NOT_FOUND", "message": "..."}, ...}

# Middleware

Chi request ID, real IP, request logging with route-pattern metrics, panic
recovery and go-chi/cors apply to every route. The /api/v1 group is also
rate limited per client IP with go-chi/httprate.
*/
package api
