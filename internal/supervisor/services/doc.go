// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

// Package services adapts serve-command components to suture.Service:
// HTTPServerService for the inspection server and ValueLogGCService for
// manifest store maintenance.
package services
