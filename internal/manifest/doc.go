// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

// Package manifest persists a record of every preparation run: the
// configuration that produced a split and the identifiers on each side.
//
// BadgerStore keeps manifests as JSON values under "manifest:run:<id>" in
// BadgerDB. InMemoryStore backs runs with persistence disabled.
package manifest
