// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

/*
Package logging wraps a single global zerolog logger.

Initialize once from main after configuration is loaded:

	logging.Init(logging.Config{
	    Level:  cfg.Logging.Level,
	    Format: cfg.Logging.Format,
	    Caller: cfg.Logging.Caller,
	})

Packages log through the level helpers (Info, Warn, Debug, Error) and never
construct their own zerolog.Logger. Tests capture output with SetLogger and
NewTestLogger.
*/
package logging
