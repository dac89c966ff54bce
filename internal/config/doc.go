// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

/*
Package config loads and validates Gradeprep configuration.

Configuration is layered with Koanf v2: defaults, then a YAML file, then
environment variables. It holds every tunable of a run, from tile geometry
and batch size to the split seed.

Example config.yaml:

	dataset:
	  metadata_path: /data/panda/train.csv
	  image_dir: /data/panda/tiles
	  tile_count: 16
	  tile_extension: png
	  integrity_policy: drop
	split:
	  validation_fraction: 0.2
	  seed: 42
	loader:
	  tile_height: 128
	  tile_width: 128
	  layout: grid
	  batch_size: 8

Validation runs inside Load. Struct tags are checked by internal/validation;
semantic checks cover the grid layout and the existence of the metadata file
and tile directories. Every failure wraps ErrConfiguration so callers can
report configuration problems before any data is touched:

	cfg, err := config.Load(path)
	if errors.Is(err, config.ErrConfiguration) {
	    logging.Fatal().Err(err).Msg("Invalid configuration")
	}
*/
package config
