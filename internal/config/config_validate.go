// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package config

import (
	"fmt"
	"os"

	"github.com/tomtom215/gradeprep/internal/logging"
	"github.com/tomtom215/gradeprep/internal/validation"
)

// Validate checks field constraints, cross-field rules and the presence of
// the input files and directories. It runs before any split or load so a
// bad setup fails fast. Every returned error wraps ErrConfiguration.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	if err := c.validateLayout(); err != nil {
		return err
	}

	if err := c.validateLogging(); err != nil {
		return err
	}

	return c.validatePaths()
}

// validateLayout checks that a grid layout can be square.
func (c *Config) validateLayout() error {
	if c.Loader.Layout == LayoutGrid && !validation.PerfectSquare(c.Dataset.TileCount) {
		return fmt.Errorf("%w: dataset.tile_count=%d must be a perfect square for the grid layout",
			ErrConfiguration, c.Dataset.TileCount)
	}
	return nil
}

// validateLogging validates the log level name.
func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("%w: logging.level %q is not a known level", ErrConfiguration, c.Logging.Level)
	}
	return nil
}

// validatePaths checks that the metadata file and tile directories exist.
func (c *Config) validatePaths() error {
	if err := requireFile(c.Dataset.MetadataPath, "dataset.metadata_path"); err != nil {
		return err
	}
	if err := requireDir(c.Dataset.ImageDir, "dataset.image_dir"); err != nil {
		return err
	}
	if c.Dataset.MaskDir != "" {
		if err := requireDir(c.Dataset.MaskDir, "dataset.mask_dir"); err != nil {
			return err
		}
	}
	return nil
}

func requireFile(path, key string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrConfiguration, key, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s %s is a directory, expected a file", ErrConfiguration, key, path)
	}
	return nil
}

func requireDir(path, key string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrConfiguration, key, path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s %s is not a directory", ErrConfiguration, key, path)
	}
	return nil
}
