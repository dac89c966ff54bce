// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package config

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// validConfig returns defaults pointing at real temporary paths.
func validConfig(t *testing.T) *Config {
	t.Helper()
	metadataPath, imageDir := setupDataset(t)
	cfg := defaultConfig()
	cfg.Dataset.MetadataPath = metadataPath
	cfg.Dataset.ImageDir = imageDir
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:   "defaults with real paths",
			mutate: func(*Config) {},
		},
		{
			name:    "zero batch size",
			mutate:  func(c *Config) { c.Loader.BatchSize = 0 },
			wantMsg: "loader.batch_size",
		},
		{
			name:    "fraction of one",
			mutate:  func(c *Config) { c.Split.ValidationFraction = 1 },
			wantMsg: "split.validation_fraction",
		},
		{
			name:    "unknown policy",
			mutate:  func(c *Config) { c.Dataset.IntegrityPolicy = "ignore" },
			wantMsg: "dataset.integrity_policy",
		},
		{
			name:    "unknown label source",
			mutate:  func(c *Config) { c.Dataset.LabelSource = "grade" },
			wantMsg: "dataset.label_source",
		},
		{
			name:    "grid needs square tile count",
			mutate:  func(c *Config) { c.Dataset.TileCount = 12 },
			wantMsg: "perfect square",
		},
		{
			name: "channels layout accepts any tile count",
			mutate: func(c *Config) {
				c.Dataset.TileCount = 12
				c.Loader.Layout = LayoutChannels
			},
		},
		{
			name:    "two channels",
			mutate:  func(c *Config) { c.Loader.Channels = 2 },
			wantMsg: "loader.channels",
		},
		{
			name:    "dotted extension",
			mutate:  func(c *Config) { c.Dataset.TileExtension = ".png" },
			wantMsg: "dataset.tile_extension",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantMsg: "logging.level",
		},
		{
			name: "manifest enabled without path",
			mutate: func(c *Config) {
				c.Manifest.Enabled = true
				c.Manifest.Path = ""
			},
			wantMsg: "manifest.path",
		},
		{
			name:    "negative gc interval",
			mutate:  func(c *Config) { c.Manifest.GCInterval = -time.Minute },
			wantMsg: "manifest.gc_interval",
		},
		{
			name: "rate limit without window",
			mutate: func(c *Config) {
				c.Server.RateLimitRequests = 10
				c.Server.RateLimitWindow = 0
			},
			wantMsg: "server.rate_limit_window",
		},
		{
			name: "rate limiting disabled",
			mutate: func(c *Config) {
				c.Server.RateLimitRequests = 0
				c.Server.RateLimitWindow = 0
			},
		},
		{
			name:    "missing metadata file",
			mutate:  func(c *Config) { c.Dataset.MetadataPath = filepath.Join(c.Dataset.ImageDir, "none.csv") },
			wantMsg: "dataset.metadata_path",
		},
		{
			name:    "missing image directory",
			mutate:  func(c *Config) { c.Dataset.ImageDir = filepath.Join(c.Dataset.ImageDir, "none") },
			wantMsg: "dataset.image_dir",
		},
		{
			name:    "image directory is a file",
			mutate:  func(c *Config) { c.Dataset.ImageDir = c.Dataset.MetadataPath },
			wantMsg: "is not a directory",
		},
		{
			name:    "missing mask directory",
			mutate:  func(c *Config) { c.Dataset.MaskDir = filepath.Join(c.Dataset.ImageDir, "masks") },
			wantMsg: "dataset.mask_dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantMsg)
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("Validate() error should wrap ErrConfiguration, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}
