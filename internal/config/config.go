// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package config

import (
	"errors"
	"time"
)

// ErrConfiguration marks every failure raised while loading or validating
// configuration. Callers test for it with errors.Is.
var ErrConfiguration = errors.New("configuration error")

// Integrity policies for metadata rows without a complete tile set.
const (
	PolicyReject = "reject"
	PolicyDrop   = "drop"
)

// Label sources.
const (
	LabelISUP    = "isup_grade"
	LabelGleason = "gleason_score"
)

// Tile layouts.
const (
	LayoutGrid     = "grid"
	LayoutChannels = "channels"
)

// Config holds all application configuration.
//
// Loading order (Koanf v2):
//  1. Defaults: defaultConfig()
//  2. Config File: optional YAML (CONFIG_PATH or DefaultConfigPaths)
//  3. Environment Variables: mapped names such as IMAGE_DIR or BATCH_SIZE
//
// Config is immutable after Load() and safe for concurrent reads.
type Config struct {
	Dataset  DatasetConfig  `koanf:"dataset"`
	Split    SplitConfig    `koanf:"split"`
	Loader   LoaderConfig   `koanf:"loader"`
	Training TrainingConfig `koanf:"training"`
	Manifest ManifestConfig `koanf:"manifest"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatasetConfig describes the metadata table and the tile directory.
//
// Environment Variables:
//   - METADATA_PATH: delimited metadata file (image_id,data_provider,isup_grade,gleason_score)
//   - IMAGE_DIR: directory holding <image_id>_<index>.<ext> tiles
//   - MASK_DIR: optional mask directory (accepted, currently unused)
//   - TILE_COUNT: tiles per sample (default: 16)
//   - TILE_INDEX_START: first tile index (default: 0)
//   - TILE_EXTENSION: tile file extension (default: png)
//   - INTEGRITY_POLICY: reject or drop (default: drop)
type DatasetConfig struct {
	MetadataPath string `koanf:"metadata_path" validate:"required"`
	Delimiter    string `koanf:"delimiter" validate:"len=1"`
	ImageDir     string `koanf:"image_dir" validate:"required"`
	MaskDir      string `koanf:"mask_dir"`

	TileCount      int    `koanf:"tile_count" validate:"gte=1,lte=1024"`
	TileIndexStart int    `koanf:"tile_index_start" validate:"gte=0"`
	TileExtension  string `koanf:"tile_extension" validate:"required,fileext"`

	NumClasses  int    `koanf:"num_classes" validate:"gte=2,lte=64"`
	LabelSource string `koanf:"label_source" validate:"oneof=isup_grade gleason_score"`

	// IntegrityPolicy decides what happens to rows missing tiles and to
	// orphan tiles: reject fails the run, drop removes and reports them.
	IntegrityPolicy string `koanf:"integrity_policy" validate:"oneof=reject drop"`

	// CheckGleasonConsistency flags rows whose gleason_score maps to a
	// different ISUP grade than isup_grade. Flagged rows follow IntegrityPolicy.
	CheckGleasonConsistency bool `koanf:"check_gleason_consistency"`
}

// SplitConfig controls the provider-stratified train/validation split.
type SplitConfig struct {
	ValidationFraction float64 `koanf:"validation_fraction" validate:"gt=0,lt=1"`
	Seed               uint64  `koanf:"seed"`

	// Shuffle shuffles each recombined partition so providers interleave.
	Shuffle bool `koanf:"shuffle"`
}

// LoaderConfig sets the target tile shape and batching.
type LoaderConfig struct {
	TileHeight int    `koanf:"tile_height" validate:"gte=1,lte=4096"`
	TileWidth  int    `koanf:"tile_width" validate:"gte=1,lte=4096"`
	Channels   int    `koanf:"channels" validate:"oneof=1 3"`
	Layout     string `koanf:"layout" validate:"oneof=grid channels"`
	BatchSize  int    `koanf:"batch_size" validate:"gte=1,lte=65536"`
}

// TrainingConfig holds the epoch count used by the iterate command.
type TrainingConfig struct {
	Epochs int `koanf:"epochs" validate:"gte=1,lte=10000"`
}

// ManifestConfig enables persisting split manifests to BadgerDB.
type ManifestConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path" validate:"required_if=Enabled true"`

	// GCInterval is how often serve runs value log garbage collection; 0 disables it.
	GCInterval time.Duration `koanf:"gc_interval" validate:"gte=0"`
}

// ServerConfig configures the inspection server (serve command).
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`

	// CORSOrigins lists allowed browser origins. Empty disables cross-origin access.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitRequests per RateLimitWindow and client IP; 0 disables limiting.
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"required_with=RateLimitRequests"`
}

// LoggingConfig holds logging settings passed to logging.Init.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}
