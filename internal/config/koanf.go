// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"gradeprep.yaml",
	"gradeprep.yml",
	"/etc/gradeprep/config.yaml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with the defaults used for 16-tile PANDA
// style datasets (4x4 grid of 128px tiles, ISUP grades 0-5).
func defaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			MetadataPath:            "train.csv",
			Delimiter:               ",",
			ImageDir:                "tiles",
			MaskDir:                 "",
			TileCount:               16,
			TileIndexStart:          0,
			TileExtension:           "png",
			NumClasses:              6,
			LabelSource:             LabelISUP,
			IntegrityPolicy:         PolicyDrop,
			CheckGleasonConsistency: false,
		},
		Split: SplitConfig{
			ValidationFraction: 0.2,
			Seed:               42,
			Shuffle:            true,
		},
		Loader: LoaderConfig{
			TileHeight: 128,
			TileWidth:  128,
			Channels:   3,
			Layout:     LayoutGrid,
			BatchSize:  8,
		},
		Training: TrainingConfig{
			Epochs: 1,
		},
		Manifest: ManifestConfig{
			Enabled:    false,
			Path:       "data/manifests",
			GCInterval: 10 * time.Minute,
		},
		Server: ServerConfig{
			Host:              "127.0.0.1",
			Port:              9464,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{},
			RateLimitRequests: 600,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration with Koanf v2 using layered sources:
//  1. Defaults: built-in defaults
//  2. Config File: path if non-empty, otherwise CONFIG_PATH or DefaultConfigPaths
//  3. Environment Variables: override any mapped setting
//
// Every returned error wraps ErrConfiguration.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("%w: failed to load defaults: %w", ErrConfiguration, err)
	}

	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: config file %s: %w", ErrConfiguration, path, err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: failed to load config file %s: %w", ErrConfiguration, path, err)
		}
	}

	// IMAGE_DIR -> dataset.image_dir, BATCH_SIZE -> loader.batch_size
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("%w: failed to load environment variables: %w", ErrConfiguration, err)
	}

	if err := splitListFields(k); err != nil {
		return nil, fmt.Errorf("%w: failed to process list fields: %w", ErrConfiguration, err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal configuration: %w", ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	"metadata_path":             "dataset.metadata_path",
	"csv_delimiter":             "dataset.delimiter",
	"image_dir":                 "dataset.image_dir",
	"mask_dir":                  "dataset.mask_dir",
	"tile_count":                "dataset.tile_count",
	"tile_index_start":          "dataset.tile_index_start",
	"tile_extension":            "dataset.tile_extension",
	"num_classes":               "dataset.num_classes",
	"label_source":              "dataset.label_source",
	"integrity_policy":          "dataset.integrity_policy",
	"check_gleason_consistency": "dataset.check_gleason_consistency",

	"validation_fraction": "split.validation_fraction",
	"split_seed":          "split.seed",
	"split_shuffle":       "split.shuffle",

	"tile_height":   "loader.tile_height",
	"tile_width":    "loader.tile_width",
	"tile_channels": "loader.channels",
	"tile_layout":   "loader.layout",
	"batch_size":    "loader.batch_size",

	"epochs": "training.epochs",

	"manifest_enabled": "manifest.enabled",
	"manifest_path":    "manifest.path",
	"manifest_gc":      "manifest.gc_interval",

	"http_host":         "server.host",
	"http_port":         "server.port",
	"shutdown_timeout":  "server.shutdown_timeout",
	"cors_origins":      "server.cors_origins",
	"rate_limit":        "server.rate_limit_requests",
	"rate_limit_window": "server.rate_limit_window",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped keys return "" so unrelated environment variables are ignored.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

// listConfigPaths are slice settings that environment variables supply as
// comma-separated strings.
var listConfigPaths = []string{
	"server.cors_origins",
}

// splitListFields rewrites string values at listConfigPaths into trimmed
// slices. Values already loaded as lists from YAML are left alone.
func splitListFields(k *koanf.Koanf) error {
	for _, path := range listConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		items := make([]string, 0, strings.Count(raw, ",")+1)
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		if err := k.Set(path, items); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}
