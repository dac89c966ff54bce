// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

// Command gradeprep prepares tiled prostate biopsy datasets for ISUP grade
// classification: it checks metadata against tile files, splits samples per
// data provider, and serves batches of tile mosaics.
//
// # Commands
//
//	gradeprep prepare                 run the pipeline and print a JSON report
//	gradeprep iterate --epochs 3      prepare, then load every batch per epoch
//	gradeprep manifests [--run ID]    list or show stored split manifests
//	gradeprep serve [--prepare]       run the inspection HTTP server
//
// Configuration comes from built-in defaults, an optional YAML file
// (--config, then CONFIG_PATH, then the first of gradeprep.yaml,
// gradeprep.yml and /etc/gradeprep/config.yaml) and environment variables
// such as METADATA_PATH, IMAGE_DIR and BATCH_SIZE.
//
// # Exit Codes
//
//	0  success
//	1  runtime failure (I/O, decoding, store)
//	2  configuration error
//	3  data integrity violation under the reject policy
//	4  a provider has too few rows to split
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"

	"github.com/tomtom215/gradeprep/internal/api"
	"github.com/tomtom215/gradeprep/internal/config"
	"github.com/tomtom215/gradeprep/internal/dataset"
	"github.com/tomtom215/gradeprep/internal/logging"
	"github.com/tomtom215/gradeprep/internal/split"
)

// Exit codes.
const (
	exitOK         = 0
	exitFailure    = 1
	exitConfig     = 2
	exitIntegrity  = 3
	exitDegenerate = 4
)

type prepareCmd struct{}

type iterateCmd struct {
	Epochs int `arg:"--epochs" help:"epochs to iterate (default: training.epochs)"`
}

type manifestsCmd struct {
	Run    string `arg:"--run" help:"print the manifest of one run"`
	Latest bool   `arg:"--latest" help:"print the most recent manifest"`
	Delete string `arg:"--delete" help:"delete the manifest of one run"`
}

type serveCmd struct {
	Prepare bool `arg:"--prepare" help:"run the pipeline once before serving"`
}

type args struct {
	Config    string        `arg:"-c,--config" help:"YAML configuration file"`
	Prepare   *prepareCmd   `arg:"subcommand:prepare" help:"run the pipeline and print a report"`
	Iterate   *iterateCmd   `arg:"subcommand:iterate" help:"prepare and load every batch"`
	Manifests *manifestsCmd `arg:"subcommand:manifests" help:"list or show stored split manifests"`
	Serve     *serveCmd     `arg:"subcommand:serve" help:"run the inspection HTTP server"`
}

func (args) Description() string {
	return "gradeprep prepares tiled biopsy datasets for ISUP grade classification"
}

func (args) Version() string {
	return "gradeprep " + api.Version
}

func main() {
	var a args
	p := arg.MustParse(&a)
	if p.Subcommand() == nil {
		p.Fail("missing command: prepare, iterate, manifests or serve")
	}

	cfg, err := config.Load(a.Config)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(exitCode(err))
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
		Output: os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case a.Prepare != nil:
		err = runPrepare(ctx, cfg, os.Stdout)
	case a.Iterate != nil:
		err = runIterate(ctx, cfg, a.Iterate.Epochs, os.Stdout)
	case a.Manifests != nil:
		err = runManifests(ctx, cfg, *a.Manifests, os.Stdout)
	case a.Serve != nil:
		err = runServe(ctx, cfg, a.Serve.Prepare)
	}

	if err != nil {
		logging.Error().Err(err).Msg("Command failed")
		stop()
		os.Exit(exitCode(err))
	}
}

// exitCode maps error classes to process exit codes.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, config.ErrConfiguration):
		return exitConfig
	case errors.Is(err, dataset.ErrDataIntegrity),
		errors.Is(err, dataset.ErrInconsistentMetadata):
		return exitIntegrity
	case errors.Is(err, split.ErrDegenerateSplit):
		return exitDegenerate
	default:
		return exitFailure
	}
}

// usageError marks a bad flag combination as a configuration error.
func usageError(format string, a ...any) error {
	return fmt.Errorf("%w: %s", config.ErrConfiguration, fmt.Sprintf(format, a...))
}
