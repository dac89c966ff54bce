// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/gradeprep/internal/api"
	"github.com/tomtom215/gradeprep/internal/catalog"
	"github.com/tomtom215/gradeprep/internal/config"
	"github.com/tomtom215/gradeprep/internal/logging"
	"github.com/tomtom215/gradeprep/internal/manifest"
	"github.com/tomtom215/gradeprep/internal/pipeline"
	"github.com/tomtom215/gradeprep/internal/split"
	"github.com/tomtom215/gradeprep/internal/supervisor"
	"github.com/tomtom215/gradeprep/internal/supervisor/services"
	"github.com/tomtom215/gradeprep/internal/tiles"
)

// report is the JSON document printed by prepare and iterate.
type report struct {
	RunID      string                   `json:"run_id"`
	Persisted  bool                     `json:"persisted"`
	Stats      pipeline.RunStats        `json:"stats"`
	Strata     []split.Stratum          `json:"strata"`
	Summary    *catalog.Summary         `json:"summary"`
	Dropped    []tiles.Dropped          `json:"dropped,omitempty"`
	Orphans    []string                 `json:"orphans,omitempty"`
	Iterations []*pipeline.IterateStats `json:"iterations,omitempty"`
}

func newReport(res *pipeline.Result) *report {
	return &report{
		RunID:     res.RunID,
		Persisted: res.Manifest != nil,
		Stats:     res.Stats,
		Strata:    res.Split.Strata,
		Summary:   res.Summary,
		Dropped:   res.Filter.Dropped,
		Orphans:   res.Filter.Orphans,
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// openStore opens the Badger manifest store when persistence is enabled.
// The returned store is nil otherwise.
func openStore(cfg *config.Config) (*manifest.BadgerStore, error) {
	if !cfg.Manifest.Enabled {
		return nil, nil
	}
	store, err := manifest.OpenBadgerStore(cfg.Manifest.Path)
	if err != nil {
		return nil, err
	}
	logging.Debug().Str("path", cfg.Manifest.Path).Msg("Manifest store opened")
	return store, nil
}

func closeStore(store io.Closer) {
	if err := store.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing manifest store")
	}
}

func prepare(ctx context.Context, cfg *config.Config, store manifest.Store) (*pipeline.Pipeline, *pipeline.Result, error) {
	var opts []pipeline.Option
	if store != nil {
		opts = append(opts, pipeline.WithStore(store))
	}
	p, err := pipeline.New(cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	res, err := p.Prepare(ctx)
	if err != nil {
		return nil, nil, err
	}
	return p, res, nil
}

func runPrepare(ctx context.Context, cfg *config.Config, out io.Writer) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	var ms manifest.Store
	if store != nil {
		defer closeStore(store)
		ms = store
	}

	_, res, err := prepare(ctx, cfg, ms)
	if err != nil {
		return err
	}
	return writeJSON(out, newReport(res))
}

func runIterate(ctx context.Context, cfg *config.Config, epochs int, out io.Writer) error {
	if epochs < 0 {
		return usageError("--epochs must be positive, got %d", epochs)
	}
	if epochs == 0 {
		epochs = cfg.Training.Epochs
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	var ms manifest.Store
	if store != nil {
		defer closeStore(store)
		ms = store
	}

	p, res, err := prepare(ctx, cfg, ms)
	if err != nil {
		return err
	}
	train, validation, err := p.Sequences(res)
	if err != nil {
		return err
	}

	rep := newReport(res)
	trainStats, err := pipeline.Iterate(ctx, train, epochs)
	if err != nil {
		return err
	}
	validationStats, err := pipeline.Iterate(ctx, validation, epochs)
	if err != nil {
		return err
	}
	rep.Iterations = []*pipeline.IterateStats{trainStats, validationStats}
	return writeJSON(out, rep)
}

func runManifests(ctx context.Context, cfg *config.Config, cmd manifestsCmd, out io.Writer) error {
	if !cfg.Manifest.Enabled {
		return usageError("manifest store is disabled (set manifest.enabled or MANIFEST_ENABLED)")
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(store)

	switch {
	case cmd.Delete != "":
		if err := store.Delete(ctx, cmd.Delete); err != nil {
			return err
		}
		logging.Info().Str("run_id", cmd.Delete).Msg("Manifest deleted")
		return nil
	case cmd.Run != "":
		m, err := store.Load(ctx, cmd.Run)
		if err != nil {
			return err
		}
		return writeJSON(out, m)
	case cmd.Latest:
		m, err := store.Latest(ctx)
		if err != nil {
			return err
		}
		return writeJSON(out, m)
	}

	all, err := store.List(ctx)
	if err != nil {
		return err
	}
	summaries := make([]manifest.Summary, len(all))
	for i, m := range all {
		summaries[i] = m.Summary()
	}
	return writeJSON(out, summaries)
}

// runServe serves stored manifests. Without a Badger store it serves an
// in-memory store, filled by one pipeline run when prepareFirst is set.
func runServe(ctx context.Context, cfg *config.Config, prepareFirst bool) error {
	badgerStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	var store manifest.Store = manifest.NewInMemoryStore()
	if badgerStore != nil {
		defer closeStore(badgerStore)
		store = badgerStore
	} else {
		logging.Warn().Msg("Manifest store disabled; serving in-memory manifests only")
	}

	if prepareFirst {
		if _, _, err := prepare(ctx, cfg, store); err != nil {
			return err
		}
	}

	tree := supervisor.NewTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout + time.Second,
	})

	server := &http.Server{
		Addr: net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler: api.NewRouter(api.NewHandler(store), api.MiddlewareConfig{
			CORSAllowedOrigins: cfg.Server.CORSOrigins,
			CORSMaxAge:         api.DefaultMiddlewareConfig().CORSMaxAge,
			RateLimitRequests:  cfg.Server.RateLimitRequests,
			RateLimitWindow:    cfg.Server.RateLimitWindow,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	if badgerStore != nil && cfg.Manifest.GCInterval > 0 {
		tree.AddDataService(services.NewValueLogGCService(badgerStore, cfg.Manifest.GCInterval, services.DefaultDiscardRatio))
	}

	logging.Info().Str("addr", server.Addr).Msg("Starting inspection server")
	var serveErr error
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		serveErr = fmt.Errorf("supervisor: %w", err)
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within timeout")
		}
	}
	logging.Info().Msg("Shutdown complete")
	return serveErr
}
