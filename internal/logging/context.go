// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey struct{}

// ContextWithLogger stores logger in ctx. HTTP middleware uses it to attach
// a request-scoped logger carrying the request id.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// LoggerFromContext returns the logger stored in ctx, or the global logger.
func LoggerFromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(zerolog.Logger); ok {
		return logger
	}
	return Logger()
}

// Ctx returns the request-scoped logger of ctx.
//
//	logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to read manifest")
func Ctx(ctx context.Context) *zerolog.Logger {
	logger := LoggerFromContext(ctx)
	return &logger
}
