// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

/*
Package supervisor runs the long-lived services of the serve command under a
suture v4 supervisor tree.

Crashed services are restarted with backoff; a service that keeps failing
past FailureThreshold within FailureDecay puts its supervisor into
FailureBackoff. Supervisor events go through sutureslog to the zerolog-backed
slog logger from the logging package.

	tree := supervisor.NewTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewValueLogGCService(store, 10*time.Minute, 0.5))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	err := tree.Serve(ctx)
*/
package supervisor
