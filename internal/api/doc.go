// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

/*
Package api provides the read-only HTTP query surface over the current run.

Routes:

	GET /api/v1/health/live                      liveness
	GET /api/v1/health/ready                     503 until a run is loaded
	GET /api/v1/recommendations/{userID}         ?n=&method=
	GET /api/v1/items/{itemID}/similar           ?k=&kind=
	GET /api/v1/scope                            publisher and matrix sizes
	GET /api/v1/evaluation                       ?n=&strategy=&users=
	GET /metrics                                 prometheus

Every JSON response uses the models.APIResponse envelope. Handlers read the
run through a RunSource on each request, so a refresh swaps the served run
without locking.

Usage:

	handler := api.NewHandler(holder, api.DefaultHandlerConfig())
	router := api.NewRouter(handler, api.NewChiMiddleware(nil))
	http.ListenAndServe(":8090", router.Setup())

Query parameters are validated with go-playground/validator (see
requests.go) and failures are returned as VALIDATION_ERROR with field
details. Rate limiting is per client IP via go-chi/httprate.
*/
package api
