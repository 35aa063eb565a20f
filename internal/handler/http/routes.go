// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging, withGZip)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Get("/api/version/", h.getServerVersion)
		r.Get("/api/version/info", h.getServerInfo)
	})

	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.With(h.checkIntegrity).Post("/api/sync", h.sync)
		r.With(h.checkIntegrity).Post("/api/sync/queue", h.queueSync)
		r.Get("/api/sync/batches/{batchID}", h.getBatch)
		r.Post("/api/sync/batches/{batchID}/process", h.processBatch)

		r.Get("/api/sync/conflicts", h.getConflicts)
		r.With(h.checkIntegrity).Post("/api/sync/conflicts/{conflictID}/resolve", h.resolveConflict)

		r.Get("/api/sync/status", h.getSyncStatus)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
