// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer, h.withTraceID, h.withLogging)

	router.Get("/api/ping", h.ping)
	router.Get("/api/status", h.status)

	// streamed, never compressed
	router.Post("/api/import", h.runImport)

	router.Group(func(r chi.Router) {
		r.Use(withGZip)

		r.Get("/api/entities/{kind}", h.loadAll)
		r.Post("/api/entities/{kind}", h.save)
		r.Get("/api/entities/{kind}/{id}", h.load)
		r.Delete("/api/entities/{kind}/{id}", h.delete)
		r.Post("/api/entities/{kind}/{id}/trash", h.moveToTrash)

		r.Post("/api/data/{kind}/synchronize", h.synchronizeAll)
		r.Post("/api/data/{kind}/{id}/terminate", h.terminate)
		r.Post("/api/data/{kind}/{id}/synchronize", h.synchronize)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
