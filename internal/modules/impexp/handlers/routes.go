package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all import/export routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/export", h.HandleExport)
	r.Post("/import", h.HandleImport)
}
