package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all analytics routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/analytics", func(r chi.Router) {
		r.Get("/best-worst", h.HandleBestWorst)
		r.Get("/ranking", h.HandleRanking)
		r.Get("/stats", h.HandleStats)
	})
}
