package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all dividend routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/dividends", func(r chi.Router) {
		r.Get("/history", h.HandleHistory)
		r.Get("/summary", h.HandleSummary)
		r.Get("/ratio", h.HandleGetRatio)
		r.Put("/ratio", h.HandleSetRatio)
	})
}
