package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all profit routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/profit", func(r chi.Router) {
		r.Get("/total", h.HandleTotal)
		r.Get("/monthly", h.HandleMonthly)
		r.Get("/day/{date}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleDay(w, r, chi.URLParam(r, "date"))
		})
	})
}
