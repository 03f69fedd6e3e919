// Package handlers provides HTTP handlers for dividend operations.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/onohta/tradebook/internal/modules/dividends"
	"github.com/onohta/tradebook/internal/modules/journal"
	"github.com/onohta/tradebook/internal/modules/profit"
)

// Handler handles dividend HTTP requests
type Handler struct {
	service *dividends.Service
	journal *journal.Service
	profit  *profit.Calculator
	log     zerolog.Logger
}

// NewHandler creates a new dividends handler
func NewHandler(service *dividends.Service, journalService *journal.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		journal: journalService,
		profit:  profit.NewCalculator(),
		log:     log.With().Str("handler", "dividends").Logger(),
	}
}

// HandleHistory handles GET /api/dividends/history
// Returns the per-day dividend entries, newest first.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	calc, err := h.service.Calculator()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load dividend ratio")
		http.Error(w, "Failed to compute dividends", http.StatusInternalServerError)
		return
	}

	days, err := h.journal.FetchAll(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch trade days")
		http.Error(w, "Failed to compute dividends", http.StatusInternalServerError)
		return
	}

	entries := calc.History(days, h.profit)
	if entries == nil {
		entries = []dividends.Entry{}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

// HandleSummary handles GET /api/dividends/summary
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	calc, err := h.service.Calculator()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load dividend ratio")
		http.Error(w, "Failed to compute dividends", http.StatusInternalServerError)
		return
	}

	days, err := h.journal.FetchAll(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch trade days")
		http.Error(w, "Failed to compute dividends", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, calc.Summarize(days, h.profit))
}

// HandleGetRatio handles GET /api/dividends/ratio
func (h *Handler) HandleGetRatio(w http.ResponseWriter, r *http.Request) {
	ratio, err := h.service.Ratio()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load dividend ratio")
		http.Error(w, "Failed to load dividend ratio", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]int{
		"numerator":   ratio.Numerator,
		"denominator": ratio.Denominator,
	})
}

// HandleSetRatio handles PUT /api/dividends/ratio
func (h *Handler) HandleSetRatio(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Numerator   int `json:"numerator"`
		Denominator int `json:"denominator"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ratio, err := h.service.SetRatio(req.Numerator, req.Denominator)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to save dividend ratio")
		http.Error(w, "Failed to save dividend ratio", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]int{
		"numerator":   ratio.Numerator,
		"denominator": ratio.Denominator,
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
