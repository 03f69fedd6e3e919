// Package handlers provides HTTP handlers for profit reports.
package handlers

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/rs/zerolog"

	"github.com/onohta/tradebook/internal/domain"
	"github.com/onohta/tradebook/internal/modules/journal"
	"github.com/onohta/tradebook/internal/modules/profit"
)

// Handler handles profit report HTTP requests
type Handler struct {
	service    *journal.Service
	calculator *profit.Calculator
	log        zerolog.Logger
}

// NewHandler creates a new profit handler
func NewHandler(service *journal.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service:    service,
		calculator: profit.NewCalculator(),
		log:        log.With().Str("handler", "profit").Logger(),
	}
}

// HandleTotal handles GET /api/profit/total
func (h *Handler) HandleTotal(w http.ResponseWriter, r *http.Request) {
	days, err := h.service.FetchAll(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch trade days")
		http.Error(w, "Failed to compute profit", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"totalProfit": h.calculator.TotalProfit(days),
	})
}

// monthEntry is one month's realized profit.
type monthEntry struct {
	Month  string       `json:"month"`
	Profit domain.Money `json:"profit"`
}

// HandleMonthly handles GET /api/profit/monthly
// Months are returned newest first.
func (h *Handler) HandleMonthly(w http.ResponseWriter, r *http.Request) {
	days, err := h.service.FetchAll(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch trade days")
		http.Error(w, "Failed to compute profit", http.StatusInternalServerError)
		return
	}

	byMonth := h.calculator.MonthlyProfit(days)
	months := make([]monthEntry, 0, len(byMonth))
	for month, p := range byMonth {
		months = append(months, monthEntry{Month: month, Profit: p})
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month > months[j].Month })

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"months": months})
}

// HandleDay handles GET /api/profit/day/{date}
func (h *Handler) HandleDay(w http.ResponseWriter, r *http.Request, dateStr string) {
	date, err := domain.ParseLocalDate(dateStr)
	if err != nil {
		http.Error(w, "Invalid date", http.StatusBadRequest)
		return
	}

	days, err := h.service.FetchAll(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch trade days")
		http.Error(w, "Failed to compute profit", http.StatusInternalServerError)
		return
	}

	for _, day := range days {
		if !day.IsDeleted() && day.Date.Equal(date) {
			h.writeJSON(w, http.StatusOK, map[string]interface{}{
				"date":   date.String(),
				"profit": h.calculator.DayProfit(day, days),
			})
			return
		}
	}

	http.Error(w, "No trade day on this date", http.StatusNotFound)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
