// Package handlers provides HTTP handlers for journal operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/onohta/tradebook/internal/domain"
	"github.com/onohta/tradebook/internal/modules/journal"
)

// Handler handles trade-day HTTP requests
type Handler struct {
	service *journal.Service
	log     zerolog.Logger
}

// NewHandler creates a new journal handler
func NewHandler(service *journal.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "journal").Logger(),
	}
}

// dayRequest is the body of a save request. An absent id means a new day;
// trade ids are always reissued server-side.
type dayRequest struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Trades []struct {
		Symbol   string       `json:"symbol"`
		Action   string       `json:"action"`
		Market   string       `json:"market"`
		Quantity int          `json:"quantity"`
		Price    domain.Money `json:"price"`
	} `json:"trades"`
}

// HandleList handles GET /api/days
// Returns all non-deleted days, newest first.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	days, err := h.service.FetchAll(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch trade days")
		http.Error(w, "Failed to fetch trade days", http.StatusInternalServerError)
		return
	}

	active := make([]domain.TradeDay, 0, len(days))
	for _, day := range days {
		if !day.IsDeleted() {
			active = append(active, day)
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"days": active})
}

// HandleGetByDate handles GET /api/days/{date}
func (h *Handler) HandleGetByDate(w http.ResponseWriter, r *http.Request, dateStr string) {
	date, err := domain.ParseLocalDate(dateStr)
	if err != nil {
		http.Error(w, "Invalid date", http.StatusBadRequest)
		return
	}

	day, err := h.service.FetchByDate(r.Context(), date)
	if err != nil {
		h.log.Error().Err(err).Str("date", dateStr).Msg("Failed to fetch trade day")
		http.Error(w, "Failed to fetch trade day", http.StatusInternalServerError)
		return
	}
	if day == nil {
		http.Error(w, "No trade day on this date", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, day)
}

// HandleSave handles POST /api/days
// Creates or replaces a trade day. Duplicate dates are rejected.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var req dayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	day, err := h.toDomain(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	saved, err := h.service.AddOrUpdate(r.Context(), day)
	if err != nil {
		if errors.Is(err, journal.ErrDuplicateDate) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		h.log.Error().Err(err).Str("date", day.Date.String()).Msg("Failed to save trade day")
		http.Error(w, "Failed to save trade day", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, saved)
}

// HandleDelete handles DELETE /api/days/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.log.Error().Err(err).Str("id", idStr).Msg("Failed to delete trade day")
		http.Error(w, "Failed to delete trade day", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleClearAll handles POST /api/days/clear-all
// Wipes all local data. Remote data is untouched.
func (h *Handler) HandleClearAll(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearAll(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("Failed to clear data")
		http.Error(w, "Failed to clear data", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *Handler) toDomain(req dayRequest) (domain.TradeDay, error) {
	date, err := domain.ParseLocalDate(req.Date)
	if err != nil {
		return domain.TradeDay{}, errors.New("invalid date")
	}

	var trades []domain.Trade
	for _, t := range req.Trades {
		action, ok := domain.ParseTradeAction(t.Action)
		if !ok {
			return domain.TradeDay{}, errors.New("invalid trade action")
		}
		market := domain.MarketTSE
		if t.Market != "" {
			if m, ok := domain.ParseMarket(t.Market); ok {
				market = m
			}
		}
		trades = append(trades, domain.NewTrade(t.Symbol, action, market, t.Quantity, t.Price))
	}

	day := domain.NewTradeDay(date, trades)
	if req.ID != "" {
		id, err := uuid.Parse(req.ID)
		if err != nil {
			return domain.TradeDay{}, errors.New("invalid id")
		}
		day.ID = id
	}
	return day, nil
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
