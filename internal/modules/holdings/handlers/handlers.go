// Package handlers provides HTTP handlers for holdings queries.
package handlers

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/rs/zerolog"

	"github.com/onohta/tradebook/internal/domain"
	"github.com/onohta/tradebook/internal/modules/companies"
	"github.com/onohta/tradebook/internal/modules/holdings"
	"github.com/onohta/tradebook/internal/modules/journal"
)

// Handler handles holdings HTTP requests
type Handler struct {
	service    *journal.Service
	calculator *holdings.Calculator
	registry   *companies.Registry
	log        zerolog.Logger
}

// NewHandler creates a new holdings handler
func NewHandler(service *journal.Service, registry *companies.Registry, log zerolog.Logger) *Handler {
	return &Handler{
		service:    service,
		calculator: holdings.NewCalculator(),
		registry:   registry,
		log:        log.With().Str("handler", "holdings").Logger(),
	}
}

// holdingView is one position decorated for display.
type holdingView struct {
	Symbol       string        `json:"symbol"`
	CompanyName  string        `json:"companyName"`
	Quantity     int           `json:"quantity"`
	AveragePrice domain.Money  `json:"averagePrice"`
	TotalCost    domain.Money  `json:"totalCost"`
	Market       domain.Market `json:"market"`
	MarketLabel  string        `json:"marketLabel"`
}

// HandleList handles GET /api/holdings
// Optional as_of query parameter limits the replay to days up to that date.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	var asOf *domain.LocalDate
	if s := r.URL.Query().Get("as_of"); s != "" {
		date, err := domain.ParseLocalDate(s)
		if err != nil {
			http.Error(w, "Invalid as_of date", http.StatusBadRequest)
			return
		}
		asOf = &date
	}

	days, err := h.service.FetchAll(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch trade days")
		http.Error(w, "Failed to compute holdings", http.StatusInternalServerError)
		return
	}

	position := h.calculator.Compute(days, asOf)

	views := make([]holdingView, 0, len(position))
	for _, holding := range position {
		views = append(views, holdingView{
			Symbol:       holding.Symbol,
			CompanyName:  h.registry.Name(holding.Symbol),
			Quantity:     holding.Quantity,
			AveragePrice: holding.AveragePrice(),
			TotalCost:    holding.TotalCost,
			Market:       holding.Market,
			MarketLabel:  holding.Market.DisplayName(),
		})
	}
	sort.Slice(views, func(i, j int) bool {
		if !views[i].TotalCost.Equal(views[j].TotalCost) {
			return views[i].TotalCost.GreaterThan(views[j].TotalCost)
		}
		return views[i].Symbol < views[j].Symbol
	})

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"holdings": views})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
