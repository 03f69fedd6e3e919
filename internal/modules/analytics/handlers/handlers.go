// Package handlers provides HTTP handlers for analytics queries.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/onohta/tradebook/internal/modules/analytics"
	"github.com/onohta/tradebook/internal/modules/companies"
	"github.com/onohta/tradebook/internal/modules/journal"
	"github.com/onohta/tradebook/internal/modules/profit"
)

// Handler handles analytics HTTP requests
type Handler struct {
	service   *journal.Service
	bestWorst *analytics.BestWorstCalculator
	ranking   *analytics.RankingCalculator
	stats     *analytics.StatsCalculator
	registry  *companies.Registry
	log       zerolog.Logger
}

// NewHandler creates a new analytics handler
func NewHandler(service *journal.Service, registry *companies.Registry, log zerolog.Logger) *Handler {
	p := profit.NewCalculator()
	return &Handler{
		service:   service,
		bestWorst: analytics.NewBestWorstCalculator(p),
		ranking:   analytics.NewRankingCalculator(),
		stats:     analytics.NewStatsCalculator(p),
		registry:  registry,
		log:       log.With().Str("handler", "analytics").Logger(),
	}
}

// HandleBestWorst handles GET /api/analytics/best-worst
// Either entry may be null: best only exists when some day was profitable,
// worst only when some day lost money.
func (h *Handler) HandleBestWorst(w http.ResponseWriter, r *http.Request) {
	days, err := h.service.FetchAll(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch trade days")
		http.Error(w, "Failed to compute analytics", http.StatusInternalServerError)
		return
	}

	best, worst := h.bestWorst.Calculate(days)
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"best":  best,
		"worst": worst,
	})
}

// rankingView decorates a ranking entry with the company name.
type rankingView struct {
	analytics.RankingEntry
	CompanyName string `json:"companyName"`
}

// HandleRanking handles GET /api/analytics/ranking
func (h *Handler) HandleRanking(w http.ResponseWriter, r *http.Request) {
	days, err := h.service.FetchAll(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch trade days")
		http.Error(w, "Failed to compute analytics", http.StatusInternalServerError)
		return
	}

	entries := h.ranking.Calculate(days)
	views := make([]rankingView, len(entries))
	for i, e := range entries {
		views[i] = rankingView{RankingEntry: e, CompanyName: h.registry.Name(e.Symbol)}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"ranking": views})
}

// HandleStats handles GET /api/analytics/stats
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	days, err := h.service.FetchAll(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch trade days")
		http.Error(w, "Failed to compute analytics", http.StatusInternalServerError)
		return
	}

	stats := h.stats.Calculate(days)
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"stats":              stats,
		"averageDailyTrades": stats.AverageDailyTrades(),
		"winRatePercentage":  stats.WinRatePercentage(),
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
