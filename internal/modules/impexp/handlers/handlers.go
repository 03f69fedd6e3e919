// Package handlers provides HTTP handlers for backup import and export.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/onohta/tradebook/internal/modules/impexp"
)

// maxImportBytes caps uploaded backup documents.
const maxImportBytes = 32 << 20

// Handler handles import/export HTTP requests
type Handler struct {
	service *impexp.Service
	log     zerolog.Logger
}

// NewHandler creates a new import/export handler
func NewHandler(service *impexp.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "impexp").Logger(),
	}
}

// HandleExport handles GET /api/export
// Streams the journal as a downloadable JSON document.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.Export(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Export failed")
		http.Error(w, "Export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="tradebook-export.json"`)
	if _, err := w.Write(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to write export response")
	}
}

// HandleImport handles POST /api/import
// Accepts a backup document in the request body and reports how many days
// were imported.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	imported, err := h.service.Import(r.Context(), data)
	if err != nil {
		h.log.Error().Err(err).Msg("Import failed")
		http.Error(w, "Import failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"imported": imported})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
