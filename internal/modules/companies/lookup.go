// Package companies maps stock symbols to listed-company names for
// display. The registry loads from an optional JSON data file; without
// one every lookup just echoes the symbol, so nothing downstream has to
// special-case misses.
package companies

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Company is one listed-company record.
type Company struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Market string `json:"market"`
}

type dataFile struct {
	Companies []Company `json:"companies"`
}

// Registry is a symbol to company lookup, safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	companies map[string]Company
	log       zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		companies: make(map[string]Company),
		log:       log.With().Str("component", "companies").Logger(),
	}
}

// LoadFile loads company records from a JSON data file. A missing file
// is not an error; the registry just stays empty.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		r.log.Debug().Str("path", path).Msg("No company data file")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read company data: %w", err)
	}

	var file dataFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse company data: %w", err)
	}

	r.SetCompanies(file.Companies)
	r.log.Info().Int("companies", len(file.Companies)).Msg("Company data loaded")
	return nil
}

// SetCompanies replaces the registry contents. Codes are normalized to
// upper case; the first record wins on duplicates.
func (r *Registry) SetCompanies(companies []Company) {
	m := make(map[string]Company, len(companies))
	for _, c := range companies {
		code := strings.ToUpper(strings.TrimSpace(c.Code))
		if code == "" {
			continue
		}
		if _, exists := m[code]; !exists {
			c.Code = code
			m[code] = c
		}
	}

	r.mu.Lock()
	r.companies = m
	r.mu.Unlock()
}

// Lookup returns the company for a symbol, if registered.
func (r *Registry) Lookup(symbol string) (Company, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.companies[strings.ToUpper(symbol)]
	return c, ok
}

// Name returns the company name for a symbol. Unknown symbols echo the
// symbol back.
func (r *Registry) Name(symbol string) string {
	if c, ok := r.Lookup(symbol); ok {
		return c.Name
	}
	return symbol
}
