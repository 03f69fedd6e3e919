// Package impexp implements the JSON backup format: versioned export of
// the full journal and a tolerant importer for current and legacy
// documents. All forgiveness for historical format drift lives here;
// the rest of the system only ever sees well-formed trades.
package impexp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/onohta/tradebook/internal/domain"
)

// formatVersion is the version stamped on exported documents.
const formatVersion = "3.0"

// Store is the slice of the journal repository import/export needs.
type Store interface {
	FetchAll(ctx context.Context) ([]domain.TradeDay, error)
	Upsert(ctx context.Context, day domain.TradeDay) error
}

// Service exports and imports the journal as a JSON document.
type Service struct {
	store Store
	log   zerolog.Logger
}

// NewService creates an import/export service.
func NewService(store Store, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With().Str("service", "impexp").Logger(),
	}
}

// Export serializes every non-deleted day into a versioned document.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	days, err := s.store.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load journal for export: %w", err)
	}

	doc := exportDocument{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Version:    formatVersion,
		Days:       []exportDay{},
	}
	for _, day := range days {
		if day.IsDeleted() {
			continue
		}
		doc.Days = append(doc.Days, newExportDay(day))
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export document: %w", err)
	}

	s.log.Info().Int("days", len(doc.Days)).Msg("Journal exported")
	return data, nil
}

// Import decodes a backup document and upserts every decodable day as a
// fresh local mutation (new updatedAt, dirty). Undecodable days and
// junk trades are dropped silently; the count of imported days is
// returned. Re-importing the same document is idempotent apart from the
// refreshed timestamps.
func (s *Service) Import(ctx context.Context, data []byte) (int, error) {
	var doc importDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("failed to parse import document: %w", err)
	}

	imported := 0
	for _, raw := range doc.Days {
		day, ok := raw.toTradeDay()
		if !ok {
			s.log.Warn().Str("id", raw.ID).Str("date", raw.Date).Msg("Skipping undecodable import day")
			continue
		}
		day.UpdatedAt = time.Now().UTC()
		if err := s.store.Upsert(ctx, day); err != nil {
			return imported, fmt.Errorf("failed to import day %s: %w", day.Date, err)
		}
		imported++
	}

	s.log.Info().Int("days", imported).Msg("Journal imported")
	return imported, nil
}

// exportDocument is the current backup format.
type exportDocument struct {
	ExportedAt string      `json:"exportedAt"`
	Version    string      `json:"version"`
	Days       []exportDay `json:"days"`
}

type exportDay struct {
	ID        string        `json:"id"`
	Date      string        `json:"date"`
	Status    string        `json:"status"`
	Trades    []exportTrade `json:"trades"`
	UpdatedAt string        `json:"updatedAt"`
}

type exportTrade struct {
	Symbol   string  `json:"symbol"`
	Action   string  `json:"action"`
	Market   string  `json:"market"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

func newExportDay(day domain.TradeDay) exportDay {
	trades := make([]exportTrade, len(day.Trades))
	for i, t := range day.Trades {
		trades[i] = exportTrade{
			Symbol:   t.Symbol,
			Action:   string(t.Action),
			Market:   string(t.Market),
			Quantity: t.Quantity,
			Price:    t.Price.InexactFloat64(),
		}
	}
	return exportDay{
		ID:        day.ID.String(),
		Date:      day.Date.String(),
		Status:    "open",
		Trades:    trades,
		UpdatedAt: day.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// importDocument accepts current and older backup formats. Older exports
// sometimes carry quantities and prices as strings, omit fields, or
// record a trade only as a bare profit figure.
type importDocument struct {
	ExportedAt *string     `json:"exportedAt"`
	Version    *string     `json:"version"`
	Days       []importDay `json:"days"`
}

type importDay struct {
	ID     string        `json:"id"`
	Date   string        `json:"date"`
	Trades []importTrade `json:"trades"`
}

// toTradeDay returns false when the id or date is unusable; junk trades
// within a usable day are dropped individually.
func (d importDay) toTradeDay() (domain.TradeDay, bool) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return domain.TradeDay{}, false
	}
	date, err := domain.ParseLocalDate(d.Date)
	if err != nil {
		return domain.TradeDay{}, false
	}

	day := domain.TradeDay{ID: id, Date: date}
	for _, raw := range d.Trades {
		if trade, ok := raw.toTrade(); ok {
			day.Trades = append(day.Trades, trade)
		}
	}
	return day, true
}

type importTrade struct {
	Symbol   string         `json:"symbol"`
	Action   *string        `json:"action"`
	Market   *string        `json:"market"`
	Quantity *intOrString   `json:"quantity"`
	Profit   *floatOrString `json:"profit"`
	Price    *floatOrString `json:"price"`
}

// toTrade decodes one trade. A fully specified entry maps directly.
// A legacy entry carrying only a nonzero profit figure becomes a
// synthetic 100-share sell priced at |profit|/100, which reproduces the
// original profit under the sell formula once the position basis is
// zero. Anything else is dropped.
func (t importTrade) toTrade() (domain.Trade, bool) {
	if t.Symbol == "" {
		return domain.Trade{}, false
	}

	if t.Action != nil {
		action, ok := domain.ParseTradeAction(*t.Action)
		if ok {
			market := domain.MarketTSE
			if t.Market != nil {
				if m, ok := domain.ParseMarket(*t.Market); ok {
					market = m
				}
			}
			qty, qtyOK := t.Quantity.intValue()
			price, priceOK := t.Price.moneyValue()
			if qtyOK && priceOK {
				return domain.NewTrade(t.Symbol, action, market, qty, price), true
			}
		}
	}

	if profit, ok := t.Profit.moneyValue(); ok && !profit.IsZero() {
		return domain.NewTrade(
			t.Symbol,
			domain.ActionSell,
			domain.MarketTSE,
			100,
			profit.Abs().DivInt(100),
		), true
	}

	return domain.Trade{}, false
}

// intOrString decodes a JSON number or a numeric string.
type intOrString struct {
	value int
	valid bool
}

func (v *intOrString) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*v = intOrString{value: n, valid: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected int or string, got %s", data)
	}
	var parsed int
	if _, err := fmt.Sscanf(s, "%d", &parsed); err != nil {
		return nil
	}
	*v = intOrString{value: parsed, valid: true}
	return nil
}

func (v *intOrString) intValue() (int, bool) {
	if v == nil || !v.valid {
		return 0, false
	}
	return v.value, true
}

// floatOrString decodes a JSON number or a numeric string into Money.
type floatOrString struct {
	value domain.Money
	valid bool
}

func (v *floatOrString) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*v = floatOrString{value: domain.MoneyFromFloat(f), valid: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected number or string, got %s", data)
	}
	m, err := domain.MoneyFromString(s)
	if err != nil {
		return nil
	}
	*v = floatOrString{value: m, valid: true}
	return nil
}

func (v *floatOrString) moneyValue() (domain.Money, bool) {
	if v == nil || !v.valid {
		return domain.ZeroMoney, false
	}
	return v.value, true
}
