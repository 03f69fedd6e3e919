package journal

import (
	"errors"
	"strings"

	"github.com/onohta/tradebook/internal/domain"
)

// Validation errors. These reject new input before it is persisted;
// they are distinct from the ledger's silent tolerance of malformed
// historical rows.
var (
	ErrEmptySymbol     = errors.New("trade symbol is empty")
	ErrInvalidQuantity = errors.New("trade quantity must be positive")
	ErrInvalidPrice    = errors.New("trade price must be positive")
	ErrDuplicateDate   = errors.New("a trade day already exists for this date")
)

// TradeValidator checks individual trades before they are saved.
type TradeValidator struct{}

// Validate returns the first structural problem with a trade, or nil.
func (TradeValidator) Validate(t domain.Trade) error {
	if strings.TrimSpace(t.Symbol) == "" {
		return ErrEmptySymbol
	}
	if t.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if !t.Price.IsPositive() {
		return ErrInvalidPrice
	}
	return nil
}

// FilterValid drops invalid trades. Import pipelines use this to silently
// discard junk entries instead of failing the whole import.
func (v TradeValidator) FilterValid(trades []domain.Trade) []domain.Trade {
	valid := make([]domain.Trade, 0, len(trades))
	for _, t := range trades {
		if v.Validate(t) == nil {
			valid = append(valid, t)
		}
	}
	return valid
}

// DayValidator enforces the one-non-deleted-day-per-date invariant.
type DayValidator struct{}

// Validate rejects a day whose date collides with another non-deleted day
// of a different id. Soft-deleted rows keep their date, so uniqueness
// cannot be left to the storage layer.
func (DayValidator) Validate(day domain.TradeDay, existing []domain.TradeDay) error {
	for _, other := range existing {
		if other.ID == day.ID || other.IsDeleted() {
			continue
		}
		if other.Date.Equal(day.Date) {
			return ErrDuplicateDate
		}
	}
	return nil
}
