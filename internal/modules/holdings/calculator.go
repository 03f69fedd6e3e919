// Package holdings computes net positions from the trade-day history.
//
// The ledger uses weighted-average cost, not lot tracking: every buy folds
// into a single running (quantity, totalCost) pair per symbol, and every
// sell realizes against the average cost at that moment.
package holdings

import (
	"sort"

	"github.com/onohta/tradebook/internal/domain"
)

// Calculator derives holdings from trade-day snapshots. It holds no state;
// it is safe to share and call concurrently.
type Calculator struct{}

// NewCalculator creates a holdings calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Compute returns the net position per symbol over the given history.
// Soft-deleted days are excluded. Days are processed in ascending date
// order; when asOf is non-nil, days after it are ignored (days on asOf
// itself are included). Symbols whose position ends empty are dropped.
func (c *Calculator) Compute(days []domain.TradeDay, asOf *domain.LocalDate) map[string]domain.Holding {
	result := make(map[string]domain.Holding)

	for _, day := range sortedActiveDays(days) {
		if asOf != nil && day.Date.After(*asOf) {
			break
		}
		c.applyDay(day, result)
	}

	for symbol, h := range result {
		if h.IsEmpty() {
			delete(result, symbol)
		}
	}
	return result
}

// applyDay applies one day's trades to the running holdings.
// All buys apply before any sell, regardless of stored order. This is the
// same-day realization policy: a day-trade sell realizes against that
// morning's buys.
func (c *Calculator) applyDay(day domain.TradeDay, holdings map[string]domain.Holding) {
	for _, t := range day.BuyTrades() {
		ApplyBuy(t, holdings)
	}
	for _, t := range day.SellTrades() {
		ApplySell(t, holdings)
	}
}

// ApplyBuy adds a buy trade to the holdings map. Trades with non-positive
// quantity or price are ignored; the ledger tolerates malformed historical
// rows rather than failing a whole computation.
func ApplyBuy(t domain.Trade, holdings map[string]domain.Holding) {
	if t.Quantity <= 0 || !t.Price.IsPositive() {
		return
	}

	h, ok := holdings[t.Symbol]
	if !ok {
		h = domain.NewHolding(t.Symbol, t.Market)
	}
	h.AddBuy(t.Quantity, t.Price, t.Market)
	holdings[t.Symbol] = h
}

// ApplySell reduces a position by a sell trade. Selling a symbol that is
// not held is a no-op, as are trades with non-positive quantity or price.
// A position that empties is removed from the map.
func ApplySell(t domain.Trade, holdings map[string]domain.Holding) {
	if t.Quantity <= 0 || !t.Price.IsPositive() {
		return
	}

	h, ok := holdings[t.Symbol]
	if !ok {
		return
	}
	h.ProcessSell(t.Quantity)

	if h.IsEmpty() {
		delete(holdings, t.Symbol)
		return
	}
	holdings[t.Symbol] = h
}

// sortedActiveDays filters out tombstoned days and orders the rest by date
// ascending. The input slice is never mutated.
func sortedActiveDays(days []domain.TradeDay) []domain.TradeDay {
	active := make([]domain.TradeDay, 0, len(days))
	for _, d := range days {
		if !d.IsDeleted() {
			active = append(active, d)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].Date.Before(active[j].Date)
	})
	return active
}

// SortedActiveDays exposes the filtered, date-ascending view of a history
// for sibling calculators that replay days in order.
func SortedActiveDays(days []domain.TradeDay) []domain.TradeDay {
	return sortedActiveDays(days)
}
