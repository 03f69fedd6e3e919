// Package profit computes realized profit per day, per month and in total.
package profit

import (
	"github.com/onohta/tradebook/internal/domain"
	"github.com/onohta/tradebook/internal/modules/holdings"
)

// Calculator derives realized profit figures from the trade-day history.
// Stateless; safe for concurrent use.
type Calculator struct {
	holdings *holdings.Calculator
}

// NewCalculator creates a profit calculator.
func NewCalculator() *Calculator {
	return &Calculator{holdings: holdings.NewCalculator()}
}

// DayProfit returns the realized profit of a single day.
//
// The opening position is the holdings as of the day before. On a local
// copy of that position the day's buys apply first (same buys-before-sells
// policy as the ledger), then each sell realizes revenue minus average-cost
// basis. The sum of those deltas is the day's profit; buys alone never
// produce profit. A tombstoned day yields zero.
func (c *Calculator) DayProfit(day domain.TradeDay, allDays []domain.TradeDay) domain.Money {
	if day.IsDeleted() {
		return domain.ZeroMoney
	}

	previous := day.Date.AddDays(-1)
	position := c.holdings.Compute(allDays, &previous)

	for _, t := range day.BuyTrades() {
		holdings.ApplyBuy(t, position)
	}

	dayProfit := domain.ZeroMoney
	for _, t := range day.SellTrades() {
		dayProfit = dayProfit.Add(sellProfit(t, position))
	}
	return dayProfit
}

// TotalProfit sums DayProfit over all non-deleted days.
func (c *Calculator) TotalProfit(days []domain.TradeDay) domain.Money {
	total := domain.ZeroMoney
	for _, day := range days {
		if day.IsDeleted() {
			continue
		}
		total = total.Add(c.DayProfit(day, days))
	}
	return total
}

// MonthlyProfit buckets day profits by "YYYY-MM" key. A month appears only
// if at least one non-deleted day falls in it.
func (c *Calculator) MonthlyProfit(days []domain.TradeDay) map[string]domain.Money {
	monthly := make(map[string]domain.Money)
	for _, day := range days {
		if day.IsDeleted() {
			continue
		}
		key := day.Date.MonthKey()
		monthly[key] = monthly[key].Add(c.DayProfit(day, days))
	}
	return monthly
}

// sellProfit realizes one sell against the running position and returns
// revenue minus cost basis. Selling with no position, or a corrupt trade,
// realizes nothing.
func sellProfit(t domain.Trade, position map[string]domain.Holding) domain.Money {
	if t.Quantity <= 0 || !t.Price.IsPositive() {
		return domain.ZeroMoney
	}

	h, ok := position[t.Symbol]
	if !ok || h.IsEmpty() {
		return domain.ZeroMoney
	}

	sellQty := t.Quantity
	if sellQty > h.Quantity {
		sellQty = h.Quantity
	}
	costBasis := h.ProcessSell(sellQty)
	revenue := t.Price.MulInt(sellQty)

	if h.IsEmpty() {
		delete(position, t.Symbol)
	} else {
		position[t.Symbol] = h
	}

	return revenue.Sub(costBasis)
}

// SellProfit is sellProfit for sibling calculators (stock ranking) that
// attribute realized profit per symbol while replaying days.
func SellProfit(t domain.Trade, position map[string]domain.Holding) domain.Money {
	return sellProfit(t, position)
}
