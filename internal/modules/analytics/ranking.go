package analytics

import (
	"sort"

	"github.com/onohta/tradebook/internal/domain"
	"github.com/onohta/tradebook/internal/modules/holdings"
	"github.com/onohta/tradebook/internal/modules/profit"
)

// RankingEntry is one symbol's cumulative attributed profit and activity.
type RankingEntry struct {
	Symbol    string       `json:"symbol"`
	Profit    domain.Money `json:"profit"`
	BuyCount  int          `json:"buyCount"`
	SellCount int          `json:"sellCount"`
}

// RankingCalculator attributes realized profit to the symbol sold.
type RankingCalculator struct {
	holdings *holdings.Calculator
}

// NewRankingCalculator creates a stock ranking calculator.
func NewRankingCalculator() *RankingCalculator {
	return &RankingCalculator{holdings: holdings.NewCalculator()}
}

// Calculate walks the history in date order, replaying each day
// buys-then-sells against the position as of the prior day, and credits
// each sell's realized profit to its symbol. Only symbols with at least
// one sell appear; the result is sorted by profit descending.
func (c *RankingCalculator) Calculate(days []domain.TradeDay) []RankingEntry {
	entries := make(map[string]*RankingEntry)
	touch := func(symbol string) *RankingEntry {
		e, ok := entries[symbol]
		if !ok {
			e = &RankingEntry{Symbol: symbol}
			entries[symbol] = e
		}
		return e
	}

	for _, day := range holdings.SortedActiveDays(days) {
		previous := day.Date.AddDays(-1)
		position := c.holdings.Compute(days, &previous)

		for _, t := range day.BuyTrades() {
			touch(t.Symbol).BuyCount++
			holdings.ApplyBuy(t, position)
		}
		for _, t := range day.SellTrades() {
			e := touch(t.Symbol)
			e.SellCount++
			e.Profit = e.Profit.Add(profit.SellProfit(t, position))
		}
	}

	ranking := make([]RankingEntry, 0, len(entries))
	for _, e := range entries {
		if e.SellCount > 0 {
			ranking = append(ranking, *e)
		}
	}
	sort.Slice(ranking, func(i, j int) bool {
		return ranking[i].Profit.GreaterThan(ranking[j].Profit)
	})
	return ranking
}
