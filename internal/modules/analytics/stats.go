package analytics

import (
	"math"

	"github.com/onohta/tradebook/internal/domain"
	"github.com/onohta/tradebook/internal/modules/profit"
)

// TradingStats summarizes trading activity over the whole history.
type TradingStats struct {
	TotalBuyCount     int `json:"totalBuyCount"`
	TotalSellCount    int `json:"totalSellCount"`
	TradingDays       int `json:"tradingDays"`
	WinDays           int `json:"winDays"`
	LossDays          int `json:"lossDays"`
	TradedSymbolCount int `json:"tradedSymbolCount"`
}

// AverageDailyTrades returns (buys+sells)/tradingDays, zero when there are
// no trading days.
func (s TradingStats) AverageDailyTrades() float64 {
	if s.TradingDays == 0 {
		return 0
	}
	return float64(s.TotalBuyCount+s.TotalSellCount) / float64(s.TradingDays)
}

// WinRate returns winDays/tradingDays, zero when there are no trading days.
func (s TradingStats) WinRate() float64 {
	if s.TradingDays == 0 {
		return 0
	}
	return float64(s.WinDays) / float64(s.TradingDays)
}

// WinRatePercentage returns the win rate as a rounded percentage.
func (s TradingStats) WinRatePercentage() int {
	return int(math.Round(s.WinRate() * 100))
}

// StatsCalculator counts trades, trading days, win/loss days and distinct
// symbols.
type StatsCalculator struct {
	profit *profit.Calculator
}

// NewStatsCalculator creates a trading stats calculator.
func NewStatsCalculator(p *profit.Calculator) *StatsCalculator {
	return &StatsCalculator{profit: p}
}

// Calculate aggregates activity over all non-deleted days.
func (c *StatsCalculator) Calculate(days []domain.TradeDay) TradingStats {
	var stats TradingStats
	symbols := make(map[string]struct{})

	for _, day := range days {
		if day.IsDeleted() {
			continue
		}

		if len(day.Trades) > 0 {
			stats.TradingDays++
		}

		for _, t := range day.Trades {
			symbols[t.Symbol] = struct{}{}
			switch t.Action {
			case domain.ActionBuy:
				stats.TotalBuyCount++
			case domain.ActionSell:
				stats.TotalSellCount++
			}
		}

		p := c.profit.DayProfit(day, days)
		if p.IsPositive() {
			stats.WinDays++
		} else if p.IsNegative() {
			stats.LossDays++
		}
	}

	stats.TradedSymbolCount = len(symbols)
	return stats
}
