// Package analytics provides read-only aggregations over the trade-day
// history: best/worst day, per-stock ranking and trading statistics.
package analytics

import (
	"sort"

	"github.com/onohta/tradebook/internal/domain"
	"github.com/onohta/tradebook/internal/modules/profit"
)

// DayProfit pairs a trade day with its realized profit.
type DayProfit struct {
	Day    domain.TradeDay `json:"day"`
	Profit domain.Money    `json:"profit"`
}

// BestWorstCalculator finds the most and least profitable days.
type BestWorstCalculator struct {
	profit *profit.Calculator
}

// NewBestWorstCalculator creates a best/worst day calculator.
func NewBestWorstCalculator(p *profit.Calculator) *BestWorstCalculator {
	return &BestWorstCalculator{profit: p}
}

// Calculate returns the best day (top profit, only if positive) and the
// worst day (bottom profit, only if negative). Either may be nil.
func (c *BestWorstCalculator) Calculate(days []domain.TradeDay) (best, worst *DayProfit) {
	var withProfit []DayProfit
	for _, day := range days {
		if day.IsDeleted() {
			continue
		}
		withProfit = append(withProfit, DayProfit{
			Day:    day,
			Profit: c.profit.DayProfit(day, days),
		})
	}
	if len(withProfit) == 0 {
		return nil, nil
	}

	sort.Slice(withProfit, func(i, j int) bool {
		return withProfit[i].Profit.GreaterThan(withProfit[j].Profit)
	})

	if top := withProfit[0]; top.Profit.IsPositive() {
		best = &top
	}
	if bottom := withProfit[len(withProfit)-1]; bottom.Profit.IsNegative() {
		worst = &bottom
	}
	return best, worst
}
