// Package dividends maps realized profit through the profit-sharing ratio.
package dividends

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/onohta/tradebook/internal/domain"
	"github.com/onohta/tradebook/internal/modules/profit"
)

// afterTaxFactor approximates the share left after tax on a profitable day.
// Loss days share the full ratio with no factor.
var afterTaxFactor = decimal.NewFromFloat(0.8)

// Entry pairs one day's profit with the dividend derived from it.
type Entry struct {
	Date     domain.LocalDate `json:"date"`
	Profit   domain.Money     `json:"profit"`
	Dividend domain.Money     `json:"dividend"`
}

// Summary aggregates dividends over the whole history.
type Summary struct {
	TotalDividend  domain.Money `json:"totalDividend"`
	TotalLossShare domain.Money `json:"totalLossShare"`
	NetDividend    domain.Money `json:"netDividend"`
}

// Calculator converts profit figures into dividend amounts.
type Calculator struct {
	Ratio domain.DividendRatio
}

// NewCalculator creates a dividend calculator with the given ratio.
func NewCalculator(ratio domain.DividendRatio) *Calculator {
	return &Calculator{Ratio: ratio}
}

// Dividend computes the sharing amount for one profit figure.
//
// Gains: ceil(profit × ratio × 0.8), rounded toward positive infinity to
// whole units. Losses: floor(profit × ratio) toward negative infinity, so
// the shared loss magnitude rounds up and carries no after-tax factor.
func (c *Calculator) Dividend(p domain.Money) domain.Money {
	// Multiply by the numerator before dividing so the only inexact step
	// is the final division.
	scaled := p.MulInt(c.Ratio.Numerator).DivInt(c.Ratio.Denominator)

	if p.IsNegative() {
		return scaled.Floor()
	}
	return scaled.MulDecimal(afterTaxFactor).Ceil()
}

// History returns (date, profit, dividend) for every non-deleted day with
// nonzero profit, newest first.
func (c *Calculator) History(days []domain.TradeDay, calc *profit.Calculator) []Entry {
	var entries []Entry
	for _, day := range days {
		if day.IsDeleted() {
			continue
		}
		p := calc.DayProfit(day, days)
		if p.IsZero() {
			continue
		}
		entries = append(entries, Entry{
			Date:     day.Date,
			Profit:   p,
			Dividend: c.Dividend(p),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[j].Date.Before(entries[i].Date)
	})
	return entries
}

// Summarize totals the positive dividends, the absolute loss shares, and
// their net over the whole history.
func (c *Calculator) Summarize(days []domain.TradeDay, calc *profit.Calculator) Summary {
	var s Summary
	for _, day := range days {
		if day.IsDeleted() {
			continue
		}
		d := c.Dividend(calc.DayProfit(day, days))
		if d.IsNegative() {
			s.TotalLossShare = s.TotalLossShare.Add(d.Abs())
		} else {
			s.TotalDividend = s.TotalDividend.Add(d)
		}
	}
	s.NetDividend = s.TotalDividend.Sub(s.TotalLossShare)
	return s
}
