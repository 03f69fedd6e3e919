package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onohta/tradebook/internal/domain"
	"github.com/onohta/tradebook/internal/modules/profit"
)

func day(t *testing.T, date string, trades ...domain.Trade) domain.TradeDay {
	t.Helper()
	d, err := domain.ParseLocalDate(date)
	require.NoError(t, err)
	return domain.NewTradeDay(d, trades)
}

func buy(symbol string, qty int, price int64) domain.Trade {
	return domain.NewTrade(symbol, domain.ActionBuy, domain.MarketTSE, qty, domain.MoneyFromInt(price))
}

func sell(symbol string, qty int, price int64) domain.Trade {
	return domain.NewTrade(symbol, domain.ActionSell, domain.MarketTSE, qty, domain.MoneyFromInt(price))
}

func TestBestWorst_BothPresent(t *testing.T) {
	calc := NewBestWorstCalculator(profit.NewCalculator())
	days := []domain.TradeDay{
		day(t, "2025-01-06", buy("7203", 100, 1000), sell("7203", 100, 1300)),
		day(t, "2025-01-07", buy("9432", 100, 150)),
		day(t, "2025-01-08", sell("9432", 100, 140)),
	}

	best, worst := calc.Calculate(days)
	require.NotNil(t, best)
	require.NotNil(t, worst)
	assert.Equal(t, "2025-01-06", best.Day.Date.String())
	assert.True(t, best.Profit.Equal(domain.MoneyFromInt(30000)))
	assert.Equal(t, "2025-01-08", worst.Day.Date.String())
	assert.True(t, worst.Profit.Equal(domain.MoneyFromInt(-1000)))
}

func TestBestWorst_OnlyGains(t *testing.T) {
	calc := NewBestWorstCalculator(profit.NewCalculator())
	days := []domain.TradeDay{
		day(t, "2025-01-06", buy("7203", 100, 1000), sell("7203", 100, 1100)),
	}

	best, worst := calc.Calculate(days)
	require.NotNil(t, best)
	assert.Nil(t, worst)
}

func TestBestWorst_EmptyHistory(t *testing.T) {
	calc := NewBestWorstCalculator(profit.NewCalculator())
	best, worst := calc.Calculate(nil)
	assert.Nil(t, best)
	assert.Nil(t, worst)
}

func TestRanking_AttributesProfitPerSymbol(t *testing.T) {
	calc := NewRankingCalculator()
	days := []domain.TradeDay{
		day(t, "2025-01-06",
			buy("7203", 100, 1000),
			buy("9432", 100, 150),
		),
		day(t, "2025-01-07",
			sell("7203", 100, 1200), // +20000
			sell("9432", 100, 140),  // −1000
		),
	}

	ranking := calc.Calculate(days)
	require.Len(t, ranking, 2)

	// Sorted by profit descending.
	assert.Equal(t, "7203", ranking[0].Symbol)
	assert.True(t, ranking[0].Profit.Equal(domain.MoneyFromInt(20000)))
	assert.Equal(t, 1, ranking[0].BuyCount)
	assert.Equal(t, 1, ranking[0].SellCount)

	assert.Equal(t, "9432", ranking[1].Symbol)
	assert.True(t, ranking[1].Profit.Equal(domain.MoneyFromInt(-1000)))
}

func TestRanking_BuyOnlySymbolsExcluded(t *testing.T) {
	calc := NewRankingCalculator()
	days := []domain.TradeDay{
		day(t, "2025-01-06", buy("7203", 100, 1000)),
	}

	assert.Empty(t, calc.Calculate(days))
}

func TestRanking_SameDayRoundTrip(t *testing.T) {
	calc := NewRankingCalculator()
	days := []domain.TradeDay{
		day(t, "2025-01-06", buy("7203", 100, 1000), sell("7203", 100, 1100)),
	}

	ranking := calc.Calculate(days)
	require.Len(t, ranking, 1)
	assert.True(t, ranking[0].Profit.Equal(domain.MoneyFromInt(10000)))
}

func TestStats_CountsAndWinRate(t *testing.T) {
	calc := NewStatsCalculator(profit.NewCalculator())
	now := time.Now().UTC()

	deleted := day(t, "2025-01-09", buy("9984", 10, 100))
	deleted.DeletedAt = &now

	days := []domain.TradeDay{
		day(t, "2025-01-06", buy("7203", 100, 1000), sell("7203", 100, 1100)), // win
		day(t, "2025-01-07", buy("9432", 100, 150)),                           // flat
		day(t, "2025-01-08", sell("9432", 100, 140)),                          // loss
		deleted,
	}

	stats := calc.Calculate(days)
	assert.Equal(t, 2, stats.TotalBuyCount)
	assert.Equal(t, 2, stats.TotalSellCount)
	assert.Equal(t, 3, stats.TradingDays)
	assert.Equal(t, 1, stats.WinDays)
	assert.Equal(t, 1, stats.LossDays)
	assert.Equal(t, 2, stats.TradedSymbolCount)

	assert.InDelta(t, 4.0/3.0, stats.AverageDailyTrades(), 1e-9)
	assert.InDelta(t, 1.0/3.0, stats.WinRate(), 1e-9)
	assert.Equal(t, 33, stats.WinRatePercentage())
}

func TestStats_EmptyHistory(t *testing.T) {
	calc := NewStatsCalculator(profit.NewCalculator())
	stats := calc.Calculate(nil)

	assert.Zero(t, stats.TradingDays)
	assert.Zero(t, stats.AverageDailyTrades())
	assert.Zero(t, stats.WinRate())
	assert.Zero(t, stats.WinRatePercentage())
}
