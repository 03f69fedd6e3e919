package profit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onohta/tradebook/internal/domain"
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

func TestDayProfit_SameDayRoundTrip(t *testing.T) {
	// Buy 100@1000 and sell 100@1100 the same day: profit is exactly
	// 100 × (1100 − 1000) = 10000.
	calc := NewCalculator()
	d := day(t, "2025-01-06",
		buy("7203", 100, 1000),
		sell("7203", 100, 1100),
	)
	days := []domain.TradeDay{d}

	assert.True(t, calc.DayProfit(d, days).Equal(domain.MoneyFromInt(10000)))
}

func TestDayProfit_BuysAloneNeverProfit(t *testing.T) {
	calc := NewCalculator()
	d := day(t, "2025-01-06",
		buy("7203", 100, 1000),
		buy("9432", 50, 200),
	)
	days := []domain.TradeDay{d}

	assert.True(t, calc.DayProfit(d, days).IsZero())
}

func TestDayProfit_UsesPriorDayAverageCost(t *testing.T) {
	// Two buys at different prices on earlier days; the sell realizes
	// against the blended 1100 average, not either lot price.
	calc := NewCalculator()
	days := []domain.TradeDay{
		day(t, "2025-01-06", buy("7203", 100, 1000)),
		day(t, "2025-01-07", buy("7203", 100, 1200)),
	}
	sellDay := day(t, "2025-01-08", sell("7203", 100, 1300))
	days = append(days, sellDay)

	// 100 × (1300 − 1100) = 20000.
	assert.True(t, calc.DayProfit(sellDay, days).Equal(domain.MoneyFromInt(20000)))
}

func TestDayProfit_SellCappedAtHeldQuantity(t *testing.T) {
	calc := NewCalculator()
	days := []domain.TradeDay{
		day(t, "2025-01-06", buy("7203", 100, 1000)),
	}
	sellDay := day(t, "2025-01-07", sell("7203", 500, 1100))
	days = append(days, sellDay)

	// Only the held 100 units realize: 100 × (1100 − 1000) = 10000.
	assert.True(t, calc.DayProfit(sellDay, days).Equal(domain.MoneyFromInt(10000)))
}

func TestDayProfit_SellWithNoPositionIsZero(t *testing.T) {
	calc := NewCalculator()
	sellDay := day(t, "2025-01-06", sell("9984", 100, 5000))

	assert.True(t, calc.DayProfit(sellDay, []domain.TradeDay{sellDay}).IsZero())
}

func TestDayProfit_TombstonedDayIsZero(t *testing.T) {
	calc := NewCalculator()
	d := day(t, "2025-01-06", buy("7203", 100, 1000), sell("7203", 100, 1100))
	now := time.Now().UTC()
	d.DeletedAt = &now

	assert.True(t, calc.DayProfit(d, []domain.TradeDay{d}).IsZero())
}

func TestTotalProfit_ConservesSumOfDayProfits(t *testing.T) {
	calc := NewCalculator()
	days := []domain.TradeDay{
		day(t, "2025-01-06", buy("7203", 100, 1000)),
		day(t, "2025-01-07", sell("7203", 50, 1200)),
		day(t, "2025-01-08", sell("7203", 50, 900)),
		day(t, "2025-02-03", buy("9432", 200, 150), sell("9432", 200, 140)),
	}

	expected := domain.ZeroMoney
	for _, d := range days {
		expected = expected.Add(calc.DayProfit(d, days))
	}
	assert.True(t, calc.TotalProfit(days).Equal(expected))

	// 50×200 + 50×(−100) + 200×(−10) = 10000 − 5000 − 2000 = 3000.
	assert.True(t, calc.TotalProfit(days).Equal(domain.MoneyFromInt(3000)))
}

func TestMonthlyProfit_BucketsByMonth(t *testing.T) {
	calc := NewCalculator()
	days := []domain.TradeDay{
		day(t, "2025-01-06", buy("7203", 100, 1000), sell("7203", 100, 1100)),
		day(t, "2025-02-03", buy("9432", 100, 150), sell("9432", 100, 140)),
	}

	monthly := calc.MonthlyProfit(days)
	require.Len(t, monthly, 2)
	assert.True(t, monthly["2025-01"].Equal(domain.MoneyFromInt(10000)))
	assert.True(t, monthly["2025-02"].Equal(domain.MoneyFromInt(-1000)))
}
