package domain

import (
	"strings"

	"github.com/google/uuid"
)

// TradeAction is the direction of a trade execution.
type TradeAction string

const (
	ActionBuy  TradeAction = "buy"
	ActionSell TradeAction = "sell"
)

// ParseTradeAction validates and converts an action string.
func ParseTradeAction(s string) (TradeAction, bool) {
	switch TradeAction(s) {
	case ActionBuy, ActionSell:
		return TradeAction(s), true
	}
	return "", false
}

// Market is the listing venue a trade executed on.
// It affects display only, never the accounting.
type Market string

const (
	MarketTSE Market = "tse" // Tokyo Stock Exchange regular session
	MarketPTS Market = "pts" // off-exchange proprietary trading system
)

// ParseMarket validates and converts a market string.
func ParseMarket(s string) (Market, bool) {
	switch Market(s) {
	case MarketTSE, MarketPTS:
		return Market(s), true
	}
	return "", false
}

// DisplayName returns the venue label shown in UIs.
func (m Market) DisplayName() string {
	switch m {
	case MarketTSE:
		return "東証"
	case MarketPTS:
		return "PTS"
	}
	return string(m)
}

// Trade is one buy or sell execution within a trade day.
// Trades are immutable once part of a saved day; edits replace the whole day.
type Trade struct {
	ID       uuid.UUID   `json:"id"`
	Symbol   string      `json:"symbol"`
	Action   TradeAction `json:"action"`
	Market   Market      `json:"market"`
	Quantity int         `json:"quantity"`
	Price    Money       `json:"price"`
}

// NewTrade creates a trade with a fresh id and a normalized symbol.
func NewTrade(symbol string, action TradeAction, market Market, quantity int, price Money) Trade {
	return Trade{
		ID:       uuid.New(),
		Symbol:   NormalizeSymbol(symbol),
		Action:   action,
		Market:   market,
		Quantity: quantity,
		Price:    price,
	}
}

// TotalAmount returns price × quantity.
func (t Trade) TotalAmount() Money {
	return t.Price.MulInt(t.Quantity)
}

// NormalizeSymbol upper-cases and trims a stock symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
