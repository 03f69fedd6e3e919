package domain

import (
	"time"

	"github.com/google/uuid"
)

// SyncState marks whether a locally stored day matches the last known
// remote state.
type SyncState int

const (
	// SyncStateClean means the day matches the last confirmed remote state.
	SyncStateClean SyncState = 0
	// SyncStateDirty means the day was modified locally and not yet pushed.
	SyncStateDirty SyncState = 1
)

// TradeDay is the aggregate a user edits: all trades of one calendar day.
// At most one non-deleted TradeDay may exist per date; deletion is a
// tombstone (DeletedAt set) so the fact propagates through sync.
type TradeDay struct {
	ID        uuid.UUID  `json:"id"`
	Date      LocalDate  `json:"date"`
	Trades    []Trade    `json:"trades"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// NewTradeDay creates a trade day for the given date with a fresh id.
func NewTradeDay(date LocalDate, trades []Trade) TradeDay {
	return TradeDay{
		ID:        uuid.New(),
		Date:      date,
		Trades:    trades,
		UpdatedAt: time.Now().UTC(),
	}
}

// IsDeleted reports whether the day is tombstoned.
func (d TradeDay) IsDeleted() bool { return d.DeletedAt != nil }

// BuyTrades returns the day's buy trades in stored order.
func (d TradeDay) BuyTrades() []Trade {
	var buys []Trade
	for _, t := range d.Trades {
		if t.Action == ActionBuy {
			buys = append(buys, t)
		}
	}
	return buys
}

// SellTrades returns the day's sell trades in stored order.
func (d TradeDay) SellTrades() []Trade {
	var sells []Trade
	for _, t := range d.Trades {
		if t.Action == ActionSell {
			sells = append(sells, t)
		}
	}
	return sells
}

// TradedSymbols returns the set of symbols touched by the day's trades.
func (d TradeDay) TradedSymbols() map[string]struct{} {
	symbols := make(map[string]struct{}, len(d.Trades))
	for _, t := range d.Trades {
		symbols[t.Symbol] = struct{}{}
	}
	return symbols
}
